package headings_test

import (
	"testing"

	"docremedy/headings"
	"docremedy/ir/content"
)

func candidates(levels ...int) []content.HeadingCandidate {
	out := make([]content.HeadingCandidate, len(levels))
	for i, l := range levels {
		out[i] = content.HeadingCandidate{Text: "Heading", Level: l, Page: 1}
	}
	return out
}

func resolvedLevels(seq []content.HeadingCandidate) []int {
	out := make([]int, len(seq))
	for i, h := range seq {
		out[i] = h.Level
	}
	return out
}

func assertLevels(t *testing.T, got []content.HeadingCandidate, want ...int) {
	t.Helper()
	levels := resolvedLevels(got)
	if len(levels) != len(want) {
		t.Fatalf("got %v, want %v", levels, want)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("got %v, want %v", levels, want)
		}
	}
}

func TestNormalizeSkippedLevels(t *testing.T) {
	n := headings.Normalizer{}
	out, rewrites := n.Normalize(candidates(1, 3, 2))
	assertLevels(t, out, 1, 2, 2)
	if len(rewrites) != 1 {
		t.Fatalf("expected one rewrite, got %d", len(rewrites))
	}
	if rewrites[0].FromLevel != 3 || rewrites[0].ToLevel != 2 {
		t.Fatalf("unexpected rewrite %+v", rewrites[0])
	}
}

func TestNormalizeConvertPolicy(t *testing.T) {
	n := headings.Normalizer{Policy: headings.PolicyConvert}
	out, rewrites := n.Normalize(candidates(3, 4, 2))
	assertLevels(t, out, 1, 2, 2)
	if len(rewrites) == 0 || rewrites[0].Inserted {
		t.Fatalf("expected an in-place conversion, got %+v", rewrites)
	}
}

func TestNormalizeInsertPolicy(t *testing.T) {
	n := headings.Normalizer{Policy: headings.PolicyInsert}
	out, rewrites := n.Normalize(candidates(3))
	assertLevels(t, out, 1, 2)
	if out[0].Text != headings.SyntheticTitle {
		t.Fatalf("expected synthetic document heading, got %q", out[0].Text)
	}
	if len(rewrites) != 2 || !rewrites[0].Inserted {
		t.Fatalf("expected insertion plus clamp, got %+v", rewrites)
	}
}

func TestNormalizeInvariants(t *testing.T) {
	sequences := [][]int{
		{1, 2, 3, 4, 5, 6},
		{6, 6, 6},
		{2, 5, 1, 4},
		{1, 3, 2},
		{4},
	}
	n := headings.Normalizer{}
	for _, levels := range sequences {
		out, _ := n.Normalize(candidates(levels...))
		resolved := resolvedLevels(out)
		if resolved[0] != 1 {
			t.Errorf("%v: first resolved level is %d, want 1", levels, resolved[0])
		}
		for i := 1; i < len(resolved); i++ {
			if resolved[i]-resolved[i-1] > 1 {
				t.Errorf("%v: level gap at %d: %v", levels, i, resolved)
			}
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, policy := range []headings.Policy{headings.PolicyConvert, headings.PolicyInsert} {
		n := headings.Normalizer{Policy: policy}
		once, _ := n.Normalize(candidates(3, 5, 2, 2))
		twice, rewrites := n.Normalize(once)
		if len(rewrites) != 0 {
			t.Fatalf("policy %v: second pass applied %d rewrites", policy, len(rewrites))
		}
		assertLevels(t, twice, resolvedLevels(once)...)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	n := headings.Normalizer{}
	out, rewrites := n.Normalize(nil)
	if out != nil || rewrites != nil {
		t.Fatal("empty input must produce empty output")
	}
}
