package describe_test

import (
	"context"
	"strings"
	"testing"

	"docremedy/describe"
	"docremedy/ir/content"
)

func TestInputFromImage(t *testing.T) {
	img := content.Image{Name: "Im1", Width: 300, Height: 200, Page: 2}
	in := describe.InputFromImage(img, describe.WithContext("quarterly results"))
	if in.ID != "page-2-Im1" {
		t.Fatalf("unexpected input ID %q", in.ID)
	}
	if in.Context != "quarterly results" {
		t.Fatalf("context not applied: %q", in.Context)
	}
}

func TestHeuristicDecorative(t *testing.T) {
	h := describe.NewHeuristic()
	res, err := h.Describe(context.Background(), describe.Input{ID: "x", Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !res.IsDecorative {
		t.Fatal("10x10 image must be decorative")
	}
	if res.AltText != "" {
		t.Fatalf("decorative result must carry empty alt text, got %q", res.AltText)
	}
}

func TestHeuristicDescriptive(t *testing.T) {
	h := describe.NewHeuristic()

	cases := []struct {
		w, h   int
		expect string
	}{
		{900, 300, "Diagram or illustration"},
		{200, 600, "Vertical graphic"},
		{600, 500, "Figure or photograph"},
		{300, 300, "Graphic element"},
	}
	for _, c := range cases {
		res, err := h.Describe(context.Background(), describe.Input{Width: c.w, Height: c.h, Page: 0})
		if err != nil {
			t.Fatalf("describe %dx%d: %v", c.w, c.h, err)
		}
		if res.IsDecorative {
			t.Fatalf("%dx%d unexpectedly decorative", c.w, c.h)
		}
		if !strings.HasPrefix(res.AltText, c.expect) {
			t.Errorf("%dx%d: alt %q, want prefix %q", c.w, c.h, res.AltText, c.expect)
		}
		if !strings.HasSuffix(res.AltText, "page 1") {
			t.Errorf("%dx%d: alt %q should reference page 1", c.w, c.h, res.AltText)
		}
	}
}
