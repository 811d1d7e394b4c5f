package compliance_test

import (
	"testing"

	"docremedy/compliance"
)

func reportWith(issues, warnings, passed int) *compliance.Report {
	r := &compliance.Report{Standard: "WCAG 2.2 AA"}
	for i := 0; i < issues; i++ {
		r.Issues = append(r.Issues, compliance.Issue{Severity: compliance.SeverityMajor})
	}
	for i := 0; i < warnings; i++ {
		r.Warnings = append(r.Warnings, compliance.Issue{Severity: compliance.SeverityMinor})
	}
	for i := 0; i < passed; i++ {
		r.Checks = append(r.Checks, compliance.Passed{})
	}
	return r
}

func TestScore(t *testing.T) {
	cases := []struct {
		issues, warnings, passed int
		score                    int
	}{
		{2, 0, 8, 80},
		{0, 0, 0, 0},
		{0, 0, 5, 100},
		{1, 1, 1, 33},
		{3, 0, 1, 25},
	}
	for _, c := range cases {
		r := reportWith(c.issues, c.warnings, c.passed)
		if got := r.Score(); got != c.score {
			t.Errorf("score(%d issues, %d warnings, %d passed) = %d, want %d",
				c.issues, c.warnings, c.passed, got, c.score)
		}
	}
}

// Pass requires zero issues; near_pass applies when issues remain but the
// score is at least 80. A score of 80 with two open issues is therefore
// near_pass, never pass.
func TestSummarize(t *testing.T) {
	cases := []struct {
		issues, warnings, passed int
		tier                     compliance.Tier
	}{
		{0, 0, 8, compliance.TierPass},
		{0, 5, 1, compliance.TierPass}, // warnings never block pass
		{2, 0, 8, compliance.TierNearPass},
		{1, 0, 1, compliance.TierNeedsWork}, // score 50
		{3, 0, 1, compliance.TierFail},      // score 25
		{1, 0, 0, compliance.TierFail},
	}
	for _, c := range cases {
		r := reportWith(c.issues, c.warnings, c.passed)
		if got := r.Summarize(); got != c.tier {
			t.Errorf("summarize(%d issues, %d warnings, %d passed) = %s, want %s (score %d)",
				c.issues, c.warnings, c.passed, got, c.tier, r.Score())
		}
	}
}

func TestCompliant(t *testing.T) {
	if !reportWith(0, 3, 0).Compliant() {
		t.Fatal("warnings alone must not block compliance")
	}
	if reportWith(1, 0, 9).Compliant() {
		t.Fatal("any issue blocks compliance")
	}
}
