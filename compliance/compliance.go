package compliance

import "context"

// Context is an alias for context.Context to allow for future expansion.
type Context = context.Context

// Severity classifies how badly an issue blocks assistive technology.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Issue represents one accessibility failure or advisory finding.
type Issue struct {
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Criterion   string   `json:"criterion"` // standard clause id, e.g. "2.4.2"
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Page        int      `json:"page,omitempty"` // 1-based; 0 when the issue is document-wide
	// Remediated flips to true when a corresponding fix is applied; it is
	// the only field mutated after creation.
	Remediated bool `json:"remediated,omitempty"`
}

// Passed records a check that succeeded.
type Passed struct {
	Criterion string `json:"criterion"`
	Title     string `json:"title"`
}

// Report details compliance status: failing issues, advisory warnings, and
// passed checks, in the order the checks ran.
type Report struct {
	Standard string // e.g. "WCAG 2.2 AA"
	Issues   []Issue
	Warnings []Issue
	Checks   []Passed
}

// Compliant reports whether the document passes outright: no issues.
// Warnings do not block compliance.
func (r *Report) Compliant() bool { return len(r.Issues) == 0 }

// Score is the compliance score: round(100 * passed / total). A report with
// no recorded checks scores zero.
func (r *Report) Score() int {
	total := len(r.Issues) + len(r.Warnings) + len(r.Checks)
	if total == 0 {
		return 0
	}
	return int(float64(len(r.Checks))/float64(total)*100 + 0.5)
}

// Tier is the executive-summary banding derived from a report.
type Tier string

const (
	TierPass      Tier = "pass"
	TierNearPass  Tier = "near_pass"
	TierNeedsWork Tier = "needs_work"
	TierFail      Tier = "fail"
)

// Summarize derives the tier: pass requires zero issues; otherwise the score
// thresholds 80 and 50 select near_pass and needs_work.
func (r *Report) Summarize() Tier {
	if r.Compliant() {
		return TierPass
	}
	score := r.Score()
	switch {
	case score >= 80:
		return TierNearPass
	case score >= 50:
		return TierNeedsWork
	default:
		return TierFail
	}
}

// Checker validates a document representation against a standard.
type Checker interface {
	Standard() string
	Check(ctx Context) (*Report, error)
}
