// Package report assembles the remediation report and renders it as JSON,
// plain text, or HTML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"docremedy/compliance"
	"docremedy/extractor"
	"docremedy/ir/structure"
	"docremedy/remediate"
	"docremedy/tagger"
)

// SchemaVersion identifies the JSON report layout.
const SchemaVersion = "1.0"

// Remediation is the full record of one remediation run.
type Remediation struct {
	SchemaVersion string    `json:"schema_version"`
	ID            string    `json:"id"`
	GeneratedAt   time.Time `json:"generated_at"`
	Source        string    `json:"source,omitempty"`

	Standard string `json:"standard"`
	Title    string `json:"title"`
	Language string `json:"language"`
	Pages    int    `json:"pages"`

	Extracted extractor.Summary `json:"extracted"`
	Tagged    tagger.Counts     `json:"tagged"`

	Score int             `json:"score"`
	Tier  compliance.Tier `json:"tier"`

	Fixes    []remediate.Fix     `json:"fixes,omitempty"`
	Issues   []compliance.Issue  `json:"issues"`
	Warnings []compliance.Issue  `json:"warnings"`
	Passed   []compliance.Passed `json:"passed_checks"`
}

// Build assembles a report from the run's artifacts. The ID is fresh per
// call; everything else is derived.
func Build(doc *structure.Document, sum extractor.Summary, counts tagger.Counts, rep *compliance.Report) *Remediation {
	r := &Remediation{
		SchemaVersion: SchemaVersion,
		ID:            uuid.NewString(),
		GeneratedAt:   time.Now().UTC(),
		Pages:         sum.Pages,
		Extracted:     sum,
		Tagged:        counts,
	}
	if doc != nil {
		r.Title = doc.Title
		r.Language = doc.Lang
		if doc.Pages > r.Pages {
			r.Pages = doc.Pages
		}
	}
	if rep != nil {
		r.Standard = rep.Standard
		r.Score = rep.Score()
		r.Tier = rep.Summarize()
		r.Issues = rep.Issues
		r.Warnings = rep.Warnings
		r.Passed = rep.Checks
	}
	return r
}

// JSON writes the report as indented JSON.
func (r *Remediation) JSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Text writes a plain-text summary suitable for a terminal.
func (r *Remediation) Text(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s compliance report\n", r.Standard)
	fmt.Fprintf(&sb, "Document: %s (%s), %d pages\n", orUntitled(r.Title), orUnknown(r.Language), r.Pages)
	fmt.Fprintf(&sb, "Result:   %s (score %d)\n\n", r.Tier, r.Score)

	fmt.Fprintf(&sb, "Tagged %d elements: %d figures, %d decorative, %d headings, %d tables, %d links (%d fixed), %d form fields, %d annotations\n\n",
		r.Tagged.Total(), r.Tagged.Images, r.Tagged.Decorative, r.Tagged.Headings,
		r.Tagged.Tables, r.Tagged.Links, r.Tagged.LinksFixed, r.Tagged.FormFields, r.Tagged.Annotations)

	if len(r.Fixes) > 0 {
		fmt.Fprintf(&sb, "Fixes applied (%d):\n", len(r.Fixes))
		for _, fix := range r.Fixes {
			sb.WriteString("  " + fixLine(fix) + "\n")
		}
		sb.WriteByte('\n')
	}
	if len(r.Issues) > 0 {
		fmt.Fprintf(&sb, "Issues (%d):\n", len(r.Issues))
		for _, issue := range r.Issues {
			sb.WriteString("  " + issueLine(issue) + "\n")
		}
		sb.WriteByte('\n')
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&sb, "Warnings (%d):\n", len(r.Warnings))
		for _, warning := range r.Warnings {
			sb.WriteString("  " + issueLine(warning) + "\n")
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "Passed checks: %d\n", len(r.Passed))

	_, err := io.WriteString(w, sb.String())
	return err
}

// HTML renders the report as a standalone HTML page. The body is produced by
// rendering the markdown form of the report.
func (r *Remediation) HTML(w io.Writer) error {
	lang := r.Language
	if lang == "" {
		lang = "en"
	}
	var body strings.Builder
	if err := goldmark.New().Convert([]byte(r.markdown()), &body); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="%s">
<head>
<meta charset="utf-8">
<title>%s compliance report</title>
</head>
<body>
%s</body>
</html>
`, lang, r.Standard, body.String())
	return err
}

func (r *Remediation) markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s compliance report\n\n", r.Standard)
	fmt.Fprintf(&sb, "**Document:** %s (%s), %d pages\n\n", orUntitled(r.Title), orUnknown(r.Language), r.Pages)
	fmt.Fprintf(&sb, "**Result:** %s (score %d)\n\n", r.Tier, r.Score)

	fmt.Fprintf(&sb, "## Tagging\n\n")
	fmt.Fprintf(&sb, "- Figures: %d (plus %d decorative)\n", r.Tagged.Images, r.Tagged.Decorative)
	fmt.Fprintf(&sb, "- Headings: %d\n", r.Tagged.Headings)
	fmt.Fprintf(&sb, "- Tables: %d\n", r.Tagged.Tables)
	fmt.Fprintf(&sb, "- Links: %d (%d fixed)\n", r.Tagged.Links, r.Tagged.LinksFixed)
	fmt.Fprintf(&sb, "- Form fields: %d\n", r.Tagged.FormFields)
	fmt.Fprintf(&sb, "- Annotations: %d\n\n", r.Tagged.Annotations)

	if len(r.Fixes) > 0 {
		fmt.Fprintf(&sb, "## Fixes applied (%d)\n\n", len(r.Fixes))
		for _, fix := range r.Fixes {
			fmt.Fprintf(&sb, "- %s\n", fixLine(fix))
		}
		sb.WriteByte('\n')
	}
	if len(r.Issues) > 0 {
		fmt.Fprintf(&sb, "## Issues (%d)\n\n", len(r.Issues))
		for _, issue := range r.Issues {
			fmt.Fprintf(&sb, "- %s\n", issueLine(issue))
		}
		sb.WriteByte('\n')
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&sb, "## Warnings (%d)\n\n", len(r.Warnings))
		for _, warning := range r.Warnings {
			fmt.Fprintf(&sb, "- %s\n", issueLine(warning))
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "## Passed checks (%d)\n\n", len(r.Passed))
	for _, p := range r.Passed {
		fmt.Fprintf(&sb, "- %s %s\n", p.Criterion, p.Title)
	}
	return sb.String()
}

func fixLine(fix remediate.Fix) string {
	line := fix.Category + ": " + fix.Description
	if fix.Page > 0 {
		line += fmt.Sprintf(" (page %d)", fix.Page)
	}
	return line
}

func issueLine(issue compliance.Issue) string {
	line := fmt.Sprintf("[%s] %s %s: %s", issue.Severity, issue.Criterion, issue.Title, issue.Description)
	if issue.Page > 0 {
		line += fmt.Sprintf(" (page %d)", issue.Page)
	}
	if issue.Remediated {
		line += " [fixed]"
	}
	return line
}

func orUntitled(s string) string {
	if s == "" {
		return "untitled"
	}
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
