package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"docremedy/compliance"
	"docremedy/extractor"
	"docremedy/ir/structure"
	"docremedy/report"
	"docremedy/tagger"
)

func sampleReport() *report.Remediation {
	doc := &structure.Document{Title: "Course Catalog", Lang: "en", Pages: 3}
	sum := extractor.Summary{Pages: 3, Images: 2, Headings: 4}
	counts := tagger.Counts{Images: 1, Decorative: 1, Headings: 4, Artifacts: 1}
	rep := &compliance.Report{Standard: "WCAG 2.2 AA"}
	rep.Issues = append(rep.Issues, compliance.Issue{
		Category: "images", Severity: compliance.SeverityCritical,
		Criterion: "1.1.1", Title: "Non-text Content",
		Description: "image has no alt attribute", Page: 2,
	})
	for i := 0; i < 8; i++ {
		rep.Checks = append(rep.Checks, compliance.Passed{Criterion: "2.4.2", Title: "Page Titled"})
	}
	return report.Build(doc, sum, counts, rep)
}

func TestBuild(t *testing.T) {
	r := sampleReport()
	if r.SchemaVersion != report.SchemaVersion {
		t.Fatalf("schema version = %q", r.SchemaVersion)
	}
	if r.ID == "" || r.GeneratedAt.IsZero() {
		t.Fatal("report must carry an id and timestamp")
	}
	if r.Title != "Course Catalog" || r.Language != "en" || r.Pages != 3 {
		t.Fatalf("document fields not carried: %+v", r)
	}
	if r.Score != 89 {
		t.Fatalf("score = %d, want 89", r.Score)
	}
	if r.Tier != compliance.TierNearPass {
		t.Fatalf("tier = %s, want near_pass", r.Tier)
	}
}

func TestBuildIDsAreUnique(t *testing.T) {
	if sampleReport().ID == sampleReport().ID {
		t.Fatal("report ids must be unique per build")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().JSON(&buf); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"schema_version", "id", "score", "tier", "issues", "tagged"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("json output missing key %q", key)
		}
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().Text(&buf); err != nil {
		t.Fatalf("text: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"WCAG 2.2 AA compliance report",
		"Course Catalog",
		"near_pass",
		"image has no alt attribute",
		"(page 2)",
		"Passed checks: 8",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().HTML(&buf); err != nil {
		t.Fatalf("html: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Fatal("html output must be a standalone page")
	}
	for _, want := range []string{`<html lang="en">`, "<h1>", "image has no alt attribute"} {
		if !strings.Contains(out, want) {
			t.Errorf("html output missing %q", want)
		}
	}
}
