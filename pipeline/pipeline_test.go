package pipeline_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"docremedy/compliance"
	"docremedy/ir/structure"
	"docremedy/pipeline"
)

const brokenDocument = `<!DOCTYPE html>
<html>
<head></head>
<body>
<div class="pdf-page" data-page="0">
<h1>Annual Report</h1>
<h3>Finances</h3>
<h2>Operations</h2>
<img src="spacer.png" width="15" height="15">
<a href="https://www.example.com/details"></a>
</div>
</body>
</html>`

func run(t *testing.T, src string, opts ...pipeline.Option) *pipeline.Result {
	t.Helper()
	res, err := pipeline.New(opts...).Run(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func TestRunRepairsAndPasses(t *testing.T) {
	res := run(t, brokenDocument,
		pipeline.WithTitle("Annual Report"),
		pipeline.WithLanguage("en"))

	if res.Document.Title != "Annual Report" || res.Document.Lang != "en" {
		t.Fatalf("document metadata = %q/%q", res.Document.Title, res.Document.Lang)
	}
	if !res.Document.Marked || res.Document.Tree == nil {
		t.Fatal("document must be tagged and marked")
	}

	byCat := make(map[string]int)
	for _, f := range res.Fixes {
		byCat[f.Category]++
	}
	for _, cat := range []string{"metadata", "navigation", "headings", "images", "links"} {
		if byCat[cat] == 0 {
			t.Errorf("no %s fixes recorded: %+v", cat, res.Fixes)
		}
	}

	var levels []int
	res.Document.Tree.Walk(func(e *structure.Element) {
		if l := e.Role.HeadingLevel(); l > 0 {
			levels = append(levels, l)
		}
	})
	want := []int{1, 2, 2}
	if len(levels) != len(want) {
		t.Fatalf("heading levels %v, want %v", levels, want)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("heading levels %v, want %v", levels, want)
		}
	}

	if res.Document.Tree.Count(structure.RoleArtifact) != 1 {
		t.Fatal("decorative image must become an artifact")
	}

	var link *structure.Element
	res.Document.Tree.Walk(func(e *structure.Element) {
		if e.Role == structure.RoleLink && strings.Contains(e.Key, "https://www.example.com/details") {
			link = e
		}
	})
	if link == nil {
		t.Fatal("link not tagged")
	}
	if link.Alt != "Link to example.com" {
		t.Fatalf("link text = %q, want Link to example.com", link.Alt)
	}

	if !res.Compliance.Compliant() {
		t.Fatalf("repaired document not compliant: %+v", res.Compliance.Issues)
	}
	if res.Report.Tier != compliance.TierPass {
		t.Fatalf("tier = %s, want pass", res.Report.Tier)
	}
	if problems := res.Document.Tree.CheckInvariants(); problems != nil {
		t.Fatalf("invariants violated: %v", problems)
	}
}

func TestCheckOnlyLeavesDocumentBroken(t *testing.T) {
	res := run(t, brokenDocument, pipeline.CheckOnly())

	if len(res.Fixes) != 0 {
		t.Fatalf("check-only run applied %d fixes", len(res.Fixes))
	}
	if res.Compliance.Compliant() {
		t.Fatal("unrepaired document must not be compliant")
	}
	found := map[string]bool{}
	for _, issue := range res.Compliance.Issues {
		found[issue.Criterion] = true
	}
	for _, criterion := range []string{"2.4.2", "3.1.1", "1.3.1", "1.1.1", "2.4.1"} {
		if !found[criterion] {
			t.Errorf("expected an issue under %s, got %+v", criterion, res.Compliance.Issues)
		}
	}
	warned := false
	for _, w := range res.Compliance.Warnings {
		if w.Criterion == "2.4.4" {
			warned = true
		}
	}
	if !warned {
		t.Error("empty link text must be reported as an advisory finding")
	}
}

func TestRunReportRendering(t *testing.T) {
	res := run(t, brokenDocument,
		pipeline.WithTitle("Annual Report"),
		pipeline.WithLanguage("en"),
		pipeline.WithSource("annual.html"))

	if res.Report.Source != "annual.html" {
		t.Fatalf("source = %q", res.Report.Source)
	}
	var buf bytes.Buffer
	if err := res.Report.Text(&buf); err != nil {
		t.Fatalf("text: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Fixes applied") {
		t.Fatalf("report must list fixes:\n%s", out)
	}
	if !strings.Contains(out, "Annual Report") {
		t.Fatal("report must carry the document title")
	}
}

func TestRunParseFailureSurfaces(t *testing.T) {
	// html.Parse accepts nearly anything, so a read error is the realistic
	// failure path.
	_, err := pipeline.New().Run(context.Background(), failingReader{})
	if err == nil {
		t.Fatal("read failure must surface")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errRead }

var errRead = &readError{}

type readError struct{}

func (*readError) Error() string { return "read failed" }
