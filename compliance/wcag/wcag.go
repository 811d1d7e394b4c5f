// Package wcag checks a paginated HTML document model against WCAG 2.2 AA.
// Checks run in a fixed order and record passes as well as failures, so the
// resulting report can be scored. Structural checks over the tagged tree run
// when a structure document is attached.
package wcag

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/language"

	"docremedy/classify"
	"docremedy/compliance"
	"docremedy/ir/structure"
)

// Standard is the conformance target reported by this checker.
const Standard = "WCAG 2.2 AA"

// criteria names the success criteria this checker exercises.
var criteria = map[string]string{
	"1.1.1": "Non-text Content",
	"1.3.1": "Info and Relationships",
	"1.4.3": "Contrast (Minimum)",
	"2.4.1": "Bypass Blocks",
	"2.4.2": "Page Titled",
	"2.4.4": "Link Purpose (In Context)",
	"2.4.6": "Headings and Labels",
	"3.1.1": "Language of Page",
	"4.1.2": "Name, Role, Value",
}

// Checker runs the WCAG battery over a parsed document.
type Checker struct {
	doc   *html.Node
	sdoc  *structure.Document
	rules classify.Heuristics
}

// Option configures a Checker.
type Option func(*Checker)

// WithStructure attaches the tagged structure document, enabling the
// structural tree checks.
func WithStructure(sdoc *structure.Document) Option {
	return func(c *Checker) { c.sdoc = sdoc }
}

// WithHeuristics overrides the text-classification thresholds.
func WithHeuristics(h classify.Heuristics) Option {
	return func(c *Checker) { c.rules = h }
}

// New returns a checker over the parsed HTML document.
func New(doc *html.Node, opts ...Option) *Checker {
	c := &Checker{doc: doc, rules: classify.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Checker) Standard() string { return Standard }

// Check runs every check in order and returns the report. The only error
// condition is context cancellation; findings are never errors.
func (c *Checker) Check(ctx compliance.Context) (*compliance.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := &battery{report: &compliance.Report{Standard: Standard}}
	c.checkTitle(b)
	c.checkLanguage(b)
	c.checkHeadings(b)
	c.checkImages(b)
	c.checkLinks(b)
	c.checkTables(b)
	c.checkForms(b)
	c.checkSkipNav(b)
	c.checkLandmarks(b)
	c.checkContrast(b)
	c.checkSemantics(b)
	c.checkStructure(b)
	return b.report, nil
}

// battery accumulates findings and settles each criterion as passed when a
// check section records no finding for it.
type battery struct {
	report *compliance.Report
}

// watermark snapshots the finding lists at the start of a check section.
type watermark struct {
	issues   int
	warnings int
}

func (b *battery) fail(criterion string, sev compliance.Severity, category, desc string, page int) {
	b.report.Issues = append(b.report.Issues, compliance.Issue{
		Category:    category,
		Severity:    sev,
		Criterion:   criterion,
		Title:       criteria[criterion],
		Description: desc,
		Page:        page,
	})
}

func (b *battery) warn(criterion, category, desc string, page int) {
	b.report.Warnings = append(b.report.Warnings, compliance.Issue{
		Category:    category,
		Severity:    compliance.SeverityMinor,
		Criterion:   criterion,
		Title:       criteria[criterion],
		Description: desc,
		Page:        page,
	})
}

func (b *battery) pass(criterion string) {
	b.report.Checks = append(b.report.Checks, compliance.Passed{Criterion: criterion, Title: criteria[criterion]})
}

// settle records a pass for the criterion unless the section that started at
// the given watermark recorded an issue or warning against it.
func (b *battery) settle(criterion string, mark watermark) {
	for _, issue := range b.report.Issues[mark.issues:] {
		if issue.Criterion == criterion {
			return
		}
	}
	for _, w := range b.report.Warnings[mark.warnings:] {
		if w.Criterion == criterion {
			return
		}
	}
	b.pass(criterion)
}

func (b *battery) mark() watermark {
	return watermark{issues: len(b.report.Issues), warnings: len(b.report.Warnings)}
}

func (c *Checker) checkTitle(b *battery) {
	mark := b.mark()
	title := ""
	if n := find(c.doc, atom.Title); n != nil {
		title = extractText(n)
	}
	if title == "" && c.sdoc != nil {
		title = strings.TrimSpace(c.sdoc.Title)
	}
	switch {
	case title == "":
		b.fail("2.4.2", compliance.SeverityMajor, "metadata", "document has no title", 0)
	case len(title) < 3:
		b.warn("2.4.2", "metadata", "document title "+strconv.Quote(title)+" is too short to identify the document", 0)
	}
	b.settle("2.4.2", mark)
}

func (c *Checker) checkLanguage(b *battery) {
	mark := b.mark()
	lang := ""
	if n := find(c.doc, atom.Html); n != nil {
		lang, _ = attrVal(n, "lang")
	}
	if lang == "" && c.sdoc != nil {
		lang = c.sdoc.Lang
	}
	lang = strings.TrimSpace(lang)
	switch {
	case len(lang) < 2:
		b.fail("3.1.1", compliance.SeverityMajor, "metadata", "document language is missing or too short to identify", 0)
	default:
		if _, err := language.Parse(lang); err != nil {
			b.warn("3.1.1", "metadata", "document language "+strconv.Quote(lang)+" is not a well-formed language tag", 0)
		}
	}
	b.settle("3.1.1", mark)
}

func (c *Checker) checkHeadings(b *battery) {
	mark := b.mark()
	type head struct {
		level int
		text  string
		page  int
	}
	var heads []head
	walkNodes(c.doc, func(n *html.Node) {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			level := int(n.Data[1] - '0')
			heads = append(heads, head{level: level, text: extractText(n), page: pageOf(n)})
		}
	})

	if len(heads) == 0 {
		b.fail("1.3.1", compliance.SeverityMajor, "headings", "document has no headings", 0)
	} else {
		if heads[0].level != 1 {
			b.fail("1.3.1", compliance.SeverityMajor, "headings",
				"first heading is level "+strconv.Itoa(heads[0].level)+", expected level 1", heads[0].page)
		}
		last := heads[0].level
		for _, h := range heads[1:] {
			if h.level > last+1 {
				b.fail("1.3.1", compliance.SeverityMajor, "headings",
					"heading level jumps from "+strconv.Itoa(last)+" to "+strconv.Itoa(h.level), h.page)
			}
			last = h.level
		}
	}
	for _, h := range heads {
		if h.text == "" {
			b.fail("2.4.6", compliance.SeverityMajor, "headings", "heading has no text", h.page)
		}
	}
	b.settle("1.3.1", mark)
	b.settle("2.4.6", mark)
}

func (c *Checker) checkImages(b *battery) {
	mark := b.mark()
	for _, img := range findAll(c.doc, atom.Img) {
		alt, present := attrVal(img, "alt")
		page := pageOf(img)
		if !present {
			src, _ := attrVal(img, "src")
			b.fail("1.1.1", compliance.SeverityCritical, "images", "image "+strconv.Quote(src)+" has no alt attribute", page)
			continue
		}
		// An explicitly empty alt marks the image decorative.
		if strings.TrimSpace(alt) == "" {
			continue
		}
		if ok, reason := c.rules.ValidateAltText(alt, structure.RoleFigure); !ok {
			b.warn("1.1.1", "images", reason+": "+strconv.Quote(alt), page)
		}
	}
	b.settle("1.1.1", mark)
}

func (c *Checker) checkLinks(b *battery) {
	mark := b.mark()
	for _, a := range findAll(c.doc, atom.A) {
		text := extractText(a)
		page := pageOf(a)
		if label, _ := attrVal(a, "aria-label"); label != "" {
			text = label
		}
		href, _ := attrVal(a, "href")
		if classify.GenericLinkText(text) {
			b.warn("2.4.4", "links",
				"link to "+strconv.Quote(href)+" has generic or empty text "+strconv.Quote(text), page)
		}
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			if rel, _ := attrVal(a, "rel"); !strings.Contains(rel, "noopener") {
				b.warn("2.4.4", "links", "external link to "+strconv.Quote(href)+" lacks rel=noopener", page)
			}
		}
	}
	b.settle("2.4.4", mark)
}

func (c *Checker) checkTables(b *battery) {
	mark := b.mark()
	for _, table := range findAll(c.doc, atom.Table) {
		page := pageOf(table)
		headers := findAll(table, atom.Th)
		if len(headers) == 0 {
			b.fail("1.3.1", compliance.SeverityMajor, "tables", "table has no header cells", page)
		}
		for _, th := range headers {
			if scope, _ := attrVal(th, "scope"); scope == "" {
				b.fail("1.3.1", compliance.SeverityMajor, "tables", "header cell "+strconv.Quote(extractText(th))+" has no scope", page)
			}
		}
		label, _ := attrVal(table, "aria-label")
		if find(table, atom.Caption) == nil && label == "" {
			b.fail("1.3.1", compliance.SeverityMajor, "tables", "table has neither a caption nor an aria-label", page)
		}
		if role, _ := attrVal(table, "role"); role == "" {
			b.fail("1.3.1", compliance.SeverityMajor, "tables", "table does not declare its role", page)
		}
	}
	b.settle("1.3.1", mark)
}

func (c *Checker) checkForms(b *battery) {
	mark := b.mark()
	labeled := make(map[string]bool)
	for _, l := range findAll(c.doc, atom.Label) {
		if target, _ := attrVal(l, "for"); target != "" {
			labeled[target] = true
		}
	}
	controls := findAll(c.doc, atom.Input)
	controls = append(controls, findAll(c.doc, atom.Select)...)
	controls = append(controls, findAll(c.doc, atom.Textarea)...)
	for _, ctl := range controls {
		if typ, _ := attrVal(ctl, "type"); typ == "hidden" {
			continue
		}
		if id, _ := attrVal(ctl, "id"); id != "" && labeled[id] {
			continue
		}
		if label, _ := attrVal(ctl, "aria-label"); label != "" {
			continue
		}
		if ref, _ := attrVal(ctl, "aria-labelledby"); ref != "" {
			continue
		}
		if title, _ := attrVal(ctl, "title"); title != "" {
			continue
		}
		name, _ := attrVal(ctl, "name")
		b.fail("4.1.2", compliance.SeverityMajor, "forms",
			"form control "+strconv.Quote(name)+" has no accessible label", pageOf(ctl))
	}
	b.settle("4.1.2", mark)
}

var skipNavHref = regexp.MustCompile(`#.*content`)

func (c *Checker) checkSkipNav(b *battery) {
	for _, a := range findAll(c.doc, atom.A) {
		if href, _ := attrVal(a, "href"); skipNavHref.MatchString(href) {
			b.pass("2.4.1")
			return
		}
	}
	b.fail("2.4.1", compliance.SeverityMajor, "navigation", "no skip-to-content link found", 0)
}

func (c *Checker) checkLandmarks(b *battery) {
	mark := b.mark()
	main := find(c.doc, atom.Main)
	if main == nil {
		b.fail("1.3.1", compliance.SeverityMajor, "navigation", "no main landmark found", 0)
		return
	}
	if role, _ := attrVal(main, "role"); role != "main" {
		b.warn("1.3.1", "navigation", "the main landmark does not declare role=main", 0)
	}
	b.settle("1.3.1", mark)
}

// lowContrastTokens are style fragments the original audit flags as likely
// contrast failures. A real contrast computation needs rendered colors, which
// the document model does not carry.
var lowContrastTokens = []string{"color: #999", "color: #ccc", "color: gray"}

func (c *Checker) checkContrast(b *battery) {
	flagged := false
	for _, style := range findAll(c.doc, atom.Style) {
		css := strings.ToLower(extractText(style))
		for _, token := range lowContrastTokens {
			if strings.Contains(css, token) {
				b.warn("1.4.3", "presentation", "stylesheet uses a likely low-contrast color: "+token, 0)
				flagged = true
			}
		}
	}
	if !flagged {
		b.pass("1.4.3")
	}
}

var semanticAtoms = []atom.Atom{atom.Header, atom.Nav, atom.Main, atom.Article, atom.Section, atom.Aside, atom.Footer}

func (c *Checker) checkSemantics(b *battery) {
	if find(c.doc, atom.Body) == nil {
		b.fail("1.3.1", compliance.SeverityCritical, "structure", "document has no body", 0)
		return
	}
	distinct := 0
	for _, a := range semanticAtoms {
		if find(c.doc, a) != nil {
			distinct++
		}
	}
	if distinct >= 2 {
		b.pass("1.3.1")
		return
	}
	b.warn("1.3.1", "structure", "document uses few semantic sectioning elements", 0)
}

func (c *Checker) checkStructure(b *battery) {
	if c.sdoc == nil {
		return
	}
	mark := b.mark()
	if !c.sdoc.Marked {
		b.fail("1.3.1", compliance.SeverityCritical, "structure", "document is not marked as tagged", 0)
	}
	if c.sdoc.Tree == nil {
		b.fail("1.3.1", compliance.SeverityCritical, "structure", "document has no structure tree", 0)
		return
	}
	c.sdoc.Tree.Walk(func(e *structure.Element) {
		page := e.Page + 1
		if page < 1 {
			page = 0
		}
		switch e.Role {
		case structure.RoleFigure:
			if strings.TrimSpace(e.Alt) == "" {
				b.fail("1.1.1", compliance.SeverityCritical, "structure", "figure element has no alternative text", page)
			}
		case structure.RoleTable:
			if strings.TrimSpace(e.Title) == "" {
				b.fail("1.3.1", compliance.SeverityMajor, "structure", "table element has no caption", page)
			}
		case structure.RoleArtifact:
			if e.Alt != "" {
				b.fail("1.1.1", compliance.SeverityCritical, "structure", "artifact carries alternative text", page)
			}
		}
		if e.NeedsReview {
			b.warn("1.1.1", "structure", "generated text on "+string(e.Role)+" element awaits manual review", page)
		}
	})
	b.settle("1.3.1", mark)
	b.settle("1.1.1", mark)
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	walkNodes(n, func(c *html.Node) {
		if c.DataAtom == a {
			out = append(out, c)
		}
	})
	return out
}

func walkNodes(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, fn)
	}
}

func attrVal(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.TrimSpace(sb.String())
}

// pageOf resolves the 1-based page number of a node by its enclosing page
// container, or 0 when the node sits outside any page.
func pageOf(n *html.Node) int {
	for p := n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode || p.DataAtom != atom.Div {
			continue
		}
		class, _ := attrVal(p, "class")
		if !strings.Contains(class, "pdf-page") {
			continue
		}
		if raw, ok := attrVal(p, "data-page"); ok {
			if idx, err := strconv.Atoi(raw); err == nil && idx >= 0 {
				return idx + 1
			}
		}
		return 0
	}
	return 0
}
