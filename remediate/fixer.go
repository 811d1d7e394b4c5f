package remediate

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"docremedy/classify"
	"docremedy/describe"
	"docremedy/headings"
	"docremedy/ir/content"
	"docremedy/observability"
)

// Fix records one change the fixer applied to the document.
type Fix struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Page        int    `json:"page,omitempty"` // 1-based; 0 when document-wide
}

// Fixer repairs a parsed document in place: metadata, heading levels, image
// alt text, link text, table captions and header scopes, and form labels.
type Fixer struct {
	title     string
	lang      string
	rules     classify.Heuristics
	norm      headings.Normalizer
	describer describe.Describer
	log       observability.Logger
}

// FixerOption configures a Fixer.
type FixerOption func(*Fixer)

// FixTitle sets the title applied when the document has none.
func FixTitle(title string) FixerOption {
	return func(f *Fixer) { f.title = title }
}

// FixLanguage sets the language tag applied when the document declares none.
func FixLanguage(lang string) FixerOption {
	return func(f *Fixer) { f.lang = lang }
}

// WithHeuristics overrides the classification thresholds.
func WithHeuristics(h classify.Heuristics) FixerOption {
	return func(f *Fixer) { f.rules = h }
}

// WithHeadingPolicy selects how a document that does not open with a level-1
// heading is repaired.
func WithHeadingPolicy(p headings.Policy) FixerOption {
	return func(f *Fixer) { f.norm.Policy = p }
}

// WithDescriber sets the describer consulted for images that need alt text.
func WithDescriber(d describe.Describer) FixerOption {
	return func(f *Fixer) { f.describer = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l observability.Logger) FixerOption {
	return func(f *Fixer) { f.log = l }
}

// NewFixer returns a Fixer with the default heuristics and describer.
func NewFixer(opts ...FixerOption) *Fixer {
	f := &Fixer{
		rules:     classify.Default(),
		describer: describe.NewHeuristic(),
		log:       observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Apply repairs the document in place and returns the fixes applied, in
// document order per category. Applying the fixer to its own output changes
// nothing.
func (f *Fixer) Apply(ctx context.Context, doc *html.Node) ([]Fix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var fixes []Fix
	fixes = f.fixMetadata(doc, fixes)
	fixes = f.fixLandmarks(doc, fixes)
	fixes = f.fixHeadings(doc, fixes)
	fixes, err := f.fixImages(ctx, doc, fixes)
	if err != nil {
		return fixes, err
	}
	fixes = f.fixLinks(doc, fixes)
	fixes = f.fixTables(doc, fixes)
	fixes = f.fixForms(doc, fixes)
	if len(fixes) > 0 {
		f.log.Info("document repaired", observability.Int("fixes", len(fixes)))
	}
	return fixes, nil
}

func (f *Fixer) fixMetadata(doc *html.Node, fixes []Fix) []Fix {
	if root := findNode(doc, atom.Html); root != nil && f.lang != "" {
		if lang, _ := nodeAttr(root, "lang"); len(strings.TrimSpace(lang)) < 2 {
			setAttr(root, "lang", f.lang)
			fixes = append(fixes, Fix{Category: "metadata", Description: "set document language to " + strconv.Quote(f.lang)})
		}
	}
	if f.title == "" {
		return fixes
	}
	title := findNode(doc, atom.Title)
	if title != nil && nodeText(title) != "" {
		return fixes
	}
	if title == nil {
		head := findNode(doc, atom.Head)
		if head == nil {
			return fixes
		}
		title = &html.Node{Type: html.ElementNode, DataAtom: atom.Title, Data: "title"}
		head.AppendChild(title)
	}
	title.AppendChild(&html.Node{Type: html.TextNode, Data: f.title})
	fixes = append(fixes, Fix{Category: "metadata", Description: "set document title to " + strconv.Quote(f.title)})
	return fixes
}

var skipLinkHref = regexp.MustCompile(`#.*content`)

func (f *Fixer) fixLandmarks(doc *html.Node, fixes []Fix) []Fix {
	body := findNode(doc, atom.Body)
	if body == nil {
		return fixes
	}
	main := findNode(doc, atom.Main)
	if main == nil {
		main = &html.Node{Type: html.ElementNode, DataAtom: atom.Main, Data: "main"}
		setAttr(main, "id", "main-content")
		setAttr(main, "role", "main")
		for body.FirstChild != nil {
			c := body.FirstChild
			body.RemoveChild(c)
			main.AppendChild(c)
		}
		body.AppendChild(main)
		fixes = append(fixes, Fix{Category: "navigation", Description: "wrapped page content in a main landmark"})
	} else {
		if id, _ := nodeAttr(main, "id"); id == "" {
			setAttr(main, "id", "main-content")
		}
		if role, _ := nodeAttr(main, "role"); role != "main" {
			setAttr(main, "role", "main")
			fixes = append(fixes, Fix{Category: "navigation", Description: "declared the main landmark role"})
		}
	}

	for _, a := range findNodes(doc, atom.A) {
		if href, _ := nodeAttr(a, "href"); skipLinkHref.MatchString(href) {
			return fixes
		}
	}
	target := attrOr(main, "id", "main-content")
	skip := &html.Node{Type: html.ElementNode, DataAtom: atom.A, Data: "a"}
	setAttr(skip, "href", "#"+target)
	setAttr(skip, "class", "skip-link")
	skip.AppendChild(&html.Node{Type: html.TextNode, Data: "Skip to main content"})
	body.InsertBefore(skip, body.FirstChild)
	fixes = append(fixes, Fix{Category: "navigation", Description: "added a skip navigation link"})
	return fixes
}

var headingAtoms = map[int]atom.Atom{
	1: atom.H1, 2: atom.H2, 3: atom.H3, 4: atom.H4, 5: atom.H5, 6: atom.H6,
}

func (f *Fixer) fixHeadings(doc *html.Node, fixes []Fix) []Fix {
	var nodes []*html.Node
	walkElements(doc, func(n *html.Node) {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			nodes = append(nodes, n)
		}
	})
	if len(nodes) == 0 {
		return fixes
	}

	seq := make([]content.HeadingCandidate, len(nodes))
	for i, n := range nodes {
		seq[i] = content.HeadingCandidate{
			Text:  nodeText(n),
			Level: int(n.Data[1] - '0'),
			Page:  nodePage(n),
		}
	}
	norm, rewrites := f.norm.Normalize(seq)
	offset := len(norm) - len(nodes)

	if offset == 1 {
		synth := &html.Node{Type: html.ElementNode, DataAtom: atom.H1, Data: "h1"}
		synth.AppendChild(&html.Node{Type: html.TextNode, Data: norm[0].Text})
		nodes[0].Parent.InsertBefore(synth, nodes[0])
	}
	for i, n := range nodes {
		level := norm[i+offset].Level
		if a := headingAtoms[level]; a != n.DataAtom {
			n.DataAtom = a
			n.Data = "h" + strconv.Itoa(level)
		}
	}
	for _, rw := range rewrites {
		if rw.Inserted {
			fixes = append(fixes, Fix{Category: "headings", Description: "inserted a document heading " + strconv.Quote(rw.Text)})
			continue
		}
		fixes = append(fixes, Fix{
			Category: "headings",
			Description: "changed heading " + strconv.Quote(rw.Text) + " from level " +
				strconv.Itoa(rw.FromLevel) + " to " + strconv.Itoa(rw.ToLevel),
		})
	}
	return fixes
}

func (f *Fixer) fixImages(ctx context.Context, doc *html.Node, fixes []Fix) ([]Fix, error) {
	for _, img := range findNodes(doc, atom.Img) {
		if err := ctx.Err(); err != nil {
			return fixes, err
		}
		if _, present := nodeAttr(img, "alt"); present {
			continue
		}
		page := nodePage(img)
		width, _ := strconv.Atoi(attrOr(img, "width", ""))
		height, _ := strconv.Atoi(attrOr(img, "height", ""))
		if f.rules.Decorative(width, height) {
			setAttr(img, "alt", "")
			setAttr(img, "role", "presentation")
			fixes = append(fixes, Fix{Category: "images", Description: "marked decorative image " + strconv.Quote(attrOr(img, "src", "")), Page: page})
			continue
		}
		res, err := f.describer.Describe(ctx, describe.Input{
			ID:     attrOr(img, "src", ""),
			Width:  width,
			Height: height,
			Page:   page - 1,
		})
		if err != nil {
			f.log.Warn("image description failed",
				observability.String("src", attrOr(img, "src", "")),
				observability.Error("err", err))
			continue
		}
		if res.IsDecorative {
			setAttr(img, "alt", "")
			setAttr(img, "role", "presentation")
			fixes = append(fixes, Fix{Category: "images", Description: "marked decorative image " + strconv.Quote(attrOr(img, "src", "")), Page: page})
			continue
		}
		setAttr(img, "alt", res.AltText)
		if res.Confidence < f.rules.MinDescribeConfidence {
			setAttr(img, "data-needs-review", "true")
		}
		fixes = append(fixes, Fix{Category: "images", Description: "added alt text " + strconv.Quote(res.AltText), Page: page})
	}
	return fixes, nil
}

func (f *Fixer) fixLinks(doc *html.Node, fixes []Fix) []Fix {
	for _, a := range findNodes(doc, atom.A) {
		if class, _ := nodeAttr(a, "class"); strings.Contains(class, "skip-link") {
			continue
		}
		text := nodeText(a)
		if label, _ := nodeAttr(a, "aria-label"); label == "" && classify.GenericLinkText(text) {
			replacement := LinkText(attrOr(a, "href", ""))
			for a.FirstChild != nil {
				a.RemoveChild(a.FirstChild)
			}
			a.AppendChild(&html.Node{Type: html.TextNode, Data: replacement})
			fixes = append(fixes, Fix{
				Category:    "links",
				Description: "replaced generic link text " + strconv.Quote(text) + " with " + strconv.Quote(replacement),
				Page:        nodePage(a),
			})
			text = replacement
		}

		href := attrOr(a, "href", "")
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			continue
		}
		if v, _ := nodeAttr(a, "title"); v == "" {
			setAttr(a, "title", "External link: "+text)
		}
		if v, _ := nodeAttr(a, "target"); v == "" {
			setAttr(a, "target", "_blank")
		}
		if rel, _ := nodeAttr(a, "rel"); !strings.Contains(rel, "noopener") {
			setAttr(a, "rel", "noopener noreferrer")
			fixes = append(fixes, Fix{
				Category:    "links",
				Description: "added a safe-linking relation to external link " + strconv.Quote(href),
				Page:        nodePage(a),
			})
		}
	}
	return fixes
}

func (f *Fixer) fixTables(doc *html.Node, fixes []Fix) []Fix {
	ordinal := 0
	for _, table := range findNodes(doc, atom.Table) {
		ordinal++
		page := nodePage(table)

		var firstRow *html.Node
		if rows := findNodes(table, atom.Tr); len(rows) > 0 {
			firstRow = rows[0]
		}
		var headers []string
		for _, th := range findNodes(table, atom.Th) {
			headers = append(headers, nodeText(th))
			if scope, _ := nodeAttr(th, "scope"); scope == "" {
				setAttr(th, "scope", headerScope(th, firstRow))
			}
		}

		if role, _ := nodeAttr(table, "role"); role == "" {
			setAttr(table, "role", "table")
			fixes = append(fixes, Fix{Category: "tables", Description: "declared the table role", Page: page})
		}
		label, _ := nodeAttr(table, "aria-label")
		if findNode(table, atom.Caption) == nil && label == "" {
			caption := TableCaption(headers, ordinal)
			setAttr(table, "aria-label", caption)
			fixes = append(fixes, Fix{Category: "tables", Description: "labeled table " + strconv.Quote(caption), Page: page})
		}
	}
	return fixes
}

func (f *Fixer) fixForms(doc *html.Node, fixes []Fix) []Fix {
	labeled := make(map[string]bool)
	for _, l := range findNodes(doc, atom.Label) {
		if target, _ := nodeAttr(l, "for"); target != "" {
			labeled[target] = true
		}
	}
	controls := findNodes(doc, atom.Input)
	controls = append(controls, findNodes(doc, atom.Select)...)
	controls = append(controls, findNodes(doc, atom.Textarea)...)
	for _, ctl := range controls {
		kind := ctl.Data
		if ctl.DataAtom == atom.Input {
			kind = attrOr(ctl, "type", "text")
			if kind == "hidden" {
				continue
			}
		}
		if id, _ := nodeAttr(ctl, "id"); id != "" && labeled[id] {
			continue
		}
		if v, _ := nodeAttr(ctl, "aria-label"); v != "" {
			continue
		}
		if v, _ := nodeAttr(ctl, "aria-labelledby"); v != "" {
			continue
		}
		if v, _ := nodeAttr(ctl, "title"); v != "" {
			continue
		}
		label := FieldLabel(kind, attrOr(ctl, "name", ""))
		setAttr(ctl, "aria-label", label)
		fixes = append(fixes, Fix{Category: "forms", Description: "labeled form control " + strconv.Quote(label), Page: nodePage(ctl)})
	}
	return fixes
}

// headerScope picks col for header cells in a thead or the first row and row
// for header cells that open a body row.
func headerScope(th, firstRow *html.Node) string {
	for p := th.Parent; p != nil; p = p.Parent {
		if p.DataAtom == atom.Thead {
			return "col"
		}
	}
	for p := th.Parent; p != nil; p = p.Parent {
		if p.DataAtom == atom.Tr {
			if p == firstRow {
				return "col"
			}
			return "row"
		}
	}
	return "col"
}

func findNode(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, a); found != nil {
			return found
		}
	}
	return nil
}

func findNodes(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	walkElements(n, func(c *html.Node) {
		if c.DataAtom == a {
			out = append(out, c)
		}
	})
	return out
}

func walkElements(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, fn)
	}
}

func nodeAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attrOr(n *html.Node, key, fallback string) string {
	if v, ok := nodeAttr(n, key); ok && v != "" {
		return v
	}
	return fallback
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func nodeText(n *html.Node) string {
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

// nodePage resolves the 1-based page of a node from its enclosing page
// container, or 0 when the node sits outside any page.
func nodePage(n *html.Node) int {
	for p := n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode || p.DataAtom != atom.Div {
			continue
		}
		if class, _ := nodeAttr(p, "class"); !strings.Contains(class, "pdf-page") {
			continue
		}
		if raw, ok := nodeAttr(p, "data-page"); ok {
			if idx, err := strconv.Atoi(raw); err == nil && idx >= 0 {
				return idx + 1
			}
		}
		return 0
	}
	return 0
}
