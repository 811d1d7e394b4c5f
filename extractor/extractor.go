// Package extractor walks the paginated document model and produces the
// flat, document-ordered content element list the tagger consumes. Page
// membership comes from the enclosing page container ("pdf-page" divs with a
// data-page index); content outside any container belongs to page zero.
package extractor

import (
	"io"
	"path"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"docremedy/ir/content"
	"docremedy/observability"
)

// Summary counts what one extraction found, by kind.
type Summary struct {
	Pages       int `json:"pages"`
	Images      int `json:"images"`
	Tables      int `json:"tables"`
	Links       int `json:"links"`
	FormFields  int `json:"form_fields"`
	Annotations int `json:"annotations"`
	Headings    int `json:"headings"`
}

// Extractor pulls content elements out of a parsed document.
type Extractor struct {
	log observability.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l observability.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

// New returns an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractSource parses HTML from r and extracts its content elements.
func (e *Extractor) ExtractSource(r io.Reader) ([]content.Element, Summary, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, Summary{}, err
	}
	elems, sum := e.Extract(doc)
	return elems, sum, nil
}

// Extract walks the parsed document in reading order and returns its content
// elements together with a per-kind summary. Element identity keys are stable
// across repeated extractions of the same document.
func (e *Extractor) Extract(doc *html.Node) ([]content.Element, Summary) {
	w := &walker{}
	w.walk(doc, 0)
	sum := w.sum
	sum.Pages = w.maxPage + 1
	e.log.Debug("extraction complete",
		observability.String("metric", observability.MetricElementCount),
		observability.Int("pages", sum.Pages),
		observability.Int("elements", len(w.elems)))
	return w.elems, sum
}

type walker struct {
	elems   []content.Element
	sum     Summary
	maxPage int
	tables  int // running ordinals, document-wide
	links   int
	heads   int
	annots  int
	unnamed int // running counter for images without a usable name
}

func (w *walker) walk(n *html.Node, page int) {
	if n.Type == html.ElementNode {
		if n.DataAtom == atom.Div && strings.Contains(attr(n, "class"), "pdf-page") {
			if idx, err := strconv.Atoi(attr(n, "data-page")); err == nil && idx >= 0 {
				page = idx
			}
		}
		if page > w.maxPage {
			w.maxPage = page
		}
		if subtype := attr(n, "data-annotation"); subtype != "" {
			w.annotation(n, subtype, page)
			return
		}
		switch n.DataAtom {
		case atom.Img:
			w.image(n, page)
			return
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			w.heading(n, page)
			return
		case atom.Table:
			// Keep walking: cells may hold links and images of their own.
			w.table(n, page)
		case atom.A:
			// Keep walking: an anchor may wrap an image.
			w.link(n, page)
		case atom.Input, atom.Select, atom.Textarea:
			w.formField(n, page)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, page)
	}
}

func (w *walker) image(n *html.Node, page int) {
	name := attr(n, "data-name")
	if name == "" {
		if src := attr(n, "src"); src != "" {
			base := path.Base(src)
			name = strings.TrimSuffix(base, path.Ext(base))
		}
	}
	if name == "" {
		w.unnamed++
		name = "img-" + strconv.Itoa(w.unnamed)
	}
	w.elems = append(w.elems, content.Element{Kind: content.KindImage, Image: &content.Image{
		Name:   name,
		Width:  intAttr(n, "width"),
		Height: intAttr(n, "height"),
		Page:   page,
	}})
	w.sum.Images++
}

func (w *walker) heading(n *html.Node, page int) {
	w.heads++
	w.elems = append(w.elems, content.Element{Kind: content.KindHeading, Heading: &content.HeadingCandidate{
		Text:    text(n),
		Level:   int(n.Data[1] - '0'),
		Page:    page,
		Ordinal: w.heads,
	}})
	w.sum.Headings++
}

func (w *walker) table(n *html.Node, page int) {
	w.tables++
	tbl := &content.Table{Page: page, Ordinal: w.tables}

	var rows []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			rows = append(rows, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	tbl.Rows = len(rows)
	headerColumn := len(rows) > 0
	for i, row := range rows {
		cols := 0
		firstCellIsHeader := false
		for c := row.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.DataAtom != atom.Td && c.DataAtom != atom.Th {
				continue
			}
			if cols == 0 && c.DataAtom == atom.Th {
				firstCellIsHeader = true
			}
			cols++
			if i == 0 && c.DataAtom == atom.Th {
				tbl.HasHeaderRow = true
				tbl.Headers = append(tbl.Headers, text(c))
			}
		}
		if cols > tbl.Cols {
			tbl.Cols = cols
		}
		if !firstCellIsHeader {
			headerColumn = false
		}
	}
	tbl.HasHeaderColumn = headerColumn

	w.elems = append(w.elems, content.Element{Kind: content.KindTable, Table: tbl})
	w.sum.Tables++
}

func (w *walker) link(n *html.Node, page int) {
	href := attr(n, "href")
	if href == "" {
		return
	}
	w.links++
	w.elems = append(w.elems, content.Element{Kind: content.KindLink, Link: &content.Link{
		Text:    text(n),
		URL:     href,
		Page:    page,
		Ordinal: w.links,
	}})
	w.sum.Links++
}

func (w *walker) formField(n *html.Node, page int) {
	kind := n.Data
	if n.DataAtom == atom.Input {
		kind = attr(n, "type")
		if kind == "" {
			kind = "text"
		}
		if kind == "hidden" {
			return
		}
	}
	name := attr(n, "name")
	if name == "" {
		name = attr(n, "id")
	}
	if name == "" {
		return
	}
	_, required := findAttr(n, "required")
	w.elems = append(w.elems, content.Element{Kind: content.KindFormField, FormField: &content.FormField{
		Kind:     kind,
		Name:     name,
		Tooltip:  attr(n, "title"),
		Required: required,
		Page:     page,
	}})
	w.sum.FormFields++
}

func (w *walker) annotation(n *html.Node, subtype string, page int) {
	w.annots++
	w.elems = append(w.elems, content.Element{Kind: content.KindAnnotation, Annotation: &content.Annotation{
		Subtype:  subtype,
		Contents: text(n),
		Page:     page,
		Ordinal:  w.annots,
	}})
	w.sum.Annotations++
}

func attr(n *html.Node, key string) string {
	v, _ := findAttr(n, key)
	return v
}

func findAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func intAttr(n *html.Node, key string) int {
	v, err := strconv.Atoi(attr(n, key))
	if err != nil {
		return 0
	}
	return v
}

func text(n *html.Node) string {
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
