// Package tagger builds the logical structure tree over extracted content:
// every content element is routed to a structure role, decorative content is
// demoted to artifacts, and heading levels are repaired on the way in.
package tagger

import (
	"context"

	"docremedy/classify"
	"docremedy/describe"
	"docremedy/headings"
	"docremedy/ir/content"
	"docremedy/ir/structure"
	"docremedy/observability"
	"docremedy/remediate"
)

// Counts reports how many structure elements one tagging run created, by
// category. Elements already present in the tree are not counted again.
type Counts struct {
	Images      int `json:"images"`      // figures created from descriptive images
	Decorative  int `json:"decorative"`  // images demoted to artifacts
	Headings    int `json:"headings"`
	Tables      int `json:"tables"`
	Links       int `json:"links"`
	LinksFixed  int `json:"links_fixed"` // links whose anchor text was replaced
	FormFields  int `json:"form_fields"`
	Annotations int `json:"annotations"`
	Artifacts   int `json:"artifacts"` // all artifact nodes, decorative images included
	Skipped     int `json:"skipped"`   // malformed elements dropped with a warning
}

// Total is the number of structure elements created.
func (c Counts) Total() int {
	return c.Images + c.Decorative + c.Headings + c.Tables + c.Links +
		c.FormFields + c.Annotations + (c.Artifacts - c.Decorative)
}

// Tagger routes content elements into a structure tree.
type Tagger struct {
	log       observability.Logger
	describer describe.Describer
	rules     classify.Heuristics
	norm      headings.Normalizer
}

// Option configures a Tagger.
type Option func(*Tagger)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l observability.Logger) Option {
	return func(t *Tagger) { t.log = l }
}

// WithDescriber sets the image describer consulted for descriptive images.
// The default is the local geometry heuristic.
func WithDescriber(d describe.Describer) Option {
	return func(t *Tagger) { t.describer = d }
}

// WithHeuristics overrides the classification thresholds.
func WithHeuristics(h classify.Heuristics) Option {
	return func(t *Tagger) { t.rules = h }
}

// WithHeadingPolicy selects how a document that does not open with a level-1
// heading is repaired.
func WithHeadingPolicy(p headings.Policy) Option {
	return func(t *Tagger) { t.norm.Policy = p }
}

// New returns a Tagger with the default heuristics, heading policy, and
// describer.
func New(opts ...Option) *Tagger {
	t := &Tagger{
		log:       observability.NopLogger{},
		describer: describe.NewHeuristic(),
		rules:     classify.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tag merges the given content elements into the document's structure tree,
// creating the tree and setting the marked flag when absent. Elements whose
// identity key already resolves in the tree are left untouched, so tagging
// the same extraction twice is a no-op. Malformed elements are skipped with
// a warning rather than failing the run.
func (t *Tagger) Tag(ctx context.Context, doc *structure.Document, elems []content.Element) (Counts, error) {
	var counts Counts
	if doc.Tree == nil {
		doc.Tree = structure.NewTree()
	}
	doc.Marked = true
	tree := doc.Tree

	var heads []content.HeadingCandidate
	for _, el := range elems {
		if el.Kind == content.KindHeading && el.Valid() {
			heads = append(heads, *el.Heading)
		}
	}
	norm, rewrites := t.norm.Normalize(heads)
	if len(rewrites) > 0 {
		t.log.Info("heading hierarchy repaired", observability.Int("rewrites", len(rewrites)))
	}
	// One extra output heading means the normalizer synthesized a document
	// heading ahead of the sequence.
	synthetic := len(norm) - len(heads)

	nextHead := 0
	for _, el := range elems {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		if !el.Valid() {
			counts.Skipped++
			t.log.Warn("skipping malformed content element",
				observability.String("kind", el.Kind.String()))
			continue
		}
		page := el.Page()
		if page+1 > doc.Pages {
			doc.Pages = page + 1
		}

		switch el.Kind {
		case content.KindImage:
			if tree.FindByKey(el.Key()) != nil {
				continue
			}
			t.tagImage(ctx, tree, el, &counts)
		case content.KindHeading:
			if synthetic == 1 && nextHead == 0 {
				t.tagHeading(tree, norm[0], &counts)
			}
			h := norm[nextHead+synthetic]
			nextHead++
			t.tagHeading(tree, h, &counts)
		case content.KindTable:
			if tree.FindByKey(el.Key()) != nil {
				continue
			}
			t.tagTable(tree, el, &counts)
		case content.KindLink:
			if tree.FindByKey(el.Key()) != nil {
				continue
			}
			t.tagLink(tree, el, &counts)
		case content.KindFormField:
			if tree.FindByKey(el.Key()) != nil {
				continue
			}
			t.tagFormField(tree, el, &counts)
		case content.KindAnnotation:
			if tree.FindByKey(el.Key()) != nil {
				continue
			}
			t.tagAnnotation(tree, el, &counts)
		}
	}

	t.log.Debug("tagging pass complete",
		observability.Int("created", counts.Total()),
		observability.Int("skipped", counts.Skipped))
	return counts, nil
}

func (t *Tagger) tagImage(ctx context.Context, tree *structure.Tree, el content.Element, counts *Counts) {
	img := el.Image
	if t.rules.Decorative(img.Width, img.Height) {
		node := &structure.Element{Role: structure.RoleArtifact, Page: img.Page, Key: el.Key()}
		attach(tree, node, img.Rect)
		counts.Decorative++
		counts.Artifacts++
		return
	}

	var alt string
	confidence := 0.0
	if t.describer != nil {
		res, err := t.describer.Describe(ctx, describe.InputFromImage(*img))
		if err != nil {
			t.log.Warn("image description failed",
				observability.String("image", el.Key()),
				observability.Error("err", err))
		} else if res.IsDecorative {
			node := &structure.Element{Role: structure.RoleArtifact, Page: img.Page, Key: el.Key()}
			attach(tree, node, img.Rect)
			counts.Decorative++
			counts.Artifacts++
			return
		} else {
			alt = res.AltText
			confidence = res.Confidence
		}
	}

	node := &structure.Element{Role: structure.RoleFigure, Page: img.Page, Key: el.Key(), Alt: alt}
	if ok, reason := t.rules.ValidateAltText(alt, structure.RoleFigure); !ok {
		node.NeedsReview = true
		t.log.Debug("figure alt text needs review",
			observability.String("image", el.Key()),
			observability.String("reason", reason))
	} else if confidence < t.rules.MinDescribeConfidence {
		node.NeedsReview = true
	}
	attach(tree, node, img.Rect)
	counts.Images++
}

func (t *Tagger) tagHeading(tree *structure.Tree, h content.HeadingCandidate, counts *Counts) {
	key := content.Element{Kind: content.KindHeading, Heading: &h}.Key()
	if tree.FindByKey(key) != nil {
		return
	}
	node := &structure.Element{
		Role:  structure.Heading(h.Level),
		Page:  h.Page,
		Key:   key,
		Title: h.Text,
	}
	tree.Root.AppendChild(node)
	tree.AllocRef(node)
	counts.Headings++
}

func (t *Tagger) tagTable(tree *structure.Tree, el content.Element, counts *Counts) {
	tbl := el.Table
	node := &structure.Element{
		Role:  structure.RoleTable,
		Page:  tbl.Page,
		Key:   el.Key(),
		Title: remediate.TableCaption(tbl.Headers, tbl.Ordinal),
	}
	scope := structure.ScopeCol
	if tbl.HasHeaderColumn && !tbl.HasHeaderRow {
		scope = structure.ScopeRow
	}
	for _, header := range tbl.Headers {
		node.AppendChild(&structure.Element{
			Role:  structure.RoleTH,
			Page:  tbl.Page,
			Title: header,
			Scope: scope,
		})
	}
	tree.Root.AppendChild(node)
	tree.AllocRef(node)
	counts.Tables++
}

func (t *Tagger) tagLink(tree *structure.Tree, el content.Element, counts *Counts) {
	link := el.Link
	node := &structure.Element{
		Role: structure.RoleLink,
		Page: link.Page,
		Key:  el.Key(),
		Alt:  link.Text,
	}
	if classify.GenericLinkText(link.Text) {
		node.Alt = remediate.LinkText(link.URL)
		counts.LinksFixed++
		t.log.Debug("generic link text replaced",
			observability.String("url", link.URL),
			observability.String("text", node.Alt))
	}
	tree.Root.AppendChild(node)
	tree.AllocRef(node)
	counts.Links++
}

func (t *Tagger) tagFormField(tree *structure.Tree, el content.Element, counts *Counts) {
	field := el.FormField
	node := &structure.Element{
		Role:  structure.RoleForm,
		Page:  field.Page,
		Key:   el.Key(),
		Title: field.Tooltip,
	}
	if node.Title == "" {
		node.Title = remediate.FieldLabel(field.Kind, field.Name)
	}
	tree.Root.AppendChild(node)
	tree.AllocRef(node)
	counts.FormFields++
}

// annotationRoles maps annotation subtypes to structure roles. Link and
// Popup annotations are handled through their parent content and are never
// tagged directly.
var annotationRoles = map[string]structure.Role{
	"Text":      structure.RoleNote,
	"FreeText":  structure.RoleNote,
	"Stamp":     structure.RoleFigure,
	"Ink":       structure.RoleFigure,
	"Highlight": structure.RoleSpan,
	"Underline": structure.RoleSpan,
	"Squiggly":  structure.RoleSpan,
	"StrikeOut": structure.RoleSpan,
	"Caret":     structure.RoleSpan,
}

func (t *Tagger) tagAnnotation(tree *structure.Tree, el content.Element, counts *Counts) {
	annot := el.Annotation
	if annot.Subtype == "Link" || annot.Subtype == "Popup" {
		return
	}
	role, known := annotationRoles[annot.Subtype]
	if !known {
		node := &structure.Element{Role: structure.RoleArtifact, Page: annot.Page, Key: el.Key()}
		attach(tree, node, annot.Rect)
		counts.Artifacts++
		return
	}

	node := &structure.Element{Role: role, Page: annot.Page, Key: el.Key(), Alt: annot.Contents}
	if role == structure.RoleFigure && node.Alt == "" {
		node.Alt = annot.Subtype + " annotation"
		node.NeedsReview = true
	}
	attach(tree, node, annot.Rect)
	counts.Annotations++
}

func attach(tree *structure.Tree, node *structure.Element, rect content.Rect) {
	if !rect.IsEmpty() {
		node.Bounds = &structure.Rect{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height}
	}
	tree.Root.AppendChild(node)
	tree.AllocRef(node)
}
