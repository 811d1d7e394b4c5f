// Package pipeline wires the remediation stages together: extract content
// from the document model, build the structure tree, repair the document in
// place, check it against the conformance target, and assemble the report.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"docremedy/classify"
	"docremedy/compliance"
	"docremedy/compliance/wcag"
	"docremedy/describe"
	"docremedy/extractor"
	"docremedy/headings"
	"docremedy/ir/content"
	"docremedy/ir/structure"
	"docremedy/observability"
	"docremedy/remediate"
	"docremedy/report"
	"docremedy/tagger"
)

// Result is everything one run produced.
type Result struct {
	Document   *structure.Document
	Elements   []content.Element
	Extracted  extractor.Summary
	Tagged     tagger.Counts
	Fixes      []remediate.Fix
	Compliance *compliance.Report
	Report     *report.Remediation
}

// Pipeline runs the remediation stages over one document at a time. It is
// not safe for concurrent use.
type Pipeline struct {
	log       observability.Logger
	title     string
	lang      string
	rules     classify.Heuristics
	policy    headings.Policy
	describer describe.Describer
	checkOnly bool
	source    string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l observability.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithTitle sets the title applied when the document has none.
func WithTitle(title string) Option {
	return func(p *Pipeline) { p.title = title }
}

// WithLanguage sets the language applied when the document declares none.
func WithLanguage(lang string) Option {
	return func(p *Pipeline) { p.lang = lang }
}

// WithHeuristics overrides the classification thresholds.
func WithHeuristics(h classify.Heuristics) Option {
	return func(p *Pipeline) { p.rules = h }
}

// WithHeadingPolicy selects how a document that does not open with a level-1
// heading is repaired.
func WithHeadingPolicy(policy headings.Policy) Option {
	return func(p *Pipeline) { p.policy = policy }
}

// WithDescriber sets the image describer.
func WithDescriber(d describe.Describer) Option {
	return func(p *Pipeline) { p.describer = d }
}

// CheckOnly disables the repair stage: the document is analyzed and checked
// as-is.
func CheckOnly() Option {
	return func(p *Pipeline) { p.checkOnly = true }
}

// WithSource records the source name in the report.
func WithSource(name string) Option {
	return func(p *Pipeline) { p.source = name }
}

// New returns a Pipeline with the default stages.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		log:       observability.NopLogger{},
		rules:     classify.Default(),
		describer: describe.NewHeuristic(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes one document from r and returns the full result.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (*Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return p.RunParsed(ctx, doc)
}

// RunParsed processes an already-parsed document. The document is mutated
// unless the pipeline is in check-only mode.
func (p *Pipeline) RunParsed(ctx context.Context, doc *html.Node) (*Result, error) {
	start := time.Now()
	res := &Result{Document: &structure.Document{}}

	elems, sum := extractor.New(extractor.WithLogger(p.log)).Extract(doc)
	res.Elements = elems
	res.Extracted = sum
	p.log.Debug("content extracted",
		observability.String("metric", observability.MetricExtractTime),
		observability.Int64("ms", time.Since(start).Milliseconds()),
		observability.Int("elements", len(elems)))

	res.Document.Title = domTitle(doc)
	res.Document.Lang = domLang(doc)
	res.Document.Pages = sum.Pages

	if !p.checkOnly {
		fixer := remediate.NewFixer(
			remediate.FixTitle(p.title),
			remediate.FixLanguage(p.lang),
			remediate.WithHeuristics(p.rules),
			remediate.WithHeadingPolicy(p.policy),
			remediate.WithDescriber(p.describer),
			remediate.WithLogger(p.log))
		fixes, err := fixer.Apply(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("repair document: %w", err)
		}
		res.Fixes = fixes
		// Re-extract so the tagger sees the repaired content.
		res.Elements, res.Extracted = extractor.New(extractor.WithLogger(p.log)).Extract(doc)
		res.Document.Pages = res.Extracted.Pages
		res.Document.Title = domTitle(doc)
		if res.Document.Title == "" {
			res.Document.Title = p.title
		}
		res.Document.Lang = domLang(doc)
		if res.Document.Lang == "" {
			res.Document.Lang = p.lang
		}
	}

	tagStart := time.Now()
	tg := tagger.New(
		tagger.WithLogger(p.log),
		tagger.WithDescriber(p.describer),
		tagger.WithHeuristics(p.rules),
		tagger.WithHeadingPolicy(p.policy))
	counts, err := tg.Tag(ctx, res.Document, res.Elements)
	if err != nil {
		return nil, fmt.Errorf("build structure tree: %w", err)
	}
	res.Tagged = counts
	p.log.Debug("structure tree built",
		observability.String("metric", observability.MetricTagTime),
		observability.Int64("ms", time.Since(tagStart).Milliseconds()),
		observability.Int("created", counts.Total()))
	p.log.Debug("pages resolved",
		observability.String("metric", observability.MetricPageCount),
		observability.Int("pages", res.Document.Pages))

	checkStart := time.Now()
	checker := wcag.New(doc,
		wcag.WithStructure(res.Document),
		wcag.WithHeuristics(p.rules))
	rep, err := checker.Check(ctx)
	if err != nil {
		return nil, fmt.Errorf("check compliance: %w", err)
	}
	res.Compliance = rep
	markRemediated(rep, res.Fixes)
	p.log.Debug("compliance checked",
		observability.String("metric", observability.MetricCheckTime),
		observability.Int64("ms", time.Since(checkStart).Milliseconds()))
	p.log.Debug("issues recorded",
		observability.String("metric", observability.MetricIssueCount),
		observability.Int("issues", len(rep.Issues)))

	res.Report = report.Build(res.Document, res.Extracted, res.Tagged, rep)
	res.Report.Source = p.source
	res.Report.Fixes = res.Fixes

	p.log.Info("remediation run complete",
		observability.String("tier", string(rep.Summarize())),
		observability.Int("score", rep.Score()),
		observability.Int("issues", len(rep.Issues)),
		observability.Int("fixes", len(res.Fixes)),
		observability.Int64("ms", time.Since(start).Milliseconds()))
	return res, nil
}

// markRemediated flags warnings whose category received fixes this run, so
// the report reader can tell residual findings from repaired ones.
func markRemediated(rep *compliance.Report, fixes []remediate.Fix) {
	fixed := make(map[string]bool, len(fixes))
	for _, f := range fixes {
		fixed[f.Category] = true
	}
	for i := range rep.Warnings {
		if fixed[rep.Warnings[i].Category] {
			rep.Warnings[i].Remediated = true
		}
	}
}

func domTitle(doc *html.Node) string {
	if n := findNode(doc, atom.Title); n != nil {
		return nodeText(n)
	}
	return ""
}

func domLang(doc *html.Node) string {
	if n := findNode(doc, atom.Html); n != nil {
		for _, a := range n.Attr {
			if a.Key == "lang" && strings.TrimSpace(a.Val) != "" {
				return a.Val
			}
		}
	}
	return ""
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
