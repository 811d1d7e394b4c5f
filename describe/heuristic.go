package describe

import (
	"context"
	"fmt"

	"docremedy/classify"
)

// Heuristic is the default describer: a pure function of declared geometry
// with no pixel access and no network. Its descriptions are deliberately
// generic and always carry reduced confidence so the tagger flags them for
// manual review.
type Heuristic struct {
	Rules classify.Heuristics
}

// NewHeuristic returns a describer backed by the default heuristics.
func NewHeuristic() Heuristic { return Heuristic{Rules: classify.Default()} }

func (Heuristic) Name() string { return "heuristic" }

// Describe classifies by geometry and synthesizes a stub description for
// descriptive images: wide images read as diagrams, tall ones as vertical
// graphics, large ones as figures, the rest as generic graphic elements.
func (h Heuristic) Describe(_ context.Context, input Input) (Result, error) {
	res := Result{InputID: input.ID, Confidence: 0.4}
	if h.Rules.Decorative(input.Width, input.Height) {
		res.IsDecorative = true
		res.Confidence = 0.8
		return res, nil
	}

	page := input.Page + 1
	aspect := 1.0
	if input.Height > 0 {
		aspect = float64(input.Width) / float64(input.Height)
	}
	switch {
	case aspect > 2:
		res.AltText = fmt.Sprintf("Diagram or illustration on page %d", page)
	case aspect < 0.5:
		res.AltText = fmt.Sprintf("Vertical graphic on page %d", page)
	case input.Width > 400 && input.Height > 400:
		res.AltText = fmt.Sprintf("Figure or photograph on page %d", page)
	default:
		res.AltText = fmt.Sprintf("Graphic element on page %d", page)
	}
	return res, nil
}
