// Package describe defines the optional image-description collaborator
// boundary. The tagging core functions correctly with no describer
// configured; Heuristic provides a deterministic local fallback.
package describe

import (
	"context"
	"fmt"

	"docremedy/ir/content"
)

// Input is a single image submitted for description.
type Input struct {
	// ID is an optional caller-provided identifier echoed back in the
	// corresponding Result.
	ID string
	// Width and Height are the declared pixel dimensions.
	Width  int
	Height int
	// Page is the zero-based page index the image originated from.
	Page int
	// Context carries surrounding page text a provider may use to ground
	// its description. May be empty.
	Context string
	// Metadata passes provider-specific knobs through without hard-coding
	// them into the API surface.
	Metadata map[string]string
}

// Result is a description verdict for one input.
type Result struct {
	// InputID mirrors the Input.ID that produced this result.
	InputID string
	// IsDecorative reports that the image is purely visual ornamentation
	// and should be tagged as an artifact with empty alt text.
	IsDecorative bool
	// AltText is the proposed alternative text; empty when decorative.
	AltText string
	// Confidence in the verdict, 0..1. Consumers treat low-confidence
	// results as needing manual review.
	Confidence float64
}

// Describer is the collaborator contract: one image in, one verdict out.
type Describer interface {
	Name() string
	Describe(ctx context.Context, input Input) (Result, error)
}

// InputOption mutates a description input built from a content element.
type InputOption func(*Input)

// WithContext attaches surrounding page text to the input.
func WithContext(text string) InputOption {
	return func(in *Input) { in.Context = text }
}

// WithMetadata sets provider-specific metadata for the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// InputFromImage converts a content-model image into a description input.
// The generated ID is stable for the resource name on a page to simplify
// correlation with downstream results.
func InputFromImage(img content.Image, opts ...InputOption) Input {
	in := Input{
		ID:     fmt.Sprintf("page-%d-%s", img.Page, img.Name),
		Width:  img.Width,
		Height: img.Height,
		Page:   img.Page,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}
