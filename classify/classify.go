// Package classify holds the pure classification heuristics shared by the
// tagger: the decorative/descriptive image verdict and the alt-text
// validator. All thresholds live on a single immutable Heuristics value so
// the rule set stays auditable and testable in isolation.
package classify

import (
	"strings"

	"docremedy/ir/structure"
)

// Heuristics is the immutable threshold configuration.
type Heuristics struct {
	// MinDimension: images narrower or shorter than this are decorative.
	MinDimension int
	// MinArea: images with width*height below this are decorative.
	MinArea int
	// MaxAspect / MinAspect: width/height ratios outside this band are
	// decorative (thin rules, borders, spacers).
	MaxAspect float64
	MinAspect float64
	// MinAltLength rejects alt text shorter than this many characters.
	MinAltLength int
	// MinPrefixedAltLength rejects "image of ..." style alt text shorter
	// than this many characters.
	MinPrefixedAltLength int
	// MinDescribeConfidence is the confidence floor below which a
	// collaborator-supplied description is flagged for manual review.
	MinDescribeConfidence float64
}

// Default returns the standard heuristics.
func Default() Heuristics {
	return Heuristics{
		MinDimension:          20,
		MinArea:               400,
		MaxAspect:             20,
		MinAspect:             0.05,
		MinAltLength:          10,
		MinPrefixedAltLength:  20,
		MinDescribeConfidence: 0.5,
	}
}

// Decorative reports whether an image of the given pixel dimensions is
// purely visual ornamentation. Rules are evaluated in order; the first match
// wins. A zero or negative height cannot form a ratio and fails safe toward
// decorative, so noise is never exposed to assistive technology.
func (h Heuristics) Decorative(width, height int) bool {
	if width < h.MinDimension || height < h.MinDimension {
		return true
	}
	if width*height < h.MinArea {
		return true
	}
	if height <= 0 {
		return true
	}
	aspect := float64(width) / float64(height)
	if aspect > h.MaxAspect || aspect < h.MinAspect {
		return true
	}
	return false
}

// genericAltTerms are whole-text matches that never describe content.
var genericAltTerms = map[string]bool{
	"image":        true,
	"picture":      true,
	"photo":        true,
	"graphic":      true,
	"icon":         true,
	"logo":         true,
	"diagram":      true,
	"illustration": true,
	"figure":       true,
	"chart":        true,
	"graph":        true,
	"screenshot":   true,
	"placeholder":  true,
}

// redundantAltPrefixes restate the medium instead of the content.
var redundantAltPrefixes = []string{
	"image of",
	"picture of",
	"photo of",
	"graphic of",
}

// genericLinkTerms are anchor texts that carry no destination information.
var genericLinkTerms = map[string]bool{
	"click here": true,
	"read more":  true,
	"more":       true,
	"link":       true,
	"here":       true,
}

// GenericLinkText reports whether anchor text fails to describe its
// destination: empty text, or one of the stock filler phrases.
func GenericLinkText(text string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	return trimmed == "" || genericLinkTerms[trimmed]
}

// ValidateAltText decides whether text is acceptable alternative text for a
// node with the given role. The empty string is valid only for Artifact
// nodes (explicitly decorative). Rejections return the reason; acceptance
// returns ok=true with an empty reason.
func (h Heuristics) ValidateAltText(text string, role structure.Role) (ok bool, reason string) {
	trimmed := strings.TrimSpace(text)
	if role == structure.RoleArtifact {
		if trimmed != "" {
			return false, "decorative content must have empty alt text"
		}
		return true, ""
	}
	if trimmed == "" {
		return false, "alt text is empty"
	}
	lower := strings.ToLower(trimmed)
	if genericAltTerms[lower] {
		return false, "alt text is a generic term: " + lower
	}
	if len(trimmed) < h.MinAltLength {
		return false, "alt text too short to be descriptive"
	}
	for _, prefix := range redundantAltPrefixes {
		if strings.HasPrefix(lower, prefix) && len(trimmed) < h.MinPrefixedAltLength {
			return false, "alt text restates the medium without describing content"
		}
	}
	return true, ""
}
