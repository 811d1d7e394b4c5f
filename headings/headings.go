// Package headings normalizes a document-order heading sequence so that the
// first heading is level 1 and no level is ever skipped.
package headings

import "docremedy/ir/content"

// Policy selects how a sequence that does not open with a level-1 heading is
// repaired.
type Policy int

const (
	// PolicyConvert rewrites the first heading to level 1 in place.
	PolicyConvert Policy = iota
	// PolicyInsert synthesizes a level-1 document heading ahead of the
	// first heading, preserving the original as a subordinate heading.
	PolicyInsert
)

// SyntheticTitle is the text used for a heading inserted under PolicyInsert.
const SyntheticTitle = "Document"

// Rewrite records one adjustment made during normalization.
type Rewrite struct {
	Index     int // position in the output sequence
	FromLevel int
	ToLevel   int
	Inserted  bool
	Text      string
}

// Normalizer enforces the heading hierarchy invariants over one sequence.
// It is stateless between calls to Normalize; the per-sequence lastLevel
// cursor lives on the stack.
type Normalizer struct {
	Policy Policy
}

// Normalize returns the repaired sequence together with the rewrites that
// were applied. The result satisfies: the first resolved level is 1, and no
// two consecutive resolved levels differ by more than 1. Running Normalize
// over its own output applies zero rewrites.
func (n Normalizer) Normalize(seq []content.HeadingCandidate) ([]content.HeadingCandidate, []Rewrite) {
	if len(seq) == 0 {
		return nil, nil
	}

	out := make([]content.HeadingCandidate, 0, len(seq)+1)
	var rewrites []Rewrite
	lastLevel := 0

	for _, h := range seq {
		level := h.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}

		if lastLevel == 0 && level != 1 {
			if n.Policy == PolicyInsert {
				synth := content.HeadingCandidate{Text: SyntheticTitle, Level: 1, Page: h.Page}
				out = append(out, synth)
				rewrites = append(rewrites, Rewrite{Index: len(out) - 1, FromLevel: 0, ToLevel: 1, Inserted: true, Text: SyntheticTitle})
				lastLevel = 1
			} else {
				rewrites = append(rewrites, Rewrite{Index: len(out), FromLevel: h.Level, ToLevel: 1, Text: h.Text})
				level = 1
			}
		}

		if lastLevel > 0 && level > lastLevel+1 {
			rewrites = append(rewrites, Rewrite{Index: len(out), FromLevel: h.Level, ToLevel: lastLevel + 1, Text: h.Text})
			level = lastLevel + 1
		}

		h.Level = level
		out = append(out, h)
		lastLevel = level
	}

	return out, rewrites
}
