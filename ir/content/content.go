package content

import "fmt"

// Rect is a bounding box in page coordinates with the origin in the
// lower-left corner of the page.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the rectangle has non-positive dimensions.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Kind discriminates the content-element variants produced by an extractor.
type Kind int

const (
	KindImage Kind = iota
	KindTable
	KindLink
	KindFormField
	KindAnnotation
	KindHeading
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindTable:
		return "table"
	case KindLink:
		return "link"
	case KindFormField:
		return "form-field"
	case KindAnnotation:
		return "annotation"
	case KindHeading:
		return "heading"
	default:
		return "unknown"
	}
}

// Image is a raster image placed on a page. Name is the resource slot name
// the image occupies and is stable across runs over the same document.
type Image struct {
	Name   string
	Width  int
	Height int
	Page   int
	Rect   Rect
}

// Table describes a detected tabular region. Headers carries the header-row
// cell texts when HasHeaderRow is set.
type Table struct {
	Page            int
	Rows            int
	Cols            int
	HasHeaderRow    bool
	HasHeaderColumn bool
	Headers         []string
	Ordinal         int // 1-based position among the document's tables
}

// Link is a navigational link with its visible anchor text.
type Link struct {
	Text    string
	URL     string
	Page    int
	Ordinal int // 1-based position among the document's links
}

// FormField is an interactive form control.
type FormField struct {
	Kind     string // text, checkbox, radio, select, textarea, button
	Name     string
	Tooltip  string
	Required bool
	Page     int
}

// Annotation is a page annotation by PDF subtype (FreeText, Stamp, ...).
type Annotation struct {
	Subtype  string
	Contents string
	Page     int
	Rect     Rect
	Ordinal  int // 1-based position among the document's annotations
}

// HeadingCandidate is a heading detected by the extractor with its claimed
// level before normalization. A synthesized heading carries ordinal zero,
// below the extractor's 1-based numbering.
type HeadingCandidate struct {
	Text    string
	Level   int
	Page    int
	Ordinal int
}

// Element is the sum of all content variants. Exactly one of the pointer
// fields is set; Kind selects it. Elements are read-only to the tagging core.
type Element struct {
	Kind       Kind
	Image      *Image
	Table      *Table
	Link       *Link
	FormField  *FormField
	Annotation *Annotation
	Heading    *HeadingCandidate
}

// Page returns the page the element belongs to, or -1 when the variant
// pointer is missing (a malformed element).
func (e Element) Page() int {
	switch e.Kind {
	case KindImage:
		if e.Image != nil {
			return e.Image.Page
		}
	case KindTable:
		if e.Table != nil {
			return e.Table.Page
		}
	case KindLink:
		if e.Link != nil {
			return e.Link.Page
		}
	case KindFormField:
		if e.FormField != nil {
			return e.FormField.Page
		}
	case KindAnnotation:
		if e.Annotation != nil {
			return e.Annotation.Page
		}
	case KindHeading:
		if e.Heading != nil {
			return e.Heading.Page
		}
	}
	return -1
}

// Key returns the stable identity key used to match an element against an
// already-tagged structure element. The generated key is stable for the
// element's name (or ordinal) on a page so that re-running the tagger over
// the same document resolves to the same key.
func (e Element) Key() string {
	switch e.Kind {
	case KindImage:
		if e.Image != nil {
			return fmt.Sprintf("page-%d-img-%s", e.Image.Page, e.Image.Name)
		}
	case KindTable:
		if e.Table != nil {
			return fmt.Sprintf("page-%d-table-%d", e.Table.Page, e.Table.Ordinal)
		}
	case KindLink:
		if e.Link != nil {
			return fmt.Sprintf("page-%d-link-%d-%s", e.Link.Page, e.Link.Ordinal, e.Link.URL)
		}
	case KindFormField:
		if e.FormField != nil {
			return fmt.Sprintf("page-%d-field-%s", e.FormField.Page, e.FormField.Name)
		}
	case KindAnnotation:
		if e.Annotation != nil {
			return fmt.Sprintf("page-%d-annot-%d-%s", e.Annotation.Page, e.Annotation.Ordinal, e.Annotation.Subtype)
		}
	case KindHeading:
		if e.Heading != nil {
			return fmt.Sprintf("page-%d-h-%d-%s", e.Heading.Page, e.Heading.Ordinal, e.Heading.Text)
		}
	}
	return ""
}

// Valid reports whether the element carries its variant payload and a usable
// page reference. Invalid elements are skipped by the tagger with a warning.
func (e Element) Valid() bool {
	return e.Page() >= 0 && e.Key() != ""
}
