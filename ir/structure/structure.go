package structure

// Role is the structure type of an element, using the standard structure
// type names.
type Role string

const (
	RoleDocument Role = "Document"
	RoleH1       Role = "H1"
	RoleH2       Role = "H2"
	RoleH3       Role = "H3"
	RoleH4       Role = "H4"
	RoleH5       Role = "H5"
	RoleH6       Role = "H6"
	RoleP        Role = "P"
	RoleFigure   Role = "Figure"
	RoleTable    Role = "Table"
	RoleTH       Role = "TH"
	RoleTD       Role = "TD"
	RoleLink     Role = "Link"
	RoleForm     Role = "Form"
	RoleNote     Role = "Note"
	RoleSpan     Role = "Span"
	RoleArtifact Role = "Artifact"
)

// Heading returns the heading role for a level clamped to 1..6, and whether
// the role is a heading at all for level <= 0.
func Heading(level int) Role {
	switch {
	case level <= 1:
		return RoleH1
	case level == 2:
		return RoleH2
	case level == 3:
		return RoleH3
	case level == 4:
		return RoleH4
	case level == 5:
		return RoleH5
	default:
		return RoleH6
	}
}

// HeadingLevel returns the level of a heading role, or 0 when the role is
// not a heading.
func (r Role) HeadingLevel() int {
	switch r {
	case RoleH1:
		return 1
	case RoleH2:
		return 2
	case RoleH3:
		return 3
	case RoleH4:
		return 4
	case RoleH5:
		return 5
	case RoleH6:
		return 6
	default:
		return 0
	}
}

// Scope marks a table header cell as heading its column or its row.
type Scope string

const (
	ScopeCol Scope = "col"
	ScopeRow Scope = "row"
)

// Rect mirrors the content-model bounding box for elements that carry
// geometry.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Item is a child of a structure element: either a nested element or an
// opaque content reference (a ParentTree index). Ref is -1 when Element is
// set.
type Item struct {
	Element *Element
	Ref     int
}

// Element is a node in the logical structure tree.
type Element struct {
	Role   Role
	Parent *Element
	Page   int
	// Key is the stable identity of the content this node tags, used to
	// resolve whether content is already represented in the tree.
	Key string
	// Alt carries alternative text. For Artifact nodes it must stay empty:
	// decorative content is explicitly alt-empty, not merely untagged.
	Alt      string
	Title    string
	Scope    Scope
	Bounds   *Rect
	Kids     []Item
	// NeedsReview marks synthesized or rejected text for manual follow-up.
	NeedsReview bool
}

// AppendChild links child under e and returns it.
func (e *Element) AppendChild(child *Element) *Element {
	child.Parent = e
	e.Kids = append(e.Kids, Item{Element: child, Ref: -1})
	return child
}

// AppendRef attaches a content reference to e.
func (e *Element) AppendRef(ref int) {
	e.Kids = append(e.Kids, Item{Element: nil, Ref: ref})
}

// Tree is the root of the logical structure overlaid on a document's raw
// content. Root children are kept in insertion order, which is the intended
// reading order.
type Tree struct {
	Root *Element
	// ParentTree maps a content-reference index back to the element that
	// owns it. Every index appears exactly once.
	ParentTree map[int]*Element
	// NextKey is the next ParentTree index to allocate; allocation is
	// strictly monotonic within and across runs on the same tree.
	NextKey int
}

// NewTree returns an empty tree with a Document root.
func NewTree() *Tree {
	return &Tree{
		Root:       &Element{Role: RoleDocument, Page: -1},
		ParentTree: make(map[int]*Element),
	}
}

// AllocRef allocates a fresh ParentTree index owned by elem and records the
// reference on the element. Indices are never reused.
func (t *Tree) AllocRef(elem *Element) int {
	ref := t.NextKey
	t.NextKey++
	t.ParentTree[ref] = elem
	elem.AppendRef(ref)
	return ref
}

// FindByKey walks the tree for the element tagged with the given identity
// key. Returns nil when the content is not yet represented.
func (t *Tree) FindByKey(key string) *Element {
	if t == nil || t.Root == nil || key == "" {
		return nil
	}
	return findByKey(t.Root, key)
}

func findByKey(e *Element, key string) *Element {
	if e.Key == key {
		return e
	}
	for _, kid := range e.Kids {
		if kid.Element == nil {
			continue
		}
		if found := findByKey(kid.Element, key); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits every element in depth-first reading order, root included.
func (t *Tree) Walk(fn func(*Element)) {
	if t == nil || t.Root == nil {
		return
	}
	walk(t.Root, fn)
}

func walk(e *Element, fn func(*Element)) {
	fn(e)
	for _, kid := range e.Kids {
		if kid.Element != nil {
			walk(kid.Element, fn)
		}
	}
}

// Count returns the number of elements with the given role.
func (t *Tree) Count(role Role) int {
	n := 0
	t.Walk(func(e *Element) {
		if e.Role == role {
			n++
		}
	})
	return n
}

// CheckInvariants verifies the single-parent and unique-index properties,
// returning a description per violation. A valid tree returns nil.
func (t *Tree) CheckInvariants() []string {
	var problems []string
	if t == nil || t.Root == nil {
		return []string{"tree has no root"}
	}
	if t.Root.Parent != nil {
		problems = append(problems, "root has a parent")
	}
	seen := make(map[*Element]bool)
	t.Walk(func(e *Element) {
		if seen[e] {
			problems = append(problems, "element reachable through more than one parent: "+string(e.Role))
			return
		}
		seen[e] = true
		if e != t.Root && e.Parent == nil {
			problems = append(problems, "non-root element without a parent: "+string(e.Role))
		}
		if e.Role == RoleArtifact && e.Alt != "" {
			problems = append(problems, "artifact carries non-empty alt text")
		}
	})
	for ref, owner := range t.ParentTree {
		if owner == nil {
			problems = append(problems, "parent-tree index without owner")
			continue
		}
		if !seen[owner] {
			problems = append(problems, "parent-tree index owned by detached element")
		}
		if ref >= t.NextKey {
			problems = append(problems, "parent-tree index beyond allocation watermark")
		}
	}
	return problems
}

// Document couples a structure tree with the document-level accessibility
// metadata the tagging pass maintains.
type Document struct {
	Title  string
	Lang   string
	Marked bool
	Pages  int
	Tree   *Tree
}
