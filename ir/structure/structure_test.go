package structure_test

import (
	"testing"

	"docremedy/ir/structure"
)

func TestHeadingRoles(t *testing.T) {
	if structure.Heading(0) != structure.RoleH1 || structure.Heading(3) != structure.RoleH3 || structure.Heading(9) != structure.RoleH6 {
		t.Fatal("heading levels must clamp to 1..6")
	}
	if structure.RoleH4.HeadingLevel() != 4 {
		t.Fatal("H4 level")
	}
	if structure.RoleFigure.HeadingLevel() != 0 {
		t.Fatal("non-heading roles have level 0")
	}
}

func TestAllocRefIsMonotonic(t *testing.T) {
	tree := structure.NewTree()
	a := tree.Root.AppendChild(&structure.Element{Role: structure.RoleP, Page: 0})
	b := tree.Root.AppendChild(&structure.Element{Role: structure.RoleP, Page: 0})

	r1 := tree.AllocRef(a)
	r2 := tree.AllocRef(b)
	r3 := tree.AllocRef(a)
	if !(r1 < r2 && r2 < r3) {
		t.Fatalf("refs not monotonic: %d %d %d", r1, r2, r3)
	}
	if tree.ParentTree[r1] != a || tree.ParentTree[r2] != b || tree.ParentTree[r3] != a {
		t.Fatal("parent-tree ownership wrong")
	}
}

func TestFindByKey(t *testing.T) {
	tree := structure.NewTree()
	section := tree.Root.AppendChild(&structure.Element{Role: structure.RoleH1, Page: 0, Key: "page-0-h-1-Intro"})
	section.AppendChild(&structure.Element{Role: structure.RoleFigure, Page: 0, Key: "page-0-img-Im1"})

	if tree.FindByKey("page-0-img-Im1") == nil {
		t.Fatal("nested key not found")
	}
	if tree.FindByKey("page-9-img-none") != nil {
		t.Fatal("absent key must return nil")
	}
	if tree.FindByKey("") != nil {
		t.Fatal("empty key must return nil")
	}
}

func TestCheckInvariants(t *testing.T) {
	tree := structure.NewTree()
	tree.Root.AppendChild(&structure.Element{Role: structure.RoleP, Page: 0})
	if problems := tree.CheckInvariants(); problems != nil {
		t.Fatalf("valid tree reported problems: %v", problems)
	}

	tree.Root.AppendChild(&structure.Element{Role: structure.RoleArtifact, Page: 0, Alt: "decorative"})
	problems := tree.CheckInvariants()
	if len(problems) == 0 {
		t.Fatal("artifact with alt text must be reported")
	}
}

func TestCheckInvariantsDetachedRef(t *testing.T) {
	tree := structure.NewTree()
	detached := &structure.Element{Role: structure.RoleP, Page: 0}
	tree.AllocRef(detached)
	if len(tree.CheckInvariants()) == 0 {
		t.Fatal("ref owned by a detached element must be reported")
	}
}
