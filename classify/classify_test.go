package classify_test

import (
	"testing"

	"docremedy/classify"
	"docremedy/ir/structure"
)

func TestDecorative(t *testing.T) {
	h := classify.Default()

	cases := []struct {
		name   string
		w, h   int
		expect bool
	}{
		{"tiny icon", 10, 10, true},
		{"large photo", 500, 500, false},
		{"horizontal rule", 1000, 10, true},
		{"vertical rule", 10, 1000, true},
		{"just under min dimension", 19, 100, true},
		{"area below 400", 20, 19, true},
		{"area exactly 400", 20, 20, false},
		{"extreme wide aspect", 2100, 100, true},
		{"aspect at limit", 2000, 100, false},
		{"zero height", 100, 0, true},
		{"content image", 300, 200, false},
	}
	for _, c := range cases {
		if got := h.Decorative(c.w, c.h); got != c.expect {
			t.Errorf("%s: Decorative(%d,%d) = %v, want %v", c.name, c.w, c.h, got, c.expect)
		}
	}
}

func TestDecorativeDeterminism(t *testing.T) {
	h := classify.Default()
	for i := 0; i < 5; i++ {
		if !h.Decorative(15, 15) {
			t.Fatal("15x15 must classify decorative on every call")
		}
		if h.Decorative(500, 500) {
			t.Fatal("500x500 must classify descriptive on every call")
		}
	}
}

func TestGenericLinkText(t *testing.T) {
	cases := []struct {
		text    string
		generic bool
	}{
		{"click here", true},
		{"Click Here", true},
		{"read more", true},
		{"more", true},
		{"here", true},
		{"link", true},
		{"", true},
		{"   ", true},
		{"Enrollment deadlines", false},
		{"Download the annual report", false},
	}
	for _, c := range cases {
		if got := classify.GenericLinkText(c.text); got != c.generic {
			t.Errorf("GenericLinkText(%q) = %v, want %v", c.text, got, c.generic)
		}
	}
}

func TestValidateAltText(t *testing.T) {
	h := classify.Default()

	cases := []struct {
		text   string
		role   structure.Role
		accept bool
	}{
		{"image", structure.RoleFigure, false},
		{"", structure.RoleFigure, false},
		{"   ", structure.RoleFigure, false},
		{"", structure.RoleArtifact, true},
		{"ornament", structure.RoleArtifact, false},
		{"Logo", structure.RoleFigure, false},
		{"chart", structure.RoleFigure, false},
		{"short", structure.RoleFigure, false},
		{"image of a cat", structure.RoleFigure, false},
		{"photo of the 2024 annual shareholder meeting", structure.RoleFigure, true},
		{"Quarterly revenue chart showing 25% growth", structure.RoleFigure, true},
		{"Campus map with building entrances marked", structure.RoleNote, true},
	}
	for _, c := range cases {
		ok, reason := h.ValidateAltText(c.text, c.role)
		if ok != c.accept {
			t.Errorf("ValidateAltText(%q, %s) = %v (%s), want %v", c.text, c.role, ok, reason, c.accept)
		}
		if !ok && reason == "" {
			t.Errorf("ValidateAltText(%q, %s): rejection without a reason", c.text, c.role)
		}
	}
}
