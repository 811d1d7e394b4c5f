package remediate_test

import (
	"testing"

	"docremedy/remediate"
)

func TestLinkText(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.example.com/docs", "Link to example.com"},
		{"http://registrar.university.edu", "Link to registrar.university.edu"},
		{"/forms/enrollment-form.pdf", "Link to enrollment form"},
		{"budget_report.xlsx", "Link to budget report"},
		{"#main-content", "Link to main content"},
		{"", "Link to destination"},
		{"https://", "Link to destination"},
	}
	for _, c := range cases {
		if got := remediate.LinkText(c.url); got != c.want {
			t.Errorf("LinkText(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestTableCaption(t *testing.T) {
	cases := []struct {
		headers []string
		ordinal int
		want    string
	}{
		{[]string{"Course", "Credits"}, 1, "Course Information"},
		{[]string{"Start Date", "End Date"}, 1, "Schedule"},
		{[]string{"Student ID", "Status"}, 2, "Student Data"},
		{[]string{"Fall Semester"}, 1, "Academic Calendar"},
		{[]string{"Widget", "Qty"}, 3, "Data table 3"},
		{nil, 0, "Data table 1"},
	}
	for _, c := range cases {
		if got := remediate.TableCaption(c.headers, c.ordinal); got != c.want {
			t.Errorf("TableCaption(%v, %d) = %q, want %q", c.headers, c.ordinal, got, c.want)
		}
	}
}

func TestFieldLabel(t *testing.T) {
	cases := []struct {
		kind, name string
		want       string
	}{
		{"text", "first_name", "First name field"},
		{"text", "", "Text field"},
		{"checkbox", "", "Checkbox field"},
		{"", "", "Form field"},
		{"select", "home-state", "Home state field"},
	}
	for _, c := range cases {
		if got := remediate.FieldLabel(c.kind, c.name); got != c.want {
			t.Errorf("FieldLabel(%q, %q) = %q, want %q", c.kind, c.name, got, c.want)
		}
	}
}
