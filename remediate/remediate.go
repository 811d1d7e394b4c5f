// Package remediate synthesizes the replacement text applied when content
// fails an accessibility check: descriptive link text from the destination,
// table captions from header keywords, and labels for unlabeled form fields.
// The synthesizers are pure functions so the tagger and the page fixer share
// one vocabulary of generated text.
package remediate

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// LinkText builds descriptive anchor text from a destination URL. Hosts win
// over paths: "https://www.example.com/x" reads "Link to example.com". For
// host-less destinations the last path segment is cleaned up and used;
// destinations with no usable part fall back to a generic label.
func LinkText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Link to destination"
	}
	u, err := url.Parse(raw)
	if err == nil {
		if host := strings.TrimPrefix(u.Hostname(), "www."); host != "" {
			return "Link to " + host
		}
		if seg := pathSegment(u.Path); seg != "" {
			return "Link to " + seg
		}
		if u.Fragment != "" {
			return "Link to " + cleanSegment(u.Fragment)
		}
	}
	return "Link to destination"
}

func pathSegment(p string) string {
	base := path.Base(strings.TrimSuffix(p, "/"))
	if base == "." || base == "/" || base == "" {
		return ""
	}
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return cleanSegment(base)
}

func cleanSegment(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// captionKeywords maps header-text keywords to caption labels, in priority
// order. The first keyword found anywhere in the joined header texts wins.
var captionKeywords = []struct {
	keyword string
	caption string
}{
	{"date", "Schedule"},
	{"term", "Academic Calendar"},
	{"semester", "Academic Calendar"},
	{"course", "Course Information"},
	{"student", "Student Data"},
	{"grade", "Grade Information"},
	{"schedule", "Schedule"},
	{"event", "Events"},
	{"deadline", "Important Dates"},
	{"price", "Pricing"},
	{"cost", "Costs"},
	{"name", "Directory"},
}

// TableCaption derives a caption for a table from its header-cell texts.
// Tables whose headers match no known keyword get an ordinal placeholder
// ("Data table 3") so every table still announces an identity.
func TableCaption(headers []string, ordinal int) string {
	joined := strings.ToLower(strings.Join(headers, " "))
	for _, kw := range captionKeywords {
		if strings.Contains(joined, kw.keyword) {
			return kw.caption
		}
	}
	if ordinal < 1 {
		ordinal = 1
	}
	return fmt.Sprintf("Data table %d", ordinal)
}

// FieldLabel synthesizes an accessible label for a form control that has
// neither a label element nor a tooltip. The field name is preferred when
// present ("first_name" reads "First name field"); otherwise the control
// kind is used.
func FieldLabel(kind, name string) string {
	if cleaned := cleanSegment(name); cleaned != "" {
		return title(cleaned) + " field"
	}
	if kind == "" {
		return "Form field"
	}
	return title(kind) + " field"
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
