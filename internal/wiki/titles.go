package wiki

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultFallbackTitle names the root page when the index has no heading.
const DefaultFallbackTitle = "Project Documentation"

// IndexTitle returns the root page title: the front matter title if set,
// else the text of a leading "#" heading, else fallback. Blank lines before
// the heading are skipped.
func IndexTitle(doc Document, fallback string) string {
	if doc.Title != "" {
		return doc.Title
	}
	if fallback == "" {
		fallback = DefaultFallbackTitle
	}
	for _, line := range strings.Split(doc.Body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			return fallback
		}
		if title := strings.TrimSpace(strings.TrimLeft(line, "#")); title != "" {
			return title
		}
		return fallback
	}
	return fallback
}

// DerivedTitle turns a document name into a page title: separators become
// spaces and each word is capitalized ("data_model" -> "Data Model").
func DerivedTitle(name string) string {
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}

// ChildTitle returns the page title of a non-index document.
func ChildTitle(doc Document, parentTitle string, prefix bool) string {
	title := doc.Title
	if title == "" {
		title = DerivedTitle(doc.Name)
	}
	if prefix && parentTitle != "" {
		return parentTitle + " - " + title
	}
	return title
}
