// Package slugs derives stable identifiers from property names and page titles.
//
// Property slugs are how the index matches "Has population", "has_population" and
// "Has  Population" as one property. Title slugs name exported files.
package slugs

import (
	"strings"
	"unicode"

	goslug "github.com/gosimple/slug"
)

// PropertySlug folds a property label into its index key. Labels that slug to
// nothing (punctuation only, for example) fall back to a lowercased,
// dash-joined form so that they still get a key.
func PropertySlug(label string) string {
	label = strings.ReplaceAll(label, "_", " ")
	if s := goslug.Make(label); s != "" {
		return s
	}
	return strings.ToLower(strings.Join(strings.Fields(label), "-"))
}

// TitleSlug converts a page title to a file-name friendly slug. Namespace
// separators become path separators: "Help:Editing tables" -> "help/editing-tables".
func TitleSlug(title string) string {
	parts := strings.Split(title, ":")
	for i, p := range parts {
		parts[i] = componentSlug(p)
	}
	return strings.Join(parts, "/")
}

// AnchorSlug converts heading text to a fragment identifier. Unlike TitleSlug it
// keeps non-ASCII letters as they are.
func AnchorSlug(text string) string {
	var result strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			result.WriteRune(r)
			prevDash = false
		case r == ' ' || r == '-' || r == '_' || r == ':':
			if !prevDash && result.Len() > 0 {
				result.WriteRune('-')
				prevDash = true
			}
		}
	}
	return strings.TrimSuffix(result.String(), "-")
}

func componentSlug(s string) string {
	slugged := goslug.Make(s)
	if slugged == "" {
		slugged = strings.ToLower(strings.Join(strings.Fields(s), "-"))
	}
	return slugged
}
