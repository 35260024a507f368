// Package textutil normalizes the messy names that come with csv
// datasets.
package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a name and strips all whitespace so that
// "S.S.C (GPA)" and "s.s.c(gpa)" compare equal.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns an arbitrary name into a lowercase identifier, runs
// of anything outside [a-z0-9] replaced with one underscore.
// "Arts Faculty Data" becomes "arts_faculty_data".
func Slugify(name string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(slug, "_")
}
