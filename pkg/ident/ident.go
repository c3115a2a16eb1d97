// Package ident extracts concept identifiers from free-form text.
//
// A concept identifier is a module number followed by a letter suffix, for
// example "3A" or "12BC". Spreadsheet cells list them loosely ("3A, 12 b and
// 3a"); [Normalize] turns such a cell into canonical identifiers.
package ident

import (
	"regexp"
	"strings"
)

var (
	idPattern    = regexp.MustCompile(`(?i)\d+\s*[a-z]+`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Normalize returns every identifier found in cell, uppercased with internal
// whitespace removed, in first-seen order without duplicates. It returns nil
// for an empty cell or one without identifiers.
func Normalize(cell string) []string {
	if cell == "" {
		return nil
	}
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, m := range idPattern.FindAllString(cell, -1) {
		id := strings.ToUpper(spacePattern.ReplaceAllString(m, ""))
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// IsLabel reports whether s is a non-empty run of the letters A-Z.
// Concept labels in cross-reference sheets must already be uppercase.
func IsLabel(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
