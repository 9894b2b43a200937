// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Canonical returns the normalized form of a keyword or author label: the
// first letter upper-cased and the rest lower-cased, after trimming. It is
// the only normalizer used to derive node labels and IDs.
func Canonical(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// KeywordID returns the node ID of a keyword label.
func KeywordID(label string) string { return "keyword-" + Canonical(label) }

// AuthorID returns the node ID of an author name.
func AuthorID(name string) string { return "author-" + Canonical(name) }
