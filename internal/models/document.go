// Package models defines core data structures for sections, collections, queries, and search results.
package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Section is the smallest retrievable unit of documentation text.
type Section struct {
	Title   string `json:"title" yaml:"title" db:"title"`
	Content string `json:"content" yaml:"content" db:"content"`
}

// CollectionDocument is the interchange shape of one collection on disk and over the API.
type CollectionDocument struct {
	Platform string    `json:"platform"`
	Sections []Section `json:"sections"`
}

// PlaceholderSection returns the section supplied when a collection has no content,
// e.g. {"Getting Started", "Welcome to Segment documentation."} for key "segment".
func PlaceholderSection(key string) Section {
	return Section{
		Title:   "Getting Started",
		Content: "Welcome to " + Capitalize(key) + " documentation.",
	}
}

// Capitalize upper-cases the first rune of s and lower-cases the rest ("mParticle" -> "Mparticle").
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
