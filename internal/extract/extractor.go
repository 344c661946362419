// Package extract turns source documents into plain text and documentation sections.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ronak0808/CDP-chatbot/internal/models"
)

// ErrNoSections is returned when a document yields no non-empty section.
var ErrNoSections = errors.New("document has no extractable sections")

// Extractor extracts plain text from document files.
type Extractor struct {
	maxWords int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxWords splits sections longer than n words into consecutive parts. n <= 0 disables splitting.
func WithMaxWords(n int) Option {
	return func(e *Extractor) {
		e.maxWords = n
	}
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{maxWords: DefaultMaxWords}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Supported reports whether ext (with leading dot) has a dedicated extractor.
// Unknown extensions are still read as plain text.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".docx", ".xlsx", ".odt", ".rtf", ".txt", ".md", ".markdown", ".rst":
		return true
	}
	return false
}

// Extract reads the file at path and returns its text content.
func (e *Extractor) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if isCatFormat(ext) {
		return extractCatFile(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	ext = strings.ToLower(ext)
	switch {
	case ext == ".pdf":
		return extractPDF(content)
	case ext == ".docx":
		return extractDOCX(content)
	case ext == ".xlsx":
		return extractExcel(content)
	case isCatFormat(ext):
		return extractCatBytes(content, ext)
	default:
		return extractPlain(content)
	}
}

// ExtractSections extracts the file at path and splits it into sections.
// Text before the first heading is titled after the file name.
func (e *Extractor) ExtractSections(path string) ([]models.Section, error) {
	text, err := e.Extract(path)
	if err != nil {
		return nil, err
	}
	sections := SplitSections(text, TitleFromPath(path), e.maxWords)
	if len(sections) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNoSections)
	}
	return sections, nil
}

// TitleFromPath derives a section title from a file name: "getting-started_guide.md" -> "Getting started guide".
func TitleFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.Join(strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	}), " ")
	if base == "" {
		return "Untitled"
	}
	return models.Capitalize(base)
}
