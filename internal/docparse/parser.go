// Package docparse turns uploaded file bytes into ordered paragraph
// lists. It is the document-provider boundary of the pipeline: plain
// text, Markdown and HTML are handled here; binary formats (DOCX, PDF)
// belong to external converters that produce one of these.
package docparse

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/narravox/narravox/internal/model"
)

// Provider defines the interface for document parsing
type Provider interface {
	// Parse converts file bytes into a document with ordered paragraphs.
	// The document id is assigned by the caller.
	Parse(data []byte, filename string) (*model.Document, error)

	// Supports reports whether the provider handles the filename's format
	Supports(filename string) bool
}

// ParseError marks a document that could not be parsed. Fatal for the
// whole task, surfaced with the offending filename.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse document %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Registry routes filenames to the right provider by extension
type Registry struct {
	providers []Provider
}

// NewRegistry creates a registry with the built-in providers
func NewRegistry() *Registry {
	return &Registry{
		providers: []Provider{
			NewHTMLParser(),
			NewTextParser(),
		},
	}
}

// Parse dispatches to the provider that supports the filename
func (r *Registry) Parse(data []byte, filename string) (*model.Document, error) {
	if len(data) == 0 {
		return nil, &ParseError{Filename: filename, Err: fmt.Errorf("file is empty")}
	}
	for _, p := range r.providers {
		if p.Supports(filename) {
			return p.Parse(data, filename)
		}
	}
	return nil, &ParseError{Filename: filename, Err: fmt.Errorf("unsupported format %q", filepath.Ext(filename))}
}

// Supports reports whether any registered provider handles the filename
func (r *Registry) Supports(filename string) bool {
	for _, p := range r.providers {
		if p.Supports(filename) {
			return true
		}
	}
	return false
}

var (
	pageNumberRe = regexp.MustCompile(`^\s*(?:-\s*)?\d{1,4}(?:\s*-)?\s*$`)
	separatorRe  = regexp.MustCompile(`^[\s\-=_*~.•]+$`)
	wsRe         = regexp.MustCompile(`\s+`)
)

// isNoise reports purely decorative lines: page numbers, rules,
// repeated separator characters
func isNoise(text string) bool {
	if text == "" {
		return true
	}
	return pageNumberRe.MatchString(text) || separatorRe.MatchString(text)
}

// normalizeSpace collapses runs of whitespace into single spaces
func normalizeSpace(text string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(text, " "))
}

// titleFromFilename falls back to the filename stem as document title
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// finishDocument assigns paragraph ids and picks a title
func finishDocument(paragraphs []model.Paragraph, filename string) *model.Document {
	title := ""
	for i := range paragraphs {
		paragraphs[i].ID = i
		if title == "" && paragraphs[i].Type == model.ParagraphHeading {
			title = paragraphs[i].Text
		}
	}
	if title == "" {
		title = titleFromFilename(filename)
	}
	return &model.Document{
		Filename:   filename,
		Title:      title,
		Paragraphs: paragraphs,
	}
}
