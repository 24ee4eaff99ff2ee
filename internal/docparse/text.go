package docparse

import (
	"path/filepath"
	"strings"

	"github.com/narravox/narravox/internal/model"
)

// TextParser parses plain text and Markdown documents. Paragraphs are
// blank-line separated blocks; Markdown headings and table rows keep
// their structural role.
type TextParser struct{}

// NewTextParser creates a new text/Markdown parser
func NewTextParser() *TextParser {
	return &TextParser{}
}

// Supports reports whether the filename looks like text or Markdown
func (p *TextParser) Supports(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".markdown", ".text":
		return true
	}
	return false
}

// Parse converts text bytes into a document
func (p *TextParser) Parse(data []byte, filename string) (*model.Document, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	var paragraphs []model.Paragraph
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		// A block may still contain single newlines: headings and table
		// rows stay line-scoped, prose lines are joined.
		var prose []string
		flushProse := func() {
			if len(prose) == 0 {
				return
			}
			joined := normalizeSpace(strings.Join(prose, " "))
			prose = prose[:0]
			if isNoise(joined) {
				return
			}
			paragraphs = append(paragraphs, model.Paragraph{
				Text: joined,
				Type: model.ParagraphBody,
			})
		}

		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case line == "" || isNoise(line):
				continue
			case strings.HasPrefix(line, "#"):
				flushProse()
				level := 0
				for level < len(line) && line[level] == '#' && level < 6 {
					level++
				}
				title := normalizeSpace(strings.TrimLeft(line, "# "))
				if title == "" {
					continue
				}
				paragraphs = append(paragraphs, model.Paragraph{
					Text:         title,
					Type:         model.ParagraphHeading,
					HeadingLevel: level,
				})
			case strings.HasPrefix(line, "|"):
				flushProse()
				row := normalizeSpace(strings.Trim(line, "| "))
				if row == "" || separatorRe.MatchString(strings.ReplaceAll(row, "|", "")) {
					continue // Markdown table delimiter rows
				}
				paragraphs = append(paragraphs, model.Paragraph{
					Text: row,
					Type: model.ParagraphTableRow,
				})
			default:
				prose = append(prose, line)
			}
		}
		flushProse()
	}

	if len(paragraphs) == 0 {
		return nil, &ParseError{Filename: filename, Err: errNoContent}
	}

	return finishDocument(paragraphs, filename), nil
}
