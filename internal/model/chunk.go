package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Chunk is a paragraph-aligned, size-bounded slice of one document
type Chunk struct {
	ID        string `json:"chunk_id"`   // "{docID}_c{seq:02d}"
	DocID     string `json:"doc_id"`     // Owning document
	Text      string `json:"text"`       // Concatenated paragraph text
	ParaStart int    `json:"para_start"` // First paragraph id (inclusive)
	ParaEnd   int    `json:"para_end"`   // Last paragraph id (inclusive)
	CharCount int    `json:"char_count"` // Rune count of Text
}

// ParaRange returns the chunk's paragraph range in "p3-p7" notation
func (c *Chunk) ParaRange() string {
	return FormatParaRange(c.ParaStart, c.ParaEnd)
}

// CoverageReport describes how much of a document the chunks cover
type CoverageReport struct {
	DocID         string     `json:"doc_id"`
	CoveredCount  int        `json:"covered_paragraphs"`
	TotalCount    int        `json:"total_paragraphs"`
	CoverageRate  float64    `json:"coverage_rate"`
	IsComplete    bool       `json:"is_complete"`              // CoverageRate >= 0.95
	MissingRanges []IntRange `json:"missing_ranges,omitempty"` // Gaps in paragraph coverage
}

// IntRange is an inclusive [Start,End] paragraph index range
type IntRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FormatParaRange renders a paragraph range in the "p{start}-p{end}"
// notation used throughout prompts and evidence records
func FormatParaRange(start, end int) string {
	return fmt.Sprintf("p%d-p%d", start, end)
}

// ParseParaRange parses "p3-p7" (or a single "p3") into start and end ids.
// Returns an error for anything else so callers can reject malformed
// evidence instead of silently mislocating it.
func ParseParaRange(s string) (start, end int, err error) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, "-", 2)

	parse := func(p string) (int, error) {
		p = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p), "p"))
		return strconv.Atoi(p)
	}

	start, err = parse(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid paragraph range %q: %w", s, err)
	}

	if len(parts) == 1 {
		return start, start, nil
	}

	end, err = parse(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid paragraph range %q: %w", s, err)
	}
	if end < start {
		return 0, 0, fmt.Errorf("invalid paragraph range %q: end before start", s)
	}
	return start, end, nil
}
