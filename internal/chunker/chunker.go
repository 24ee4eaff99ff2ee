// Package chunker splits a document's ordered paragraphs into
// size-bounded, paragraph-aligned chunks and verifies coverage.
package chunker

import (
	"fmt"
	"unicode/utf8"

	"github.com/narravox/narravox/internal/model"
)

// Chunker accumulates paragraphs into chunks within a character band.
// Chunking is deterministic: the same paragraphs and thresholds always
// produce the same boundaries.
type Chunker struct {
	minChars    int
	maxChars    int
	minCoverage float64
}

// New creates a chunker with the given size band and coverage threshold
func New(cfg model.ChunkingConfig) *Chunker {
	minChars := cfg.MinChars
	if minChars <= 0 {
		minChars = 800
	}
	maxChars := cfg.MaxChars
	if maxChars <= minChars {
		maxChars = minChars * 2
	}
	minCoverage := cfg.MinCoverage
	if minCoverage <= 0 || minCoverage > 1 {
		minCoverage = 0.95
	}
	return &Chunker{
		minChars:    minChars,
		maxChars:    maxChars,
		minCoverage: minCoverage,
	}
}

// ChunkDocument splits the document into ordered chunks. Paragraphs are
// never split mid-unit: a chunk closes when appending the next paragraph
// would exceed the max size and the buffer already holds at least the
// min size. The final chunk may fall outside the band.
func (c *Chunker) ChunkDocument(doc *model.Document) []model.Chunk {
	var chunks []model.Chunk

	var buf string
	paraStart := -1
	paraEnd := -1

	flush := func() {
		if buf == "" {
			return
		}
		chunks = append(chunks, model.Chunk{
			ID:        fmt.Sprintf("%s_c%02d", doc.ID, len(chunks)),
			DocID:     doc.ID,
			Text:      buf,
			ParaStart: paraStart,
			ParaEnd:   paraEnd,
			CharCount: utf8.RuneCountInString(buf),
		})
		buf = ""
		paraStart = -1
		paraEnd = -1
	}

	for _, para := range doc.Paragraphs {
		if paraStart < 0 {
			buf = para.Text
			paraStart = para.ID
			paraEnd = para.ID
			continue
		}

		candidate := buf + "\n\n" + para.Text
		if utf8.RuneCountInString(candidate) > c.maxChars && utf8.RuneCountInString(buf) >= c.minChars {
			flush()
			buf = para.Text
			paraStart = para.ID
			paraEnd = para.ID
			continue
		}

		buf = candidate
		paraEnd = para.ID
	}
	flush()

	return chunks
}

// VerifyCoverage re-scans which paragraph ids fall inside any chunk's
// range and reports the coverage rate with missing ranges. A rate below
// the threshold is a warning for the audit report, never a hard failure.
func (c *Chunker) VerifyCoverage(doc *model.Document, chunks []model.Chunk) model.CoverageReport {
	total := doc.TotalParagraphs()

	covered := make(map[int]bool)
	for _, chunk := range chunks {
		for p := chunk.ParaStart; p <= chunk.ParaEnd; p++ {
			covered[p] = true
		}
	}

	rate := 0.0
	if total > 0 {
		rate = float64(len(covered)) / float64(total)
	}

	var missing []model.IntRange
	rangeStart := -1
	for p := 0; p < total; p++ {
		if covered[p] {
			if rangeStart >= 0 {
				missing = append(missing, model.IntRange{Start: rangeStart, End: p - 1})
				rangeStart = -1
			}
			continue
		}
		if rangeStart < 0 {
			rangeStart = p
		}
	}
	if rangeStart >= 0 {
		missing = append(missing, model.IntRange{Start: rangeStart, End: total - 1})
	}

	return model.CoverageReport{
		DocID:         doc.ID,
		CoveredCount:  len(covered),
		TotalCount:    total,
		CoverageRate:  rate,
		IsComplete:    rate >= c.minCoverage,
		MissingRanges: missing,
	}
}
