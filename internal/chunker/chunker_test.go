package chunker

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/narravox/narravox/internal/model"
)

func testDoc(paraLens ...int) *model.Document {
	doc := &model.Document{ID: "doc1", Filename: "test.txt", Title: "Test"}
	for i, n := range paraLens {
		doc.Paragraphs = append(doc.Paragraphs, model.Paragraph{
			ID:   i,
			Text: strings.Repeat("x", n),
			Type: model.ParagraphBody,
		})
	}
	return doc
}

func testConfig() model.ChunkingConfig {
	return model.ChunkingConfig{MinChars: 50, MaxChars: 100, MinCoverage: 0.95}
}

func TestChunkDocumentCoversEveryParagraph(t *testing.T) {
	c := New(testConfig())
	doc := testDoc(30, 30, 30, 30, 30, 30, 30)

	chunks := c.ChunkDocument(doc)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	report := c.VerifyCoverage(doc, chunks)
	if report.CoverageRate != 1.0 {
		t.Errorf("coverage = %v, want 1.0", report.CoverageRate)
	}
	if !report.IsComplete {
		t.Error("full coverage should be complete")
	}
	if len(report.MissingRanges) != 0 {
		t.Errorf("missing ranges = %v, want none", report.MissingRanges)
	}
}

func TestChunkDocumentContiguousOrderedRanges(t *testing.T) {
	c := New(testConfig())
	doc := testDoc(40, 40, 40, 40, 40, 40)

	chunks := c.ChunkDocument(doc)

	next := 0
	for i, chunk := range chunks {
		if chunk.ParaStart != next {
			t.Errorf("chunk %d starts at p%d, want p%d", i, chunk.ParaStart, next)
		}
		if chunk.ParaEnd < chunk.ParaStart {
			t.Errorf("chunk %d has inverted range", i)
		}
		next = chunk.ParaEnd + 1
	}
	if next != doc.TotalParagraphs() {
		t.Errorf("last chunk ends at p%d, want p%d", next-1, doc.TotalParagraphs()-1)
	}
}

func TestChunkDocumentRespectsBand(t *testing.T) {
	c := New(testConfig())
	doc := testDoc(30, 30, 30, 30, 30, 30, 30, 30)

	chunks := c.ChunkDocument(doc)
	for i, chunk := range chunks {
		if i < len(chunks)-1 && chunk.CharCount > 100 {
			t.Errorf("chunk %d has %d chars, want <= 100", i, chunk.CharCount)
		}
	}
}

func TestChunkDocumentNeverSplitsParagraphs(t *testing.T) {
	c := New(testConfig())
	// One paragraph far over the max must still land whole in one chunk
	doc := testDoc(20, 300, 20)

	chunks := c.ChunkDocument(doc)
	for _, chunk := range chunks {
		for p := chunk.ParaStart; p <= chunk.ParaEnd; p++ {
			if !strings.Contains(chunk.Text, doc.Paragraphs[p].Text) {
				t.Errorf("chunk %s missing full text of p%d", chunk.ID, p)
			}
		}
	}

	report := c.VerifyCoverage(doc, chunks)
	if report.CoverageRate != 1.0 {
		t.Errorf("coverage = %v, want 1.0", report.CoverageRate)
	}
}

func TestChunkDocumentDeterministic(t *testing.T) {
	c := New(testConfig())
	doc := testDoc(25, 60, 35, 80, 10, 45)

	first := c.ChunkDocument(doc)
	second := c.ChunkDocument(doc)

	if !reflect.DeepEqual(first, second) {
		t.Error("chunking the same document twice should give identical chunks")
	}
}

func TestChunkIDsFollowSequence(t *testing.T) {
	c := New(testConfig())
	doc := testDoc(60, 60, 60, 60)

	chunks := c.ChunkDocument(doc)
	for i, chunk := range chunks {
		want := fmt.Sprintf("doc1_c%02d", i)
		if chunk.ID != want {
			t.Errorf("chunk %d id = %q, want %q", i, chunk.ID, want)
		}
	}
}

func TestChunkDocumentEmpty(t *testing.T) {
	c := New(testConfig())
	doc := &model.Document{ID: "doc1"}

	chunks := c.ChunkDocument(doc)
	if len(chunks) != 0 {
		t.Errorf("got %d chunks from empty document, want 0", len(chunks))
	}

	report := c.VerifyCoverage(doc, chunks)
	if report.CoverageRate != 0 {
		t.Errorf("coverage = %v, want 0", report.CoverageRate)
	}
}

func TestVerifyCoverageReportsGaps(t *testing.T) {
	c := New(testConfig())
	doc := testDoc(30, 30, 30, 30, 30, 30, 30, 30, 30, 30)

	// Simulate lost chunks covering only the edges
	chunks := []model.Chunk{
		{ID: "doc1_c00", DocID: "doc1", ParaStart: 0, ParaEnd: 2},
		{ID: "doc1_c01", DocID: "doc1", ParaStart: 8, ParaEnd: 9},
	}

	report := c.VerifyCoverage(doc, chunks)
	if report.IsComplete {
		t.Error("half coverage should not be complete")
	}
	want := []model.IntRange{{Start: 3, End: 7}}
	if !reflect.DeepEqual(report.MissingRanges, want) {
		t.Errorf("missing = %v, want %v", report.MissingRanges, want)
	}
	if report.CoveredCount != 5 {
		t.Errorf("covered = %d, want 5", report.CoveredCount)
	}
}
