package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/narravox/narravox/internal/model"
)

type stubExtractor struct {
	calls   int64
	failIDs map[string]bool
}

func (s *stubExtractor) ExtractChunkFacts(ctx context.Context, chunk model.Chunk) model.ChunkFacts {
	atomic.AddInt64(&s.calls, 1)
	cf := model.ChunkFacts{ChunkID: chunk.ID, DocID: chunk.DocID}
	if s.failIDs[chunk.ID] {
		cf.Error = "extraction failed"
		return cf
	}
	cf.Facts = []model.Fact{{
		Type:     model.FactFinding,
		Claim:    "finding from " + chunk.ID,
		Evidence: model.Evidence{Quote: "quote", ParaRange: chunk.ParaRange()},
	}}
	return cf
}

func makeChunks(n int) []model.Chunk {
	chunks := make([]model.Chunk, n)
	for i := range chunks {
		chunks[i] = model.Chunk{
			ID:        fmt.Sprintf("doc1_c%02d", i),
			DocID:     "doc1",
			Text:      "text",
			ParaStart: i,
			ParaEnd:   i,
		}
	}
	return chunks
}

func TestBatchExtractorPreservesOrder(t *testing.T) {
	ext := &stubExtractor{}
	b := NewBatchExtractor(ext, nil, "openai", 4)

	chunks := makeChunks(12)
	got := b.ExtractChunks(context.Background(), chunks)

	if len(got) != len(chunks) {
		t.Fatalf("got %d results, want %d", len(got), len(chunks))
	}
	for i, cf := range got {
		if cf.ChunkID != chunks[i].ID {
			t.Errorf("result %d: chunk id = %q, want %q", i, cf.ChunkID, chunks[i].ID)
		}
	}
}

func TestBatchExtractorRecordsPerChunkErrors(t *testing.T) {
	ext := &stubExtractor{failIDs: map[string]bool{"doc1_c01": true}}
	b := NewBatchExtractor(ext, nil, "openai", 2)

	got := b.ExtractChunks(context.Background(), makeChunks(3))

	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	if got[1].Error == "" {
		t.Error("failed chunk should record its error")
	}
	if got[0].Error != "" || got[2].Error != "" {
		t.Error("healthy chunks should not carry errors")
	}
}

func TestBatchExtractorReportsProgress(t *testing.T) {
	ext := &stubExtractor{}
	b := NewBatchExtractor(ext, nil, "openai", 2)

	var updates int64
	var lastTotal int64
	b.OnProgress(func(done, total int) {
		atomic.AddInt64(&updates, 1)
		atomic.StoreInt64(&lastTotal, int64(total))
	})

	b.ExtractChunks(context.Background(), makeChunks(5))

	if got := atomic.LoadInt64(&updates); got != 5 {
		t.Errorf("progress callbacks = %d, want 5", got)
	}
	if got := atomic.LoadInt64(&lastTotal); got != 5 {
		t.Errorf("reported total = %d, want 5", got)
	}
}

func TestBatchExtractorEmptyInput(t *testing.T) {
	b := NewBatchExtractor(&stubExtractor{}, nil, "openai", 2)
	got := b.ExtractChunks(context.Background(), nil)
	if len(got) != 0 {
		t.Errorf("got %d results, want 0", len(got))
	}
}

func TestBatchExtractorUsesLimiter(t *testing.T) {
	ext := &stubExtractor{}
	limiter := NewLimiter(1000, 100)
	b := NewBatchExtractor(ext, limiter, "openai", 3)

	got := b.ExtractChunks(context.Background(), makeChunks(6))
	if len(got) != 6 {
		t.Fatalf("got %d results, want 6", len(got))
	}
	if atomic.LoadInt64(&ext.calls) != 6 {
		t.Errorf("extractor calls = %d, want 6", ext.calls)
	}
}
