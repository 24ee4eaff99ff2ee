package worker

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/narravox/narravox/internal/model"
)

// ChunkExtractor extracts quote-backed facts from a single chunk
type ChunkExtractor interface {
	ExtractChunkFacts(ctx context.Context, chunk model.Chunk) model.ChunkFacts
}

// ExtractJob extracts facts from one chunk. The index preserves the
// submission order so batch results can be returned sorted.
type ExtractJob struct {
	Index     int
	Chunk     model.Chunk
	Extractor ChunkExtractor
	Limiter   *Limiter
	Provider  string
	onDone    func()
}

// Execute runs the extraction after clearing the provider rate limit
func (j *ExtractJob) Execute(ctx context.Context) Result {
	if j.onDone != nil {
		defer j.onDone()
	}

	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Provider); err != nil {
			return &ExtractResult{
				Index: j.Index,
				Facts: model.ChunkFacts{
					ChunkID: j.Chunk.ID,
					DocID:   j.Chunk.DocID,
					Error:   err.Error(),
				},
				Err: err,
			}
		}
	}

	facts := j.Extractor.ExtractChunkFacts(ctx, j.Chunk)
	return &ExtractResult{Index: j.Index, Facts: facts}
}

// ExtractResult is the outcome of one chunk extraction
type ExtractResult struct {
	Index int
	Facts model.ChunkFacts
	Err   error
}

// GetError returns the error from the extraction result
func (r *ExtractResult) GetError() error {
	return r.Err
}

// BatchExtractor fans chunk extraction out over a worker pool. A failed
// chunk yields an empty ChunkFacts with its error recorded; the batch
// itself never fails.
type BatchExtractor struct {
	extractor   ChunkExtractor
	limiter     *Limiter
	provider    string
	concurrency int
	onProgress  func(done, total int)
}

// NewBatchExtractor creates a batch extractor with the given concurrency
func NewBatchExtractor(extractor ChunkExtractor, limiter *Limiter, provider string, concurrency int) *BatchExtractor {
	return &BatchExtractor{
		extractor:   extractor,
		limiter:     limiter,
		provider:    provider,
		concurrency: concurrency,
	}
}

// OnProgress registers a callback invoked after each chunk completes
func (b *BatchExtractor) OnProgress(fn func(done, total int)) {
	b.onProgress = fn
}

// ExtractChunks processes all chunks concurrently and returns their
// facts in chunk submission order
func (b *BatchExtractor) ExtractChunks(ctx context.Context, chunks []model.Chunk) []model.ChunkFacts {
	if len(chunks) == 0 {
		return []model.ChunkFacts{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	var done int64
	total := len(chunks)

	go func() {
		for i, chunk := range chunks {
			job := &ExtractJob{
				Index:     i,
				Chunk:     chunk,
				Extractor: b.extractor,
				Limiter:   b.limiter,
				Provider:  b.provider,
			}
			if b.onProgress != nil {
				job.onDone = func() {
					n := atomic.AddInt64(&done, 1)
					b.onProgress(int(n), total)
				}
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			pool.Submit(job)
		}
	}()

	results := b.collect(ctx, pool, total)

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	out := make([]model.ChunkFacts, len(results))
	for i, r := range results {
		out[i] = r.Facts
	}
	return out
}

// collect drains exactly total results from the pool, then shuts it down
func (b *BatchExtractor) collect(ctx context.Context, pool *Pool, total int) []*ExtractResult {
	results := make([]*ExtractResult, 0, total)
	for len(results) < total {
		select {
		case <-ctx.Done():
			pool.Shutdown()
			return results
		case res, ok := <-pool.results:
			if !ok {
				return results
			}
			results = append(results, res.(*ExtractResult))
		}
	}
	pool.Shutdown()
	return results
}
