// Package extract implements the map stage: one generation call per
// chunk, returning atomic facts with verbatim evidence quotes.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/narravox/narravox/internal/llm"
	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/model"
	"github.com/narravox/narravox/internal/textmatch"
)

// Extractor extracts chunk facts through the text completion provider
type Extractor struct {
	gen     llm.Generator
	log     *logging.Logger
	timeout time.Duration
	opts    llm.DecodeOptions
}

// New creates a fact extractor
func New(gen llm.Generator, cfg model.LLMConfig, log *logging.Logger) *Extractor {
	opts := llm.DefaultDecodeOptions()
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	timeout := cfg.ExtractTimeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	return &Extractor{
		gen:     gen,
		log:     log,
		timeout: timeout,
		opts:    opts,
	}
}

// ExtractChunkFacts extracts atomic facts from one chunk. Decode
// exhaustion never aborts the task: the chunk contributes an empty fact
// list with the error recorded, and the loss shows up in the ledger's
// coverage metadata.
func (e *Extractor) ExtractChunkFacts(ctx context.Context, chunk model.Chunk) model.ChunkFacts {
	req := llm.Request{
		Prompt: fmt.Sprintf(chunkFactsPrompt,
			chunk.ID, chunk.ParaRange(), chunk.ID, chunk.ParaRange(), chunk.Text),
		SystemPrompt: systemPrompt,
		Timeout:      e.timeout,
	}

	payload, err := llm.Decode[model.ChunkFacts](ctx, e.gen, req, func(cf *model.ChunkFacts) error {
		if cf.ChunkID == "" {
			return fmt.Errorf("missing chunk_id")
		}
		return nil
	}, e.opts)
	if err != nil {
		e.log.Error("chunk fact extraction exhausted", "chunk", chunk.ID, "error", err)
		return model.ChunkFacts{
			ChunkID: chunk.ID,
			DocID:   chunk.DocID,
			Error:   err.Error(),
		}
	}

	facts, dropped := e.filterFacts(chunk, payload.Facts)
	if dropped > 0 {
		e.log.Warn("dropped facts without verifiable evidence", "chunk", chunk.ID, "dropped", dropped)
	}
	e.log.Info("extracted chunk facts", "chunk", chunk.ID, "facts", len(facts))

	return model.ChunkFacts{
		ChunkID: chunk.ID,
		DocID:   chunk.DocID,
		Facts:   facts,
	}
}

// filterFacts enforces the provenance contract: a fact without evidence
// is invalid, and a quote that cannot be located back in the chunk text
// (normalized comparison) is treated as fabricated and dropped.
func (e *Extractor) filterFacts(chunk model.Chunk, facts []model.Fact) (kept []model.Fact, dropped int) {
	for _, fact := range facts {
		if fact.Claim == "" || fact.Evidence.Quote == "" {
			dropped++
			continue
		}
		if !textmatch.Contains(chunk.Text, fact.Evidence.Quote) {
			dropped++
			continue
		}
		// Clamp evidence to the chunk's own range when the reported
		// range is malformed or wanders outside it.
		start, end, err := model.ParseParaRange(fact.Evidence.ParaRange)
		if err != nil || start < chunk.ParaStart || end > chunk.ParaEnd {
			fact.Evidence.ParaRange = chunk.ParaRange()
		}
		kept = append(kept, fact)
	}
	return kept, dropped
}
