// Package ledger implements the reduce stage: merging all chunk facts
// of one document into its canonical Evidence Ledger.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/narravox/narravox/internal/llm"
	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/model"
	"github.com/narravox/narravox/internal/textmatch"
)

// Merger combines chunk facts into evidence ledgers
type Merger struct {
	gen     llm.Generator
	log     *logging.Logger
	timeout time.Duration
	opts    llm.DecodeOptions
}

// New creates a ledger merger
func New(gen llm.Generator, cfg model.LLMConfig, log *logging.Logger) *Merger {
	opts := llm.DefaultDecodeOptions()
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	timeout := cfg.MergeTimeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &Merger{
		gen:     gen,
		log:     log,
		timeout: timeout,
		opts:    opts,
	}
}

// Merge produces the document's Evidence Ledger from its chunk-fact
// results, including chunks that yielded nothing. A document with no
// usable ledger cannot be used downstream, so decode exhaustion here is
// fatal for the task.
//
// Input order does not affect the outcome: chunk facts are sorted by
// chunk id before prompting.
func (m *Merger) Merge(ctx context.Context, docID string, chunkFacts []model.ChunkFacts) (*model.EvidenceLedger, error) {
	sorted := make([]model.ChunkFacts, len(chunkFacts))
	copy(sorted, chunkFacts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ChunkID < sorted[j].ChunkID })

	factsJSON, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal chunk facts: %w", err)
	}

	req := llm.Request{
		Prompt:       fmt.Sprintf(mergePrompt, docID, string(factsJSON)),
		SystemPrompt: systemPrompt,
		Timeout:      m.timeout,
	}

	led, err := llm.Decode[model.EvidenceLedger](ctx, m.gen, req, func(l *model.EvidenceLedger) error {
		if l.DocID == "" {
			return fmt.Errorf("missing doc_id")
		}
		for i, f := range l.KeyFindings {
			if f.Evidence.Quote == "" {
				return fmt.Errorf("key_findings[%d] has no evidence quote", i)
			}
		}
		for i, mech := range l.Mechanisms {
			if mech.Evidence.Quote == "" {
				return fmt.Errorf("mechanisms_or_channels[%d] has no evidence quote", i)
			}
		}
		for i, imp := range l.Implications {
			if imp.Evidence.Quote == "" {
				return fmt.Errorf("policy_implications[%d] has no evidence quote", i)
			}
		}
		return nil
	}, m.opts)
	if err != nil {
		return nil, fmt.Errorf("merge ledger for %s: %w", docID, err)
	}

	led.DocID = docID
	m.pruneInvented(led, sorted)

	processed := 0
	for _, cf := range sorted {
		if len(cf.Facts) > 0 {
			processed++
		}
	}
	led.Coverage = model.CoverageMeta{
		ChunksTotal:     len(sorted),
		ChunksProcessed: processed,
	}

	m.log.Info("merged evidence ledger",
		"doc", docID,
		"findings", len(led.KeyFindings),
		"chunks_processed", processed,
		"chunks_total", len(sorted))

	return led, nil
}

// pruneInvented drops merged entries whose evidence quote cannot be tied
// back to any input fact. The merger must not introduce facts absent
// from the map stage.
func (m *Merger) pruneInvented(led *model.EvidenceLedger, chunkFacts []model.ChunkFacts) {
	known := func(quote string) bool {
		for _, cf := range chunkFacts {
			for _, f := range cf.Facts {
				if textmatch.Contains(f.Evidence.Quote, quote) || textmatch.Contains(quote, f.Evidence.Quote) {
					return true
				}
			}
		}
		return false
	}

	dropped := 0

	findings := led.KeyFindings[:0]
	for _, f := range led.KeyFindings {
		if known(f.Evidence.Quote) {
			findings = append(findings, f)
		} else {
			dropped++
		}
	}
	led.KeyFindings = findings

	mechs := led.Mechanisms[:0]
	for _, mech := range led.Mechanisms {
		if known(mech.Evidence.Quote) {
			mechs = append(mechs, mech)
		} else {
			dropped++
		}
	}
	led.Mechanisms = mechs

	imps := led.Implications[:0]
	for _, imp := range led.Implications {
		if known(imp.Evidence.Quote) {
			imps = append(imps, imp)
		} else {
			dropped++
		}
	}
	led.Implications = imps

	if dropped > 0 {
		m.log.Warn("pruned merged entries without matching input evidence", "doc", led.DocID, "dropped", dropped)
	}
}
