// Package writer drafts the full script, strictly from the outline's
// evidence plan, together with its claim checklist.
package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/narravox/narravox/internal/llm"
	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/model"
)

// Writer drafts scripts through the text completion provider
type Writer struct {
	gen     llm.Generator
	log     *logging.Logger
	timeout time.Duration
	opts    llm.DecodeOptions
}

// New creates a script writer
func New(gen llm.Generator, cfg model.LLMConfig, log *logging.Logger) *Writer {
	opts := llm.DefaultDecodeOptions()
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	timeout := cfg.WriteTimeout
	if timeout == 0 {
		timeout = 3 * time.Minute
	}
	return &Writer{
		gen:     gen,
		log:     log,
		timeout: timeout,
		opts:    opts,
	}
}

// Draft produces the script plus claim checklist in one generation
// call. No usable script exists after decode exhaustion, so failure
// here is fatal for the task.
func (w *Writer) Draft(ctx context.Context, outline *model.Outline, ledgers []model.EvidenceLedger) (*model.Draft, error) {
	outlineJSON, err := json.MarshalIndent(outline, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal outline: %w", err)
	}
	ledgersJSON, err := json.MarshalIndent(ledgers, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal ledgers: %w", err)
	}

	req := llm.Request{
		Prompt:       fmt.Sprintf(draftPrompt, string(outlineJSON), string(ledgersJSON), outline.EpisodeTitle),
		SystemPrompt: systemPrompt,
		Timeout:      w.timeout,
	}

	draft, err := llm.Decode[model.Draft](ctx, w.gen, req, func(d *model.Draft) error {
		if d.Script == "" {
			return fmt.Errorf("missing final_script")
		}
		if d.Checklist == nil {
			return fmt.Errorf("missing claim_checklist")
		}
		return nil
	}, w.opts)
	if err != nil {
		return nil, fmt.Errorf("draft script: %w", err)
	}

	claims := 0
	for _, sc := range draft.Checklist {
		claims += len(sc.Claims)
	}
	w.log.Info("drafted script", "chars", len([]rune(draft.Script)), "claims", claims)

	return draft, nil
}
