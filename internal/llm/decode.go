package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// repairInstruction is appended to the prompt when the previous response
// could not be parsed, before replaying the call
const repairInstruction = "\n\nNote: return pure JSON only. No markdown fences, no explanation text."

// ParseError reports structured output that stayed malformed after all
// repair attempts. Callers decide whether that is fatal for their stage.
type ParseError struct {
	Attempts int    // Generation calls made
	Raw      string // Last raw response, for logging
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed structured output after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ProviderError reports that the provider itself kept failing (timeout,
// rate limit, transport) after all attempts
type ProviderError struct {
	Attempts int
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// DecodeOptions tunes the repair loop
type DecodeOptions struct {
	// MaxRetries is the number of repair attempts after the first call
	MaxRetries int

	// Backoff is the wait after a provider error; it doubles per attempt
	Backoff time.Duration
}

// DefaultDecodeOptions matches the stage retry policy: one call plus two
// repair attempts, 2s initial backoff on provider errors
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		MaxRetries: 2,
		Backoff:    2 * time.Second,
	}
}

// Decode issues a generation call and parses the response into T.
//
// On malformed output it replays the call with an appended reformat
// instruction; on provider errors it retries with increasing backoff.
// The validate hook (optional) lets callers reject structurally valid
// JSON that breaks a domain contract (wrong section count, missing
// evidence), which is treated the same as a parse failure.
func Decode[T any](ctx context.Context, g Generator, req Request, validate func(*T) error, opts DecodeOptions) (*T, error) {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 2 * time.Second
	}

	attempts := opts.MaxRetries + 1
	prompt := req.Prompt

	var lastRaw string
	var lastErr error
	var providerFailed bool

	for attempt := 1; attempt <= attempts; attempt++ {
		callReq := req
		callReq.Prompt = prompt

		raw, err := g.Generate(ctx, callReq)
		if err != nil {
			providerFailed = true
			lastErr = err
			if attempt < attempts {
				wait := opts.Backoff << (attempt - 1)
				select {
				case <-ctx.Done():
					return nil, &ProviderError{Attempts: attempt, Err: ctx.Err()}
				case <-time.After(wait):
				}
				continue
			}
			break
		}

		providerFailed = false
		lastRaw = raw

		var result T
		cleaned := CleanJSON(raw)
		if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
			lastErr = err
			prompt = prompt + repairInstruction
			continue
		}

		if validate != nil {
			if err := validate(&result); err != nil {
				lastErr = err
				prompt = prompt + repairInstruction
				continue
			}
		}

		return &result, nil
	}

	if providerFailed {
		return nil, &ProviderError{Attempts: attempts, Err: lastErr}
	}
	return nil, &ParseError{Attempts: attempts, Raw: lastRaw, Err: lastErr}
}

// CleanJSON strips markdown code fences and surrounding chatter from a
// model response, leaving the JSON payload
func CleanJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	content = strings.TrimSpace(content)

	// Some providers wrap the payload in prose despite instructions.
	// Fall back to the outermost brace pair.
	if !strings.HasPrefix(content, "{") && !strings.HasPrefix(content, "[") {
		start := strings.IndexAny(content, "{[")
		if start >= 0 {
			end := strings.LastIndexAny(content, "}]")
			if end > start {
				content = content[start : end+1]
			}
		}
	}

	return content
}
