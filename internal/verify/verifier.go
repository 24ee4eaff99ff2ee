// Package verify checks every checklist claim against the evidence
// ledgers and releases a patched script.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/narravox/narravox/internal/llm"
	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/model"
)

// Verifier audits draft scripts against their ledgers
type Verifier struct {
	gen     llm.Generator
	log     *logging.Logger
	timeout time.Duration
	opts    llm.DecodeOptions
}

// New creates a verifier
func New(gen llm.Generator, cfg model.LLMConfig, log *logging.Logger) *Verifier {
	opts := llm.DefaultDecodeOptions()
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	timeout := cfg.VerifyTimeout
	if timeout == 0 {
		timeout = 3 * time.Minute
	}
	return &Verifier{
		gen:     gen,
		log:     log,
		timeout: timeout,
		opts:    opts,
	}
}

// verifyResult is the provider-facing response shape. The patched
// script is built locally from the issues, not taken from the provider.
type verifyResult struct {
	Verdict model.Verdict `json:"verdict"`
	Issues  []model.Issue `json:"issues"`
}

// Verify classifies every checklist claim and produces the patched
// script. A FAIL verdict is not fatal: the patched script is released
// either way, with the issue list surfaced for audit.
//
// When verification itself cannot produce parseable output, the result
// degrades to FAIL with the original unpatched script and one synthetic
// critical issue, clearly distinguishable from content-level findings.
func (v *Verifier) Verify(ctx context.Context, draft *model.Draft, ledgers []model.EvidenceLedger) *model.Verification {
	checklistJSON, err := json.MarshalIndent(draft.Checklist, "", "  ")
	if err != nil {
		return v.degrade(draft.Script, fmt.Errorf("marshal checklist: %w", err))
	}
	ledgersJSON, err := json.MarshalIndent(ledgers, "", "  ")
	if err != nil {
		return v.degrade(draft.Script, fmt.Errorf("marshal ledgers: %w", err))
	}

	pointerIssues := v.resolvePointers(draft.Checklist, ledgers)

	req := llm.Request{
		Prompt:       fmt.Sprintf(verifyPrompt, draft.Script, string(checklistJSON), string(ledgersJSON)),
		SystemPrompt: systemPrompt,
		Timeout:      v.timeout,
	}

	result, err := llm.Decode[verifyResult](ctx, v.gen, req, func(r *verifyResult) error {
		if r.Verdict != model.VerdictPass && r.Verdict != model.VerdictFail {
			return fmt.Errorf("verdict must be PASS or FAIL, got %q", r.Verdict)
		}
		for i, issue := range r.Issues {
			if issue.Claim == "" {
				return fmt.Errorf("issues[%d] has no claim", i)
			}
			if issue.Fix.Action != model.FixDelete && issue.Fix.Action != model.FixReplace {
				return fmt.Errorf("issues[%d] fix action must be DELETE or REPLACE", i)
			}
		}
		return nil
	}, v.opts)
	if err != nil {
		return v.degrade(draft.Script, err)
	}

	issues := append(pointerIssues, result.Issues...)

	// The verdict follows from the issues, whatever the provider said.
	verdict := model.VerdictPass
	critical, major, minor := 0, 0, 0
	for _, issue := range issues {
		switch issue.Severity {
		case model.SeverityCritical:
			critical++
		case model.SeverityMajor:
			major++
		default:
			minor++
		}
	}
	if critical+major > 0 {
		verdict = model.VerdictFail
	}

	patched := ApplyFixes(draft.Script, issues)

	v.log.Info("verification finished",
		"verdict", verdict,
		"critical", critical,
		"major", major,
		"minor", minor)

	return &model.Verification{
		Verdict:       verdict,
		Issues:        issues,
		PatchedScript: patched,
	}
}

// resolvePointers checks every checklist claim's source pointer against
// the ledgers before the provider sees the draft. A claim whose pointer
// does not resolve cannot be verified at all, so it is flagged for
// deletion regardless of what the provider later says.
func (v *Verifier) resolvePointers(checklist []model.SectionClaims, ledgers []model.EvidenceLedger) []model.Issue {
	var issues []model.Issue
	for _, section := range checklist {
		for _, entry := range section.Claims {
			if entry.Source == "" {
				continue
			}
			if _, err := ResolvePointer(entry.Source, ledgers); err != nil {
				v.log.Warn("unresolvable evidence pointer",
					"section", section.SectionID,
					"source", entry.Source,
					"error", err)
				issues = append(issues, model.Issue{
					Severity: model.SeverityMajor,
					Location: section.SectionID,
					Claim:    entry.Claim,
					Status:   model.ClaimUnsupported,
					Reason:   err.Error(),
					Fix:      model.Fix{Action: model.FixDelete},
				})
			}
		}
	}
	return issues
}

// degrade returns the one result repair cannot improve: the original
// script, marked FAIL, with a synthetic issue naming the verification
// failure itself
func (v *Verifier) degrade(script string, err error) *model.Verification {
	v.log.Error("verification degraded", "error", err)
	return &model.Verification{
		Verdict: model.VerdictFail,
		Issues: []model.Issue{
			{
				Severity: model.SeverityCritical,
				Location: "verification",
				Claim:    "claim verification could not run",
				Status:   model.ClaimUnsupported,
				Reason:   err.Error(),
				Fix:      model.Fix{Action: model.FixDelete},
			},
		},
		PatchedScript: script,
		Degraded:      true,
	}
}
