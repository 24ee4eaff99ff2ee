// Package outline plans the fixed three-section episode structure from
// all evidence ledgers, with a character budget per section.
package outline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/narravox/narravox/internal/llm"
	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/model"
)

// Planner produces episode outlines
type Planner struct {
	gen     llm.Generator
	log     *logging.Logger
	script  model.ScriptConfig
	timeout time.Duration
	opts    llm.DecodeOptions
}

// New creates an outline planner
func New(gen llm.Generator, cfg model.LLMConfig, script model.ScriptConfig, log *logging.Logger) *Planner {
	opts := llm.DefaultDecodeOptions()
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	timeout := cfg.OutlineTimeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	if script.CharsPerSecond <= 0 {
		script.CharsPerSecond = 4.5
	}
	if script.DefaultDurationSec <= 0 {
		script.DefaultDurationSec = 150
	}
	if script.IntroOutroSec <= 0 {
		script.IntroOutroSec = 30
	}
	if script.MinBodySec <= 0 {
		script.MinBodySec = 90
	}
	return &Planner{
		gen:     gen,
		log:     log,
		script:  script,
		timeout: timeout,
		opts:    opts,
	}
}

// SectionBudget derives the per-section character budget from a target
// speaking duration: the intro/outro allowance comes off the top, the
// rest splits across the three sections.
func (p *Planner) SectionBudget(durationSec int) (secPerSection, charsPerSection int) {
	if durationSec <= 0 {
		durationSec = p.script.DefaultDurationSec
	}
	body := durationSec - p.script.IntroOutroSec
	if body < p.script.MinBodySec {
		body = p.script.MinBodySec
	}
	secPerSection = body / model.OutlineSectionCount
	charsPerSection = int(float64(secPerSection) * p.script.CharsPerSecond)
	return secPerSection, charsPerSection
}

// Plan generates the outline from all ledgers. Wrong section counts are
// treated as malformed output and repaired; after exhaustion the planner
// degrades to a generic three-section outline with empty evidence plans
// so the pipeline can still proceed.
func (p *Planner) Plan(ctx context.Context, ledgers []model.EvidenceLedger, params model.Params) (*model.Outline, error) {
	duration := params.TargetDurationSec
	if duration <= 0 {
		duration = p.script.DefaultDurationSec
	}
	secPerSection, charsPerSection := p.SectionBudget(duration)

	ledgersJSON, err := json.MarshalIndent(ledgers, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal ledgers: %w", err)
	}

	topic := params.EpisodeTopic
	if topic == "" {
		topic = "(derive from the ledgers)"
	}
	language := params.Language
	if language == "" {
		language = "en"
	}

	req := llm.Request{
		Prompt: fmt.Sprintf(outlinePrompt,
			params.SpeakerName, params.SpeakerAffiliation, topic,
			duration, secPerSection, language,
			string(ledgersJSON),
			params.SpeakerName, params.SpeakerAffiliation,
			charsPerSection, charsPerSection, charsPerSection),
		SystemPrompt: systemPrompt,
		Timeout:      p.timeout,
	}

	out, err := llm.Decode[model.Outline](ctx, p.gen, req, func(o *model.Outline) error {
		if o.EpisodeTitle == "" {
			return fmt.Errorf("missing episode_title")
		}
		if len(o.Sections) != model.OutlineSectionCount {
			return fmt.Errorf("structure must have exactly %d sections, got %d", model.OutlineSectionCount, len(o.Sections))
		}
		return nil
	}, p.opts)
	if err != nil {
		p.log.Warn("outline planning exhausted, using fallback outline", "error", err)
		return p.fallback(params, charsPerSection), nil
	}

	for i := range out.Sections {
		if out.Sections[i].SectionID == "" {
			out.Sections[i].SectionID = fmt.Sprintf("S%d", i+1)
		}
		if out.Sections[i].TargetChars <= 0 {
			out.Sections[i].TargetChars = charsPerSection
		}
	}

	p.log.Info("planned outline", "title", out.EpisodeTitle)
	return out, nil
}

// fallback is the minimal generic outline: the pipeline can still write
// and verify a script, the planner just stopped helping.
func (p *Planner) fallback(params model.Params, charsPerSection int) *model.Outline {
	sections := make([]model.OutlineSection, model.OutlineSectionCount)
	titles := [model.OutlineSectionCount]string{"Introduction", "Main findings", "Conclusions"}
	goals := [model.OutlineSectionCount]string{
		"Introduce the research and why it matters",
		"Walk through the central evidence",
		"Summarize implications and close",
	}
	for i := range sections {
		sections[i] = model.OutlineSection{
			SectionID:    fmt.Sprintf("S%d", i+1),
			Title:        titles[i],
			Goal:         goals[i],
			EvidencePlan: []model.EvidencePlanRef{},
			TargetChars:  charsPerSection,
		}
	}

	title := params.EpisodeTopic
	if title == "" {
		title = "Research briefing"
	}

	return &model.Outline{
		EpisodeTitle: title,
		SpeakerIntro: []string{
			fmt.Sprintf("Hello everyone, I am %s, from %s.", params.SpeakerName, params.SpeakerAffiliation),
			"It is a pleasure to be with you for this episode.",
		},
		Hook:       "Today we look at what the research actually shows.",
		CoreThesis: "The evidence tells a consistent story across the sources we reviewed.",
		Sections:   sections,
		Closing:    "That is all for this episode. Thank you for listening, and see you next time.",
		Fallback:   true,
	}
}
