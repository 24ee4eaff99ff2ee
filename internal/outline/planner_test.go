package outline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/narravox/narravox/internal/llm"
	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/model"
)

type stubGenerator struct {
	responses []string
	calls     int
}

func (g *stubGenerator) Name() string                         { return "stub" }
func (g *stubGenerator) IsAvailable(ctx context.Context) bool { return true }
func (g *stubGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	i := g.calls
	g.calls++
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", errors.New("out of responses")
}

func scriptConfig() model.ScriptConfig {
	return model.ScriptConfig{
		CharsPerSecond:     4.5,
		DefaultDurationSec: 150,
		IntroOutroSec:      30,
		MinBodySec:         90,
	}
}

func testParams() model.Params {
	return model.Params{
		SpeakerName:        "Dr. Ada Ember",
		SpeakerAffiliation: "Institute of Labor Economics",
		TargetDurationSec:  150,
		Language:           "en",
	}
}

func outlineJSON(t *testing.T, o model.Outline) string {
	t.Helper()
	data, err := json.Marshal(o)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func validOutline() model.Outline {
	return model.Outline{
		EpisodeTitle: "When Wages Rise",
		SpeakerIntro: []string{"Hello, I am Dr. Ada Ember."},
		Hook:         "What really happens when the minimum wage goes up?",
		CoreThesis:   "Employment effects are small and concentrated.",
		Sections: []model.OutlineSection{
			{SectionID: "S1", Title: "The question", Goal: "Set up the debate"},
			{SectionID: "S2", Title: "The evidence", Goal: "Walk through findings"},
			{SectionID: "S3", Title: "What it means", Goal: "Implications"},
		},
		Closing: "Thanks for listening.",
	}
}

func TestSectionBudget(t *testing.T) {
	p := New(&stubGenerator{}, model.LLMConfig{}, scriptConfig(), logging.NewNop())

	tests := []struct {
		name      string
		duration  int
		wantSec   int
		wantChars int
	}{
		// 150s - 30s intro/outro = 120s body, 40s per section, 180 chars
		{"default target", 150, 40, 180},
		// 60s - 30s = 30s < 90s floor, so 90s body, 30s per section
		{"short target hits floor", 60, 30, 135},
		// zero falls back to the default duration
		{"zero duration", 0, 40, 180},
		{"long target", 330, 100, 450},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec, chars := p.SectionBudget(tt.duration)
			if sec != tt.wantSec || chars != tt.wantChars {
				t.Errorf("SectionBudget(%d) = (%d,%d), want (%d,%d)", tt.duration, sec, chars, tt.wantSec, tt.wantChars)
			}
		})
	}
}

func TestPlanAcceptsThreeSections(t *testing.T) {
	gen := &stubGenerator{responses: []string{outlineJSON(t, validOutline())}}
	p := New(gen, model.LLMConfig{}, scriptConfig(), logging.NewNop())

	got, err := p.Plan(context.Background(), nil, testParams())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if got.Fallback {
		t.Error("valid plan should not be marked fallback")
	}
	if len(got.Sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(got.Sections))
	}
	for i, s := range got.Sections {
		if s.TargetChars != 180 {
			t.Errorf("section %d target chars = %d, want budget 180", i, s.TargetChars)
		}
	}
}

func TestPlanRepairsWrongSectionCount(t *testing.T) {
	two := validOutline()
	two.Sections = two.Sections[:2]

	gen := &stubGenerator{responses: []string{
		outlineJSON(t, two),
		outlineJSON(t, validOutline()),
	}}
	p := New(gen, model.LLMConfig{MaxRetries: 1}, scriptConfig(), logging.NewNop())

	got, err := p.Plan(context.Background(), nil, testParams())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if gen.calls != 2 {
		t.Errorf("provider calls = %d, want 2", gen.calls)
	}
	if len(got.Sections) != 3 {
		t.Errorf("sections = %d, want 3", len(got.Sections))
	}
}

func TestPlanFallsBackAfterExhaustion(t *testing.T) {
	gen := &stubGenerator{responses: []string{"junk", "junk"}}
	p := New(gen, model.LLMConfig{MaxRetries: 1}, scriptConfig(), logging.NewNop())

	got, err := p.Plan(context.Background(), nil, testParams())
	if err != nil {
		t.Fatalf("fallback should not be an error: %v", err)
	}
	if !got.Fallback {
		t.Error("degraded plan should be marked fallback")
	}
	if len(got.Sections) != 3 {
		t.Fatalf("fallback sections = %d, want 3", len(got.Sections))
	}
	for i, s := range got.Sections {
		if s.EvidencePlan == nil || len(s.EvidencePlan) != 0 {
			t.Errorf("section %d evidence plan should be empty, got %v", i, s.EvidencePlan)
		}
		if s.TargetChars != 180 {
			t.Errorf("section %d target chars = %d, want 180", i, s.TargetChars)
		}
	}
	if got.SpeakerIntro[0] == "" {
		t.Error("fallback should still introduce the speaker")
	}
}

func TestPlanFillsMissingSectionFields(t *testing.T) {
	o := validOutline()
	o.Sections[1].SectionID = ""
	o.Sections[2].TargetChars = 0

	gen := &stubGenerator{responses: []string{outlineJSON(t, o)}}
	p := New(gen, model.LLMConfig{}, scriptConfig(), logging.NewNop())

	got, err := p.Plan(context.Background(), nil, testParams())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if got.Sections[1].SectionID != "S2" {
		t.Errorf("section id = %q, want S2", got.Sections[1].SectionID)
	}
	if got.Sections[2].TargetChars != 180 {
		t.Errorf("target chars = %d, want 180", got.Sections[2].TargetChars)
	}
}
