package extract

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/narravox/narravox/internal/llm"
	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/model"
)

type stubGenerator struct {
	responses []string
	errs      []error
	calls     int
}

func (g *stubGenerator) Name() string                         { return "stub" }
func (g *stubGenerator) IsAvailable(ctx context.Context) bool { return true }
func (g *stubGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	i := g.calls
	g.calls++
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", errors.New("out of responses")
}

func testChunk() model.Chunk {
	return model.Chunk{
		ID:        "doc1_c00",
		DocID:     "doc1",
		Text:      "Employment rose by 3.1% in treated regions. The effect was driven by small firms.",
		ParaStart: 0,
		ParaEnd:   2,
	}
}

func testConfig() model.LLMConfig {
	return model.LLMConfig{MaxRetries: 1, ExtractTimeout: time.Second}
}

func factsJSON(t *testing.T, facts []model.Fact) string {
	t.Helper()
	data, err := json.Marshal(model.ChunkFacts{
		ChunkID: "doc1_c00",
		DocID:   "doc1",
		Facts:   facts,
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestExtractChunkFactsKeepsVerifiedFacts(t *testing.T) {
	response := factsJSON(t, []model.Fact{{
		Type:     model.FactFinding,
		Claim:    "employment rose 3.1% in treated regions",
		Numbers:  []string{"3.1%"},
		Evidence: model.Evidence{Quote: "Employment rose by 3.1% in treated regions", ParaRange: "p0-p1"},
	}})
	gen := &stubGenerator{responses: []string{response}}
	e := New(gen, testConfig(), logging.NewNop())

	got := e.ExtractChunkFacts(context.Background(), testChunk())

	if got.Error != "" {
		t.Fatalf("unexpected error: %s", got.Error)
	}
	if len(got.Facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(got.Facts))
	}
	if got.Facts[0].Evidence.ParaRange != "p0-p1" {
		t.Errorf("valid para range should be kept, got %q", got.Facts[0].Evidence.ParaRange)
	}
}

func TestExtractChunkFactsDropsFabricatedQuotes(t *testing.T) {
	response := factsJSON(t, []model.Fact{
		{
			Type:     model.FactFinding,
			Claim:    "a real finding",
			Evidence: model.Evidence{Quote: "driven by small firms", ParaRange: "p0-p2"},
		},
		{
			Type:     model.FactFinding,
			Claim:    "an invented finding",
			Evidence: model.Evidence{Quote: "unemployment doubled overnight", ParaRange: "p0-p2"},
		},
		{
			Type:  model.FactMethod,
			Claim: "no evidence at all",
		},
	})
	gen := &stubGenerator{responses: []string{response}}
	e := New(gen, testConfig(), logging.NewNop())

	got := e.ExtractChunkFacts(context.Background(), testChunk())

	if len(got.Facts) != 1 {
		t.Fatalf("got %d facts, want 1: %+v", len(got.Facts), got.Facts)
	}
	if got.Facts[0].Claim != "a real finding" {
		t.Errorf("kept the wrong fact: %+v", got.Facts[0])
	}
}

func TestExtractChunkFactsClampsBadParaRange(t *testing.T) {
	response := factsJSON(t, []model.Fact{{
		Type:     model.FactFinding,
		Claim:    "finding with wandering range",
		Evidence: model.Evidence{Quote: "driven by small firms", ParaRange: "p40-p90"},
	}})
	gen := &stubGenerator{responses: []string{response}}
	e := New(gen, testConfig(), logging.NewNop())

	got := e.ExtractChunkFacts(context.Background(), testChunk())

	if len(got.Facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(got.Facts))
	}
	if got.Facts[0].Evidence.ParaRange != "p0-p2" {
		t.Errorf("range = %q, want clamped to chunk range p0-p2", got.Facts[0].Evidence.ParaRange)
	}
}

func TestExtractChunkFactsExhaustionIsNotFatal(t *testing.T) {
	gen := &stubGenerator{responses: []string{"not json", "still not json"}}
	e := New(gen, testConfig(), logging.NewNop())

	got := e.ExtractChunkFacts(context.Background(), testChunk())

	if got.Error == "" {
		t.Error("exhaustion should be recorded on the chunk")
	}
	if len(got.Facts) != 0 {
		t.Errorf("got %d facts, want 0", len(got.Facts))
	}
	if got.ChunkID != "doc1_c00" || got.DocID != "doc1" {
		t.Errorf("chunk identity lost: %+v", got)
	}
}

func TestExtractChunkFactsRepairsMalformedResponse(t *testing.T) {
	response := factsJSON(t, []model.Fact{{
		Type:     model.FactFinding,
		Claim:    "recovered",
		Evidence: model.Evidence{Quote: "Employment rose by 3.1%", ParaRange: "p0-p0"},
	}})
	gen := &stubGenerator{responses: []string{"garbage", response}}
	e := New(gen, testConfig(), logging.NewNop())

	got := e.ExtractChunkFacts(context.Background(), testChunk())

	if got.Error != "" {
		t.Fatalf("repair should have succeeded: %s", got.Error)
	}
	if len(got.Facts) != 1 || got.Facts[0].Claim != "recovered" {
		t.Errorf("got %+v", got.Facts)
	}
	if gen.calls != 2 {
		t.Errorf("provider calls = %d, want 2", gen.calls)
	}
}
