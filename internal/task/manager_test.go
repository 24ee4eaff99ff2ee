package task

import (
	"testing"
	"time"

	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/model"
)

func newTestManager() *Manager {
	return NewManager(logging.NewNop())
}

func TestCreateAndGet(t *testing.T) {
	m := newTestManager()

	id := m.Create(model.Params{SpeakerName: "Dr. Ember", FileCount: 2})
	if id == "" {
		t.Fatal("empty task id")
	}

	got, ok := m.Get(id)
	if !ok {
		t.Fatal("task not found")
	}
	if got.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
	if got.Stage != model.StageInit {
		t.Errorf("stage = %q, want init", got.Stage)
	}
	if got.Params.FileCount != 2 {
		t.Errorf("params lost: %+v", got.Params)
	}
	if got.Progress.Percent != 0 {
		t.Errorf("initial percent = %d, want 0", got.Progress.Percent)
	}
}

func TestGetUnknownTask(t *testing.T) {
	m := newTestManager()
	if _, ok := m.Get("nope"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestStageWeights(t *testing.T) {
	m := newTestManager()
	id := m.Create(model.Params{})

	tests := []struct {
		stage model.Stage
		want  int
	}{
		{model.StageParsing, 10},
		{model.StageChunking, 20},
		{model.StageExtracting, 50},
		{model.StageOutlining, 65},
		{model.StageWriting, 80},
		{model.StageVerifying, 90},
		{model.StageExporting, 95},
	}

	for _, tt := range tests {
		m.UpdateStage(id, tt.stage, "working", model.SeverityInfo)
		got, _ := m.Get(id)
		if got.Progress.Percent != tt.want {
			t.Errorf("stage %s percent = %d, want %d", tt.stage, got.Progress.Percent, tt.want)
		}
		if got.Status != model.StatusProcessing {
			t.Errorf("stage %s status = %q, want processing", tt.stage, got.Status)
		}
	}
}

func TestUpdateProgressPartial(t *testing.T) {
	m := newTestManager()
	id := m.Create(model.Params{})

	docTotal, chunkTotal := 2, 10
	m.UpdateProgress(id, ProgressUpdate{DocTotal: &docTotal, ChunkTotal: &chunkTotal})

	cur := 4
	m.UpdateProgress(id, ProgressUpdate{ChunkCurrent: &cur})

	got, _ := m.Get(id)
	if got.Progress.DocTotal != 2 || got.Progress.ChunkTotal != 10 {
		t.Errorf("totals lost: %+v", got.Progress)
	}
	if got.Progress.ChunkCurrent != 4 {
		t.Errorf("chunk current = %d, want 4", got.Progress.ChunkCurrent)
	}
	if got.Progress.DocCurrent != 0 {
		t.Errorf("doc current = %d, want untouched 0", got.Progress.DocCurrent)
	}
}

func TestCompleteLifecycle(t *testing.T) {
	m := newTestManager()
	id := m.Create(model.Params{})
	m.UpdateStage(id, model.StageVerifying, "verifying claims", model.SeverityInfo)

	result := &model.Result{TaskID: id, EpisodeTitle: "When Wages Rise", Verdict: model.VerdictPass}
	audit := &model.AuditReport{Verdict: model.VerdictPass}
	m.Complete(id, result, audit)

	got, _ := m.Get(id)
	if got.Status != model.StatusCompleted {
		t.Errorf("status = %q", got.Status)
	}
	if got.Stage != model.StageCompleted {
		t.Errorf("stage = %q", got.Stage)
	}
	if got.Progress.Percent != 100 {
		t.Errorf("percent = %d, want 100", got.Progress.Percent)
	}
	if got.Result == nil || got.Result.EpisodeTitle != "When Wages Rise" {
		t.Errorf("result lost: %+v", got.Result)
	}
	if got.Audit == nil {
		t.Error("audit lost")
	}
}

func TestFailLifecycle(t *testing.T) {
	m := newTestManager()
	id := m.Create(model.Params{})

	m.Fail(id, "merge ledger for doc1: provider failed")

	got, _ := m.Get(id)
	if got.Status != model.StatusFailed {
		t.Errorf("status = %q", got.Status)
	}
	if got.Stage != model.StageFailed {
		t.Errorf("stage = %q", got.Stage)
	}
	if got.Error == "" {
		t.Error("error message lost")
	}
	if got.Severity != model.SeverityError {
		t.Errorf("severity = %q", got.Severity)
	}
}

func TestDelete(t *testing.T) {
	m := newTestManager()
	id := m.Create(model.Params{})

	if !m.Delete(id) {
		t.Error("delete should report success")
	}
	if _, ok := m.Get(id); ok {
		t.Error("deleted task still resolvable")
	}
	if m.Delete(id) {
		t.Error("double delete should report failure")
	}
}

func TestSweepOlderThan(t *testing.T) {
	m := newTestManager()

	base := time.Now()
	m.now = func() time.Time { return base.Add(-2 * time.Hour) }
	oldID := m.Create(model.Params{})

	m.now = func() time.Time { return base }
	freshID := m.Create(model.Params{})

	removed := m.SweepOlderThan(time.Hour)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := m.Get(oldID); ok {
		t.Error("old task should be swept")
	}
	if _, ok := m.Get(freshID); !ok {
		t.Error("fresh task should survive")
	}
}

func TestListNewestFirst(t *testing.T) {
	m := newTestManager()

	base := time.Now()
	m.now = func() time.Time { return base.Add(-time.Hour) }
	oldID := m.Create(model.Params{})

	m.now = func() time.Time { return base }
	freshID := m.Create(model.Params{})

	got := m.List()
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != freshID || got[1].ID != oldID {
		t.Errorf("order = [%s %s], want fresh first", got[0].ID, got[1].ID)
	}
}

func TestElapsedComputedOnSnapshot(t *testing.T) {
	m := newTestManager()

	base := time.Now()
	m.now = func() time.Time { return base }
	id := m.Create(model.Params{})

	m.now = func() time.Time { return base.Add(1500 * time.Millisecond) }
	got, _ := m.Get(id)
	if got.Timing.ElapsedMS != 1500 {
		t.Errorf("elapsed = %dms, want 1500", got.Timing.ElapsedMS)
	}
}
