// Package task tracks generation jobs: stage, progress, timing and
// final artifacts. The store is the only surface callers poll; all
// mutation goes through the orchestrator.
package task

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/model"
)

// stageWeights maps each stage to an overall progress percent. The
// table is deliberately not a fraction of work done: generation latency
// dominates and sub-stage costs are unpredictable.
var stageWeights = map[model.Stage]int{
	model.StageInit:       0,
	model.StageParsing:    10,
	model.StageChunking:   20,
	model.StageExtracting: 50,
	model.StageOutlining:  65,
	model.StageWriting:    80,
	model.StageVerifying:  90,
	model.StageExporting:  95,
	model.StageCompleted:  100,
}

// ProgressUpdate carries optional counter updates; nil fields are left
// untouched
type ProgressUpdate struct {
	DocCurrent   *int
	DocTotal     *int
	ChunkCurrent *int
	ChunkTotal   *int
}

// Manager is the mutex-guarded task store shared between the
// orchestrator (writer) and API handlers (readers)
type Manager struct {
	mu    sync.RWMutex
	tasks map[string]*model.Task
	log   *logging.Logger
	now   func() time.Time // Stubbed in tests
}

// NewManager creates an empty task store
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		tasks: make(map[string]*model.Task),
		log:   log,
		now:   time.Now,
	}
}

// Create registers a new pending task and returns its id
func (m *Manager) Create(params model.Params) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.tasks[id] = &model.Task{
		ID:       id,
		Params:   params,
		Status:   model.StatusPending,
		Stage:    model.StageInit,
		Severity: model.SeverityInfo,
		Timing:   model.Timing{StartedAt: m.now()},
	}
	m.log.Info("created task", "task", id, "files", params.FileCount)
	return id
}

// Get returns a snapshot of the task with elapsed time computed
func (m *Manager) Get(id string) (model.Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	snap := *t
	snap.Timing.ElapsedMS = m.now().Sub(t.Timing.StartedAt).Milliseconds()
	return snap, true
}

// List returns snapshots of every task, newest first.
func (m *Manager) List() []model.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	out := make([]model.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		snap := *t
		snap.Timing.ElapsedMS = now.Sub(t.Timing.StartedAt).Milliseconds()
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timing.StartedAt.After(out[j].Timing.StartedAt)
	})
	return out
}

// UpdateStage moves the task to a new stage and sets its progress
// percent from the weight table
func (m *Manager) UpdateStage(id string, stage model.Stage, detail string, severity model.Severity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		m.log.Warn("stage update for unknown task", "task", id)
		return
	}

	t.Status = model.StatusProcessing
	t.Stage = stage
	t.Detail = detail
	t.Severity = severity
	if weight, ok := stageWeights[stage]; ok {
		t.Progress.Percent = weight
	}

	m.log.Info("task stage", "task", id, "stage", stage, "detail", detail)
}

// UpdateProgress applies the non-nil counters
func (m *Manager) UpdateProgress(id string, upd ProgressUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return
	}
	if upd.DocCurrent != nil {
		t.Progress.DocCurrent = *upd.DocCurrent
	}
	if upd.DocTotal != nil {
		t.Progress.DocTotal = *upd.DocTotal
	}
	if upd.ChunkCurrent != nil {
		t.Progress.ChunkCurrent = *upd.ChunkCurrent
	}
	if upd.ChunkTotal != nil {
		t.Progress.ChunkTotal = *upd.ChunkTotal
	}
}

// Complete marks the task finished and attaches its result and audit
// report
func (m *Manager) Complete(id string, result *model.Result, audit *model.AuditReport) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		m.log.Warn("completion for unknown task", "task", id)
		return
	}

	t.Status = model.StatusCompleted
	t.Stage = model.StageCompleted
	t.Progress.Percent = 100
	t.Result = result
	t.Audit = audit
	t.Severity = model.SeveritySuccess
	t.Detail = "script generated"

	m.log.Info("task completed", "task", id)
}

// Fail marks the task failed with a stage-qualified message
func (m *Manager) Fail(id string, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		m.log.Warn("failure for unknown task", "task", id)
		return
	}

	t.Status = model.StatusFailed
	t.Stage = model.StageFailed
	t.Error = errMsg
	t.Severity = model.SeverityError
	t.Detail = "generation failed: " + errMsg

	m.log.Error("task failed", "task", id, "error", errMsg)
}

// Delete removes the task; returns false when it does not exist
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return false
	}
	delete(m.tasks, id)
	m.log.Info("deleted task", "task", id)
	return true
}

// SweepOlderThan removes tasks started more than maxAge ago and returns
// how many were removed
func (m *Manager) SweepOlderThan(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0
	for id, t := range m.tasks {
		if t.Timing.StartedAt.Before(cutoff) {
			delete(m.tasks, id)
			removed++
		}
	}
	if removed > 0 {
		m.log.Info("swept old tasks", "removed", removed)
	}
	return removed
}

// StartSweeper runs SweepOlderThan on the given interval until the
// returned stop function is called
func (m *Manager) StartSweeper(maxAge, interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				m.SweepOlderThan(maxAge)
			}
		}
	}()
	return func() { close(done) }
}
