package model

import "time"

// TaskStatus is the top-level lifecycle state of a generation task
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusProcessing TaskStatus = "processing"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

// Stage names the pipeline phase a task is currently in
type Stage string

const (
	StageInit       Stage = "init"
	StageParsing    Stage = "parsing"
	StageChunking   Stage = "chunking"
	StageExtracting Stage = "extracting"
	StageOutlining  Stage = "outlining"
	StageWriting    Stage = "writing"
	StageVerifying  Stage = "verifying"
	StageExporting  Stage = "exporting"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// Severity qualifies a stage detail message
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Params are the caller-supplied generation parameters
type Params struct {
	SpeakerName        string `json:"speaker_name"`
	SpeakerAffiliation string `json:"speaker_affiliation"`
	EpisodeTopic       string `json:"episode_topic,omitempty"`
	TargetDurationSec  int    `json:"duration_target_sec"`
	Language           string `json:"language"`
	FileCount          int    `json:"file_count"`
}

// Progress tracks counters during a task's lifetime. Percent follows a
// fixed per-stage weight table rather than a literal fraction of work,
// since generation latency dominates and sub-stage costs are unknowable.
type Progress struct {
	Percent      int `json:"percent"`
	DocCurrent   int `json:"doc_current"`
	DocTotal     int `json:"doc_total"`
	ChunkCurrent int `json:"chunk_current"`
	ChunkTotal   int `json:"chunk_total"`
}

// Timing records when a task started and how long it has run
type Timing struct {
	StartedAt time.Time `json:"started_at"`
	ElapsedMS int64     `json:"elapsed_ms"`
}

// Result is the final payload of a completed task
type Result struct {
	TaskID       string  `json:"task_id"`
	EpisodeTitle string  `json:"episode_title"`
	ScriptText   string  `json:"script_text"`
	ScriptPath   string  `json:"script_path,omitempty"` // Exported artifact on disk
	Verdict      Verdict `json:"verdict"`
	IssueCount   int     `json:"issues_count"`
	WordCount    int     `json:"word_count"` // Whitespace-delimited words in the released script
}

// DocumentCoverage pairs a document with its chunking coverage
type DocumentCoverage struct {
	DocID    string         `json:"doc_id"`
	Filename string         `json:"filename"`
	Coverage CoverageReport `json:"coverage"`
}

// AuditReport exposes everything a reviewer needs to check the release:
// per-document coverage, the ledgers the script was written from, and
// every verification issue.
type AuditReport struct {
	Documents       []DocumentCoverage `json:"documents"`
	ChunksTotal     int                `json:"total_chunks"`
	ChunksProcessed int                `json:"processed_chunks"`
	Ledgers         []EvidenceLedger   `json:"evidence_ledgers"`
	Verdict         Verdict            `json:"verdict"`
	Issues          []Issue            `json:"issues"`
}

// Task is the full mutable state of one generation job. Mutated only by
// the orchestrator through the task manager; callers read snapshots.
type Task struct {
	ID       string       `json:"task_id"`
	Params   Params       `json:"params"`
	Status   TaskStatus   `json:"status"`
	Stage    Stage        `json:"stage"`
	Progress Progress     `json:"progress"`
	Timing   Timing       `json:"timing"`
	Detail   string       `json:"detail"`
	Severity Severity     `json:"severity"`
	Result   *Result      `json:"result,omitempty"`
	Error    string       `json:"error,omitempty"`
	Audit    *AuditReport `json:"audit,omitempty"`
}
