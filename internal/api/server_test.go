package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/model"
	"github.com/narravox/narravox/internal/pipeline"
	"github.com/narravox/narravox/internal/task"
)

func testServer(t *testing.T) (*Server, *task.Manager) {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "ollama"
	cfg.LLM.BaseURL = "http://127.0.0.1:1" // Nothing listens; background tasks fail fast
	cfg.Cache.Enabled = false
	cfg.Output.Dir = t.TempDir()
	log := logging.NewNop()

	tasks := task.NewManager(log)
	orch, err := pipeline.NewOrchestrator(cfg, tasks, log)
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}
	return NewServer(cfg, orch, tasks, log), tasks
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for name, content := range files {
		fw, err := w.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := testServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestSubmitReturnsTaskID(t *testing.T) {
	s, tasks := testServer(t)

	body, ctype := multipartBody(t,
		map[string]string{"speaker_name": "Dr. Ember", "duration_target_sec": "120"},
		map[string]string{"paper.md": "# Title\n\nSome research content."},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scripts", body)
	req.Header.Set("Content-Type", ctype)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	id := resp["task_id"]
	if id == "" {
		t.Fatal("missing task_id")
	}

	got, ok := tasks.Get(id)
	if !ok {
		t.Fatal("task not registered")
	}
	if got.Params.SpeakerName != "Dr. Ember" {
		t.Errorf("speaker = %q", got.Params.SpeakerName)
	}
	if got.Params.TargetDurationSec != 120 {
		t.Errorf("duration = %d, want 120", got.Params.TargetDurationSec)
	}
}

func TestSubmitValidationErrors(t *testing.T) {
	s, _ := testServer(t)

	tests := []struct {
		name   string
		fields map[string]string
		files  map[string]string
	}{
		{"no files", nil, nil},
		{"unsupported format", nil, map[string]string{"scan.pdf": "binary"}},
		{"bad duration", map[string]string{"duration_target_sec": "soon"}, map[string]string{"a.md": "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ctype := multipartBody(t, tt.fields, tt.files)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/scripts", body)
			req.Header.Set("Content-Type", ctype)

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSubmitTooManyFiles(t *testing.T) {
	s, _ := testServer(t)

	files := make(map[string]string)
	for i := 0; i < 11; i++ {
		files[strings.Repeat("f", i+1)+".md"] = "content"
	}
	body, ctype := multipartBody(t, nil, files)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scripts", body)
	req.Header.Set("Content-Type", ctype)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTaskStatusEndpoint(t *testing.T) {
	s, tasks := testServer(t)
	id := tasks.Create(model.Params{SpeakerName: "Dr. Ember"})
	tasks.UpdateStage(id, model.StageExtracting, "extracting evidence", model.SeverityInfo)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got model.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Stage != model.StageExtracting {
		t.Errorf("stage = %q", got.Stage)
	}
	if got.Progress.Percent != 50 {
		t.Errorf("percent = %d, want 50", got.Progress.Percent)
	}
}

func TestTaskListEndpoint(t *testing.T) {
	s, tasks := testServer(t)
	tasks.Create(model.Params{})
	tasks.Create(model.Params{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Tasks) != 2 {
		t.Errorf("len = %d, want 2", len(resp.Tasks))
	}
}

func TestTaskStatusNotFound(t *testing.T) {
	s, _ := testServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/unknown", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTaskResultLifecycle(t *testing.T) {
	s, tasks := testServer(t)
	id := tasks.Create(model.Params{})

	// Still running
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id+"/result", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("running task result status = %d, want 409", rec.Code)
	}

	tasks.Complete(id, &model.Result{TaskID: id, EpisodeTitle: "Done", Verdict: model.VerdictPass}, &model.AuditReport{Verdict: model.VerdictPass})

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id+"/result", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("completed task result status = %d", rec.Code)
	}

	var got model.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.EpisodeTitle != "Done" {
		t.Errorf("title = %q", got.EpisodeTitle)
	}
}

func TestTaskResultFailedTask(t *testing.T) {
	s, tasks := testServer(t)
	id := tasks.Create(model.Params{})
	tasks.Fail(id, "merge exhausted")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id+"/result", nil))

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "merge exhausted") {
		t.Error("failure reason missing from response")
	}
}

func TestTaskAuditEndpoint(t *testing.T) {
	s, tasks := testServer(t)
	id := tasks.Create(model.Params{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id+"/audit", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("audit before completion status = %d, want 409", rec.Code)
	}

	tasks.Complete(id, &model.Result{}, &model.AuditReport{ChunksTotal: 4, ChunksProcessed: 4})

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id+"/audit", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got model.AuditReport
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ChunksTotal != 4 {
		t.Errorf("chunks total = %d", got.ChunksTotal)
	}
}

func TestTaskDeleteEndpoint(t *testing.T) {
	s, tasks := testServer(t)
	id := tasks.Create(model.Params{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if _, ok := tasks.Get(id); ok {
		t.Error("task should be gone")
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}
