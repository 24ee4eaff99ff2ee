package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/narravox/narravox/internal/model"
	"github.com/narravox/narravox/internal/pipeline"
)

// handleSubmit accepts a multipart upload of 1..max_files source
// documents plus generation parameters and returns the task id
func (s *Server) handleSubmit(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form: " + err.Error()})
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded; use the 'files' field"})
		return
	}
	if max := s.cfg.Server.MaxFiles; max > 0 && len(fileHeaders) > max {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many files: limit is " + strconv.Itoa(max)})
		return
	}

	files := make([]pipeline.InputFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		if !s.orch.Supports(fh.Filename) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file format: " + fh.Filename})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "read " + fh.Filename + ": " + err.Error()})
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "read " + fh.Filename + ": " + err.Error()})
			return
		}
		files = append(files, pipeline.InputFile{Filename: fh.Filename, Data: data})
	}

	params := model.Params{
		SpeakerName:        c.PostForm("speaker_name"),
		SpeakerAffiliation: c.PostForm("speaker_affiliation"),
		EpisodeTopic:       c.PostForm("episode_topic"),
		Language:           c.PostForm("language"),
	}
	if v := c.PostForm("duration_target_sec"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "duration_target_sec must be a positive integer"})
			return
		}
		params.TargetDurationSec = sec
	}

	id, err := s.orch.Submit(params, files)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task_id": id})
}

// handleTaskList returns snapshots of every task, newest first
func (s *Server) handleTaskList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": s.tasks.List()})
}

// handleTaskStatus returns the full task snapshot
func (s *Server) handleTaskStatus(c *gin.Context) {
	t, ok := s.tasks.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// handleTaskResult returns the result of a completed task. Polling a
// task that is still running yields 409 so clients can tell "not yet"
// from "never existed".
func (s *Server) handleTaskResult(c *gin.Context) {
	t, ok := s.tasks.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	switch t.Status {
	case model.StatusCompleted:
		c.JSON(http.StatusOK, t.Result)
	case model.StatusFailed:
		c.JSON(http.StatusConflict, gin.H{"error": "task failed: " + t.Error})
	default:
		c.JSON(http.StatusConflict, gin.H{"error": "task not completed", "status": t.Status, "stage": t.Stage})
	}
}

// handleTaskAudit returns the audit report of a completed task
func (s *Server) handleTaskAudit(c *gin.Context) {
	t, ok := s.tasks.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if t.Audit == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "audit not available", "status": t.Status})
		return
	}
	c.JSON(http.StatusOK, t.Audit)
}

func (s *Server) handleTaskDelete(c *gin.Context) {
	if !s.tasks.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
