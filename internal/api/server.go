// Package api exposes the generation pipeline over HTTP: submit a
// document batch, poll the task, fetch the result and audit report.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/model"
	"github.com/narravox/narravox/internal/pipeline"
	"github.com/narravox/narravox/internal/task"
)

// Server wires the HTTP routes to the orchestrator and task manager
type Server struct {
	router *gin.Engine
	orch   *pipeline.Orchestrator
	tasks  *task.Manager
	cfg    *model.Config
	log    *logging.Logger
}

// NewServer creates the API server and registers its routes
func NewServer(cfg *model.Config, orch *pipeline.Orchestrator, tasks *task.Manager, log *logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router: router,
		orch:   orch,
		tasks:  tasks,
		cfg:    cfg,
		log:    log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/scripts", s.handleSubmit)
		v1.GET("/tasks", s.handleTaskList)
		v1.GET("/tasks/:id", s.handleTaskStatus)
		v1.GET("/tasks/:id/result", s.handleTaskResult)
		v1.GET("/tasks/:id/audit", s.handleTaskAudit)
		v1.DELETE("/tasks/:id", s.handleTaskDelete)
	}
}

// Handler returns the underlying http.Handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server on the configured address and blocks
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.log.Info("api listening", "addr", s.cfg.Server.Addr)
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
