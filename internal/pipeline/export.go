package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/narravox/narravox/internal/model"
)

// Exporter writes the released script and its audit report to disk
// under a per-task directory
type Exporter struct {
	dir string
}

// NewExporter creates an exporter rooted at dir
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Export writes script.md and audit.json for the task and returns the
// script path
func (e *Exporter) Export(taskID string, result *model.Result, audit *model.AuditReport) (string, error) {
	taskDir := filepath.Join(e.dir, taskID)
	if err := os.MkdirAll(taskDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	scriptPath := filepath.Join(taskDir, "script.md")
	if err := os.WriteFile(scriptPath, []byte(renderScript(result)), 0o644); err != nil {
		return "", fmt.Errorf("write script: %w", err)
	}

	auditPath := filepath.Join(taskDir, "audit.json")
	data, err := json.MarshalIndent(audit, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal audit: %w", err)
	}
	if err := os.WriteFile(auditPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write audit: %w", err)
	}

	return scriptPath, nil
}

func renderScript(result *model.Result) string {
	var b strings.Builder
	if result.EpisodeTitle != "" {
		b.WriteString("# ")
		b.WriteString(result.EpisodeTitle)
		b.WriteString("\n\n")
	}
	b.WriteString(result.ScriptText)
	if !strings.HasSuffix(result.ScriptText, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// countWords counts whitespace-delimited tokens in the released script
func countWords(s string) int {
	return len(strings.Fields(s))
}
