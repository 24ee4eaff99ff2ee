package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/narravox/narravox/internal/api"
	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/pipeline"
	"github.com/narravox/narravox/internal/task"
)

var (
	serveAddr     string
	serveProvider string
	serveModel    string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve exposes script generation over HTTP.

Upload documents with POST /api/v1/scripts and poll the returned task
id for progress, result and audit report.

Example:
  narravox serve
  narravox serve --addr :9090 --provider openai --model gpt-4o-mini`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveProvider, "provider", "", "generation provider (openai, anthropic, ollama)")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "model name")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveProvider != "" {
		cfg.LLM.Provider = serveProvider
	}
	if serveModel != "" {
		cfg.LLM.Model = serveModel
	}
	if cfg.LLM.Provider == "" {
		return fmt.Errorf("no generation provider configured; set llm.provider or --provider")
	}
	if err := applyProviderEnv(cfg); err != nil {
		return err
	}

	mode := "production"
	if cfg.Output.Verbose {
		mode = "development"
	}
	log, err := logging.New(mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	tasks := task.NewManager(log)
	stopSweep := tasks.StartSweeper(cfg.Tasks.MaxAge, cfg.Tasks.SweepInterval)
	defer stopSweep()

	orch, err := pipeline.NewOrchestrator(cfg, tasks, log)
	if err != nil {
		return err
	}

	server := api.NewServer(cfg, orch, tasks, log)
	return server.Run()
}
