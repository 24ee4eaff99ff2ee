package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/narravox/narravox/internal/logging"
	"github.com/narravox/narravox/internal/model"
	"github.com/narravox/narravox/internal/pipeline"
	"github.com/narravox/narravox/internal/task"
)

var (
	genSpeaker     string
	genAffiliation string
	genTopic       string
	genDuration    int
	genLanguage    string
	genProvider    string
	genModel       string
	genOutDir      string
	genNoCache     bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <file>...",
	Short: "Generate a narration script from source documents",
	Long: `Generate runs the full pipeline locally on the given documents and
writes the released script and audit report to the output directory.

Example:
  narravox generate paper.md notes.txt --speaker "Dr. Ada Ember"
  narravox generate report.html --provider ollama --model llama3 --duration 180`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&genSpeaker, "speaker", "", "speaker name for the intro")
	generateCmd.Flags().StringVar(&genAffiliation, "affiliation", "", "speaker affiliation")
	generateCmd.Flags().StringVar(&genTopic, "topic", "", "episode topic hint")
	generateCmd.Flags().IntVar(&genDuration, "duration", 0, "target narration length in seconds")
	generateCmd.Flags().StringVar(&genLanguage, "language", "en", "script language code")
	generateCmd.Flags().StringVar(&genProvider, "provider", "", "generation provider (openai, anthropic, ollama)")
	generateCmd.Flags().StringVar(&genModel, "model", "", "model name")
	generateCmd.Flags().StringVar(&genOutDir, "out", "", "output directory (default from config)")
	generateCmd.Flags().BoolVar(&genNoCache, "no-cache", false, "disable the generation response cache")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if genProvider != "" {
		cfg.LLM.Provider = genProvider
	}
	if genModel != "" {
		cfg.LLM.Model = genModel
	}
	if genOutDir != "" {
		cfg.Output.Dir = genOutDir
	}
	if genNoCache {
		cfg.Cache.Enabled = false
	}
	if cfg.LLM.Provider == "" {
		return fmt.Errorf("no generation provider configured; set llm.provider or --provider")
	}
	if err := applyProviderEnv(cfg); err != nil {
		return err
	}

	files := make([]pipeline.InputFile, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, pipeline.InputFile{Filename: path, Data: data})
	}

	mode := "production"
	if verbose {
		mode = "development"
	}
	log, err := logging.New(mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	tasks := task.NewManager(log)
	orch, err := pipeline.NewOrchestrator(cfg, tasks, log)
	if err != nil {
		return err
	}

	params := model.Params{
		SpeakerName:        genSpeaker,
		SpeakerAffiliation: genAffiliation,
		EpisodeTopic:       genTopic,
		TargetDurationSec:  genDuration,
		Language:           genLanguage,
	}

	id, err := orch.Submit(params, files)
	if err != nil {
		return err
	}

	return waitForTask(tasks, id)
}

// waitForTask polls the task until it settles, echoing stage changes
func waitForTask(tasks *task.Manager, id string) error {
	lastDetail := ""
	for {
		t, ok := tasks.Get(id)
		if !ok {
			return fmt.Errorf("task %s disappeared", id)
		}

		if verbose && t.Detail != lastDetail {
			fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", t.Progress.Percent, t.Detail)
			lastDetail = t.Detail
		}

		switch t.Status {
		case model.StatusCompleted:
			fmt.Printf("Episode: %s\n", t.Result.EpisodeTitle)
			fmt.Printf("Verdict: %s (%d issues)\n", t.Result.Verdict, t.Result.IssueCount)
			fmt.Printf("Words:   %d\n", t.Result.WordCount)
			if t.Result.ScriptPath != "" {
				fmt.Printf("Script:  %s\n", t.Result.ScriptPath)
			}
			return nil
		case model.StatusFailed:
			return fmt.Errorf("generation failed: %s", t.Error)
		}

		time.Sleep(500 * time.Millisecond)
	}
}
