package model

import "time"

// Config is the full runtime configuration tree
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Chunking    ChunkingConfig    `yaml:"chunking" mapstructure:"chunking"`
	Script      ScriptConfig      `yaml:"script" mapstructure:"script"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Tasks       TaskConfig        `yaml:"tasks" mapstructure:"tasks"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// LLMConfig configures the text completion provider
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`

	MaxTokens  int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxRetries int     `yaml:"max_retries" mapstructure:"max_retries"` // Decode repair attempts after the first call
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst  int     `yaml:"rate_burst" mapstructure:"rate_burst"`

	// Per-stage request timeouts. Generation latency dominates the
	// pipeline, so these are generous by default.
	ExtractTimeout time.Duration `yaml:"extract_timeout" mapstructure:"extract_timeout"`
	MergeTimeout   time.Duration `yaml:"merge_timeout" mapstructure:"merge_timeout"`
	OutlineTimeout time.Duration `yaml:"outline_timeout" mapstructure:"outline_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	VerifyTimeout  time.Duration `yaml:"verify_timeout" mapstructure:"verify_timeout"`

	// Proxy settings
	HTTPProxy  string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// ChunkingConfig bounds chunk sizes and coverage expectations
type ChunkingConfig struct {
	MinChars    int     `yaml:"min_chars" mapstructure:"min_chars"`
	MaxChars    int     `yaml:"max_chars" mapstructure:"max_chars"`
	OverlapHint int     `yaml:"overlap_hint" mapstructure:"overlap_hint"`
	MinCoverage float64 `yaml:"min_coverage" mapstructure:"min_coverage"` // Below this, a coverage warning is raised
}

// ScriptConfig controls narration length arithmetic
type ScriptConfig struct {
	CharsPerSecond     float64 `yaml:"chars_per_second" mapstructure:"chars_per_second"`
	DefaultDurationSec int     `yaml:"default_duration_sec" mapstructure:"default_duration_sec"`
	IntroOutroSec      int     `yaml:"intro_outro_sec" mapstructure:"intro_outro_sec"` // Allowance taken off the top for intro/outro
	MinBodySec         int     `yaml:"min_body_sec" mapstructure:"min_body_sec"`
}

// ConcurrencyConfig bounds parallel generation calls
type ConcurrencyConfig struct {
	ExtractionWorkers int `yaml:"extraction_workers" mapstructure:"extraction_workers"`
}

// CacheConfig configures the generation response cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// TaskConfig controls task retention
type TaskConfig struct {
	MaxAge        time.Duration `yaml:"max_age" mapstructure:"max_age"`
	SweepInterval time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	MaxFiles int    `yaml:"max_files" mapstructure:"max_files"`
}

// OutputConfig controls artifact export
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "", // Disabled until configured
			MaxTokens:      4000,
			MaxRetries:     2,
			RatePerSec:     2,
			RateBurst:      5,
			ExtractTimeout: 90 * time.Second,
			MergeTimeout:   2 * time.Minute,
			OutlineTimeout: 2 * time.Minute,
			WriteTimeout:   3 * time.Minute,
			VerifyTimeout:  3 * time.Minute,
		},
		Chunking: ChunkingConfig{
			MinChars:    800,
			MaxChars:    1500,
			OverlapHint: 150,
			MinCoverage: 0.95,
		},
		Script: ScriptConfig{
			CharsPerSecond:     4.5,
			DefaultDurationSec: 150,
			IntroOutroSec:      30,
			MinBodySec:         90,
		},
		Concurrency: ConcurrencyConfig{
			ExtractionWorkers: 5,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Tasks: TaskConfig{
			MaxAge:        24 * time.Hour,
			SweepInterval: time.Hour,
		},
		Server: ServerConfig{
			Addr:     ":8080",
			MaxFiles: 10,
		},
		Output: OutputConfig{
			Dir: "output",
		},
	}
}
