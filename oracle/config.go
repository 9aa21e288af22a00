package oracle

import (
	"os"
	"strconv"
	"strings"
)

// Task identifies which estimation the oracle is asked to perform.
type Task string

const (
	TaskBMR      Task = "bmr"
	TaskActivity Task = "activity"
	TaskSession  Task = "session"
)

// TaskConfig holds per-task request parameters.
type TaskConfig struct {
	MaxTokens int
	TimeoutMs int // overrides global if > 0
}

// Config holds all configuration for the estimation oracle client.
type Config struct {
	Enabled    bool
	APIKey     string
	BaseURL    string
	Model      string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[Task]TaskConfig
}

// DefaultConfig returns a Config with sensible defaults. The oracle is
// enabled by default but stays unusable until an API key is supplied.
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		BaseURL:    "https://api.openai.com",
		Model:      "gpt-4o-mini",
		TimeoutMs:  15000,
		MaxRetries: 1,
		Tasks: map[Task]TaskConfig{
			TaskBMR:      {MaxTokens: 400, TimeoutMs: 8000},
			TaskActivity: {MaxTokens: 600, TimeoutMs: 10000},
			TaskSession:  {MaxTokens: 400, TimeoutMs: 10000},
		},
	}
}

// LoadConfig reads oracle configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("ORACLE_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	cfg.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if v := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("ORACLE_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("ORACLE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("ORACLE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	applyTaskTimeoutEnv(&cfg, TaskBMR, "ORACLE_BMR_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskActivity, "ORACLE_ACTIVITY_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskSession, "ORACLE_SESSION_TIMEOUT_MS")

	return cfg
}

// Usable reports whether requests can be sent at all.
func (c Config) Usable() bool {
	return c.Enabled && c.APIKey != ""
}

// TaskTimeout returns the effective timeout for a given task.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c Config) TaskTimeout(task Task) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *Config, task Task, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
