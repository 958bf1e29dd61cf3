package llm

import (
	"os"
	"strconv"
	"strings"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskIdea         TaskType = "idea"
	TaskConfirmation TaskType = "confirmation"
	TaskRefinement   TaskType = "refinement"
)

// ParseTaskType maps a wire stage name to a task, defaulting to TaskIdea.
func ParseTaskType(s string) TaskType {
	switch TaskType(strings.ToLower(strings.TrimSpace(s))) {
	case TaskConfirmation:
		return TaskConfirmation
	case TaskRefinement:
		return TaskRefinement
	default:
		return TaskIdea
	}
}

// Provider names a model backend.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Provider   Provider
	Endpoint   string
	Model      string
	APIKey     string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

var defaultModels = map[Provider]string{
	ProviderOllama: "llama3.2",
	ProviderOpenAI: "gpt-4o-2024-08-06",
	ProviderGemini: "gemini-2.5-flash",
}

var defaultEndpoints = map[Provider]string{
	ProviderOllama: "http://localhost:11434",
	ProviderOpenAI: "https://api.openai.com",
}

// DefaultConfig returns the local Ollama configuration.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    true,
		Provider:   ProviderOllama,
		Endpoint:   defaultEndpoints[ProviderOllama],
		Model:      defaultModels[ProviderOllama],
		TimeoutMs:  30000,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskIdea:         {Temperature: 0.4, MaxTokens: 2048, TimeoutMs: 45000},
			TaskConfirmation: {Temperature: 0.3, MaxTokens: 2048, TimeoutMs: 45000},
			TaskRefinement:   {Temperature: 0.3, MaxTokens: 2048, TimeoutMs: 45000},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()

	if v := os.Getenv("PURSUIT_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("PURSUIT_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("PURSUIT_LLM_PROVIDER"); v != "" {
		switch p := Provider(strings.ToLower(strings.TrimSpace(v))); p {
		case ProviderOllama, ProviderOpenAI, ProviderGemini:
			cfg.Provider = p
			cfg.Endpoint = defaultEndpoints[p]
			cfg.Model = defaultModels[p]
		}
	}
	if v := os.Getenv("PURSUIT_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("PURSUIT_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PURSUIT_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("PURSUIT_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		cfg.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	case ProviderGemini:
		cfg.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}

	applyTaskTimeoutEnv(&cfg, TaskIdea, "PURSUIT_LLM_IDEA_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskConfirmation, "PURSUIT_LLM_CONFIRMATION_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskRefinement, "PURSUIT_LLM_REFINEMENT_TIMEOUT_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
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
