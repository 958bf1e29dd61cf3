package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_LocalOllama(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.Endpoint)
	assert.Equal(t, 45000, cfg.TaskTimeout(TaskIdea))
}

func TestLoadConfig_TaskTimeoutOverrides(t *testing.T) {
	t.Setenv("PURSUIT_LLM_TIMEOUT_MS", "9000")
	t.Setenv("PURSUIT_LLM_IDEA_TIMEOUT_MS", "15000")
	t.Setenv("PURSUIT_LLM_REFINEMENT_TIMEOUT_MS", "7000")

	cfg := LoadConfig()

	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 15000, cfg.TaskTimeout(TaskIdea))
	assert.Equal(t, 7000, cfg.TaskTimeout(TaskRefinement))
	assert.Equal(t, 45000, cfg.TaskTimeout(TaskConfirmation))
}

func TestLoadConfig_InvalidTaskTimeoutOverrideIgnored(t *testing.T) {
	t.Setenv("PURSUIT_LLM_IDEA_TIMEOUT_MS", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, 45000, cfg.TaskTimeout(TaskIdea))
}

func TestLoadConfig_ProviderSelectsDefaultsAndKey(t *testing.T) {
	t.Setenv("PURSUIT_LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", " sk-test ")

	cfg := LoadConfig()

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "https://api.openai.com", cfg.Endpoint)
	assert.Equal(t, "gpt-4o-2024-08-06", cfg.Model)
	assert.Equal(t, "sk-test", cfg.APIKey)
}

func TestLoadConfig_UnknownProviderIgnored(t *testing.T) {
	t.Setenv("PURSUIT_LLM_PROVIDER", "mystery")
	t.Setenv("PURSUIT_LLM_ENDPOINT", "http://gpu-box:11434/")

	cfg := LoadConfig()

	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "http://gpu-box:11434", cfg.Endpoint)
}

func TestParseTaskType(t *testing.T) {
	assert.Equal(t, TaskConfirmation, ParseTaskType("Confirmation"))
	assert.Equal(t, TaskRefinement, ParseTaskType("refinement"))
	assert.Equal(t, TaskIdea, ParseTaskType(""))
	assert.Equal(t, TaskIdea, ParseTaskType("other"))
}
