package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "INFO", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown", zap.String("task", "idea"))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "idea", entry["task"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_DefaultsToWarnConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{}, &buf)
	require.NoError(t, err)

	log.Info("quiet")
	log.Warn("fallback used")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "fallback used")
}

func TestNew_RejectsBadSettings(t *testing.T) {
	_, err := New(Config{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = New(Config{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
