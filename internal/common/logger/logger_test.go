package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.With(map[string]interface{}{"action": "ask-question"}).
		WithError(errors.New("boom")).
		Warn("request failed", map[string]interface{}{"status": 502})
	log.Debug("debug line", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	ctx := entries[0].ContextMap()
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "ask-question", ctx["action"])
	assert.Equal(t, "boom", ctx["error"])
	assert.EqualValues(t, 502, ctx["status"])
	assert.Empty(t, entries[1].Context)
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kbchat.log")
	log := NewStructured("info", "json", path)

	log.Info("hello", map[string]interface{}{"k": "v"})
	log.Debug("hidden", nil)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.WithFields(nil).Error("nothing", map[string]interface{}{"a": 1})
	})
}
