package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNewFromOptions_WritesFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	log, err := NewFromOptions(Options{Level: "info", Format: "json", Outputs: []string{path}})
	require.NoError(t, err)

	log.WithFields(map[string]interface{}{"runId": "r-1"}).
		Info("classification started", map[string]interface{}{"text": "Journal of Foo", "index": 1})
	log.Debug("dropped at info level", nil)
	log.WithError(errors.New("boom")).Error("classification failed", map[string]interface{}{"attempt": 3})
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, `"msg":"classification started"`)
	assert.Contains(t, content, `"runId":"r-1"`)
	assert.Contains(t, content, `"text":"Journal of Foo"`)
	assert.Contains(t, content, `"error":"boom"`)
	assert.NotContains(t, content, "dropped at info level")
	assert.Equal(t, 2, strings.Count(content, "\n"))
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	log.Info("ignored", map[string]interface{}{"k": "v"})
	assert.NotNil(t, log.With(nil))
}
