package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Infow("info", map[string]any{"route": "A"})
	l.Warnf("warn")
	l.Errorf("error")
}

func TestInfowFields(t *testing.T) {
	require.NoError(t, Configure(Options{Level: "info"}))
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "analyzer")
	l.Infow("analysis done", map[string]any{"routes": 5})
	l.Debugf("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "analyzer", entry["component"])
	assert.Equal(t, "analysis done", entry["message"])
	assert.EqualValues(t, 5, entry["routes"])
}

func TestConfigure(t *testing.T) {
	t.Cleanup(func() {
		_ = Close()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})
	assert.Error(t, Configure(Options{Level: "loud"}))

	path := filepath.Join(t.TempDir(), "logs", "routegap.log")
	require.NoError(t, Configure(Options{Level: "debug", File: path, MaxSizeMB: 1}))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	NewZerologLogger("file").Infof("to file")
	require.NoError(t, Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
