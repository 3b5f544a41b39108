package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raoulx24/backup-retention/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		wantErr bool
	}{
		{name: "text info", cfg: config.LoggingConfig{Level: "info", Format: "text"}},
		{name: "json debug", cfg: config.LoggingConfig{Level: "debug", Format: "json"}},
		{name: "empty uses defaults", cfg: config.LoggingConfig{}},
		{name: "invalid level", cfg: config.LoggingConfig{Level: "loud"}, wantErr: true},
		{name: "invalid format", cfg: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			l, closer, err := newWithWriter(tt.cfg, buf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer closer.Close()
			l.Info("hello")
			assert.Contains(t, buf.String(), "hello")
		})
	}
}

func TestNew_LevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	l, _, err := newWithWriter(config.LoggingConfig{Level: "warn"}, buf)
	require.NoError(t, err)

	l.Info("quiet")
	l.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestNew_JSONWithComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	l, _, err := newWithWriter(config.LoggingConfig{Format: "json"}, buf)
	require.NoError(t, err)

	With(l, "retention").Info("sweep done", "demoted", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "retention", entry["component"])
	assert.Equal(t, "sweep done", entry["msg"])
	assert.EqualValues(t, 2, entry["demoted"])
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	buf := &bytes.Buffer{}
	l, closer, err := newWithWriter(config.LoggingConfig{File: path, Rotation: config.RotationConfig{MaxSize: 1}}, buf)
	require.NoError(t, err)

	l.Info("to both")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}
