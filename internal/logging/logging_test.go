package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pagebuilder/internal/logging"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := logging.New(logging.Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagebuilder.log")
	logger, level, err := logging.New(logging.Options{Level: "warn", File: path})
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level.Level())

	logger.Info("dropped")
	logger.Warn("kept", zap.String("page", "p1"))

	level.SetLevel(zapcore.InfoLevel)
	logger.Info("after level change")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "p1", entry["page"])
	assert.Equal(t, "warn", entry["level"])
	assert.Contains(t, lines[1], "after level change")
}
