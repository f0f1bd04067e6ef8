package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Console(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer

	logger, closeFn, err := NewLogger(Config{Level: "debug", Console: &buf})
	require.NoError(t, err)
	defer closeFn()

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("address", "0xabc").Info("analysed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "analysed", entry["msg"])
	assert.Equal(t, "0xabc", entry["address"])
	assert.Contains(t, entry, "time")
}

func TestNewLogger_EnvLevelWins(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	logger, _, err := NewLogger(Config{Level: "debug", Console: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
}

func TestNewLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	logger, _, err := NewLogger(Config{Level: "chatty", Console: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNewLogger_FileSink(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "logs", "qscore.log")
	var console bytes.Buffer

	logger, closeFn, err := NewLogger(Config{File: path, Console: &console})
	require.NoError(t, err)

	logger.Info("first")
	logger.Info("second")
	closeFn()
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), `"msg":"second"`)
	assert.Contains(t, console.String(), `"msg":"first"`)
}
