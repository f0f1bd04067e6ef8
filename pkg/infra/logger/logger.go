package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const fileBufferSize = 32 * 1024

type Config struct {
	// Level is a logrus level name. LOG_LEVEL wins when set.
	Level string
	// File enables an async file sink. Entries are mirrored to Console.
	File string
	// Console receives entries; defaults to stdout.
	Console io.Writer
}

// NewLogger builds the JSON logger used across the service. The returned
// close function flushes the file sink, if any.
func NewLogger(cfg Config) (*logrus.Logger, func(), error) {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	logger.SetLevel(parseLevel(cfg.Level))

	console := cfg.Console
	if console == nil {
		console = os.Stdout
	}

	if cfg.File == "" {
		logger.SetOutput(console)
		return logger, func() {}, nil
	}

	logFile := filepath.Clean(cfg.File)
	if dir := filepath.Dir(logFile); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	asyncWriter, err := NewAsyncFileWriter(logFile, fileBufferSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}

	logger.SetOutput(asyncWriter)
	logger.AddHook(NewConsoleHook(console))

	return logger, asyncWriter.Close, nil
}

func parseLevel(configured string) logrus.Level {
	name := os.Getenv("LOG_LEVEL")
	if name == "" {
		name = configured
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
