package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/plexlint/internal/config"
)

// defaultLogPath returns <data dir>/plexlint.log
func defaultLogPath() string {
	return filepath.Join(config.GetDataDir(), "plexlint.log")
}

// setupLogger creates a logger with the specified configuration.
//
// An empty logFile logs to the default log file and "-" logs to stderr.
// It returns the path to mention in messages and a function that closes the
// log file.
func setupLogger(logFile, logLevel string) (zerolog.Logger, string, func()) {
	// Parse log level
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if logFile == "" {
		logFile = defaultLogPath()
	}

	// Set up output
	var output io.Writer = os.Stderr
	closer := func() {}
	path := "stderr"
	if logFile != "-" {
		f, err := openLogFile(logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		} else {
			output = f
			closer = func() { _ = f.Close() }
			path = logFile
		}
	}

	// Create logger
	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger, path, closer
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
