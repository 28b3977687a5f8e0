package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// New initializes a logger at the given level that writes to stderr and,
// when logFileName is non-empty, to a log file inside outputDir as well.
func New(level string, outputDir, logFileName string) (*slog.Logger, *os.File) {
	var logWriter io.Writer = os.Stderr
	var logFile *os.File

	handlerOpts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	if logFileName != "" {
		logPath := filepath.Join(outputDir, logFileName)
		var err error
		logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			slog.Error("Failed to open log file, continuing with stderr only", "error", err, "path", logPath)
		} else {
			logWriter = io.MultiWriter(os.Stderr, logFile)
		}
	}

	logger := slog.New(slog.NewTextHandler(logWriter, handlerOpts))
	slog.SetDefault(logger)

	return logger, logFile
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
