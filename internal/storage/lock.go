package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = ".phenofetch.lock"

// RunLock guards an output directory against concurrent downloads into
// the same tree.
type RunLock struct {
	lock   *flock.Flock
	logger *slog.Logger
}

// AcquireRunLock creates the output directory and takes an exclusive file
// lock inside it. It returns an error if another instance holds the lock.
func AcquireRunLock(outputDir string, logger *slog.Logger) (*RunLock, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create output directory %s: %w", outputDir, err)
	}

	lockPath := filepath.Join(outputDir, lockFileName)
	fileLock := flock.New(lockPath)

	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("could not acquire file lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("output directory %s is locked by another phenofetch instance", outputDir)
	}

	logger.Info("Acquired file lock.", "path", lockPath)

	return &RunLock{lock: fileLock, logger: logger}, nil
}

// Release drops the lock. Safe to call once at the end of a run.
func (l *RunLock) Release() {
	if err := l.lock.Unlock(); err != nil {
		l.logger.Warn("Failed to release file lock.", "error", err)
	}
}
