package fetch

import (
	"log/slog"
	"time"

	"github.com/phenocam-tools/phenofetch/internal/report"
)

// Observer receives progress callbacks from the executor. Callbacks run on
// the executor goroutine after each batch drains, never concurrently.
type Observer interface {
	FileDone(o report.Outcome, done, total int)
	BatchDone(batch, totalBatches int)
}

type nopObserver struct{}

func (nopObserver) FileDone(report.Outcome, int, int) {}
func (nopObserver) BatchDone(int, int)                {}

// LogObserver reports progress through the structured logger. Individual
// failures are logged as they land; bulk progress only per batch.
type LogObserver struct {
	logger  *slog.Logger
	started time.Time
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{
		logger:  logger.With("component", "progress"),
		started: time.Now(),
	}
}

func (p *LogObserver) FileDone(o report.Outcome, done, total int) {
	if o.Status == report.StatusFailed {
		p.logger.Warn("File fetch failed.",
			"file", o.Ref.Filename,
			"kind", o.Kind.String(),
			"error", o.Detail)
	}
}

func (p *LogObserver) BatchDone(batch, totalBatches int) {
	elapsed := time.Since(p.started).Round(time.Second)
	p.logger.Info("Batch complete.",
		"batch", batch,
		"total_batches", totalBatches,
		"elapsed", elapsed.String())
}
