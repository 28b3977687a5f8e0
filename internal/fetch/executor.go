package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phenocam-tools/phenofetch/internal/archive"
	"github.com/phenocam-tools/phenofetch/internal/report"
	"github.com/phenocam-tools/phenofetch/internal/storage"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36"

// Mirror uploads a fetched file to secondary storage.
type Mirror interface {
	Upload(ctx context.Context, ref archive.FileReference, body io.Reader, size int64) error
}

// Config controls the fetch executor.
type Config struct {
	Workers      int
	BatchSize    int
	BatchPause   time.Duration
	SkipExisting bool
}

// SetDefaults fills zero values with the standard settings.
func (c *Config) SetDefaults() {
	if c.Workers <= 0 {
		c.Workers = FallbackWorkers
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.BatchPause <= 0 {
		c.BatchPause = time.Second
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be at most %d, got %d", MaxWorkers, c.Workers)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	return nil
}

// Executor fetches the files of a resolved listing in bounded batches.
type Executor struct {
	cfg      Config
	client   *http.Client
	store    *storage.Store
	mirror   Mirror
	observer Observer
	logger   *slog.Logger
}

// NewExecutor wires an executor. mirror and observer may be nil.
func NewExecutor(cfg Config, client *http.Client, store *storage.Store, mirror Mirror, observer Observer, logger *slog.Logger) (*Executor, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Executor{
		cfg:      cfg,
		client:   client,
		store:    store,
		mirror:   mirror,
		observer: observer,
		logger:   logger.With("component", "executor"),
	}, nil
}

// Estimate is the dry-run result of probing a listing.
type Estimate struct {
	Files        int
	Bytes        int64
	SizeUnknown  int
	Failed       int
	ByClass      map[archive.FileClass]int64
	ErrorsByKind map[report.ErrorKind]int
	Incomplete   bool
}

// EstimateSize probes every file with HEAD requests and sums the sizes.
// Nothing is written to disk. Probes run through the same batch loop as
// Download, so batch size, the inter-batch pause and the observer all
// apply. A cancelled context yields a partial estimate marked incomplete.
func (e *Executor) EstimateSize(ctx context.Context, listing *archive.Listing, prober Prober) *Estimate {
	summary := e.run(ctx, listing, "estimate", func(ctx context.Context, ref archive.FileReference) report.Outcome {
		started := time.Now()
		size, err := prober.Probe(ctx, ref)
		if err != nil {
			e.logger.Debug("Size probe failed.", "file", ref.Filename, "error", err)
			return report.Outcome{
				Ref:      ref,
				Status:   report.StatusFailed,
				Kind:     Classify(err),
				Detail:   err.Error(),
				Duration: time.Since(started),
			}
		}
		return report.Outcome{
			Ref:       ref,
			Status:    report.StatusSucceeded,
			ByteSize:  size.Bytes,
			SizeKnown: size.Known,
			Duration:  time.Since(started),
		}
	})

	est := &Estimate{
		Files:        summary.Total,
		Bytes:        summary.Bytes,
		SizeUnknown:  summary.SizeUnknown,
		Failed:       summary.Failed,
		ByClass:      make(map[archive.FileClass]int64),
		ErrorsByKind: summary.ErrorsByKind,
		Incomplete:   summary.Incomplete,
	}
	for class, tally := range summary.ByClass {
		est.ByClass[class] = tally.Bytes
	}
	return est
}

// Download fetches every file in the listing. Files are processed in
// batches of cfg.BatchSize with at most cfg.Workers in flight at once and
// a pause between batches. A cancelled context stops the run after the
// current batch and marks the summary incomplete.
func (e *Executor) Download(ctx context.Context, listing *archive.Listing) (*report.RunSummary, error) {
	if err := e.store.Prepare(); err != nil {
		return nil, err
	}

	summary := e.run(ctx, listing, "download", e.fetchOne)
	e.logger.Info("Download finished.",
		"succeeded", summary.Succeeded,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"bytes", summary.Bytes,
		"incomplete", summary.Incomplete)
	return summary, nil
}

// run drives the shared batch loop: sequential batches of cfg.BatchSize
// with at most cfg.Workers operations in flight inside a batch and a pause
// between batches.
func (e *Executor) run(ctx context.Context, listing *archive.Listing, op string, work func(context.Context, archive.FileReference) report.Outcome) *report.RunSummary {
	agg := report.NewAggregator()
	refs := listing.References
	totalBatches := (len(refs) + e.cfg.BatchSize - 1) / e.cfg.BatchSize
	done := 0
	incomplete := false

	e.logger.Info("Starting run.",
		"op", op,
		"files", len(refs),
		"batches", totalBatches,
		"workers", e.cfg.Workers)

batches:
	for b := 0; b < totalBatches; b++ {
		if ctx.Err() != nil {
			incomplete = true
			break
		}

		start := b * e.cfg.BatchSize
		end := min(start+e.cfg.BatchSize, len(refs))
		batch := refs[start:end]

		outcomes := make([]report.Outcome, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.cfg.Workers)
		for i, ref := range batch {
			g.Go(func() error {
				outcomes[i] = work(gctx, ref)
				return nil
			})
		}
		g.Wait()

		// Outcomes are recorded in submission order once the batch has
		// drained, so summaries are stable across runs.
		for _, o := range outcomes {
			agg.Record(o)
			if o.Status == report.StatusSucceeded && o.Kind == report.KindMirror {
				agg.RecordMirrorFailure()
			}
			done++
			e.observer.FileDone(o, done, len(refs))
		}
		e.observer.BatchDone(b+1, totalBatches)

		if ctx.Err() != nil {
			incomplete = true
			break
		}

		if b+1 < totalBatches {
			select {
			case <-ctx.Done():
				incomplete = true
				break batches
			case <-time.After(e.cfg.BatchPause):
			}
		}
	}

	return agg.Finalize(listing.ArchiveID, listing.Range, listing.TotalDays, listing.DaysWithData, incomplete)
}

func (e *Executor) fetchOne(ctx context.Context, ref archive.FileReference) report.Outcome {
	if e.cfg.SkipExisting && e.store.Exists(ref) {
		return report.Outcome{Ref: ref, Status: report.StatusSkipped}
	}

	started := time.Now()
	size, known, err := e.fetchBody(ctx, ref)
	if err != nil {
		return report.Outcome{
			Ref:      ref,
			Status:   report.StatusFailed,
			Kind:     Classify(err),
			Detail:   err.Error(),
			Duration: time.Since(started),
		}
	}

	outcome := report.Outcome{
		Ref:       ref,
		Status:    report.StatusSucceeded,
		ByteSize:  size,
		SizeKnown: known,
		Duration:  time.Since(started),
	}

	if e.mirror != nil {
		if err := e.uploadMirror(ctx, ref, size); err != nil {
			// The local fetch already succeeded. Mirror trouble is
			// surfaced separately and never flips the file to failed.
			e.logger.Warn("Mirror upload failed.", "file", ref.Filename, "error", err)
			outcome.Kind = report.KindMirror
			outcome.Detail = err.Error()
		}
	}
	return outcome
}

func (e *Executor) fetchBody(ctx context.Context, ref archive.FileReference) (int64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.RemoteURL, nil)
	if err != nil {
		return 0, false, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, false, &HTTPError{Status: resp.StatusCode, URL: ref.RemoteURL}
	}

	n, err := e.store.Materialize(ref, resp.Body)
	if err != nil {
		return 0, false, &localIOError{err: err}
	}

	// Metadata responses have no Content-Length; the copied byte count
	// still lands on disk but is excluded from the byte totals.
	known := resp.ContentLength >= 0 || ref.Class != archive.ClassMetadata
	return n, known, nil
}

func (e *Executor) uploadMirror(ctx context.Context, ref archive.FileReference, size int64) error {
	f, err := e.store.Open(ref)
	if err != nil {
		return err
	}
	defer f.Close()
	return e.mirror.Upload(ctx, ref, f, size)
}

// localIOError marks a failure writing to the output directory.
type localIOError struct {
	err error
}

func (e *localIOError) Error() string { return e.err.Error() }
func (e *localIOError) Unwrap() error { return e.err }
