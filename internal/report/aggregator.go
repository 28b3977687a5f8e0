package report

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/phenocam-tools/phenofetch/internal/archive"
)

// ClassTally holds per-class counts and byte totals.
type ClassTally struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Bytes     int64
}

// RunSummary is the final accounting for one run. For every class and for
// the run as a whole, Total equals Succeeded+Skipped+Failed.
type RunSummary struct {
	ArchiveID    string
	Range        archive.DateRange
	TotalDays    int
	DaysWithData int

	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Bytes     int64

	SizeUnknown  int
	ByClass      map[archive.FileClass]ClassTally
	ErrorsByKind map[ErrorKind]int

	MirrorFailed int

	LatencyP50 time.Duration
	LatencyP99 time.Duration

	StartedAt  time.Time
	FinishedAt time.Time
	Incomplete bool
}

// Duration returns the wall-clock length of the run.
func (s *RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Aggregator accumulates outcomes from concurrent workers.
type Aggregator struct {
	mu      sync.Mutex
	byClass map[archive.FileClass]*ClassTally
	errors  map[ErrorKind]int

	sizeUnknown  int
	mirrorFailed int
	latency      *hdrhistogram.Histogram

	startedAt time.Time
}

// NewAggregator creates an aggregator. Latency is tracked from 1ms to 10min.
func NewAggregator() *Aggregator {
	return &Aggregator{
		byClass:   make(map[archive.FileClass]*ClassTally),
		errors:    make(map[ErrorKind]int),
		latency:   hdrhistogram.New(1, int64(10*time.Minute/time.Millisecond), 3),
		startedAt: time.Now(),
	}
}

// Record folds one outcome into the tallies. Safe for concurrent use.
func (a *Aggregator) Record(o Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tally := a.byClass[o.Ref.Class]
	if tally == nil {
		tally = &ClassTally{}
		a.byClass[o.Ref.Class] = tally
	}

	tally.Total++
	switch o.Status {
	case StatusSucceeded:
		tally.Succeeded++
		if o.SizeKnown {
			tally.Bytes += o.ByteSize
		} else {
			a.sizeUnknown++
		}
	case StatusSkipped:
		tally.Skipped++
	case StatusFailed:
		tally.Failed++
		a.errors[o.Kind]++
	}

	if o.Duration > 0 {
		_ = a.latency.RecordValue(int64(o.Duration / time.Millisecond))
	}
}

// RecordMirrorFailure counts an upload that failed after a successful fetch.
// Mirror failures never change a file's fetch status.
func (a *Aggregator) RecordMirrorFailure() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mirrorFailed++
}

// Finalize closes out the run and produces the summary.
func (a *Aggregator) Finalize(archiveID string, dr archive.DateRange, totalDays, daysWithData int, incomplete bool) *RunSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := &RunSummary{
		ArchiveID:    archiveID,
		Range:        dr,
		TotalDays:    totalDays,
		DaysWithData: daysWithData,
		ByClass:      make(map[archive.FileClass]ClassTally, len(a.byClass)),
		ErrorsByKind: make(map[ErrorKind]int, len(a.errors)),
		SizeUnknown:  a.sizeUnknown,
		MirrorFailed: a.mirrorFailed,
		StartedAt:    a.startedAt,
		FinishedAt:   time.Now(),
		Incomplete:   incomplete,
	}

	for class, tally := range a.byClass {
		s.ByClass[class] = *tally
		s.Total += tally.Total
		s.Succeeded += tally.Succeeded
		s.Skipped += tally.Skipped
		s.Failed += tally.Failed
		s.Bytes += tally.Bytes
	}
	for kind, n := range a.errors {
		s.ErrorsByKind[kind] = n
	}

	if a.latency.TotalCount() > 0 {
		s.LatencyP50 = time.Duration(a.latency.ValueAtQuantile(50)) * time.Millisecond
		s.LatencyP99 = time.Duration(a.latency.ValueAtQuantile(99)) * time.Millisecond
	}

	return s
}
