package report

import (
	"time"

	"github.com/phenocam-tools/phenofetch/internal/archive"
)

// Status is the terminal state of one file fetch.
type Status int

const (
	StatusSucceeded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrorKind classifies a failed fetch for the error summary.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindTimeout
	KindConnection
	KindHTTP
	KindNotFound
	KindLocalIO
	KindMirror
	KindCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindHTTP:
		return "http"
	case KindNotFound:
		return "not_found"
	case KindLocalIO:
		return "local_io"
	case KindMirror:
		return "mirror"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome records what happened to one file reference.
type Outcome struct {
	Ref       archive.FileReference
	Status    Status
	ByteSize  int64
	SizeKnown bool
	Kind      ErrorKind
	Detail    string
	Duration  time.Duration
}
