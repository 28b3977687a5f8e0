package fetch

import (
	"log/slog"
	"runtime"

	"github.com/shirou/gopsutil/v4/mem"
)

const (
	// MaxWorkers caps the advised concurrency regardless of host size.
	MaxWorkers = 32
	// FallbackWorkers is used when host memory cannot be read.
	FallbackWorkers = 8
)

// Advisor picks a worker count for the fetch executor.
type Advisor interface {
	Workers() int
}

// Fixed always advises the given worker count.
type Fixed int

func (f Fixed) Workers() int { return int(f) }

// HostAdvisor sizes the pool from CPU count and available memory. Small
// hosts get fewer workers than cores so the fetch does not starve the
// rest of the machine.
type HostAdvisor struct {
	logger *slog.Logger
}

func NewHostAdvisor(logger *slog.Logger) *HostAdvisor {
	return &HostAdvisor{logger: logger.With("component", "advisor")}
}

func (a *HostAdvisor) Workers() int {
	vm, err := mem.VirtualMemory()
	if err != nil {
		a.logger.Warn("Could not read host memory, using fallback worker count.", "error", err, "workers", FallbackWorkers)
		return FallbackWorkers
	}

	cpus := runtime.NumCPU()
	workers := advise(cpus, vm.Total)
	a.logger.Debug("Sized worker pool from host resources.",
		"cpus", cpus,
		"memory_gb", float64(vm.Total)/(1<<30),
		"workers", workers)
	return workers
}

func advise(cpus int, totalMem uint64) int {
	const gb = 1 << 30

	var workers int
	switch {
	case totalMem < 4*gb:
		workers = max(2, cpus/2)
	case totalMem < 8*gb:
		workers = max(4, cpus)
	default:
		workers = max(8, cpus*2)
	}

	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	return workers
}
