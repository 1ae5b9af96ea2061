package collectors

import (
	"errors"
)

// Counts holds hardware counter totals for one measured interval.
type Counts struct {
	Cycles      uint64
	CacheMisses uint64
}

// Collector measures hardware counters between Start and Stop.
type Collector interface {
	Start() error
	Stop() (Counts, error)
	Close() error
}

// Factory opens a collector for the current process.
type Factory func() (Collector, error)

var ErrNotStarted = errors.New("collector not started")

// NopCollector reports zero counts. It stands in when perf events are unavailable.
type NopCollector struct{}

func (NopCollector) Start() error          { return nil }
func (NopCollector) Stop() (Counts, error) { return Counts{}, nil }
func (NopCollector) Close() error          { return nil }

func NewNopCollector() (Collector, error) {
	return NopCollector{}, nil
}
