//go:build linux

package collectors

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"zerocopy-bench/internal/logging"

	"github.com/elastic/go-perf"
)

type eventState struct {
	value   uint64
	enabled time.Duration
	running time.Duration
}

type perfEvent struct {
	counter perf.HardwareCounter
	tid     int
	event   *perf.Event
}

// PerfCollector counts cpu-cycles and cache-misses for every thread of the
// current process. Threads spawned later are covered through inheritance.
type PerfCollector struct {
	events []perfEvent

	baseline map[int]eventState
	started  bool
	mutex    sync.Mutex
}

var perfCounters = []perf.HardwareCounter{
	perf.CPUCycles,
	perf.CacheMisses,
}

func NewPerfCollector() (Collector, error) {
	logger := logging.GetLogger()

	tids, err := processThreads()
	if err != nil {
		return nil, fmt.Errorf("failed to list process threads: %w", err)
	}

	collector := &PerfCollector{
		baseline: make(map[int]eventState),
	}

	for _, tid := range tids {
		for _, counter := range perfCounters {
			attr := &perf.Attr{}
			counter.Configure(attr)
			attr.Options.Inherit = true
			// Enable time tracking for multiplexing correction
			attr.CountFormat.Enabled = true
			attr.CountFormat.Running = true

			event, err := perf.Open(attr, tid, perf.AnyCPU, nil)
			if err != nil {
				// Threads may exit between listing and opening
				if _, statErr := os.Stat(fmt.Sprintf("/proc/self/task/%d", tid)); os.IsNotExist(statErr) {
					break
				}
				collector.Close()
				logger.WithFields(map[string]interface{}{
					"counter": counter.String(),
					"tid":     tid,
				}).WithError(err).Debug("Failed to open perf event")
				return nil, fmt.Errorf("failed to open %s for thread %d: %w", counter, tid, err)
			}
			collector.events = append(collector.events, perfEvent{counter: counter, tid: tid, event: event})
		}
	}

	if len(collector.events) == 0 {
		return nil, fmt.Errorf("no perf events opened")
	}

	for _, pe := range collector.events {
		if err := pe.event.Enable(); err != nil {
			collector.Close()
			return nil, fmt.Errorf("failed to enable perf event: %w", err)
		}
	}

	logger.WithField("events", len(collector.events)).Debug("Perf collector ready")
	return collector, nil
}

func processThreads() ([]int, error) {
	entries, err := os.ReadDir("/proc/self/task")
	if err != nil {
		return nil, err
	}
	tids := make([]int, 0, len(entries))
	for _, entry := range entries {
		tid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		tids = append(tids, tid)
	}
	return tids, nil
}

func (pc *PerfCollector) Start() error {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	for i, pe := range pc.events {
		count, err := pe.event.ReadCount()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", pe.counter, err)
		}
		pc.baseline[i] = eventState{
			value:   uint64(count.Value),
			enabled: count.Enabled,
			running: count.Running,
		}
	}
	pc.started = true
	return nil
}

// Stop returns the multiplexing-corrected counts since Start.
func (pc *PerfCollector) Stop() (Counts, error) {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	if !pc.started {
		return Counts{}, ErrNotStarted
	}
	pc.started = false

	sums := make(map[perf.HardwareCounter]uint64)
	for i, pe := range pc.events {
		count, err := pe.event.ReadCount()
		if err != nil {
			return Counts{}, fmt.Errorf("failed to read %s: %w", pe.counter, err)
		}
		last := pc.baseline[i]
		sums[pe.counter] += scaleDelta(last, eventState{
			value:   uint64(count.Value),
			enabled: count.Enabled,
			running: count.Running,
		})
	}

	return Counts{
		Cycles:      sums[perf.CPUCycles],
		CacheMisses: sums[perf.CacheMisses],
	}, nil
}

// scaleDelta applies the enabled/running ratio of the interval to the counter delta.
func scaleDelta(last, current eventState) uint64 {
	if current.value < last.value {
		return 0
	}
	deltaValue := current.value - last.value
	deltaEnabled := current.enabled - last.enabled
	deltaRunning := current.running - last.running

	if deltaRunning > 0 && deltaEnabled > 0 && deltaRunning != deltaEnabled {
		scaleFactor := float64(deltaEnabled) / float64(deltaRunning)
		return uint64(float64(deltaValue) * scaleFactor)
	}
	return deltaValue
}

func (pc *PerfCollector) Close() error {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	var firstErr error
	for _, pe := range pc.events {
		if pe.event == nil {
			continue
		}
		if err := pe.event.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	pc.events = nil
	return firstErr
}
