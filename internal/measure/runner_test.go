package measure

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"zerocopy-bench/internal/collectors"
	"zerocopy-bench/internal/dataset"

	"github.com/sirupsen/logrus"
)

type fakeCollector struct {
	starts int
	stops  int
	closed bool
}

func (f *fakeCollector) Start() error {
	f.starts++
	return nil
}

func (f *fakeCollector) Stop() (collectors.Counts, error) {
	f.stops++
	return collectors.Counts{Cycles: 5000, CacheMisses: 42}, nil
}

func (f *fakeCollector) Close() error {
	f.closed = true
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig() Config {
	return Config{
		System:     "System: test",
		Sizes:      []int{64, 512},
		Threads:    []int{1, 2},
		Iterations: 20,
		Timeout:    30 * time.Second,
	}
}

func TestRunProducesValidBenchmark(t *testing.T) {
	fake := &fakeCollector{}
	runner, err := NewRunner(testConfig(), func() (collectors.Collector, error) { return fake, nil }, quietLogger())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	bench, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := bench.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if bench.System != "System: test" {
		t.Fatalf("unexpected system %q", bench.System)
	}

	trials := 2 * 2 * len(dataset.Strategies)
	if fake.starts != trials || fake.stops != trials {
		t.Fatalf("expected %d start/stop pairs, got %d/%d", trials, fake.starts, fake.stops)
	}
	if !fake.closed {
		t.Fatalf("collector not closed")
	}

	for _, threads := range bench.Threads {
		for _, strategy := range dataset.Strategies {
			for i := range bench.Sizes {
				if bench.Throughput[threads][strategy][i] <= 0 {
					t.Fatalf("non-positive throughput for threads=%d %s", threads, strategy)
				}
				if bench.Cycles[threads][strategy][i] != 5000 {
					t.Fatalf("unexpected cycles %v", bench.Cycles[threads][strategy][i])
				}
				if bench.LLCMisses[threads][strategy][i] != 42 {
					t.Fatalf("unexpected misses %v", bench.LLCMisses[threads][strategy][i])
				}
			}
		}
	}
	for _, size := range bench.Sizes {
		for _, strategy := range dataset.Strategies {
			for i := range bench.Threads {
				if bench.Latency[size][strategy][i] <= 0 {
					t.Fatalf("non-positive latency for size=%d %s", size, strategy)
				}
			}
		}
	}
}

func TestRunFallsBackWithoutCounters(t *testing.T) {
	cfg := testConfig()
	cfg.Sizes = []int{64}
	cfg.Threads = []int{1}
	failing := func() (collectors.Collector, error) { return nil, errors.New("perf_event_paranoid") }

	runner, err := NewRunner(cfg, failing, quietLogger())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	bench, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, strategy := range dataset.Strategies {
		if got := bench.Cycles[1][strategy][0]; got != 0 {
			t.Fatalf("expected zero cycles without counters, got %v", got)
		}
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	runner, err := NewRunner(testConfig(), nil, quietLogger())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runner.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewRunnerValidates(t *testing.T) {
	cfg := testConfig()
	cfg.Iterations = 0
	if _, err := NewRunner(cfg, nil, quietLogger()); err == nil {
		t.Fatalf("expected iterations error")
	}
	cfg = testConfig()
	cfg.Sizes = nil
	if _, err := NewRunner(cfg, nil, quietLogger()); err == nil {
		t.Fatalf("expected empty sizes error")
	}
}

func TestTrialDerivedMetrics(t *testing.T) {
	trial := Trial{Bytes: 1_000_000_000, Wall: 2 * time.Second, Mean: 500 * time.Millisecond}
	if got := trial.ThroughputGbps(); math.Abs(got-4.0) > 1e-9 {
		t.Fatalf("expected 4 Gbps, got %v", got)
	}
	if got := trial.LatencyMicros(1000); math.Abs(got-500.0) > 1e-9 {
		t.Fatalf("expected 500us, got %v", got)
	}
	if got := (Trial{}).ThroughputGbps(); got != 0 {
		t.Fatalf("expected 0 for zero wall time, got %v", got)
	}
}
