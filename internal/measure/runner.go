package measure

import (
	"context"
	"fmt"
	"time"

	"zerocopy-bench/internal/collectors"
	"zerocopy-bench/internal/dataset"
	"zerocopy-bench/internal/transfer"

	"github.com/sirupsen/logrus"
)

type Config struct {
	System     string
	Address    string
	Sizes      []int
	Threads    []int
	Strategies []dataset.Strategy
	Iterations int
	// Timeout bounds a single trial; zero means no limit.
	Timeout time.Duration
}

// Trial is the outcome of one (threads, size, strategy) transfer.
type Trial struct {
	Threads  int
	Size     int
	Strategy dataset.Strategy
	Bytes    int64
	Wall     time.Duration
	Mean     time.Duration
	Counts   collectors.Counts
}

// ThroughputGbps is bytes*8 over the slowest connection's elapsed time.
func (t Trial) ThroughputGbps() float64 {
	if t.Wall <= 0 {
		return 0
	}
	return float64(t.Bytes) * 8 / t.Wall.Seconds() / 1e9
}

// LatencyMicros is the mean per-connection elapsed time divided by the message count.
func (t Trial) LatencyMicros(iterations int) float64 {
	if iterations <= 0 {
		return 0
	}
	return float64(t.Mean) / float64(time.Microsecond) / float64(iterations)
}

type Runner struct {
	config   Config
	counters collectors.Factory
	logger   *logrus.Logger
}

func NewRunner(cfg Config, counters collectors.Factory, logger *logrus.Logger) (*Runner, error) {
	if len(cfg.Sizes) == 0 || len(cfg.Threads) == 0 {
		return nil, fmt.Errorf("sizes and threads must not be empty")
	}
	if cfg.Iterations <= 0 {
		return nil, fmt.Errorf("iterations must be greater than 0, got %d", cfg.Iterations)
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = dataset.Strategies
	}
	if cfg.Address == "" {
		cfg.Address = "127.0.0.1:0"
	}
	if counters == nil {
		counters = collectors.NewNopCollector
	}
	return &Runner{config: cfg, counters: counters, logger: logger}, nil
}

// Run sweeps every thread count, message size and strategy over loopback and
// returns the tabulated benchmark.
func (r *Runner) Run(ctx context.Context) (*dataset.Benchmark, error) {
	cfg := r.config

	collector, err := r.counters()
	if err != nil {
		r.logger.WithError(err).Warn("Hardware counters unavailable, recording zero cycles and cache misses")
		collector = collectors.NopCollector{}
	}
	defer collector.Close()

	bench := dataset.NewBenchmark(cfg.System, cfg.Sizes, cfg.Threads)
	for _, threads := range cfg.Threads {
		for _, strategy := range cfg.Strategies {
			bench.Throughput.Set(threads, strategy, make([]float64, len(cfg.Sizes)))
			bench.LLCMisses.Set(threads, strategy, make([]float64, len(cfg.Sizes)))
			bench.Cycles.Set(threads, strategy, make([]float64, len(cfg.Sizes)))
		}
	}
	for _, size := range cfg.Sizes {
		for _, strategy := range cfg.Strategies {
			bench.Latency.Set(size, strategy, make([]float64, len(cfg.Threads)))
		}
	}

	for ti, threads := range cfg.Threads {
		for si, size := range cfg.Sizes {
			for _, strategy := range cfg.Strategies {
				if err := ctx.Err(); err != nil {
					return nil, err
				}

				trial, err := r.runTrial(ctx, collector, threads, size, strategy)
				if err != nil {
					return nil, fmt.Errorf("trial threads=%d size=%d strategy=%s: %w", threads, size, strategy, err)
				}

				bench.Throughput[threads][strategy][si] = trial.ThroughputGbps()
				bench.Latency[size][strategy][ti] = trial.LatencyMicros(cfg.Iterations)
				bench.LLCMisses[threads][strategy][si] = float64(trial.Counts.CacheMisses)
				bench.Cycles[threads][strategy][si] = float64(trial.Counts.Cycles)

				r.logger.WithFields(logrus.Fields{
					"threads":    threads,
					"size":       size,
					"strategy":   strategy,
					"gbps":       fmt.Sprintf("%.3f", trial.ThroughputGbps()),
					"latency_us": fmt.Sprintf("%.3f", trial.LatencyMicros(cfg.Iterations)),
					"cycles":     trial.Counts.Cycles,
				}).Info("Trial complete")
			}
		}
	}

	if err := bench.Validate(); err != nil {
		return nil, err
	}
	return bench, nil
}

func (r *Runner) runTrial(ctx context.Context, collector collectors.Collector, threads, size int, strategy dataset.Strategy) (Trial, error) {
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}
	trialCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	srv, err := transfer.NewServer(transfer.ServerConfig{
		Address:    r.config.Address,
		Strategy:   strategy,
		Size:       size,
		Iterations: r.config.Iterations,
	}, r.logger)
	if err != nil {
		return Trial{}, err
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(trialCtx) }()

	if err := collector.Start(); err != nil {
		srv.Close()
		<-serveErr
		return Trial{}, fmt.Errorf("failed to start counters: %w", err)
	}
	result, clientErr := transfer.RunClient(trialCtx, srv.Addr().String(), threads, size)
	counts, counterErr := collector.Stop()

	stopServer()
	if err := <-serveErr; err != nil && clientErr == nil {
		return Trial{}, err
	}
	if clientErr != nil {
		return Trial{}, clientErr
	}
	if counterErr != nil {
		return Trial{}, fmt.Errorf("failed to read counters: %w", counterErr)
	}

	return Trial{
		Threads:  threads,
		Size:     size,
		Strategy: strategy,
		Bytes:    result.Bytes,
		Wall:     result.Wall(),
		Mean:     result.MeanElapsed(),
		Counts:   counts,
	}, nil
}
