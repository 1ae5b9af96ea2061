// Package efficiency derives the cycles-per-byte metric from raw cycle counts.
//
// Two conventions exist in the recorded runs: total bytes computed from a
// fixed per-connection iteration count, or implied by the observed throughput
// over a fixed observation window. Both are kept as explicit modes.
package efficiency

import (
	"fmt"
	"time"

	"zerocopy-bench/internal/dataset"
)

type Mode string

const (
	ModeIterations Mode = "iterations"
	ModeThroughput Mode = "throughput"
)

const (
	DefaultIterations = 1000
	DefaultDuration   = 10 * time.Second
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeIterations:
		return ModeIterations, nil
	case ModeThroughput:
		return ModeThroughput, nil
	}
	return "", fmt.Errorf("unknown derivation mode %q (expected %q or %q)", s, ModeIterations, ModeThroughput)
}

type Options struct {
	Mode       Mode
	Iterations int
	Duration   time.Duration
}

func DefaultOptions() Options {
	return Options{
		Mode:       ModeIterations,
		Iterations: DefaultIterations,
		Duration:   DefaultDuration,
	}
}

// DerivationError reports a zero total byte count in iteration mode.
type DerivationError struct {
	Size       int
	Threads    int
	Iterations int
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("cannot derive cycles per byte: zero bytes transferred (size=%d threads=%d iterations=%d)",
		e.Size, e.Threads, e.Iterations)
}

// ByIterations computes cycles / (size * threads * iterations) for each size.
func ByIterations(cycles []float64, sizes []int, threads, iterations int) ([]float64, error) {
	if len(cycles) != len(sizes) {
		return nil, fmt.Errorf("cycles has %d values for %d sizes", len(cycles), len(sizes))
	}

	cpb := make([]float64, len(cycles))
	for i, c := range cycles {
		totalBytes := float64(sizes[i]) * float64(threads) * float64(iterations)
		if totalBytes == 0 {
			return nil, &DerivationError{Size: sizes[i], Threads: threads, Iterations: iterations}
		}
		cpb[i] = c / totalBytes
	}
	return cpb, nil
}

// ByThroughput computes cycles over the bytes implied by throughputGbps
// sustained for duration. Entries with zero throughput yield 0; a
// non-positive duration is an error.
func ByThroughput(cycles, throughputGbps []float64, duration time.Duration) ([]float64, error) {
	if len(cycles) != len(throughputGbps) {
		return nil, fmt.Errorf("cycles has %d values for %d throughput values", len(cycles), len(throughputGbps))
	}
	if duration <= 0 {
		return nil, fmt.Errorf("cannot derive cycles per byte over a non-positive duration %v", duration)
	}

	cpb := make([]float64, len(cycles))
	for i, c := range cycles {
		gbps := throughputGbps[i]
		if gbps <= 0 {
			continue
		}
		totalBytes := gbps * 1e9 * duration.Seconds() / 8.0
		cpb[i] = c / totalBytes
	}
	return cpb, nil
}

// Derive builds the cycles-per-byte table keyed by thread count.
func Derive(b *dataset.Benchmark, opts Options) (dataset.Table, error) {
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}

	out := make(dataset.Table, len(b.Threads))
	for _, threads := range b.Threads {
		for _, strategy := range dataset.Strategies {
			cycles, err := b.Cycles.Values(dataset.Cycles, "threads", threads, strategy, len(b.Sizes))
			if err != nil {
				return nil, err
			}

			var cpb []float64
			switch mode {
			case ModeThroughput:
				tp, err := b.Throughput.Values(dataset.Throughput, "threads", threads, strategy, len(b.Sizes))
				if err != nil {
					return nil, err
				}
				cpb, err = ByThroughput(cycles, tp, opts.Duration)
				if err != nil {
					return nil, err
				}
			default:
				cpb, err = ByIterations(cycles, b.Sizes, threads, opts.Iterations)
				if err != nil {
					return nil, err
				}
			}
			out.Set(threads, strategy, cpb)
		}
	}
	return out, nil
}
