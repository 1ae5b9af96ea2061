package dataset

import (
	"fmt"
)

type Strategy string

const (
	Baseline Strategy = "baseline"
	OneCopy  Strategy = "one-copy"
	ZeroCopy Strategy = "zero-copy"
)

// Strategies is the fixed series order used by every chart.
var Strategies = []Strategy{Baseline, OneCopy, ZeroCopy}

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case Baseline, OneCopy, ZeroCopy:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown strategy %q (expected baseline, one-copy or zero-copy)", s)
}

type Metric string

const (
	Throughput Metric = "throughput"
	Latency    Metric = "latency"
	LLCMisses  Metric = "llc_misses"
	Cycles     Metric = "cycles"
	Efficiency Metric = "cycles_per_byte"
)

// Series holds one measurement sequence per strategy.
type Series map[Strategy][]float64

// Table maps a fixed axis value (thread count or message size) to its series.
type Table map[int]Series

// Benchmark is one complete benchmark run. Throughput, LLCMisses and Cycles
// are keyed by thread count with one value per message size. Latency is keyed
// by message size with one value per thread count.
type Benchmark struct {
	System     string `yaml:"system" json:"system"`
	Sizes      []int  `yaml:"sizes" json:"sizes"`
	Threads    []int  `yaml:"threads" json:"threads"`
	Throughput Table  `yaml:"throughput" json:"throughput"`
	Latency    Table  `yaml:"latency" json:"latency"`
	LLCMisses  Table  `yaml:"llc_misses" json:"llc_misses"`
	Cycles     Table  `yaml:"cycles" json:"cycles"`
}

func (t Table) Set(key int, strategy Strategy, values []float64) {
	series, ok := t[key]
	if !ok {
		series = make(Series)
		t[key] = series
	}
	series[strategy] = values
}

// Values returns the sequence for (key, strategy) and checks that it holds
// exactly want entries.
func (t Table) Values(metric Metric, keyName string, key int, strategy Strategy, want int) ([]float64, error) {
	series, ok := t[key]
	if !ok {
		return nil, &DataShapeError{Metric: metric, KeyName: keyName, Key: key, Strategy: strategy, Want: want, Got: -1}
	}
	values, ok := series[strategy]
	if !ok {
		return nil, &DataShapeError{Metric: metric, KeyName: keyName, Key: key, Strategy: strategy, Want: want, Got: -1}
	}
	if len(values) != want {
		return nil, &DataShapeError{Metric: metric, KeyName: keyName, Key: key, Strategy: strategy, Want: want, Got: len(values)}
	}
	return values, nil
}

// Check verifies every (key, strategy) pair of the table.
func (t Table) Check(metric Metric, keyName string, keys []int, want int) error {
	for _, key := range keys {
		for _, strategy := range Strategies {
			if _, err := t.Values(metric, keyName, key, strategy, want); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate checks the shape of all four tables against the size and thread axes.
func (b *Benchmark) Validate() error {
	if len(b.Sizes) == 0 {
		return fmt.Errorf("benchmark has no message sizes")
	}
	if len(b.Threads) == 0 {
		return fmt.Errorf("benchmark has no thread counts")
	}

	if err := b.Throughput.Check(Throughput, "threads", b.Threads, len(b.Sizes)); err != nil {
		return err
	}
	if err := b.Latency.Check(Latency, "size", b.Sizes, len(b.Threads)); err != nil {
		return err
	}
	if err := b.LLCMisses.Check(LLCMisses, "threads", b.Threads, len(b.Sizes)); err != nil {
		return err
	}
	if err := b.Cycles.Check(Cycles, "threads", b.Threads, len(b.Sizes)); err != nil {
		return err
	}
	return nil
}

// NewBenchmark returns an empty benchmark with allocated tables.
func NewBenchmark(system string, sizes, threads []int) *Benchmark {
	return &Benchmark{
		System:     system,
		Sizes:      append([]int(nil), sizes...),
		Threads:    append([]int(nil), threads...),
		Throughput: make(Table),
		Latency:    make(Table),
		LLCMisses:  make(Table),
		Cycles:     make(Table),
	}
}
