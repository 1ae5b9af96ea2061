package report

import (
	"fmt"
	"io"

	"zerocopy-bench/internal/dataset"
	"zerocopy-bench/internal/efficiency"
	"zerocopy-bench/internal/plot/output"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/vg"
)

type FileNames struct {
	Throughput string
	Latency    string
	Misses     string
	Efficiency string
}

func DefaultFileNames() FileNames {
	return FileNames{
		Throughput: "1_throughput_analysis.png",
		Latency:    "2_latency_analysis.png",
		Misses:     "3_cache_misses_analysis.png",
		Efficiency: "4_cpu_efficiency_analysis.png",
	}
}

type Options struct {
	DPI    int
	Width  vg.Length
	Height vg.Length
	Files  FileNames
}

func DefaultOptions() Options {
	return Options{
		DPI:    100,
		Width:  12 * vg.Inch,
		Height: 10 * vg.Inch,
		Files:  DefaultFileNames(),
	}
}

type ReportGenerator struct {
	opts   Options
	logger *logrus.Logger
}

func NewReportGenerator(logger *logrus.Logger, opts Options) *ReportGenerator {
	defaults := DefaultOptions()
	if opts.DPI <= 0 {
		opts.DPI = defaults.DPI
	}
	if opts.Width <= 0 {
		opts.Width = defaults.Width
	}
	if opts.Height <= 0 {
		opts.Height = defaults.Height
	}
	if opts.Files.Throughput == "" {
		opts.Files.Throughput = defaults.Files.Throughput
	}
	if opts.Files.Latency == "" {
		opts.Files.Latency = defaults.Files.Latency
	}
	if opts.Files.Misses == "" {
		opts.Files.Misses = defaults.Files.Misses
	}
	if opts.Files.Efficiency == "" {
		opts.Files.Efficiency = defaults.Files.Efficiency
	}

	return &ReportGenerator{
		opts:   opts,
		logger: logger,
	}
}

func (g *ReportGenerator) Options() Options {
	return g.opts
}

// ThroughputFigure lays out throughput vs message size, one panel per thread count.
func (g *ReportGenerator) ThroughputFigure(b *dataset.Benchmark) (*Figure, error) {
	return buildFigure(b.System, figureLayout{
		metric:  dataset.Throughput,
		table:   b.Throughput,
		keyName: "threads",
		keys:    b.Threads,
		xs:      b.Sizes,
	})
}

// LatencyFigure lays out latency vs thread count, one panel per message size.
func (g *ReportGenerator) LatencyFigure(b *dataset.Benchmark) (*Figure, error) {
	return buildFigure(b.System, figureLayout{
		metric:  dataset.Latency,
		table:   b.Latency,
		keyName: "size",
		keys:    b.Sizes,
		xs:      b.Threads,
	})
}

// MissFigure lays out LLC misses vs message size, one panel per thread count.
func (g *ReportGenerator) MissFigure(b *dataset.Benchmark) (*Figure, error) {
	return buildFigure(b.System, figureLayout{
		metric:  dataset.LLCMisses,
		table:   b.LLCMisses,
		keyName: "threads",
		keys:    b.Threads,
		xs:      b.Sizes,
	})
}

// EfficiencyFigure derives cycles per byte and lays it out per thread count.
func (g *ReportGenerator) EfficiencyFigure(b *dataset.Benchmark, opts efficiency.Options) (*Figure, error) {
	cpb, err := efficiency.Derive(b, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to derive cycles per byte: %w", err)
	}

	return buildFigure(b.System, figureLayout{
		metric:  dataset.Efficiency,
		table:   cpb,
		keyName: "threads",
		keys:    b.Threads,
		xs:      b.Sizes,
	})
}

func (g *ReportGenerator) ProduceThroughputReport(dir string, b *dataset.Benchmark) (string, error) {
	fig, err := g.ThroughputFigure(b)
	if err != nil {
		return "", err
	}
	return g.produce(dir, g.opts.Files.Throughput, fig)
}

func (g *ReportGenerator) ProduceLatencyReport(dir string, b *dataset.Benchmark) (string, error) {
	fig, err := g.LatencyFigure(b)
	if err != nil {
		return "", err
	}
	return g.produce(dir, g.opts.Files.Latency, fig)
}

func (g *ReportGenerator) ProduceMissReport(dir string, b *dataset.Benchmark) (string, error) {
	fig, err := g.MissFigure(b)
	if err != nil {
		return "", err
	}
	return g.produce(dir, g.opts.Files.Misses, fig)
}

func (g *ReportGenerator) ProduceEfficiencyReport(dir string, b *dataset.Benchmark, opts efficiency.Options) (string, error) {
	fig, err := g.EfficiencyFigure(b, opts)
	if err != nil {
		return "", err
	}
	return g.produce(dir, g.opts.Files.Efficiency, fig)
}

func (g *ReportGenerator) produce(dir, name string, fig *Figure) (string, error) {
	g.logger.WithFields(logrus.Fields{
		"metric": fig.Metric,
		"panels": len(fig.Panels),
		"file":   name,
	}).Debug("Rendering report")

	path, err := output.WriteFile(dir, name, func(w io.Writer) error {
		return g.Render(fig, w)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
