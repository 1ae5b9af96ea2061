package plot

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"zerocopy-bench/internal/config"
	"zerocopy-bench/internal/dataset"
	"zerocopy-bench/internal/efficiency"
	"zerocopy-bench/internal/plot/diagram"
	"zerocopy-bench/internal/plot/output"
	"zerocopy-bench/internal/plot/report"
	"zerocopy-bench/internal/plot/tikz"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/vg"
)

type PlotType string

const (
	PlotTypeThroughput PlotType = "throughput"
	PlotTypeLatency    PlotType = "latency"
	PlotTypeMisses     PlotType = "cache_misses"
	PlotTypeEfficiency PlotType = "cpu_efficiency"
	PlotTypeDiagram    PlotType = "diagram"
	PlotTypeTikz       PlotType = "tikz"
)

// FileResult is the outcome of producing one image.
type FileResult struct {
	Type PlotType
	Name string
	Path string
	Err  error
}

type PlotManager struct {
	outputDir        string
	efficiency       efficiency.Options
	reportGenerator  *report.ReportGenerator
	diagramGenerator *diagram.DiagramGenerator
	tikzGenerator    *tikz.TikzPlotGenerator
	logger           *logrus.Logger
}

func NewPlotManager(cfg *config.ReportConfig, logger *logrus.Logger) (*PlotManager, error) {
	effOpts, err := cfg.EfficiencyOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to read efficiency options: %w", err)
	}

	files := cfg.Report.Files
	reportOpts := report.Options{
		DPI:    cfg.Report.DPI,
		Width:  vg.Length(cfg.Report.Width) * vg.Inch,
		Height: vg.Length(cfg.Report.Height) * vg.Inch,
		Files: report.FileNames{
			Throughput: files.Throughput,
			Latency:    files.Latency,
			Misses:     files.Misses,
			Efficiency: files.Efficiency,
		},
	}

	diagramOpts := diagram.DefaultOptions()
	diagramOpts.DPI = cfg.Report.DiagramDPI
	diagramOpts.FileName = files.Diagram

	pm := &PlotManager{
		outputDir:        cfg.Report.OutputDir,
		efficiency:       effOpts,
		reportGenerator:  report.NewReportGenerator(logger, reportOpts),
		diagramGenerator: diagram.NewDiagramGenerator(logger, diagramOpts),
		logger:           logger,
	}
	if cfg.Report.Tikz {
		pm.tikzGenerator = tikz.NewTikzPlotGenerator(logger)
	}
	return pm, nil
}

// GenerateAll writes the four report grids and the diagram. A failed file does
// not stop the remaining ones; the returned error joins every failure.
func (pm *PlotManager) GenerateAll(bench *dataset.Benchmark) ([]FileResult, error) {
	files := pm.reportGenerator.Options().Files
	steps := []struct {
		kind PlotType
		name string
		run  func() (string, error)
	}{
		{PlotTypeThroughput, files.Throughput, func() (string, error) {
			return pm.reportGenerator.ProduceThroughputReport(pm.outputDir, bench)
		}},
		{PlotTypeLatency, files.Latency, func() (string, error) {
			return pm.reportGenerator.ProduceLatencyReport(pm.outputDir, bench)
		}},
		{PlotTypeMisses, files.Misses, func() (string, error) {
			return pm.reportGenerator.ProduceMissReport(pm.outputDir, bench)
		}},
		{PlotTypeEfficiency, files.Efficiency, func() (string, error) {
			return pm.reportGenerator.ProduceEfficiencyReport(pm.outputDir, bench, pm.efficiency)
		}},
		{PlotTypeDiagram, pm.diagramGenerator.FileName(), func() (string, error) {
			return pm.diagramGenerator.Produce(pm.outputDir)
		}},
	}

	results := make([]FileResult, 0, len(steps))
	var errs []error
	for _, step := range steps {
		path, err := step.run()
		results = append(results, FileResult{Type: step.kind, Name: step.name, Path: path, Err: err})
		if err != nil {
			pm.logger.WithFields(logrus.Fields{
				"plot": step.kind,
				"file": step.name,
			}).WithError(err).Error("Failed to generate plot")
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		pm.logger.WithField("path", path).Infof("Generated %s", step.name)
	}

	if pm.tikzGenerator != nil {
		tikzResults, err := pm.generateTikz(bench)
		results = append(results, tikzResults...)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return results, errors.Join(errs...)
}

// generateTikz writes a pgfplots figure and a LaTeX wrapper next to each report image.
func (pm *PlotManager) generateTikz(bench *dataset.Benchmark) ([]FileResult, error) {
	files := pm.reportGenerator.Options().Files
	figures := []struct {
		name  string
		build func() (*report.Figure, error)
	}{
		{files.Throughput, func() (*report.Figure, error) { return pm.reportGenerator.ThroughputFigure(bench) }},
		{files.Latency, func() (*report.Figure, error) { return pm.reportGenerator.LatencyFigure(bench) }},
		{files.Misses, func() (*report.Figure, error) { return pm.reportGenerator.MissFigure(bench) }},
		{files.Efficiency, func() (*report.Figure, error) { return pm.reportGenerator.EfficiencyFigure(bench, pm.efficiency) }},
	}
	src := tikz.Source{System: bench.System, Checksum: bench.Checksum()}

	var results []FileResult
	var errs []error
	for _, f := range figures {
		base := strings.TrimSuffix(f.name, filepath.Ext(f.name))
		plotName := base + ".tex"
		wrapperName := base + "_figure.tex"

		fig, err := f.build()
		var plotTex, wrapperTex string
		if err == nil {
			plotTex, wrapperTex, err = pm.tikzGenerator.Generate(fig, src, plotName)
		}
		if err != nil {
			results = append(results, FileResult{Type: PlotTypeTikz, Name: plotName, Err: err})
			errs = append(errs, fmt.Errorf("%s: %w", plotName, err))
			continue
		}

		for _, out := range []struct{ name, content string }{{plotName, plotTex}, {wrapperName, wrapperTex}} {
			content := out.content
			path, err := output.WriteFile(pm.outputDir, out.name, func(w io.Writer) error {
				_, err := io.WriteString(w, content)
				return err
			})
			results = append(results, FileResult{Type: PlotTypeTikz, Name: out.name, Path: path, Err: err})
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", out.name, err))
				continue
			}
			pm.logger.WithField("path", path).Infof("Generated %s", out.name)
		}
	}
	return results, errors.Join(errs...)
}
