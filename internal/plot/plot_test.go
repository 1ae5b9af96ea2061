package plot

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zerocopy-bench/internal/config"
	"zerocopy-bench/internal/dataset"

	"github.com/sirupsen/logrus"
)

func newTestManager(t *testing.T) (*PlotManager, *config.ReportConfig) {
	t.Helper()
	cfg := config.Default()
	cfg.Report.OutputDir = t.TempDir()
	cfg.Report.DPI = 20
	cfg.Report.DiagramDPI = 20
	cfg.Report.Width = 6
	cfg.Report.Height = 5

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	pm, err := NewPlotManager(cfg, logger)
	if err != nil {
		t.Fatalf("NewPlotManager: %v", err)
	}
	return pm, cfg
}

func TestGenerateAllWritesFiveImages(t *testing.T) {
	pm, cfg := newTestManager(t)

	results, err := pm.GenerateAll(dataset.Default())
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}

	want := []string{
		cfg.Report.Files.Throughput,
		cfg.Report.Files.Latency,
		cfg.Report.Files.Misses,
		cfg.Report.Files.Efficiency,
		cfg.Report.Files.Diagram,
	}
	for i, res := range results {
		if res.Name != want[i] {
			t.Fatalf("result %d: expected %s, got %s", i, want[i], res.Name)
		}
		if res.Path != filepath.Join(cfg.Report.OutputDir, want[i]) {
			t.Fatalf("result %d: unexpected path %s", i, res.Path)
		}
		if info, err := os.Stat(res.Path); err != nil || info.Size() == 0 {
			t.Fatalf("result %d: file missing or empty: %v", i, err)
		}
	}
}

func TestGenerateAllContinuesAfterFailure(t *testing.T) {
	pm, cfg := newTestManager(t)

	bench := dataset.Default()
	delete(bench.Latency[65536], dataset.OneCopy)

	results, err := pm.GenerateAll(bench)
	if err == nil {
		t.Fatalf("expected an error for the incomplete latency table")
	}
	if !strings.Contains(err.Error(), cfg.Report.Files.Latency) {
		t.Fatalf("error should name %s: %v", cfg.Report.Files.Latency, err)
	}
	var shapeErr *dataset.DataShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected DataShapeError in %v", err)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			if res.Type != PlotTypeLatency {
				t.Fatalf("unexpected failure for %s: %v", res.Name, res.Err)
			}
			if _, statErr := os.Stat(filepath.Join(cfg.Report.OutputDir, res.Name)); !os.IsNotExist(statErr) {
				t.Fatalf("failed report should not leave a file behind")
			}
			continue
		}
		if _, statErr := os.Stat(res.Path); statErr != nil {
			t.Fatalf("%s not written: %v", res.Name, statErr)
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly one failure, got %d", failed)
	}
}

func TestNewPlotManagerRejectsUnknownMode(t *testing.T) {
	cfg := config.Default()
	cfg.Efficiency.Mode = "bogus"
	if _, err := NewPlotManager(cfg, logrus.New()); err == nil {
		t.Fatalf("expected error for unknown efficiency mode")
	}
}

func TestGenerateAllWritesTikz(t *testing.T) {
	cfg := config.Default()
	cfg.Report.OutputDir = t.TempDir()
	cfg.Report.DPI = 20
	cfg.Report.DiagramDPI = 20
	cfg.Report.Width = 6
	cfg.Report.Height = 5
	cfg.Report.Tikz = true

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	pm, err := NewPlotManager(cfg, logger)
	if err != nil {
		t.Fatalf("NewPlotManager: %v", err)
	}

	results, err := pm.GenerateAll(dataset.Default())
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(results) != 5+8 {
		t.Fatalf("expected 13 results, got %d", len(results))
	}
	for _, name := range []string{"1_throughput_analysis.tex", "1_throughput_analysis_figure.tex", "4_cpu_efficiency_analysis.tex"} {
		data, err := os.ReadFile(filepath.Join(cfg.Report.OutputDir, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !strings.Contains(string(data), "Generated on") {
			t.Fatalf("%s lacks the generated header", name)
		}
	}
}
