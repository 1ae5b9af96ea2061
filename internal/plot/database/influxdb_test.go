package database

import (
	"context"
	"errors"
	"testing"

	"zerocopy-bench/internal/config"
	"zerocopy-bench/internal/dataset"

	"github.com/sirupsen/logrus"
)

func rowsFrom(b *dataset.Benchmark) []CellRow {
	var rows []CellRow
	// Reverse order to exercise sorting
	for ti := len(b.Threads) - 1; ti >= 0; ti-- {
		threads := b.Threads[ti]
		for si := len(b.Sizes) - 1; si >= 0; si-- {
			size := b.Sizes[si]
			for _, strategy := range dataset.Strategies {
				rows = append(rows, CellRow{
					System:         b.System,
					Threads:        threads,
					Size:           size,
					Strategy:       strategy,
					ThroughputGbps: b.Throughput[threads][strategy][si],
					LatencyUs:      b.Latency[size][strategy][ti],
					LLCMisses:      b.LLCMisses[threads][strategy][si],
					Cycles:         b.Cycles[threads][strategy][si],
				})
			}
		}
	}
	return rows
}

func TestAssembleBenchmarkRoundTrip(t *testing.T) {
	want := dataset.Default()

	got, err := AssembleBenchmark(rowsFrom(want))
	if err != nil {
		t.Fatalf("AssembleBenchmark: %v", err)
	}
	if got.Checksum() != want.Checksum() {
		t.Fatalf("assembled benchmark differs from the source")
	}
	if got.Sizes[0] != 1024 || got.Threads[len(got.Threads)-1] != 8 {
		t.Fatalf("axes not sorted: sizes=%v threads=%v", got.Sizes, got.Threads)
	}
}

func TestAssembleBenchmarkMissingStrategy(t *testing.T) {
	rows := rowsFrom(dataset.Default())
	var filtered []CellRow
	for _, row := range rows {
		if row.Threads == 2 && row.Strategy == dataset.OneCopy {
			continue
		}
		filtered = append(filtered, row)
	}
	if _, err := AssembleBenchmark(filtered); err == nil {
		t.Fatalf("expected shape error for the missing series")
	}
}

func TestAssembleBenchmarkUnknownStrategy(t *testing.T) {
	rows := []CellRow{{Threads: 1, Size: 64, Strategy: "two-copy"}}
	if _, err := AssembleBenchmark(rows); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestNewPlotDBClientRequiresConfig(t *testing.T) {
	if _, err := NewPlotDBClient(config.DatabaseConfig{}, logrus.New()); err == nil {
		t.Fatalf("expected error without a database host")
	}
}

func TestAssembleBenchmarkMissingCell(t *testing.T) {
	b := dataset.NewBenchmark("test", []int{1024, 2048}, []int{1, 2})
	for _, threads := range b.Threads {
		for _, strategy := range dataset.Strategies {
			b.Throughput.Set(threads, strategy, []float64{1, 1})
			b.LLCMisses.Set(threads, strategy, []float64{1, 1})
			b.Cycles.Set(threads, strategy, []float64{1, 1})
		}
	}
	for _, size := range b.Sizes {
		for _, strategy := range dataset.Strategies {
			b.Latency.Set(size, strategy, []float64{1, 1})
		}
	}

	var rows []CellRow
	for _, row := range rowsFrom(b) {
		if row.Threads == 1 && row.Size == 1024 && row.Strategy == dataset.Baseline {
			continue
		}
		rows = append(rows, row)
	}

	_, err := AssembleBenchmark(rows)
	var shapeErr *dataset.DataShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected DataShapeError, got %v", err)
	}
	if shapeErr.Key != 1 || shapeErr.Strategy != dataset.Baseline || shapeErr.Got != 1 || shapeErr.Want != 2 {
		t.Fatalf("unexpected shape error: %+v", shapeErr)
	}
}

func TestQueryBenchmarkRejectsNonHexChecksum(t *testing.T) {
	client, err := NewPlotDBClient(config.DatabaseConfig{
		Host:   "http://127.0.0.1:1",
		Token:  "token",
		Org:    "org",
		Bucket: "bucket",
	}, logrus.New())
	if err != nil {
		t.Fatalf("NewPlotDBClient: %v", err)
	}
	defer client.Close()

	for _, checksum := range []string{"", `ab") |> drop(`, "xyz123"} {
		if _, err := client.QueryBenchmark(context.Background(), checksum); err == nil {
			t.Fatalf("expected error for checksum %q", checksum)
		}
	}
}
