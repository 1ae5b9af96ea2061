package database

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"zerocopy-bench/internal/config"
	"zerocopy-bench/internal/dataset"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sirupsen/logrus"
)

type PlotDBClient struct {
	client   influxdb2.Client
	queryAPI api.QueryAPI
	bucket   string
	org      string
	logger   *logrus.Logger
}

// CellRow is one pivoted transfer_benchmark record.
type CellRow struct {
	System   string
	Threads  int
	Size     int
	Strategy dataset.Strategy

	ThroughputGbps float64
	LatencyUs      float64
	LLCMisses      float64
	Cycles         float64
}

func NewPlotDBClient(cfg config.DatabaseConfig, logger *logrus.Logger) (*PlotDBClient, error) {
	if !cfg.Enabled() || cfg.Token == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("incomplete database configuration for InfluxDB connection")
	}

	client := influxdb2.NewClient(cfg.Host, cfg.Token)
	queryAPI := client.QueryAPI(cfg.Org)

	return &PlotDBClient{
		client:   client,
		queryAPI: queryAPI,
		bucket:   cfg.Bucket,
		org:      cfg.Org,
		logger:   logger,
	}, nil
}

func (c *PlotDBClient) Close() {
	c.client.Close()
}

// QueryBenchmark rebuilds the benchmark stored under checksum.
func (c *PlotDBClient) QueryBenchmark(ctx context.Context, checksum string) (*dataset.Benchmark, error) {
	if !isHex(checksum) {
		return nil, fmt.Errorf("invalid checksum %q: expected hex digits", checksum)
	}
	c.logger.WithField("checksum", checksum).Debug("Querying transfer benchmark")

	query := fmt.Sprintf(`
		from(bucket: %s)
		|> range(start: 0)
		|> filter(fn: (r) => r["_measurement"] == "transfer_benchmark")
		|> filter(fn: (r) => r["checksum"] == %s)
		|> pivot(rowKey:["_time", "threads", "size_bytes", "strategy"], columnKey: ["_field"], valueColumn: "_value")
	`, strconv.Quote(c.bucket), strconv.Quote(checksum))

	result, err := c.queryAPI.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var rows []CellRow
	for result.Next() {
		record := result.Record()

		row := CellRow{}
		if v, ok := record.ValueByKey("system").(string); ok {
			row.System = v
		}
		if v, ok := record.ValueByKey("threads").(string); ok {
			if row.Threads, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("invalid threads tag %q: %w", v, err)
			}
		}
		if v, ok := record.ValueByKey("size_bytes").(string); ok {
			if row.Size, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("invalid size_bytes tag %q: %w", v, err)
			}
		}
		if v, ok := record.ValueByKey("strategy").(string); ok {
			row.Strategy = dataset.Strategy(v)
		}
		if v, ok := record.ValueByKey("throughput_gbps").(float64); ok {
			row.ThroughputGbps = v
		}
		if v, ok := record.ValueByKey("latency_us").(float64); ok {
			row.LatencyUs = v
		}
		if v, ok := record.ValueByKey("llc_misses").(float64); ok {
			row.LLCMisses = v
		}
		if v, ok := record.ValueByKey("cycles").(float64); ok {
			row.Cycles = v
		}
		rows = append(rows, row)
	}

	if result.Err() != nil {
		return nil, fmt.Errorf("query parsing failed: %w", result.Err())
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no transfer_benchmark points with checksum %s", checksum)
	}

	c.logger.WithField("rows", len(rows)).Debug("Query completed")
	return AssembleBenchmark(rows)
}

// AssembleBenchmark lays rows out as benchmark tables. Sizes and thread
// counts are sorted ascending; later rows overwrite earlier duplicates.
// Every (threads, size, strategy) cell must be present.
func AssembleBenchmark(rows []CellRow) (*dataset.Benchmark, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to assemble")
	}

	sizeSet := make(map[int]struct{})
	threadSet := make(map[int]struct{})
	for _, row := range rows {
		if _, err := dataset.ParseStrategy(string(row.Strategy)); err != nil {
			return nil, err
		}
		sizeSet[row.Size] = struct{}{}
		threadSet[row.Threads] = struct{}{}
	}
	sizes := sortedKeys(sizeSet)
	threads := sortedKeys(threadSet)

	sizeIndex := indexOf(sizes)
	threadIndex := indexOf(threads)

	type cellKey struct {
		threads  int
		size     int
		strategy dataset.Strategy
	}
	seen := make(map[cellKey]bool, len(rows))

	b := dataset.NewBenchmark(rows[0].System, sizes, threads)
	for _, row := range rows {
		seen[cellKey{row.Threads, row.Size, row.Strategy}] = true
		si := sizeIndex[row.Size]
		ti := threadIndex[row.Threads]

		cell(b.Throughput, row.Threads, row.Strategy, len(sizes))[si] = row.ThroughputGbps
		cell(b.LLCMisses, row.Threads, row.Strategy, len(sizes))[si] = row.LLCMisses
		cell(b.Cycles, row.Threads, row.Strategy, len(sizes))[si] = row.Cycles
		cell(b.Latency, row.Size, row.Strategy, len(threads))[ti] = row.LatencyUs
	}

	// A strategy with no rows for some key fails here
	if err := b.Validate(); err != nil {
		return nil, err
	}

	for _, t := range threads {
		for _, strategy := range dataset.Strategies {
			filled := 0
			for _, size := range sizes {
				if seen[cellKey{t, size, strategy}] {
					filled++
				}
			}
			if filled != len(sizes) {
				return nil, &dataset.DataShapeError{
					Metric:   dataset.Throughput,
					KeyName:  "threads",
					Key:      t,
					Strategy: strategy,
					Want:     len(sizes),
					Got:      filled,
				}
			}
		}
	}
	return b, nil
}

func cell(t dataset.Table, key int, strategy dataset.Strategy, n int) []float64 {
	if series, ok := t[key]; ok {
		if values, ok := series[strategy]; ok {
			return values
		}
	}
	values := make([]float64, n)
	t.Set(key, strategy, values)
	return values
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func indexOf(values []int) map[int]int {
	idx := make(map[int]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}
