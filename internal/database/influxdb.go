package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"zerocopy-bench/internal/config"
	"zerocopy-bench/internal/dataset"
	"zerocopy-bench/internal/host"
	"zerocopy-bench/internal/logging"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"
)

const (
	Measurement     = "transfer_benchmark"
	MetaMeasurement = "transfer_benchmark_meta"
)

type InfluxDBClient struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
	logger   *logrus.Logger
}

func NewInfluxDBClient(cfg config.DatabaseConfig) (*InfluxDBClient, error) {
	logger := logging.GetLogger()

	client := influxdb2.NewClient(cfg.Host, cfg.Token)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		logger.WithField("host", cfg.Host).WithError(err).Error("Failed to connect to InfluxDB")
		return nil, err
	}

	if health.Status != "pass" {
		client.Close()
		message := ""
		if health.Message != nil {
			message = *health.Message
		}
		logger.WithFields(logrus.Fields{
			"host":    cfg.Host,
			"status":  health.Status,
			"message": message,
		}).Error("InfluxDB health check failed")
		return nil, fmt.Errorf("influxdb health check failed: %s %s", health.Status, message)
	}

	logger.WithFields(logrus.Fields{
		"host":   cfg.Host,
		"bucket": cfg.Bucket,
		"org":    cfg.Org,
	}).Info("Connected to InfluxDB")

	return &InfluxDBClient{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		bucket:   cfg.Bucket,
		org:      cfg.Org,
		logger:   logger,
	}, nil
}

// BenchmarkPoints converts every (threads, size, strategy) cell into one point.
func BenchmarkPoints(b *dataset.Benchmark, ts time.Time) ([]*write.Point, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	checksum := b.Checksum()

	var points []*write.Point
	for ti, threads := range b.Threads {
		for si, size := range b.Sizes {
			for _, strategy := range dataset.Strategies {
				point := influxdb2.NewPoint(Measurement,
					map[string]string{
						"system":     b.System,
						"checksum":   checksum,
						"strategy":   string(strategy),
						"threads":    strconv.Itoa(threads),
						"size_bytes": strconv.Itoa(size),
					},
					map[string]interface{}{
						"throughput_gbps": b.Throughput[threads][strategy][si],
						"latency_us":      b.Latency[size][strategy][ti],
						"llc_misses":      b.LLCMisses[threads][strategy][si],
						"cycles":          b.Cycles[threads][strategy][si],
					},
					ts)
				points = append(points, point)
			}
		}
	}
	return points, nil
}

func metadataPoint(b *dataset.Benchmark, info *host.HostConfig, ts time.Time) *write.Point {
	return influxdb2.NewPoint(MetaMeasurement,
		map[string]string{
			"checksum": b.Checksum(),
		},
		map[string]interface{}{
			"system":         b.System,
			"hostname":       info.Hostname,
			"os_info":        info.OSInfo,
			"kernel_version": info.KernelVersion,
			"cpu_vendor":     info.CPUVendor,
			"cpu_model":      info.CPUModel,
			"cpu_threads":    info.LogicalCPUs,
			"sockets":        info.NumSockets,
			"l3_cache_bytes": info.L3CacheBytes,
			"sizes":          len(b.Sizes),
			"thread_counts":  len(b.Threads),
		},
		ts)
}

// WriteBenchmark writes the whole benchmark plus one metadata point.
func (idb *InfluxDBClient) WriteBenchmark(ctx context.Context, b *dataset.Benchmark) error {
	now := time.Now()
	points, err := BenchmarkPoints(b, now)
	if err != nil {
		return err
	}
	points = append(points, metadataPoint(b, host.GetHostConfig(), now))

	if err := idb.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("failed to write data points: %w", err)
	}

	idb.logger.WithFields(logrus.Fields{
		"bucket":   idb.bucket,
		"points":   len(points),
		"checksum": b.Checksum(),
	}).Info("Benchmark written to InfluxDB")
	return nil
}

func (idb *InfluxDBClient) Close() {
	if idb.client != nil {
		idb.client.Close()
	}
}
