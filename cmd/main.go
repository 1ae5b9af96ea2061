package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"zerocopy-bench/internal/collectors"
	"zerocopy-bench/internal/config"
	"zerocopy-bench/internal/database"
	"zerocopy-bench/internal/dataset"
	"zerocopy-bench/internal/efficiency"
	"zerocopy-bench/internal/host"
	"zerocopy-bench/internal/logging"
	"zerocopy-bench/internal/measure"
	"zerocopy-bench/internal/plot"
	plotdb "zerocopy-bench/internal/plot/database"
	"zerocopy-bench/internal/plot/output"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const Version = "1.0.0"

func loadEnvironment() {
	logger := logging.GetLogger()

	// Try to load .env file from current directory
	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
		} else {
			logger.WithField("file", envFile).Debug("Loaded environment variables")
		}
	} else {
		// Try to load from the application directory
		if execPath, err := os.Executable(); err == nil {
			appDir := filepath.Dir(execPath)
			envFile = filepath.Join(appDir, ".env")
			if _, err := os.Stat(envFile); err == nil {
				if err := godotenv.Load(envFile); err != nil {
					logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
				} else {
					logger.WithField("file", envFile).Debug("Loaded environment variables")
				}
			}
		}
	}
}

func main() {
	// Initialize logging
	logger := logging.GetLogger()

	loadEnvironment()

	if err := newRootCmd().Execute(); err != nil {
		logger.WithError(err).Fatal("Command execution failed")
	}
}

type cliOptions struct {
	configFile string
	logLevel   string
	checksum   string
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	var outputFile string
	var withReport, noPerf bool

	rootCmd := &cobra.Command{
		Use:          "zerocopy-bench",
		Short:        "Data-transfer strategy benchmark report generator",
		Long:         "Renders throughput, latency, cache-miss and CPU-efficiency grids comparing baseline, one-copy and zero-copy transfers, plus a zero-copy data path diagram",
		Version:      Version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logLevel != "" {
				if err := logging.SetLogLevel(opts.logLevel); err != nil {
					return fmt.Errorf("invalid log level: %w", err)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateReports(opts, nil, 0)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to configuration file (default zerocopy-bench.yaml or $"+config.ConfigEnvVar+")")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")
	rootCmd.Flags().StringVar(&opts.checksum, "from-db", "", "Render the benchmark stored in InfluxDB under this checksum")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and benchmark dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateInputs(opts)
		},
	}

	measureCmd := &cobra.Command{
		Use:   "measure",
		Short: "Measure the three transfer strategies over loopback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeasurement(cmd.Context(), opts, outputFile, withReport, noPerf)
		},
	}
	measureCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Dataset file to write (overrides measure.output)")
	measureCmd.Flags().BoolVar(&withReport, "report", false, "Render the report from the measured dataset")
	measureCmd.Flags().BoolVar(&noPerf, "no-perf", false, "Skip hardware counters and record zero cycles and cache misses")

	exportCmd := &cobra.Command{
		Use:   "export <spool-file>",
		Short: "Write a spooled measurement to InfluxDB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportSpool(cmd.Context(), opts, args[0])
		},
	}

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(measureCmd)
	rootCmd.AddCommand(exportCmd)

	return rootCmd
}

func loadConfig(opts *cliOptions) (*config.ReportConfig, string, error) {
	logger := logging.GetLogger()

	configFile := config.ResolvePath(opts.configFile)
	cfg, content, err := config.LoadConfigWithContent(configFile)
	if err != nil {
		logger.WithField("config_file", configFile).WithError(err).Error("Failed to load configuration")
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	// The flag wins over the configured level
	if opts.logLevel == "" && cfg.Report.LogLevel != "" {
		if err := logging.SetLogLevel(cfg.Report.LogLevel); err != nil {
			logger.WithField("log_level", cfg.Report.LogLevel).WithError(err).Warn("Invalid log level in config, using INFO")
			logger.SetLevel(logrus.InfoLevel)
		}
	}

	if configFile != "" {
		logger.WithField("config_file", configFile).Debug("Configuration loaded")
	}
	return cfg, content, nil
}

func loadDataset(cfg *config.ReportConfig, opts *cliOptions) (*dataset.Benchmark, error) {
	if opts.checksum != "" {
		return queryDataset(cfg, opts.checksum)
	}
	if cfg.Report.Dataset == "" {
		bench := dataset.Default()
		bench.System = cfg.Report.System
		return bench, nil
	}
	bench, err := dataset.Load(cfg.Report.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", cfg.Report.Dataset, err)
	}
	return bench, nil
}

func queryDataset(cfg *config.ReportConfig, checksum string) (*dataset.Benchmark, error) {
	client, err := plotdb.NewPlotDBClient(cfg.Database, logging.GetLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to create database client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return client.QueryBenchmark(ctx, checksum)
}

// generateReports renders every image. A measured bench carries its own
// iteration count, which overrides the configured efficiency iterations.
func generateReports(opts *cliOptions, bench *dataset.Benchmark, iterations int) error {
	logger := logging.GetLogger()

	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if iterations > 0 {
		cfg.Efficiency.Iterations = iterations
	}
	if bench == nil {
		if bench, err = loadDataset(cfg, opts); err != nil {
			return err
		}
	}

	pm, err := plot.NewPlotManager(cfg, logger)
	if err != nil {
		return err
	}

	results, err := pm.GenerateAll(bench)
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if err != nil {
		return fmt.Errorf("%d of %d images failed: %w", failed, len(results), err)
	}

	logger.WithFields(map[string]interface{}{
		"output_dir": cfg.Report.OutputDir,
		"images":     len(results),
		"checksum":   bench.Checksum(),
	}).Info("Report generation complete")
	return nil
}

func validateInputs(opts *cliOptions) error {
	logger := logging.GetLogger()

	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}
	bench, err := loadDataset(cfg, opts)
	if err != nil {
		return err
	}
	if err := bench.Validate(); err != nil {
		logger.WithError(err).Error("Dataset validation failed")
		return err
	}

	effOpts, err := cfg.EfficiencyOptions()
	if err != nil {
		return err
	}
	if _, err := efficiency.Derive(bench, effOpts); err != nil {
		logger.WithError(err).Error("Cycles-per-byte derivation failed")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"sizes":    bench.Sizes,
		"threads":  bench.Threads,
		"checksum": bench.Checksum(),
	}).Info("Configuration and dataset are valid")
	return nil
}

func runMeasurement(ctx context.Context, opts *cliOptions, outputFile string, withReport, noPerf bool) error {
	logger := logging.GetLogger()

	cfg, content, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	counters := collectors.Factory(collectors.NewPerfCollector)
	if noPerf || !cfg.Measure.Perf {
		counters = collectors.NewNopCollector
	}

	system := cfg.Report.System
	if system == dataset.DefaultSystem {
		system = host.GetHostConfig().SystemLabel()
	}

	runner, err := measure.NewRunner(measure.Config{
		System:     system,
		Address:    cfg.Measure.Address,
		Sizes:      cfg.Measure.Sizes,
		Threads:    cfg.Measure.Threads,
		Iterations: cfg.Measure.Iterations,
		Timeout:    cfg.Measure.Timeout(),
	}, counters, logger)
	if err != nil {
		return err
	}

	bench, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("measurement failed: %w", err)
	}

	if outputFile == "" {
		outputFile = cfg.Measure.Output
	}
	path, err := output.WriteFile(filepath.Dir(outputFile), filepath.Base(outputFile), func(w io.Writer) error {
		return dataset.Save(w, bench)
	})
	if err != nil {
		return err
	}
	logger.WithFields(map[string]interface{}{
		"path":     path,
		"checksum": bench.Checksum(),
	}).Info("Dataset written")

	if cfg.Database.Enabled() {
		if err := writeDatabase(ctx, cfg, bench); err != nil {
			spoolPath, spoolErr := database.WriteSpoolArtifact(database.DefaultSpoolDir(), database.BuildSpoolArtifact(bench, content))
			if spoolErr != nil {
				logger.WithError(spoolErr).Error("Failed to spool measurement")
			} else {
				logger.WithField("path", spoolPath).Warn("InfluxDB export failed, measurement spooled")
			}
			return err
		}
	}

	if withReport {
		return generateReports(opts, bench, cfg.Measure.Iterations)
	}
	return nil
}

func writeDatabase(ctx context.Context, cfg *config.ReportConfig, bench *dataset.Benchmark) error {
	client, err := database.NewInfluxDBClient(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to create database client: %w", err)
	}
	defer client.Close()

	return client.WriteBenchmark(ctx, bench)
}

func exportSpool(ctx context.Context, opts *cliOptions, path string) error {
	logger := logging.GetLogger()

	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return fmt.Errorf("no database configured")
	}

	artifact, err := database.ReadSpoolArtifact(path)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := writeDatabase(ctx, cfg, artifact.Benchmark); err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"path":     path,
		"checksum": artifact.Checksum,
	}).Info("Spooled measurement exported")
	return nil
}
