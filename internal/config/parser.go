package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"zerocopy-bench/internal/dataset"
	"zerocopy-bench/internal/efficiency"
	"zerocopy-bench/internal/logging"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "zerocopy-bench.yaml"
	ConfigEnvVar      = "ZEROCOPY_BENCH_CONFIG"
)

// Default returns the configuration used when no config file is present.
func Default() *ReportConfig {
	return &ReportConfig{
		Report: ReportInfo{
			System:     dataset.DefaultSystem,
			OutputDir:  ".",
			DPI:        100,
			DiagramDPI: 300,
			Width:      12,
			Height:     10,
			LogLevel:   "info",
			Files: FileNames{
				Throughput: "1_throughput_analysis.png",
				Latency:    "2_latency_analysis.png",
				Misses:     "3_cache_misses_analysis.png",
				Efficiency: "4_cpu_efficiency_analysis.png",
				Diagram:    "zerocopy_diagram.png",
			},
		},
		Efficiency: EfficiencyConfig{
			Mode:       string(efficiency.ModeIterations),
			Iterations: efficiency.DefaultIterations,
			DurationS:  efficiency.DefaultDuration.Seconds(),
		},
		Measure: MeasureConfig{
			Address:    "127.0.0.1:0",
			Sizes:      append([]int(nil), dataset.DefaultSizes...),
			Threads:    append([]int(nil), dataset.DefaultThreads...),
			Iterations: efficiency.DefaultIterations,
			Perf:       true,
			Output:     "measured_dataset.yaml",
			TimeoutS:   60,
		},
	}
}

// ResolvePath picks the config file: an explicit path, then $ZEROCOPY_BENCH_CONFIG,
// then zerocopy-bench.yaml in the working directory. It returns "" when none exists.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := strings.TrimSpace(os.Getenv(ConfigEnvVar)); v != "" {
		return v
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// LoadConfig reads the YAML file over the defaults. An empty path returns the defaults.
func LoadConfig(filepath string) (*ReportConfig, error) {
	config, _, err := LoadConfigWithContent(filepath)
	return config, err
}

func LoadConfigWithContent(filepath string) (*ReportConfig, string, error) {
	logger := logging.GetLogger()

	config := Default()
	if filepath == "" {
		return config, "", nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to read config file")
		return nil, "", err
	}

	originalContent := string(data)

	// Expand environment variables
	expanded := expandEnvVars(originalContent)

	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to parse config file")
		return nil, "", err
	}

	if err := validateConfig(config); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}

	return config, originalContent, nil
}

func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})
}

func validateConfig(config *ReportConfig) error {
	report := config.Report
	if report.DPI <= 0 {
		return fmt.Errorf("report.dpi must be greater than 0")
	}
	if report.DiagramDPI <= 0 {
		return fmt.Errorf("report.diagram_dpi must be greater than 0")
	}
	if report.Width <= 0 || report.Height <= 0 {
		return fmt.Errorf("report.width_in and report.height_in must be greater than 0")
	}

	names := map[string]string{
		"throughput":     report.Files.Throughput,
		"latency":        report.Files.Latency,
		"cache_misses":   report.Files.Misses,
		"cpu_efficiency": report.Files.Efficiency,
		"diagram":        report.Files.Diagram,
	}
	seen := make(map[string]string)
	for key, name := range names {
		if name == "" {
			return fmt.Errorf("report.files.%s must not be empty", key)
		}
		if strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("report.files.%s: %q must be a file name, not a path", key, name)
		}
		if other, ok := seen[name]; ok {
			return fmt.Errorf("report.files.%s and report.files.%s both use %q", key, other, name)
		}
		seen[name] = key
	}

	mode, err := efficiency.ParseMode(config.Efficiency.Mode)
	if err != nil {
		return err
	}
	switch mode {
	case efficiency.ModeIterations:
		if config.Efficiency.Iterations <= 0 {
			return fmt.Errorf("efficiency.iterations must be greater than 0")
		}
	case efficiency.ModeThroughput:
		if config.Efficiency.DurationS <= 0 {
			return fmt.Errorf("efficiency.duration_s must be greater than 0")
		}
	}

	m := config.Measure
	if m.Iterations <= 0 {
		return fmt.Errorf("measure.iterations must be greater than 0")
	}
	for _, size := range m.Sizes {
		if size <= 0 || size%8 != 0 {
			return fmt.Errorf("measure.sizes: %d must be a positive multiple of 8", size)
		}
	}
	for _, threads := range m.Threads {
		if threads <= 0 {
			return fmt.Errorf("measure.threads: %d must be greater than 0", threads)
		}
	}

	db := config.Database
	if db.Enabled() && (db.Token == "" || db.Org == "" || db.Bucket == "") {
		return fmt.Errorf("incomplete database configuration")
	}

	return nil
}

// EfficiencyOptions converts the efficiency section into derivation options.
func (c *ReportConfig) EfficiencyOptions() (efficiency.Options, error) {
	mode, err := efficiency.ParseMode(c.Efficiency.Mode)
	if err != nil {
		return efficiency.Options{}, err
	}
	return efficiency.Options{
		Mode:       mode,
		Iterations: c.Efficiency.Iterations,
		Duration:   c.Efficiency.Duration(),
	}, nil
}
