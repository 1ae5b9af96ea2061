package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"zerocopy-bench/internal/efficiency"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zerocopy-bench.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Report.DPI != 100 || cfg.Report.DiagramDPI != 300 {
		t.Fatalf("unexpected default dpi: %d/%d", cfg.Report.DPI, cfg.Report.DiagramDPI)
	}
	if cfg.Report.Files.Throughput != "1_throughput_analysis.png" {
		t.Fatalf("unexpected default file name %q", cfg.Report.Files.Throughput)
	}
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadConfigOverridesAndKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
report:
  system: "System: 4 vCPU"
  dpi: 72
  files:
    latency: lat.png
efficiency:
  mode: throughput
  duration_s: 2.5
`)
	cfg, content, err := LoadConfigWithContent(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !strings.Contains(content, "4 vCPU") {
		t.Fatalf("original content not returned")
	}
	if cfg.Report.System != "System: 4 vCPU" || cfg.Report.DPI != 72 {
		t.Fatalf("overrides not applied: %+v", cfg.Report)
	}
	if cfg.Report.Files.Latency != "lat.png" || cfg.Report.Files.Throughput != "1_throughput_analysis.png" {
		t.Fatalf("file names not merged: %+v", cfg.Report.Files)
	}

	opts, err := cfg.EfficiencyOptions()
	if err != nil {
		t.Fatalf("EfficiencyOptions: %v", err)
	}
	if opts.Mode != efficiency.ModeThroughput || opts.Duration != 2500*time.Millisecond {
		t.Fatalf("unexpected efficiency options %+v", opts)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("ZCB_TEST_TOKEN", "secret")
	path := writeConfig(t, `
database:
  host: http://localhost:8086
  token: ${ZCB_TEST_TOKEN}
  org: lab
  bucket: bench
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.Token != "secret" {
		t.Fatalf("expected expanded token, got %q", cfg.Database.Token)
	}
	if !cfg.Database.Enabled() {
		t.Fatalf("database should be enabled")
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"dpi":        "report:\n  dpi: 0\n",
		"path name":  "report:\n  files:\n    throughput: out/a.png\n",
		"duplicate":  "report:\n  files:\n    latency: 1_throughput_analysis.png\n",
		"mode":       "efficiency:\n  mode: wallclock\n",
		"iterations": "efficiency:\n  iterations: 0\n",
		"size":       "measure:\n  sizes: [1001]\n",
		"database":   "database:\n  host: http://localhost:8086\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, content)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")
	if got := ResolvePath("explicit.yaml"); got != "explicit.yaml" {
		t.Fatalf("explicit path ignored: %q", got)
	}

	t.Setenv(ConfigEnvVar, "/etc/zcb.yaml")
	if got := ResolvePath(""); got != "/etc/zcb.yaml" {
		t.Fatalf("env path ignored: %q", got)
	}
}
