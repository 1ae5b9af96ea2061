package config

import (
	"time"
)

type ReportConfig struct {
	Report     ReportInfo       `yaml:"report"`
	Efficiency EfficiencyConfig `yaml:"efficiency"`
	Measure    MeasureConfig    `yaml:"measure"`
	Database   DatabaseConfig   `yaml:"database"`
}

type ReportInfo struct {
	System     string    `yaml:"system"`
	OutputDir  string    `yaml:"output_dir"`
	Dataset    string    `yaml:"dataset,omitempty"`
	DPI        int       `yaml:"dpi"`
	DiagramDPI int       `yaml:"diagram_dpi"`
	Width      float64   `yaml:"width_in"`
	Height     float64   `yaml:"height_in"`
	LogLevel   string    `yaml:"log_level"`
	Tikz       bool      `yaml:"tikz"`
	Files      FileNames `yaml:"files"`
}

type FileNames struct {
	Throughput string `yaml:"throughput"`
	Latency    string `yaml:"latency"`
	Misses     string `yaml:"cache_misses"`
	Efficiency string `yaml:"cpu_efficiency"`
	Diagram    string `yaml:"diagram"`
}

type EfficiencyConfig struct {
	Mode       string  `yaml:"mode"`
	Iterations int     `yaml:"iterations"`
	DurationS  float64 `yaml:"duration_s"`
}

type MeasureConfig struct {
	Address    string `yaml:"address"`
	Sizes      []int  `yaml:"sizes"`
	Threads    []int  `yaml:"threads"`
	Iterations int    `yaml:"iterations"`
	Perf       bool   `yaml:"perf"`
	Output     string `yaml:"output"`
	TimeoutS   int    `yaml:"timeout_s"`
}

type DatabaseConfig struct {
	Host   string `yaml:"host"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func (e EfficiencyConfig) Duration() time.Duration {
	return time.Duration(e.DurationS * float64(time.Second))
}

func (m MeasureConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutS) * time.Second
}
