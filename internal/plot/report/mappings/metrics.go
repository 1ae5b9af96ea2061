package mappings

import "zerocopy-bench/internal/dataset"

type Scale string

const (
	Linear Scale = "linear"
	Log2   Scale = "log2"
	Log10  Scale = "log10"
)

// display information for one metric family grid
type MetricInfo struct {
	Title      string
	XLabel     string
	YLabel     string
	XScale     Scale
	YScale     Scale
	PanelTitle string
	LegendLeft bool
}

var metricMappings = map[dataset.Metric]MetricInfo{
	dataset.Throughput: {
		Title:      "Throughput vs Message Size",
		XLabel:     "Message Size (Bytes)",
		YLabel:     "Throughput (Gbps)",
		XScale:     Log2,
		YScale:     Linear,
		PanelTitle: "Threads: %d",
		LegendLeft: true,
	},
	dataset.Latency: {
		Title:      "Latency vs Thread Count",
		XLabel:     "Threads",
		YLabel:     "Latency (us)",
		XScale:     Linear,
		YScale:     Linear,
		PanelTitle: "Size: %d Bytes",
	},
	dataset.LLCMisses: {
		Title:      "LLC Misses vs Message Size",
		XLabel:     "Message Size (Bytes)",
		YLabel:     "LLC Misses",
		XScale:     Log2,
		YScale:     Log10,
		PanelTitle: "Threads: %d",
		LegendLeft: true,
	},
	dataset.Efficiency: {
		Title:      "CPU Efficiency vs Message Size",
		XLabel:     "Message Size (Bytes)",
		YLabel:     "Cycles Per Byte",
		XScale:     Log2,
		YScale:     Linear,
		PanelTitle: "Threads: %d",
	},
}

// GetMetricInfo returns the display information for a metric family
func GetMetricInfo(metric dataset.Metric) MetricInfo {
	if info, ok := metricMappings[metric]; ok {
		return info
	}
	// Default fallback
	return MetricInfo{
		Title:      string(metric),
		XLabel:     "Message Size (Bytes)",
		YLabel:     string(metric),
		XScale:     Linear,
		YScale:     Linear,
		PanelTitle: "%d",
	}
}
