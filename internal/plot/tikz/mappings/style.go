package mappings

import (
	"zerocopy-bench/internal/dataset"
)

type PlotStyle struct {
	Color       string
	LineStyle   string
	LineWidth   string
	Mark        string
	MarkOptions string
}

// Colors follow the PNG report palette.
var StrategyStyles = map[dataset.Strategy]PlotStyle{
	dataset.Baseline: {Color: "{rgb,255:red,31;green,119;blue,180}", LineStyle: "solid", LineWidth: "thick", Mark: "*", MarkOptions: "scale=0.8"},
	dataset.OneCopy:  {Color: "{rgb,255:red,255;green,127;blue,14}", LineStyle: "solid", LineWidth: "thick", Mark: "square*", MarkOptions: "scale=0.8"},
	dataset.ZeroCopy: {Color: "{rgb,255:red,44;green,160;blue,44}", LineStyle: "solid", LineWidth: "thick", Mark: "triangle*", MarkOptions: "scale=0.9"},
}

var fallbackStyle = PlotStyle{Color: "black", LineStyle: "dashed", LineWidth: "thick", Mark: "x"}

func GetStrategyStyle(strategy dataset.Strategy) PlotStyle {
	if style, ok := StrategyStyles[strategy]; ok {
		return style
	}
	return fallbackStyle
}

func (ps PlotStyle) ToTikzOptions() string {
	options := "color=" + ps.Color
	if ps.LineStyle != "" {
		options += "," + ps.LineStyle
	}
	if ps.LineWidth != "" {
		options += "," + ps.LineWidth
	}
	if ps.Mark != "none" && ps.Mark != "" {
		options += ",mark=" + ps.Mark
		if ps.MarkOptions != "" {
			options += ",mark options={" + ps.MarkOptions + "}"
		}
	}
	return options
}
