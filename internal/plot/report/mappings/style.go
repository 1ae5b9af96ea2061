package mappings

import (
	"image/color"

	"zerocopy-bench/internal/dataset"

	"gonum.org/v1/plot/vg/draw"
)

type StrategyStyle struct {
	Label  string
	Marker string
	Color  color.Color
	Glyph  draw.GlyphDrawer
}

var strategyStyles = map[dataset.Strategy]StrategyStyle{
	dataset.Baseline: {
		Label:  "Baseline",
		Marker: "circle",
		Color:  color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		Glyph:  draw.CircleGlyph{},
	},
	dataset.OneCopy: {
		Label:  "One-Copy",
		Marker: "square",
		Color:  color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
		Glyph:  draw.SquareGlyph{},
	},
	dataset.ZeroCopy: {
		Label:  "Zero-Copy",
		Marker: "triangle",
		Color:  color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
		Glyph:  draw.TriangleGlyph{},
	},
}

func GetStrategyStyle(strategy dataset.Strategy) StrategyStyle {
	if style, ok := strategyStyles[strategy]; ok {
		return style
	}
	return StrategyStyle{
		Label:  string(strategy),
		Marker: "cross",
		Color:  color.Gray{Y: 96},
		Glyph:  draw.CrossGlyph{},
	}
}
