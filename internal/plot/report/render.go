package report

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"zerocopy-bench/internal/plot/report/mappings"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var gridColor = color.Gray{Y: 190}

// Render draws the figure grid and writes it as PNG.
func (g *ReportGenerator) Render(fig *Figure, w io.Writer) error {
	if fig.Rows <= 0 || fig.Cols <= 0 {
		return fmt.Errorf("figure %q has an empty grid", fig.Title)
	}

	plots := make([][]*plot.Plot, fig.Rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, fig.Cols)
		for c := range plots[r] {
			panel := fig.PanelAt(r, c)
			if panel == nil {
				continue
			}
			p, err := newPanelPlot(panel)
			if err != nil {
				return fmt.Errorf("panel %q: %w", panel.Title, err)
			}
			plots[r][c] = p
		}
	}

	img := vgimg.NewWith(vgimg.UseWH(g.opts.Width, g.opts.Height), vgimg.UseDPI(g.opts.DPI))
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      fig.Rows,
		Cols:      fig.Cols,
		PadX:      vg.Centimeter,
		PadY:      vg.Centimeter,
		PadTop:    vg.Points(40),
		PadBottom: vg.Points(12),
		PadLeft:   vg.Points(12),
		PadRight:  vg.Points(12),
	}

	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c, p := range plots[r] {
			if p != nil {
				p.Draw(canvases[r][c])
			}
		}
	}

	titleStyle := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, vg.Points(14)),
		XAlign:  draw.XCenter,
		YAlign:  draw.YTop,
		Handler: plot.DefaultTextHandler,
	}
	dc.FillText(titleStyle, vg.Point{
		X: (dc.Min.X + dc.Max.X) / 2,
		Y: dc.Max.Y - vg.Points(10),
	}, fig.Title)

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func newPanelPlot(panel *Panel) (*plot.Plot, error) {
	p := plot.New()

	p.Title.Text = panel.Title
	p.Title.TextStyle.Font.Size = vg.Points(10)
	p.Title.TextStyle.Font.Weight = xfont.WeightBold
	p.X.Label.Text = panel.XLabel
	p.X.Label.TextStyle.Font.Size = vg.Points(9)
	p.Y.Label.Text = panel.YLabel
	p.Y.Label.TextStyle.Font.Size = vg.Points(9)

	applyScale(&p.X, panel.XScale)
	applyScale(&p.Y, panel.YScale)

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Vertical.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	grid.Horizontal.Color = gridColor
	grid.Horizontal.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(grid)

	for _, s := range panel.Series {
		style := mappings.GetStrategyStyle(s.Strategy)

		line, points, err := plotter.NewLinePoints(s.XYs)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Label, err)
		}
		line.LineStyle.Color = style.Color
		line.LineStyle.Width = vg.Points(1.5)
		points.GlyphStyle.Shape = style.Glyph
		points.GlyphStyle.Color = style.Color
		points.GlyphStyle.Radius = vg.Points(3)

		p.Add(line, points)
		p.Legend.Add(s.Label, line, points)
	}

	p.Legend.Top = true
	p.Legend.Left = panel.LegendLeft
	p.Legend.TextStyle.Font.Size = vg.Points(8)
	p.Legend.Padding = vg.Millimeter

	return p, nil
}

func applyScale(axis *plot.Axis, scale mappings.Scale) {
	switch scale {
	case mappings.Log2:
		axis.Scale = plot.LogScale{}
		axis.Tick.Marker = log2Ticks{}
	case mappings.Log10:
		axis.Scale = plot.LogScale{}
		axis.Tick.Marker = plot.LogTicks{Prec: -1}
	}
}

// log2Ticks places major ticks on even powers of two and minor ticks on the
// odd ones in between.
type log2Ticks struct{}

func (log2Ticks) Ticks(min, max float64) []plot.Tick {
	if min <= 0 || max <= 0 || min > max {
		return nil
	}

	var ticks []plot.Tick
	for e := math.Floor(math.Log2(min)); e <= math.Ceil(math.Log2(max)); e++ {
		v := math.Exp2(e)
		if v < min || v > max {
			continue
		}
		label := ""
		if int(e)%2 == 0 {
			label = fmt.Sprintf("2^%d", int(e))
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: label})
	}
	return ticks
}
