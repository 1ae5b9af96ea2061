package report

import (
	"fmt"
	"math"

	"zerocopy-bench/internal/dataset"
	"zerocopy-bench/internal/plot/report/mappings"

	"gonum.org/v1/plot/plotter"
)

const gridCols = 2

// Series is one strategy line within a panel.
type Series struct {
	Strategy dataset.Strategy
	Label    string
	Marker   string
	XYs      plotter.XYs
}

// Panel is one subplot of a figure grid.
type Panel struct {
	Key        int
	Title      string
	XLabel     string
	YLabel     string
	XScale     mappings.Scale
	YScale     mappings.Scale
	LegendLeft bool
	Series     []Series
}

// Figure is a grid of panels in row-major order under one title.
type Figure struct {
	Metric dataset.Metric
	Title  string
	Rows   int
	Cols   int
	Panels []Panel
}

// PanelAt returns the panel at row r, column c, or nil for an empty cell.
func (f *Figure) PanelAt(r, c int) *Panel {
	i := r*f.Cols + c
	if i < 0 || i >= len(f.Panels) {
		return nil
	}
	return &f.Panels[i]
}

type figureLayout struct {
	metric  dataset.Metric
	table   dataset.Table
	keyName string
	keys    []int
	xs      []int
}

// buildFigure lays out one panel per key and one series per strategy. All
// shape checks happen here, before anything is drawn.
func buildFigure(system string, layout figureLayout) (*Figure, error) {
	if len(layout.keys) == 0 {
		return nil, fmt.Errorf("%s: no %s values to plot", layout.metric, layout.keyName)
	}

	info := mappings.GetMetricInfo(layout.metric)

	title := info.Title
	if system != "" {
		title = fmt.Sprintf("%s (%s)", info.Title, system)
	}

	fig := &Figure{
		Metric: layout.metric,
		Title:  title,
		Cols:   gridCols,
		Rows:   (len(layout.keys) + gridCols - 1) / gridCols,
	}

	for _, key := range layout.keys {
		panel := Panel{
			Key:        key,
			Title:      fmt.Sprintf(info.PanelTitle, key),
			XLabel:     info.XLabel,
			YLabel:     info.YLabel,
			XScale:     info.XScale,
			YScale:     info.YScale,
			LegendLeft: info.LegendLeft,
		}

		for _, strategy := range dataset.Strategies {
			values, err := layout.table.Values(layout.metric, layout.keyName, key, strategy, len(layout.xs))
			if err != nil {
				return nil, err
			}

			xys := make(plotter.XYs, len(values))
			for i, v := range values {
				xys[i].X = float64(layout.xs[i])
				xys[i].Y = v
			}
			if err := checkDrawable(layout, key, strategy, xys, info); err != nil {
				return nil, err
			}

			style := mappings.GetStrategyStyle(strategy)
			panel.Series = append(panel.Series, Series{
				Strategy: strategy,
				Label:    style.Label,
				Marker:   style.Marker,
				XYs:      xys,
			})
		}

		fig.Panels = append(fig.Panels, panel)
	}

	return fig, nil
}

// log axes cannot place zero or negative values
func checkDrawable(layout figureLayout, key int, strategy dataset.Strategy, xys plotter.XYs, info mappings.MetricInfo) error {
	for i, xy := range xys {
		if math.IsNaN(xy.Y) || math.IsInf(xy.Y, 0) {
			return fmt.Errorf("%s: %s=%d strategy=%s value %d is not finite", layout.metric, layout.keyName, key, strategy, i)
		}
		if info.XScale != mappings.Linear && xy.X <= 0 {
			return fmt.Errorf("%s: x value %v cannot be drawn on a log axis", layout.metric, xy.X)
		}
		if info.YScale != mappings.Linear && xy.Y <= 0 {
			return fmt.Errorf("%s: %s=%d strategy=%s value %v at index %d cannot be drawn on a log axis",
				layout.metric, layout.keyName, key, strategy, xy.Y, i)
		}
	}
	return nil
}
