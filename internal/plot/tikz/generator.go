package tikz

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"zerocopy-bench/internal/plot/report"
	reportMappings "zerocopy-bench/internal/plot/report/mappings"
	"zerocopy-bench/internal/plot/tikz/mappings"
	plotTemplate "zerocopy-bench/internal/plot/tikz/templates/plot"
	wrapperTemplate "zerocopy-bench/internal/plot/tikz/templates/wrapper"

	"github.com/sirupsen/logrus"
)

// Source identifies the dataset a figure was built from.
type Source struct {
	System   string
	Checksum string
}

type TikzPlotGenerator struct {
	logger *logrus.Logger
}

func NewTikzPlotGenerator(logger *logrus.Logger) *TikzPlotGenerator {
	return &TikzPlotGenerator{
		logger: logger,
	}
}

// Generate renders fig as a pgfplots groupplot and a figure wrapper that
// inputs plotFileName.
func (g *TikzPlotGenerator) Generate(fig *report.Figure, src Source, plotFileName string) (string, string, error) {
	g.logger.WithFields(logrus.Fields{
		"metric": fig.Metric,
		"panels": len(fig.Panels),
	}).Debug("Generating TikZ figure")

	plotData := g.preparePlotData(fig, src)
	wrapperData := g.prepareWrapperData(fig, src, plotFileName)

	plotOutput, err := g.renderPlot(plotData)
	if err != nil {
		return "", "", fmt.Errorf("failed to render plot: %w", err)
	}

	wrapperOutput, err := g.renderWrapper(wrapperData)
	if err != nil {
		return "", "", fmt.Errorf("failed to render wrapper: %w", err)
	}

	return plotOutput, wrapperOutput, nil
}

func (g *TikzPlotGenerator) preparePlotData(fig *report.Figure, src Source) *plotTemplate.PlotData {
	data := &plotTemplate.PlotData{
		GeneratedDate: time.Now().Format("2006-01-02 15:04:05"),
		Title:         escape(fig.Title),
		Metric:        string(fig.Metric),
		System:        escape(src.System),
		Checksum:      src.Checksum,
		Rows:          fig.Rows,
		Cols:          fig.Cols,
	}

	for _, panel := range fig.Panels {
		pd := plotTemplate.PanelData{
			Title:       escape(panel.Title),
			XLabel:      escape(panel.XLabel),
			YLabel:      escape(panel.YLabel),
			AxisOptions: append(axisOptions("x", panel.XScale), axisOptions("y", panel.YScale)...),
			LegendPos:   "north east",
		}
		if panel.LegendLeft {
			pd.LegendPos = "north west"
		}

		for _, s := range panel.Series {
			coords := make([]string, len(s.XYs))
			for i, xy := range s.XYs {
				coords[i] = fmt.Sprintf("(%g,%g)", xy.X, xy.Y)
			}
			pd.Series = append(pd.Series, plotTemplate.PlotSeries{
				Key:         panel.Key,
				Strategy:    string(s.Strategy),
				Style:       mappings.GetStrategyStyle(s.Strategy).ToTikzOptions(),
				LegendEntry: escape(s.Label),
				Coordinates: coords,
			})
		}
		data.Panels = append(data.Panels, pd)
	}

	return data
}

func axisOptions(axis string, scale reportMappings.Scale) []string {
	switch scale {
	case reportMappings.Log2:
		return []string{axis + "mode=log", "log basis " + axis + "=2"}
	case reportMappings.Log10:
		return []string{axis + "mode=log", "log basis " + axis + "=10"}
	default:
		return nil
	}
}

var texEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`%`, `\%`,
	`&`, `\&`,
	`#`, `\#`,
	`_`, `\_`,
	`$`, `\$`,
	`{`, `\{`,
	`}`, `\}`,
	`^`, `\textasciicircum{}`,
	`~`, `\textasciitilde{}`,
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

func escape(s string) string {
	return texEscaper.Replace(s)
}

func (g *TikzPlotGenerator) prepareWrapperData(fig *report.Figure, src Source, plotFileName string) *wrapperTemplate.WrapperData {
	title := fig.Title
	if i := strings.Index(title, " ("); i > 0 {
		title = title[:i]
	}
	return &wrapperTemplate.WrapperData{
		GeneratedDate: time.Now().Format("2006-01-02 15:04:05"),
		Metric:        string(fig.Metric),
		Checksum:      src.Checksum,
		PlotFileName:  plotFileName,
		ShortCaption:  escape(title),
		Caption:       escape(fmt.Sprintf("%s for baseline, one-copy and zero-copy transfers (%s).", title, src.System)),
	}
}

func (g *TikzPlotGenerator) renderPlot(data *plotTemplate.PlotData) (string, error) {
	tmpl, err := template.New("plot").Parse(plotTemplate.PlotTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse plot template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute plot template: %w", err)
	}

	return buf.String(), nil
}

func (g *TikzPlotGenerator) renderWrapper(data *wrapperTemplate.WrapperData) (string, error) {
	tmpl, err := template.New("wrapper").Parse(wrapperTemplate.WrapperTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse wrapper template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute wrapper template: %w", err)
	}

	return buf.String(), nil
}
