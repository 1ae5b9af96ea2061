package templates

const PlotTemplate = `% Generated on {{.GeneratedDate}}
%
% Figure: {{.Title}}
% Metric: {{.Metric}}
% System: {{.System}}
% Dataset checksum: {{.Checksum}}
%
% Requires \usepgfplotslibrary{groupplots} and \usetikzlibrary{calc}
\begin{tikzpicture}
	\begin{groupplot}[
		group style={group size={{.Cols}} by {{.Rows}}, horizontal sep=2.2cm, vertical sep=2.2cm},
		width=0.48\textwidth,
		height=0.4\textwidth,
		xmajorgrids,
		ymajorgrids,
		grid style=dashed,
		legend style={font=\scriptsize},
	]
{{range .Panels}}
	\nextgroupplot[
		title={ {{.Title}} },
		xlabel={ {{.XLabel}} },
		ylabel={ {{.YLabel}} },
{{- range .AxisOptions}}
		{{.}},
{{- end}}
		legend pos={{.LegendPos}},
	]
{{range .Series}}
% addplot source: metric={{$.Metric}} key={{.Key}} strategy={{.Strategy}}
\addplot+[{{.Style}}]
  coordinates {
{{range .Coordinates}}    {{.}}
{{end}}  };
\addlegendentry{ {{.LegendEntry}} }
{{end}}
{{- end}}
	\end{groupplot}
	\node[anchor=south, font=\bfseries] at ($(group c1r1.north)!0.5!(group c{{.Cols}}r1.north) + (0,1cm)$) { {{.Title}} };
\end{tikzpicture}
`

type PlotData struct {
	GeneratedDate string
	Title         string
	Metric        string
	System        string
	Checksum      string
	Rows          int
	Cols          int
	Panels        []PanelData
}

type PanelData struct {
	Title       string
	XLabel      string
	YLabel      string
	AxisOptions []string
	LegendPos   string
	Series      []PlotSeries
}

type PlotSeries struct {
	Key         int
	Strategy    string
	Style       string
	LegendEntry string
	Coordinates []string
}
