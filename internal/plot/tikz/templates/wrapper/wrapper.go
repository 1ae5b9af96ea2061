package templates

const WrapperTemplate = `% Generated on {{.GeneratedDate}}
% Metric: {{.Metric}}
% Dataset checksum: {{.Checksum}}
\begin{center}
    \begin{figure}[H]
    \centering
    \resizebox{1\linewidth}{!}{\input{./{{.PlotFileName}} }}
    \caption[{{.ShortCaption}}]{ {{.Caption}} }
    \label{fig:transfer-{{.Metric}}}
    \end{figure}
\end{center}
`

type WrapperData struct {
	GeneratedDate string
	Metric        string
	Checksum      string
	PlotFileName  string
	ShortCaption  string
	Caption       string
}
