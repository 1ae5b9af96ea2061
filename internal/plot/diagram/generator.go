package diagram

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"zerocopy-bench/internal/plot/output"

	"github.com/sirupsen/logrus"
	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const DefaultFileName = "zerocopy_diagram.png"

type Options struct {
	DPI      int
	Width    vg.Length
	Height   vg.Length
	FileName string
}

func DefaultOptions() Options {
	return Options{
		DPI:      300,
		Width:    10 * vg.Inch,
		Height:   6 * vg.Inch,
		FileName: DefaultFileName,
	}
}

type DiagramGenerator struct {
	opts   Options
	logger *logrus.Logger
}

func NewDiagramGenerator(logger *logrus.Logger, opts Options) *DiagramGenerator {
	defaults := DefaultOptions()
	if opts.DPI <= 0 {
		opts.DPI = defaults.DPI
	}
	if opts.Width <= 0 {
		opts.Width = defaults.Width
	}
	if opts.Height <= 0 {
		opts.Height = defaults.Height
	}
	if opts.FileName == "" {
		opts.FileName = defaults.FileName
	}

	return &DiagramGenerator{
		opts:   opts,
		logger: logger,
	}
}

func (g *DiagramGenerator) FileName() string {
	return g.opts.FileName
}

func (g *DiagramGenerator) Scene() *Scene {
	return zeroCopyScene()
}

// Produce renders the zero-copy scene into dir and returns the file path.
func (g *DiagramGenerator) Produce(dir string) (string, error) {
	scene := g.Scene()

	g.logger.WithFields(logrus.Fields{
		"zones":  len(scene.Zones),
		"boxes":  len(scene.Boxes),
		"arrows": len(scene.Arrows),
		"file":   g.opts.FileName,
	}).Debug("Rendering diagram")

	return output.WriteFile(dir, g.opts.FileName, func(w io.Writer) error {
		_, err := g.Render(scene, w)
		return err
	})
}

// RenderStats counts the primitives drawn for a scene.
type RenderStats struct {
	Zones   int
	Boxes   int
	Arrows  int
	Crosses int
	Markers int
	Labels  int
}

// Render rasterizes the scene and writes it as PNG.
func (g *DiagramGenerator) Render(scene *Scene, w io.Writer) (RenderStats, error) {
	img := vgimg.NewWith(
		vgimg.UseWH(g.opts.Width, g.opts.Height),
		vgimg.UseDPI(g.opts.DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	dc := draw.New(img)

	stats, err := drawScene(dc, scene)
	if err != nil {
		return stats, err
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return stats, fmt.Errorf("failed to encode png: %w", err)
	}
	return stats, nil
}

type sceneCanvas struct {
	dc     draw.Canvas
	area   vg.Rectangle
	scaleX float64
	scaleY float64
}

func (sc *sceneCanvas) at(p Point) vg.Point {
	return vg.Point{
		X: sc.area.Min.X + vg.Length(p.X*sc.scaleX),
		Y: sc.area.Min.Y + vg.Length(p.Y*sc.scaleY),
	}
}

func drawScene(dc draw.Canvas, scene *Scene) (RenderStats, error) {
	var stats RenderStats
	if scene.Width <= 0 || scene.Height <= 0 {
		return stats, fmt.Errorf("scene has empty extent %vx%v", scene.Width, scene.Height)
	}

	titleHeight := vg.Points(30)
	pad := vg.Points(8)
	area := vg.Rectangle{
		Min: vg.Point{X: dc.Min.X + pad, Y: dc.Min.Y + pad},
		Max: vg.Point{X: dc.Max.X - pad, Y: dc.Max.Y - titleHeight},
	}
	sc := &sceneCanvas{
		dc:     dc,
		area:   area,
		scaleX: float64(area.Max.X-area.Min.X) / scene.Width,
		scaleY: float64(area.Max.Y-area.Min.Y) / scene.Height,
	}

	for _, zone := range scene.Zones {
		sc.rect(zone.Min, zone.Max, zone.Fill, color.Black, vg.Points(2), false)
		sty := textStyle(zone.LabelColor, 12, true, false)
		sty.XAlign = draw.XLeft
		sty.YAlign = draw.YTop
		sc.dc.FillText(sty, sc.at(Point{X: zone.Min.X + 0.2, Y: zone.Max.Y - 0.25}), zone.Label)
		stats.Zones++
		stats.Labels++
	}

	for _, box := range scene.Boxes {
		sc.rect(box.Min, box.Max, box.Fill, box.Edge, vg.Points(2), box.Dashed)
		sty := textStyle(box.TextColor, 10, box.Bold, false)
		sc.dc.FillText(sty, sc.at(box.Center()), box.Label)
		stats.Boxes++
		stats.Labels++
	}

	for _, arrow := range scene.Arrows {
		sc.arrow(arrow)
		stats.Arrows++

		if arrow.Crossed {
			mid := Point{X: (arrow.From.X + arrow.To.X) / 2, Y: (arrow.From.Y + arrow.To.Y) / 2}
			sc.dc.FillText(textStyle(arrow.Color, 20, true, false), sc.at(mid), "X")
			stats.Crosses++
		}
		if arrow.Label != "" {
			size := 9.0
			if arrow.Boxed {
				size = 11
			}
			sty := textStyle(arrow.Color, size, true, false)
			sty.XAlign = draw.XLeft
			if arrow.Boxed {
				sc.labelBox(sty, sc.at(arrow.LabelAt), arrow.Label, arrow.Color)
			}
			sc.dc.FillText(sty, sc.at(arrow.LabelAt), arrow.Label)
			stats.Labels++
		}
	}

	for _, m := range scene.Markers {
		sc.dot(m.Center, m.Radius, color.Black)
		sty := textStyle(color.Black, 9, false, true)
		sty.XAlign = draw.XLeft
		sc.dc.FillText(sty, sc.at(m.LabelAt), m.Label)
		stats.Markers++
		stats.Labels++
	}

	title := textStyle(color.Black, 14, true, false)
	title.YAlign = draw.YTop
	sc.dc.FillText(title, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - vg.Points(6)}, scene.Title)
	stats.Labels++

	return stats, nil
}

func textStyle(clr color.Color, size float64, bold, italic bool) text.Style {
	fnt := font.From(plot.DefaultFont, vg.Points(size))
	if bold {
		fnt.Weight = xfont.WeightBold
	}
	if italic {
		fnt.Style = xfont.StyleItalic
	}
	return text.Style{
		Color:   clr,
		Font:    fnt,
		XAlign:  draw.XCenter,
		YAlign:  draw.YCenter,
		Handler: plot.DefaultTextHandler,
	}
}

func (sc *sceneCanvas) rect(min, max Point, fill, edge color.Color, width vg.Length, dashed bool) {
	a, b := sc.at(min), sc.at(max)
	pts := []vg.Point{{X: a.X, Y: a.Y}, {X: b.X, Y: a.Y}, {X: b.X, Y: b.Y}, {X: a.X, Y: b.Y}}

	sc.dc.FillPolygon(fill, pts)

	ls := draw.LineStyle{Color: edge, Width: width}
	if dashed {
		ls.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	}
	sc.dc.StrokeLines(ls, append(pts, pts[0]))
}

func (sc *sceneCanvas) dot(center Point, radius float64, clr color.Color) {
	c := sc.at(center)
	r := vg.Length(radius * math.Min(sc.scaleX, sc.scaleY))

	var p vg.Path
	p.Move(vg.Point{X: c.X + r, Y: c.Y})
	p.Arc(c, r, 0, 2*math.Pi)
	p.Close()

	sc.dc.SetColor(clr)
	sc.dc.Fill(p)
}

func (sc *sceneCanvas) labelBox(sty text.Style, at vg.Point, label string, edge color.Color) {
	w := sty.Width(label)
	h := sty.Height(label)
	pad := vg.Points(3)

	// left aligned, vertically centred on at
	min := vg.Point{X: at.X - pad, Y: at.Y - h/2 - pad}
	max := vg.Point{X: at.X + w + pad, Y: at.Y + h/2 + pad}
	pts := []vg.Point{{X: min.X, Y: min.Y}, {X: max.X, Y: min.Y}, {X: max.X, Y: max.Y}, {X: min.X, Y: max.Y}}

	sc.dc.FillPolygon(color.White, pts)
	sc.dc.StrokeLines(draw.LineStyle{Color: edge, Width: vg.Points(1)}, append(pts, pts[0]))
}

const curveSegments = 48

// arrowPath returns the polyline of an arrow in canvas space. Curved arrows
// follow a quadratic Bézier whose control point is offset from the chord
// midpoint by Curvature times the chord, perpendicular to it.
func (sc *sceneCanvas) arrowPath(a Arrow) []vg.Point {
	from, to := sc.at(a.From), sc.at(a.To)
	if a.Curvature == 0 {
		return []vg.Point{from, to}
	}

	dx, dy := to.X-from.X, to.Y-from.Y
	ctrl := vg.Point{
		X: (from.X+to.X)/2 + vg.Length(a.Curvature)*dy,
		Y: (from.Y+to.Y)/2 - vg.Length(a.Curvature)*dx,
	}

	pts := make([]vg.Point, 0, curveSegments+1)
	for i := 0; i <= curveSegments; i++ {
		t := vg.Length(float64(i) / curveSegments)
		u := 1 - t
		pts = append(pts, vg.Point{
			X: u*u*from.X + 2*u*t*ctrl.X + t*t*to.X,
			Y: u*u*from.Y + 2*u*t*ctrl.Y + t*t*to.Y,
		})
	}
	return pts
}

func (sc *sceneCanvas) arrow(a Arrow) {
	pts := sc.arrowPath(a)
	width := vg.Points(a.Width)

	ls := draw.LineStyle{Color: a.Color, Width: width}
	if a.Dashed {
		ls.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
	}

	tip := pts[len(pts)-1]
	prev := pts[len(pts)-2]
	angle := math.Atan2(float64(tip.Y-prev.Y), float64(tip.X-prev.X))
	headLen := vg.Points(8) + 2*width
	headHalf := headLen / 2

	// stop the shaft at the base of the head so wide strokes do not poke through
	base := vg.Point{
		X: tip.X - headLen*vg.Length(math.Cos(angle)),
		Y: tip.Y - headLen*vg.Length(math.Sin(angle)),
	}
	shaft := append(append([]vg.Point(nil), pts[:len(pts)-1]...), base)
	sc.dc.StrokeLines(ls, shaft)

	perp := angle + math.Pi/2
	left := vg.Point{
		X: base.X + headHalf*vg.Length(math.Cos(perp)),
		Y: base.Y + headHalf*vg.Length(math.Sin(perp)),
	}
	right := vg.Point{
		X: base.X - headHalf*vg.Length(math.Cos(perp)),
		Y: base.Y - headHalf*vg.Length(math.Sin(perp)),
	}
	sc.dc.FillPolygon(a.Color, []vg.Point{tip, left, right})
}
