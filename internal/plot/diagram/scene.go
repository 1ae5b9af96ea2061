package diagram

import "image/color"

// Point is a position in scene units. The scene spans [0, Width] x [0, Height]
// with the origin at the bottom left.
type Point struct {
	X, Y float64
}

type Zone struct {
	Label      string
	Min, Max   Point
	Fill       color.Color
	LabelColor color.Color
}

type Box struct {
	Label     string
	Min, Max  Point
	Fill      color.Color
	Edge      color.Color
	TextColor color.Color
	Dashed    bool
	Bold      bool
}

func (b Box) Center() Point {
	return Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// Arrow is a directed edge between two scene points. Curvature bends the
// path to the right of the direction of travel for positive values and to
// the left for negative ones, relative to the chord length.
type Arrow struct {
	Label     string
	LabelAt   Point
	From, To  Point
	Color     color.Color
	Width     float64
	Dashed    bool
	Crossed   bool
	Boxed     bool
	Curvature float64
}

// Marker is a small filled dot with an annotation.
type Marker struct {
	Label   string
	Center  Point
	Radius  float64
	LabelAt Point
}

type Scene struct {
	Title   string
	Width   float64
	Height  float64
	Zones   []Zone
	Boxes   []Box
	Arrows  []Arrow
	Markers []Marker
}

func hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// zeroCopyScene contrasts the avoided user-to-kernel copy with the direct DMA
// path from a pinned application buffer to the NIC.
func zeroCopyScene() *Scene {
	red := hex(0xd62728)
	green := hex(0x2ca02c)

	appBuffer := Box{
		Label:     "Application\nBuffer\n(Data)",
		Min:       Point{1, 6.5},
		Max:       Point{4, 8},
		Fill:      hex(0xBBDEFB),
		Edge:      hex(0x1565C0),
		TextColor: color.Black,
		Bold:      true,
	}
	socketBuffer := Box{
		Label:     "Socket Buffer\n(SKB)",
		Min:       Point{1, 3.5},
		Max:       Point{4, 5},
		Fill:      hex(0xFFE0B2),
		Edge:      hex(0xE65100),
		TextColor: hex(0xE65100),
		Dashed:    true,
	}
	nic := Box{
		Label:     "NIC / DMA\nController",
		Min:       Point{6, 0.5},
		Max:       Point{9, 2},
		Fill:      hex(0xC8E6C9),
		Edge:      hex(0x2E7D32),
		TextColor: color.Black,
		Bold:      true,
	}

	return &Scene{
		Title:  "Zero-Copy Data Path (MSG_ZEROCOPY)",
		Width:  10,
		Height: 9,
		Zones: []Zone{
			{Label: "USER SPACE", Min: Point{0, 6}, Max: Point{10, 9}, Fill: hex(0xE3F2FD), LabelColor: hex(0x1565C0)},
			{Label: "KERNEL SPACE", Min: Point{0, 3}, Max: Point{10, 6}, Fill: hex(0xFFF3E0), LabelColor: hex(0xE65100)},
			{Label: "HARDWARE", Min: Point{0, 0}, Max: Point{10, 3}, Fill: hex(0xE8F5E9), LabelColor: hex(0x2E7D32)},
		},
		Boxes: []Box{appBuffer, socketBuffer, nic},
		Arrows: []Arrow{
			{
				Label:   "CPU Copy\n(Avoided)",
				LabelAt: Point{2.75, 5.8},
				From:    Point{2.5, 6.5},
				To:      Point{2.5, 5},
				Color:   red,
				Width:   2,
				Dashed:  true,
				Crossed: true,
			},
			{
				Label:     "DMA Transfer\n(Direct Memory Access)",
				LabelAt:   Point{5.5, 4.5},
				From:      Point{4, 6.5},
				To:        Point{6, 1.25},
				Color:     green,
				Width:     4,
				Boxed:     true,
				Curvature: -0.2,
			},
		},
		Markers: []Marker{
			{Label: "Pages Pinned\n(Locked in RAM)", Center: Point{4, 6.5}, Radius: 0.1, LabelAt: Point{4.2, 6.6}},
		},
	}
}
