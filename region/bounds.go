package region

import "fmt"

// Bounds is an axis-aligned pixel rectangle with inclusive corners.  Width and
// Height are the corner differences, so a box covering a single column has
// zero width.  Only XMin <= XMax and YMin <= YMax hold: single row or column
// objects are kept as degenerate boxes rather than dropped, so writers may
// emit zero width or height.
type Bounds struct {
	XMin int
	YMin int
	XMax int
	YMax int
}

// Width returns XMax-XMin
func (b Bounds) Width() int {
	return b.XMax - b.XMin
}

// Height returns YMax-YMin
func (b Bounds) Height() int {
	return b.YMax - b.YMin
}

// Center returns the midpoint of the corners
func (b Bounds) Center() (float64, float64) {
	return float64(b.XMin+b.XMax) / 2.0, float64(b.YMin+b.YMax) / 2.0
}

// Contains reports whether pixel x,y lies inside the rectangle, edges included
func (b Bounds) Contains(x, y int) bool {
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

func (b Bounds) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", b.XMin, b.YMin, b.XMax, b.YMax)
}

// BoundingBox returns the minimal rectangle covering every selected pixel of
// the mask.  Ok is false for an empty mask.
func BoundingBox(m *Mask) (b Bounds, ok bool) {

	b = Bounds{XMin: m.Width, YMin: m.Height, XMax: -1, YMax: -1}

	for y := 0; y < m.Height; y++ {
		row := m.Bits[y*m.Width : (y+1)*m.Width]

		for x, set := range row {
			if !set {
				continue
			}

			if x < b.XMin {
				b.XMin = x
			}
			if x > b.XMax {
				b.XMax = x
			}
			if y < b.YMin {
				b.YMin = y
			}
			b.YMax = y
		}
	}

	if b.XMax < 0 {
		return Bounds{}, false
	}

	return b, true
}
