// Package region extracts colour masks, bounding boxes and connected
// components from segmentation rasters.
package region

import (
	"github.com/swdee/go-seglabel/raster"
)

// Mask is a boolean raster marking selected pixels
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask returns an empty mask of the given size
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Bits:   make([]bool, width*height),
	}
}

// At reports whether pixel x,y is selected, pixels outside the mask are not
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Set marks pixel x,y
func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// Count returns the number of selected pixels
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Bytes returns the mask as 8-bit samples, 255 for selected pixels
func (m *Mask) Bytes() []byte {
	out := make([]byte, len(m.Bits))
	for i, b := range m.Bits {
		if b {
			out[i] = 255
		}
	}
	return out
}

// ColorMask selects every pixel whose channels all lie within
// [color-tolerance, color+tolerance], with the range clipped to [0,255]
func ColorMask(c *raster.ColorRaster, color raster.RGB, tolerance int) *Mask {

	var lo, hi [3]int

	for i := 0; i < 3; i++ {
		lo[i] = clip8(int(color[i]) - tolerance)
		hi[i] = clip8(int(color[i]) + tolerance)
	}

	m := NewMask(c.Width, c.Height)

	for i := range m.Bits {
		p := c.Pix[i*3 : i*3+3]
		m.Bits[i] = within(p[0], lo[0], hi[0]) &&
			within(p[1], lo[1], hi[1]) &&
			within(p[2], lo[2], hi[2])
	}

	return m
}

// ExactMask selects every pixel equal to color
func ExactMask(c *raster.ColorRaster, color raster.RGB) *Mask {

	m := NewMask(c.Width, c.Height)

	for i := range m.Bits {
		p := c.Pix[i*3 : i*3+3]
		m.Bits[i] = p[0] == color[0] && p[1] == color[1] && p[2] == color[2]
	}

	return m
}

func within(v uint8, lo, hi int) bool {
	return int(v) >= lo && int(v) <= hi
}

func clip8(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
