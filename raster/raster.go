// Package raster holds the float depth/disparity and 8-bit colour rasters
// and their file codecs.
package raster

import (
	"math"

	"github.com/pkg/errors"
)

// FloatRaster is a row-major grid of 32-bit float samples with interleaved
// channels, the first row is the top of the image
type FloatRaster struct {
	Width    int
	Height   int
	Channels int
	Data     []float32
}

// NewFloatRaster returns a zero filled raster of the given shape
func NewFloatRaster(width, height, channels int) (*FloatRaster, error) {

	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid raster size %dx%d", width, height)
	}

	if channels != 1 && channels != 3 {
		return nil, errors.Errorf("unsupported channel count %d", channels)
	}

	return &FloatRaster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Data:     make([]float32, width*height*channels),
	}, nil
}

// Fill returns a single channel raster with every sample set to v
func Fill(width, height int, v float32) *FloatRaster {
	r := &FloatRaster{
		Width:    width,
		Height:   height,
		Channels: 1,
		Data:     make([]float32, width*height),
	}
	for i := range r.Data {
		r.Data[i] = v
	}
	return r
}

// index of channel c at pixel x,y
func (r *FloatRaster) index(x, y, c int) int {
	return (y*r.Width+x)*r.Channels + c
}

// InBounds reports whether x,y is a valid pixel
func (r *FloatRaster) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < r.Width && y < r.Height
}

// At returns the first channel sample at x,y
func (r *FloatRaster) At(x, y int) float32 {
	return r.Data[r.index(x, y, 0)]
}

// AtChannel returns the sample of channel c at x,y
func (r *FloatRaster) AtChannel(x, y, c int) float32 {
	return r.Data[r.index(x, y, c)]
}

// Set stores v in the first channel at x,y
func (r *FloatRaster) Set(x, y int, v float32) {
	r.Data[r.index(x, y, 0)] = v
}

// Channel returns a single channel copy of channel c
func (r *FloatRaster) Channel(c int) *FloatRaster {

	out := &FloatRaster{
		Width:    r.Width,
		Height:   r.Height,
		Channels: 1,
		Data:     make([]float32, r.Width*r.Height),
	}

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			out.Data[y*r.Width+x] = r.AtChannel(x, y, c)
		}
	}

	return out
}

// Clone returns a deep copy of the raster
func (r *FloatRaster) Clone() *FloatRaster {
	out := *r
	out.Data = make([]float32, len(r.Data))
	copy(out.Data, r.Data)
	return &out
}

// Range returns the minimum and maximum finite sample.  Ok is false when the
// raster holds no finite samples.
func (r *FloatRaster) Range() (minV, maxV float32, ok bool) {

	minV = float32(math.Inf(1))
	maxV = float32(math.Inf(-1))

	for _, v := range r.Data {
		// skip invalid values so they don't poison min/max
		if !IsFinite(v) {
			continue
		}

		if v < minV {
			minV = v
		}

		if v > maxV {
			maxV = v
		}
	}

	if !IsFinite(minV) || !IsFinite(maxV) {
		return 0, 0, false
	}

	return minV, maxV, true
}

// IsFinite returns true if v is neither NaN nor +/-Inf
func IsFinite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}
