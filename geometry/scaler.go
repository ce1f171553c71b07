package geometry

import "math"

// Scaler maps pixel coordinates between two resolutions of the same view,
// eg: a segmentation raster and a depth raster or the configured camera size
type Scaler struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// per axis scale factors
	scaleX float64
	scaleY float64
}

// NewScaler returns a scaler from the source to the destination resolution
func NewScaler(srcWidth, srcHeight, destWidth, destHeight int) *Scaler {
	s := &Scaler{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
	}

	// precalculate scaling factors
	s.preCalc()

	return s
}

func (s *Scaler) preCalc() {

	s.scaleX = 1
	s.scaleY = 1

	if s.srcWidth > 0 {
		s.scaleX = float64(s.destWidth) / float64(s.srcWidth)
	}

	if s.srcHeight > 0 {
		s.scaleY = float64(s.destHeight) / float64(s.srcHeight)
	}
}

// Identity reports whether source and destination resolutions match
func (s *Scaler) Identity() bool {
	return s.srcWidth == s.destWidth && s.srcHeight == s.destHeight
}

// Point rescales u,v proportionally into destination coordinates
func (s *Scaler) Point(u, v float64) (float64, float64) {
	if s.Identity() {
		return u, v
	}
	return u * s.scaleX, v * s.scaleY
}

// Index rescales u,v and rounds to the nearest destination pixel (ties to
// even), clamped to the valid index range
func (s *Scaler) Index(u, v float64) (int, int) {
	du, dv := s.Point(u, v)
	return clampIndex(math.RoundToEven(du), s.destWidth), clampIndex(math.RoundToEven(dv), s.destHeight)
}

// ScaleX returns the horizontal scale factor
func (s *Scaler) ScaleX() float64 {
	return s.scaleX
}

// ScaleY returns the vertical scale factor
func (s *Scaler) ScaleY() float64 {
	return s.scaleY
}

func clampIndex(v float64, size int) int {
	i := int(v)
	if i < 0 {
		return 0
	}
	if i > size-1 {
		return size - 1
	}
	return i
}
