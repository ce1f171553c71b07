package geometry

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/swdee/go-seglabel/raster"
	"github.com/swdee/go-seglabel/region"
)

// Coverage reports whether a colour raster pixel belongs to the target
// object, *region.Mask satisfies it
type Coverage interface {
	At(x, y int) bool
}

// DepthSource records which step of the sampling policy produced a depth
type DepthSource int

const (
	// SourceNone means no valid depth was found, depth is 0
	SourceNone DepthSource = iota
	// SourceCenter is the box centre sample under the target mask
	SourceCenter
	// SourceMaskedMedian is the median of valid samples under the target mask
	// inside the box
	SourceMaskedMedian
	// SourceCenterUnmasked is the box centre sample ignoring the mask
	SourceCenterUnmasked
)

func (s DepthSource) String() string {
	switch s {
	case SourceCenter:
		return "center"
	case SourceMaskedMedian:
		return "masked median"
	case SourceCenterUnmasked:
		return "center unmasked"
	default:
		return "none"
	}
}

// ValidDepth reports whether v is a usable depth sample
func ValidDepth(v float32) bool {
	return raster.IsFinite(v) && v > MinDepth
}

// SampleDepth returns the depth of the object in box, given in colour raster
// pixels of a colorWidth x colorHeight raster.  Coordinates are rescaled when
// the depth raster has a different resolution.  The policy is
//
//  1. the box centre sample, when valid and the centre pixel is covered
//  2. the median of valid samples at covered pixels inside the box
//  3. the box centre sample regardless of coverage, when valid
//  4. zero
//
// A nil covered treats every pixel as covered.
func SampleDepth(depth *raster.FloatRaster, colorWidth, colorHeight int, box region.Bounds, covered Coverage) (float64, DepthSource) {

	scaler := NewScaler(colorWidth, colorHeight, depth.Width, depth.Height)

	u, v := box.Center()
	du, dv := scaler.Index(u, v)
	center := depth.At(du, dv)

	cu := clampIndex(math.RoundToEven(u), colorWidth)
	cv := clampIndex(math.RoundToEven(v), colorHeight)

	if ValidDepth(center) && (covered == nil || covered.At(cu, cv)) {
		return float64(center), SourceCenter
	}

	var samples stats.Float64Data

	for y := box.YMin; y <= box.YMax; y++ {
		for x := box.XMin; x <= box.XMax; x++ {
			if covered != nil && !covered.At(x, y) {
				continue
			}

			dx, dy := scaler.Index(float64(x), float64(y))

			if s := depth.At(dx, dy); ValidDepth(s) {
				samples = append(samples, float64(s))
			}
		}
	}

	if len(samples) > 0 {
		if med, err := samples.Median(); err == nil {
			return med, SourceMaskedMedian
		}
	}

	if ValidDepth(center) {
		return float64(center), SourceCenterUnmasked
	}

	return 0, SourceNone
}
