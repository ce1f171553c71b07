package geometry

import (
	"math"

	"github.com/swdee/go-seglabel/raster"
)

// MinDepth is the smallest valid depth sample, anything below is treated as
// missing and clamped here
const MinDepth = 1e-6

// ClampDepth limits v to [MinDepth, maxDepth].  NaN clamps to MinDepth.
func ClampDepth(v, maxDepth float32) float32 {
	if math.IsNaN(float64(v)) || v < MinDepth {
		return MinDepth
	}
	if v > maxDepth {
		return maxDepth
	}
	return v
}

// ClampRaster clamps every sample of r in place
func ClampRaster(r *raster.FloatRaster, maxDepth float32) {
	for i, v := range r.Data {
		r.Data[i] = ClampDepth(v, maxDepth)
	}
}

// DepthToDisparity converts a depth raster to disparity as
// focal*baseline/depth after clamping depth to [MinDepth, maxDepth].  The
// result has the same shape as depth and only finite positive values.
func DepthToDisparity(depth *raster.FloatRaster, focal, baseline float64, maxDepth float32) *raster.FloatRaster {

	out := &raster.FloatRaster{
		Width:    depth.Width,
		Height:   depth.Height,
		Channels: depth.Channels,
		Data:     make([]float32, len(depth.Data)),
	}

	fb := focal * baseline

	for i, v := range depth.Data {
		out.Data[i] = float32(fb / float64(ClampDepth(v, maxDepth)))
	}

	return out
}

// Disparity converts depth to disparity with the camera's focal length and
// baseline
func (c *CameraModel) Disparity(depth *raster.FloatRaster, maxDepth float32) *raster.FloatRaster {
	return DepthToDisparity(depth, c.focal, c.Baseline, maxDepth)
}
