// Package geometry implements the pinhole camera model used to recover
// camera-space positions and disparity from depth.
package geometry

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// CameraModel is an ideal pinhole camera with square pixels and the principal
// point at the image centre.  It is shared read-only by every geometry call of
// a session.
type CameraModel struct {
	FOVDegrees float64
	Width      int
	Height     int
	Baseline   float64
	focal      float64
}

// NewCameraModel validates the parameters and derives the focal length
func NewCameraModel(fovDegrees float64, width, height int, baseline float64) (*CameraModel, error) {

	if fovDegrees <= 0 || fovDegrees >= 180 {
		return nil, errors.Errorf("invalid field of view %v degrees", fovDegrees)
	}

	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid size (%d, %d)", width, height)
	}

	if baseline <= 0 {
		return nil, errors.Errorf("invalid baseline %v", baseline)
	}

	return &CameraModel{
		FOVDegrees: fovDegrees,
		Width:      width,
		Height:     height,
		Baseline:   baseline,
		focal:      FocalLength(fovDegrees, width),
	}, nil
}

// FocalLength returns the focal length in pixels of a camera with the given
// horizontal field of view and image width
func FocalLength(fovDegrees float64, width int) float64 {
	return (float64(width) / 2.0) / math.Tan(fovDegrees/2.0*math.Pi/180.0)
}

// FocalLength returns the derived focal length in pixels
func (c *CameraModel) FocalLength() float64 {
	return c.focal
}

// Principal returns the principal point, the centre of the configured image
func (c *CameraModel) Principal() (cx, cy float64) {
	return float64(c.Width) / 2.0, float64(c.Height) / 2.0
}

// Matrix returns the 3x3 intrinsic matrix
//
//	[[f 0 cx],
//	 [0 f cy],
//	 [0 0  1]]
func (c *CameraModel) Matrix() *mat.Dense {
	cx, cy := c.Principal()
	k := mat.NewDense(3, 3, nil)
	k.Set(0, 0, c.focal)
	k.Set(1, 1, c.focal)
	k.Set(0, 2, cx)
	k.Set(1, 2, cy)
	k.Set(2, 2, 1)
	return k
}

// PixelToPoint back-projects pixel u,v at depth z into camera space.  Zero or
// negative depth yields the origin.
func (c *CameraModel) PixelToPoint(u, v, z float64) (x, y, zOut float64) {
	cx, cy := c.Principal()
	x, y = BackProject(u, v, z, cx, cy, c.focal)
	if z <= 0 {
		return 0, 0, 0
	}
	return x, y, z
}

// PointToPixel projects camera-space point x,y,z onto the image plane.  Ok is
// false for points at or behind the camera.
func (c *CameraModel) PointToPixel(x, y, z float64) (u, v float64, ok bool) {

	if z <= 0 {
		return -1, -1, false
	}

	var p mat.VecDense
	p.MulVec(c.Matrix(), mat.NewVecDense(3, []float64{x, y, z}))

	return p.AtVec(0) / p.AtVec(2), p.AtVec(1) / p.AtVec(2), true
}

func (c *CameraModel) String() string {
	return fmt.Sprintf("fov=%v size=%dx%d baseline=%v focal=%.4f",
		c.FOVDegrees, c.Width, c.Height, c.Baseline, c.focal)
}

// BackProject converts pixel u,v with depth z to camera-space x,y given the
// principal point cx,cy and focal length f.  Depth at or below zero returns
// 0,0.
func BackProject(u, v, z, cx, cy, f float64) (x, y float64) {
	if z <= 0 {
		return 0, 0
	}
	return (u - cx) * z / f, (v - cy) * z / f
}
