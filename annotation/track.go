package annotation

import (
	"github.com/swdee/go-seglabel/geometry"
	"github.com/swdee/go-seglabel/raster"
	"github.com/swdee/go-seglabel/region"
)

// TrackRecord is one line of the track history, a box of a track in a frame
// with its camera-space position
type TrackRecord struct {
	Frame      int
	TrackID    int
	XMin       int
	YMin       int
	Width      int
	Height     int
	Confidence int
	X          float64
	Y          float64
	Z          float64
}

// NewTrackRecord builds the record of box b in frame at position p
func NewTrackRecord(frame, trackID int, b region.Bounds, p Position) TrackRecord {
	return TrackRecord{
		Frame:      frame,
		TrackID:    trackID,
		XMin:       b.XMin,
		YMin:       b.YMin,
		Width:      b.Width(),
		Height:     b.Height(),
		Confidence: 1,
		X:          p.X,
		Y:          p.Y,
		Z:          p.Z,
	}
}

// Position is a camera-space point and the depth sampling step that
// produced it
type Position struct {
	X      float64
	Y      float64
	Z      float64
	Source geometry.DepthSource
}

// Locator recovers the camera-space position of boxes using one shared
// camera model
type Locator struct {
	camera *geometry.CameraModel
}

// NewLocator returns a locator for the camera
func NewLocator(camera *geometry.CameraModel) *Locator {
	return &Locator{camera: camera}
}

// Camera returns the camera model
func (l *Locator) Camera() *geometry.CameraModel {
	return l.camera
}

// Locate back-projects the centre of box b, given in pixels of a colour raster
// of colorWidth x colorHeight, using the paired depth raster.  The centre is
// rescaled to the configured camera resolution first.  A nil depth raster
// yields the origin.
func (l *Locator) Locate(depth *raster.FloatRaster, colorWidth, colorHeight int, b region.Bounds, covered geometry.Coverage) Position {

	if depth == nil {
		return Position{Source: geometry.SourceNone}
	}

	z, src := geometry.SampleDepth(depth, colorWidth, colorHeight, b, covered)

	u, v := b.Center()
	u, v = geometry.NewScaler(colorWidth, colorHeight, l.camera.Width, l.camera.Height).Point(u, v)

	x, y, z := l.camera.PixelToPoint(u, v, z)

	return Position{X: x, Y: y, Z: z, Source: src}
}
