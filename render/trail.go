package render

import (
	"image"
	"image/color"
	"math"

	"github.com/swdee/go-seglabel/geometry"
	"github.com/swdee/go-seglabel/labelio"
	"gocv.io/x/gocv"
)

// TrailStyle defines the parameters used for rendering the trail style
type TrailStyle struct {
	// LineSame defines if the color of the trail line should be the
	// same color as that of the track's box.  If set to false then use
	// the color specified at LineColor
	LineSame      bool
	LineColor     color.RGBA
	LineThickness int
	// CircleSame defines if the color of the current point circle should be
	// the same color as that of the track's box.  If set to false then use
	// the color specified at CircleColor
	CircleSame   bool
	CircleColor  color.RGBA
	CircleRadius int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		LineSame:      false,
		LineColor:     Yellow,
		LineThickness: 1,
		CircleSame:    true,
		CircleColor:   Pink,
		CircleRadius:  3,
	}
}

// TrailPoints projects the camera-space history of a track up to and
// including frame back onto the image plane of camera.  Points without
// depth are left out.
func TrailPoints(history *labelio.History, camera *geometry.CameraModel, trackID, frame int) []image.Point {

	var out []image.Point

	for _, p := range history.Points(trackID) {
		if p.Frame > frame {
			break
		}

		u, v, ok := camera.PointToPixel(p.X, p.Y, p.Z)

		if !ok {
			continue
		}

		out = append(out, image.Pt(int(math.Round(u)), int(math.Round(v))))
	}

	return out
}

// Trail draws the path of every track of history up to frame on img.  Paths
// are projected with camera and rescaled from the camera resolution to img.
func Trail(img *gocv.Mat, history *labelio.History, camera *geometry.CameraModel,
	frame int, style TrailStyle) {

	sx, sy := scale(img, camera.Width, camera.Height)

	for _, id := range history.IDs() {

		objClr := PaletteColor(id)

		// determine style colors to use
		lineClr := objClr
		circleClr := objClr

		if !style.LineSame {
			lineClr = style.LineColor
		}

		if !style.CircleSame {
			circleClr = style.CircleColor
		}

		points := TrailPoints(history, camera, id, frame)

		for i := range points {
			points[i] = image.Pt(int(float64(points[i].X)*sx), int(float64(points[i].Y)*sy))
		}

		for i := 1; i < len(points); i++ {
			gocv.Line(img, points[i-1], points[i], lineClr, style.LineThickness)
		}

		if len(points) > 0 {
			gocv.Circle(img, points[len(points)-1], style.CircleRadius, circleClr, -1)
		}
	}
}
