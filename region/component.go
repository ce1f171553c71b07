package region

import (
	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel/raster"
	"gocv.io/x/gocv"
)

// column indexes of the stats Mat returned by ConnectedComponentsWithStats
const (
	statLeft = iota
	statTop
	statWidth
	statHeight
	statArea
)

// ErrOutOfBounds is returned when a seed pixel lies outside the raster
var ErrOutOfBounds = errors.New("pixel outside raster")

// Point is a sub-pixel image location
type Point struct {
	X float64
	Y float64
}

// Component is the 8-connected region of exactly equal colour containing a
// seed pixel
type Component struct {
	Color    raster.RGB
	Bounds   Bounds
	Area     int
	Centroid Point
}

// SeededComponent labels the exact colour mask at the colour of pixel x,y and
// returns the 8-connected component containing that pixel
func SeededComponent(c *raster.ColorRaster, x, y int) (Component, error) {

	if !c.InBounds(x, y) {
		return Component{}, ErrOutOfBounds
	}

	color := c.At(x, y)
	mask := ExactMask(c, color)

	maskMat, err := gocv.NewMatFromBytes(mask.Height, mask.Width, gocv.MatTypeCV8U, mask.Bytes())

	if err != nil {
		return Component{}, errors.Wrap(err, "error creating mask mat")
	}

	defer maskMat.Close()

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	// default connectivity is 8
	gocv.ConnectedComponentsWithStats(maskMat, &labels, &stats, &centroids)

	label := int(labels.GetIntAt(y, x))

	// the seed always matches its own colour so label 0 (background) is
	// never expected here
	if label <= 0 {
		return Component{}, errors.Errorf("seed %d,%d not labelled", x, y)
	}

	left := int(stats.GetIntAt(label, statLeft))
	top := int(stats.GetIntAt(label, statTop))

	return Component{
		Color: color,
		Bounds: Bounds{
			XMin: left,
			YMin: top,
			XMax: left + int(stats.GetIntAt(label, statWidth)) - 1,
			YMax: top + int(stats.GetIntAt(label, statHeight)) - 1,
		},
		Area: int(stats.GetIntAt(label, statArea)),
		Centroid: Point{
			X: centroids.GetDoubleAt(label, 0),
			Y: centroids.GetDoubleAt(label, 1),
		},
	}, nil
}
