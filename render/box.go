// Package render draws label files over frames and assembles the frames into
// animations for review.
package render

import (
	"fmt"
	"image"

	"github.com/swdee/go-seglabel"
	"github.com/swdee/go-seglabel/annotation"
	"github.com/swdee/go-seglabel/geometry"
	"github.com/swdee/go-seglabel/labelio"
	"gocv.io/x/gocv"
)

// LabelBoxes draws normalized box label lines over img, each box coloured by
// class and captioned with the class name
func LabelBoxes(img *gocv.Mat, lines []labelio.YOLOLine, classes seglabel.Classes,
	font Font, lineThickness int) {

	labels := make([]boxLabel, 0, len(lines))

	for _, l := range lines {
		b := l.Bounds(img.Cols(), img.Rows())
		clr := PaletteColor(l.ClassID)

		rect := image.Rect(b.XMin, b.YMin, b.XMax, b.YMax)
		gocv.Rectangle(img, rect, clr, lineThickness)

		text, err := classes.Name(l.ClassID)

		if err != nil {
			text = fmt.Sprintf("class %d", l.ClassID)
		}

		labels = append(labels, font.place(text, rect, clr, lineThickness))
	}

	font.draw(img, labels)
}

// TrackBoxes draws track history records over img, each box coloured by
// track and captioned with the track id and camera-space position.  Record
// pixel coordinates are at the scale of the image they were labeled on,
// srcWidth by srcHeight, and are rescaled to img.
func TrackBoxes(img *gocv.Mat, recs []annotation.TrackRecord, srcWidth, srcHeight int,
	font Font, lineThickness int) {

	sx, sy := scale(img, srcWidth, srcHeight)
	labels := make([]boxLabel, 0, len(recs))

	for _, r := range recs {
		clr := PaletteColor(r.TrackID)

		rect := image.Rect(int(float64(r.XMin)*sx), int(float64(r.YMin)*sy),
			int(float64(r.XMin+r.Width)*sx), int(float64(r.YMin+r.Height)*sy))
		gocv.Rectangle(img, rect, clr, lineThickness)

		text := fmt.Sprintf("ID:%d X:%.2f Y:%.2f Z:%.2fm", r.TrackID, r.X, r.Y, r.Z)
		labels = append(labels, font.place(text, rect, clr, lineThickness))
	}

	font.draw(img, labels)
}

// scale returns the factors mapping srcWidth x srcHeight pixels onto img,
// a zero source size means no scaling
func scale(img *gocv.Mat, srcWidth, srcHeight int) (float64, float64) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return 1, 1
	}
	s := geometry.NewScaler(srcWidth, srcHeight, img.Cols(), img.Rows())
	return s.ScaleX(), s.ScaleY()
}
