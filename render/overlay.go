package render

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel"
	"github.com/swdee/go-seglabel/annotation"
	"github.com/swdee/go-seglabel/geometry"
	"github.com/swdee/go-seglabel/labelio"
	"github.com/swdee/go-seglabel/raster"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// LoadFrame reads a frame for display.  Float rasters are colour mapped
// from their own value range and flipped upright, as PFM rows are stored
// bottom to top.  The caller must close the returned Mat.
func LoadFrame(path string) (gocv.Mat, error) {

	if !strings.EqualFold(filepath.Ext(path), raster.PFMExt) {
		img := gocv.IMRead(path, gocv.IMReadColor)

		if img.Empty() {
			img.Close()
			return gocv.NewMat(), errors.Errorf("error reading frame %s", path)
		}

		return img, nil
	}

	fr, err := raster.ReadFloat(path)

	if err != nil {
		return gocv.NewMat(), err
	}

	preview, err := raster.PreviewMat(fr.Channel(0), gocv.ColormapJet, false)

	if err != nil {
		return gocv.NewMat(), err
	}

	defer preview.Close()

	upright := gocv.NewMat()
	gocv.Flip(preview, &upright, 0)

	return upright, nil
}

// Overlay draws the labels of a frame over its image
type Overlay struct {
	Classes       seglabel.Classes
	Font          Font
	LineThickness int

	// Labels is the per-frame label file writer whose files are drawn, nil
	// skips them
	Labels *labelio.FrameWriter

	// Tracks are the track history records to draw, grouped by frame
	Tracks map[int][]annotation.TrackRecord
	// LabelWidth and LabelHeight are the size of the images the tracks were
	// labeled on, 0 when the same as the drawn image
	LabelWidth  int
	LabelHeight int

	// History and Camera enable trails of each track's projected path
	History *labelio.History
	Camera  *geometry.CameraModel
	Trail   TrailStyle

	Log *zap.SugaredLogger
}

// NewOverlay returns an overlay with the default font and trail style
func NewOverlay(classes seglabel.Classes) *Overlay {
	return &Overlay{
		Classes:       classes,
		Font:          DefaultFont(),
		LineThickness: 2,
		Trail:         DefaultTrailStyle(),
	}
}

// SetTracks groups track records by frame for drawing
func (o *Overlay) SetTracks(recs []annotation.TrackRecord) {
	o.Tracks = make(map[int][]annotation.TrackRecord)
	for _, r := range recs {
		o.Tracks[r.Frame] = append(o.Tracks[r.Frame], r)
	}
}

// Draw paints trails, track boxes and label boxes of frame onto img.  A
// missing or unreadable label file leaves the frame without label boxes.
func (o *Overlay) Draw(img *gocv.Mat, frame int) {

	log := seglabel.OrNop(o.Log)

	if o.History != nil && o.Camera != nil {
		Trail(img, o.History, o.Camera, frame, o.Trail)
	}

	if recs := o.Tracks[frame]; len(recs) > 0 {
		TrackBoxes(img, recs, o.LabelWidth, o.LabelHeight, o.Font, o.LineThickness)
	}

	if o.Labels == nil {
		return
	}

	lines, skipped, err := labelio.ReadYOLO(o.Labels.Path(frame))

	if err != nil {
		log.Debugw("no labels drawn", "frame", frame, "error", err)
		return
	}

	if skipped > 0 {
		log.Warnw("malformed label lines skipped", "frame", frame, "lines", skipped)
	}

	LabelBoxes(img, lines, o.Classes, o.Font, o.LineThickness)
}
