package labelio

import (
	"github.com/swdee/go-seglabel"
	"github.com/swdee/go-seglabel/annotation"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// FrameWriter writes the per-frame label file {Dir}/{Name}_{frame}.txt for
// each saved frame
type FrameWriter struct {
	Dir     string
	Name    string
	Classes seglabel.Classes
	Log     *zap.SugaredLogger
}

// Path returns the label file path of a frame
func (w *FrameWriter) Path(frame int) string {
	return FramePath(w.Dir, w.Name, frame, LabelExt)
}

// Lines converts boxes to label lines.  Boxes with a class outside the class
// list are left out and reported as ClassIndexErrors.
func (w *FrameWriter) Lines(width, height int, boxes []annotation.Box) ([]YOLOLine, error) {

	var (
		lines []YOLOLine
		errs  error
	)

	for _, b := range boxes {
		if err := w.Classes.Check(b.ClassID); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		lines = append(lines, NewYOLOLine(b.Bounds, b.ClassID, width, height))
	}

	return lines, errs
}

// WriteFrame replaces the label file of frame with the boxes, an empty box
// list writes an empty file
func (w *FrameWriter) WriteFrame(frame, width, height int, boxes []annotation.Box) error {

	lines, classErrs := w.Lines(width, height, boxes)

	if classErrs != nil {
		seglabel.OrNop(w.Log).Warnw("skipped boxes", "frame", frame, "error", classErrs)
	}

	if err := WriteYOLO(w.Path(frame), lines); err != nil {
		return multierr.Append(classErrs, err)
	}

	return classErrs
}
