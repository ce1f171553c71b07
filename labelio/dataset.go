package labelio

import (
	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel/raster"
)

// Dataset is a folder of paired segmentation and depth frames named
// {LabelPrefix}_{n}.png and {DepthPrefix}_{n}.pfm
type Dataset struct {
	Dir         string
	LabelPrefix string
	DepthPrefix string
	seq         Sequence
	byNumber    map[int]string
}

// OpenDataset scans dir for the segmentation frames
func OpenDataset(dir, labelPrefix, depthPrefix string) (*Dataset, error) {

	seq, err := ScanSequence(dir, labelPrefix, ColorExts...)

	if err != nil {
		return nil, err
	}

	d := &Dataset{
		Dir:         dir,
		LabelPrefix: labelPrefix,
		DepthPrefix: depthPrefix,
		seq:         seq,
		byNumber:    make(map[int]string, len(seq)),
	}

	for _, f := range seq {
		d.byNumber[f.Number] = f.Path
	}

	return d, nil
}

// Sequence returns the segmentation frames
func (d *Dataset) Sequence() Sequence {
	return d.seq
}

// Frames returns the frame numbers in order
func (d *Dataset) Frames() []int {
	return d.seq.Numbers()
}

// Color reads the segmentation raster of a frame
func (d *Dataset) Color(frame int) (*raster.ColorRaster, error) {

	path, ok := d.byNumber[frame]

	if !ok {
		return nil, errors.Errorf("frame %d not in dataset %s", frame, d.Dir)
	}

	return raster.ReadColor(path)
}

// DepthPath returns the depth raster path of a frame
func (d *Dataset) DepthPath(frame int) string {
	return FramePath(d.Dir, d.DepthPrefix, frame, raster.PFMExt)
}

// Depth reads the depth raster of a frame, multi-channel rasters are reduced
// to their first channel
func (d *Dataset) Depth(frame int) (*raster.FloatRaster, error) {

	r, err := raster.ReadFloat(d.DepthPath(frame))

	if err != nil {
		return nil, err
	}

	if r.Channels > 1 {
		r = r.Channel(0)
	}

	return r, nil
}
