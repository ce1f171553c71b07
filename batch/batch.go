// Package batch runs bulk labeling, applying a fixed list of colour
// selectors to every frame of a sequence.
package batch

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel"
	"github.com/swdee/go-seglabel/annotation"
	"github.com/swdee/go-seglabel/internal/fsutil"
	"github.com/swdee/go-seglabel/labelio"
	"github.com/swdee/go-seglabel/raster"
	"github.com/swdee/go-seglabel/region"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source supplies the frames of a bulk run, *labelio.Dataset satisfies it
type Source interface {
	annotation.FrameSource
	annotation.DepthSource
}

// Driver applies colour selectors to every frame of Source and writes the
// per-frame label files and the track history
type Driver struct {
	Params  seglabel.Params
	Classes seglabel.Classes
	Locator *annotation.Locator
	Session *annotation.Session
	Source  Source
	Log     *zap.SugaredLogger
	// Workers is the number of frames processed in parallel, values below 1
	// process frames one at a time
	Workers int
}

// Report summarises a bulk run
type Report struct {
	// Frames is the number of frames in the sequence
	Frames int
	// Loaded is the number of frames whose colour raster was read
	Loaded int
	// Emitted, Suppressed and NotFound count selector outcomes over all frames
	Emitted    int
	Suppressed int
	NotFound   int
	// Tracks are the records written to the track history, in frame order
	Tracks []annotation.TrackRecord
	// Errors accumulates per-frame and per-selector failures
	Errors error
}

// Err returns the accumulated errors of the run
func (r *Report) Err() error {
	return r.Errors
}

// assigned is a selector with its session track id
type assigned struct {
	region.Selector
	trackID int
}

// frameResult is the read-only outcome of one frame, gathered before writing
type frameResult struct {
	frame      int
	loaded     bool
	width      int
	height     int
	lines      []labelio.YOLOLine
	tracks     []annotation.TrackRecord
	emitted    int
	suppressed int
	notFound   int
	err        error
}

// Run labels every frame with the selectors in the given order.  Duplicate
// selectors are processed as separate entries and share the track id of
// their key.  Failures to read a frame are recorded in the report and do not
// stop the run.
func (d *Driver) Run(ctx context.Context, selectors []region.Selector) (*Report, error) {

	log := seglabel.OrNop(d.Log)
	report := &Report{}

	// track ids are assigned in selector order before any frame is read
	var active []assigned

	for _, sel := range selectors {
		if err := d.Classes.Check(sel.ClassID); err != nil {
			log.Warnw("skipping selector", "key", sel.Key().String(), "error", err)
			report.Errors = multierr.Append(report.Errors, err)
			continue
		}

		id, created := d.Session.TrackIDFor(sel.Key())

		if created {
			log.Debugw("assigned track", "key", sel.Key().String(), "track", id)
		}

		active = append(active, assigned{Selector: sel, trackID: id})
	}

	if err := d.prepareOutputs(); err != nil {
		return nil, err
	}

	frames := d.Source.Frames()
	report.Frames = len(frames)
	results := make([]frameResult, len(frames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(d.Workers, 1))

	for i, frame := range frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = d.processFrame(frame, active)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range results {
		if res.err != nil {
			log.Warnw("frame skipped", "frame", res.frame, "error", res.err)
			report.Errors = multierr.Append(report.Errors, res.err)
		}

		if !res.loaded {
			continue
		}

		report.Loaded++
		report.Emitted += res.emitted
		report.Suppressed += res.suppressed
		report.NotFound += res.notFound
		report.Tracks = append(report.Tracks, res.tracks...)

		if d.Params.Format.YOLO() {
			path := labelio.FramePath(d.Params.YOLODir, d.Params.OutputName, res.frame, labelio.LabelExt)

			if err := labelio.WriteYOLO(path, res.lines); err != nil {
				report.Errors = multierr.Append(report.Errors, err)
			}
		}
	}

	if d.Params.Format.MOT() {
		if err := labelio.WriteTracks(d.TrackPath(), report.Tracks); err != nil {
			return report, err
		}
	}

	log.Infow("bulk labeling complete", "frames", report.Frames, "loaded", report.Loaded,
		"emitted", report.Emitted, "suppressed", report.Suppressed, "tracks", len(report.Tracks))

	return report, nil
}

// TrackPath returns the track history file written at the end of a run
func (d *Driver) TrackPath() string {
	return filepath.Join(d.Params.MOTDir, d.Params.OutputName+labelio.LabelExt)
}

// prepareOutputs creates the output folders and removes label files of
// earlier runs
func (d *Driver) prepareOutputs() error {

	var dirs []string

	if d.Params.Format.YOLO() {
		dirs = append(dirs, d.Params.YOLODir)
	}

	if d.Params.Format.MOT() {
		dirs = append(dirs, d.Params.MOTDir)
	}

	for _, dir := range dirs {
		if err := fsutil.EnsureDir(dir); err != nil {
			return err
		}

		if _, err := fsutil.RemoveMatching(dir, "*"+labelio.LabelExt); err != nil {
			return err
		}
	}

	return nil
}

// processFrame extracts every selector from one frame without writing
func (d *Driver) processFrame(frame int, active []assigned) frameResult {

	res := frameResult{frame: frame}

	color, err := d.Source.Color(frame)

	if err != nil {
		res.err = errors.Wrapf(err, "frame %d", frame)
		return res
	}

	res.loaded = true
	res.width = color.Width
	res.height = color.Height

	var (
		depth       *raster.FloatRaster
		depthLoaded bool
	)

	for _, sel := range active {
		det := region.Extract(color, sel.Selector, d.Params.Threshold)

		switch det.Status {
		case region.BelowThreshold:
			res.suppressed++
			continue
		case region.NotFound:
			res.notFound++
			continue
		}

		res.emitted++
		res.lines = append(res.lines, labelio.NewYOLOLine(det.Bounds, sel.ClassID, color.Width, color.Height))

		// depth is only read for frames with at least one box
		if !depthLoaded {
			depthLoaded = true
			depth, err = d.Source.Depth(frame)

			if err != nil {
				res.err = errors.Wrapf(err, "frame %d depth", frame)
				depth = nil
			}
		}

		p := d.Locator.Locate(depth, color.Width, color.Height, det.Bounds, det.Mask)
		res.tracks = append(res.tracks, annotation.NewTrackRecord(frame, sel.trackID, det.Bounds, p))
	}

	return res
}
