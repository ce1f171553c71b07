package annotation

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/swdee/go-seglabel"
	"github.com/swdee/go-seglabel/geometry"
	"github.com/swdee/go-seglabel/raster"
	"github.com/swdee/go-seglabel/region"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// ErrNoProvisional is returned by Confirm when there is no box to confirm
	ErrNoProvisional = errors.New("no provisional box")
	// ErrNoFrames is returned when the frame source is empty
	ErrNoFrames = errors.New("no frames to label")
)

// FrameSource supplies the ordered frame numbers of a sequence and the colour
// raster of each frame
type FrameSource interface {
	Frames() []int
	Color(frame int) (*raster.ColorRaster, error)
}

// DepthSource supplies the depth raster of a frame
type DepthSource interface {
	Depth(frame int) (*raster.FloatRaster, error)
}

// FrameSink persists the confirmed boxes of a frame, width and height are the
// size of the colour raster the boxes were picked on
type FrameSink interface {
	WriteFrame(frame, width, height int, boxes []Box) error
}

// PickResult describes what a pick did
type PickResult int

const (
	// PickProvisional means a new provisional box was created
	PickProvisional PickResult = iota
	// PickRemoved means a confirmed box under the pick was deleted
	PickRemoved
)

// Store is the manual labeling state machine.  It tracks the boxes of the
// current frame, at most one of which is provisional, and the confirmed
// boxes of every frame visited.
type Store struct {
	session *Session
	classes seglabel.Classes
	source  FrameSource
	sink    FrameSink
	log     *zap.SugaredLogger

	frames []int
	index  int
	color  *raster.ColorRaster
	boxes  []Box

	// confirmed boxes of visited frames, reloaded when a frame is revisited
	saved map[int][]Box
	// confirmed boxes per frame for track export, replaced on each save
	aggregate map[int]FrameBoxes
}

// NewStore returns a store positioned at the first frame of source
func NewStore(session *Session, classes seglabel.Classes, source FrameSource, sink FrameSink, logger *zap.SugaredLogger) (*Store, error) {

	frames := source.Frames()

	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	s := &Store{
		session:   session,
		classes:   classes,
		source:    source,
		sink:      sink,
		log:       seglabel.OrNop(logger),
		frames:    frames,
		saved:     make(map[int][]Box),
		aggregate: make(map[int]FrameBoxes),
	}

	if err := s.load(0); err != nil {
		return nil, err
	}

	return s, nil
}

// Frame returns the current frame number
func (s *Store) Frame() int {
	return s.frames[s.index]
}

// Index returns the position of the current frame in the sequence
func (s *Store) Index() int {
	return s.index
}

// Boxes returns a copy of the current frame's boxes
func (s *Store) Boxes() []Box {
	return slices.Clone(s.boxes)
}

// Provisional returns the unconfirmed box of the current frame, if any
func (s *Store) Provisional() (Box, bool) {
	return lo.Find(s.boxes, func(b Box) bool { return !b.Confirmed })
}

// Pick handles a pick at pixel x,y of the current frame.  A pick inside a
// confirmed box removes that box.  Otherwise the provisional box is replaced
// by the bounds of the exact colour component under the pick.
func (s *Store) Pick(x, y, classID int) (PickResult, error) {

	if err := s.classes.Check(classID); err != nil {
		return 0, err
	}

	if !s.color.InBounds(x, y) {
		return 0, region.ErrOutOfBounds
	}

	for i, b := range s.boxes {
		if b.Confirmed && b.Contains(x, y) {
			s.boxes = slices.Delete(s.boxes, i, i+1)
			s.log.Debugw("removed box", "frame", s.Frame(), "box", b.String())
			return PickRemoved, nil
		}
	}

	comp, err := region.SeededComponent(s.color, x, y)

	if err != nil {
		return 0, err
	}

	s.dropProvisional()

	s.boxes = append(s.boxes, Box{
		Bounds:  comp.Bounds,
		Color:   comp.Color,
		ClassID: classID,
		TrackID: Unassigned,
	})

	return PickProvisional, nil
}

// Confirm assigns the next track ID to the provisional box
func (s *Store) Confirm() (Box, error) {

	for i := range s.boxes {
		if s.boxes[i].Confirmed {
			continue
		}

		s.boxes[i].TrackID = s.session.NextTrackID()
		s.boxes[i].Confirmed = true

		return s.boxes[i], nil
	}

	return Box{}, ErrNoProvisional
}

// Cancel discards the provisional box, it reports whether there was one
func (s *Store) Cancel() bool {
	return s.dropProvisional()
}

func (s *Store) dropProvisional() bool {
	n := len(s.boxes)
	s.boxes = lo.Filter(s.boxes, func(b Box, _ int) bool { return b.Confirmed })
	return len(s.boxes) != n
}

// Next saves the current frame and moves to the following one.  It is a
// no-op at the last frame.
func (s *Store) Next() (bool, error) {
	if s.index >= len(s.frames)-1 {
		return false, nil
	}
	return true, s.move(s.index + 1)
}

// Previous saves the current frame and moves to the preceding one.  It is a
// no-op at the first frame.
func (s *Store) Previous() (bool, error) {
	if s.index == 0 {
		return false, nil
	}
	return true, s.move(s.index - 1)
}

func (s *Store) move(index int) error {

	if err := s.Save(); err != nil {
		return err
	}

	return s.load(index)
}

// Save persists the confirmed boxes of the current frame through the sink
// and records them for track export, replacing any earlier save of the frame
func (s *Store) Save() error {

	frame := s.Frame()
	confirmed := lo.Filter(s.boxes, func(b Box, _ int) bool { return b.Confirmed })

	s.saved[frame] = confirmed
	s.aggregate[frame] = FrameBoxes{
		Frame:  frame,
		Width:  s.color.Width,
		Height: s.color.Height,
		Boxes:  confirmed,
	}

	if s.sink == nil {
		return nil
	}

	if err := s.sink.WriteFrame(frame, s.color.Width, s.color.Height, confirmed); err != nil {
		return errors.Wrapf(err, "error saving frame %d", frame)
	}

	return nil
}

// load makes frames[index] current with its previously confirmed boxes
func (s *Store) load(index int) error {

	frame := s.frames[index]
	color, err := s.source.Color(frame)

	if err != nil {
		return errors.Wrapf(err, "error loading frame %d", frame)
	}

	s.index = index
	s.color = color
	s.boxes = slices.Clone(s.saved[frame])

	return nil
}

// Aggregate returns the saved confirmed boxes of every frame in sequence
// order
func (s *Store) Aggregate() []FrameBoxes {

	frames := lo.Keys(s.aggregate)
	slices.Sort(frames)

	return lo.Map(frames, func(f int, _ int) FrameBoxes { return s.aggregate[f] })
}

// Tracks converts the aggregate into track records.  Depth is sampled over
// the pixels of each box's colour.  Frames whose depth raster cannot be read
// are still exported with a zero position and the error is returned
// alongside the records.
func (s *Store) Tracks(depths DepthSource, loc *Locator) ([]TrackRecord, error) {

	var (
		records []TrackRecord
		errs    error
	)

	for _, fb := range s.Aggregate() {
		if len(fb.Boxes) == 0 {
			continue
		}

		depth, err := depths.Depth(fb.Frame)

		if err != nil {
			s.log.Warnw("depth unavailable", "frame", fb.Frame, "error", err)
			errs = multierr.Append(errs, errors.Wrapf(err, "frame %d", fb.Frame))
			depth = nil
		}

		var color *raster.ColorRaster

		if depth != nil {
			if color, err = s.source.Color(fb.Frame); err != nil {
				s.log.Warnw("colour unavailable", "frame", fb.Frame, "error", err)
				errs = multierr.Append(errs, errors.Wrapf(err, "frame %d", fb.Frame))
				depth = nil
			}
		}

		for _, b := range fb.Boxes {
			var covered geometry.Coverage

			if color != nil {
				covered = region.ExactMask(color, b.Color)
			}

			p := loc.Locate(depth, fb.Width, fb.Height, b.Bounds, covered)
			records = append(records, NewTrackRecord(fb.Frame, b.TrackID, b.Bounds, p))
		}
	}

	return records, errs
}
