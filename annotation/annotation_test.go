package annotation

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-seglabel"
	"github.com/swdee/go-seglabel/geometry"
	"github.com/swdee/go-seglabel/raster"
	"github.com/swdee/go-seglabel/region"
)

var (
	red   = raster.RGB{200, 0, 0}
	green = raster.RGB{0, 200, 0}
	blue  = raster.RGB{0, 0, 200}
)

// memFrames is an in-memory frame, depth and label store
type memFrames struct {
	frames  []int
	colors  map[int]*raster.ColorRaster
	depths  map[int]*raster.FloatRaster
	written map[int][]Box
	writes  int
}

func newMemFrames(frames ...int) *memFrames {
	m := &memFrames{
		frames:  frames,
		colors:  make(map[int]*raster.ColorRaster),
		depths:  make(map[int]*raster.FloatRaster),
		written: make(map[int][]Box),
	}
	for _, f := range frames {
		c := raster.FillColor(20, 10, raster.RGB{0, 0, 0})
		c.FillRect(1, 1, 4, 4, red)
		c.FillRect(10, 2, 12, 8, green)
		c.FillRect(15, 6, 16, 7, blue)
		m.colors[f] = c
		m.depths[f] = raster.Fill(20, 10, 4)
	}
	return m
}

func (m *memFrames) Frames() []int { return m.frames }

func (m *memFrames) Color(frame int) (*raster.ColorRaster, error) {
	c, ok := m.colors[frame]
	if !ok {
		return nil, errors.Errorf("no frame %d", frame)
	}
	return c, nil
}

func (m *memFrames) Depth(frame int) (*raster.FloatRaster, error) {
	d, ok := m.depths[frame]
	if !ok {
		return nil, errors.Errorf("no depth %d", frame)
	}
	return d, nil
}

func (m *memFrames) WriteFrame(frame, width, height int, boxes []Box) error {
	m.written[frame] = boxes
	m.writes++
	return nil
}

var classes = seglabel.Classes{"car", "person", "sign"}

func newStore(t *testing.T, frames ...int) (*Store, *memFrames) {
	t.Helper()
	m := newMemFrames(frames...)
	s, err := NewStore(NewSession(), classes, m, m, nil)
	require.NoError(t, err)
	return s, m
}

func TestPickConfirmCancel(t *testing.T) {
	s, _ := newStore(t, 1, 2)

	res, err := s.Pick(2, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, PickProvisional, res)

	prov, ok := s.Provisional()
	require.True(t, ok)
	assert.Equal(t, region.Bounds{XMin: 1, YMin: 1, XMax: 4, YMax: 4}, prov.Bounds)
	assert.Equal(t, Unassigned, prov.TrackID)
	assert.False(t, prov.Confirmed)

	// a second pick replaces the provisional box
	_, err = s.Pick(11, 5, 0)
	require.NoError(t, err)
	require.Len(t, s.Boxes(), 1)
	prov, _ = s.Provisional()
	assert.Equal(t, region.Bounds{XMin: 10, YMin: 2, XMax: 12, YMax: 8}, prov.Bounds)

	box, err := s.Confirm()
	require.NoError(t, err)
	assert.Equal(t, 1, box.TrackID)
	assert.True(t, box.Confirmed)

	_, err = s.Confirm()
	assert.ErrorIs(t, err, ErrNoProvisional)

	_, err = s.Pick(15, 6, 2)
	require.NoError(t, err)
	assert.True(t, s.Cancel())
	assert.False(t, s.Cancel())
	assert.Len(t, s.Boxes(), 1)
}

func TestPickRemovesConfirmedBox(t *testing.T) {
	s, _ := newStore(t, 1)

	_, err := s.Pick(2, 2, 0)
	require.NoError(t, err)
	_, err = s.Confirm()
	require.NoError(t, err)

	// the box edge counts as inside
	res, err := s.Pick(4, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, PickRemoved, res)
	assert.Empty(t, s.Boxes())
}

func TestPickErrors(t *testing.T) {
	s, _ := newStore(t, 1)

	_, err := s.Pick(2, 2, 3)
	assert.True(t, seglabel.IsClassIndexError(err))

	_, err = s.Pick(20, 0, 0)
	assert.ErrorIs(t, err, region.ErrOutOfBounds)

	_, err = s.Pick(-1, 0, 0)
	assert.ErrorIs(t, err, region.ErrOutOfBounds)
}

func TestTrackIDsMonotonic(t *testing.T) {
	s, _ := newStore(t, 1, 2, 3)
	picks := [][2]int{{2, 2}, {11, 5}, {15, 6}}

	var ids []int

	for frame := 0; frame < 3; frame++ {
		for _, p := range picks {
			_, err := s.Pick(p[0], p[1], 0)
			require.NoError(t, err)
			box, err := s.Confirm()
			require.NoError(t, err)
			ids = append(ids, box.TrackID)
		}

		// removing boxes never frees their IDs
		_, err := s.Pick(2, 2, 0)
		require.NoError(t, err)

		_, err = s.Next()
		require.NoError(t, err)
	}

	require.Len(t, ids, 9)
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}
}

func TestFrameNavigation(t *testing.T) {
	s, m := newStore(t, 3, 5, 9)

	moved, err := s.Previous()
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Zero(t, m.writes)

	_, err = s.Pick(2, 2, 0)
	require.NoError(t, err)
	_, err = s.Confirm()
	require.NoError(t, err)
	// provisional boxes are not persisted
	_, err = s.Pick(11, 5, 1)
	require.NoError(t, err)

	moved, err = s.Next()
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 5, s.Frame())
	assert.Empty(t, s.Boxes())
	require.Len(t, m.written[3], 1)
	assert.Equal(t, 1, m.written[3][0].TrackID)

	_, err = s.Next()
	require.NoError(t, err)
	moved, err = s.Next()
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, 9, s.Frame())

	// revisiting a frame restores its confirmed boxes
	_, err = s.Previous()
	require.NoError(t, err)
	_, err = s.Previous()
	require.NoError(t, err)
	assert.Equal(t, 3, s.Frame())
	require.Len(t, s.Boxes(), 1)
	assert.True(t, s.Boxes()[0].Confirmed)
}

func TestAggregateReplacedOnRevisit(t *testing.T) {
	s, _ := newStore(t, 1, 2)

	_, err := s.Pick(2, 2, 0)
	require.NoError(t, err)
	_, err = s.Confirm()
	require.NoError(t, err)
	_, err = s.Next()
	require.NoError(t, err)
	_, err = s.Previous()
	require.NoError(t, err)

	_, err = s.Pick(11, 5, 1)
	require.NoError(t, err)
	_, err = s.Confirm()
	require.NoError(t, err)
	require.NoError(t, s.Save())

	agg := s.Aggregate()
	require.Len(t, agg, 2)
	assert.Equal(t, 1, agg[0].Frame)
	assert.Len(t, agg[0].Boxes, 2)
	assert.Equal(t, 2, agg[1].Frame)
	assert.Empty(t, agg[1].Boxes)
}

func TestStoreTracks(t *testing.T) {
	s, m := newStore(t, 1, 2)
	delete(m.depths, 2)

	_, err := s.Pick(11, 5, 0)
	require.NoError(t, err)
	_, err = s.Confirm()
	require.NoError(t, err)
	_, err = s.Next()
	require.NoError(t, err)
	_, err = s.Pick(11, 5, 0)
	require.NoError(t, err)
	_, err = s.Confirm()
	require.NoError(t, err)
	require.NoError(t, s.Save())

	cam, err := geometry.NewCameraModel(90, 20, 10, 1)
	require.NoError(t, err)

	recs, err := s.Tracks(m, NewLocator(cam))
	require.Error(t, err)
	require.Len(t, recs, 2)

	// box (10,2)-(12,8) centre (11,5), principal (10,5), focal 10, depth 4
	assert.Equal(t, TrackRecord{Frame: 1, TrackID: 1, XMin: 10, YMin: 2, Width: 2, Height: 6,
		Confidence: 1, X: 0.4, Y: 0, Z: 4}, recs[0])

	// missing depth exports a zero position
	assert.Equal(t, 2, recs[1].Frame)
	assert.Equal(t, 2, recs[1].TrackID)
	assert.Zero(t, recs[1].Z)
}

func TestStoreTracksSamplesBoxColour(t *testing.T) {
	m := newMemFrames(1)

	// an L shaped object whose box centre (4,4) is background
	c := raster.FillColor(20, 10, raster.RGB{0, 0, 0})
	c.FillRect(0, 0, 8, 1, red)
	c.FillRect(0, 0, 1, 8, red)
	m.colors[1] = c

	d := raster.Fill(20, 10, 50)
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			if c.At(x, y) == red {
				d.Set(x, y, 3)
			}
		}
	}
	m.depths[1] = d

	s, err := NewStore(NewSession(), classes, m, m, nil)
	require.NoError(t, err)

	_, err = s.Pick(0, 0, 0)
	require.NoError(t, err)
	box, err := s.Confirm()
	require.NoError(t, err)
	assert.Equal(t, red, box.Color)
	assert.Equal(t, region.Bounds{XMin: 0, YMin: 0, XMax: 8, YMax: 8}, box.Bounds)
	require.NoError(t, s.Save())

	cam, err := geometry.NewCameraModel(90, 20, 10, 1)
	require.NoError(t, err)

	recs, err := s.Tracks(m, NewLocator(cam))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	// the background depth under the centre is ignored for the object's own
	assert.InDelta(t, 3, recs[0].Z, 1e-9)

	pos := NewLocator(cam).Locate(d, 20, 10, box.Bounds, region.ExactMask(c, red))
	assert.Equal(t, geometry.SourceMaskedMedian, pos.Source)
}

func TestNewStoreErrors(t *testing.T) {
	_, err := NewStore(NewSession(), classes, newMemFrames(), nil, nil)
	assert.ErrorIs(t, err, ErrNoFrames)

	m := newMemFrames(1)
	delete(m.colors, 1)
	_, err = NewStore(NewSession(), classes, m, nil, nil)
	assert.Error(t, err)
}

func TestSessionTrackIDFor(t *testing.T) {
	s := NewSession()
	a := region.Key{ClassID: 0, Color: red}
	b := region.Key{ClassID: 1, Color: red}

	id, created := s.TrackIDFor(a)
	assert.Equal(t, 1, id)
	assert.True(t, created)

	id, created = s.TrackIDFor(b)
	assert.Equal(t, 2, id)
	assert.True(t, created)

	id, created = s.TrackIDFor(a)
	assert.Equal(t, 1, id)
	assert.False(t, created)

	assert.Equal(t, 3, s.NextTrackID())
	assert.Equal(t, []region.Key{a, b}, s.Keys())

	// concurrent allocation never hands out duplicates
	var wg sync.WaitGroup
	seen := make(chan int, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- s.NextTrackID()
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int]bool)
	for id := range seen {
		unique[id] = true
	}
	assert.Len(t, unique, 100)
	assert.Equal(t, 103, s.LastTrackID())
}
