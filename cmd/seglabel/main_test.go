package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-seglabel"
	"github.com/swdee/go-seglabel/annotation"
	"github.com/swdee/go-seglabel/raster"
)

func TestParsePick(t *testing.T) {
	p, err := parsePick("12, 7,2")
	require.NoError(t, err)
	assert.Equal(t, pick{x: 12, y: 7, classID: 2, frame: -1}, p)

	p, err = parsePick("1,2,0,5")
	require.NoError(t, err)
	assert.Equal(t, 5, p.frame)

	for _, bad := range []string{"", "1,2", "1,2,3,4,5", "a,2,3"} {
		_, err := parsePick(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseFrame(t *testing.T) {
	f, err := parseFrame("42")
	require.NoError(t, err)
	assert.Equal(t, 42, f)

	_, err = parseFrame("-1")
	assert.Error(t, err)

	_, err = parseFrame("x")
	assert.Error(t, err)
}

// twoFrames is a two frame source with a red square in each frame
type twoFrames struct {
	colors map[int]*raster.ColorRaster
}

func newTwoFrames() *twoFrames {
	m := &twoFrames{colors: make(map[int]*raster.ColorRaster)}
	for _, f := range []int{1, 2} {
		c := raster.FillColor(20, 10, raster.RGB{0, 0, 0})
		c.FillRect(2, 3, 5, 6, raster.RGB{255, 0, 0})
		m.colors[f] = c
	}
	return m
}

func (m *twoFrames) Frames() []int { return []int{1, 2} }

func (m *twoFrames) Color(frame int) (*raster.ColorRaster, error) {
	c, ok := m.colors[frame]
	if !ok {
		return nil, errors.Errorf("no frame %d", frame)
	}
	return c, nil
}

func TestRunScript(t *testing.T) {
	store, err := annotation.NewStore(annotation.NewSession(), seglabel.Classes{"car", "person"},
		newTwoFrames(), nil, nil)
	require.NoError(t, err)

	script := strings.Join([]string{
		"# label the square on both frames",
		"pick 3 4 1",
		"confirm",
		"boxes",
		"prev",
		"next",
		"pick 4 5 0",
		"confirm",
		"pick 3 3 0",
		"pick 99 99 0",
		"pick 1 1 7",
		"jump",
		"quit",
		"frame",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, runScript(store, strings.NewReader(script), &out))

	assert.Equal(t, strings.Join([]string{
		"frame 1",
		"provisional class 1 (2,3,5,6)",
		"confirmed track 1 class 1 (2,3,5,6)",
		"track 1 class 1 (2,3,5,6)",
		"frame 2",
		"provisional class 0 (2,3,5,6)",
		"confirmed track 2 class 0 (2,3,5,6)",
		"removed",
		"error: pixel outside raster",
		"error: class id 7 out of range, 2 classes loaded",
		`error: unknown command "jump"`,
		"",
	}, "\n"), out.String())

	// the first frame was saved when moving on
	agg := store.Aggregate()
	require.Len(t, agg, 1)
	assert.Equal(t, 1, agg[0].Frame)
	assert.Len(t, agg[0].Boxes, 1)
}
