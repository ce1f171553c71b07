package raster

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorsCause(err error) error {
	return errors.Cause(err)
}

func TestRange(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name     string
		data     []float32
		min, max float32
		ok       bool
	}{
		{"finite", []float32{3, -1, 7, 2}, -1, 7, true},
		{"skips non finite", []float32{nan, 4, inf, 2}, 2, 4, true},
		{"all invalid", []float32{nan, inf, nan, inf}, 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &FloatRaster{Width: 2, Height: 2, Channels: 1, Data: tc.data}
			minV, maxV, ok := r.Range()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.min, minV)
			assert.Equal(t, tc.max, maxV)
		})
	}
}

func TestNormalize8(t *testing.T) {
	r := &FloatRaster{Width: 3, Height: 1, Channels: 1, Data: []float32{0, 5, 10}}

	assert.Equal(t, []byte{0, 127, 255}, r.Normalize8(false))
	assert.Equal(t, []byte{255, 127, 0}, r.Normalize8(true))

	flat := Fill(2, 2, 4)
	assert.Equal(t, []byte{0, 0, 0, 0}, flat.Normalize8(false))
}

func TestChannelAndClone(t *testing.T) {
	r, err := NewFloatRaster(2, 1, 3)
	require.NoError(t, err)
	copy(r.Data, []float32{1, 2, 3, 4, 5, 6})

	g := r.Channel(1)
	assert.Equal(t, 1, g.Channels)
	assert.Equal(t, []float32{2, 5}, g.Data)
	assert.Equal(t, float32(6), r.AtChannel(1, 0, 2))
	assert.Equal(t, float32(4), r.At(1, 0))

	c := r.Clone()
	c.Data[0] = 99
	assert.Equal(t, float32(1), r.Data[0])

	_, err = NewFloatRaster(0, 1, 1)
	assert.Error(t, err)
	_, err = NewFloatRaster(1, 1, 2)
	assert.Error(t, err)
}

func TestColorRoundTrip(t *testing.T) {
	in := FillColor(6, 4, RGB{10, 20, 30})
	in.FillRect(1, 1, 2, 2, RGB{200, 0, 50})

	path := filepath.Join(t.TempDir(), "nested", "seg.png")
	require.NoError(t, WriteColor(path, in))

	out, err := ReadColor(path)
	require.NoError(t, err)

	assert.Equal(t, in.Width, out.Width)
	assert.Equal(t, in.Height, out.Height)
	assert.Equal(t, in.Pix, out.Pix)
	assert.Equal(t, RGB{200, 0, 50}, out.At(2, 2))
	assert.Equal(t, RGB{10, 20, 30}, out.At(3, 0))
}

func TestWriteColorReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Img0_1.png")

	require.NoError(t, WriteColor(path, FillColor(3, 2, RGB{1, 2, 3})))
	require.NoError(t, WriteColor(path, FillColor(3, 2, RGB{40, 50, 60})))

	out, err := ReadColor(path)
	require.NoError(t, err)
	assert.Equal(t, RGB{40, 50, 60}, out.At(0, 0))

	// only the final file remains, no temporary files
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Img0_1.png", entries[0].Name())

	assert.Error(t, WriteColor(filepath.Join(dir, "noext"), FillColor(1, 1, RGB{})))
}

func TestReadColorMissing(t *testing.T) {
	_, err := ReadColor(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))
}
