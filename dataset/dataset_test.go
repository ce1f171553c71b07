package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-seglabel/geometry"
	"github.com/swdee/go-seglabel/raster"
)

// writeRaw creates a raw capture folder with count frames of every layer
func writeRaw(t *testing.T, dir string, count int) {
	t.Helper()

	for i := 0; i < count; i++ {
		ts := 1000 + i
		for _, kind := range []string{"left_0", "right_0", "left_5"} {
			name := fmt.Sprintf("img_Cam_%s_%d.png", kind, ts)
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(kind+fmt.Sprint(i)), 0o644))
		}

		depth := raster.Fill(4, 3, float32(i*100))
		depth.Set(0, 0, 0)
		require.NoError(t, raster.WriteFloat(filepath.Join(dir, fmt.Sprintf("img_Cam_left_1_%d.pfm", ts)), depth, raster.DefaultScale))
	}

	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "airsim_rec.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img_Cam_left_3_1000.png"), []byte("x"), 0o644))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		layer Layer
		ok    bool
	}{
		{"img_Cam_left_0_17.png", LeftLayer, true},
		{"img_Cam_right_0_17.png", RightLayer, true},
		{"img_Cam_left_5_17.png", SegLayer, true},
		{"img_Cam_left_1_17.pfm", DepthLayer, true},
		{"img_Cam_left_3_17.png", 0, false},
		{"Cam_left_0_17.png", 0, false},
		{"img_Cam_left_0_17.jpg", 0, false},
	}

	for _, c := range cases {
		layer, ok := Classify(c.name)
		assert.Equal(t, c.ok, ok, c.name)
		if c.ok {
			assert.Equal(t, c.layer, layer, c.name)
		}
	}
}

func TestFrameCount(t *testing.T) {
	src := t.TempDir()
	writeRaw(t, src, 5)

	n, err := FrameCount(src)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = FrameCount(filepath.Join(src, "missing"))
	assert.Error(t, err)
}

func TestStageRange(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "ProcessData")
	writeRaw(t, src, 6)

	// stale content is removed
	require.NoError(t, os.MkdirAll(dst, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "Seg_99.png"), []byte("old"), 0o644))

	st := &Stager{MaxDepth: 250}
	report, err := st.Stage(src, dst, 2, 4)
	require.NoError(t, err)
	require.NoError(t, report.Err())

	for _, l := range Layers {
		assert.Equal(t, 6, report.Found[l], l.String())
		assert.Equal(t, 3, report.Written[l], l.String())
	}

	assert.NoFileExists(t, filepath.Join(dst, "Seg_99.png"))
	assert.NoFileExists(t, filepath.Join(dst, "Img0_1.png"))
	assert.NoFileExists(t, filepath.Join(dst, "Img0_5.png"))

	// Img0_2 is the second raw capture
	data, err := os.ReadFile(filepath.Join(dst, "Img0_2.png"))
	require.NoError(t, err)
	assert.Equal(t, "left_01", string(data))

	data, err = os.ReadFile(filepath.Join(dst, "Seg_4.png"))
	require.NoError(t, err)
	assert.Equal(t, "left_53", string(data))

	// depth is clamped to [MinDepth, MaxDepth]
	depth, err := raster.ReadFloat(filepath.Join(dst, "DepthGT_4.pfm"))
	require.NoError(t, err)
	assert.Equal(t, float32(geometry.MinDepth), depth.At(0, 0))
	assert.Equal(t, float32(250), depth.At(1, 1))

	depth, err = raster.ReadFloat(filepath.Join(dst, "DepthGT_2.pfm"))
	require.NoError(t, err)
	assert.Equal(t, float32(100), depth.At(1, 1))
}

func TestStageRangeBeyondAvailable(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeRaw(t, src, 2)

	st := &Stager{MaxDepth: 100}
	report, err := st.Stage(src, dst, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Written[LeftLayer])
	assert.FileExists(t, filepath.Join(dst, "Img1_2.png"))
}

func TestStageRejectsBadInput(t *testing.T) {
	st := &Stager{MaxDepth: 100}

	_, err := st.Stage(t.TempDir(), t.TempDir(), 0, 3)
	assert.Error(t, err)

	_, err = st.Stage(t.TempDir(), t.TempDir(), 4, 3)
	assert.Error(t, err)

	st.MaxDepth = 0
	_, err = st.Stage(t.TempDir(), t.TempDir(), 1, 3)
	assert.Error(t, err)
}

func TestConvertDisparity(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, raster.WriteFloat(filepath.Join(dir, "DepthGT_3.pfm"), raster.Fill(2, 2, 10), raster.DefaultScale))
	require.NoError(t, raster.WriteFloat(filepath.Join(dir, "DepthGT_7.pfm"), raster.Fill(2, 2, 500), raster.DefaultScale))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DepthGT_9.pfm"), []byte("garbage"), 0o644))

	cam, err := geometry.NewCameraModel(90, 640, 480, 0.25)
	require.NoError(t, err)

	report, err := ConvertDisparity(dir, cam, 100, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Found[DepthLayer])
	assert.Equal(t, 2, report.Written[DepthLayer])
	assert.True(t, raster.IsDecodeError(report.Err()))

	// output numbering follows position, not the source frame number
	d1, err := raster.ReadFloat(filepath.Join(dir, "Disparity_1.pfm"))
	require.NoError(t, err)
	assert.InDelta(t, 320*0.25/10, d1.At(1, 1), 1e-4)

	d2, err := raster.ReadFloat(filepath.Join(dir, "Disparity_2.pfm"))
	require.NoError(t, err)
	assert.InDelta(t, 320*0.25/100, d2.At(0, 0), 1e-4)

	assert.NoFileExists(t, filepath.Join(dir, "Disparity_3.pfm"))
}

func TestCopyResults(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "Results", "Img")

	for _, name := range []string{"DepthGT_1.pfm", "Disparity_1.pfm", "Img0_1.png", "Img1_1.png", "Seg_1.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte(name), 0o644))
	}

	n, err := CopyResults(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	assert.FileExists(t, filepath.Join(dst, "Img1_1.png"))
	assert.NoFileExists(t, filepath.Join(dst, "Seg_1.png"))

	_, err = CopyResults(filepath.Join(src, "missing"), dst)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
