// Package dataset prepares raw simulator captures for labeling: renaming the
// stereo, segmentation and depth layers into numbered sequences, converting
// ground truth depth to disparity and copying the finished layers to a
// results folder.
package dataset

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel"
	"github.com/swdee/go-seglabel/geometry"
	"github.com/swdee/go-seglabel/internal/fsutil"
	"github.com/swdee/go-seglabel/labelio"
	"github.com/swdee/go-seglabel/raster"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Layer is one kind of staged file
type Layer int

const (
	// LeftLayer is the left stereo colour image
	LeftLayer Layer = iota
	// RightLayer is the right stereo colour image
	RightLayer
	// SegLayer is the segmentation image of the left camera
	SegLayer
	// DepthLayer is the ground truth depth of the left camera
	DepthLayer
)

// Layers lists every staged layer in staging order
var Layers = []Layer{LeftLayer, RightLayer, SegLayer, DepthLayer}

// Staged file prefixes
const (
	LeftPrefix      = "Img0"
	RightPrefix     = "Img1"
	SegPrefix       = "Seg"
	DepthPrefix     = "DepthGT"
	DisparityPrefix = "Disparity"
)

// Prefix returns the staged file prefix of the layer
func (l Layer) Prefix() string {
	switch l {
	case LeftLayer:
		return LeftPrefix
	case RightLayer:
		return RightPrefix
	case SegLayer:
		return SegPrefix
	case DepthLayer:
		return DepthPrefix
	}
	return ""
}

// Ext returns the staged file extension of the layer
func (l Layer) Ext() string {
	if l == DepthLayer {
		return raster.PFMExt
	}
	return ".png"
}

func (l Layer) String() string {
	return l.Prefix()
}

// Classify returns the layer a raw capture file belongs to.  Colour layers
// are matched on the img_ prefix and the camera/image-type marker, depth on
// the .pfm extension.
func Classify(name string) (Layer, bool) {

	lower := strings.ToLower(name)

	if strings.HasSuffix(lower, raster.PFMExt) {
		return DepthLayer, true
	}

	if !strings.HasPrefix(name, "img_") || !strings.HasSuffix(lower, ".png") {
		return 0, false
	}

	switch {
	case strings.Contains(name, "_left_0"):
		return LeftLayer, true
	case strings.Contains(name, "_right_0"):
		return RightLayer, true
	case strings.Contains(name, "_left_5"):
		return SegLayer, true
	}

	return 0, false
}

// Report summarises a staging or conversion run
type Report struct {
	// Found is the number of raw files per layer
	Found map[Layer]int
	// Written is the number of files written per layer
	Written map[Layer]int
	// Errors accumulates per-file failures
	Errors error
}

func newReport() *Report {
	return &Report{
		Found:   make(map[Layer]int),
		Written: make(map[Layer]int),
	}
}

// Err returns the accumulated per-file errors
func (r *Report) Err() error {
	return r.Errors
}

// rawFile is a classified capture file with its ordering number
type rawFile struct {
	name   string
	number int
}

// ScanRaw classifies the files of src by layer, each layer ordered by the
// trailing number of the file name.  Files without a number are ignored.
func ScanRaw(src string) (map[Layer][]string, error) {

	entries, err := os.ReadDir(src)

	if err != nil {
		return nil, errors.Wrapf(err, "error reading raw folder %s", src)
	}

	byLayer := make(map[Layer][]rawFile)

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		layer, ok := Classify(e.Name())

		if !ok {
			continue
		}

		n, ok := labelio.FrameNumber(e.Name())

		if !ok {
			continue
		}

		byLayer[layer] = append(byLayer[layer], rawFile{name: e.Name(), number: n})
	}

	out := make(map[Layer][]string, len(byLayer))

	for layer, files := range byLayer {
		slices.SortStableFunc(files, func(a, b rawFile) int { return a.number - b.number })

		names := make([]string, len(files))
		for i, f := range files {
			names[i] = filepath.Join(src, f.name)
		}

		out[layer] = names
	}

	return out, nil
}

// FrameCount returns the number of stereo frames in src, the size of the
// smallest colour layer
func FrameCount(src string) (int, error) {

	layers, err := ScanRaw(src)

	if err != nil {
		return 0, err
	}

	count := -1

	for _, l := range []Layer{LeftLayer, RightLayer, SegLayer} {
		if n := len(layers[l]); count < 0 || n < count {
			count = n
		}
	}

	return max(count, 0), nil
}

// Stager renames and clamps raw captures into a staging folder
type Stager struct {
	// MaxDepth is the far clamp applied to staged depth
	MaxDepth float32
	Log      *zap.SugaredLogger
}

// Stage clears dst then copies raw captures first..last (1 based, inclusive)
// of every layer from src, naming them {prefix}_{n} where n counts from
// first.  Depth is clamped to [MinDepth, MaxDepth] before writing.
func (s *Stager) Stage(src, dst string, first, last int) (*Report, error) {

	log := seglabel.OrNop(s.Log)

	if first < 1 || last < first {
		return nil, errors.Errorf("invalid frame range %d..%d", first, last)
	}

	if s.MaxDepth <= geometry.MinDepth {
		return nil, errors.Errorf("max depth %v must exceed %v", s.MaxDepth, geometry.MinDepth)
	}

	layers, err := ScanRaw(src)

	if err != nil {
		return nil, err
	}

	if err := fsutil.ResetDir(dst); err != nil {
		return nil, err
	}

	report := newReport()

	for _, layer := range Layers {
		files := layers[layer]
		report.Found[layer] = len(files)

		for i, path := range selectRange(files, first, last) {
			out := labelio.FramePath(dst, layer.Prefix(), first+i, layer.Ext())

			var err error

			if layer == DepthLayer {
				err = s.stageDepth(path, out)
			} else {
				err = fsutil.CopyFile(path, out)
			}

			if err != nil {
				report.Errors = multierr.Append(report.Errors, err)
				continue
			}

			report.Written[layer]++
		}

		log.Infow("staged layer", "layer", layer.String(), "found", report.Found[layer],
			"written", report.Written[layer])
	}

	return report, nil
}

// stageDepth clamps a raw depth file into the staging folder
func (s *Stager) stageDepth(src, dst string) error {

	depth, err := raster.ReadFloat(src)

	if err != nil {
		return err
	}

	geometry.ClampRaster(depth, s.MaxDepth)

	return raster.WriteFloat(dst, depth, raster.DefaultScale)
}

// selectRange returns files[first-1:last] limited to the available files
func selectRange(files []string, first, last int) []string {

	start := first - 1
	end := min(last, len(files))

	if start >= end {
		return nil
	}

	return files[start:end]
}

// ConvertDisparity converts every staged depth file of dir, in frame order,
// to disparity written as Disparity_{i+1}.pfm.  A failed file is recorded
// in the report and does not stop the conversion.
func ConvertDisparity(dir string, camera *geometry.CameraModel, maxDepth float32, log *zap.SugaredLogger) (*Report, error) {

	log = seglabel.OrNop(log)

	seq, err := labelio.ScanSequence(dir, DepthPrefix, raster.PFMExt)

	if err != nil {
		return nil, err
	}

	report := newReport()
	report.Found[DepthLayer] = len(seq)

	for i, f := range seq {
		out := labelio.FramePath(dir, DisparityPrefix, i+1, raster.PFMExt)

		if err := convertFile(f.Path, out, camera, maxDepth); err != nil {
			log.Warnw("disparity conversion failed", "file", f.Path, "error", err)
			report.Errors = multierr.Append(report.Errors, err)
			continue
		}

		report.Written[DepthLayer]++
	}

	log.Infow("disparity conversion complete", "files", len(seq),
		"written", report.Written[DepthLayer], "focal", camera.FocalLength())

	return report, nil
}

func convertFile(src, dst string, camera *geometry.CameraModel, maxDepth float32) error {

	depth, err := raster.ReadFloat(src)

	if err != nil {
		return err
	}

	return raster.WriteFloat(dst, camera.Disparity(depth, maxDepth), raster.DefaultScale)
}

// ResultPrefixes are the staged layers copied to the results folder, the
// segmentation layer is kept back
var ResultPrefixes = []string{DepthPrefix, DisparityPrefix, LeftPrefix, RightPrefix}

// CopyResults clears dst and copies the depth, disparity and stereo colour
// files of src into it, returning the number of files copied
func CopyResults(src, dst string) (int, error) {

	if _, err := os.Stat(src); err != nil {
		return 0, errors.Wrapf(err, "source folder %s", src)
	}

	if err := fsutil.ResetDir(dst); err != nil {
		return 0, err
	}

	copied := 0

	for _, prefix := range ResultPrefixes {
		matches, err := filepath.Glob(filepath.Join(src, prefix+"_*"))

		if err != nil {
			return copied, errors.Wrapf(err, "bad prefix %q", prefix)
		}

		for _, m := range matches {
			if err := fsutil.CopyFile(m, filepath.Join(dst, filepath.Base(m))); err != nil {
				return copied, err
			}
			copied++
		}
	}

	return copied, nil
}
