// Package labelio reads and writes the per-frame normalized box (YOLO) label
// files, the cross-frame track history (MOT) file and the frame sequences
// they are derived from.
package labelio

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LabelExt is the extension of label text files
const LabelExt = ".txt"

// ColorExts are the colour raster extensions recognised in a sequence
var ColorExts = []string{".png", ".jpg", ".jpeg"}

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// Frame is one file of a sequence
type Frame struct {
	Number int
	Path   string
}

// Sequence is a list of frames in strictly increasing frame number order
type Sequence []Frame

// Numbers returns the frame numbers of the sequence
func (s Sequence) Numbers() []int {
	out := make([]int, len(s))
	for i, f := range s {
		out[i] = f.Number
	}
	return out
}

// FrameNumber returns the trailing digit run of the file name stem, eg: 12
// for Seg_12.png.  Ok is false when the stem does not end in a digit.
func FrameNumber(name string) (int, bool) {

	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	m := trailingDigits.FindString(stem)

	if m == "" {
		return 0, false
	}

	n, err := strconv.Atoi(m)

	if err != nil {
		return 0, false
	}

	return n, true
}

// FramePath returns the path of frame n, {dir}/{prefix}_{n}{ext}
func FramePath(dir, prefix string, n int, ext string) string {
	return filepath.Join(dir, prefix+"_"+strconv.Itoa(n)+ext)
}

// ScanSequence lists the files in dir starting with prefix+"_" and having one
// of the given extensions (case insensitive), ordered by frame number.  Files
// without a frame number are ignored, two files with the same number are an
// error.
func ScanSequence(dir, prefix string, exts ...string) (Sequence, error) {

	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, errors.Wrapf(err, "error reading sequence directory %s", dir)
	}

	var seq Sequence

	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix+"_") {
			continue
		}

		ext := strings.ToLower(filepath.Ext(e.Name()))

		if len(exts) > 0 && !slices.Contains(exts, ext) {
			continue
		}

		n, ok := FrameNumber(e.Name())

		if !ok {
			continue
		}

		seq = append(seq, Frame{Number: n, Path: filepath.Join(dir, e.Name())})
	}

	slices.SortFunc(seq, func(a, b Frame) int { return a.Number - b.Number })

	for i := 1; i < len(seq); i++ {
		if seq[i].Number == seq[i-1].Number {
			return nil, errors.Errorf("duplicate frame %d: %s and %s",
				seq[i].Number, seq[i-1].Path, seq[i].Path)
		}
	}

	return seq, nil
}
