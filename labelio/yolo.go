package labelio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel/internal/fsutil"
	"github.com/swdee/go-seglabel/region"
)

// YOLOLine is one box of a per-frame label file, the centre and size are
// normalized by the image width and height
type YOLOLine struct {
	ClassID int
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

// NewYOLOLine normalizes box b of an imgWidth x imgHeight image
func NewYOLOLine(b region.Bounds, classID, imgWidth, imgHeight int) YOLOLine {

	w := float64(imgWidth)
	h := float64(imgHeight)

	return YOLOLine{
		ClassID: classID,
		XCenter: float64(b.XMin+b.XMax) / 2 / w,
		YCenter: float64(b.YMin+b.YMax) / 2 / h,
		Width:   float64(b.XMax-b.XMin) / w,
		Height:  float64(b.YMax-b.YMin) / h,
	}
}

// Format renders the line as "class xc yc w h" with 6 decimals
func (l YOLOLine) Format() string {
	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f", l.ClassID, l.XCenter, l.YCenter, l.Width, l.Height)
}

// Bounds converts the line back to pixel corners of an imgWidth x imgHeight
// image, truncating toward zero
func (l YOLOLine) Bounds(imgWidth, imgHeight int) region.Bounds {

	w := float64(imgWidth)
	h := float64(imgHeight)

	return region.Bounds{
		XMin: int((l.XCenter - l.Width/2) * w),
		YMin: int((l.YCenter - l.Height/2) * h),
		XMax: int((l.XCenter + l.Width/2) * w),
		YMax: int((l.YCenter + l.Height/2) * h),
	}
}

// ParseYOLOLine parses a whitespace separated label line
func ParseYOLOLine(line string) (YOLOLine, error) {

	parts := strings.Fields(line)

	if len(parts) < 5 {
		return YOLOLine{}, errors.Errorf("expected 5 fields, got %d", len(parts))
	}

	classID, err := strconv.Atoi(parts[0])

	if err != nil {
		return YOLOLine{}, errors.Wrap(err, "invalid class id")
	}

	var vals [4]float64

	for i := range vals {
		if vals[i], err = strconv.ParseFloat(parts[i+1], 64); err != nil {
			return YOLOLine{}, errors.Wrapf(err, "invalid field %d", i+2)
		}
	}

	return YOLOLine{
		ClassID: classID,
		XCenter: vals[0],
		YCenter: vals[1],
		Width:   vals[2],
		Height:  vals[3],
	}, nil
}

// WriteYOLO replaces path with one line per box, an empty slice writes an
// empty file
func WriteYOLO(path string, lines []YOLOLine) error {
	return fsutil.WriteFile(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, l := range lines {
			if _, err := bw.WriteString(l.Format() + "\n"); err != nil {
				return errors.Wrap(err, "error writing label")
			}
		}
		return errors.Wrap(bw.Flush(), "error writing label")
	})
}

// ReadYOLO reads a per-frame label file.  Malformed lines are skipped and
// counted.
func ReadYOLO(path string) (lines []YOLOLine, skipped int, err error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, 0, errors.Wrap(err, "error opening label file")
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())

		if text == "" {
			continue
		}

		l, err := ParseYOLOLine(text)

		if err != nil {
			skipped++
			continue
		}

		lines = append(lines, l)
	}

	if err := scanner.Err(); err != nil {
		return nil, skipped, errors.Wrap(err, "error reading label file")
	}

	return lines, skipped, nil
}
