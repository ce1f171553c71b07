package labelio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel/annotation"
	"github.com/swdee/go-seglabel/internal/fsutil"
)

// motFields is the number of comma separated fields of a track line
const motFields = 10

// FormatTrack renders a record as
// frame,track,xmin,ymin,width,height,confidence,x,y,z
func FormatTrack(r annotation.TrackRecord) string {
	return fmt.Sprintf("%d,%d,%d,%d,%d,%d,%d,%.6f,%.6f,%.6f",
		r.Frame, r.TrackID, r.XMin, r.YMin, r.Width, r.Height, r.Confidence, r.X, r.Y, r.Z)
}

// ParseTrack parses a track line.  Fields beyond the tenth are ignored.
func ParseTrack(line string) (annotation.TrackRecord, error) {

	parts := strings.Split(strings.TrimSpace(line), ",")

	if len(parts) < motFields {
		return annotation.TrackRecord{}, errors.Errorf("expected %d fields, got %d", motFields, len(parts))
	}

	var ints [7]int

	for i := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))

		if err != nil {
			// the viewer also accepts float pixel fields
			f, ferr := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
			if ferr != nil {
				return annotation.TrackRecord{}, errors.Wrapf(err, "invalid field %d", i+1)
			}
			v = int(f)
		}

		ints[i] = v
	}

	var floats [3]float64

	for i := range floats {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[7+i]), 64)

		if err != nil {
			return annotation.TrackRecord{}, errors.Wrapf(err, "invalid field %d", 8+i)
		}

		floats[i] = v
	}

	return annotation.TrackRecord{
		Frame:      ints[0],
		TrackID:    ints[1],
		XMin:       ints[2],
		YMin:       ints[3],
		Width:      ints[4],
		Height:     ints[5],
		Confidence: ints[6],
		X:          floats[0],
		Y:          floats[1],
		Z:          floats[2],
	}, nil
}

// WriteTracks replaces path with one line per record in the given order
func WriteTracks(path string, records []annotation.TrackRecord) error {
	return fsutil.WriteFile(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, r := range records {
			if _, err := bw.WriteString(FormatTrack(r) + "\n"); err != nil {
				return errors.Wrap(err, "error writing track")
			}
		}
		return errors.Wrap(bw.Flush(), "error writing track")
	})
}

// ReadTracks reads a track history file.  Lines with fewer than ten fields
// or unparsable values are skipped and counted.  A missing file returns no
// records and an error wrapping os.ErrNotExist.
func ReadTracks(path string) (records []annotation.TrackRecord, skipped int, err error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, 0, errors.Wrap(err, "error opening track file")
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())

		if text == "" {
			continue
		}

		r, err := ParseTrack(text)

		if err != nil {
			skipped++
			continue
		}

		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, skipped, errors.Wrap(err, "error reading track file")
	}

	return records, skipped, nil
}

// FrameRecords returns the records of one frame
func FrameRecords(records []annotation.TrackRecord, frame int) []annotation.TrackRecord {
	var out []annotation.TrackRecord
	for _, r := range records {
		if r.Frame == frame {
			out = append(out, r)
		}
	}
	return out
}
