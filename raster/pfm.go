package raster

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel/internal/fsutil"
)

const (
	// pfmGray is the header token of a single channel PFM file
	pfmGray = "Pf"
	// pfmColor is the header token of a three channel PFM file
	pfmColor = "PF"
	// DefaultScale is the scale written by WriteFloat, negative selects a
	// little-endian payload
	DefaultScale = -1.0
	// PFMExt is the file extension of float raster files
	PFMExt = ".pfm"
	// MaxDimension bounds the width and height a PFM header may declare
	MaxDimension = 100000
	// readChunk is the number of payload bytes decoded per read
	readChunk = 64 * 1024
)

var dimPattern = regexp.MustCompile(`-?\d+`)

// ReadFloat reads a PFM file from path
func ReadFloat(path string) (*FloatRaster, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, errors.Wrap(err, "error opening float raster")
	}

	defer f.Close()

	r, err := DecodeFloat(f)

	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = path
		}
		return nil, err
	}

	return r, nil
}

// DecodeFloat decodes a PFM stream.  Comment lines starting with '#' may
// appear before the dimension line.  A payload longer than the header
// declares is truncated to the declared size, a shorter payload is an error.
func DecodeFloat(rd io.Reader) (*FloatRaster, error) {

	br := bufio.NewReader(rd)

	token, err := readHeaderLine(br)

	if err != nil {
		return nil, &DecodeError{Reason: "missing header token", Err: err}
	}

	var channels int

	switch token {
	case pfmGray:
		channels = 1
	case pfmColor:
		channels = 3
	default:
		return nil, decodeErr("unrecognized header token %q", token)
	}

	// skip any comment lines before the dimensions
	dims, err := readHeaderLine(br)

	for err == nil && strings.HasPrefix(dims, "#") {
		dims, err = readHeaderLine(br)
	}

	if err != nil {
		return nil, &DecodeError{Reason: "missing dimension line", Err: err}
	}

	parts := dimPattern.FindAllString(dims, -1)

	if len(parts) < 2 {
		return nil, decodeErr("unable to parse dimensions %q", dims)
	}

	width, err1 := strconv.Atoi(parts[0])
	height, err2 := strconv.Atoi(parts[1])

	if err1 != nil || err2 != nil {
		return nil, decodeErr("unable to parse dimensions %q", dims)
	}

	if width <= 0 || height <= 0 {
		return nil, decodeErr("non-positive dimensions %dx%d", width, height)
	}

	if width >= MaxDimension || height >= MaxDimension {
		return nil, decodeErr("dimensions %dx%d exceed %d", width, height, MaxDimension)
	}

	if height > math.MaxInt/4/channels/width {
		return nil, decodeErr("dimensions %dx%d overflow the payload size", width, height)
	}

	scaleLine, err := readHeaderLine(br)

	if err != nil {
		return nil, &DecodeError{Reason: "missing scale line", Err: err}
	}

	scale, err := strconv.ParseFloat(scaleLine, 64)

	if err != nil {
		return nil, &DecodeError{Reason: fmt.Sprintf("invalid scale %q", scaleLine), Err: err}
	}

	order := byteOrder(scale)
	count := width * height * channels

	data, err := readPayload(br, order, count)

	if err != nil {
		return nil, err
	}

	return &FloatRaster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Data:     data,
	}, nil
}

// readPayload decodes count floats from br in chunks so memory grows with the
// bytes actually present, not with the size the header claims.  Bytes beyond
// the expected payload are left unread.
func readPayload(br io.Reader, order binary.ByteOrder, count int) ([]float32, error) {

	data := make([]float32, 0, min(count, readChunk))
	buf := make([]byte, readChunk)

	for len(data) < count {
		want := min((count-len(data))*4, readChunk)
		n, err := io.ReadFull(br, buf[:want])

		for i := 0; i+4 <= n; i += 4 {
			data = append(data, math.Float32frombits(order.Uint32(buf[i:])))
		}

		if err != nil {
			return nil, decodeErr("payload too short: got %d floats, expected %d", len(data), count)
		}
	}

	return data, nil
}

// WriteFloat writes r to path as a PFM file, replacing any existing file.  The
// sign of scale selects the payload byte order.
func WriteFloat(path string, r *FloatRaster, scale float64) error {
	return fsutil.WriteFile(path, func(w io.Writer) error {
		return EncodeFloat(w, r, scale)
	})
}

// EncodeFloat writes r as a PFM stream
func EncodeFloat(w io.Writer, r *FloatRaster, scale float64) error {

	var token string

	switch r.Channels {
	case 1:
		token = pfmGray
	case 3:
		token = pfmColor
	default:
		return errors.Errorf("unsupported channel count %d", r.Channels)
	}

	if len(r.Data) != r.Width*r.Height*r.Channels {
		return errors.Errorf("raster data length %d does not match %dx%dx%d",
			len(r.Data), r.Width, r.Height, r.Channels)
	}

	if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return errors.Errorf("invalid scale %v", scale)
	}

	bw := bufio.NewWriter(w)

	header := fmt.Sprintf("%s\n%d %d\n%s\n", token, r.Width, r.Height, formatScale(scale))

	if _, err := bw.WriteString(header); err != nil {
		return errors.Wrap(err, "error writing header")
	}

	order := byteOrder(scale)
	buf := make([]byte, 4)

	for _, v := range r.Data {
		order.PutUint32(buf, math.Float32bits(v))
		if _, err := bw.Write(buf); err != nil {
			return errors.Wrap(err, "error writing payload")
		}
	}

	return errors.Wrap(bw.Flush(), "error writing payload")
}

// byteOrder returns the payload byte order selected by the scale sign
func byteOrder(scale float64) binary.ByteOrder {
	if scale < 0 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// formatScale renders the scale with at least one decimal place, eg: -1.0
func formatScale(scale float64) string {
	s := strconv.FormatFloat(scale, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// readHeaderLine reads one newline terminated header line without the
// trailing whitespace
func readHeaderLine(br *bufio.Reader) (string, error) {

	line, err := br.ReadString('\n')

	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", err
	}

	return strings.TrimSpace(line), nil
}
