package raster

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel/internal/fsutil"
	"gocv.io/x/gocv"
)

// RGB is an 8-bit colour triple in red, green, blue order
type RGB [3]uint8

// ColorRaster is a row-major grid of 8-bit RGB pixels
type ColorRaster struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewColorRaster returns a black raster of the given size
func NewColorRaster(width, height int) *ColorRaster {
	return &ColorRaster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// FillColor returns a raster with every pixel set to c
func FillColor(width, height int, c RGB) *ColorRaster {
	r := NewColorRaster(width, height)
	r.FillRect(0, 0, width-1, height-1, c)
	return r
}

// InBounds reports whether x,y is a valid pixel
func (r *ColorRaster) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < r.Width && y < r.Height
}

// At returns the colour at pixel x,y
func (r *ColorRaster) At(x, y int) RGB {
	i := (y*r.Width + x) * 3
	return RGB{r.Pix[i], r.Pix[i+1], r.Pix[i+2]}
}

// Set stores colour c at pixel x,y
func (r *ColorRaster) Set(x, y int, c RGB) {
	i := (y*r.Width + x) * 3
	r.Pix[i], r.Pix[i+1], r.Pix[i+2] = c[0], c[1], c[2]
}

// FillRect paints the inclusive rectangle x0,y0 to x1,y1 with c, clipped to
// the raster
func (r *ColorRaster) FillRect(x0, y0, x1, y1 int, c RGB) {
	for y := max(y0, 0); y <= min(y1, r.Height-1); y++ {
		for x := max(x0, 0); x <= min(x1, r.Width-1); x++ {
			r.Set(x, y, c)
		}
	}
}

// ReadColor decodes the colour image at path.  Any format OpenCV can read is
// accepted, the pixels are returned in RGB order.
func ReadColor(path string) (*ColorRaster, error) {

	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()

	if img.Empty() {
		return nil, &DecodeError{Path: path, Reason: "unable to read colour raster"}
	}

	r, err := FromMat(img)

	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = path
		}
		return nil, err
	}

	return r, nil
}

// FromMat copies a 3 channel BGR Mat into a ColorRaster
func FromMat(img gocv.Mat) (*ColorRaster, error) {

	if img.Channels() != 3 || img.Type() != gocv.MatTypeCV8UC3 {
		return nil, decodeErr("expected 8-bit 3 channel image, got %d channels", img.Channels())
	}

	rgbImg := gocv.NewMat()
	defer rgbImg.Close()

	gocv.CvtColor(img, &rgbImg, gocv.ColorBGRToRGB)

	return &ColorRaster{
		Width:  rgbImg.Cols(),
		Height: rgbImg.Rows(),
		Pix:    rgbImg.ToBytes(),
	}, nil
}

// ToMat returns the raster as a BGR Mat, the caller must Close it
func (r *ColorRaster) ToMat() (gocv.Mat, error) {

	rgbImg, err := gocv.NewMatFromBytes(r.Height, r.Width, gocv.MatTypeCV8UC3, r.Pix)

	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "error creating image mat")
	}

	defer rgbImg.Close()

	bgrImg := gocv.NewMat()
	gocv.CvtColor(rgbImg, &bgrImg, gocv.ColorRGBToBGR)

	return bgrImg, nil
}

// WriteColor encodes r to path, the format is chosen by the file extension
func WriteColor(path string, r *ColorRaster) error {

	img, err := r.ToMat()

	if err != nil {
		return err
	}

	defer img.Close()

	return WriteMat(path, img)
}

// WriteMat encodes img in the format of the path's extension and replaces the
// file at path with it
func WriteMat(path string, img gocv.Mat) error {

	ext := strings.ToLower(filepath.Ext(path))

	if ext == "" {
		return errors.Errorf("no image format for %s", path)
	}

	buf, err := gocv.IMEncode(gocv.FileExt(ext), img)

	if err != nil {
		return errors.Wrapf(err, "error encoding image %s", path)
	}

	defer buf.Close()

	return fsutil.WriteBytes(path, buf.GetBytes())
}
