package raster

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// GrayscaleMap leaves a depth preview uncoloured
const GrayscaleMap = gocv.ColormapTypes(9999)

// Normalize8 maps the finite samples of the first channel to 0..255 using the
// raster's own min/max range.  Non-finite samples map to 0.  Invert swaps
// near and far.
func (r *FloatRaster) Normalize8(invert bool) []byte {

	total := r.Width * r.Height
	out := make([]byte, total)

	minV, maxV, ok := r.Range()
	den := maxV - minV

	// all-invalid or constant raster stays black
	if !ok || den <= 0 {
		return out
	}

	for i := 0; i < total; i++ {
		v := r.Data[i*r.Channels]

		if !IsFinite(v) {
			v = minV
		}

		n := (v - minV) / den

		if invert {
			n = 1.0 - n
		}

		if n < 0 {
			n = 0
		}
		if n > 1 {
			n = 1
		}

		out[i] = byte(n * 255.0)
	}

	return out
}

// PreviewMat returns an 8-bit BGR visualisation of the raster, coloured with
// the given OpenCV colormap or left grey with GrayscaleMap.  The caller must
// close the returned Mat.
func PreviewMat(r *FloatRaster, colormap gocv.ColormapTypes, invert bool) (gocv.Mat, error) {

	u8Mat, err := gocv.NewMatFromBytes(r.Height, r.Width, gocv.MatTypeCV8U, r.Normalize8(invert))

	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "error creating preview mat")
	}

	defer u8Mat.Close()

	outMat := gocv.NewMat()

	if colormap == GrayscaleMap {
		gocv.CvtColor(u8Mat, &outMat, gocv.ColorGrayToBGR)
	} else {
		gocv.ApplyColorMap(u8Mat, &outMat, colormap)
	}

	return outMat, nil
}
