package render

import (
	"image"
	"image/color/palette"
	"image/gif"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/swdee/go-seglabel/internal/fsutil"
	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Animation collects rendered frames into a looping GIF
type Animation struct {
	// Width scales frames to this width keeping the aspect ratio, 0 keeps
	// the frame size
	Width int
	// Delay is the time each frame is shown
	Delay time.Duration

	frames []*image.Paletted
	delays []int
}

// NewAnimation returns an animation played at fps frames per second
func NewAnimation(fps, width int) (*Animation, error) {

	if fps <= 0 {
		return nil, errors.Errorf("invalid frame rate %d", fps)
	}

	if width < 0 {
		return nil, errors.Errorf("invalid width %d", width)
	}

	return &Animation{
		Width: width,
		Delay: time.Second / time.Duration(fps),
	}, nil
}

// Len returns the number of frames added
func (a *Animation) Len() int {
	return len(a.frames)
}

// Add appends img as the next frame, with caption written in the top left
// corner when not empty
func (a *Animation) Add(img gocv.Mat, caption string) error {

	src, err := img.ToImage()

	if err != nil {
		return errors.Wrap(err, "error converting frame")
	}

	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()

	if a.Width > 0 && a.Width != w {
		h = max(1, h*a.Width/w)
		w = a.Width
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), src, sb, draw.Src, nil)

	if caption != "" {
		writeCaption(rgba, caption)
	}

	pal := image.NewPaletted(rgba.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(pal, pal.Bounds(), rgba, image.Point{})

	a.frames = append(a.frames, pal)
	// gif delays are in 100ths of a second
	a.delays = append(a.delays, max(1, int(a.Delay/(10*time.Millisecond))))

	return nil
}

// writeCaption draws text on a black strip at the top left of dst
func writeCaption(dst *image.RGBA, text string) {

	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Metrics().Height.Ceil()

	draw.Draw(dst, image.Rect(0, 0, width+4, height+4), image.NewUniform(Black), image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(White),
		Face: face,
		Dot:  fixed.P(2, 2+face.Metrics().Ascent.Ceil()),
	}
	dr.DrawString(text)
}

// Encode writes the animation as a GIF that loops forever
func (a *Animation) Encode(w io.Writer) error {

	if len(a.frames) == 0 {
		return errors.New("animation has no frames")
	}

	anim := &gif.GIF{
		Image:     a.frames,
		Delay:     a.delays,
		LoopCount: 0,
	}

	return errors.Wrap(gif.EncodeAll(w, anim), "error encoding gif")
}

// Write replaces the file at path with the encoded animation
func (a *Animation) Write(path string) error {

	if len(a.frames) == 0 {
		return errors.New("animation has no frames")
	}

	return fsutil.WriteFile(path, a.Encode)
}
