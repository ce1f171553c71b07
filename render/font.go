package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Alignment of a box label relative to its box
type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font defines the parameters for rendering box labels with OpenCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	// Alignment of the text label to the bounding box
	Alignment Alignment
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.4,
		Color:     White,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   3,
		RightPad:  3,
		TopPad:    3,
		BottomPad: 4,
		Alignment: Left,
	}
}

// boxLabel is a label placed above a box, drawn after all boxes so labels
// stay on top
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// place positions text above the box rect
func (f Font) place(text string, rect image.Rectangle, clr color.RGBA, lineThickness int) boxLabel {

	textSize := gocv.GetTextSize(text, f.Face, f.Scale, f.Thickness)

	var centerX int

	switch f.Alignment {
	case Center:
		centerX = (rect.Min.X + rect.Max.X) / 2

	case Right:
		centerX = rect.Max.X - (textSize.X / 2) - f.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = rect.Min.X + (textSize.X / 2) + f.LeftPad - (lineThickness / 2)
	}

	top := rect.Min.Y

	// boxes touching the top edge carry their label inside
	if top-textSize.Y-f.TopPad-f.BottomPad < 0 {
		top += textSize.Y + f.TopPad + f.BottomPad
	}

	return boxLabel{
		rect: image.Rect(centerX-textSize.X/2-f.LeftPad, top-textSize.Y-f.TopPad-f.BottomPad,
			centerX+textSize.X/2+f.RightPad, top),
		clr:     clr,
		text:    text,
		textPos: image.Pt(centerX-textSize.X/2, top-f.BottomPad),
	}
}

// draw paints the labels onto img
func (f Font) draw(img *gocv.Mat, labels []boxLabel) {
	for _, l := range labels {
		gocv.Rectangle(img, l.rect, l.clr, -1)
		gocv.PutTextWithParams(img, l.text, l.textPos, f.Face, f.Scale, f.Color,
			f.Thickness, f.LineType, false)
	}
}
