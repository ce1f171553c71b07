package annotation

import (
	"fmt"

	"github.com/swdee/go-seglabel/raster"
	"github.com/swdee/go-seglabel/region"
)

// Unassigned is the track ID of a box that has not been confirmed
const Unassigned = -1

// Box is a labeled rectangle in one frame
type Box struct {
	region.Bounds
	// Color is the segmentation colour the box was picked on, it selects the
	// pixels sampled for depth
	Color     raster.RGB
	ClassID   int
	TrackID   int
	Confirmed bool
}

func (b Box) String() string {
	state := "provisional"
	if b.Confirmed {
		state = fmt.Sprintf("track %d", b.TrackID)
	}
	return fmt.Sprintf("class %d %v %s", b.ClassID, b.Bounds, state)
}

// FrameBoxes are the confirmed boxes of one frame together with the size of
// the colour raster they were picked on
type FrameBoxes struct {
	Frame  int
	Width  int
	Height int
	Boxes  []Box
}
