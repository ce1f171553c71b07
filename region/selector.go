package region

import (
	"fmt"

	"github.com/swdee/go-seglabel/raster"
)

// DefaultTolerance is the per channel colour tolerance used when none is
// configured
const DefaultTolerance = 3

// Key identifies a selector within a bulk session
type Key struct {
	ClassID int
	Color   raster.RGB
}

func (k Key) String() string {
	return fmt.Sprintf("class %d rgb(%d,%d,%d)", k.ClassID, k.Color[0], k.Color[1], k.Color[2])
}

// Selector picks every pixel within Tolerance of Color and labels it with
// ClassID.  Seed is the centroid of the component the selector was picked
// from.
type Selector struct {
	Color     raster.RGB
	ClassID   int
	Tolerance int
	Seed      Point
}

// Key returns the session key of the selector
func (s Selector) Key() Key {
	return Key{ClassID: s.ClassID, Color: s.Color}
}

// NewSelector builds a selector from a pick at pixel x,y.  The colour is the
// picked pixel's colour and the seed is the centroid of its exact colour
// component.
func NewSelector(c *raster.ColorRaster, x, y, classID, tolerance int) (Selector, error) {

	comp, err := SeededComponent(c, x, y)

	if err != nil {
		return Selector{}, err
	}

	return Selector{
		Color:     comp.Color,
		ClassID:   classID,
		Tolerance: tolerance,
		Seed:      comp.Centroid,
	}, nil
}

// Status is the outcome of extracting a selector from one frame
type Status int

const (
	// Emitted means a box was produced
	Emitted Status = iota
	// BelowThreshold means the mask had fewer pixels than the threshold
	BelowThreshold
	// NotFound means no pixel matched
	NotFound
)

func (s Status) String() string {
	switch s {
	case Emitted:
		return "emitted"
	case BelowThreshold:
		return "below threshold"
	default:
		return "not found"
	}
}

// Detection is the result of applying a selector to a frame
type Detection struct {
	Selector Selector
	Mask     *Mask
	Count    int
	Bounds   Bounds
	Status   Status
}

// Extract applies the tolerance mask of sel to c.  A mask with fewer than
// threshold pixels is suppressed.  The box covers the whole mask, so it may
// span several disjoint regions of the same colour.
func Extract(c *raster.ColorRaster, sel Selector, threshold int) Detection {

	m := ColorMask(c, sel.Color, sel.Tolerance)

	d := Detection{
		Selector: sel,
		Mask:     m,
		Count:    m.Count(),
	}

	if d.Count < threshold {
		d.Status = BelowThreshold
		return d
	}

	b, ok := BoundingBox(m)

	if !ok {
		d.Status = NotFound
		return d
	}

	d.Bounds = b
	d.Status = Emitted

	return d
}
