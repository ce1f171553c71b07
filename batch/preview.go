package batch

import (
	"github.com/swdee/go-seglabel/annotation"
	"github.com/swdee/go-seglabel/raster"
	"github.com/swdee/go-seglabel/region"
)

// Preview returns the boxes the selectors would produce on one frame.  No
// track ids are allocated.
func Preview(c *raster.ColorRaster, selectors []region.Selector, threshold int) []annotation.Box {

	var boxes []annotation.Box

	for _, sel := range selectors {
		det := region.Extract(c, sel, threshold)

		if det.Status != region.Emitted {
			continue
		}

		boxes = append(boxes, annotation.Box{
			Bounds:    det.Bounds,
			Color:     sel.Color,
			ClassID:   sel.ClassID,
			TrackID:   annotation.Unassigned,
			Confirmed: true,
		})
	}

	return boxes
}

// PixelCounts returns the tolerance mask pixel count of each selector
func PixelCounts(c *raster.ColorRaster, selectors []region.Selector) []int {
	counts := make([]int, len(selectors))
	for i, sel := range selectors {
		counts[i] = region.ColorMask(c, sel.Color, sel.Tolerance).Count()
	}
	return counts
}
