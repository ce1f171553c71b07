package labelio

import (
	"slices"
	"sync"

	"github.com/swdee/go-seglabel/annotation"
)

// Point is a camera-space position of a track in one frame
type Point struct {
	Frame int
	X     float64
	Y     float64
	Z     float64
}

// History keeps the camera-space points of each track ordered by frame
type History struct {
	// history of tracked points by track id
	history map[int][]Point
	sync.Mutex
}

// NewHistory returns an empty history
func NewHistory() *History {
	return &History{
		history: make(map[int][]Point),
	}
}

// GroupByTrack builds a history from track records
func GroupByTrack(records []annotation.TrackRecord) *History {
	h := NewHistory()
	for _, r := range records {
		h.Add(r)
	}
	return h
}

// Reset clears all history
func (h *History) Reset() {
	h.Lock()
	defer h.Unlock()

	h.history = make(map[int][]Point)
}

// Add a record to the history of its track, keeping frame order
func (h *History) Add(r annotation.TrackRecord) {
	h.Lock()
	defer h.Unlock()

	p := Point{Frame: r.Frame, X: r.X, Y: r.Y, Z: r.Z}
	pts := h.history[r.TrackID]

	i, _ := slices.BinarySearchFunc(pts, p.Frame, func(a Point, f int) int { return a.Frame - f })

	// insert after any points of the same frame so equal frames keep
	// insertion order
	for i < len(pts) && pts[i].Frame == p.Frame {
		i++
	}

	h.history[r.TrackID] = slices.Insert(pts, i, p)
}

// Points returns the point history of a track id
func (h *History) Points(id int) []Point {
	h.Lock()
	defer h.Unlock()

	if pts, exists := h.history[id]; exists {
		return slices.Clone(pts)
	}

	// no history for the track
	return nil
}

// IDs returns the track ids in ascending order
func (h *History) IDs() []int {
	h.Lock()
	defer h.Unlock()

	ids := make([]int, 0, len(h.history))
	for id := range h.history {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}
