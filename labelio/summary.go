package labelio

import (
	"math"

	"github.com/swdee/go-seglabel/annotation"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TrackSummary describes the camera-space motion of one track
type TrackSummary struct {
	TrackID    int
	Frames     int
	FirstFrame int
	LastFrame  int
	Mean       [3]float64
	StdDev     [3]float64
	// PathLength is the summed distance between consecutive points
	PathLength float64
}

// Summarize returns one summary per track in ascending track id order
func Summarize(records []annotation.TrackRecord) []TrackSummary {

	h := GroupByTrack(records)
	ids := h.IDs()
	out := make([]TrackSummary, 0, len(ids))

	for _, id := range ids {
		out = append(out, summarizePoints(id, h.Points(id)))
	}

	return out
}

func summarizePoints(id int, pts []Point) TrackSummary {

	s := TrackSummary{
		TrackID:    id,
		Frames:     len(pts),
		FirstFrame: pts[0].Frame,
		LastFrame:  pts[len(pts)-1].Frame,
	}

	axes := [3][]float64{
		make([]float64, len(pts)),
		make([]float64, len(pts)),
		make([]float64, len(pts)),
	}

	for i, p := range pts {
		axes[0][i], axes[1][i], axes[2][i] = p.X, p.Y, p.Z
	}

	for a := range axes {
		if len(pts) > 1 {
			s.Mean[a], s.StdDev[a] = stat.MeanStdDev(axes[a], nil)
		} else {
			s.Mean[a] = axes[a][0]
		}
	}

	for i := 1; i < len(pts); i++ {
		prev := []float64{pts[i-1].X, pts[i-1].Y, pts[i-1].Z}
		cur := []float64{pts[i].X, pts[i].Y, pts[i].Z}
		s.PathLength += floats.Distance(prev, cur, 2)
	}

	if math.IsNaN(s.PathLength) {
		s.PathLength = 0
	}

	return s
}
