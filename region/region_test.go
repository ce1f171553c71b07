package region

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-seglabel/raster"
)

func randomColorRaster(rng *rand.Rand, w, h int) *raster.ColorRaster {
	c := raster.NewColorRaster(w, h)
	rng.Read(c.Pix)
	return c
}

func TestColorMaskTolerance(t *testing.T) {
	c := raster.NewColorRaster(4, 1)
	c.Set(0, 0, raster.RGB{10, 10, 10})
	c.Set(1, 0, raster.RGB{13, 7, 10})
	c.Set(2, 0, raster.RGB{14, 10, 10})
	c.Set(3, 0, raster.RGB{0, 0, 0})

	m := ColorMask(c, raster.RGB{10, 10, 10}, 3)
	assert.Equal(t, []bool{true, true, false, false}, m.Bits)
	assert.Equal(t, 2, m.Count())

	// the range is clipped at 0 and 255
	m = ColorMask(c, raster.RGB{1, 1, 1}, 5)
	assert.Equal(t, []bool{false, false, false, true}, m.Bits)

	exact := ExactMask(c, raster.RGB{13, 7, 10})
	assert.Equal(t, []bool{false, true, false, false}, exact.Bits)
}

func TestColorMaskMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 20; i++ {
		c := randomColorRaster(rng, 16, 12)
		color := c.At(rng.Intn(16), rng.Intn(12))

		prev := -1
		for tol := 0; tol <= 255; tol += 5 {
			n := ColorMask(c, color, tol).Count()
			if n < prev {
				t.Fatalf("count dropped from %d to %d at tolerance %d", prev, n, tol)
			}
			prev = n
		}
		assert.Equal(t, 16*12, ColorMask(c, color, 255).Count())
	}
}

func TestBoundingBoxEmpty(t *testing.T) {
	_, ok := BoundingBox(NewMask(5, 5))
	assert.False(t, ok)
}

func TestBoundingBoxSinglePixel(t *testing.T) {
	m := NewMask(5, 5)
	m.Set(3, 2, true)

	b, ok := BoundingBox(m)
	require.True(t, ok)
	assert.Equal(t, Bounds{XMin: 3, YMin: 2, XMax: 3, YMax: 2}, b)
	assert.Zero(t, b.Width())
	assert.Zero(t, b.Height())
	assert.True(t, b.Contains(3, 2))
}

func TestBoundingBoxTight(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 200; i++ {
		m := NewMask(1+rng.Intn(12), 1+rng.Intn(12))
		for j := range m.Bits {
			m.Bits[j] = rng.Intn(4) == 0
		}

		b, ok := BoundingBox(m)
		if m.Count() == 0 {
			assert.False(t, ok)
			continue
		}
		require.True(t, ok)

		// every set pixel is covered and every edge touches a set pixel
		var left, right, top, bottom bool
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				if !m.At(x, y) {
					continue
				}
				require.True(t, b.Contains(x, y))
				left = left || x == b.XMin
				right = right || x == b.XMax
				top = top || y == b.YMin
				bottom = bottom || y == b.YMax
			}
		}
		require.True(t, left && right && top && bottom, "box %v not tight", b)

		// removing all pixels on one border edge shrinks that side
		if m.Count() > 1 && b.XMax > b.XMin {
			shrunk := &Mask{Width: m.Width, Height: m.Height, Bits: append([]bool(nil), m.Bits...)}
			for y := 0; y < m.Height; y++ {
				shrunk.Set(b.XMin, y, false)
			}
			nb, ok := BoundingBox(shrunk)
			require.True(t, ok)
			assert.Greater(t, nb.XMin, b.XMin)
		}
	}
}

func TestExtractWholeFrame(t *testing.T) {
	c := raster.FillColor(10, 10, raster.RGB{10, 10, 10})
	sel := Selector{Color: raster.RGB{10, 10, 10}, ClassID: 0, Tolerance: 3}

	d := Extract(c, sel, 5)
	require.Equal(t, Emitted, d.Status)
	assert.Equal(t, Bounds{0, 0, 9, 9}, d.Bounds)
	assert.Equal(t, 9, d.Bounds.Width())
	assert.Equal(t, 9, d.Bounds.Height())
	assert.Equal(t, 100, d.Count)
}

func TestExtractThreshold(t *testing.T) {
	c := raster.FillColor(10, 10, raster.RGB{0, 0, 0})
	c.FillRect(2, 2, 3, 3, raster.RGB{50, 60, 70})
	sel := Selector{Color: raster.RGB{50, 60, 70}, Tolerance: 0}

	tests := []struct {
		name      string
		threshold int
		want      Status
	}{
		{"at threshold", 4, Emitted},
		{"below threshold", 5, BelowThreshold},
		{"no threshold", 0, Emitted},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Extract(c, sel, tc.threshold)
			assert.Equal(t, tc.want, d.Status)
			assert.Equal(t, 4, d.Count)
		})
	}

	missing := Extract(c, Selector{Color: raster.RGB{200, 200, 200}}, 0)
	assert.Equal(t, NotFound, missing.Status)
}

func TestExtractSpansDisjointRegions(t *testing.T) {
	c := raster.FillColor(20, 10, raster.RGB{0, 0, 0})
	c.FillRect(1, 1, 3, 3, raster.RGB{100, 0, 0})
	c.FillRect(15, 6, 17, 8, raster.RGB{101, 0, 0})

	d := Extract(c, Selector{Color: raster.RGB{100, 0, 0}, Tolerance: 3}, 1)
	require.Equal(t, Emitted, d.Status)
	assert.Equal(t, Bounds{1, 1, 17, 8}, d.Bounds)
}

func TestSeededComponent(t *testing.T) {
	c := raster.FillColor(20, 10, raster.RGB{0, 0, 0})
	c.FillRect(1, 1, 3, 3, raster.RGB{100, 0, 0})
	// diagonal neighbour joins under 8-connectivity
	c.Set(4, 4, raster.RGB{100, 0, 0})
	c.FillRect(15, 6, 17, 8, raster.RGB{100, 0, 0})

	comp, err := SeededComponent(c, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, raster.RGB{100, 0, 0}, comp.Color)
	assert.Equal(t, Bounds{1, 1, 4, 4}, comp.Bounds)
	assert.Equal(t, 10, comp.Area)

	comp, err = SeededComponent(c, 16, 7)
	require.NoError(t, err)
	assert.Equal(t, Bounds{15, 6, 17, 8}, comp.Bounds)
	assert.InDelta(t, 16.0, comp.Centroid.X, 1e-9)
	assert.InDelta(t, 7.0, comp.Centroid.Y, 1e-9)

	_, err = SeededComponent(c, 20, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestNewSelector(t *testing.T) {
	c := raster.FillColor(8, 8, raster.RGB{0, 0, 0})
	c.FillRect(2, 2, 4, 4, raster.RGB{9, 8, 7})

	sel, err := NewSelector(c, 3, 3, 2, DefaultTolerance)
	require.NoError(t, err)
	assert.Equal(t, Key{ClassID: 2, Color: raster.RGB{9, 8, 7}}, sel.Key())
	assert.InDelta(t, 3.0, sel.Seed.X, 1e-9)
	assert.InDelta(t, 3.0, sel.Seed.Y, 1e-9)
	assert.Equal(t, DefaultTolerance, sel.Tolerance)
}
