package shape

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/shapeml/pkg/errors"
)

// square returns a side x side square traced clockwise on screen from (0,0)
// with unit steps, 4*side points.
func square(side int) Contour {
	c := make(Contour, 0, 4*side)
	for x := 0; x < side; x++ {
		c = append(c, Point{x, 0})
	}
	for y := 0; y < side; y++ {
		c = append(c, Point{side, y})
	}
	for x := side; x > 0; x-- {
		c = append(c, Point{x, side})
	}
	for y := side; y > 0; y-- {
		c = append(c, Point{0, y})
	}
	return c
}

// rectangle returns a w x h rectangle with unit steps.
func rectangle(w, h int) Contour {
	c := make(Contour, 0, 2*(w+h))
	for x := 0; x < w; x++ {
		c = append(c, Point{x, 0})
	}
	for y := 0; y < h; y++ {
		c = append(c, Point{w, y})
	}
	for x := w; x > 0; x-- {
		c = append(c, Point{x, h})
	}
	for y := h; y > 0; y-- {
		c = append(c, Point{0, y})
	}
	return c
}

var (
	triangle = Contour{{0, 0}, {4, 0}, {0, 3}}
	lShape   = Contour{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}}
	diamond  = Contour{{2, 0}, {3, 1}, {4, 2}, {3, 3}, {2, 4}, {1, 3}, {0, 2}, {1, 1}}
	// pentagram traced through every second vertex of a pentagon
	pentagram = Contour{{0, -100}, {59, 81}, {-95, -31}, {95, -31}, {-59, 81}}
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want Direction
	}{
		{"north", Point{5, 5}, Point{5, 4}, North},
		{"north east", Point{5, 5}, Point{6, 4}, NorthEast},
		{"east", Point{5, 5}, Point{6, 5}, East},
		{"south east", Point{5, 5}, Point{6, 6}, SouthEast},
		{"south", Point{5, 5}, Point{5, 6}, South},
		{"south west", Point{5, 5}, Point{4, 6}, SouthWest},
		{"west", Point{5, 5}, Point{4, 5}, West},
		{"north west", Point{5, 5}, Point{4, 4}, NorthWest},
		{"long east step", Point{0, 0}, Point{10, 0}, East},
		{"steep north east", Point{0, 0}, Point{1, -7}, NorthEast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeSamePoint(t *testing.T) {
	_, err := Encode(Point{3, 3}, Point{3, 3})

	var geomErr *errors.DegenerateGeometryError
	require.True(t, errors.As(err, &geomErr))
	assert.Equal(t, "shape.Encode", geomErr.Op)
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "N", North.String())
	assert.Equal(t, "SE", SouthEast.String())
	assert.Equal(t, "NW", NorthWest.String())
	assert.Equal(t, "Direction(9)", Direction(9).String())
}

func TestChain(t *testing.T) {
	codes, err := Chain(triangle)
	require.NoError(t, err)
	assert.Equal(t, []Direction{East, SouthWest, North}, codes)

	codes, err = Chain(Contour{{0, 0}, {1, 0}})
	require.NoError(t, err)
	assert.Equal(t, []Direction{East, West}, codes)
}

func TestChainDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		contour Contour
	}{
		{"empty", nil},
		{"single point", Contour{{1, 1}}},
		{"repeated point", Contour{{0, 0}, {1, 0}, {1, 0}, {0, 1}}},
		{"closing duplicate", Contour{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Chain(tt.contour)
			var geomErr *errors.DegenerateGeometryError
			assert.True(t, errors.As(err, &geomErr), "got %v", err)
		})
	}
}

func TestNewFeaturesSquare(t *testing.T) {
	c := square(25)
	require.Len(t, c, 100)

	assert.Equal(t, 100.0, Perimeter(c))
	assert.Equal(t, 625.0, Area(c))

	f, err := NewFeatures(c)
	require.NoError(t, err)

	hist := f.Histogram()
	assert.Equal(t, 0.25, hist[North])
	assert.Equal(t, 0.25, hist[East])
	assert.Equal(t, 0.25, hist[South])
	assert.Equal(t, 0.25, hist[West])
	assert.Zero(t, hist[NorthEast]+hist[SouthEast]+hist[SouthWest]+hist[NorthWest])

	assert.Equal(t, 1.0, f.AspectRatio())
	assert.InDelta(t, 1.0, f.Extent(), 1e-12)
	assert.InDelta(t, math.Pi/4, f.Circularity(), 1e-12)
	assert.True(t, f.Convex())
}

func TestHistogramSumsToOne(t *testing.T) {
	contours := map[string]Contour{
		"triangle":  triangle,
		"l shape":   lShape,
		"diamond":   diamond,
		"pentagram": pentagram,
		"rectangle": rectangle(7, 3),
	}

	for name, c := range contours {
		t.Run(name, func(t *testing.T) {
			f, err := NewFeatures(c)
			require.NoError(t, err)

			hist := f.Histogram()
			var sum float64
			for _, v := range hist {
				assert.GreaterOrEqual(t, v, 0.0)
				sum += v
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
			assert.GreaterOrEqual(t, f.Extent(), 0.0)
			assert.LessOrEqual(t, f.Extent(), 1.0)
		})
	}
}

func TestNewFeaturesDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		contour Contour
		reason  string
	}{
		{"horizontal line", Contour{{0, 0}, {5, 0}}, "bounding box height is zero"},
		{"vertical line", Contour{{0, 0}, {0, 5}}, "bounding box width is zero"},
		{"single point", Contour{{2, 2}}, ""},
		{"empty", Contour{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFeatures(tt.contour)

			var geomErr *errors.DegenerateGeometryError
			require.True(t, errors.As(err, &geomErr), "got %v", err)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, geomErr.Reason)
			}
		})
	}
}

func TestIsConvex(t *testing.T) {
	tests := []struct {
		name    string
		contour Contour
		want    bool
	}{
		{"square with collinear runs", square(10), true},
		{"triangle", triangle, true},
		{"diamond", diamond, true},
		{"reversed triangle", Contour{{0, 3}, {4, 0}, {0, 0}}, true},
		{"l shape", lShape, false},
		{"bow tie", Contour{{0, 0}, {2, 2}, {2, 0}, {0, 2}}, false},
		{"pentagram", pentagram, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConvex(tt.contour))
		})
	}
}

func TestConvexHull(t *testing.T) {
	hull := ConvexHull(square(4))
	assert.Len(t, hull, 4)
	assert.Equal(t, 16.0, Area(hull))

	hull = ConvexHull(lShape)
	assert.Equal(t, 3.5, Area(hull))
}

func TestNewFeaturesFromValues(t *testing.T) {
	valid := []float64{0.25, 0, 0.25, 0, 0.25, 0, 0.25, 0}

	tests := []struct {
		name      string
		hist      []float64
		circ      float64
		aspect    float64
		extent    float64
		wantParam string
	}{
		{"valid", valid, 0.78, 1, 1, ""},
		{"sum within tolerance", []float64{0.5, 0.5 + 5e-7, 0, 0, 0, 0, 0, 0}, 0.5, 1, 0.5, ""},
		{"seven entries", valid[:7], 0.78, 1, 1, "histogram"},
		{"negative entry", []float64{1.25, -0.25, 0, 0, 0, 0, 0, 0}, 0.78, 1, 1, "histogram"},
		{"nan entry", []float64{math.NaN(), 1, 0, 0, 0, 0, 0, 0}, 0.78, 1, 1, "histogram"},
		{"sum below one", []float64{0.2, 0.2, 0.2, 0.2, 0.1, 0, 0, 0}, 0.78, 1, 1, "histogram"},
		{"negative circularity", valid, -0.1, 1, 1, "circularity"},
		{"infinite aspect ratio", valid, 0.78, math.Inf(1), 1, "aspect_ratio"},
		{"extent above one", valid, 0.78, 1, 1.5, "extent"},
		{"nan extent", valid, 0.78, 1, math.NaN(), "extent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFeaturesFromValues(tt.hist, tt.circ, true, tt.aspect, tt.extent)
			if tt.wantParam == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.circ, f.Circularity())
				return
			}
			var vErr *errors.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.wantParam, vErr.ParamName)
		})
	}
}

func TestNewFeaturesFromValuesCopiesHistogram(t *testing.T) {
	hist := []float64{1, 0, 0, 0, 0, 0, 0, 0}
	f, err := NewFeaturesFromValues(hist, 0.5, false, 2, 0.5)
	require.NoError(t, err)

	hist[0] = 0
	assert.Equal(t, 1.0, f.Histogram()[0])
}

func TestVector(t *testing.T) {
	f, err := NewFeaturesFromValues([]float64{0, 0, 1, 0, 0, 0, 0, 0}, 0.5, true, 2, 0.75)
	require.NoError(t, err)

	want := []float64{0, 0, 1, 0, 0, 0, 0, 0, 0.5, 1, 2, 0.75}
	assert.Equal(t, want, f.Vector())
	assert.Equal(t, VectorLen, f.VecDense().Len())

	names := VectorNames()
	require.Len(t, names, VectorLen)
	assert.Equal(t, "hist_N", names[0])
	assert.Equal(t, "hist_NW", names[7])
	assert.Equal(t, "extent", names[11])
	assert.Equal(t, 0.75, f.VecDense().AtVec(11))
}

func TestDistance(t *testing.T) {
	east, err := NewFeaturesFromValues([]float64{0, 0, 1, 0, 0, 0, 0, 0}, 0.5, true, 1, 1)
	require.NoError(t, err)
	west, err := NewFeaturesFromValues([]float64{0, 0, 0, 0, 0, 0, 1, 0}, 0.5, true, 1, 1)
	require.NoError(t, err)

	d, err := east.Distance(west, 2)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, d, 1e-12)

	d, err = east.Distance(west, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-12)

	sq, err := NewFeatures(square(25))
	require.NoError(t, err)
	tri, err := NewFeatures(triangle)
	require.NoError(t, err)

	for p := 1; p <= 4; p++ {
		self, err := sq.Distance(sq, p)
		require.NoError(t, err)
		assert.Zero(t, self)

		ab, err := sq.Distance(tri, p)
		require.NoError(t, err)
		ba, err := tri.Distance(sq, p)
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
		assert.Greater(t, ab, 0.0)
	}
}

func TestDistanceLargeOrder(t *testing.T) {
	hist := []float64{0, 0, 1, 0, 0, 0, 0, 0}
	elongated, err := NewFeaturesFromValues(hist, 0.5, true, 20, 0.5)
	require.NoError(t, err)
	unit, err := NewFeaturesFromValues(hist, 0.5, true, 1, 0.5)
	require.NoError(t, err)
	rounder, err := NewFeaturesFromValues(hist, 0.55, true, 1, 0.5)
	require.NoError(t, err)

	for _, p := range []int{3, 100, 250, 1000} {
		d, err := elongated.Distance(unit, p)
		require.NoError(t, err)
		assert.InDelta(t, 19.0, d, 1e-9, "p=%d", p)

		d, err = unit.Distance(rounder, p)
		require.NoError(t, err)
		assert.InDelta(t, 0.05, d, 1e-9, "p=%d", p)
		assert.Greater(t, d, 0.0, "p=%d", p)
	}

	// 二成分が等しい差を持つ場合 2^(1/p) 倍
	twoDiffs, err := NewFeaturesFromValues(hist, 1.5, true, 2, 0.5)
	require.NoError(t, err)
	d, err := unit.Distance(twoDiffs, 250)
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(2, 1.0/250), d, 1e-12)
	assert.False(t, math.IsInf(d, 0))
}

func TestDistanceErrors(t *testing.T) {
	f, err := NewFeatures(triangle)
	require.NoError(t, err)

	_, err = f.Distance(f, 0)
	var vErr *errors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "p", vErr.ParamName)

	_, err = f.Distance(nil, 2)
	assert.True(t, errors.Is(err, errors.ErrNilFeatures))
}

func TestRecordRoundTrip(t *testing.T) {
	f, err := NewFeatures(diamond)
	require.NoError(t, err)

	back, err := f.Record().Features()
	require.NoError(t, err)
	assert.True(t, f.Equal(back))
	assert.Equal(t, f.String(), back.String())
}

func TestFeaturesString(t *testing.T) {
	f, err := NewFeatures(square(25))
	require.NoError(t, err)

	assert.Equal(t,
		"Histogram: [N=0.2500, NE=0.0000, E=0.2500, SE=0.0000, S=0.2500, SW=0.0000, W=0.2500, NW=0.0000] "+
			"Circularity: 0.7854 Convex: true AspectRatio: 1.0000 Extent: 1.0000",
		f.String())
}

func TestObject(t *testing.T) {
	obj, err := NewObject(square(25))
	require.NoError(t, err)

	assert.Equal(t, BoundingBox{X: 0, Y: 0, Width: 25, Height: 25}, obj.BoundingBox)
	assert.Equal(t, 625.0, obj.Area)
	assert.Equal(t, "BB: [25, 25] Area: 625", obj.String())

	tri, err := NewObject(triangle)
	require.NoError(t, err)
	assert.Equal(t, "BB: [4, 3] Area: 6", tri.String())

	_, err = NewObject(nil)
	var geomErr *errors.DegenerateGeometryError
	assert.True(t, errors.As(err, &geomErr))
}

func TestNewObjectCopiesContour(t *testing.T) {
	c := Contour{{0, 0}, {4, 0}, {0, 3}}
	obj, err := NewObject(c)
	require.NoError(t, err)

	c[1] = Point{100, 100}
	assert.Equal(t, Point{4, 0}, obj.Contour[1])
}

func TestByArea(t *testing.T) {
	var objects []*Object
	for _, c := range []Contour{square(10), triangle, rectangle(3, 2)} {
		obj, err := NewObject(c)
		require.NoError(t, err)
		objects = append(objects, obj)
	}

	sort.Sort(ByArea(objects))
	assert.Equal(t, []float64{6, 6, 100}, []float64{objects[0].Area, objects[1].Area, objects[2].Area})
	assert.True(t, sort.IsSorted(ByArea(objects)))
}

func TestDefaultExtractor(t *testing.T) {
	want, err := NewFeatures(diamond)
	require.NoError(t, err)

	got, err := DefaultExtractor.Extract(diamond)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	calls := 0
	custom := ExtractorFunc(func(c Contour) (*Features, error) {
		calls++
		return NewFeatures(c)
	})
	_, err = custom.Extract(triangle)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
