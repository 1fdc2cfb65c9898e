package shape

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/shapeml/pkg/errors"
)

const (
	// VectorLen is the dimensionality of Features.Vector.
	VectorLen = NumDirections + 4

	// DefaultNorm is the Minkowski order used when none is configured.
	DefaultNorm = 2

	// histogramTolerance bounds |sum(histogram) - 1| for supplied histograms.
	histogramTolerance = 1e-6
)

// Features is the shape descriptor: a normalized chain code histogram plus
// four scalar measures. It is immutable once constructed.
type Features struct {
	histogram   [NumDirections]float64
	circularity float64
	convex      bool
	aspectRatio float64
	extent      float64
}

// NewFeatures computes the descriptor of c.
//
// The contour must have at least two points, no zero-length steps, a
// non-zero bounding box height and width and a positive perimeter.
func NewFeatures(c Contour) (*Features, error) {
	const op = "shape.NewFeatures"

	codes, err := Chain(c)
	if err != nil {
		return nil, err
	}

	bb := c.BoundingBox()
	if bb.Height == 0 {
		return nil, errors.NewDegenerateGeometryError(op, "bounding box height is zero")
	}
	if bb.Width == 0 {
		return nil, errors.NewDegenerateGeometryError(op, "bounding box width is zero")
	}
	perimeter := Perimeter(c)
	if perimeter == 0 {
		return nil, errors.NewDegenerateGeometryError(op, "perimeter is zero")
	}

	f := &Features{}
	for _, d := range codes {
		f.histogram[d]++
	}
	floats.Scale(1/float64(len(codes)), f.histogram[:])

	area := Area(c)
	f.circularity = 4 * math.Pi * area / (perimeter * perimeter)
	f.convex = IsConvex(c)
	f.aspectRatio = float64(bb.Width) / float64(bb.Height)
	f.extent = area / float64(bb.Width*bb.Height)
	return f, nil
}

// NewFeaturesFromValues builds a descriptor from stored values.
//
// hist must have exactly 8 finite, non-negative entries summing to 1 within
// 1e-6. circularity and aspectRatio must be finite and non-negative and
// extent must lie in [0, 1].
func NewFeaturesFromValues(hist []float64, circularity float64, convex bool, aspectRatio, extent float64) (*Features, error) {
	if len(hist) != NumDirections {
		return nil, errors.NewValidationError("histogram", "must contain exactly 8 entries", len(hist))
	}
	for i, v := range hist {
		if !isFinite(v) || v < 0 {
			return nil, errors.NewValidationError("histogram",
				fmt.Sprintf("entry %d must be finite and non-negative", i), v)
		}
	}
	if sum := floats.Sum(hist); math.Abs(sum-1) > histogramTolerance {
		return nil, errors.NewValidationError("histogram", "entries must sum to 1", sum)
	}
	if !isFinite(circularity) || circularity < 0 {
		return nil, errors.NewValidationError("circularity", "must be finite and non-negative", circularity)
	}
	if !isFinite(aspectRatio) || aspectRatio < 0 {
		return nil, errors.NewValidationError("aspect_ratio", "must be finite and non-negative", aspectRatio)
	}
	if !isFinite(extent) || extent < 0 || extent > 1 {
		return nil, errors.NewValidationError("extent", "must lie in [0, 1]", extent)
	}

	f := &Features{
		circularity: circularity,
		convex:      convex,
		aspectRatio: aspectRatio,
		extent:      extent,
	}
	copy(f.histogram[:], hist)
	return f, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Histogram returns the normalized chain code histogram indexed by Direction.
func (f *Features) Histogram() [NumDirections]float64 { return f.histogram }

// Circularity returns 4π·area/perimeter².
func (f *Features) Circularity() float64 { return f.circularity }

// Convex reports whether the contour equals its convex hull.
func (f *Features) Convex() bool { return f.convex }

// AspectRatio returns bounding box width over height.
func (f *Features) AspectRatio() float64 { return f.aspectRatio }

// Extent returns area over bounding box area.
func (f *Features) Extent() float64 { return f.extent }

// Vector returns the 12-dim vector: histogram, circularity, convex as 0/1,
// aspect ratio and extent. The slice is a fresh copy.
func (f *Features) Vector() []float64 {
	v := make([]float64, 0, VectorLen)
	v = append(v, f.histogram[:]...)
	convex := 0.0
	if f.convex {
		convex = 1
	}
	return append(v, f.circularity, convex, f.aspectRatio, f.extent)
}

// VectorNames returns the names of the Vector components, in order.
func VectorNames() []string {
	names := make([]string, 0, VectorLen)
	for d := North; d <= NorthWest; d++ {
		names = append(names, "hist_"+d.String())
	}
	return append(names, "circularity", "convex", "aspect_ratio", "extent")
}

// VecDense returns Vector as a gonum column vector.
func (f *Features) VecDense() *mat.VecDense {
	return mat.NewVecDense(VectorLen, f.Vector())
}

// Distance returns the Minkowski distance of order p between the vectors of
// f and other. It is symmetric and zero for identical descriptors.
func (f *Features) Distance(other *Features, p int) (float64, error) {
	if other == nil {
		return 0, errors.Wrap(errors.ErrNilFeatures, "Features.Distance")
	}
	if p < 1 {
		return 0, errors.NewValidationError("p", "Minkowski order must be at least 1", p)
	}
	if p <= 2 {
		return floats.Distance(f.Vector(), other.Vector(), float64(p)), nil
	}
	return scaledMinkowski(floats.SubTo(make([]float64, VectorLen), f.Vector(), other.Vector()), float64(p)), nil
}

// scaledMinkowski returns the L-p norm of diff computed as
// m * (sum (|d_i|/m)^p)^(1/p) with m = max|d_i|, so large p neither
// underflows to 0 nor overflows to +Inf. diff is overwritten.
func scaledMinkowski(diff []float64, p float64) float64 {
	m := floats.Norm(diff, math.Inf(1))
	if m == 0 || math.IsInf(m, 0) || math.IsNaN(m) {
		return m
	}
	for i := range diff {
		diff[i] /= m
	}
	return m * floats.Norm(diff, p)
}

// Equal reports whether f and other hold identical values.
func (f *Features) Equal(other *Features) bool {
	if f == nil || other == nil {
		return f == other
	}
	return *f == *other
}

func (f *Features) String() string {
	var b strings.Builder
	b.WriteString("Histogram: [")
	for i, v := range f.histogram {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%.4f", Direction(i), v)
	}
	fmt.Fprintf(&b, "] Circularity: %.4f Convex: %t AspectRatio: %.4f Extent: %.4f",
		f.circularity, f.convex, f.aspectRatio, f.extent)
	return b.String()
}

// Record is the serialized form of Features.
type Record struct {
	Histogram   []float64 `json:"histogram"`
	Circularity float64   `json:"circularity"`
	Convex      bool      `json:"convex"`
	AspectRatio float64   `json:"aspect_ratio"`
	Extent      float64   `json:"extent"`
}

// Record returns the serializable values of f.
func (f *Features) Record() Record {
	return Record{
		Histogram:   append([]float64(nil), f.histogram[:]...),
		Circularity: f.circularity,
		Convex:      f.convex,
		AspectRatio: f.aspectRatio,
		Extent:      f.extent,
	}
}

// Features validates r and rebuilds the descriptor.
func (r Record) Features() (*Features, error) {
	return NewFeaturesFromValues(r.Histogram, r.Circularity, r.Convex, r.AspectRatio, r.Extent)
}

// LabeledInstance pairs a class label with a descriptor. Duplicates are legal.
type LabeledInstance struct {
	Label    string
	Features *Features
}
