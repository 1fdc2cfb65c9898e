// Package shape extracts geometric descriptors from 2-D contours.
//
// A Contour is the ordered, closed boundary of a segmented object. From it the
// package derives a Freeman chain code, a bounding box, an area and the
// Features descriptor consumed by the classifiers in neighbors and linear.
package shape

import (
	"fmt"
	"strconv"

	"github.com/YuminosukeSato/shapeml/pkg/errors"
)

// Point is a pixel coordinate. Y grows downward.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Contour is an ordered, cyclic sequence of points. The last point connects
// back to the first.
type Contour []Point

// BoundingBox is the axis-aligned box spanned by the contour points.
// Width and Height are point extents (maxX-minX, maxY-minY).
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BoundingBox returns the box spanned by c. An empty contour yields the zero box.
func (c Contour) BoundingBox() BoundingBox {
	if len(c) == 0 {
		return BoundingBox{}
	}
	minX, maxX := c[0].X, c[0].X
	minY, maxY := c[0].Y, c[0].Y
	for _, p := range c[1:] {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	return BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Object is a segmented shape: its contour with the derived box and area.
type Object struct {
	Contour     Contour
	BoundingBox BoundingBox
	Area        float64
}

// NewObject copies contour and computes its bounding box and enclosed area.
func NewObject(contour Contour) (*Object, error) {
	if len(contour) == 0 {
		return nil, errors.NewDegenerateGeometryError("shape.NewObject", "empty contour")
	}
	c := make(Contour, len(contour))
	copy(c, contour)
	return &Object{
		Contour:     c,
		BoundingBox: c.BoundingBox(),
		Area:        Area(c),
	}, nil
}

func (o *Object) String() string {
	return fmt.Sprintf("BB: [%d, %d] Area: %s",
		o.BoundingBox.Width, o.BoundingBox.Height, strconv.FormatFloat(o.Area, 'g', -1, 64))
}

// ByArea sorts objects by increasing area.
type ByArea []*Object

func (a ByArea) Len() int           { return len(a) }
func (a ByArea) Less(i, j int) bool { return a[i].Area < a[j].Area }
func (a ByArea) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
