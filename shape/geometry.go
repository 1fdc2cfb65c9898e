package shape

import (
	"math"
	"sort"
)

// hullTolerance is the relative tolerance between a contour area and its hull area.
const hullTolerance = 1e-9

// Perimeter returns the length of the closed polyline through c.
func Perimeter(c Contour) float64 {
	var p float64
	for i := range c {
		a, b := c[i], c[(i+1)%len(c)]
		p += math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
	}
	return p
}

// signedArea is the shoelace sum. It is positive for counter-clockwise
// contours in a y-up frame, which is clockwise on screen.
func signedArea(c Contour) float64 {
	var s int
	for i := range c {
		a, b := c[i], c[(i+1)%len(c)]
		s += a.X*b.Y - b.X*a.Y
	}
	return float64(s) / 2
}

// Area returns the absolute area enclosed by c.
func Area(c Contour) float64 {
	return math.Abs(signedArea(c))
}

func cross(o, a, b Point) int {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// ConvexHull returns the hull of c in counter-clockwise order (y-up frame)
// using Andrew's monotone chain. Collinear boundary points are dropped.
func ConvexHull(c Contour) Contour {
	if len(c) < 3 {
		out := make(Contour, len(c))
		copy(out, c)
		return out
	}

	pts := make([]Point, len(c))
	copy(pts, c)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	hull := make(Contour, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// IsConvex reports whether c traces its own convex hull: every non-zero turn
// has the same orientation and the enclosed area equals the hull area.
// Straight runs of collinear points are allowed.
func IsConvex(c Contour) bool {
	n := len(c)
	if n < 3 {
		return true
	}

	sign := 0
	for i := range c {
		prev, cur, next := c[(i+n-1)%n], c[i], c[(i+1)%n]
		z := cross(prev, cur, next)
		switch {
		case z == 0:
			continue
		case sign == 0:
			sign = z
		case (z > 0) != (sign > 0):
			return false
		}
	}

	hullArea := Area(ConvexHull(c))
	return math.Abs(Area(c)-hullArea) <= hullTolerance*math.Max(hullArea, 1)
}
