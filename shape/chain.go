package shape

import (
	"fmt"

	"github.com/YuminosukeSato/shapeml/pkg/errors"
)

// Direction is a Freeman chain code. 0 is north, increasing clockwise.
type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// NumDirections is the number of chain code symbols.
const NumDirections = 8

var directionNames = [NumDirections]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func (d Direction) String() string {
	if int(d) < NumDirections {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// Encode returns the chain code of the step from a to b.
//
// The first matching rule wins:
//
//	N  dy < 0, dx == 0
//	NE dy < 0, dx > 0
//	E  dx > 0, dy == 0
//	SE dy > 0, dx > 0
//	S  dy > 0, dx == 0
//	SW dx < 0, dy > 0
//	W  dx < 0, dy == 0
//	NW otherwise
//
// Steps are not required to be unit steps; only the signs matter.
// a == b has no direction and is reported as degenerate.
func Encode(a, b Point) (Direction, error) {
	dx, dy := b.X-a.X, b.Y-a.Y
	switch {
	case dx == 0 && dy == 0:
		return 0, errors.NewDegenerateGeometryError("shape.Encode",
			fmt.Sprintf("zero-length step at (%d, %d)", a.X, a.Y))
	case dy < 0 && dx == 0:
		return North, nil
	case dy < 0 && dx > 0:
		return NorthEast, nil
	case dx > 0 && dy == 0:
		return East, nil
	case dy > 0 && dx > 0:
		return SouthEast, nil
	case dy > 0 && dx == 0:
		return South, nil
	case dx < 0 && dy > 0:
		return SouthWest, nil
	case dx < 0 && dy == 0:
		return West, nil
	default:
		return NorthWest, nil
	}
}

// Chain encodes every consecutive pair of c, closing the loop from the last
// point back to the first. len(result) == len(c).
func Chain(c Contour) ([]Direction, error) {
	if len(c) < 2 {
		return nil, errors.NewDegenerateGeometryError("shape.Chain",
			fmt.Sprintf("contour needs at least 2 points, got %d", len(c)))
	}
	codes := make([]Direction, len(c))
	for i := range c {
		d, err := Encode(c[i], c[(i+1)%len(c)])
		if err != nil {
			return nil, errors.Wrapf(err, "step %d", i)
		}
		codes[i] = d
	}
	return codes, nil
}
