package collision

import (
	"fmt"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// Contact describes how two shapes overlap. Mtv and Normal point away from the
// first shape toward the second; moving the first shape by -Mtv (or the second
// by +Mtv) separates them. Point is a plausible application point for impulses,
// not an exact contact location.
type Contact struct {
	Mtv    physics.Vector2D
	Point  physics.Vector2D
	Normal physics.Vector2D
}

// Flip returns the same contact seen from the second shape
func (c *Contact) Flip() *Contact {
	if c == nil {
		return nil
	}
	return &Contact{Mtv: c.Mtv.Negate(), Point: c.Point, Normal: c.Normal.Negate()}
}

// Side returns the side of the first shape the second one touches
func (c *Contact) Side() physics.Side {
	return physics.SideFromDirection(c.Mtv)
}

// UnsupportedShapeError is returned when the intersection table has no entry
// for a pair of shape kinds
type UnsupportedShapeError struct {
	A, B ShapeKind
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("collision: no intersection routine for %s and %s", e.A, e.B)
}
