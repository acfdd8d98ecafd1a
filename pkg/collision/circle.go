package collision

import (
	"math"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/validation"
)

// Circle is a disc of Radius centred on the collider offset
type Circle struct {
	shapeBase
	Radius float64
}

// NewCircle creates a circle shape
func NewCircle(radius float64, offset physics.Vector2D) (*Circle, error) {
	if err := validation.ValidateRadius(radius); err != nil {
		return nil, err
	}
	if err := validation.ValidatePoint(offset); err != nil {
		return nil, err
	}
	return &Circle{shapeBase: shapeBase{offset: offset}, Radius: radius}, nil
}

func (c *Circle) Kind() ShapeKind { return KindCircle }

func (c *Circle) Center() physics.Vector2D {
	return c.transform().apply(c.offset)
}

func (c *Circle) Bounds() physics.BoundingBox {
	center := c.Center()
	return physics.BoundingBox{
		Left:   center.X - c.Radius,
		Top:    center.Y - c.Radius,
		Right:  center.X + c.Radius,
		Bottom: center.Y + c.Radius,
	}
}

func (c *Circle) LocalBounds() physics.BoundingBox {
	return physics.PointBounds(c.offset).Pad(c.Radius)
}

// Axes is nil: a circle has no face normals and is handled per pair
func (c *Circle) Axes() []physics.Vector2D {
	return nil
}

func (c *Circle) Project(axis physics.Vector2D) physics.Projection {
	d := c.Center().Dot(axis)
	r := c.Radius * axis.Length()
	return physics.Projection{Min: d - r, Max: d + r}
}

func (c *Circle) FurthestPoint(direction physics.Vector2D) physics.Vector2D {
	return c.Center().Add(direction.Normalize().Scale(c.Radius))
}

func (c *Circle) Contains(point physics.Vector2D) bool {
	return c.Center().Distance(point) <= c.Radius
}

// RayCast returns the first point where the ray enters the circle. A ray that
// starts inside reports its exit point.
func (c *Circle) RayCast(ray physics.Ray, maxDistance float64) (physics.Vector2D, bool) {
	oc := ray.Pos.Sub(c.Center())
	b := ray.Dir.Dot(oc)
	disc := b*b - (oc.LengthSquared() - c.Radius*c.Radius)
	if disc < 0 {
		return physics.Vector2D{}, false
	}

	root := math.Sqrt(disc)
	t := -b - root
	if t < 0 {
		t = -b + root
	}
	if t < 0 || t > maxDistance {
		return physics.Vector2D{}, false
	}
	return ray.Point(t), true
}

func (c *Circle) Inertia(mass float64) float64 {
	return mass * c.Radius * c.Radius / 2
}

// Recalc is a no-op; circles hold no world-space cache
func (c *Circle) Recalc() {}
