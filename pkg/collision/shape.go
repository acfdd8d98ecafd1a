// Package collision implements the collision pipeline: shapes and the colliders
// and bodies that own them, the shape-pair intersection table, collision pairs
// and their resolution, and the dynamic tree broadphase that ties them together.
package collision

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// ShapeKind tags the concrete type behind a Shape
type ShapeKind int

const (
	KindCircle ShapeKind = iota
	KindPolygon
	KindEdge
)

func (k ShapeKind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindPolygon:
		return "polygon"
	case KindEdge:
		return "edge"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Shape is collision geometry stored in collider-local space. World-space
// queries use the position and rotation of the body that owns the collider.
// The set of shapes is closed: Circle, Polygon and Edge.
type Shape interface {
	Kind() ShapeKind
	Offset() physics.Vector2D
	Collider() *Collider

	Center() physics.Vector2D
	Bounds() physics.BoundingBox
	LocalBounds() physics.BoundingBox
	// Axes returns the SAT axes in world space; nil for circles.
	Axes() []physics.Vector2D
	Project(axis physics.Vector2D) physics.Projection
	FurthestPoint(direction physics.Vector2D) physics.Vector2D
	Contains(point physics.Vector2D) bool
	RayCast(ray physics.Ray, maxDistance float64) (physics.Vector2D, bool)
	Inertia(mass float64) float64
	Recalc()

	bind(c *Collider)
}

// transform maps collider-local points into world space: rotate about the body
// position, then translate.
type transform struct {
	pos      physics.Vector2D
	rotation float64
	rot      mgl64.Mat2
}

func newTransform(pos physics.Vector2D, rotation float64) transform {
	return transform{pos: pos, rotation: rotation, rot: mgl64.Rotate2D(rotation)}
}

var identity = newTransform(physics.Vector2D{}, 0)

func (t transform) apply(p physics.Vector2D) physics.Vector2D {
	v := t.rot.Mul2x1(mgl64.Vec2{p.X, p.Y})
	return physics.Vector2D{X: v[0] + t.pos.X, Y: v[1] + t.pos.Y}
}

func (t transform) same(other transform) bool {
	return t.pos == other.pos && t.rotation == other.rotation
}

// shapeBase carries what every shape variant shares
type shapeBase struct {
	offset   physics.Vector2D
	collider *Collider
}

func (s *shapeBase) Offset() physics.Vector2D {
	return s.offset
}

func (s *shapeBase) Collider() *Collider {
	return s.collider
}

func (s *shapeBase) bind(c *Collider) {
	s.collider = c
}

func (s *shapeBase) transform() transform {
	if s.collider == nil || s.collider.body == nil {
		return identity
	}
	b := s.collider.body
	return newTransform(b.Pos, b.Rotation)
}
