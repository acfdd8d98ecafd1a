package collision

import (
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/validation"
)

// edgeTolerance is how far from the segment a point may lie and still be on it
const edgeTolerance = 1e-6

// Edge is a line segment with no thickness
type Edge struct {
	shapeBase
	Begin physics.Vector2D
	End   physics.Vector2D
}

// NewEdge creates an edge between two collider-local points
func NewEdge(begin, end physics.Vector2D) (*Edge, error) {
	if err := validation.ValidateSegment(begin, end); err != nil {
		return nil, err
	}
	return &Edge{Begin: begin, End: end}, nil
}

func (e *Edge) Kind() ShapeKind { return KindEdge }

// WorldLine returns the segment in world space
func (e *Edge) WorldLine() physics.Line {
	tf := e.transform()
	return physics.NewLine(tf.apply(e.Begin.Add(e.offset)), tf.apply(e.End.Add(e.offset)))
}

func (e *Edge) Center() physics.Vector2D {
	return e.WorldLine().Midpoint()
}

func (e *Edge) Bounds() physics.BoundingBox {
	l := e.WorldLine()
	return physics.FromPoints([]physics.Vector2D{l.Begin, l.End})
}

func (e *Edge) LocalBounds() physics.BoundingBox {
	return physics.FromPoints([]physics.Vector2D{e.Begin.Add(e.offset), e.End.Add(e.offset)})
}

// Axes returns the edge normal, its perpendicular, and both negations
func (e *Edge) Axes() []physics.Vector2D {
	n := e.WorldLine().Normal()
	p := n.Normal()
	return []physics.Vector2D{n, n.Negate(), p, p.Negate()}
}

func (e *Edge) Project(axis physics.Vector2D) physics.Projection {
	l := e.WorldLine()
	a, b := l.Begin.Dot(axis), l.End.Dot(axis)
	if a > b {
		a, b = b, a
	}
	return physics.Projection{Min: a, Max: b}
}

func (e *Edge) FurthestPoint(direction physics.Vector2D) physics.Vector2D {
	l := e.WorldLine()
	if l.Begin.Dot(direction) >= l.End.Dot(direction) {
		return l.Begin
	}
	return l.End
}

func (e *Edge) Contains(point physics.Vector2D) bool {
	return e.WorldLine().HasPoint(point, edgeTolerance)
}

func (e *Edge) RayCast(ray physics.Ray, maxDistance float64) (physics.Vector2D, bool) {
	t := ray.Intersect(e.WorldLine())
	if t < 0 || t > maxDistance {
		return physics.Vector2D{}, false
	}
	return ray.Point(t), true
}

func (e *Edge) Inertia(mass float64) float64 {
	half := e.End.Sub(e.Begin).Length() / 2
	return mass * half * half
}

func (e *Edge) Recalc() {}
