package collision

import (
	"math"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// edgeExtrusion is how far an edge is extruded into a quad for polygon tests
const edgeExtrusion = 30

type intersectFunc func(a, b Shape) *Contact

// intersectTable holds one routine per ordered pair of shape kinds. Reversed
// pairs run the canonical routine with swapped arguments and flip the result.
var intersectTable = map[[2]ShapeKind]intersectFunc{
	{KindCircle, KindCircle}: func(a, b Shape) *Contact {
		return circleCircle(a.(*Circle), b.(*Circle))
	},
	{KindCircle, KindPolygon}: func(a, b Shape) *Contact {
		return circlePolygon(a.(*Circle), b.(*Polygon))
	},
	{KindCircle, KindEdge}: func(a, b Shape) *Contact {
		return circleEdge(a.(*Circle), b.(*Edge))
	},
	{KindPolygon, KindPolygon}: func(a, b Shape) *Contact {
		return polygonPolygon(a.(*Polygon), b.(*Polygon))
	},
	{KindPolygon, KindEdge}: func(a, b Shape) *Contact {
		return polygonEdge(a.(*Polygon), b.(*Edge))
	},
	{KindEdge, KindEdge}: func(a, b Shape) *Contact {
		return nil
	},
	{KindPolygon, KindCircle}: func(a, b Shape) *Contact {
		return circlePolygon(b.(*Circle), a.(*Polygon)).Flip()
	},
	{KindEdge, KindCircle}: func(a, b Shape) *Contact {
		return circleEdge(b.(*Circle), a.(*Edge)).Flip()
	},
	{KindEdge, KindPolygon}: func(a, b Shape) *Contact {
		return polygonEdge(b.(*Polygon), a.(*Edge)).Flip()
	},
}

// Intersect tests two shapes and returns their contact, or nil when they do not
// overlap. The contact points from a toward b.
func Intersect(a, b Shape) (*Contact, error) {
	fn, ok := intersectTable[[2]ShapeKind{a.Kind(), b.Kind()}]
	if !ok {
		return nil, &UnsupportedShapeError{A: a.Kind(), B: b.Kind()}
	}
	return fn(a, b), nil
}

func circleCircle(a, b *Circle) *Contact {
	ca, cb := a.Center(), b.Center()
	radii := a.Radius + b.Radius
	dist := ca.Distance(cb)
	if dist > radii {
		return nil
	}

	normal := cb.Sub(ca).Normalize()
	if normal.IsZero() {
		normal = physics.Vector2D{X: 0, Y: 1}
	}
	return &Contact{
		Mtv:    normal.Scale(radii - dist),
		Point:  a.FurthestPoint(normal),
		Normal: normal,
	}
}

// minimumSeparation runs SAT over axes and returns the axis of least overlap
// scaled by that overlap. Zero-length axes are skipped. It fails as soon as one
// axis separates the shapes or when no axis was usable.
func minimumSeparation(a, b Shape, axes []physics.Vector2D) (physics.Vector2D, bool) {
	minOverlap := math.MaxFloat64
	var minAxis physics.Vector2D
	found := false

	for _, axis := range axes {
		axis = axis.Normalize()
		if axis.IsZero() {
			continue
		}
		overlap := a.Project(axis).GetOverlap(b.Project(axis))
		if overlap <= 0 {
			return physics.Vector2D{}, false
		}
		if overlap < minOverlap {
			minOverlap = overlap
			minAxis = axis
			found = true
		}
	}
	if !found {
		return physics.Vector2D{}, false
	}
	return minAxis.Scale(minOverlap), true
}

// orient flips mtv so it points from the center of a toward the center of b
func orient(mtv physics.Vector2D, a, b Shape) physics.Vector2D {
	if mtv.Dot(b.Center().Sub(a.Center())) < 0 {
		return mtv.Negate()
	}
	return mtv
}

// contactPoint takes the furthest point of each shape into the other along the
// resolving axis and keeps those that lie inside the other shape. Two survivors
// are averaged; with none, b's furthest point is used.
func contactPoint(a, b Shape, axis physics.Vector2D) physics.Vector2D {
	pointA := a.FurthestPoint(axis)
	pointB := b.FurthestPoint(axis.Negate())

	inB := b.Contains(pointA)
	inA := a.Contains(pointB)
	switch {
	case inA && inB:
		return pointA.Average(pointB)
	case inB:
		return pointA
	default:
		return pointB
	}
}

func circlePolygon(c *Circle, p *Polygon) *Contact {
	cc := c.Center()
	toward := p.FurthestPoint(cc.Sub(p.Center()))

	polyAxes := p.worldAxes()
	axes := make([]physics.Vector2D, 0, len(polyAxes)+1)
	axes = append(axes, polyAxes...)
	axes = append(axes, cc.Sub(toward))

	mtv, ok := minimumSeparation(p, c, axes)
	if !ok {
		return nil
	}
	mtv = orient(mtv, c, p)
	normal := mtv.Normalize()
	return &Contact{Mtv: mtv, Point: contactPoint(c, p, normal), Normal: normal}
}

// circleEdge picks one of three regions from the scalar projections of the
// circle center onto the edge: past the begin point, past the end point, or
// alongside the segment.
func circleEdge(c *Circle, e *Edge) *Contact {
	cc := c.Center()
	line := e.WorldLine()
	edge := line.Edge()

	u := edge.Dot(line.End.Sub(cc))
	v := edge.Dot(cc.Sub(line.Begin))

	endpoint := func(p physics.Vector2D) *Contact {
		d := p.Sub(cc)
		dist := d.Length()
		if dist > c.Radius {
			return nil
		}
		n := d.Normalize()
		return &Contact{Mtv: n.Scale(c.Radius - dist), Point: p, Normal: n}
	}

	if v <= 0 {
		return endpoint(line.Begin)
	}
	if u <= 0 {
		return endpoint(line.End)
	}

	den := edge.Dot(edge)
	onEdge := line.Begin.Scale(u).Add(line.End.Scale(v)).Scale(1 / den)
	d := cc.Sub(onEdge)
	dist := d.Length()
	if dist > c.Radius {
		return nil
	}

	n := edge.Perpendicular()
	if n.Dot(cc.Sub(line.Begin)) < 0 {
		n = n.Negate()
	}
	n = n.Normalize().Negate()
	return &Contact{Mtv: n.Scale(math.Abs(c.Radius - dist)), Point: onEdge, Normal: n}
}

func polygonPolygon(a, b *Polygon) *Contact {
	axesA, axesB := a.worldAxes(), b.worldAxes()
	axes := make([]physics.Vector2D, 0, len(axesA)+len(axesB))
	axes = append(axes, axesA...)
	axes = append(axes, axesB...)

	mtv, ok := minimumSeparation(a, b, axes)
	if !ok {
		return nil
	}
	mtv = orient(mtv, a, b)
	normal := mtv.Normalize()
	return &Contact{Mtv: mtv, Point: contactPoint(a, b, normal), Normal: normal}
}

// polygonEdge resolves an edge endpoint buried in the polygon through the
// nearest face. Otherwise the edge is extruded away from the polygon into a quad
// and the two are tested with SAT.
func polygonEdge(p *Polygon, e *Edge) *Contact {
	line := e.WorldLine()

	for _, end := range []physics.Vector2D{line.Begin, line.End} {
		if !p.Contains(end) {
			continue
		}
		_, mtv := p.ClosestFace(end)
		normal := mtv.Normalize()
		if normal.IsZero() {
			continue
		}
		return &Contact{Mtv: mtv, Point: end, Normal: normal}
	}

	// an edge through the center, or running along the center direction,
	// is extruded along its own normal
	dir := line.Midpoint().Sub(p.Center()).Normalize()
	if dir.IsZero() || math.Abs(line.Edge().Normalize().Cross(dir)) < 1e-9 {
		dir = line.Normal()
	}
	if dir.IsZero() {
		return nil
	}
	quadPoints := []physics.Vector2D{
		line.Begin,
		line.End,
		line.End.Add(dir.Scale(edgeExtrusion)),
		line.Begin.Add(dir.Scale(edgeExtrusion)),
	}
	quad := newPolygon(quadPoints, physics.Vector2D{})

	mtv, ok := minimumSeparation(p, quad, append(append([]physics.Vector2D{}, p.worldAxes()...), quad.worldAxes()...))
	if !ok {
		return nil
	}
	if mtv.Dot(dir) < 0 {
		mtv = mtv.Negate()
	}
	normal := mtv.Normalize()
	return &Contact{Mtv: mtv, Point: contactPoint(p, quad, normal), Normal: normal}
}
