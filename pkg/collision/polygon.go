package collision

import (
	"math"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/validation"
)

// Polygon is a convex polygon. Points are stored so that consecutive points
// wind with positive signed area, which makes every side normal point outward.
//
// World-space vertices, sides and axes are cached. The cache remembers the body
// transform it was built from and is rebuilt lazily on first use after the body
// moves or rotates, or after Recalc.
type Polygon struct {
	shapeBase
	points []physics.Vector2D

	cached    bool
	cachedFor transform
	vertices  []physics.Vector2D
	sides     []physics.Line
	axes      []physics.Vector2D
}

// NewPolygon validates points and creates a convex polygon shape
func NewPolygon(points []physics.Vector2D, offset physics.Vector2D) (*Polygon, error) {
	if err := validation.ValidatePolygon(points); err != nil {
		return nil, err
	}
	if err := validation.ValidatePoint(offset); err != nil {
		return nil, err
	}
	return newPolygon(points, offset), nil
}

// NewBox creates a width by height box. anchor is the fraction of the size that
// sits on the collider origin, so (0.5, 0.5) centres the box.
func NewBox(width, height float64, anchor, offset physics.Vector2D) (*Polygon, error) {
	if err := validation.ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	b := physics.FromDimension(width, height, anchor, physics.Vector2D{})
	return NewPolygon(b.Points(), offset)
}

func newPolygon(points []physics.Vector2D, offset physics.Vector2D) *Polygon {
	pts := make([]physics.Vector2D, len(points))
	copy(pts, points)
	if validation.SignedArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return &Polygon{shapeBase: shapeBase{offset: offset}, points: pts}
}

func (p *Polygon) Kind() ShapeKind { return KindPolygon }

// Points returns a copy of the collider-local points
func (p *Polygon) Points() []physics.Vector2D {
	out := make([]physics.Vector2D, len(p.points))
	copy(out, p.points)
	return out
}

// Recalc drops the world-space cache
func (p *Polygon) Recalc() {
	p.cached = false
	p.vertices = p.vertices[:0]
	p.sides = p.sides[:0]
	p.axes = p.axes[:0]
}

func (p *Polygon) refresh() {
	tf := p.transform()
	if p.cached && p.cachedFor.same(tf) {
		return
	}

	p.vertices = p.vertices[:0]
	for _, pt := range p.points {
		p.vertices = append(p.vertices, tf.apply(pt.Add(p.offset)))
	}

	p.sides = p.sides[:0]
	p.axes = p.axes[:0]
	n := len(p.vertices)
	for i := range p.vertices {
		side := physics.NewLine(p.vertices[i], p.vertices[(i+1)%n])
		p.sides = append(p.sides, side)
		p.axes = append(p.axes, side.Normal())
	}

	p.cached = true
	p.cachedFor = tf
}

// Vertices returns a copy of the world-space vertices
func (p *Polygon) Vertices() []physics.Vector2D {
	return append([]physics.Vector2D(nil), p.worldVertices()...)
}

// Sides returns a copy of the world-space sides, side i running from vertex i to i+1
func (p *Polygon) Sides() []physics.Line {
	return append([]physics.Line(nil), p.worldSides()...)
}

// Axes returns a copy of the outward unit normal of every side
func (p *Polygon) Axes() []physics.Vector2D {
	return append([]physics.Vector2D(nil), p.worldAxes()...)
}

// the world* accessors return the cache itself, valid until the body moves

func (p *Polygon) worldVertices() []physics.Vector2D {
	p.refresh()
	return p.vertices
}

func (p *Polygon) worldSides() []physics.Line {
	p.refresh()
	return p.sides
}

func (p *Polygon) worldAxes() []physics.Vector2D {
	p.refresh()
	return p.axes
}

// Center returns the vertex average
func (p *Polygon) Center() physics.Vector2D {
	verts := p.worldVertices()
	var sum physics.Vector2D
	for _, v := range verts {
		sum = sum.Add(v)
	}
	return sum.Scale(1 / float64(len(verts)))
}

func (p *Polygon) Bounds() physics.BoundingBox {
	return physics.FromPoints(p.worldVertices())
}

func (p *Polygon) LocalBounds() physics.BoundingBox {
	return physics.FromPoints(p.points).Translate(p.offset)
}

func (p *Polygon) Project(axis physics.Vector2D) physics.Projection {
	verts := p.worldVertices()
	proj := physics.Projection{Min: math.MaxFloat64, Max: -math.MaxFloat64}
	for _, v := range verts {
		d := v.Dot(axis)
		proj.Min = math.Min(proj.Min, d)
		proj.Max = math.Max(proj.Max, d)
	}
	return proj
}

func (p *Polygon) FurthestPoint(direction physics.Vector2D) physics.Vector2D {
	verts := p.worldVertices()
	best := verts[0]
	bestDot := best.Dot(direction)
	for _, v := range verts[1:] {
		if d := v.Dot(direction); d > bestDot {
			best, bestDot = v, d
		}
	}
	return best
}

// Contains reports whether point lies inside or on the polygon
func (p *Polygon) Contains(point physics.Vector2D) bool {
	for i, side := range p.worldSides() {
		if point.Sub(side.Begin).Dot(p.axes[i]) > 0 {
			return false
		}
	}
	return true
}

// ClosestFace returns the side nearest to point and the outward normal of that
// side scaled by the distance
func (p *Polygon) ClosestFace(point physics.Vector2D) (physics.Line, physics.Vector2D) {
	sides := p.worldSides()
	best := 0
	bestDist := math.MaxFloat64
	for i, side := range sides {
		if d := side.DistanceToPoint(point); d < bestDist {
			best, bestDist = i, d
		}
	}
	return sides[best], p.axes[best].Scale(bestDist)
}

// RayCast returns the nearest point where the ray crosses a side
func (p *Polygon) RayCast(ray physics.Ray, maxDistance float64) (physics.Vector2D, bool) {
	if !p.Bounds().RayCast(ray, maxDistance) {
		return physics.Vector2D{}, false
	}

	best := math.MaxFloat64
	for _, side := range p.worldSides() {
		if t := ray.Intersect(side); t >= 0 && t < best {
			best = t
		}
	}
	if best > maxDistance {
		return physics.Vector2D{}, false
	}
	return ray.Point(best), true
}

// Inertia returns the moment of inertia about the collider origin
func (p *Polygon) Inertia(mass float64) float64 {
	var numerator, denominator float64
	n := len(p.points)
	for i := range p.points {
		a := p.points[i].Add(p.offset)
		b := p.points[(i+1)%n].Add(p.offset)
		cross := math.Abs(b.Cross(a))
		numerator += cross * (a.Dot(a) + a.Dot(b) + b.Dot(b))
		denominator += cross
	}
	if denominator == 0 {
		return 0
	}
	return mass / 6 * numerator / denominator
}
