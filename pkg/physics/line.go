package physics

import "math"

// Line is a segment between two points
type Line struct {
	Begin Vector2D
	End   Vector2D
}

// NewLine creates a segment from begin to end
func NewLine(begin, end Vector2D) Line {
	return Line{Begin: begin, End: end}
}

// Edge returns the unnormalized vector from Begin to End
func (l Line) Edge() Vector2D {
	return l.End.Sub(l.Begin)
}

// Slope returns the unit direction from Begin to End
func (l Line) Slope() Vector2D {
	return l.Edge().Normalize()
}

// Normal returns the unit normal of the segment
func (l Line) Normal() Vector2D {
	return l.Edge().Normal()
}

// Length returns the segment length
func (l Line) Length() float64 {
	return l.Begin.Distance(l.End)
}

// Midpoint returns the center of the segment
func (l Line) Midpoint() Vector2D {
	return l.Begin.Average(l.End)
}

// DistanceToPoint returns the distance from point to the infinite line through the segment.
// A zero-length segment measures the distance to Begin.
func (l Line) DistanceToPoint(point Vector2D) float64 {
	length := l.Length()
	if length == 0 {
		return l.Begin.Distance(point)
	}
	return math.Abs(l.Edge().Cross(point.Sub(l.Begin))) / length
}

// ClosestPoint returns the point on the segment nearest to point
func (l Line) ClosestPoint(point Vector2D) Vector2D {
	edge := l.Edge()
	denom := edge.LengthSquared()
	if denom == 0 {
		return l.Begin
	}
	t := point.Sub(l.Begin).Dot(edge) / denom
	t = math.Max(0, math.Min(1, t))
	return l.Begin.Add(edge.Scale(t))
}

// HasPoint reports whether point lies on the segment within tolerance
func (l Line) HasPoint(point Vector2D, tolerance float64) bool {
	return l.ClosestPoint(point).Distance(point) <= tolerance
}
