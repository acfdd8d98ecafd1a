package physics

// Ray is a half-line starting at Pos heading along the unit vector Dir
type Ray struct {
	Pos Vector2D
	Dir Vector2D
}

// NewRay creates a ray and normalizes its direction
func NewRay(pos, dir Vector2D) Ray {
	return Ray{Pos: pos, Dir: dir.Normalize()}
}

// Intersect returns the distance along the ray at which it crosses line,
// or -1 when they do not meet. Parallel lines never intersect.
func (r Ray) Intersect(line Line) float64 {
	numerator := line.Begin.Sub(r.Pos)
	slope := line.Slope()

	divisor := r.Dir.Cross(slope)
	if divisor == 0 {
		return -1
	}

	length := line.Length()
	if length == 0 {
		return -1
	}

	t := numerator.Cross(slope) / divisor
	if t >= 0 {
		u := numerator.Cross(r.Dir) / divisor / length
		if u >= 0 && u <= 1 {
			return t
		}
	}
	return -1
}

// Point returns the point at distance t along the ray
func (r Ray) Point(t float64) Vector2D {
	return r.Pos.Add(r.Dir.Scale(t))
}
