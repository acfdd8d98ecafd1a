package physics

import "math"

// Side names the face of a body a collision happened on
type Side string

const (
	SideNone   Side = "none"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// SideFromDirection returns the side a direction vector points toward
func SideFromDirection(direction Vector2D) Side {
	if direction.IsZero() {
		return SideNone
	}
	if math.Abs(direction.X) >= math.Abs(direction.Y) {
		if direction.X < 0 {
			return SideLeft
		}
		return SideRight
	}
	if direction.Y < 0 {
		return SideTop
	}
	return SideBottom
}

// Opposite returns the side facing this one
func (s Side) Opposite() Side {
	switch s {
	case SideTop:
		return SideBottom
	case SideBottom:
		return SideTop
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	default:
		return SideNone
	}
}
