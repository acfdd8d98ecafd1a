package physics

import "math"

// BoundingBox is an axis-aligned box. Y grows downward, so Top <= Bottom.
type BoundingBox struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// NewBoundingBox creates a box, swapping edges if they are given out of order
func NewBoundingBox(left, top, right, bottom float64) BoundingBox {
	if left > right {
		left, right = right, left
	}
	if top > bottom {
		top, bottom = bottom, top
	}
	return BoundingBox{Left: left, Top: top, Right: right, Bottom: bottom}
}

// FromPoints returns the smallest box containing every point
func FromPoints(points []Vector2D) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{}
	}
	b := PointBounds(points[0])
	for _, p := range points[1:] {
		b.Left = math.Min(b.Left, p.X)
		b.Top = math.Min(b.Top, p.Y)
		b.Right = math.Max(b.Right, p.X)
		b.Bottom = math.Max(b.Bottom, p.Y)
	}
	return b
}

// FromDimension creates a box of the given size, positioned so that anchor
// (a fraction of the size) sits on pos
func FromDimension(width, height float64, anchor, pos Vector2D) BoundingBox {
	left := pos.X - width*anchor.X
	top := pos.Y - height*anchor.Y
	return NewBoundingBox(left, top, left+width, top+height)
}

// PointBounds returns a zero-sized box at p
func PointBounds(p Vector2D) BoundingBox {
	return BoundingBox{Left: p.X, Top: p.Y, Right: p.X, Bottom: p.Y}
}

// Width returns the horizontal extent
func (b BoundingBox) Width() float64 {
	return b.Right - b.Left
}

// Height returns the vertical extent
func (b BoundingBox) Height() float64 {
	return b.Bottom - b.Top
}

// Center returns the middle of the box
func (b BoundingBox) Center() Vector2D {
	return Vector2D{X: (b.Left + b.Right) / 2, Y: (b.Top + b.Bottom) / 2}
}

// Translate moves the box by offset
func (b BoundingBox) Translate(offset Vector2D) BoundingBox {
	return BoundingBox{
		Left:   b.Left + offset.X,
		Top:    b.Top + offset.Y,
		Right:  b.Right + offset.X,
		Bottom: b.Bottom + offset.Y,
	}
}

// Pad grows the box by amount on every side
func (b BoundingBox) Pad(amount float64) BoundingBox {
	return BoundingBox{
		Left:   b.Left - amount,
		Top:    b.Top - amount,
		Right:  b.Right + amount,
		Bottom: b.Bottom + amount,
	}
}

// Combine returns the union of two boxes
func (b BoundingBox) Combine(other BoundingBox) BoundingBox {
	return BoundingBox{
		Left:   math.Min(b.Left, other.Left),
		Top:    math.Min(b.Top, other.Top),
		Right:  math.Max(b.Right, other.Right),
		Bottom: math.Max(b.Bottom, other.Bottom),
	}
}

// Perimeter is used as the insertion cost heuristic of the dynamic tree
func (b BoundingBox) Perimeter() float64 {
	return 2 * (b.Width() + b.Height())
}

// Contains reports whether point lies inside the box, edges included
func (b BoundingBox) Contains(point Vector2D) bool {
	return b.Left <= point.X && point.X <= b.Right && b.Top <= point.Y && point.Y <= b.Bottom
}

// ContainsBox reports whether other lies entirely inside the box
func (b BoundingBox) ContainsBox(other BoundingBox) bool {
	return b.Left <= other.Left && b.Top <= other.Top && other.Right <= b.Right && other.Bottom <= b.Bottom
}

// Overlaps reports whether the boxes intersect, touching edges included
func (b BoundingBox) Overlaps(other BoundingBox) bool {
	return b.Left <= other.Right && other.Left <= b.Right && b.Top <= other.Bottom && other.Top <= b.Bottom
}

// Intersect returns the penetration vector that would move b out of other along
// the shallower axis, and false when the boxes do not overlap.
func (b BoundingBox) Intersect(other BoundingBox) (Vector2D, bool) {
	if !b.Overlaps(other) {
		return Vector2D{}, false
	}

	var overlapX float64
	if b.Right >= other.Left && b.Right <= other.Right {
		overlapX = other.Left - b.Right
	} else {
		overlapX = other.Right - b.Left
	}

	var overlapY float64
	if b.Bottom >= other.Top && b.Bottom <= other.Bottom {
		overlapY = other.Top - b.Bottom
	} else {
		overlapY = other.Bottom - b.Top
	}

	if math.Abs(overlapX) < math.Abs(overlapY) {
		return Vector2D{X: overlapX}, true
	}
	return Vector2D{Y: overlapY}, true
}

// RayCast reports whether the ray hits the box before farClip
func (b BoundingBox) RayCast(ray Ray, farClip float64) bool {
	tmin, tmax := b.slabs(ray)
	return tmax >= math.Max(0, tmin) && tmin < farClip
}

// RayCastTime returns the distance at which the ray enters the box, or -1
func (b BoundingBox) RayCastTime(ray Ray, farClip float64) float64 {
	tmin, tmax := b.slabs(ray)
	if tmax >= math.Max(0, tmin) && tmin < farClip {
		return math.Max(0, tmin)
	}
	return -1
}

func (b BoundingBox) slabs(ray Ray) (float64, float64) {
	xinv := math.MaxFloat64
	if ray.Dir.X != 0 {
		xinv = 1 / ray.Dir.X
	}
	yinv := math.MaxFloat64
	if ray.Dir.Y != 0 {
		yinv = 1 / ray.Dir.Y
	}

	tx1 := (b.Left - ray.Pos.X) * xinv
	tx2 := (b.Right - ray.Pos.X) * xinv
	tmin := math.Min(tx1, tx2)
	tmax := math.Max(tx1, tx2)

	ty1 := (b.Top - ray.Pos.Y) * yinv
	ty2 := (b.Bottom - ray.Pos.Y) * yinv
	tmin = math.Max(tmin, math.Min(ty1, ty2))
	tmax = math.Min(tmax, math.Max(ty1, ty2))
	return tmin, tmax
}

// Points returns the corners clockwise from the top left
func (b BoundingBox) Points() []Vector2D {
	return []Vector2D{
		{X: b.Left, Y: b.Top},
		{X: b.Right, Y: b.Top},
		{X: b.Right, Y: b.Bottom},
		{X: b.Left, Y: b.Bottom},
	}
}
