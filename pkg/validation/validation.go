// Package validation provides input validation for collision geometry.
// Shapes built from user data (scene files, factories) are checked here before
// they reach the SAT routines, which assume finite, convex, non-degenerate input.
package validation

import (
	"fmt"
	"math"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// Geometry limits
const (
	MinPolygonPoints = 3
	MaxPolygonPoints = 64
	// MinPolygonArea rejects slivers whose edge normals are numerically meaningless
	MinPolygonArea = 1e-9
)

// ValidatePoint checks that a coordinate pair is finite
func ValidatePoint(p physics.Vector2D) error {
	if !p.IsValid() {
		return fmt.Errorf("point (%v, %v) is not finite", p.X, p.Y)
	}
	return nil
}

// ValidateRadius validates a circle radius
func ValidateRadius(radius float64) error {
	if math.IsNaN(radius) || math.IsInf(radius, 0) {
		return fmt.Errorf("radius %v is not finite", radius)
	}
	if radius < 0 {
		return fmt.Errorf("radius cannot be negative: %v", radius)
	}
	return nil
}

// ValidateDimensions validates box width and height
func ValidateDimensions(width, height float64) error {
	if math.IsNaN(width) || math.IsNaN(height) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return fmt.Errorf("box dimensions %vx%v are not finite", width, height)
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("box dimensions cannot be negative: %vx%v", width, height)
	}
	return nil
}

// ValidateSegment validates the endpoints of an edge
func ValidateSegment(begin, end physics.Vector2D) error {
	if err := ValidatePoint(begin); err != nil {
		return fmt.Errorf("edge begin: %w", err)
	}
	if err := ValidatePoint(end); err != nil {
		return fmt.Errorf("edge end: %w", err)
	}
	return nil
}

// ValidatePolygon checks that points describe a convex polygon with consistent winding.
// Collinear consecutive points are tolerated as long as the polygon has area.
func ValidatePolygon(points []physics.Vector2D) error {
	if len(points) < MinPolygonPoints {
		return fmt.Errorf("polygon needs at least %d points, got %d", MinPolygonPoints, len(points))
	}
	if len(points) > MaxPolygonPoints {
		return fmt.Errorf("polygon has too many points: %d (max %d)", len(points), MaxPolygonPoints)
	}

	for i, p := range points {
		if err := ValidatePoint(p); err != nil {
			return fmt.Errorf("polygon point %d: %w", i, err)
		}
	}

	if math.Abs(SignedArea(points)) < MinPolygonArea {
		return fmt.Errorf("polygon is degenerate: area is zero")
	}

	if !IsConvex(points) {
		return fmt.Errorf("polygon is not convex")
	}

	return nil
}

// SignedArea returns the shoelace area; the sign encodes the winding
func SignedArea(points []physics.Vector2D) float64 {
	area := 0.0
	for i := range points {
		j := (i + 1) % len(points)
		area += points[i].Cross(points[j])
	}
	return area / 2
}

// IsConvex reports whether every turn along the outline bends the same way
func IsConvex(points []physics.Vector2D) bool {
	n := len(points)
	if n < MinPolygonPoints {
		return false
	}

	sign := 0
	for i := 0; i < n; i++ {
		a := points[i]
		b := points[(i+1)%n]
		c := points[(i+2)%n]
		turn := b.Sub(a).Cross(c.Sub(b))
		if turn == 0 {
			continue
		}
		s := 1
		if turn < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	return sign != 0
}
