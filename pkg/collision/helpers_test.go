package collision

import (
	"testing"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/config"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

const tolerance = 1e-6

var center = physics.Vector2D{X: 0.5, Y: 0.5}

func vec(x, y float64) physics.Vector2D {
	return physics.Vector2D{X: x, Y: y}
}

func newTestBody(t *testing.T, typ CollisionType, shape Shape, pos physics.Vector2D) *Body {
	t.Helper()
	return newTestBodyWithConfig(t, typ, shape, pos, config.DefaultPhysicsConfig())
}

func newTestBodyWithConfig(t *testing.T, typ CollisionType, shape Shape, pos physics.Vector2D, cfg config.PhysicsConfig) *Body {
	t.Helper()
	collider := NewCollider(shape)
	collider.Type = typ
	body, err := NewBody(BodyOptions{Collider: collider, Pos: pos, Config: &cfg})
	if err != nil {
		t.Fatalf("NewBody() failed: %v", err)
	}
	return body
}

func mustCircle(t *testing.T, radius float64) *Circle {
	t.Helper()
	c, err := NewCircle(radius, physics.Vector2D{})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func mustBox(t *testing.T, w, h float64) *Polygon {
	t.Helper()
	b, err := NewBox(w, h, center, physics.Vector2D{})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func mustEdge(t *testing.T, begin, end physics.Vector2D) *Edge {
	t.Helper()
	e, err := NewEdge(begin, end)
	if err != nil {
		t.Fatal(err)
	}
	return e
}
