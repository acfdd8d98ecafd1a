package collision

import (
	"errors"
	"fmt"
	"strings"

	"github.com/EngoEngine/ecs"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/event"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// CollisionType decides which pairs may produce contacts and who may move
type CollisionType int

const (
	// PreventCollision never takes part in collision
	PreventCollision CollisionType = iota
	// Passive raises events but is never pushed and never pushes
	Passive
	// Active is moved by resolution
	Active
	// Fixed pushes Active bodies but is never moved itself
	Fixed
)

func (t CollisionType) String() string {
	switch t {
	case PreventCollision:
		return "prevent"
	case Passive:
		return "passive"
	case Active:
		return "active"
	case Fixed:
		return "fixed"
	default:
		return fmt.Sprintf("CollisionType(%d)", int(t))
	}
}

// ParseCollisionType converts a name as written in scene files
func ParseCollisionType(s string) (CollisionType, error) {
	switch strings.ToLower(s) {
	case "prevent", "preventcollision":
		return PreventCollision, nil
	case "passive":
		return Passive, nil
	case "active":
		return Active, nil
	case "fixed":
		return Fixed, nil
	}
	return PreventCollision, fmt.Errorf("unknown collision type %q", s)
}

// Material defaults for new colliders
const (
	DefaultFriction   = 0.99
	DefaultBounciness = 0.2
)

// Collider binds one shape to a body and carries the material properties and
// event channel used during collision. Its identity comes from the embedded
// entity and is unique per process.
type Collider struct {
	ecs.BasicEntity

	Type       CollisionType
	Group      CollisionGroup
	Mass       float64
	Inertia    float64
	Friction   float64
	Bounciness float64
	// Active colliders take part in the broadphase
	Active bool
	// UseShapeInertia recomputes Inertia from the shape whenever the shape or mass changes
	UseShapeInertia bool
	Events          *event.Bus

	shape Shape
	body  *Body
}

// NewCollider creates a collider around shape, which may be nil
func NewCollider(shape Shape) *Collider {
	c := &Collider{
		BasicEntity:     ecs.NewBasic(),
		Type:            PreventCollision,
		Group:           GroupAll,
		Friction:        DefaultFriction,
		Bounciness:      DefaultBounciness,
		Active:          true,
		UseShapeInertia: true,
		Events:          event.NewEventBus(),
	}
	if shape != nil {
		c.SetShape(shape)
	}
	return c
}

// Shape returns the current shape, nil when none has been set
func (c *Collider) Shape() Shape {
	return c.shape
}

// Body returns the owning body
func (c *Collider) Body() *Body {
	return c.body
}

// SetShape replaces the collider's shape
func (c *Collider) SetShape(shape Shape) {
	if c.shape != nil {
		c.shape.bind(nil)
	}
	c.shape = shape
	if shape != nil {
		shape.bind(c)
		shape.Recalc()
	}
	c.updateInertia()
}

// SetMass changes the mass and, if enabled, the derived inertia
func (c *Collider) SetMass(mass float64) {
	c.Mass = mass
	c.updateInertia()
}

func (c *Collider) updateInertia() {
	if c.UseShapeInertia && c.shape != nil {
		c.Inertia = c.shape.Inertia(c.Mass)
	}
}

func (c *Collider) position() physics.Vector2D {
	if c.body == nil {
		return physics.Vector2D{}
	}
	return c.body.Pos
}

// Bounds returns the world bounds of the shape, or a zero-sized box at the body
// position when there is no shape
func (c *Collider) Bounds() physics.BoundingBox {
	if c.shape == nil {
		return physics.PointBounds(c.position())
	}
	return c.shape.Bounds()
}

// Center returns the world center of the shape, or the body position
func (c *Collider) Center() physics.Vector2D {
	if c.shape == nil {
		return c.position()
	}
	return c.shape.Center()
}

// Collide runs the intersection table on the two shapes. A collider without a
// shape never touches anything.
func (c *Collider) Collide(other *Collider) (*Contact, error) {
	if c.shape == nil || other == nil || other.shape == nil {
		return nil, nil
	}
	return Intersect(c.shape, other.shape)
}

// On subscribes handler to collision events of type t on this collider
func (c *Collider) On(t event.Type, handler event.Handler) *event.Subscription {
	return c.Events.Subscribe(t, handler)
}

// Emit publishes e on this collider's event channel
func (c *Collider) Emit(e event.Event) {
	if c.Events != nil {
		c.Events.Publish(e)
	}
}

// ErrNoActorOrCollider is returned when a body is built from nothing
var ErrNoActorOrCollider = errors.New("collision: body needs an actor or a collider")
