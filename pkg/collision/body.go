package collision

import (
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/config"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// Actor is whatever owns a body in the embedding application. ECS entities
// satisfy it.
type Actor interface {
	ID() uint64
}

// BodyOptions configures NewBody. At least one of Owner and Collider is required.
type BodyOptions struct {
	Owner    Actor
	Collider *Collider
	// Config defaults to config.DefaultPhysicsConfig()
	Config *config.PhysicsConfig

	Pos      physics.Vector2D
	Vel      physics.Vector2D
	Acc      physics.Vector2D
	Rotation float64
}

// Body holds the kinematic state of one collider and integrates it.
type Body struct {
	Owner    Actor
	Collider *Collider

	Pos             physics.Vector2D
	Vel             physics.Vector2D
	Acc             physics.Vector2D
	Rotation        float64
	AngularVelocity float64
	Torque          float64

	// Old* are the values at the start of the current step, written only by
	// CaptureOldTransform.
	OldPos      physics.Vector2D
	OldVel      physics.Vector2D
	OldAcc      physics.Vector2D
	OldRotation float64

	// TotalMtv accumulates the corrections of this step until ApplyMtv
	TotalMtv physics.Vector2D

	cfg config.PhysicsConfig
}

// NewBody creates a body. A missing collider is replaced by one without a shape,
// and a collider without mass gets the configured default.
func NewBody(opts BodyOptions) (*Body, error) {
	if opts.Owner == nil && opts.Collider == nil {
		return nil, ErrNoActorOrCollider
	}

	cfg := config.DefaultPhysicsConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	collider := opts.Collider
	if collider == nil {
		collider = NewCollider(nil)
	}

	b := &Body{
		Owner:       opts.Owner,
		Collider:    collider,
		Pos:         opts.Pos,
		Vel:         opts.Vel,
		Acc:         opts.Acc,
		Rotation:    opts.Rotation,
		OldPos:      opts.Pos,
		OldVel:      opts.Vel,
		OldAcc:      opts.Acc,
		OldRotation: opts.Rotation,
		cfg:         cfg,
	}
	collider.body = b
	if collider.Mass <= 0 {
		collider.Mass = cfg.DefaultMass
	}
	collider.updateInertia()
	if collider.shape != nil {
		collider.shape.Recalc()
	}
	return b, nil
}

// ID returns the collider identity
func (b *Body) ID() uint64 {
	return b.Collider.ID()
}

// Config returns the tunables the body was built with
func (b *Body) Config() config.PhysicsConfig {
	return b.cfg
}

// UseBoxCollider replaces the shape with a box
func (b *Body) UseBoxCollider(width, height float64, anchor, offset physics.Vector2D) (*Polygon, error) {
	box, err := NewBox(width, height, anchor, offset)
	if err != nil {
		return nil, err
	}
	b.Collider.SetShape(box)
	return box, nil
}

// UsePolygonCollider replaces the shape with a convex polygon
func (b *Body) UsePolygonCollider(points []physics.Vector2D, offset physics.Vector2D) (*Polygon, error) {
	poly, err := NewPolygon(points, offset)
	if err != nil {
		return nil, err
	}
	b.Collider.SetShape(poly)
	return poly, nil
}

// UseCircleCollider replaces the shape with a circle
func (b *Body) UseCircleCollider(radius float64, offset physics.Vector2D) (*Circle, error) {
	circle, err := NewCircle(radius, offset)
	if err != nil {
		return nil, err
	}
	b.Collider.SetShape(circle)
	return circle, nil
}

// UseEdgeCollider replaces the shape with an edge
func (b *Body) UseEdgeCollider(begin, end physics.Vector2D) (*Edge, error) {
	edge, err := NewEdge(begin, end)
	if err != nil {
		return nil, err
	}
	b.Collider.SetShape(edge)
	return edge, nil
}

// CaptureOldTransform snapshots the kinematic state at the start of a step
func (b *Body) CaptureOldTransform() {
	b.OldPos = b.Pos
	b.OldVel = b.Vel
	b.OldAcc = b.Acc
	b.OldRotation = b.Rotation
}

// AddMtv accumulates a position correction
func (b *Body) AddMtv(mtv physics.Vector2D) {
	b.TotalMtv = b.TotalMtv.Add(mtv)
}

// ApplyMtv moves the body by the accumulated correction and resets it
func (b *Body) ApplyMtv() {
	b.Pos = b.Pos.Add(b.TotalMtv)
	b.TotalMtv = physics.Vector2D{}
}

// Integrate advances the body by deltaMs milliseconds with explicit Euler steps.
// The configured global acceleration only applies to Active bodies.
func (b *Body) Integrate(deltaMs float64) {
	seconds := deltaMs / 1000

	acc := b.Acc
	if b.Collider.Type == Active {
		acc = acc.Add(b.cfg.Acceleration)
	}

	b.Vel = b.Vel.Add(acc.Scale(seconds))
	b.Pos = b.Pos.Add(b.Vel.Scale(seconds)).Add(acc.Scale(0.5 * seconds * seconds))

	if b.Collider.Inertia != 0 {
		b.AngularVelocity += b.Torque / b.Collider.Inertia * seconds
	}
	b.Rotation += b.AngularVelocity * seconds
}

// InverseMass is zero for Fixed bodies
func (b *Body) InverseMass() float64 {
	if b.Collider.Type == Fixed || b.Collider.Mass == 0 {
		return 0
	}
	return 1 / b.Collider.Mass
}

// InverseInertia is zero for Fixed bodies
func (b *Body) InverseInertia() float64 {
	if b.Collider.Type == Fixed || b.Collider.Inertia == 0 {
		return 0
	}
	return 1 / b.Collider.Inertia
}
