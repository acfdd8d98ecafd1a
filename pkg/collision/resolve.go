package collision

import (
	"math"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// resolveBox pushes Active bodies out of each other along the mtv. Two Active
// bodies split the correction; against Fixed the Active one takes all of it.
// Velocities are left alone.
func resolveBox(a, b *Collider, contact *Contact) {
	share := 1.0
	if a.Type == Active && b.Type == Active {
		share = 0.5
	}
	if a.Type == Active && a.body != nil {
		a.body.AddMtv(contact.Mtv.Scale(-share))
	}
	if b.Type == Active && b.body != nil {
		b.body.AddMtv(contact.Mtv.Scale(share))
	}
}

// resolveRigidBody applies a restitution impulse along the contact normal, a
// Coulomb friction impulse along the tangent, and the positional correction.
// Restitution and friction take the smaller of the two materials.
func resolveRigidBody(a, b *Body, contact *Contact) {
	if a == nil || b == nil {
		return
	}

	ca, cb := a.Collider, b.Collider
	invMassA, invMassB := a.InverseMass(), b.InverseMass()
	invMoiA, invMoiB := a.InverseInertia(), b.InverseInertia()
	restitution := math.Min(ca.Bounciness, cb.Bounciness)
	friction := math.Min(ca.Friction, cb.Friction)
	rotate := a.cfg.AllowRigidBodyRotation && b.cfg.AllowRigidBodyRotation
	if !rotate {
		invMoiA, invMoiB = 0, 0
	}

	switch {
	case ca.Type == Fixed:
		b.AddMtv(contact.Mtv)
	case cb.Type == Fixed:
		a.AddMtv(contact.Mtv.Negate())
	default:
		b.AddMtv(contact.Mtv.Scale(0.5))
		a.AddMtv(contact.Mtv.Scale(-0.5))
	}

	normal := contact.Normal.Normalize()
	if normal.IsZero() {
		return
	}
	tangent := normal.Normal()

	ra := contact.Point.Sub(ca.Center())
	rb := contact.Point.Sub(cb.Center())

	// velocity of the contact point on each body, angular part as omega x r
	va := a.Vel.Sub(ra.CrossScalar(a.AngularVelocity))
	vb := b.Vel.Add(rb.CrossScalar(-b.AngularVelocity))
	rv := vb.Sub(va)

	rvNormal := rv.Dot(normal)
	if rvNormal > 0 {
		return
	}

	raTangent, rbTangent := ra.Dot(tangent), rb.Dot(tangent)
	denom := invMassA + invMassB + invMoiA*raTangent*raTangent + invMoiB*rbTangent*rbTangent
	if denom == 0 {
		return
	}
	impulse := -(1 + restitution) * rvNormal / denom

	b.Vel = b.Vel.Add(normal.Scale(impulse * invMassB))
	a.Vel = a.Vel.Sub(normal.Scale(impulse * invMassA))
	if rotate {
		b.AngularVelocity += impulse * invMoiB * rb.Cross(normal)
		a.AngularVelocity -= impulse * invMoiA * ra.Cross(normal)
	}

	if friction == 0 || rv.Dot(tangent) == 0 {
		return
	}

	t := rv.Sub(normal.Scale(rvNormal)).Normalize()
	if t.IsZero() {
		return
	}
	raNormal, rbNormal := ra.Dot(normal), rb.Dot(normal)
	tDenom := invMassA + invMassB + raNormal*raNormal*invMoiA + rbNormal*rbNormal*invMoiB
	if tDenom == 0 {
		return
	}
	jt := rv.Dot(t) / tDenom

	var frictionImpulse physics.Vector2D
	if math.Abs(jt) <= impulse*friction {
		frictionImpulse = t.Scale(-jt)
	} else {
		frictionImpulse = t.Scale(-impulse * friction)
	}

	b.Vel = b.Vel.Add(frictionImpulse.Scale(invMassB))
	a.Vel = a.Vel.Sub(frictionImpulse.Scale(invMassA))
	if rotate {
		b.AngularVelocity += frictionImpulse.Dot(t) * invMoiB * rb.Cross(t)
		a.AngularVelocity -= frictionImpulse.Dot(t) * invMoiA * ra.Cross(t)
	}
}
