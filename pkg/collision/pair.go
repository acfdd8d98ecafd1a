package collision

import (
	"fmt"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/config"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/event"
)

// Pair is a candidate collision between two colliders found by the broadphase.
// Pairs live for one step; only ID carries over to the next.
type Pair struct {
	ColliderA *Collider
	ColliderB *Collider
	ID        string
	Collision *Contact
}

// NewPair creates a candidate pair
func NewPair(a, b *Collider) *Pair {
	return &Pair{ColliderA: a, ColliderB: b, ID: PairHash(a, b)}
}

// PairHash identifies a pair of colliders independently of their order
func PairHash(a, b *Collider) string {
	ida, idb := a.ID(), b.ID()
	if ida > idb {
		ida, idb = idb, ida
	}
	return fmt.Sprintf("#%d+%d", ida, idb)
}

// CanCollide reports whether two colliders may ever produce a contact
func CanCollide(a, b *Collider) bool {
	if a == b {
		return false
	}
	if a.Type == PreventCollision || b.Type == PreventCollision {
		return false
	}
	if !a.Active || !b.Active {
		return false
	}
	if a.Type == Fixed && b.Type == Fixed {
		return false
	}
	return a.Group.CanCollide(b.Group)
}

// Collide runs the narrowphase test and stores the result. It only reads the
// current shape state, so repeated calls give the same answer.
func (p *Pair) Collide() error {
	contact, err := p.ColliderA.Collide(p.ColliderB)
	if err != nil {
		return fmt.Errorf("pair %s: %w", p.ID, err)
	}
	p.Collision = contact
	return nil
}

// Resolve applies strategy to a colliding pair. Position corrections go into each
// body's TotalMtv. Passive pairs raise events but are not resolved.
func (p *Pair) Resolve(strategy config.ResolutionStrategy) {
	if p.Collision == nil {
		return
	}
	a, b := p.ColliderA, p.ColliderB
	contact := p.Collision
	side := contact.Side()

	a.Emit(event.NewCollisionEvent(event.PreCollision, a, b, side, contact.Mtv.Negate(), p.ID))
	b.Emit(event.NewCollisionEvent(event.PreCollision, b, a, side.Opposite(), contact.Mtv, p.ID))

	if a.Type != Passive && b.Type != Passive {
		switch strategy {
		case config.StrategyRigidBody:
			resolveRigidBody(a.body, b.body, contact)
		default:
			resolveBox(a, b, contact)
		}
	}

	a.Emit(event.NewCollisionEvent(event.PostCollision, a, b, side, contact.Mtv.Negate(), p.ID))
	b.Emit(event.NewCollisionEvent(event.PostCollision, b, a, side.Opposite(), contact.Mtv, p.ID))
}

func (p *Pair) String() string {
	return p.ID
}
