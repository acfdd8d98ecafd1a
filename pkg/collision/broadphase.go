package collision

import (
	"context"
	"math"
	"time"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/config"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/event"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/logging"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// DynamicTreeBroadphase finds candidate pairs with a DynamicTree, narrows them
// to contacts, resolves them and reports contact episodes. It owns the tree and
// the pair caches; a step must not be re-entered from an event handler.
type DynamicTreeBroadphase struct {
	tree   *DynamicTree
	cfg    config.PhysicsConfig
	logger *logging.Logger

	pairs     []*Pair
	pairHash  map[string]bool
	lastPairs []*Pair
	lastHash  map[string]*Pair
}

// NewDynamicTreeBroadphase creates a broadphase using cfg
func NewDynamicTreeBroadphase(cfg config.PhysicsConfig, logger *logging.Logger) *DynamicTreeBroadphase {
	if logger == nil {
		logger = logging.Discard()
	}
	return &DynamicTreeBroadphase{
		tree:     NewDynamicTree(cfg, logger),
		cfg:      cfg,
		logger:   logger,
		pairHash: make(map[string]bool),
		lastHash: make(map[string]*Pair),
	}
}

// Tree exposes the spatial index
func (bp *DynamicTreeBroadphase) Tree() *DynamicTree {
	return bp.tree
}

// Track starts tracking body
func (bp *DynamicTreeBroadphase) Track(body *Body) {
	bp.tree.TrackBody(body)
}

// Untrack stops tracking body
func (bp *DynamicTreeBroadphase) Untrack(body *Body) {
	bp.tree.UntrackBody(body)
}

// Update refreshes the tree leaves of bodies and returns how many moved in the tree
func (bp *DynamicTreeBroadphase) Update(ctx context.Context, bodies []*Body) int {
	updated := 0
	for _, b := range bodies {
		if bp.tree.UpdateBody(ctx, b) {
			updated++
		}
	}
	return updated
}

func (bp *DynamicTreeBroadphase) shouldGeneratePair(a, b *Collider) bool {
	if a.body == b.body {
		return false
	}
	if bp.pairHash[PairHash(a, b)] {
		return false
	}
	return CanCollide(a, b)
}

func (bp *DynamicTreeBroadphase) addPair(a, b *Collider) {
	p := NewPair(a, b)
	bp.pairHash[p.ID] = true
	bp.pairs = append(bp.pairs, p)
}

// Broadphase returns the candidate pairs among bodies for a step of delta
// milliseconds. Fast Active bodies are ray cast along their velocity and, on a
// hit, snapped onto the surface they would have passed through.
func (bp *DynamicTreeBroadphase) Broadphase(ctx context.Context, bodies []*Body, delta float64, stats *FrameStats) []*Pair {
	start := time.Now()
	seconds := delta / 1000

	candidates := make([]*Body, 0, len(bodies))
	for _, b := range bodies {
		if b.Collider.Active && b.Collider.Type != PreventCollision {
			candidates = append(candidates, b)
		}
	}

	bp.pairs = make([]*Pair, 0, len(candidates))
	bp.pairHash = make(map[string]bool, len(candidates))

	for _, body := range candidates {
		collider := body.Collider
		// every callback returns false so the whole tree is visited
		bp.tree.Query(body, func(other *Body) bool {
			if bp.shouldGeneratePair(collider, other.Collider) {
				bp.addPair(collider, other.Collider)
			}
			return false
		})
	}
	if stats != nil {
		stats.Pairs = len(bp.pairs)
	}

	if bp.cfg.CheckForFastBodies {
		for _, body := range candidates {
			bp.checkFastBody(ctx, body, seconds, stats)
		}
	}

	if stats != nil {
		stats.BroadphaseTime += time.Since(start)
	}
	return bp.pairs
}

func (bp *DynamicTreeBroadphase) checkFastBody(ctx context.Context, body *Body, seconds float64, stats *FrameStats) {
	collider := body.Collider
	if collider.Type != Active || collider.shape == nil {
		return
	}

	updateDistance := body.Vel.Length()*seconds + body.Acc.Length()*0.5*seconds*seconds
	bounds := collider.Bounds()
	minDimension := math.Min(bounds.Width(), bounds.Height())
	if !bp.cfg.DisableMinimumSpeedForFastBody && updateDistance <= minDimension/2 {
		return
	}
	if body.Vel.IsZero() {
		return
	}
	if stats != nil {
		stats.FastBodies++
	}

	// integration already ran, so cast from where the leading point was at the
	// start of the step
	eps := bp.cfg.SurfaceEpsilon
	furthest := collider.shape.FurthestPoint(body.Vel)
	origin := furthest.Sub(body.Pos.Sub(body.OldPos))
	ray := physics.NewRay(origin, body.Vel)
	// back up in case the body starts on a surface
	ray.Pos = ray.Pos.Add(ray.Dir.Scale(-2 * eps))

	var hit *Body
	minTranslate := physics.Vector2D{X: math.Inf(1), Y: math.Inf(1)}
	bp.tree.RayCastQuery(ray, updateDistance+2*eps, func(other *Body) bool {
		if other == body || other.Collider.shape == nil || !CanCollide(collider, other.Collider) {
			return false
		}
		point, ok := other.Collider.shape.RayCast(ray, updateDistance+10*eps)
		if !ok {
			return false
		}
		translate := point.Sub(origin)
		if translate.Length() < minTranslate.Length() {
			minTranslate = translate
			hit = other
		}
		return false
	})

	if hit == nil || !minTranslate.IsValid() {
		return
	}

	if id := PairHash(collider, hit.Collider); !bp.pairHash[id] {
		bp.addPair(collider, hit.Collider)
	}

	// place the leading point on the hit surface, pushed in by the surface epsilon
	shift := body.Pos.Sub(furthest)
	body.Pos = origin.Add(shift).Add(minTranslate).Add(ray.Dir.Scale(2 * eps))
	collider.shape.Recalc()

	bp.logger.Debug(ctx, "fast body snapped to surface",
		"collider", body.ID(),
		"other", hit.ID(),
		"x", body.Pos.X,
		"y", body.Pos.Y,
	)
	if stats != nil {
		stats.FastBodyCollisions++
	}
}

// Narrowphase tests every pair and returns those in contact
func (bp *DynamicTreeBroadphase) Narrowphase(pairs []*Pair, stats *FrameStats) ([]*Pair, error) {
	start := time.Now()
	contacts := pairs[:0:0]
	for _, p := range pairs {
		if err := p.Collide(); err != nil {
			return nil, err
		}
		if p.Collision != nil {
			contacts = append(contacts, p)
		}
	}
	if stats != nil {
		stats.Collisions += len(contacts)
		stats.NarrowphaseTime += time.Since(start)
	}
	return contacts, nil
}

// Resolve resolves every pair, applies the accumulated corrections and lets each
// body settle with a short integration of delta*CollisionShift milliseconds
func (bp *DynamicTreeBroadphase) Resolve(pairs []*Pair, delta float64, strategy config.ResolutionStrategy) []*Pair {
	for _, p := range pairs {
		p.Resolve(strategy)
		if p.Collision == nil {
			continue
		}
		for _, c := range []*Collider{p.ColliderA, p.ColliderB} {
			if c.body == nil {
				continue
			}
			c.body.ApplyMtv()
			c.body.Integrate(delta * bp.cfg.CollisionShift)
		}
	}

	resolved := pairs[:0:0]
	for _, p := range pairs {
		if p.Collision != nil {
			resolved = append(resolved, p)
		}
	}
	return resolved
}

// RunCollisionStartEnd compares pairs against the previous call and emits
// collisionstart for new contact episodes and collisionend for finished ones,
// on both colliders
func (bp *DynamicTreeBroadphase) RunCollisionStartEnd(pairs []*Pair) (started, ended int) {
	current := make(map[string]*Pair, len(pairs))
	for _, p := range pairs {
		current[p.ID] = p
		if _, seen := bp.lastHash[p.ID]; seen {
			continue
		}
		started++
		a, b := p.ColliderA, p.ColliderB
		side := physics.SideNone
		var mtv physics.Vector2D
		if p.Collision != nil {
			side = p.Collision.Side()
			mtv = p.Collision.Mtv
		}
		a.Emit(event.NewCollisionEvent(event.CollisionStart, a, b, side, mtv.Negate(), p.ID))
		b.Emit(event.NewCollisionEvent(event.CollisionStart, b, a, side.Opposite(), mtv, p.ID))
	}

	for _, p := range bp.lastPairs {
		if _, still := current[p.ID]; still {
			continue
		}
		ended++
		a, b := p.ColliderA, p.ColliderB
		a.Emit(event.NewCollisionEvent(event.CollisionEnd, a, b, physics.SideNone, physics.Vector2D{}, p.ID))
		b.Emit(event.NewCollisionEvent(event.CollisionEnd, b, a, physics.SideNone, physics.Vector2D{}, p.ID))
	}

	bp.lastPairs = append(bp.lastPairs[:0], pairs...)
	bp.lastHash = current
	return started, ended
}

// Forget drops body from the retained pair set so no collisionend fires for it
// after it has been removed from the world
func (bp *DynamicTreeBroadphase) Forget(body *Body) {
	kept := bp.lastPairs[:0]
	for _, p := range bp.lastPairs {
		if p.ColliderA.body == body || p.ColliderB.body == body {
			delete(bp.lastHash, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	bp.lastPairs = kept
}
