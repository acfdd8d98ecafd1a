// Package engine drives the collision pipeline: World owns the bodies and runs
// one step at a time, Runner ticks a World on a fixed interval behind a circuit
// breaker, and CollisionSystem plugs a World into an ecs.World.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/collision"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/config"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/logging"
)

var (
	// ErrNilBody is returned when adding a nil body
	ErrNilBody = errors.New("engine: nil body")
	// ErrDuplicateBody is returned when a body is added twice
	ErrDuplicateBody = errors.New("engine: body already in world")
)

// World holds every simulated body and advances them together.
//
// Collision event handlers run synchronously inside Step while the world lock
// is held. They may call RemoveLater but none of Add, Remove, Bodies, Len,
// Frame, LastStep, LastStats or Validate, which take the same lock.
type World struct {
	mu         sync.RWMutex
	cfg        config.PhysicsConfig
	logger     *logging.Logger
	broadphase *collision.DynamicTreeBroadphase

	bodies  []*collision.Body
	members map[*collision.Body]struct{}

	pendingMu sync.Mutex
	pending   []*collision.Body

	frame     uint64
	lastStats collision.FrameStats
	lastStep  time.Time
}

// NewWorld validates cfg and creates an empty world
func NewWorld(cfg config.PhysicsConfig, logger *logging.Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &World{
		cfg:        cfg,
		logger:     logger,
		broadphase: collision.NewDynamicTreeBroadphase(cfg, logger),
		members:    make(map[*collision.Body]struct{}),
	}, nil
}

// Config returns the physics configuration of the world
func (w *World) Config() config.PhysicsConfig {
	return w.cfg
}

// Add starts simulating body
func (w *World) Add(body *collision.Body) error {
	if body == nil {
		return ErrNilBody
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.members[body]; exists {
		return fmt.Errorf("%w: collider %d", ErrDuplicateBody, body.ID())
	}
	w.members[body] = struct{}{}
	w.bodies = append(w.bodies, body)
	w.broadphase.Track(body)
	return nil
}

// Remove stops simulating body and reports whether it was in the world. No
// collisionend is raised for contacts the body had.
func (w *World) Remove(body *collision.Body) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.removeLocked(body)
}

// RemoveLater queues body for removal at the end of the current or next step.
// It is safe to call from event handlers.
func (w *World) RemoveLater(body *collision.Body) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.pending = append(w.pending, body)
}

func (w *World) removeLocked(body *collision.Body) bool {
	if _, exists := w.members[body]; !exists {
		return false
	}
	delete(w.members, body)
	for i, b := range w.bodies {
		if b == body {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	w.broadphase.Untrack(body)
	w.broadphase.Forget(body)
	return true
}

// Bodies returns a snapshot of the simulated bodies in insertion order
func (w *World) Bodies() []*collision.Body {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*collision.Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Len returns the number of bodies
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.bodies)
}

// Tree exposes the spatial index, for debug drawing
func (w *World) Tree() *collision.DynamicTree {
	return w.broadphase.Tree()
}

// Validate checks the structural invariants of the spatial index
func (w *World) Validate() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.broadphase.Tree().Validate()
}

// Frame returns the number of completed steps
func (w *World) Frame() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.frame
}

// LastStats returns the counters of the last completed step
func (w *World) LastStats() collision.FrameStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastStats
}

// LastStep returns when the last step completed
func (w *World) LastStep() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastStep
}

// Step advances the world by delta. Bodies are integrated first, then the tree
// is refreshed, candidate pairs are found once, and narrowphase plus resolution
// run CollisionPasses times with the delta split between passes. Contact
// episodes are diffed against the previous step once the first pass is resolved.
func (w *World) Step(ctx context.Context, delta time.Duration) (collision.FrameStats, error) {
	if delta < 0 {
		return collision.FrameStats{}, fmt.Errorf("engine: negative step %v", delta)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	ctx = logging.WithFrame(ctx, w.frame)
	ms := float64(delta) / float64(time.Millisecond)
	stats := collision.FrameStats{Frame: w.frame, Bodies: len(w.bodies)}

	for _, b := range w.bodies {
		b.CaptureOldTransform()
		b.Integrate(ms)
	}

	if w.cfg.Enabled {
		if err := w.collide(ctx, ms, &stats); err != nil {
			return stats, err
		}
	}

	w.dropUntracked(ctx)
	w.flushPending()

	w.frame++
	w.lastStats = stats
	w.lastStep = time.Now()
	return stats, nil
}

func (w *World) collide(ctx context.Context, ms float64, stats *collision.FrameStats) error {
	stats.TreeUpdates = w.broadphase.Update(ctx, w.bodies)
	pairs := w.broadphase.Broadphase(ctx, w.bodies, ms, stats)

	passes := w.cfg.CollisionPasses
	passDelta := ms / float64(passes)
	for pass := 0; pass < passes; pass++ {
		contacts, err := w.broadphase.Narrowphase(pairs, stats)
		if err != nil {
			return logging.WrapError(err, "narrowphase pass %d", pass)
		}
		resolved := w.broadphase.Resolve(contacts, passDelta, w.cfg.Strategy)
		if pass == 0 {
			stats.Started, stats.Ended = w.broadphase.RunCollisionStartEnd(resolved)
		}
		if len(contacts) == 0 {
			break
		}
	}
	return nil
}

// dropUntracked removes bodies the tree gave up on after they left the world
func (w *World) dropUntracked(ctx context.Context) {
	tree := w.broadphase.Tree()
	for i := 0; i < len(w.bodies); {
		b := w.bodies[i]
		if tree.Tracks(b) {
			i++
			continue
		}
		w.logger.Info(ctx, "removing body outside the world", "collider", b.ID())
		w.removeLocked(b)
	}
}

func (w *World) flushPending() {
	w.pendingMu.Lock()
	pending := w.pending
	w.pending = nil
	w.pendingMu.Unlock()

	for _, b := range pending {
		w.removeLocked(b)
	}
}
