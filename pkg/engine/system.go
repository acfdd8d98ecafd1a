package engine

import (
	"context"
	"sync"
	"time"

	"github.com/EngoEngine/ecs"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/collision"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/logging"
)

// systemPriority places collision ahead of rendering systems, which use 0
const systemPriority = 10

// CollisionSystem is an ecs.System that steps a World with the frame time the
// ecs.World is updated with. Entities are linked to bodies through Add.
type CollisionSystem struct {
	world  *World
	ctx    context.Context
	logger *logging.Logger

	mu      sync.Mutex
	bodies  map[uint64]*collision.Body
	lastErr error
	paused  bool
}

// NewCollisionSystem creates a system stepping world. ctx is passed to every step.
func NewCollisionSystem(ctx context.Context, world *World, logger *logging.Logger) *CollisionSystem {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &CollisionSystem{
		world:  world,
		ctx:    ctx,
		logger: logger,
		bodies: make(map[uint64]*collision.Body),
	}
}

// Add links basic to body and adds the body to the world
func (s *CollisionSystem) Add(basic *ecs.BasicEntity, body *collision.Body) error {
	if err := s.world.Add(body); err != nil {
		return err
	}
	s.mu.Lock()
	s.bodies[basic.ID()] = body
	s.mu.Unlock()
	return nil
}

// Remove is called by ecs.World when an entity is removed
func (s *CollisionSystem) Remove(basic ecs.BasicEntity) {
	s.mu.Lock()
	body, ok := s.bodies[basic.ID()]
	delete(s.bodies, basic.ID())
	s.mu.Unlock()

	if ok {
		s.world.Remove(body)
	}
}

// Body returns the body linked to basic
func (s *CollisionSystem) Body(basic ecs.BasicEntity) (*collision.Body, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.bodies[basic.ID()]
	return body, ok
}

// SetPaused stops or resumes stepping. A paused system ignores Update.
func (s *CollisionSystem) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
}

// Paused reports whether Update currently steps the world
func (s *CollisionSystem) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Update steps the world by dt seconds
func (s *CollisionSystem) Update(dt float32) {
	if s.Paused() {
		return
	}
	delta := time.Duration(float64(dt) * float64(time.Second))
	_, err := s.world.Step(s.ctx, delta)

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error(s.ctx, "collision system update failed", err, "dt", dt)
	}
}

// Priority makes ecs.World update collision before drawing
func (s *CollisionSystem) Priority() int {
	return systemPriority
}

// Err returns the error of the last update
func (s *CollisionSystem) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
