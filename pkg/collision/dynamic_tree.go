package collision

import (
	"context"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/config"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/event"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/logging"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/spatial"
)

// trackPadding pads the bounds of a body when it is first tracked
const trackPadding = 2

// velocityLookahead is the frame time in milliseconds used to fatten moving bounds
const velocityLookahead = 32

// DynamicTree indexes bodies by their padded bounds
type DynamicTree struct {
	tree   *spatial.Tree[*Body]
	cfg    config.PhysicsConfig
	logger *logging.Logger
}

// NewDynamicTree creates an empty tree that drops bodies leaving cfg.WorldBounds
func NewDynamicTree(cfg config.PhysicsConfig, logger *logging.Logger) *DynamicTree {
	if logger == nil {
		logger = logging.Discard()
	}
	return &DynamicTree{
		tree:   spatial.NewTree[*Body](),
		cfg:    cfg,
		logger: logger,
	}
}

// TrackBody inserts body
func (d *DynamicTree) TrackBody(body *Body) {
	d.tree.Insert(body, body.Collider.Bounds().Pad(trackPadding))
}

// UntrackBody removes body and reports whether it was tracked
func (d *DynamicTree) UntrackBody(body *Body) bool {
	return d.tree.Remove(body)
}

// Tracks reports whether body is in the tree
func (d *DynamicTree) Tracks(body *Body) bool {
	return d.tree.Contains(body)
}

// UpdateBody refreshes the leaf of a tracked body and reports whether the tree
// changed. A body that left the world bounds is untracked with a warning.
func (d *DynamicTree) UpdateBody(ctx context.Context, body *Body) bool {
	if !d.tree.Contains(body) {
		return false
	}

	bounds := body.Collider.Bounds()
	if !d.cfg.WorldBounds.ContainsBox(bounds) {
		d.logger.Warn(ctx, "body left the world bounds and will no longer be tracked",
			"collider", body.ID(),
			"left", bounds.Left,
			"top", bounds.Top,
			"right", bounds.Right,
			"bottom", bounds.Bottom,
		)
		d.tree.Remove(body)
		body.Collider.Emit(event.NewBoundsEvent(body.Collider, bounds))
		return false
	}

	return d.tree.Move(body, bounds, d.fatten(body, bounds))
}

// fatten pads bounds and stretches them along the velocity of non-Fixed bodies
// so the leaf survives a few frames of motion
func (d *DynamicTree) fatten(body *Body, bounds physics.BoundingBox) physics.BoundingBox {
	fat := bounds.Pad(d.cfg.BoundsPadding)
	if body.Collider.Type == Fixed {
		return fat
	}

	dx := body.Vel.X * velocityLookahead / 1000 * d.cfg.DynamicTreeVelocityMultiplier
	dy := body.Vel.Y * velocityLookahead / 1000 * d.cfg.DynamicTreeVelocityMultiplier
	if dx < 0 {
		fat.Left += dx
	} else {
		fat.Right += dx
	}
	if dy < 0 {
		fat.Top += dy
	} else {
		fat.Bottom += dy
	}
	return fat
}

// Query calls cb for every other body whose leaf overlaps the bounds of body.
// Returning true from cb stops the search.
func (d *DynamicTree) Query(body *Body, cb func(other *Body) bool) {
	d.tree.Query(body.Collider.Bounds(), func(other *Body) bool {
		if other == body {
			return false
		}
		return cb(other)
	})
}

// RayCastQuery calls cb for every body whose leaf the ray enters within maxDistance
func (d *DynamicTree) RayCastQuery(ray physics.Ray, maxDistance float64, cb func(other *Body) bool) {
	d.tree.RayCast(ray, maxDistance, cb)
}

// Bounds returns the stored leaf bounds of body
func (d *DynamicTree) Bounds(body *Body) (physics.BoundingBox, bool) {
	return d.tree.Bounds(body)
}

// Len returns the number of tracked bodies
func (d *DynamicTree) Len() int {
	return d.tree.Len()
}

// Height returns the tree height
func (d *DynamicTree) Height() int {
	return d.tree.Height()
}

// Validate checks the tree invariants
func (d *DynamicTree) Validate() error {
	return d.tree.Validate()
}

// Walk visits every node of the tree, for debug drawing
func (d *DynamicTree) Walk(fn func(bounds physics.BoundingBox, height int, leaf bool)) {
	d.tree.Walk(fn)
}
