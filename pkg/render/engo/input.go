package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/collision"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/engine"
)

const (
	buttonPause     = "pause"
	buttonStep      = "step"
	buttonTree      = "tree"
	buttonFollow    = "follow"
	buttonZoomIn    = "zoomIn"
	buttonZoomOut   = "zoomOut"
	buttonResetZoom = "resetZoom"
)

// controlPriority runs input ahead of the collision system
const controlPriority = 20

// SetupInputBindings registers the key bindings of the debug scene
func SetupInputBindings() {
	engo.Input.RegisterButton(buttonPause, engo.KeySpace)
	engo.Input.RegisterButton(buttonStep, engo.KeyN)
	engo.Input.RegisterButton(buttonTree, engo.KeyT)
	engo.Input.RegisterButton(buttonFollow, engo.KeyF)
	engo.Input.RegisterButton(buttonZoomIn, engo.KeyE)
	engo.Input.RegisterButton(buttonZoomOut, engo.KeyQ)
	engo.Input.RegisterButton(buttonResetZoom, engo.KeyR)
}

// ControlSystem maps keys onto the simulation: pause, single step, tree
// overlay and which body the camera follows.
type ControlSystem struct {
	sim    *engine.CollisionSystem
	world  *engine.World
	camera *CameraSystem

	showTree    bool
	stepping    bool
	followIndex int
}

// NewControlSystem creates the controls for sim and its world
func NewControlSystem(sim *engine.CollisionSystem, world *engine.World, camera *CameraSystem) *ControlSystem {
	return &ControlSystem{
		sim:         sim,
		world:       world,
		camera:      camera,
		followIndex: -1,
	}
}

// Remove satisfies the ecs.System interface
func (c *ControlSystem) Remove(basic ecs.BasicEntity) {}

// Priority makes ecs.World run the controls before stepping
func (c *ControlSystem) Priority() int {
	return controlPriority
}

// Update reads the buttons registered by SetupInputBindings
func (c *ControlSystem) Update(dt float32) {
	c.settle()

	if engo.Input.Button(buttonPause).JustPressed() {
		c.TogglePause()
	}
	if engo.Input.Button(buttonStep).JustPressed() {
		c.StepOnce()
	}
	if engo.Input.Button(buttonTree).JustPressed() {
		c.ToggleTree()
	}
	if engo.Input.Button(buttonFollow).JustPressed() {
		c.FollowNext()
	}
}

// settle pauses again after a single step was let through
func (c *ControlSystem) settle() {
	if c.stepping {
		c.stepping = false
		c.sim.SetPaused(true)
	}
}

// TogglePause stops or resumes the simulation
func (c *ControlSystem) TogglePause() {
	c.stepping = false
	c.sim.SetPaused(!c.sim.Paused())
}

// StepOnce lets exactly one frame through while paused
func (c *ControlSystem) StepOnce() {
	if !c.sim.Paused() {
		return
	}
	c.stepping = true
	c.sim.SetPaused(false)
}

// ToggleTree shows or hides the dynamic tree overlay
func (c *ControlSystem) ToggleTree() {
	c.showTree = !c.showTree
}

// ShowTree reports whether the tree overlay is drawn
func (c *ControlSystem) ShowTree() bool {
	return c.showTree
}

// FollowNext points the camera at the next Active body, then back at nothing
func (c *ControlSystem) FollowNext() *collision.Body {
	var active []*collision.Body
	for _, body := range c.world.Bodies() {
		if body.Collider.Type == collision.Active {
			active = append(active, body)
		}
	}

	c.followIndex++
	if c.followIndex >= len(active) {
		c.followIndex = -1
		c.camera.SetTarget(nil)
		return nil
	}
	c.camera.SetTarget(active[c.followIndex])
	return active[c.followIndex]
}
