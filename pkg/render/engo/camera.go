package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/collision"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// CameraSystem keeps the engo camera on a followed body and applies zoom input
type CameraSystem struct {
	target *collision.Body

	zoom    float32
	minZoom float32
	maxZoom float32

	followSpeed float32
	smoothing   bool

	currentPos physics.Vector2D
}

// NewCameraSystem creates a camera looking at the origin
func NewCameraSystem() *CameraSystem {
	return &CameraSystem{
		zoom:        1.0,
		minZoom:     0.1,
		maxZoom:     8.0,
		followSpeed: 4.0,
		smoothing:   true,
	}
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {}

// Update follows the target and dispatches the camera position and zoom
func (cs *CameraSystem) Update(dt float32) {
	cs.handleZoomInput()
	cs.Follow(dt)

	engo.Mailbox.Dispatch(common.CameraMessage{Axis: common.XAxis, Value: float32(cs.currentPos.X)})
	engo.Mailbox.Dispatch(common.CameraMessage{Axis: common.YAxis, Value: float32(cs.currentPos.Y)})
	engo.Mailbox.Dispatch(common.CameraMessage{Axis: common.ZAxis, Value: 1 / cs.zoom})
}

func (cs *CameraSystem) handleZoomInput() {
	if scrollY := engo.Input.Mouse.ScrollY; scrollY != 0 {
		cs.SetZoom(cs.zoom * (1 + scrollY*0.1))
	}
	if engo.Input.Button(buttonZoomIn).Down() {
		cs.SetZoom(cs.zoom * 1.02)
	}
	if engo.Input.Button(buttonZoomOut).Down() {
		cs.SetZoom(cs.zoom * 0.98)
	}
	if engo.Input.Button(buttonResetZoom).JustPressed() {
		cs.SetZoom(1.0)
	}
}

// Follow moves the camera toward the target body by dt seconds
func (cs *CameraSystem) Follow(dt float32) {
	if cs.target == nil {
		return
	}
	goal := cs.target.Pos
	if !cs.smoothing {
		cs.currentPos = goal
		return
	}
	step := float64(cs.followSpeed * dt)
	if step > 1 {
		step = 1
	}
	cs.currentPos = cs.currentPos.Add(goal.Sub(cs.currentPos).Scale(step))
}

// SetTarget makes the camera follow body; nil stops following
func (cs *CameraSystem) SetTarget(body *collision.Body) {
	cs.target = body
}

// Target returns the followed body
func (cs *CameraSystem) Target() *collision.Body {
	return cs.target
}

// SetZoom sets the zoom level, clamped to the zoom limits
func (cs *CameraSystem) SetZoom(zoom float32) {
	cs.zoom = min(max(zoom, cs.minZoom), cs.maxZoom)
}

// Zoom returns the current zoom level
func (cs *CameraSystem) Zoom() float32 {
	return cs.zoom
}

// EnableSmoothing switches between easing toward the target and snapping to it
func (cs *CameraSystem) EnableSmoothing(enabled bool) {
	cs.smoothing = enabled
}

// Position returns the world position at the center of the view
func (cs *CameraSystem) Position() physics.Vector2D {
	return cs.currentPos
}

// SetPosition moves the camera without following anything
func (cs *CameraSystem) SetPosition(pos physics.Vector2D) {
	cs.target = nil
	cs.currentPos = pos
}
