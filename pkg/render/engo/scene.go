// Package engo draws a running collision world with the engo engine: bodies
// colored by collision type, an optional dynamic tree overlay, and keys to
// pause, single-step and follow bodies.
package engo

import (
	"context"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/engine"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/logging"
)

// drawPriority runs drawing after the collision system and before engo renders
const drawPriority = 5

// DebugScene is an engo.Scene stepping a world once per engo frame
type DebugScene struct {
	ctx    context.Context
	world  *engine.World
	logger *logging.Logger

	sim      *engine.CollisionSystem
	renderer *DebugRenderer
	camera   *CameraSystem
	controls *ControlSystem
}

// NewDebugScene creates a scene for world
func NewDebugScene(ctx context.Context, world *engine.World, logger *logging.Logger) *DebugScene {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &DebugScene{
		ctx:    ctx,
		world:  world,
		logger: logger,
	}
}

// Type returns the scene type (required by Engo)
func (scene *DebugScene) Type() string {
	return "CollisionDebugScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *DebugScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *DebugScene) Setup(u engo.Updater) {
	w, _ := u.(*ecs.World)
	common.SetBackground(backgroundColor)
	SetupInputBindings()

	renderSystem := &common.RenderSystem{}
	w.AddSystem(renderSystem)
	scene.build(w, renderSystem)
}

// build wires the non-engo systems into w
func (scene *DebugScene) build(w *ecs.World, sink renderSink) {
	scene.renderer = NewDebugRenderer(sink)
	scene.camera = NewCameraSystem()
	scene.sim = engine.NewCollisionSystem(scene.ctx, scene.world, scene.logger)
	scene.controls = NewControlSystem(scene.sim, scene.world, scene.camera)

	w.AddSystem(scene.controls)
	w.AddSystem(scene.sim)
	w.AddSystem(&drawSystem{scene: scene})
	w.AddSystem(scene.camera)
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *DebugScene) Exit() {
	scene.logger.Info(scene.ctx, "debug scene closed", "frame", scene.world.Frame())
}

// Draw renders the current state of the world
func (scene *DebugScene) Draw() error {
	scene.renderer.Clear()
	for _, body := range scene.world.Bodies() {
		scene.renderer.RenderBody(body)
	}
	if scene.controls.ShowTree() {
		scene.renderer.RenderTree(scene.world.Tree())
	}
	return scene.renderer.Present()
}

type drawSystem struct {
	scene *DebugScene
}

func (d *drawSystem) Remove(basic ecs.BasicEntity) {}

func (d *drawSystem) Priority() int {
	return drawPriority
}

func (d *drawSystem) Update(dt float32) {
	if err := d.scene.Draw(); err != nil {
		d.scene.logger.Error(d.scene.ctx, "debug draw failed", err)
	}
}

// RunOptions configures the debug window
type RunOptions struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
}

// Run opens a window and blocks until it is closed
func Run(scene *DebugScene, opts RunOptions) {
	engo.Run(engo.RunOptions{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Fullscreen: opts.Fullscreen,
		VSync:      true,
	}, scene)
}
