package engo

import (
	"context"
	"testing"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/collision"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/config"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/engine"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/logging"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

func newTestWorld(t *testing.T) *engine.World {
	t.Helper()
	w, err := engine.NewWorld(config.DefaultPhysicsConfig(), logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func addCircle(t *testing.T, w *engine.World, typ collision.CollisionType, pos physics.Vector2D) *collision.Body {
	t.Helper()
	circle, err := collision.NewCircle(1, physics.Vector2D{})
	if err != nil {
		t.Fatal(err)
	}
	body := newBody(t, circle, typ, pos)
	if err := w.Add(body); err != nil {
		t.Fatal(err)
	}
	return body
}

func TestControlSystem_PauseAndStep(t *testing.T) {
	w := newTestWorld(t)
	sim := engine.NewCollisionSystem(context.Background(), w, logging.Discard())
	controls := NewControlSystem(sim, w, NewCameraSystem())

	// a frame runs the controls, then the collision system
	frame := func(input func()) {
		controls.settle()
		if input != nil {
			input()
		}
		sim.Update(0.016)
	}

	frame(controls.TogglePause)
	if w.Frame() != 0 {
		t.Fatalf("paused world stepped to frame %d", w.Frame())
	}

	frame(controls.StepOnce)
	frame(nil)
	if w.Frame() != 1 {
		t.Errorf("StepOnce() let %d frames through, expected 1", w.Frame())
	}
	if !sim.Paused() {
		t.Error("simulation should be paused again after a single step")
	}

	frame(func() {
		controls.TogglePause()
		controls.StepOnce()
	})
	frame(nil)
	if w.Frame() != 3 || sim.Paused() {
		t.Errorf("running simulation: Frame() = %d, Paused() = %v", w.Frame(), sim.Paused())
	}
}

func TestControlSystem_FollowNext(t *testing.T) {
	w := newTestWorld(t)
	camera := NewCameraSystem()
	controls := NewControlSystem(engine.NewCollisionSystem(context.Background(), w, logging.Discard()), w, camera)

	first := addCircle(t, w, collision.Active, physics.Vector2D{})
	addCircle(t, w, collision.Fixed, physics.Vector2D{X: 10})
	second := addCircle(t, w, collision.Active, physics.Vector2D{X: 20})

	for i, expected := range []*collision.Body{first, second, nil, first} {
		if got := controls.FollowNext(); got != expected {
			t.Errorf("FollowNext() call %d = %v, expected %v", i, got, expected)
		}
		if camera.Target() != expected {
			t.Errorf("camera target after call %d = %v, expected %v", i, camera.Target(), expected)
		}
	}
}

func TestControlSystem_ToggleTree(t *testing.T) {
	w := newTestWorld(t)
	controls := NewControlSystem(engine.NewCollisionSystem(context.Background(), w, logging.Discard()), w, NewCameraSystem())

	if controls.ShowTree() {
		t.Error("tree overlay should start hidden")
	}
	controls.ToggleTree()
	if !controls.ShowTree() {
		t.Error("ToggleTree() did not show the overlay")
	}
}

func TestCameraSystem_Follow(t *testing.T) {
	body := newBody(t, nil, collision.Active, physics.Vector2D{X: 100, Y: 200})

	t.Run("no target keeps position", func(t *testing.T) {
		camera := NewCameraSystem()
		camera.SetPosition(physics.Vector2D{X: 1, Y: 2})
		camera.Follow(1)
		if camera.Position() != (physics.Vector2D{X: 1, Y: 2}) {
			t.Errorf("Position() = %v, expected (1, 2)", camera.Position())
		}
	})

	t.Run("snapping", func(t *testing.T) {
		camera := NewCameraSystem()
		camera.EnableSmoothing(false)
		camera.SetTarget(body)
		camera.Follow(0.01)
		if camera.Position() != body.Pos {
			t.Errorf("Position() = %v, expected %v", camera.Position(), body.Pos)
		}
	})

	t.Run("smoothing eases toward the target", func(t *testing.T) {
		camera := NewCameraSystem()
		camera.SetTarget(body)
		camera.Follow(0.125)
		if !camera.Position().Equals(physics.Vector2D{X: 50, Y: 100}, 1e-9) {
			t.Errorf("Position() = %v, expected half way", camera.Position())
		}
		camera.Follow(10)
		if camera.Position() != body.Pos {
			t.Errorf("a large step should land on the target, got %v", camera.Position())
		}
	})
}

func TestCameraSystem_Zoom(t *testing.T) {
	tests := []struct {
		name     string
		zoom     float32
		expected float32
	}{
		{name: "within limits", zoom: 2, expected: 2},
		{name: "below minimum", zoom: 0.01, expected: 0.1},
		{name: "above maximum", zoom: 100, expected: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			camera := NewCameraSystem()
			camera.SetZoom(tt.zoom)
			if camera.Zoom() != tt.expected {
				t.Errorf("Zoom() = %v, expected %v", camera.Zoom(), tt.expected)
			}
		})
	}
}
