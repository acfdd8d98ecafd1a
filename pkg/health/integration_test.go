package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/collision"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/config"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/engine"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/logging"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// TestHealthCheckIntegration probes a real world driven by a runner
func TestHealthCheckIntegration(t *testing.T) {
	world, err := engine.NewWorld(config.DefaultPhysicsConfig(), logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		circle, err := collision.NewCircle(5, physics.Vector2D{})
		if err != nil {
			t.Fatal(err)
		}
		collider := collision.NewCollider(circle)
		collider.Type = collision.Active
		body, err := collision.NewBody(collision.BodyOptions{
			Collider: collider,
			Pos:      physics.Vector2D{X: float64(i) * 8},
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := world.Add(body); err != nil {
			t.Fatal(err)
		}
	}

	runner := engine.NewRunner(world, config.RunnerConfig{TickRate: 200, MaxConsecutiveFailures: 3}, logging.Discard())

	healthChecker := NewHealthChecker()
	healthChecker.AddCheck(NewSimulationHealthCheck(runner, world.LastStep, time.Second))
	healthChecker.AddCheck(NewTreeHealthCheck(world.Validate))
	healthChecker.AddCheck(NewMemoryHealthCheck(10000, HeapUsageMB))

	t.Run("before the loop starts", func(t *testing.T) {
		health := healthChecker.CheckHealth(context.Background())
		if health.Checks["simulation"].Status != "unhealthy" {
			t.Error("simulation should be unhealthy before Run")
		}
		if health.Checks["dynamic_tree"].Status != "healthy" {
			t.Errorf("tree should be valid, got: %s", health.Checks["dynamic_tree"].Message)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for world.Frame() < 10 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if world.Frame() < 10 {
		t.Fatalf("only %d frames ran", world.Frame())
	}

	t.Run("readiness while running", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/readyz", nil)
		w := httptest.NewRecorder()
		healthChecker.ReadinessHandler(w, req)

		var response HealthStatus
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if w.Code != http.StatusOK || response.Status != "healthy" {
			t.Errorf("Expected healthy, got %d %+v", w.Code, response.Checks)
		}
	})

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run() returned %v, expected context.Canceled", err)
	}

	t.Run("after the loop stops", func(t *testing.T) {
		health := healthChecker.CheckHealth(context.Background())
		if health.Status != "unhealthy" {
			t.Error("overall status should be unhealthy once the loop stopped")
		}
	})
}
