// Package health exposes liveness and readiness probes for a running
// simulation: the frame loop, the broadphase tree and process memory.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"
)

// HealthCheck defines the interface for individual health checks.
// Each component can implement this interface to provide its health status.
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check performs the health check and returns an error if unhealthy
	Check(ctx context.Context) error
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents the health status of an individual component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker manages and executes health checks for the application.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker creates a new health checker instance.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers a new health check with the health checker.
// If a check with the same name already exists, it will be replaced.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth executes all registered health checks and returns the aggregated status.
// The overall status is "healthy" only if all individual checks pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth),
	}

	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
		} else {
			status.Checks[name] = ComponentHealth{
				Status: "healthy",
			}
		}
	}

	return status
}

// LivenessHandler answers 200 as long as the process serves requests.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]string{"status": "alive"}
	json.NewEncoder(w).Encode(response)
}

// ReadinessHandler runs every check and answers 200 when all pass, 503 otherwise.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := hc.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")

	if health.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(health)
}

// Routes registers the probes under /healthz and /readyz
func (hc *HealthChecker) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", hc.LivenessHandler)
	mux.HandleFunc("/readyz", hc.ReadinessHandler)
}

// SimulationStatus is the view of the frame loop a health check needs.
// *engine.Runner satisfies it.
type SimulationStatus interface {
	Running() bool
	Healthy() bool
}

// SimulationHealthCheck fails when the frame loop is stopped, its circuit
// breaker has opened, or no step has completed for longer than maxStall.
type SimulationHealthCheck struct {
	sim      SimulationStatus
	lastStep func() time.Time
	maxStall time.Duration
	now      func() time.Time
}

// NewSimulationHealthCheck creates a health check for the simulation loop. A
// zero maxStall disables the stall check.
func NewSimulationHealthCheck(sim SimulationStatus, lastStep func() time.Time, maxStall time.Duration) *SimulationHealthCheck {
	return &SimulationHealthCheck{
		sim:      sim,
		lastStep: lastStep,
		maxStall: maxStall,
		now:      time.Now,
	}
}

// Name returns the name of this health check.
func (s *SimulationHealthCheck) Name() string {
	return "simulation"
}

// Check verifies that steps are still being taken.
func (s *SimulationHealthCheck) Check(ctx context.Context) error {
	if !s.sim.Healthy() {
		return fmt.Errorf("circuit breaker is open, simulation halted")
	}
	if !s.sim.Running() {
		return fmt.Errorf("simulation is not running")
	}
	if s.maxStall <= 0 || s.lastStep == nil {
		return nil
	}
	last := s.lastStep()
	if last.IsZero() {
		return nil
	}
	if stalled := s.now().Sub(last); stalled > s.maxStall {
		return fmt.Errorf("no step completed for %v (limit %v)", stalled.Round(time.Millisecond), s.maxStall)
	}
	return nil
}

// TreeHealthCheck runs the structural validation of the broadphase tree.
type TreeHealthCheck struct {
	validate func() error
}

// NewTreeHealthCheck creates a health check around a tree validator.
func NewTreeHealthCheck(validate func() error) *TreeHealthCheck {
	return &TreeHealthCheck{validate: validate}
}

// Name returns the name of this health check.
func (t *TreeHealthCheck) Name() string {
	return "dynamic_tree"
}

// Check reports the first broken tree invariant.
func (t *TreeHealthCheck) Check(ctx context.Context) error {
	if err := t.validate(); err != nil {
		return fmt.Errorf("dynamic tree is corrupt: %w", err)
	}
	return nil
}

// MemoryHealthCheck implements HealthCheck for memory usage monitoring.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a health check for memory usage.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name returns the name of this health check.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// HeapUsageMB returns the bytes of allocated heap objects in megabytes
func HeapUsageMB() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}
