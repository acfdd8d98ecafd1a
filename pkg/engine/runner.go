package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/collision"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/config"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/logging"
)

var (
	// ErrStepPanicked wraps a panic raised inside a step
	ErrStepPanicked = errors.New("engine: step panicked")
	// ErrHalted is returned by Run once the breaker has opened
	ErrHalted = errors.New("engine: simulation halted")
)

// FrameFunc observes every successful step
type FrameFunc func(stats collision.FrameStats)

// Stepper advances a simulation by a fixed delta. *World implements it.
type Stepper interface {
	Step(ctx context.Context, delta time.Duration) (collision.FrameStats, error)
	Frame() uint64
}

// Runner steps a World on a fixed interval. Every step goes through a circuit
// breaker: after MaxConsecutiveFailures failing steps the breaker opens and Run
// stops instead of simulating a corrupted world.
type Runner struct {
	world   Stepper
	cfg     config.RunnerConfig
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger

	mu      sync.RWMutex
	running bool
	lastErr error
	onFrame []FrameFunc
}

// NewRunner creates a runner for world
func NewRunner(world Stepper, cfg config.RunnerConfig, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewLogger()
	}

	settings := gobreaker.Settings{
		Name:        "collide-step",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.MaxConsecutiveFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Runner{
		world:   world,
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// OnFrame registers fn to be called after every successful step
func (r *Runner) OnFrame(fn FrameFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFrame = append(r.onFrame, fn)
}

// Step runs a single fixed step through the breaker. A panic inside the step is
// turned into an error wrapping ErrStepPanicked.
func (r *Runner) Step(ctx context.Context) (collision.FrameStats, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.safeStep(ctx)
	})

	r.mu.Lock()
	r.lastErr = err
	observers := r.onFrame
	r.mu.Unlock()

	if err != nil {
		r.logger.Error(ctx, "simulation step failed", err,
			"frame", r.world.Frame(),
			"state", r.breaker.State().String(),
		)
		return collision.FrameStats{}, fmt.Errorf("step: %w", err)
	}

	stats := result.(collision.FrameStats)
	for _, fn := range observers {
		fn(stats)
	}
	return stats, nil
}

func (r *Runner) safeStep(ctx context.Context) (stats collision.FrameStats, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrStepPanicked, p)
		}
	}()
	return r.world.Step(ctx, r.cfg.TickInterval())
}

// Run steps the world every tick until ctx is done or the breaker opens
func (r *Runner) Run(ctx context.Context) error {
	return r.RunFrames(ctx, 0)
}

// RunFrames is Run limited to frames steps; frames <= 0 means no limit. Failed
// steps are logged and counted by the breaker; the loop only stops once it opens.
func (r *Runner) RunFrames(ctx context.Context, frames int) error {
	r.setRunning(true)
	defer r.setRunning(false)

	ticker := time.NewTicker(r.cfg.TickInterval())
	defer ticker.Stop()

	r.logger.Info(ctx, "simulation started",
		"tick_interval", r.cfg.TickInterval().String(),
		"frame", r.world.Frame(),
	)

	for done := 0; frames <= 0 || done < frames; done++ {
		select {
		case <-ctx.Done():
			r.logger.Info(ctx, "simulation stopped", "frames", done)
			return ctx.Err()
		case <-ticker.C:
		}

		if _, err := r.Step(ctx); err != nil && r.breaker.State() == gobreaker.StateOpen {
			return fmt.Errorf("%w after %d frames: %w", ErrHalted, done, err)
		}
	}

	r.logger.Info(ctx, "simulation finished", "frames", frames)
	return nil
}

func (r *Runner) setRunning(running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = running
}

// Running reports whether Run is looping
func (r *Runner) Running() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// LastError returns the error of the last step, nil if it succeeded
func (r *Runner) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

// Healthy reports whether the breaker still lets steps through
func (r *Runner) Healthy() bool {
	return r.breaker.State() != gobreaker.StateOpen
}

// State returns the breaker state
func (r *Runner) State() gobreaker.State {
	return r.breaker.State()
}

// Counts returns the breaker counters
func (r *Runner) Counts() gobreaker.Counts {
	return r.breaker.Counts()
}
