// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// ResolutionStrategy selects how overlapping bodies are pushed apart
type ResolutionStrategy string

const (
	// StrategyBox resolves overlaps positionally only
	StrategyBox ResolutionStrategy = "box"
	// StrategyRigidBody applies impulses, friction and positional correction
	StrategyRigidBody ResolutionStrategy = "rigidbody"
)

// Config is the root configuration document
type Config struct {
	Physics PhysicsConfig `json:"physics" yaml:"physics"`
	Runner  RunnerConfig  `json:"runner" yaml:"runner"`
}

// PhysicsConfig contains the collision pipeline tunables. It is passed explicitly to
// the broadphase and to every body; nothing reads it globally.
type PhysicsConfig struct {
	Enabled                        bool                `json:"enabled" yaml:"enabled"`
	Strategy                       ResolutionStrategy  `json:"strategy" yaml:"strategy"`
	CollisionPasses                int                 `json:"collisionPasses" yaml:"collisionPasses"`
	CheckForFastBodies             bool                `json:"checkForFastBodies" yaml:"checkForFastBodies"`
	DisableMinimumSpeedForFastBody bool                `json:"disableMinimumSpeedForFastBody" yaml:"disableMinimumSpeedForFastBody"`
	BoundsPadding                  float64             `json:"boundsPadding" yaml:"boundsPadding"`
	DynamicTreeVelocityMultiplier  float64             `json:"dynamicTreeVelocityMultiplier" yaml:"dynamicTreeVelocityMultiplier"`
	SurfaceEpsilon                 float64             `json:"surfaceEpsilon" yaml:"surfaceEpsilon"`
	DefaultMass                    float64             `json:"defaultMass" yaml:"defaultMass"`
	CollisionShift                 float64             `json:"collisionShift" yaml:"collisionShift"`
	Acceleration                   physics.Vector2D    `json:"acceleration" yaml:"acceleration"`
	AllowRigidBodyRotation         bool                `json:"allowRigidBodyRotation" yaml:"allowRigidBodyRotation"`
	WorldBounds                    physics.BoundingBox `json:"worldBounds" yaml:"worldBounds"`
}

// RunnerConfig controls the fixed-timestep frame loop
type RunnerConfig struct {
	TickRate               int `json:"tickRate" yaml:"tickRate"`
	MaxConsecutiveFailures int `json:"maxConsecutiveFailures" yaml:"maxConsecutiveFailures"`
	BreakerTimeoutMs       int `json:"breakerTimeoutMs" yaml:"breakerTimeoutMs"`
}

// TickInterval returns the wall-clock time between steps
func (r RunnerConfig) TickInterval() time.Duration {
	if r.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(r.TickRate)
}

// BreakerTimeout returns how long a tripped runner waits before probing again
func (r RunnerConfig) BreakerTimeout() time.Duration {
	return time.Duration(r.BreakerTimeoutMs) * time.Millisecond
}

// UnboundedWorld is the default world bounds; nothing ever leaves it
var UnboundedWorld = physics.BoundingBox{
	Left:   -math.MaxFloat64,
	Top:    -math.MaxFloat64,
	Right:  math.MaxFloat64,
	Bottom: math.MaxFloat64,
}

// DefaultPhysicsConfig returns the tunables the pipeline was designed around
func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		Enabled:                        true,
		Strategy:                       StrategyBox,
		CollisionPasses:                5,
		CheckForFastBodies:             true,
		DisableMinimumSpeedForFastBody: false,
		BoundsPadding:                  5,
		DynamicTreeVelocityMultiplier:  2,
		SurfaceEpsilon:                 0.1,
		DefaultMass:                    10,
		CollisionShift:                 0.001,
		Acceleration:                   physics.Vector2D{},
		AllowRigidBodyRotation:         true,
		WorldBounds:                    UnboundedWorld,
	}
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Physics: DefaultPhysicsConfig(),
		Runner: RunnerConfig{
			TickRate:               60,
			MaxConsecutiveFailures: 3,
			BreakerTimeoutMs:       5000,
		},
	}
}

// LoadConfig loads a configuration from a JSON or YAML file. Fields missing from
// the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves a configuration to a file, choosing the format by extension
func SaveConfig(cfg *Config, path string) error {
	if cfg == nil {
		return fmt.Errorf("cannot save nil config")
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Validate checks every tunable and reports the first offending field
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := cfg.Physics.Validate(); err != nil {
		return err
	}

	r := cfg.Runner
	if r.TickRate < 1 || r.TickRate > 1000 {
		return invalid("TickRate", "must be between 1 and 1000, got %d", r.TickRate)
	}
	if r.MaxConsecutiveFailures < 1 {
		return invalid("MaxConsecutiveFailures", "must be at least 1, got %d", r.MaxConsecutiveFailures)
	}
	if r.BreakerTimeoutMs < 0 {
		return invalid("BreakerTimeoutMs", "cannot be negative, got %d", r.BreakerTimeoutMs)
	}
	return nil
}

// Validate checks the physics tunables
func (p PhysicsConfig) Validate() error {
	switch p.Strategy {
	case StrategyBox, StrategyRigidBody:
	default:
		return invalid("Strategy", "unknown resolution strategy %q", p.Strategy)
	}
	if p.CollisionPasses < 1 {
		return invalid("CollisionPasses", "must be at least 1, got %d", p.CollisionPasses)
	}
	if p.BoundsPadding < 0 {
		return invalid("BoundsPadding", "cannot be negative, got %v", p.BoundsPadding)
	}
	if p.DynamicTreeVelocityMultiplier < 0 {
		return invalid("DynamicTreeVelocityMultiplier", "cannot be negative, got %v", p.DynamicTreeVelocityMultiplier)
	}
	if p.SurfaceEpsilon < 0 {
		return invalid("SurfaceEpsilon", "cannot be negative, got %v", p.SurfaceEpsilon)
	}
	if p.DefaultMass <= 0 {
		return invalid("DefaultMass", "must be positive, got %v", p.DefaultMass)
	}
	if p.CollisionShift < 0 || p.CollisionShift > 1 {
		return invalid("CollisionShift", "must be within [0, 1], got %v", p.CollisionShift)
	}
	if !p.Acceleration.IsValid() {
		return invalid("Acceleration", "must be finite")
	}
	wb := p.WorldBounds
	if wb.Left > wb.Right || wb.Top > wb.Bottom {
		return invalid("WorldBounds", "edges are inverted: %+v", wb)
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
}
