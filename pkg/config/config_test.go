// pkg/config/config_test.go
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Fatalf("DefaultConfig() does not validate: %v", err)
	}

	p := cfg.Physics
	if !p.Enabled {
		t.Error("expected physics enabled by default")
	}
	if p.Strategy != StrategyBox {
		t.Errorf("Strategy = %q, expected %q", p.Strategy, StrategyBox)
	}
	if p.CollisionPasses != 5 {
		t.Errorf("CollisionPasses = %d, expected 5", p.CollisionPasses)
	}
	if p.BoundsPadding != 5 || p.SurfaceEpsilon != 0.1 || p.DefaultMass != 10 {
		t.Errorf("unexpected default tunables: %+v", p)
	}
	if !p.CheckForFastBodies || p.DisableMinimumSpeedForFastBody {
		t.Error("fast body detection should be on with the minimum speed check")
	}
	if p.WorldBounds != UnboundedWorld {
		t.Errorf("WorldBounds = %+v, expected unbounded", p.WorldBounds)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Config)
		errorField string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "unknown_strategy", modify: func(c *Config) { c.Physics.Strategy = "verlet" }, errorField: "Strategy"},
		{name: "zero_passes", modify: func(c *Config) { c.Physics.CollisionPasses = 0 }, errorField: "CollisionPasses"},
		{name: "negative_padding", modify: func(c *Config) { c.Physics.BoundsPadding = -1 }, errorField: "BoundsPadding"},
		{name: "zero_mass", modify: func(c *Config) { c.Physics.DefaultMass = 0 }, errorField: "DefaultMass"},
		{name: "shift_too_large", modify: func(c *Config) { c.Physics.CollisionShift = 2 }, errorField: "CollisionShift"},
		{name: "inverted_world", modify: func(c *Config) { c.Physics.WorldBounds.Left = 1e9; c.Physics.WorldBounds.Right = 0 }, errorField: "WorldBounds"},
		{name: "tick_rate", modify: func(c *Config) { c.Runner.TickRate = 0 }, errorField: "TickRate"},
		{name: "failures", modify: func(c *Config) { c.Runner.MaxConsecutiveFailures = 0 }, errorField: "MaxConsecutiveFailures"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.errorField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error for %s", tt.errorField)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.errorField) {
				t.Errorf("error %q does not mention %s", err, tt.errorField)
			}
		})
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	for _, name := range []string{"physics.json", "physics.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := DefaultConfig()
			cfg.Physics.Strategy = StrategyRigidBody
			cfg.Physics.Acceleration.Y = 400
			cfg.Runner.TickRate = 30

			if err := SaveConfig(cfg, path); err != nil {
				t.Fatalf("SaveConfig() failed: %v", err)
			}

			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig() failed: %v", err)
			}
			if loaded.Physics.Strategy != StrategyRigidBody {
				t.Errorf("Strategy = %q after reload", loaded.Physics.Strategy)
			}
			if loaded.Physics.Acceleration.Y != 400 {
				t.Errorf("Acceleration.Y = %v after reload", loaded.Physics.Acceleration.Y)
			}
			if loaded.Runner.TickRate != 30 {
				t.Errorf("TickRate = %d after reload", loaded.Runner.TickRate)
			}
		})
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yml")
	content := "physics:\n  strategy: rigidbody\n  collisionPasses: 8\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Physics.CollisionPasses != 8 {
		t.Errorf("CollisionPasses = %d, expected 8", cfg.Physics.CollisionPasses)
	}
	if cfg.Physics.BoundsPadding != 5 {
		t.Errorf("BoundsPadding = %v, expected default 5", cfg.Physics.BoundsPadding)
	}
	if cfg.Runner.TickRate != 60 {
		t.Errorf("TickRate = %d, expected default 60", cfg.Runner.TickRate)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("expected parse error")
	}

	invalidFile := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalidFile, []byte(`{"physics":{"strategy":"nope"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(invalidFile); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	if err := SaveConfig(nil, filepath.Join(dir, "nil.json")); err == nil {
		t.Error("expected error saving nil config")
	}
}

func TestRunnerConfig_Durations(t *testing.T) {
	r := RunnerConfig{TickRate: 50, BreakerTimeoutMs: 250}
	if got := r.TickInterval().Milliseconds(); got != 20 {
		t.Errorf("TickInterval() = %dms, expected 20ms", got)
	}
	if got := r.BreakerTimeout().Milliseconds(); got != 250 {
		t.Errorf("BreakerTimeout() = %dms, expected 250ms", got)
	}
}
