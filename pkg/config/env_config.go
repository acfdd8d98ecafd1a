package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables recognised by ApplyEnvironmentOverrides
const (
	EnvEnabled            = "COLLIDE_ENABLED"
	EnvStrategy           = "COLLIDE_STRATEGY"
	EnvCollisionPasses    = "COLLIDE_COLLISION_PASSES"
	EnvCheckFastBodies    = "COLLIDE_CHECK_FAST_BODIES"
	EnvBoundsPadding      = "COLLIDE_BOUNDS_PADDING"
	EnvSurfaceEpsilon     = "COLLIDE_SURFACE_EPSILON"
	EnvDefaultMass        = "COLLIDE_DEFAULT_MASS"
	EnvGravityY           = "COLLIDE_GRAVITY_Y"
	EnvTickRate           = "COLLIDE_TICK_RATE"
	EnvMaxFailures        = "COLLIDE_MAX_CONSECUTIVE_FAILURES"
	EnvBreakerTimeoutMs   = "COLLIDE_BREAKER_TIMEOUT_MS"
	EnvVelocityMultiplier = "COLLIDE_TREE_VELOCITY_MULTIPLIER"
)

// LoadConfigFromEnv returns the default configuration with environment overrides applied
func LoadConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvironmentOverrides overwrites fields of cfg whose environment variable is set,
// then validates the result. Unparseable values keep the current setting.
func ApplyEnvironmentOverrides(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	p := &cfg.Physics
	p.Enabled = getEnvAsBoolOrDefault(EnvEnabled, p.Enabled)
	p.Strategy = ResolutionStrategy(strings.ToLower(getEnvOrDefault(EnvStrategy, string(p.Strategy))))
	p.CollisionPasses = getEnvAsIntOrDefault(EnvCollisionPasses, p.CollisionPasses)
	p.CheckForFastBodies = getEnvAsBoolOrDefault(EnvCheckFastBodies, p.CheckForFastBodies)
	p.BoundsPadding = getEnvAsFloatOrDefault(EnvBoundsPadding, p.BoundsPadding)
	p.SurfaceEpsilon = getEnvAsFloatOrDefault(EnvSurfaceEpsilon, p.SurfaceEpsilon)
	p.DefaultMass = getEnvAsFloatOrDefault(EnvDefaultMass, p.DefaultMass)
	p.Acceleration.Y = getEnvAsFloatOrDefault(EnvGravityY, p.Acceleration.Y)
	p.DynamicTreeVelocityMultiplier = getEnvAsFloatOrDefault(EnvVelocityMultiplier, p.DynamicTreeVelocityMultiplier)

	r := &cfg.Runner
	r.TickRate = getEnvAsIntOrDefault(EnvTickRate, r.TickRate)
	r.MaxConsecutiveFailures = getEnvAsIntOrDefault(EnvMaxFailures, r.MaxConsecutiveFailures)
	r.BreakerTimeoutMs = getEnvAsIntOrDefault(EnvBreakerTimeoutMs, r.BreakerTimeoutMs)

	return Validate(cfg)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnvOrDefault(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnvOrDefault(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnvOrDefault(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}
