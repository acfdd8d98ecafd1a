// cmd/sandbox/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/collision"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/config"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/engine"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/health"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/logging"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/render"
	engorender "github.com/excaliburjs/excalibur-dist-sub002/pkg/render/engo"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/scene"
)

// memoryLimitMB fails the memory health check above this heap size
const memoryLimitMB = 500

type options struct {
	configPath string
	scenePath  string
	renderer   string
	frames     int
	healthAddr string

	width      int
	height     int
	scale      float64
	fullscreen bool
}

func main() {
	logger := logging.NewLogger()

	var opts options
	createDefault := flag.Bool("default", false, "Write the default configuration to -config and exit")
	flag.StringVar(&opts.configPath, "config", "config.yaml", "Path to a JSON or YAML configuration file")
	flag.StringVar(&opts.scenePath, "scene", "", "Path to a scene file (built-in scene when empty)")
	flag.StringVar(&opts.renderer, "renderer", "terminal", "Renderer type: 'terminal', 'engo' or 'null'")
	flag.IntVar(&opts.frames, "frames", 0, "Stop after this many frames (0 runs until interrupted)")
	flag.StringVar(&opts.healthAddr, "health", "", "Serve /healthz and /readyz on this address, e.g. :8080")
	flag.IntVar(&opts.width, "width", 100, "View width: columns for terminal, pixels for engo")
	flag.IntVar(&opts.height, "height", 40, "View height: rows for terminal, pixels for engo")
	flag.Float64Var(&opts.scale, "scale", 8, "World units per terminal cell")
	flag.BoolVar(&opts.fullscreen, "fullscreen", false, "Run in fullscreen mode (engo only)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), opts.configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err, "config_path", opts.configPath)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file", "config_path", opts.configPath)
		return
	}

	if err := run(ctx, opts, logger); err != nil {
		logger.Error(ctx, "Sandbox stopped with an error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *logging.Logger) error {
	cfg, err := loadConfig(ctx, opts.configPath, logger)
	if err != nil {
		return err
	}

	sc := scene.Default()
	if opts.scenePath != "" {
		if sc, err = scene.Load(opts.scenePath); err != nil {
			return err
		}
	}

	world, err := engine.NewWorld(cfg.Physics, logger)
	if err != nil {
		return err
	}
	bodies, err := sc.Build(cfg.Physics)
	if err != nil {
		return err
	}
	for _, body := range bodies {
		if err := world.Add(body); err != nil {
			return err
		}
	}
	logger.Info(ctx, "Scene loaded",
		"scene", sc.Name,
		"bodies", len(bodies),
		"strategy", cfg.Physics.Strategy,
	)

	if opts.renderer == "engo" {
		engorender.Run(engorender.NewDebugScene(ctx, world, logger), engorender.RunOptions{
			Title:      "collide sandbox: " + sc.Name,
			Width:      opts.width,
			Height:     opts.height,
			Fullscreen: opts.fullscreen,
		})
		return nil
	}

	var renderer render.Renderer
	switch opts.renderer {
	case "terminal":
		term := render.NewTerminalRenderer(os.Stdout, opts.width, opts.height, opts.scale)
		term.ClearScreen = true
		renderer = term
	case "null":
		renderer = render.NewNullRenderer(logger)
	default:
		return fmt.Errorf("unknown renderer %q", opts.renderer)
	}

	runner := engine.NewRunner(world, cfg.Runner, logger)
	runner.OnFrame(func(collision.FrameStats) {
		if err := render.DrawFrame(renderer, world.Bodies()); err != nil {
			logger.Warn(ctx, "Failed to draw frame", "error", err)
		}
	})

	if opts.healthAddr != "" {
		shutdown := serveHealth(ctx, opts.healthAddr, world, runner, logger)
		defer shutdown()
	}

	if opts.frames > 0 {
		err = runner.RunFrames(ctx, opts.frames)
	} else {
		err = runner.Run(ctx)
	}

	stats := world.LastStats()
	logger.Info(ctx, "Simulation stopped",
		"frames", world.Frame(),
		"bodies", world.Len(),
		"pairs", stats.Pairs,
		"collisions", stats.Collisions,
	)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loadConfig reads path when it exists, falls back to defaults otherwise, and
// applies COLLIDE_* environment overrides on top
func loadConfig(ctx context.Context, path string, logger *logging.Logger) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration", "config_path", path)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, logging.WrapError(err, "loading %s", path)
		}
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, logging.WrapError(err, "applying environment configuration")
	}
	return cfg, nil
}

// serveHealth starts the probe server and returns its shutdown function
func serveHealth(ctx context.Context, addr string, world *engine.World, runner *engine.Runner, logger *logging.Logger) func() {
	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewSimulationHealthCheck(runner, world.LastStep, 5*time.Second))
	checker.AddCheck(health.NewTreeHealthCheck(world.Validate))
	checker.AddCheck(health.NewMemoryHealthCheck(memoryLimitMB, health.HeapUsageMB))

	mux := http.NewServeMux()
	checker.Routes(mux)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(ctx, "Starting health check server", "address", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Health check server failed", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Health check server shutdown failed", err)
		}
	}
}
