package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/config"
	"github.com/excaliburjs/excalibur-dist-sub002/pkg/logging"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Runner.TickRate = 500
	if err := config.SaveConfig(cfg, cfgPath); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    options
		wantErr bool
	}{
		{
			name: "null renderer with the built-in scene",
			opts: options{configPath: cfgPath, renderer: "null", frames: 3},
		},
		{
			name: "terminal renderer without a config file",
			opts: options{configPath: filepath.Join(dir, "missing.yaml"), renderer: "terminal", frames: 1, width: 20, height: 5, scale: 40},
		},
		{
			name:    "unknown renderer",
			opts:    options{configPath: cfgPath, renderer: "opengl", frames: 1},
			wantErr: true,
		},
		{
			name:    "missing scene file",
			opts:    options{configPath: cfgPath, scenePath: filepath.Join(dir, "nope.yaml"), renderer: "null", frames: 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.opts, logging.Discard())
			if (err != nil) != tt.wantErr {
				t.Errorf("run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(cfgPath, []byte(`{"physics": {"collisionPasses": 0}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	err := run(context.Background(), options{configPath: cfgPath, renderer: "null", frames: 1}, logging.Discard())
	if err == nil {
		t.Error("run() accepted an invalid configuration")
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := options{configPath: filepath.Join(t.TempDir(), "none.yaml"), renderer: "null"}
	if err := run(ctx, opts, logging.Discard()); err != nil {
		t.Errorf("run() error = %v after cancellation, expected nil", err)
	}
}
