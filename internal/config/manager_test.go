package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if mgr.Path() != filepath.Join(dir, "config.json") {
		t.Fatalf("unexpected config path %s", mgr.Path())
	}

	cfg := mgr.Get()
	cfg.DatasetPath = filepath.Join(dir, "data")
	cfg.MaxSteps = 8

	if err := mgr.Update(cfg); err != nil {
		t.Fatalf("Update: %v", err)
	}

	updated := mgr.Get()
	if updated.DatasetPath != cfg.DatasetPath {
		t.Fatalf("expected dataset path %s, got %s", cfg.DatasetPath, updated.DatasetPath)
	}
	if updated.MaxSteps != 8 {
		t.Fatalf("expected max steps 8, got %d", updated.MaxSteps)
	}
}

func TestManagerRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := mgr.Get()
	cfg.MaxSteps = 0
	if err := mgr.Update(cfg); err == nil {
		t.Fatal("expected validation error for zero max_steps")
	}

	cfg = mgr.Get()
	cfg.LLMProvider = "gopher"
	if err := mgr.Update(cfg); err == nil {
		t.Fatal("expected validation error for unknown provider")
	}
}

func TestManagerWatchReloads(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 1)
	if err := mgr.Watch(ctx, func(cfg Config) {
		reloaded <- struct{}{}
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cfg := mgr.Get()
	cfg.ServerPort = 9191

	if err := writeConfigFile(mgr.Path(), cfg); err != nil {
		t.Fatalf("writeConfigFile: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not fire on config change")
	}
}
