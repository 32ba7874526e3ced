package cli

import (
	"context"
	"fmt"

	"github.com/dyike/ScreenerGo/internal/config"
	"github.com/dyike/ScreenerGo/internal/debug"
	"github.com/dyike/ScreenerGo/internal/engine"
	"github.com/dyike/ScreenerGo/internal/llm"
	"github.com/dyike/ScreenerGo/internal/logger"
	"github.com/dyike/ScreenerGo/internal/orchestrator"
	"github.com/dyike/ScreenerGo/internal/store"
	"github.com/dyike/ScreenerGo/internal/tools"
)

// app holds the wired components behind every command.
type app struct {
	cfg          *config.Config
	registry     *tools.Registry
	orchestrator *orchestrator.Orchestrator
}

// newRegistry wires the data path up to the tool registry, which is
// enough for commands that never talk to the model.
func newRegistry(ctx context.Context, cfg *config.Config) (*tools.Registry, error) {
	eng := engine.New(store.New(cfg.DatasetCSV()))
	return tools.NewRegistry(ctx, cfg, eng)
}

// newApp wires the full stack including the chat model.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := debug.NewEinoDebugger(cfg).Initialize(ctx); err != nil {
		logger.Log.Warnf("eino debug plugin unavailable: %v", err)
	}

	registry, err := newRegistry(ctx, cfg)
	if err != nil {
		return nil, err
	}

	chatModel, err := llm.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	orch, err := orchestrator.New(chatModel, registry, cfg)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, registry: registry, orchestrator: orch}, nil
}
