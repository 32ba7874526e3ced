// Package debug wires the eino visual debug plugin behind a config
// switch.
package debug

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/devops"

	"github.com/dyike/ScreenerGo/internal/config"
	"github.com/dyike/ScreenerGo/internal/logger"
)

type EinoDebugger struct {
	config *config.Config
}

func NewEinoDebugger(cfg *config.Config) *EinoDebugger {
	return &EinoDebugger{config: cfg}
}

// Initialize starts the debug plugin when enabled. Disabled is not an
// error.
func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.config.EinoDebugEnabled {
		return nil
	}

	if err := devops.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize eino debug plugin: %w", err)
	}

	logger.Log.Infof("eino debug server available at %s", d.DebugURL())
	return nil
}

func (d *EinoDebugger) DebugURL() string {
	if !d.config.EinoDebugEnabled {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.config.EinoDebugPort)
}
