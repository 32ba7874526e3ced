package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/ScreenerGo/internal/config"
	"github.com/dyike/ScreenerGo/internal/docintel"
	"github.com/dyike/ScreenerGo/internal/engine"
	"github.com/dyike/ScreenerGo/internal/logger"
	"github.com/dyike/ScreenerGo/internal/models"
)

// Registry holds the invokable tools exposed to the model, in
// registration order.
type Registry struct {
	names  []string
	byName map[string]tool.InvokableTool
	infos  []*schema.ToolInfo
}

// NewRegistry registers the screening toolset. The live quote and
// document insight tools are optional and depend on configuration.
func NewRegistry(ctx context.Context, cfg *config.Config, eng *engine.Engine) (*Registry, error) {
	r := &Registry{byName: make(map[string]tool.InvokableTool)}

	base := []tool.InvokableTool{
		NewTopStocksTool(eng),
		NewIndustryFilterTool(eng),
		NewSectorFilterTool(eng),
		NewStockDetailsTool(eng),
		NewCompareStocksTool(eng),
		NewIndustryOverviewTool(eng),
		NewSearchStocksTool(eng),
		NewAvailableIndustriesTool(eng),
		NewAvailableSectorsTool(eng),
	}
	for _, t := range base {
		if err := r.register(ctx, t); err != nil {
			return nil, err
		}
	}

	if cfg.OnlineTools {
		if err := r.register(ctx, NewLiveQuoteTool()); err != nil {
			return nil, err
		}
	}

	if cfg.DocIntelEndpoint != "" {
		client, err := docintel.NewClient(cfg.DocIntelEndpoint, cfg.DocIntelAPIKey)
		if err != nil {
			logger.Log.Warnf("document insights disabled: %v", err)
		} else {
			locator := docintel.NewReportLocator(cfg.ReportsDir)
			if err := r.register(ctx, NewDocumentInsightsTool(client, locator)); err != nil {
				return nil, err
			}
		}
	}

	return r, nil
}

func (r *Registry) register(ctx context.Context, t tool.InvokableTool) error {
	info, err := t.Info(ctx)
	if err != nil {
		return fmt.Errorf("tool info: %w", err)
	}
	if _, exists := r.byName[info.Name]; exists {
		return fmt.Errorf("duplicate tool name %q", info.Name)
	}
	r.names = append(r.names, info.Name)
	r.byName[info.Name] = t
	r.infos = append(r.infos, info)
	return nil
}

// Names lists the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Specs returns the tool declarations to bind to the chat model.
func (r *Registry) Specs() []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, len(r.infos))
	copy(out, r.infos)
	return out
}

// Dispatcher routes one tool call to its implementation and always
// produces a JSON payload, turning every failure mode into an error
// envelope the model can read and recover from.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

type dispatchError struct {
	Error              string          `json:"error"`
	Reason             string          `json:"reason"`
	AvailableFunctions []string        `json:"available_functions,omitempty"`
	ProvidedArguments  json.RawMessage `json:"provided_arguments,omitempty"`
	RawArguments       string          `json:"raw_arguments,omitempty"`
}

// Invoke runs the named tool with the raw JSON arguments produced by
// the model. The returned string is always valid JSON.
func (d *Dispatcher) Invoke(ctx context.Context, name, rawArgs string) string {
	t, ok := d.registry.byName[name]
	if !ok {
		return encodeEnvelope(dispatchError{
			Error:              fmt.Sprintf("Function '%s' not found", name),
			Reason:             models.ReasonUnknownTool,
			AvailableFunctions: d.registry.Names(),
		})
	}

	args := strings.TrimSpace(rawArgs)
	if args == "" {
		args = "{}"
	}
	if !json.Valid([]byte(args)) {
		return encodeEnvelope(dispatchError{
			Error:        fmt.Sprintf("Invalid JSON in arguments for function '%s'", name),
			Reason:       models.ReasonMalformedPayload,
			RawArguments: rawArgs,
		})
	}

	result, err := t.InvokableRun(ctx, args)
	if err != nil {
		logger.Log.Warnf("tool %s rejected arguments: %v", name, err)
		return encodeEnvelope(dispatchError{
			Error:             fmt.Sprintf("Invalid arguments for function '%s': %v", name, err),
			Reason:            models.ReasonInvalidArguments,
			ProvidedArguments: json.RawMessage(args),
		})
	}
	return result
}

func encodeEnvelope(env dispatchError) string {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Sprintf(`{"error":%q,"reason":%q}`, env.Error, env.Reason)
	}
	return string(data)
}
