// Package llm builds the tool-calling chat model from configuration.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/dyike/ScreenerGo/internal/config"
)

// NewChatModel constructs the configured provider's chat model. The
// returned model is not yet bound to any tools.
func NewChatModel(ctx context.Context, cfg *config.Config) (model.ToolCallingChatModel, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %s", cfg.LLMProvider)
	}

	switch cfg.LLMProvider {
	case "openai":
		maxTokens := cfg.MaxTokens
		modelCfg := &openai.ChatModelConfig{
			APIKey:    apiKey,
			Model:     cfg.Model,
			MaxTokens: &maxTokens,
		}
		if cfg.BackendURL != "" {
			modelCfg.BaseURL = cfg.BackendURL
		}
		return openai.NewChatModel(ctx, modelCfg)
	case "deepseek":
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    apiKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLMProvider)
	}
}
