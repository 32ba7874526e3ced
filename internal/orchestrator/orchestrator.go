// Package orchestrator runs the bounded conversation loop between the
// chat model and the screening tools.
package orchestrator

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/ScreenerGo/internal/config"
	"github.com/dyike/ScreenerGo/internal/logger"
	"github.com/dyike/ScreenerGo/internal/models"
	"github.com/dyike/ScreenerGo/internal/tools"
)

const systemPrompt = `You are a helpful stock recommendation assistant. You have access to a comprehensive database of stocks with financial metrics, ratings, and performance data.

Your capabilities include:
- Finding top-rated stocks (stars range 0-4)
- Filtering stocks by industry or sector
- Providing detailed stock analysis
- Comparing multiple stocks
- Advanced stock screening with multiple criteria
- Industry overviews and market insights

Available data includes:
- Star ratings (0-4 scale)
- Global evaluation (very negative to very positive)
- Financial metrics (P/E ratio, ROE, market cap, etc.)
- Performance data (YTD, 4-week performance)
- Valuation ratings (undervalued, overvalued, etc.)
- Industry and sector classifications
- Dividend information

When helping users:
1. Use function calls to retrieve specific stock data
2. Provide clear, actionable recommendations
3. Explain the reasoning behind recommendations
4. Consider user's risk tolerance and investment goals
5. Be educational - explain financial terms when needed
6. Always mention that this is for informational purposes only

Be conversational and helpful, but always remind users to do their own research and consult financial advisors for investment decisions.`

const errorFallback = "I'm sorry, I encountered an error while processing your request. Please try again."

const budgetFallback = "I'm sorry, I couldn't finish answering within the allowed number of reasoning steps. Please try a more specific question."

const defaultSessionID = "default"

// Orchestrator drives tool-augmented exchanges and keeps per-session
// conversation history.
type Orchestrator struct {
	model      model.ToolCallingChatModel
	dispatcher *tools.Dispatcher

	maxSteps      int
	historyWindow int
	modelTimeout  time.Duration

	mu       sync.Mutex
	sessions map[string][]*schema.Message
}

// New binds the registry's tools to the chat model and returns the
// ready orchestrator.
func New(chatModel model.ToolCallingChatModel, registry *tools.Registry, cfg *config.Config) (*Orchestrator, error) {
	bound, err := chatModel.WithTools(registry.Specs())
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		model:         bound,
		dispatcher:    tools.NewDispatcher(registry),
		maxSteps:      cfg.MaxSteps,
		historyWindow: cfg.HistoryWindow,
		modelTimeout:  time.Duration(cfg.ModelTimeoutSecs) * time.Second,
		sessions:      make(map[string][]*schema.Message),
	}, nil
}

// Chat answers one user turn. The exchange is bounded: after maxSteps
// model turns without a final answer the orchestrator gives up with a
// step_budget_exceeded result. On success exactly the user turn and
// the final answer are appended to the session history; on failure
// only the user turn is recorded, so a retry sees what was asked.
func (o *Orchestrator) Chat(ctx context.Context, req models.ChatRequest) models.ChatResult {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}
	maxSteps := o.maxSteps
	if req.MaxSteps > 0 {
		maxSteps = req.MaxSteps
	}

	msgs := []*schema.Message{schema.SystemMessage(systemPrompt)}
	msgs = append(msgs, o.trailingHistory(sessionID)...)
	msgs = append(msgs, schema.UserMessage(req.Message))

	var trace []models.TraceEvent

	for step := 1; step <= maxSteps; step++ {
		resp, err := o.generate(ctx, msgs)
		if err != nil {
			logger.Log.Errorf("model turn %d failed: %v", step, err)
			trace = append(trace, models.TraceEvent{
				Type:    models.TraceError,
				Step:    step,
				Content: err.Error(),
				Reason:  models.ReasonUpstreamModelFailure,
			})
			o.recordUserTurn(sessionID, req.Message)
			return models.ChatResult{
				Answer: errorFallback,
				Trace:  trace,
				Reason: models.ReasonUpstreamModelFailure,
			}
		}

		trace = append(trace, models.TraceEvent{
			Type:    models.TraceModelTurn,
			Step:    step,
			Content: resp.Content,
		})

		if len(resp.ToolCalls) == 0 {
			o.recordExchange(sessionID, req.Message, resp.Content)
			return models.ChatResult{Answer: resp.Content, Trace: trace}
		}

		msgs = append(msgs, resp)
		for _, tc := range resp.ToolCalls {
			result := o.dispatcher.Invoke(ctx, tc.Function.Name, tc.Function.Arguments)
			trace = append(trace,
				models.TraceEvent{
					Type:      models.TraceToolCall,
					Step:      step,
					Tool:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
				models.TraceEvent{
					Type:   models.TraceToolResult,
					Step:   step,
					Tool:   tc.Function.Name,
					Result: json.RawMessage(result),
				},
			)
			msgs = append(msgs, schema.ToolMessage(result, tc.ID))
		}
	}

	logger.Log.Warnf("session %s exhausted %d steps without a final answer", sessionID, maxSteps)
	trace = append(trace, models.TraceEvent{
		Type:   models.TraceError,
		Step:   maxSteps,
		Reason: models.ReasonStepBudgetExceeded,
	})
	o.recordUserTurn(sessionID, req.Message)
	return models.ChatResult{
		Answer: budgetFallback,
		Trace:  trace,
		Reason: models.ReasonStepBudgetExceeded,
	}
}

func (o *Orchestrator) generate(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
	genCtx := ctx
	if o.modelTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, o.modelTimeout)
		defer cancel()
	}
	return o.model.Generate(genCtx, msgs)
}

// History returns a copy of the session's recorded turns.
func (o *Orchestrator) History(sessionID string) []*schema.Message {
	if sessionID == "" {
		sessionID = defaultSessionID
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	history := o.sessions[sessionID]
	out := make([]*schema.Message, len(history))
	copy(out, history)
	return out
}

// ClearSession drops the session's history.
func (o *Orchestrator) ClearSession(sessionID string) {
	if sessionID == "" {
		sessionID = defaultSessionID
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.sessions, sessionID)
}

func (o *Orchestrator) trailingHistory(sessionID string) []*schema.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	history := o.sessions[sessionID]
	if len(history) > o.historyWindow {
		history = history[len(history)-o.historyWindow:]
	}
	out := make([]*schema.Message, len(history))
	copy(out, history)
	return out
}

func (o *Orchestrator) recordExchange(sessionID, userText, assistantText string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sessions[sessionID] = append(o.sessions[sessionID],
		schema.UserMessage(userText),
		schema.AssistantMessage(assistantText, nil),
	)
}

func (o *Orchestrator) recordUserTurn(sessionID, userText string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sessions[sessionID] = append(o.sessions[sessionID], schema.UserMessage(userText))
}
