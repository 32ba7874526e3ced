package models

import "encoding/json"

// Machine-readable reasons carried by error envelopes and trace events.
const (
	ReasonDataUnavailable      = "data_unavailable"
	ReasonNotFound             = "not_found"
	ReasonInvalidArguments     = "invalid_arguments"
	ReasonMalformedPayload     = "malformed_payload"
	ReasonUnknownTool          = "unknown_tool"
	ReasonUpstreamModelFailure = "upstream_model_failure"
	ReasonStepBudgetExceeded   = "step_budget_exceeded"
	ReasonInternal             = "internal_error"
)

// Trace event types emitted by the orchestrator, in order of occurrence.
const (
	TraceModelTurn  = "model_turn"
	TraceToolCall   = "tool_call"
	TraceToolResult = "tool_result"
	TraceError      = "error"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	MaxSteps  int    `json:"max_steps,omitempty"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Answer string       `json:"answer"`
	Trace  []TraceEvent `json:"trace"`
}

// TraceEvent is one orchestrator-visible event. The full sequence is
// returned alongside the answer so a failed or surprising exchange can
// be diagnosed without server logs.
type TraceEvent struct {
	Type      string          `json:"type"`
	Step      int             `json:"step"`
	Content   string          `json:"content,omitempty"`
	Tool      string          `json:"tool,omitempty"`
	Arguments string          `json:"arguments,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}

// ChatResult is the orchestrator's outcome for one user turn.
type ChatResult struct {
	Answer string       `json:"answer"`
	Trace  []TraceEvent `json:"trace"`
	Reason string       `json:"reason,omitempty"`
}
