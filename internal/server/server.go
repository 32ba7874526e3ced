// Package server exposes the chat orchestrator over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/dyike/ScreenerGo/internal/config"
	"github.com/dyike/ScreenerGo/internal/logger"
	"github.com/dyike/ScreenerGo/internal/models"
)

// ChatService answers user turns. The orchestrator implements it; the
// tests substitute a scripted fake.
type ChatService interface {
	Chat(ctx context.Context, req models.ChatRequest) models.ChatResult
}

// Server manages the HTTP listener and routes.
type Server struct {
	chat      ChatService
	toolNames []string
	router    *http.ServeMux
	server    *http.Server
}

// New builds the server around the chat service and the list of
// registered tool names.
func New(cfg *config.Config, chat ChatService, toolNames []string) *Server {
	names := make([]string, len(toolNames))
	copy(names, toolNames)
	sort.Strings(names)

	s := &Server{
		chat:      chat,
		toolNames: names,
	}
	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
		// Model turns can chain several tool calls; keep writes generous.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/tools", s.handleTools)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	logger.Log.Infof("HTTP server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server, letting in-flight exchanges finish.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info("shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Handler returns the route handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	result := s.chat.Chat(r.Context(), req)
	writeJSON(w, http.StatusOK, models.ChatResponse{
		Answer: result.Answer,
		Trace:  result.Trace,
	})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tools": s.toolNames})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Warnf("response encode failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
