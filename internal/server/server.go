package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/safeguardian/autopilot/internal/automation"
	"github.com/safeguardian/autopilot/pkg/base44"
)

// Server exposes the engine's trigger surface over HTTP: authentication,
// automation runs and conversation browsing for the dashboard.
type Server struct {
	httpServer   *http.Server
	router       *mux.Router
	client       *base44.SessionClient
	runner       *automation.Runner
	defaultAgent string
	log          logr.Logger
}

// New creates a Server listening on addr.
func New(addr, defaultAgent string, client *base44.SessionClient, runner *automation.Runner, log logr.Logger) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		client:       client,
		runner:       runner,
		defaultAgent: defaultAgent,
		log:          log.WithName("server"),
	}
	s.routes()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.instrument)

	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/automation/run", s.handleAutomationRun).Methods(http.MethodPost)
	api.HandleFunc("/agents", s.handleListAgents).Methods(http.MethodGet)
	api.HandleFunc("/conversations", s.handleListConversations).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{conversationId}", s.handleGetConversation).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{conversationId}/messages", s.handleSendMessage).Methods(http.MethodPost)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info("listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
