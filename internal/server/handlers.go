package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/safeguardian/autopilot/internal/automation"
	apperrors "github.com/safeguardian/autopilot/pkg/app/errors"
	"github.com/safeguardian/autopilot/pkg/base44"
)

const listPageSize = 50

type loginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	TurnstileToken string `json:"turnstileToken,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		respondValidation(w, "invalid_request", "email and password are required")
		return
	}

	user, err := s.client.Login(r.Context(), req.Email, req.Password, req.TurnstileToken)
	if err != nil {
		respondError(w, "login_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.client.Logout()
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type automationRunRequest struct {
	AgentID        string `json:"agentId"`
	ConversationID string `json:"conversationId,omitempty"`
}

func (s *Server) handleAutomationRun(w http.ResponseWriter, r *http.Request) {
	var req automationRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "invalid_payload", "invalid automation run payload")
		return
	}
	agentID := req.AgentID
	if agentID == "" {
		agentID = s.defaultAgent
	}

	var results []automation.Result
	var err error
	if req.ConversationID != "" {
		var result automation.Result
		result, err = s.runner.RunOne(r.Context(), agentID, req.ConversationID)
		results = []automation.Result{result}
	} else {
		results, err = s.runner.Sweep(r.Context(), agentID)
	}
	if err != nil {
		respondError(w, "automation_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.client.ListAgents(r.Context())
	if err != nil {
		respondError(w, "agents_fetch_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, agents)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	agentID := query.Get("agentId")
	if agentID == "" {
		agentID = s.defaultAgent
	}

	conversations, err := s.client.ListConversations(r.Context(), agentID, base44.ListOptions{
		Status: query.Get("status"),
		Query:  query.Get("search"),
		Limit:  listPageSize,
	})
	if err != nil {
		respondError(w, "conversations_fetch_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, conversations)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("agentId")
	if agentID == "" {
		agentID = s.defaultAgent
	}

	conversation, err := s.client.GetConversation(r.Context(), agentID, mux.Vars(r)["conversationId"])
	if err != nil {
		respondError(w, "conversation_fetch_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, conversation)
}

type sendMessageRequest struct {
	AgentID string `json:"agentId"`
	Content string `json:"content"`
	Role    string `json:"role,omitempty"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		respondValidation(w, "invalid_payload", "content is required")
		return
	}
	agentID := req.AgentID
	if agentID == "" {
		agentID = s.defaultAgent
	}
	role := req.Role
	if role == "" {
		role = "assistant"
	}

	err := s.client.SendMessage(r.Context(), agentID, mux.Vars(r)["conversationId"], role, req.Content)
	if err != nil {
		respondError(w, "send_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload) //nolint:errcheck // client gone is not recoverable
}

// respondError maps an engine failure onto the surface's error envelope,
// preserving the taxonomy's status and detail.
func respondError(w http.ResponseWriter, code string, err error) {
	appErr := apperrors.AsAppError(err)
	respondJSON(w, appErr.Status, map[string]any{
		"error":   code,
		"kind":    appErr.Code,
		"message": appErr.Message,
		"detail":  appErr.Detail,
	})
}

func respondValidation(w http.ResponseWriter, code, message string) {
	respondJSON(w, http.StatusBadRequest, map[string]any{
		"error":   code,
		"kind":    apperrors.ErrCodeInvalidInput,
		"message": message,
	})
}
