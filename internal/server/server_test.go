package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safeguardian/autopilot/internal/automation"
	"github.com/safeguardian/autopilot/internal/knowledge"
	apperrors "github.com/safeguardian/autopilot/pkg/app/errors"
	"github.com/safeguardian/autopilot/pkg/base44"
	"github.com/safeguardian/autopilot/pkg/session"
)

// fakeRemote emulates the slice of the Base44 API the trigger surface needs.
type fakeRemote struct {
	mu            sync.Mutex
	conversations map[string]*base44.Conversation
	order         []string
}

func newTestServer(t *testing.T, conversations ...*base44.Conversation) (*Server, *session.MemoryStore) {
	t.Helper()

	remote := &fakeRemote{conversations: make(map[string]*base44.Conversation)}
	for _, conversation := range conversations {
		remote.conversations[conversation.ID] = conversation
		remote.order = append(remote.order, conversation.ID)
	}

	upstream := httptest.NewServer(remote)
	t.Cleanup(upstream.Close)

	store := session.NewMemoryStore()
	client := base44.NewSessionClient(base44.NewClient(upstream.URL, "test-app"), store, time.Hour, 24*time.Hour)

	base, err := knowledge.Default()
	require.NoError(t, err)
	runner := automation.NewRunner(client, automation.NewGenerator(base), logr.Discard())

	return New(":0", "support", client, runner, logr.Discard()), store
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api/apps/test-app")
	switch {
	case path == "/auth/login":
		json.NewEncoder(w).Encode(base44.LoginResponse{
			AccessToken:  "acc-1",
			RefreshToken: "ref-1",
			User:         base44.User{ID: "u1", Email: "ops@safeguardian.test"},
		})

	case path == "/agents":
		json.NewEncoder(w).Encode(base44.Paginated[base44.Agent]{
			Data: []base44.Agent{{ID: "a1", Slug: "support", Status: "active"}},
		})

	case strings.HasSuffix(path, "/conversations"):
		page := base44.Paginated[base44.Conversation]{}
		for _, id := range f.order {
			page.Data = append(page.Data, *f.conversations[id])
		}
		json.NewEncoder(w).Encode(page)

	case strings.HasSuffix(path, "/messages"):
		parts := strings.Split(path, "/")
		conversationID := parts[len(parts)-2]
		if conversation, ok := f.conversations[conversationID]; ok {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			conversation.Messages = append(conversation.Messages, base44.Message{
				ID:        "auto",
				Role:      body["role"],
				Content:   body["content"],
				CreatedAt: time.Now(),
			})
		}
		w.WriteHeader(http.StatusCreated)

	default:
		parts := strings.Split(path, "/")
		conversationID := parts[len(parts)-1]
		conversation, ok := f.conversations[conversationID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "conversation not found"})
			return
		}
		json.NewEncoder(w).Encode(conversation)
	}
}

func login(t *testing.T, handler http.Handler) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ops@safeguardian.test","password":"secret"}`))
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHandleLogin(t *testing.T) {
	srv, store := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ops@safeguardian.test","password":"secret"}`))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body struct {
		User base44.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u1", body.User.ID)
	assert.True(t, store.Read().Present(), "login must persist the session")
}

func TestHandleLogin_InvalidPayload(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":""}`))
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}

func TestHandleLogout(t *testing.T) {
	srv, store := newTestServer(t)
	login(t, srv.Handler())
	require.True(t, store.Read().Present())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, store.Read().Present())
}

func TestHandleAgents_Unauthenticated(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/agents", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "agents_fetch_failed", body["error"])
	assert.Equal(t, apperrors.ErrCodeAuthRequired, body["kind"])
}

func TestHandleAutomationRun_Sweep(t *testing.T) {
	srv, _ := newTestServer(t,
		&base44.Conversation{ID: "c1", Status: base44.StatusOpen, Messages: []base44.Message{
			{ID: "m1", Role: "user", Content: "bonjour", CreatedAt: time.Now()},
		}},
		&base44.Conversation{ID: "c2", Status: base44.StatusOpen},
	)
	login(t, srv.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/automation/run", strings.NewReader(`{"agentId":"a1"}`))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Results []automation.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 2)
	assert.True(t, body.Results[0].ReplySent)
	assert.Equal(t, "welcome", body.Results[0].EntryID)
	assert.False(t, body.Results[1].ReplySent)
}

func TestHandleAutomationRun_SingleConversation(t *testing.T) {
	srv, _ := newTestServer(t,
		&base44.Conversation{ID: "c1", Status: base44.StatusOpen, Messages: []base44.Message{
			{ID: "m1", Role: "user", Content: "probleme d'intégration api", CreatedAt: time.Now()},
		}},
	)
	login(t, srv.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/automation/run",
		strings.NewReader(`{"agentId":"a1","conversationId":"c1"}`))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Results []automation.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "integration", body.Results[0].EntryID)
}

func TestHandleAutomationRun_DefaultsAgent(t *testing.T) {
	srv, _ := newTestServer(t)
	login(t, srv.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/automation/run", strings.NewReader(`{}`))
	srv.Handler().ServeHTTP(rec, req)

	// Empty sweep against the default agent still succeeds.
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHandleGetConversation(t *testing.T) {
	srv, _ := newTestServer(t,
		&base44.Conversation{ID: "c1", AgentID: "a1", Status: base44.StatusOpen},
	)
	login(t, srv.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/conversations/c1?agentId=a1", nil)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var conversation base44.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conversation))
	assert.Equal(t, "c1", conversation.ID)
}

func TestHandleGetConversation_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	login(t, srv.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/conversations/missing?agentId=a1", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "conversation not found")
}

func TestHandleSendMessage(t *testing.T) {
	srv, _ := newTestServer(t,
		&base44.Conversation{ID: "c1", Status: base44.StatusOpen},
	)
	login(t, srv.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/c1/messages",
		strings.NewReader(`{"agentId":"a1","content":"On s'en occupe."}`))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "success")
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
