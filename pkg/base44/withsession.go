package base44

import (
	"context"
	"time"

	apperrors "github.com/safeguardian/autopilot/pkg/app/errors"
	"github.com/safeguardian/autopilot/pkg/session"
)

// SessionClient pairs a Client with a session store and recovers expired
// authorizations with exactly one refresh-and-retry.
type SessionClient struct {
	api        *Client
	store      session.Store
	accessTTL  time.Duration
	refreshTTL time.Duration

	// refreshHook, when set, is invoked after every successful refresh.
	refreshHook func()
}

// NewSessionClient creates a SessionClient persisting refreshed tokens with
// the given lifetimes.
func NewSessionClient(api *Client, store session.Store, accessTTL, refreshTTL time.Duration) *SessionClient {
	return &SessionClient{
		api:        api,
		store:      store,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// OnRefresh registers a hook invoked after every successful token refresh.
func (sc *SessionClient) OnRefresh(hook func()) {
	sc.refreshHook = hook
}

// CallOptions controls one session-aware call.
type CallOptions struct {
	// AllowUnauthenticated runs the action with empty credentials instead of
	// failing when the store holds no session.
	AllowUnauthenticated bool
}

// Call runs action with the stored credentials. A 401-classified failure is
// recovered exactly once: refresh, persist the new pair, retry. Any other
// failure, or a second 401 after the refresh, propagates unmodified.
func Call[T any](ctx context.Context, sc *SessionClient, opts CallOptions, action func(tokens session.Tokens) (T, error)) (T, error) {
	var zero T

	tokens := sc.store.Read()
	if !tokens.Present() {
		if opts.AllowUnauthenticated {
			return action(session.Tokens{})
		}
		return zero, apperrors.AuthRequired("authentication required")
	}

	result, err := action(tokens)
	if err == nil || !apperrors.IsAuthExpired(err) {
		return result, err
	}

	refreshed, refreshErr := sc.api.Refresh(ctx, tokens.Refresh)
	if refreshErr != nil {
		return zero, refreshErr
	}

	tokens = session.Tokens{Access: refreshed.AccessToken, Refresh: refreshed.RefreshToken}
	sc.store.Persist(tokens, sc.accessTTL, sc.refreshTTL)
	if sc.refreshHook != nil {
		sc.refreshHook()
	}

	return action(tokens)
}

// WithSession is Call with authentication required.
func WithSession[T any](ctx context.Context, sc *SessionClient, action func(tokens session.Tokens) (T, error)) (T, error) {
	return Call(ctx, sc, CallOptions{}, action)
}

// Login authenticates and persists the resulting session.
func (sc *SessionClient) Login(ctx context.Context, email, password, turnstileToken string) (*User, error) {
	resp, err := sc.api.Login(ctx, email, password, turnstileToken)
	if err != nil {
		return nil, err
	}
	sc.store.Persist(session.Tokens{
		Access:  resp.AccessToken,
		Refresh: resp.RefreshToken,
	}, sc.accessTTL, sc.refreshTTL)
	return &resp.User, nil
}

// Logout discards the stored session.
func (sc *SessionClient) Logout() {
	sc.store.Clear()
}

// ListAgents is the session-aware form of Client.ListAgents.
func (sc *SessionClient) ListAgents(ctx context.Context) (*Paginated[Agent], error) {
	return WithSession(ctx, sc, func(tokens session.Tokens) (*Paginated[Agent], error) {
		return sc.api.ListAgents(ctx, tokens.Access)
	})
}

// ListConversations is the session-aware form of Client.ListConversations.
func (sc *SessionClient) ListConversations(ctx context.Context, agentID string, opts ListOptions) (*Paginated[Conversation], error) {
	return WithSession(ctx, sc, func(tokens session.Tokens) (*Paginated[Conversation], error) {
		return sc.api.ListConversations(ctx, tokens.Access, agentID, opts)
	})
}

// GetConversation is the session-aware form of Client.GetConversation.
func (sc *SessionClient) GetConversation(ctx context.Context, agentID, conversationID string) (*Conversation, error) {
	return WithSession(ctx, sc, func(tokens session.Tokens) (*Conversation, error) {
		return sc.api.GetConversation(ctx, tokens.Access, agentID, conversationID)
	})
}

// SendMessage is the session-aware form of Client.SendMessage.
func (sc *SessionClient) SendMessage(ctx context.Context, agentID, conversationID, role, content string) error {
	_, err := WithSession(ctx, sc, func(tokens session.Tokens) (struct{}, error) {
		return struct{}{}, sc.api.SendMessage(ctx, tokens.Access, agentID, conversationID, role, content)
	})
	return err
}
