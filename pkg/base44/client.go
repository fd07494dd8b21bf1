package base44

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/safeguardian/autopilot/pkg/app/errors"
)

const defaultTimeout = 30 * time.Second

// Client issues requests against one Base44 application's API root. All
// authenticated calls carry a bearer credential; the login and refresh
// endpoints are the only ones allowed to skip it.
type Client struct {
	apiRoot    string
	httpClient *http.Client
}

// NewClient creates a Client for the application identified by appID hosted
// at serverURL.
func NewClient(serverURL, appID string) *Client {
	return &Client{
		apiRoot:    fmt.Sprintf("%s/api/apps/%s", strings.TrimRight(serverURL, "/"), appID),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// requestOptions controls how a single request is built.
type requestOptions struct {
	accessToken string
	skipAuth    bool
}

// do builds and sends one request and decodes a 2xx response into out.
// Without skipAuth an empty access token fails before any network call.
// A non-2xx response becomes an AppError carrying the status and the parsed
// body, with a 401 classified as an expired authorization.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, opts requestOptions) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperrors.New(apperrors.ErrCodeInvalidInput, http.StatusBadRequest, "failed to marshal request body", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiRoot+path, reader)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeInvalidInput, http.StatusBadRequest, "failed to build request", err)
	}

	if !opts.skipAuth {
		if opts.accessToken == "" {
			return apperrors.AuthRequired("authentication required")
		}
		req.Header.Set("Authorization", "Bearer "+opts.accessToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeRemoteFailure, http.StatusBadGateway, "failed to send request", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeRemoteFailure, http.StatusBadGateway, "failed to read response", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return remoteError(resp.StatusCode, resp.Status, payload)
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.New(apperrors.ErrCodeRemoteFailure, http.StatusBadGateway, "failed to decode response", err)
	}
	return nil
}

// remoteError extracts a human-readable message from an error payload,
// preferring the API's own "message" field.
func remoteError(status int, statusText string, payload []byte) error {
	detail := any(string(payload))
	message := statusText

	var parsed map[string]any
	if json.Unmarshal(payload, &parsed) == nil {
		detail = parsed
		if m, ok := parsed["message"].(string); ok && m != "" {
			message = m
		}
	}
	if message == "" {
		message = "remote API error"
	}
	return apperrors.Remote(status, message, detail)
}

// Login authenticates against the remote API. Unauthenticated by contract.
func (c *Client) Login(ctx context.Context, email, password, turnstileToken string) (*LoginResponse, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	if turnstileToken != "" {
		body["turnstile_token"] = turnstileToken
	}

	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp, requestOptions{skipAuth: true}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new token pair. Unauthenticated by
// contract.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	}, &resp, requestOptions{skipAuth: true})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOptions narrows a conversation listing.
type ListOptions struct {
	Status string
	Query  string
	Limit  int
}

func (o ListOptions) encode() string {
	values := url.Values{}
	if o.Status != "" {
		values.Set("status", o.Status)
	}
	if o.Query != "" {
		values.Set("q", o.Query)
	}
	if o.Limit > 0 {
		values.Set("limit", strconv.Itoa(o.Limit))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// ListAgents returns the application's agents.
func (c *Client) ListAgents(ctx context.Context, accessToken string) (*Paginated[Agent], error) {
	var resp Paginated[Agent]
	if err := c.do(ctx, http.MethodGet, "/agents", nil, &resp, requestOptions{accessToken: accessToken}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListConversations returns the agent's conversations matching opts.
func (c *Client) ListConversations(ctx context.Context, accessToken, agentID string, opts ListOptions) (*Paginated[Conversation], error) {
	if agentID == "" {
		return nil, apperrors.InvalidInput("agent id is required")
	}

	path := fmt.Sprintf("/agents/%s/conversations%s", url.PathEscape(agentID), opts.encode())
	var resp Paginated[Conversation]
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, requestOptions{accessToken: accessToken}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetConversation returns one conversation including its messages.
func (c *Client) GetConversation(ctx context.Context, accessToken, agentID, conversationID string) (*Conversation, error) {
	if agentID == "" {
		return nil, apperrors.InvalidInput("agent id is required")
	}
	if conversationID == "" {
		return nil, apperrors.InvalidInput("conversation id is required")
	}

	path := fmt.Sprintf("/agents/%s/conversations/%s", url.PathEscape(agentID), url.PathEscape(conversationID))
	var resp Conversation
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, requestOptions{accessToken: accessToken}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendMessage posts a message into a conversation.
func (c *Client) SendMessage(ctx context.Context, accessToken, agentID, conversationID, role, content string) error {
	if agentID == "" {
		return apperrors.InvalidInput("agent id is required")
	}
	if conversationID == "" {
		return apperrors.InvalidInput("conversation id is required")
	}

	path := fmt.Sprintf("/agents/%s/conversations/%s/messages", url.PathEscape(agentID), url.PathEscape(conversationID))
	return c.do(ctx, http.MethodPost, path, map[string]string{
		"role":    role,
		"content": content,
	}, nil, requestOptions{accessToken: accessToken})
}
