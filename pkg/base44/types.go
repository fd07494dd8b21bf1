package base44

import "time"

// User represents an authenticated dashboard user.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Agent represents a configured automation persona bound to one or more
// channels.
type Agent struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Status      string         `json:"status"`
	Description string         `json:"description,omitempty"`
	Channels    []AgentChannel `json:"channels,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

// AgentChannel represents one communication channel of an agent.
type AgentChannel struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

// Participant represents one party of a conversation.
type Participant struct {
	ID       string         `json:"id"`
	Name     string         `json:"name,omitempty"`
	Email    string         `json:"email,omitempty"`
	Phone    string         `json:"phone,omitempty"`
	Role     string         `json:"role,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Message represents one immutable message of a conversation. Role is the
// modern field; SenderType carries the legacy value on older records.
type Message struct {
	ID         string         `json:"id"`
	Role       string         `json:"role,omitempty"`
	SenderID   string         `json:"sender_id,omitempty"`
	SenderType string         `json:"sender_type,omitempty"`
	SenderName string         `json:"sender_name,omitempty"`
	Content    string         `json:"content"`
	CreatedAt  time.Time      `json:"created_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Conversation represents an ordered thread of messages between a customer
// and an agent. Owned by the remote API; the engine only reads it.
type Conversation struct {
	ID            string         `json:"id"`
	AgentID       string         `json:"agent_id"`
	Subject       string         `json:"subject,omitempty"`
	Status        string         `json:"status"`
	Tags          []string       `json:"tags,omitempty"`
	Priority      string         `json:"priority,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	LastMessageAt *time.Time     `json:"last_message_at,omitempty"`
	Participants  []Participant  `json:"participants,omitempty"`
	Messages      []Message      `json:"messages,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Conversation statuses used by the engine.
const (
	StatusOpen = "open"
)

// LoginResponse represents the payload of the login and refresh endpoints.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Paginated wraps a paginated list response.
type Paginated[T any] struct {
	Data     []T  `json:"data"`
	Total    int  `json:"total,omitempty"`
	Page     int  `json:"page,omitempty"`
	NextPage *int `json:"next_page,omitempty"`
	PrevPage *int `json:"prev_page,omitempty"`
}
