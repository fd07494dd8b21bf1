package automation

import (
	"context"
	"sort"

	"github.com/go-logr/logr"

	"github.com/safeguardian/autopilot/internal/metrics"
	apperrors "github.com/safeguardian/autopilot/pkg/app/errors"
	"github.com/safeguardian/autopilot/pkg/base44"
)

// DefaultPageSize bounds how many open conversations one sweep fetches.
const DefaultPageSize = 50

// Decision reasons for conversations left without an automatic reply.
const (
	ReasonEmptyConversation  = "empty conversation"
	ReasonNoTrailingCustomer = "no eligible trailing customer message"
	ReasonAlreadyReplied     = "a reply already exists after the customer's message"
)

// Result is the outcome of one automation decision. Reason is set iff no
// reply was sent; EntryID and Confidence iff one was.
type Result struct {
	ConversationID string  `json:"conversation_id"`
	ReplySent      bool    `json:"reply_sent"`
	Reason         string  `json:"reason,omitempty"`
	EntryID        string  `json:"entry_id,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
}

// API is the slice of the remote surface the runner consumes. Satisfied by
// base44.SessionClient.
type API interface {
	ListConversations(ctx context.Context, agentID string, opts base44.ListOptions) (*base44.Paginated[base44.Conversation], error)
	GetConversation(ctx context.Context, agentID, conversationID string) (*base44.Conversation, error)
	SendMessage(ctx context.Context, agentID, conversationID, role, content string) error
}

// Runner evaluates conversations and issues automatic replies.
type Runner struct {
	api       API
	generator *Generator
	log       logr.Logger
}

// NewRunner creates a Runner.
func NewRunner(api API, generator *Generator, log logr.Logger) *Runner {
	return &Runner{
		api:       api,
		generator: generator,
		log:       log.WithName("automation"),
	}
}

// RunOne evaluates a single conversation, re-fetched fresh, and sends at most
// one reply. Transient send failures propagate; there is no retry here.
func (r *Runner) RunOne(ctx context.Context, agentID, conversationID string) (Result, error) {
	if agentID == "" {
		return Result{}, apperrors.InvalidInput("agent id is required")
	}
	if conversationID == "" {
		return Result{}, apperrors.InvalidInput("conversation id is required")
	}

	conversation, err := r.api.GetConversation(ctx, agentID, conversationID)
	if err != nil {
		return Result{}, err
	}
	return r.decide(ctx, agentID, conversation)
}

func (r *Runner) decide(ctx context.Context, agentID string, conversation *base44.Conversation) (Result, error) {
	log := r.log.WithValues("agent_id", agentID, "conversation_id", conversation.ID)

	if len(conversation.Messages) == 0 {
		metrics.RepliesSkipped.WithLabelValues("empty").Inc()
		return notSent(conversation.ID, ReasonEmptyConversation), nil
	}

	candidate, reason := lastCustomerMessage(conversation)
	if candidate == nil {
		metrics.RepliesSkipped.WithLabelValues("assistant_has_floor").Inc()
		return notSent(conversation.ID, reason), nil
	}

	// Idempotency guard: compare against the chronologically last message in
	// raw stored order. If anything newer than the candidate exists, a reply
	// has already landed and the sweep must not send a second one.
	lastStored := conversation.Messages[len(conversation.Messages)-1]
	if lastStored.CreatedAt.After(candidate.CreatedAt) {
		metrics.RepliesSkipped.WithLabelValues("already_replied").Inc()
		return notSent(conversation.ID, ReasonAlreadyReplied), nil
	}

	reply := r.generator.Generate(conversation, *candidate)
	if err := r.api.SendMessage(ctx, agentID, conversation.ID, "assistant", reply.Content); err != nil {
		return Result{}, err
	}

	metrics.RepliesSent.Inc()
	log.Info("automatic reply sent",
		"entry_id", reply.EntryID,
		"confidence", reply.Confidence,
		"summary", reply.Summary,
	)

	return Result{
		ConversationID: conversation.ID,
		ReplySent:      true,
		EntryID:        reply.EntryID,
		Confidence:     reply.Confidence,
	}, nil
}

// lastCustomerMessage walks a created_at-ascending copy of the history from
// the end backward. The most recent customer message wins. Hitting an
// assistant message first means the assistant already has the floor: that is
// an existing reply when a customer message precedes it, and a conversation
// with no eligible customer message otherwise.
func lastCustomerMessage(conversation *base44.Conversation) (*base44.Message, string) {
	ordered := make([]base44.Message, len(conversation.Messages))
	copy(ordered, conversation.Messages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	for i := len(ordered) - 1; i >= 0; i-- {
		switch NormalizeRole(ordered[i]) {
		case RoleCustomer:
			return &ordered[i], ""
		case RoleAssistant:
			for j := i - 1; j >= 0; j-- {
				if NormalizeRole(ordered[j]) == RoleCustomer {
					return nil, ReasonAlreadyReplied
				}
			}
			return nil, ReasonNoTrailingCustomer
		}
	}
	return nil, ReasonNoTrailingCustomer
}

// Sweep runs the decision over every open conversation of the agent,
// sequentially. A failure on one conversation is downgraded to a NOT_SENT
// result so the batch continues; a failure fetching the list fails the call.
func (r *Runner) Sweep(ctx context.Context, agentID string) ([]Result, error) {
	if agentID == "" {
		return nil, apperrors.InvalidInput("agent id is required")
	}

	log := r.log.WithValues("agent_id", agentID)
	log.Info("starting automation sweep")

	page, err := r.api.ListConversations(ctx, agentID, base44.ListOptions{
		Status: base44.StatusOpen,
		Limit:  DefaultPageSize,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(page.Data))
	for _, conversation := range page.Data {
		result, err := r.RunOne(ctx, agentID, conversation.ID)
		if err != nil {
			log.Error(err, "conversation processing failed", "conversation_id", conversation.ID)
			metrics.RepliesSkipped.WithLabelValues("error").Inc()
			result = notSent(conversation.ID, apperrors.AsAppError(err).Message)
		}
		results = append(results, result)
	}

	metrics.SweepsTotal.Inc()
	log.Info("automation sweep finished", "conversations", len(results), "sent", countSent(results))
	return results, nil
}

func notSent(conversationID, reason string) Result {
	return Result{ConversationID: conversationID, ReplySent: false, Reason: reason}
}

func countSent(results []Result) int {
	sent := 0
	for _, result := range results {
		if result.ReplySent {
			sent++
		}
	}
	return sent
}
