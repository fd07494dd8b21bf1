package automation

import (
	"fmt"

	"github.com/safeguardian/autopilot/internal/knowledge"
	"github.com/safeguardian/autopilot/pkg/base44"
)

const summaryPreviewLimit = 64

// GeneratedReply is a concrete reply payload plus its metadata.
type GeneratedReply struct {
	Content       string
	EntryID       string
	Confidence    float64
	Summary       string
	SuggestedTags []string
}

// Generator turns a matched playbook entry into a reply. Pure: no network
// calls, deterministic for the same inputs and knowledge base.
type Generator struct {
	base *knowledge.Base
}

// NewGenerator creates a Generator over the given knowledge base.
func NewGenerator(base *knowledge.Base) *Generator {
	return &Generator{base: base}
}

// Generate selects the best playbook entry for the customer's message and
// resolves its canned response verbatim.
func (g *Generator) Generate(conversation *base44.Conversation, lastUserMessage base44.Message) GeneratedReply {
	match := g.base.SelectBest(lastUserMessage.Content)

	entry, ok := g.base.Entry(match.EntryID)
	if !ok {
		entry = g.base.Fallback()
	}

	return GeneratedReply{
		Content:       entry.Response,
		EntryID:       entry.ID,
		Confidence:    match.Score,
		Summary:       buildSummary(conversation, entry.Response),
		SuggestedTags: entry.Tags,
	}
}

// buildSummary combines the customer participant's name with a truncated
// preview of the reply.
func buildSummary(conversation *base44.Conversation, reply string) string {
	name := "client"
	for _, participant := range conversation.Participants {
		if participant.Role == "customer" && participant.Name != "" {
			name = participant.Name
			break
		}
	}

	preview := []rune(reply)
	if len(preview) > summaryPreviewLimit {
		return fmt.Sprintf("%s • %s…", name, string(preview[:summaryPreviewLimit]))
	}
	return fmt.Sprintf("%s • %s", name, reply)
}
