package automation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safeguardian/autopilot/internal/knowledge"
	"github.com/safeguardian/autopilot/pkg/base44"
)

func newGenerator(t *testing.T) *Generator {
	t.Helper()
	base, err := knowledge.Default()
	require.NoError(t, err)
	return NewGenerator(base)
}

func TestGenerate_MatchedEntry(t *testing.T) {
	gen := newGenerator(t)
	conversation := &base44.Conversation{ID: "c1"}

	reply := gen.Generate(conversation, base44.Message{Content: "bonjour"})

	assert.Equal(t, "welcome", reply.EntryID)
	assert.Greater(t, reply.Confidence, knowledge.ConfidenceFloor)
	assert.Contains(t, reply.Content, "SafeGuardian")
	assert.Equal(t, []string{"onboarding", "general"}, reply.SuggestedTags)
}

func TestGenerate_TemplateVerbatim(t *testing.T) {
	gen := newGenerator(t)
	base, err := knowledge.Default()
	require.NoError(t, err)
	entry, ok := base.Entry("reset-password")
	require.True(t, ok)

	reply := gen.Generate(&base44.Conversation{}, base44.Message{Content: "j'ai oublié mon mot de passe"})
	assert.Equal(t, "reset-password", reply.EntryID)
	assert.Equal(t, entry.Response, reply.Content)
}

func TestGenerate_FallbackOnNoMatch(t *testing.T) {
	gen := newGenerator(t)

	reply := gen.Generate(&base44.Conversation{}, base44.Message{Content: "xyzzy"})
	assert.Equal(t, "fallback", reply.EntryID)
	assert.InDelta(t, knowledge.ConfidenceFloor, reply.Confidence, 1e-9)
}

func TestGenerate_SummaryUsesCustomerName(t *testing.T) {
	gen := newGenerator(t)
	conversation := &base44.Conversation{
		Participants: []base44.Participant{
			{ID: "p1", Name: "Agent Smith", Role: "agent"},
			{ID: "p2", Name: "Marie Dupont", Role: "customer"},
		},
	}

	reply := gen.Generate(conversation, base44.Message{Content: "bonjour"})
	assert.True(t, strings.HasPrefix(reply.Summary, "Marie Dupont • "))
}

func TestGenerate_SummaryDefaultsToClient(t *testing.T) {
	gen := newGenerator(t)

	reply := gen.Generate(&base44.Conversation{}, base44.Message{Content: "bonjour"})
	assert.True(t, strings.HasPrefix(reply.Summary, "client • "))
}

func TestGenerate_SummaryTruncatesPreview(t *testing.T) {
	gen := newGenerator(t)

	reply := gen.Generate(&base44.Conversation{}, base44.Message{Content: "incident urgent"})
	require.Greater(t, len([]rune(reply.Content)), summaryPreviewLimit)

	assert.True(t, strings.HasSuffix(reply.Summary, "…"))
	preview := strings.TrimPrefix(reply.Summary, "client • ")
	assert.Len(t, []rune(strings.TrimSuffix(preview, "…")), summaryPreviewLimit)
}

func TestGenerate_Deterministic(t *testing.T) {
	gen := newGenerator(t)
	conversation := &base44.Conversation{ID: "c1"}
	message := base44.Message{Content: "probleme de facturation"}

	first := gen.Generate(conversation, message)
	second := gen.Generate(conversation, message)
	assert.Equal(t, first, second)
}
