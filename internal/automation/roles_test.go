package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/safeguardian/autopilot/pkg/base44"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		name string
		msg  base44.Message
		want Role
	}{
		{"modern user", base44.Message{Role: "user"}, RoleCustomer},
		{"legacy customer", base44.Message{SenderType: "customer"}, RoleCustomer},
		{"legacy external user", base44.Message{SenderType: "external_user"}, RoleCustomer},
		{"assistant", base44.Message{Role: "assistant"}, RoleAssistant},
		{"legacy agent", base44.Message{SenderType: "agent"}, RoleAssistant},
		{"system", base44.Message{Role: "system"}, RoleSystem},
		{"tool", base44.Message{Role: "tool"}, RoleTool},
		{"empty", base44.Message{}, RoleUnknown},
		{"unrecognized", base44.Message{Role: "bot"}, RoleUnknown},
		{"role wins over sender_type", base44.Message{Role: "assistant", SenderType: "customer"}, RoleAssistant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRole(tt.msg))
		})
	}
}
