package automation

import "github.com/safeguardian/autopilot/pkg/base44"

// Role is the closed set of sender roles the engine reasons about. Remote
// records carry either a modern "role" or a legacy "sender_type" string; both
// are normalized here before any decision logic runs.
type Role int

const (
	RoleUnknown Role = iota
	RoleCustomer
	RoleAssistant
	RoleSystem
	RoleTool
)

// NormalizeRole maps a message's role, falling back to its legacy
// sender_type, onto the closed Role set.
func NormalizeRole(msg base44.Message) Role {
	value := msg.Role
	if value == "" {
		value = msg.SenderType
	}

	switch value {
	case "user", "customer", "external_user":
		return RoleCustomer
	case "assistant", "agent":
		return RoleAssistant
	case "system":
		return RoleSystem
	case "tool":
		return RoleTool
	default:
		return RoleUnknown
	}
}
