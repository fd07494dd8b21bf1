package session

import "time"

// Default token lifetimes, matching the remote API's cookie max-ages.
const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 14 * 24 * time.Hour
)

// Tokens holds the two opaque credentials of one authenticated session. An
// absent credential is the empty string, never an error.
type Tokens struct {
	Access  string
	Refresh string
}

// Present reports whether both credentials are usable.
func (t Tokens) Present() bool {
	return t.Access != "" && t.Refresh != ""
}

// Store manages the credentials of the current session. Persist replaces both
// tokens together: a concurrent Read must never observe one token updated and
// the other stale.
type Store interface {
	Read() Tokens
	Persist(t Tokens, accessTTL, refreshTTL time.Duration)
	Clear()
}
