package domain

import (
	"time"
)

// Session is the server-side record behind one browser session.
//
// It carries the backend access token obtained at login and the identifier
// of the last import batch performed during this session. The token's
// presence is the whole authentication state: the client never tracks
// expiry, an invalid token is only discovered when the backend rejects a
// request.
//
// Exactly one writer exists per field: the session service replaces the
// record wholesale on login/logout, the import workflow is the only writer
// of LastBatchID.
type Session struct {
	ID          string // random id stored in the browser cookie
	APIToken    string // backend access token, opaque
	LastBatchID string // batch handle of the last successful import, "" if none
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// IsExpired reports whether the local session record has outlived its
// configured duration. This is about the cookie-addressed record, not the
// backend token, whose validity is unknown to the client.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Authenticated reports whether the session carries a backend token.
// A non-empty token means authenticated; nothing else is checked.
func (s *Session) Authenticated() bool {
	return s != nil && s.APIToken != ""
}
