// Package session provides shared session constants used by both
// the handler and middleware packages.
package session

const (
	// CookieName is the name of the cookie that stores the session id.
	CookieName = "goncalves_session"

	// CookiePath ensures the cookie is sent with all requests.
	CookiePath = "/"

	// CookieMaxAge sets the cookie expiration (24 hours = 86400 seconds).
	// This should match SESSION_DURATION in the server config.
	CookieMaxAge = 24 * 60 * 60
)
