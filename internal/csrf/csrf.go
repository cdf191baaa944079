// Package csrf protects the dashboard's forms with the double-submit
// cookie pattern: a random token lives in a cookie and every POST must
// echo it back in a hidden form field. Cross-origin pages cannot read
// the cookie, so they cannot forge the field.
package csrf

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
)

const (
	// CookieName is the CSRF token cookie.
	CookieName = "goncalves_csrf"

	// FormField is the hidden input every POST form carries.
	FormField = "csrf_token"

	tokenBytes   = 32
	cookieMaxAge = 3600
)

type contextKey struct{}

// Token returns the request's CSRF token for embedding in forms. Empty
// when the request did not pass through Protect.
func Token(ctx context.Context) string {
	token, _ := ctx.Value(contextKey{}).(string)
	return token
}

// Protect issues the token cookie on safe methods and validates the form
// field against the cookie on everything else. A mismatch stops the
// request with 403 before any handler runs.
func Protect(isSecure bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				token := ensureToken(w, r, isSecure)
				next.ServeHTTP(w, withToken(r, token))
			default:
				if !validRequest(r) {
					logger.Warn("csrf validation failed",
						"method", r.Method,
						"path", r.URL.Path,
					)
					http.Error(w, "Formulário expirado. Recarregue a página e tente novamente.", http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, withToken(r, cookieToken(r)))
			}
		})
	}
}

func withToken(r *http.Request, token string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), contextKey{}, token))
}

func newToken() string {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms; if it does the
		// process has bigger problems than a missing form token.
		panic("csrf: rand.Read failed: " + err.Error())
	}
	return base64.URLEncoding.EncodeToString(b)
}

func cookieToken(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ensureToken reuses the visitor's existing token or mints one and sets
// the cookie.
func ensureToken(w http.ResponseWriter, r *http.Request, isSecure bool) string {
	if token := cookieToken(r); token != "" {
		return token
	}
	token := newToken()
	setCookie(w, token, isSecure)
	return token
}

// validRequest compares cookie and form tokens in constant time. FormValue
// parses the body if nothing has yet; multipart handlers re-reading the
// form afterwards get the cached parse.
func validRequest(r *http.Request) bool {
	cookie := cookieToken(r)
	form := r.FormValue(FormField)
	if cookie == "" || form == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(form)) == 1
}

func setCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true, // the server injects the token into forms, no script access needed
		Secure:   isSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
