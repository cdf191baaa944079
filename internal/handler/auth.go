// Package handler contains HTTP handlers for the dashboard server.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/joaobaungartner/goncalves-frontend/internal/csrf"
	"github.com/joaobaungartner/goncalves-frontend/internal/domain"
	"github.com/joaobaungartner/goncalves-frontend/internal/middleware"
	"github.com/joaobaungartner/goncalves-frontend/internal/service"
	"github.com/joaobaungartner/goncalves-frontend/internal/session"
)

// TemplateRenderer is the interface for rendering HTML templates.
// This interface allows for mocking in tests.
type TemplateRenderer interface {
	RenderHTTP(w http.ResponseWriter, name string, data interface{})
}

// AuthHandler handles login and logout.
//
// Routes handled:
// - GET  /login  -> ShowLogin
// - POST /login  -> Login
// - POST /logout -> Logout
type AuthHandler struct {
	sessions service.SessionService
	limiter  *middleware.AuthRateLimiter
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

// NewAuthHandler creates a new AuthHandler with the required dependencies.
func NewAuthHandler(
	sessions service.SessionService,
	limiter *middleware.AuthRateLimiter,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		limiter:  limiter,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// loginPageData feeds the login template.
type loginPageData struct {
	Title     string
	Error     string
	Username  string
	ReturnTo  string
	CSRFToken string
}

// ShowLogin renders the login form. An already-authenticated visitor is
// sent straight to the dashboard.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if middleware.GetSession(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.renderer.RenderHTTP(w, "auth/login", loginPageData{
		Title:     "Entrar",
		ReturnTo:  r.URL.Query().Get("return_to"),
		CSRFToken: csrf.Token(r.Context()),
	})
}

// Login authenticates against the analytics backend and sets the session
// cookie. Failures re-render the form with the backend's own message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.Login", "Formulário inválido."))
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	returnTo := r.PostFormValue("return_to")

	sess, err := h.sessions.Login(r.Context(), username, password)
	if err != nil {
		if h.limiter != nil {
			h.limiter.RecordFailedLogin(clientIP(r))
		}
		h.logger.Info("login failed", "username", username)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(ErrorCodeToHTTPStatus(domain.ErrorCode(err)))
		h.renderer.RenderHTTP(w, "auth/login", loginPageData{
			Title:     "Entrar",
			Error:     domain.ErrorMessage(err),
			Username:  username,
			ReturnTo:  returnTo,
			CSRFToken: csrf.Token(r.Context()),
		})
		return
	}

	if h.limiter != nil {
		h.limiter.ResetLogin(clientIP(r))
	}
	middleware.SetSessionCookie(w, sess.ID, h.isSecure)
	http.Redirect(w, r, middleware.SafeReturnTo(returnTo), http.StatusSeeOther)
}

// Logout deletes the session and clears the cookie. The recorded batch id
// goes down with the session row; logging back in starts clean.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if err := h.sessions.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Error("logout failed", "error", err)
		}
	}
	middleware.ClearSessionCookie(w, h.isSecure)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
