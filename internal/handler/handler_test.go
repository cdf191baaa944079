package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joaobaungartner/goncalves-frontend/internal/middleware"
	"github.com/joaobaungartner/goncalves-frontend/internal/repository"
	"github.com/joaobaungartner/goncalves-frontend/internal/service"
	"github.com/joaobaungartner/goncalves-frontend/internal/session"
)

// captureRenderer records the last render call instead of executing real
// templates, so tests can inspect the view data directly.
type captureRenderer struct {
	name string
	data interface{}
}

func (c *captureRenderer) RenderHTTP(w http.ResponseWriter, name string, data interface{}) {
	c.name = name
	c.data = data
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, "rendered:"+name)
}

type staticAuth struct {
	token string
	err   error
}

func (a staticAuth) Login(_ context.Context, _, _ string) (string, error) {
	return a.token, a.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authedEnv is a signed-in test environment: a session service backed by a
// memory store, one live session, and the middleware that loads it.
type authedEnv struct {
	sessions  service.SessionService
	sessionID string
	auth      *middleware.AuthMiddleware
}

func newAuthedEnv(t *testing.T) *authedEnv {
	t.Helper()

	store := repository.NewMemorySessionStore()
	sessions := service.NewSessionService(store, staticAuth{token: "tok-123"}, 24*time.Hour, testLogger())

	sess, err := sessions.Login(context.Background(), "maria", "segredo")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	return &authedEnv{
		sessions:  sessions,
		sessionID: sess.ID,
		auth:      middleware.NewAuthMiddleware(sessions, testLogger(), false),
	}
}

// do runs a request through the session middleware into the handler,
// attaching the environment's session cookie.
func (e *authedEnv) do(handler http.Handler, r *http.Request) *httptest.ResponseRecorder {
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: e.sessionID})
	w := httptest.NewRecorder()
	e.auth.WithSession(handler).ServeHTTP(w, r)
	return w
}
