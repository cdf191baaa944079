package csrf

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func protectedHandler() (http.Handler, *string) {
	var seen string
	h := Protect(false, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Token(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestProtect_GetIssuesCookieAndContextToken(t *testing.T) {
	h, seen := protectedHandler()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("csrf cookie not set")
	}
	if cookie.Value == "" {
		t.Fatal("csrf cookie is empty")
	}
	if *seen != cookie.Value {
		t.Errorf("context token = %q, cookie = %q, want equal", *seen, cookie.Value)
	}
}

func TestProtect_GetReusesExistingToken(t *testing.T) {
	h, seen := protectedHandler()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "tok-abc"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if *seen != "tok-abc" {
		t.Errorf("context token = %q, want the existing cookie value", *seen)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			t.Error("cookie should not be reissued when one exists")
		}
	}
}

func TestProtect_PostValidation(t *testing.T) {
	tests := []struct {
		name       string
		cookie     string
		form       string
		wantStatus int
	}{
		{"matching tokens pass", "tok-abc", "tok-abc", http.StatusOK},
		{"mismatch rejected", "tok-abc", "tok-xyz", http.StatusForbidden},
		{"missing form field rejected", "tok-abc", "", http.StatusForbidden},
		{"missing cookie rejected", "", "tok-abc", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := protectedHandler()

			form := url.Values{}
			if tt.form != "" {
				form.Set(FormField, tt.form)
			}
			r := httptest.NewRequest(http.MethodPost, "/importar", strings.NewReader(form.Encode()))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}

			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
