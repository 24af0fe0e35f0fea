package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func serveOne(method, path string, handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(method, path, handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSignupDisabled(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, SessionConfig{SignupEnabled: false})

	w := serveOne(http.MethodPost, "/api/v1/auth/signup", h.Signup, `{"email":"a@b.co","password":"password123"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status %d, want 403", w.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, SessionConfig{CookieName: "sid"})

	w := serveOne(http.MethodPost, "/api/v1/auth/logout", h.Logout, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "sid" || cookies[0].MaxAge >= 0 {
		t.Fatalf("cookies = %+v", cookies)
	}
}

func TestLoginBindsWithoutRouter(t *testing.T) {
	// No RegisterRoutes here: NewHandler must make the notblank tag available.
	h := NewHandler(nil, nil, nil, nil, SessionConfig{})

	w := serveOne(http.MethodPost, "/api/v1/auth/login", h.Login, `{"email":"   ","password":"password123"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}
