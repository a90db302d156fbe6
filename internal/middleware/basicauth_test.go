package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// mockVerifier はCredentialVerifierのテスト用実装。
type mockVerifier struct {
	verifyFn func(username, password string) bool
}

func (m *mockVerifier) Verify(username, password string) bool {
	if m.verifyFn != nil {
		return m.verifyFn(username, password)
	}
	return false
}

func TestBasicAuth_ValidCredentials_InjectsUser(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(username, password string) bool {
			return username == "alice" && password == "secret"
		},
	}
	mw := NewBasicAuthMiddleware(verifier, "Enter username and password.")

	var capturedUser string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.SetBasicAuth("alice", "secret")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if capturedUser != "alice" {
		t.Errorf("user in context = %q, want %q", capturedUser, "alice")
	}
}

func TestBasicAuth_MissingCredentials_Returns401WithChallenge(t *testing.T) {
	mw := NewBasicAuthMiddleware(&mockVerifier{}, "Enter username and password.")

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	challenge := w.Header().Get("WWW-Authenticate")
	if !strings.HasPrefix(challenge, "Basic realm=") {
		t.Errorf("WWW-Authenticate = %q, want Basic challenge", challenge)
	}
}

func TestBasicAuth_WrongPassword_Returns401(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(username, password string) bool {
			return username == "alice" && password == "secret"
		},
	}
	mw := NewBasicAuthMiddleware(verifier, "realm")

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.SetBasicAuth("alice", "wrong")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestUserFromContext_NotSet_ReturnsError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)

	if _, err := UserFromContext(req.Context()); err == nil {
		t.Error("expected error when user is not in context")
	}
}
