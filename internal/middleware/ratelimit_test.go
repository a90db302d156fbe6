package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// testRateLimiterConfig はテスト用の小さなレート制限設定を返す。
func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0), // 1 req/sec
		GeneralBurst:    2,
		MutationRate:    rate.Limit(1.0),
		MutationBurst:   1,
		CleanupInterval: time.Hour,
	}
}

func authedRequest(method, path, user string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	return req.WithContext(ContextWithUser(req.Context(), user))
}

func TestGeneralMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest(http.MethodGet, "/posts", "alice"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}
}

func TestGeneralMiddleware_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var lastCode int
	var lastRetryAfter string
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest(http.MethodGet, "/posts", "alice"))
		lastCode = w.Code
		lastRetryAfter = w.Header().Get("Retry-After")
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("3rd request status = %d, want %d", lastCode, http.StatusTooManyRequests)
	}
	if lastRetryAfter == "" {
		t.Error("expected Retry-After header on 429 response")
	}
}

func TestGeneralMiddleware_UsersDoNotShareLimiters(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// aliceのバーストを使い切る
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest(http.MethodGet, "/posts", "alice"))
	}

	// bobは影響を受けない
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest(http.MethodGet, "/posts", "bob"))
	if w.Code != http.StatusOK {
		t.Errorf("bob's request status = %d, want %d", w.Code, http.StatusOK)
	}

	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("GeneralLimiterCount() = %d, want 2", rl.GeneralLimiterCount())
	}
}

func TestGeneralMiddleware_NoUser_Returns401(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestMutationMiddleware_SkipsSafeMethods(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.MutationMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// バースト1だがGETは何度でも通る
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest(http.MethodGet, "/posts", "alice"))
		if w.Code != http.StatusOK {
			t.Fatalf("GET %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	if rl.MutationLimiterCount() != 0 {
		t.Errorf("MutationLimiterCount() = %d, want 0 (GETはリミッターを作らない)", rl.MutationLimiterCount())
	}
}

func TestMutationMiddleware_LimitsPosts(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.MutationMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSeeOther)
	}))

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, authedRequest(http.MethodPost, "/posts", "alice"))
	if w1.Code != http.StatusSeeOther {
		t.Fatalf("1st POST status = %d, want %d", w1.Code, http.StatusSeeOther)
	}

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, authedRequest(http.MethodPost, "/posts", "alice"))
	if w2.Code != http.StatusTooManyRequests {
		t.Errorf("2nd POST status = %d, want %d", w2.Code, http.StatusTooManyRequests)
	}
}

func TestCleanup_RemovesStaleEntries(t *testing.T) {
	cfg := testRateLimiterConfig()
	cfg.CleanupInterval = 10 * time.Millisecond
	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	rl.getOrCreateGeneralLimiter("alice")
	if rl.GeneralLimiterCount() != 1 {
		t.Fatalf("GeneralLimiterCount() = %d, want 1", rl.GeneralLimiterCount())
	}

	// TTL（CleanupInterval*2）を超えるまで待ってクリーンアップさせる
	time.Sleep(50 * time.Millisecond)

	if rl.GeneralLimiterCount() != 0 {
		t.Errorf("GeneralLimiterCount() = %d, want 0 after cleanup", rl.GeneralLimiterCount())
	}
}
