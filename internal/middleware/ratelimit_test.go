package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
)

func rateLimitedRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	ctx := ContextWithUser(req.Context(),
		&model.Session{ID: "s-1", Subject: "auth0|" + userID},
		&model.User{ID: userID},
	)
	return req.WithContext(ctx)
}

func TestRateLimiter_BurstExceeded_Returns429(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0),
		GeneralBurst:    3,
		WriteRate:       rate.Limit(1.0 / 60.0),
		WriteBurst:      1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, rateLimitedRequest("user-1"))
		if w.Code != http.StatusOK {
			t.Fatalf("%d回目: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, rateLimitedRequest("user-1"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("バースト超過後: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-Afterヘッダーが設定されるべき")
	}
}

func TestRateLimiter_CountsPerUser(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0),
		GeneralBurst:    1,
		WriteRate:       rate.Limit(1.0 / 60.0),
		WriteBurst:      1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// user-1がバーストを使い切る
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, rateLimitedRequest("user-1"))
	if w.Code != http.StatusOK {
		t.Fatalf("user-1 1回目: status = %d, want %d", w.Code, http.StatusOK)
	}
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, rateLimitedRequest("user-1"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("user-1 2回目: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	// user-2には影響しない
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, rateLimitedRequest("user-2"))
	if w.Code != http.StatusOK {
		t.Errorf("user-2: status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRateLimiter_GeneralAndWriteScopesAreIndependent(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0),
		GeneralBurst:    1,
		WriteRate:       rate.Limit(1.0 / 60.0),
		WriteBurst:      1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	general := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	write := rl.WriteMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 一般スコープを使い切っても書き込みスコープは消費されない
	w := httptest.NewRecorder()
	general.ServeHTTP(w, rateLimitedRequest("user-1"))
	if w.Code != http.StatusOK {
		t.Fatalf("general: status = %d, want %d", w.Code, http.StatusOK)
	}

	w = httptest.NewRecorder()
	write.ServeHTTP(w, rateLimitedRequest("user-1"))
	if w.Code != http.StatusOK {
		t.Errorf("write: status = %d, want %d", w.Code, http.StatusOK)
	}

	if got := rl.LimiterCount(); got != 2 {
		t.Errorf("LimiterCount = %d, want 2", got)
	}
}

func TestRateLimiter_NoIdentity_Returns401(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
