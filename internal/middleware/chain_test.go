package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
)

// オンボーディングルートのミドルウェアチェーン:
// SessionOnly → CSRF → RateLimit(General) → ハンドラー
func onboardingChain(sessions SessionFinder, rl *RateLimiter, handler http.Handler) http.Handler {
	h := rl.GeneralMiddleware()(handler)
	h = NewCSRFMiddleware(CSRFConfig{})(h)
	h = NewSessionOnlyMiddleware(sessions, testGuardConfig())(h)
	return h
}

// TestOnboardingChain_SessionWithoutUser_ReachesHandler は
// ユーザーレコード未作成の新規セッションがオンボーディングの
// チェーン全体を通過できることを検証する。
func TestOnboardingChain_SessionWithoutUser_ReachesHandler(t *testing.T) {
	sessions := &mockSessionFinder{
		findByIDFn: func(_ context.Context, _ string) (*model.Session, error) {
			return validSession(), nil
		},
	}
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	defer rl.Stop()

	handlerRan := false
	chain := onboardingChain(sessions, rl, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		if _, err := SessionFromContext(r.Context()); err != nil {
			t.Errorf("セッションが取得できるべき: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/onboarding", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session-id"})
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "token-abc"})
	req.Header.Set("X-CSRF-Token", "token-abc")
	w := httptest.NewRecorder()
	chain.ServeHTTP(w, req)

	if !handlerRan {
		t.Fatalf("ハンドラーが実行されるべき: status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
}

// TestOnboardingChain_RateLimitKeyedBySubject は
// セッションのみのルートでsubject単位にレート制限されることを検証する。
func TestOnboardingChain_RateLimitKeyedBySubject(t *testing.T) {
	sessions := &mockSessionFinder{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{
				ID:        id,
				Subject:   "auth0|" + id,
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     1.0 / 60.0,
		GeneralBurst:    1,
		WriteRate:       1.0 / 60.0,
		WriteBurst:      1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	chain := onboardingChain(sessions, rl, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	post := func(sessionID string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/onboarding", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: sessionID})
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "token-abc"})
		req.Header.Set("X-CSRF-Token", "token-abc")
		w := httptest.NewRecorder()
		chain.ServeHTTP(w, req)
		return w.Code
	}

	if got := post("session-a"); got != http.StatusCreated {
		t.Fatalf("session-a 1回目: status = %d, want %d", got, http.StatusCreated)
	}
	if got := post("session-a"); got != http.StatusTooManyRequests {
		t.Errorf("session-a 2回目: status = %d, want %d", got, http.StatusTooManyRequests)
	}
	// 別subjectには影響しない
	if got := post("session-b"); got != http.StatusCreated {
		t.Errorf("session-b: status = %d, want %d", got, http.StatusCreated)
	}
}
