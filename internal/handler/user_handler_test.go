package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brunomgama/utility-tool-sub002/internal/middleware"
	"github.com/brunomgama/utility-tool-sub002/internal/model"
	"github.com/brunomgama/utility-tool-sub002/internal/user"
)

// --- モック定義 ---

type mockUserService struct {
	onboardFn  func(ctx context.Context, session *model.Session, input user.OnboardInput) (*model.User, error)
	listFn     func(ctx context.Context) ([]model.User, error)
	withdrawFn func(ctx context.Context, u *model.User) error
	withdrawn  []*model.User
}

func (m *mockUserService) Onboard(ctx context.Context, session *model.Session, input user.OnboardInput) (*model.User, error) {
	if m.onboardFn != nil {
		return m.onboardFn(ctx, session, input)
	}
	return nil, nil
}

func (m *mockUserService) List(ctx context.Context) ([]model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserService) Withdraw(ctx context.Context, u *model.User) error {
	m.withdrawn = append(m.withdrawn, u)
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, u)
	}
	return nil
}

// --- テスト ---

func TestOnboard_CreatesUserRecord(t *testing.T) {
	service := &mockUserService{
		onboardFn: func(_ context.Context, session *model.Session, input user.OnboardInput) (*model.User, error) {
			return &model.User{
				ID:      "user-1",
				Subject: session.Subject,
				Email:   session.Email,
				Name:    input.Name,
				Country: input.Country,
			}, nil
		},
	}
	h := NewUserHandler(service, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/onboarding",
		strings.NewReader(`{"name":"Taro Yamada","country":"JP"}`))
	ctx := middleware.ContextWithUser(req.Context(),
		&model.Session{ID: "s-1", Subject: "auth0|abc", Email: "taro@example.com"}, nil)
	w := httptest.NewRecorder()
	h.Onboard(w, req.WithContext(ctx))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp userResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v", err)
	}
	if resp.Name != "Taro Yamada" {
		t.Errorf("name = %q, want Taro Yamada", resp.Name)
	}
	if resp.Initials != "TY" {
		t.Errorf("initials = %q, want TY", resp.Initials)
	}
	if resp.CountryFlag != "🇯🇵" {
		t.Errorf("country_flag = %q, want 🇯🇵", resp.CountryFlag)
	}
}

func TestOnboard_NoSession_Returns401(t *testing.T) {
	service := &mockUserService{}
	h := NewUserHandler(service, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/onboarding",
		strings.NewReader(`{"name":"Taro"}`))
	w := httptest.NewRecorder()
	h.Onboard(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestListTeam_ReturnsAllUsers(t *testing.T) {
	service := &mockUserService{
		listFn: func(_ context.Context) ([]model.User, error) {
			return []model.User{
				{ID: "user-1", Name: "Hanako Suzuki", Country: "JP"},
				{ID: "user-2", Name: "John Smith", Country: "US"},
			}, nil
		},
	}
	h := NewUserHandler(service, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/team", nil)
	w := httptest.NewRecorder()
	h.ListTeam(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []userResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("件数 = %d, want 2", len(resp))
	}
	if resp[0].Initials != "HS" {
		t.Errorf("initials = %q, want HS", resp[0].Initials)
	}
}

func TestWithdraw_DeletesUserAndClearsCookie(t *testing.T) {
	service := &mockUserService{}
	h := NewUserHandler(service, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	ctx := middleware.ContextWithUser(req.Context(),
		&model.Session{ID: "s-1", Subject: "auth0|abc"},
		&model.User{ID: "user-1", Subject: "auth0|abc"})
	w := httptest.NewRecorder()
	h.Withdraw(w, req.WithContext(ctx))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if len(service.withdrawn) != 1 || service.withdrawn[0].ID != "user-1" {
		t.Errorf("退会処理に渡されたユーザー = %+v, want user-1", service.withdrawn)
	}

	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" {
			cleared = c
		}
	}
	if cleared == nil {
		t.Fatal("セッションCookieがクリアされるべき")
	}
	if cleared.MaxAge != -1 || cleared.Value != "" {
		t.Errorf("Cookie = %+v, want 失効状態", cleared)
	}
}

func TestWithdraw_NoUser_Returns401(t *testing.T) {
	service := &mockUserService{}
	h := NewUserHandler(service, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	w := httptest.NewRecorder()
	h.Withdraw(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if len(service.withdrawn) != 0 {
		t.Error("未認証時に退会処理が実行されてはいけない")
	}
}
