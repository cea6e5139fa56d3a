package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/brunomgama/utility-tool-sub002/internal/format"
	"github.com/brunomgama/utility-tool-sub002/internal/middleware"
	"github.com/brunomgama/utility-tool-sub002/internal/model"
	"github.com/brunomgama/utility-tool-sub002/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Onboard はセッションのsubjectに対応するユーザーレコードを作成する（冪等）。
	Onboard(ctx context.Context, session *model.Session, input user.OnboardInput) (*model.User, error)
	// List は全ユーザーを名前順で返す。
	List(ctx context.Context) ([]model.User, error)
	// Withdraw はユーザーと関連データを全て削除する。
	Withdraw(ctx context.Context, u *model.User) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
	config  AuthHandlerConfig
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, config AuthHandlerConfig) *UserHandler {
	return &UserHandler{
		service: service,
		config:  config,
	}
}

// onboardRequest はオンボーディングリクエストのボディ。
type onboardRequest struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Initials    string `json:"initials"`
	Country     string `json:"country"`
	CountryFlag string `json:"country_flag"`
}

// Onboard はオンボーディングを完了しユーザーレコードを作成する。
// セッションのみを前提とするルートで、ガードの存在チェックは通らない。
// POST /api/onboarding
func (h *UserHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	var req onboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidBodyError())
		return
	}

	created, err := h.service.Onboard(r.Context(), session, user.OnboardInput{
		Name:    req.Name,
		Country: req.Country,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(created))
}

// ListTeam は全ユーザーのチーム一覧を返す。
// GET /api/team
func (h *UserHandler) ListTeam(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]userResponse, len(users))
	for i := range users {
		results[i] = toUserResponse(&users[i])
	}

	writeJSON(w, http.StatusOK, results)
}

// Withdraw は操作ユーザーの退会処理を実行し、セッションCookieをクリアする。
// DELETE /api/users/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	if err := h.service.Withdraw(r.Context(), u); err != nil {
		handleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// toUserResponse はドメインのUserをレスポンス型に変換する。
func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Initials:    format.Initials(u.Name),
		Country:     u.Country,
		CountryFlag: format.CountryFlag(u.Country),
	}
}
