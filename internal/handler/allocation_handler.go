package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brunomgama/utility-tool-sub002/internal/format"
	"github.com/brunomgama/utility-tool-sub002/internal/model"
)

// now はテストで差し替え可能な現在時刻取得関数。
var now = time.Now

// AllocationServiceInterface はアロケーションハンドラーが必要とするサービスインターフェース。
// Create/ListByProjectのusersには取得済みのユーザー一覧を渡す。
type AllocationServiceInterface interface {
	Create(ctx context.Context, projectID string, draft model.AllocationDraft, users []model.User) (*model.Allocation, error)
	ListByProject(ctx context.Context, projectID string, users []model.User) ([]model.Allocation, error)
}

// UserListerInterface はユーザー一覧取得のインターフェース。
type UserListerInterface interface {
	List(ctx context.Context) ([]model.User, error)
}

// AllocationHandler はアロケーション管理のHTTPハンドラー。
type AllocationHandler struct {
	service AllocationServiceInterface
	users   UserListerInterface
}

// NewAllocationHandler はAllocationHandlerを生成する。
func NewAllocationHandler(service AllocationServiceInterface, users UserListerInterface) *AllocationHandler {
	return &AllocationHandler{
		service: service,
		users:   users,
	}
}

// createAllocationRequest はアロケーション登録リクエストのボディ。
// 割合は1〜100の整数、日付はyyyy-MM-dd形式の文字列で受け取る。
type createAllocationRequest struct {
	UserID     string  `json:"user_id"`
	RoleID     string  `json:"role_id"`
	RoleName   string  `json:"role_name"`
	Percentage int     `json:"percentage"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date"`
}

// allocationResponse はアロケーション情報のAPIレスポンス。
// 割合は表示形式の0〜100で返す。
type allocationResponse struct {
	ID         string                  `json:"id"`
	ProjectID  string                  `json:"project_id"`
	UserID     string                  `json:"user_id"`
	RoleID     string                  `json:"role_id"`
	RoleName   string                  `json:"role_name"`
	Percentage int                     `json:"percentage"`
	StartDate  string                  `json:"start_date"`
	EndDate    *string                 `json:"end_date"`
	User       *allocationUserResponse `json:"user"`
}

// allocationUserResponse はアロケーションに紐付くユーザー情報。
type allocationUserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
}

// ListAllocations はプロジェクトのアロケーション一覧を返す。
// GET /api/projects/{id}/allocations
func (h *AllocationHandler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	users, err := h.users.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	allocs, err := h.service.ListByProject(r.Context(), projectID, users)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]allocationResponse, len(allocs))
	for i := range allocs {
		results[i] = toAllocationResponse(&allocs[i])
	}

	writeJSON(w, http.StatusOK, results)
}

// CreateAllocation はアロケーションを登録する。
// 成功時は確定した行と、フォームへ戻すデフォルトのドラフト値を返す。
// POST /api/projects/{id}/allocations
func (h *AllocationHandler) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var req createAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidBodyError())
		return
	}

	draft, apiErr := toDraft(req)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), projectID, draft, users)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Allocation allocationResponse `json:"allocation"`
		NextDraft  draftResponse      `json:"next_draft"`
	}{
		Allocation: toAllocationResponse(created),
		NextDraft:  toDraftResponse(model.DefaultAllocationDraft(now())),
	})
}

// draftResponse は登録成功後にフォームへ戻すドラフトのデフォルト値。
type draftResponse struct {
	UserID     string  `json:"user_id"`
	RoleID     string  `json:"role_id"`
	RoleName   string  `json:"role_name"`
	Percentage int     `json:"percentage"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date"`
}

// toDraft はリクエストボディをドラフトに変換する。
// 日付が解析できない場合は該当フィールド名の検証エラーを返す。
// 開始日が空の場合はゼロ値のまま渡し、検証はサービス層が行う。
func toDraft(req createAllocationRequest) (model.AllocationDraft, *model.APIError) {
	draft := model.AllocationDraft{
		UserID:     req.UserID,
		RoleID:     req.RoleID,
		RoleName:   req.RoleName,
		Percentage: req.Percentage,
	}

	if req.StartDate != "" {
		start, err := format.ParseISODate(req.StartDate)
		if err != nil {
			return model.AllocationDraft{}, model.NewValidationError("start_date")
		}
		draft.StartDate = start
	}

	if req.EndDate != nil && *req.EndDate != "" {
		end, err := format.ParseISODate(*req.EndDate)
		if err != nil {
			return model.AllocationDraft{}, model.NewValidationError("end_date")
		}
		draft.EndDate = &end
	}

	return draft, nil
}

// toAllocationResponse はドメインのAllocationをレスポンス型に変換する。
func toAllocationResponse(a *model.Allocation) allocationResponse {
	var endDate *string
	if a.EndDate != nil {
		s := format.ISODate(*a.EndDate)
		endDate = &s
	}

	var user *allocationUserResponse
	if a.User != nil {
		user = &allocationUserResponse{
			ID:       a.User.ID,
			Name:     a.User.Name,
			Initials: format.Initials(a.User.Name),
		}
	}

	return allocationResponse{
		ID:         a.ID,
		ProjectID:  a.ProjectID,
		UserID:     a.UserID,
		RoleID:     a.RoleID,
		RoleName:   a.RoleName,
		Percentage: a.DisplayPercentage(),
		StartDate:  format.ISODate(a.StartDate),
		EndDate:    endDate,
		User:       user,
	}
}

// toDraftResponse はドラフトをレスポンス型に変換する。
func toDraftResponse(d model.AllocationDraft) draftResponse {
	var endDate *string
	if d.EndDate != nil {
		s := format.ISODate(*d.EndDate)
		endDate = &s
	}
	return draftResponse{
		UserID:     d.UserID,
		RoleID:     d.RoleID,
		RoleName:   d.RoleName,
		Percentage: d.Percentage,
		StartDate:  format.ISODate(d.StartDate),
		EndDate:    endDate,
	}
}
