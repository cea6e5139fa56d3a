package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brunomgama/utility-tool-sub002/internal/format"
	"github.com/brunomgama/utility-tool-sub002/internal/middleware"
	"github.com/brunomgama/utility-tool-sub002/internal/model"
	"github.com/brunomgama/utility-tool-sub002/internal/project"
)

// ProjectServiceInterface はプロジェクトハンドラーが必要とするサービスインターフェース。
type ProjectServiceInterface interface {
	Create(ctx context.Context, input project.CreateInput) (*model.Project, error)
	List(ctx context.Context) ([]model.Project, error)
	Get(ctx context.Context, projectID string) (*model.Project, error)
	ListRoles(ctx context.Context, projectID string) ([]model.Role, error)
	CreateRole(ctx context.Context, projectID, name string, hourlyRate float64) (*model.Role, error)
}

// ProjectHandler はプロジェクト管理のHTTPハンドラー。
type ProjectHandler struct {
	service ProjectServiceInterface
}

// NewProjectHandler はProjectHandlerを生成する。
func NewProjectHandler(service ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// createProjectRequest はプロジェクト作成リクエストのボディ。
// 日付はyyyy-MM-dd形式の文字列で受け取る。
type createProjectRequest struct {
	Name      string  `json:"name"`
	Client    string  `json:"client"`
	Country   string  `json:"country"`
	Budget    float64 `json:"budget"`
	Currency  string  `json:"currency"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// createRoleRequest は役割作成リクエストのボディ。
type createRoleRequest struct {
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate"`
}

// projectResponse はプロジェクト情報のAPIレスポンス。
type projectResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Client          string  `json:"client"`
	Country         string  `json:"country"`
	CountryFlag     string  `json:"country_flag"`
	Status          string  `json:"status"`
	Budget          float64 `json:"budget"`
	Currency        string  `json:"currency"`
	BudgetFormatted string  `json:"budget_formatted"`
	StartDate       string  `json:"start_date"`
	EndDate         *string `json:"end_date"`
}

// roleResponse は役割情報のAPIレスポンス。
type roleResponse struct {
	ID         string  `json:"id"`
	ProjectID  string  `json:"project_id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListProjects はプロジェクト一覧を返す。
// GET /api/projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]projectResponse, len(projects))
	for i := range projects {
		results[i] = toProjectResponse(&projects[i])
	}

	writeJSON(w, http.StatusOK, results)
}

// CreateProject はプロジェクトを作成する。
// POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidBodyError())
		return
	}

	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("start_date"))
		return
	}

	created, err := h.service.Create(r.Context(), project.CreateInput{
		Name:      req.Name,
		Client:    req.Client,
		Country:   req.Country,
		Budget:    req.Budget,
		Currency:  req.Currency,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectResponse(created))
}

// GetProject はプロジェクト詳細を返す。
// GET /api/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	p, err := h.service.Get(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

// ListRoles はプロジェクトの役割一覧を返す。
// GET /api/projects/{id}/roles
func (h *ProjectHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	roles, err := h.service.ListRoles(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]roleResponse, len(roles))
	for i, role := range roles {
		results[i] = toRoleResponse(&role)
	}

	writeJSON(w, http.StatusOK, results)
}

// CreateRole はプロジェクトに役割を追加する。
// POST /api/projects/{id}/roles
func (h *ProjectHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var req createRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidBodyError())
		return
	}

	role, err := h.service.CreateRole(r.Context(), projectID, req.Name, req.HourlyRate)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRoleResponse(role))
}

// toProjectResponse はドメインのProjectをレスポンス型に変換する。
func toProjectResponse(p *model.Project) projectResponse {
	var endDate *string
	if p.EndDate != nil {
		s := format.ISODate(*p.EndDate)
		endDate = &s
	}
	return projectResponse{
		ID:              p.ID,
		Name:            p.Name,
		Client:          p.Client,
		Country:         p.Country,
		CountryFlag:     format.CountryFlag(p.Country),
		Status:          string(p.Status),
		Budget:          p.Budget,
		Currency:        p.Currency,
		BudgetFormatted: format.Currency(p.Budget, p.Currency),
		StartDate:       format.ISODate(p.StartDate),
		EndDate:         endDate,
	}
}

// toRoleResponse はドメインのRoleをレスポンス型に変換する。
func toRoleResponse(role *model.Role) roleResponse {
	return roleResponse{
		ID:         role.ID,
		ProjectID:  role.ProjectID,
		Name:       role.Name,
		HourlyRate: role.HourlyRate,
	}
}

// parseDateRange はyyyy-MM-dd形式の開始日・終了日をパースする。
// 終了日はnil（無期限）を許容する。
func parseDateRange(start string, end *string) (time.Time, *time.Time, error) {
	startDate, err := format.ParseISODate(start)
	if err != nil {
		return time.Time{}, nil, err
	}

	var endDate *time.Time
	if end != nil && *end != "" {
		parsed, err := format.ParseISODate(*end)
		if err != nil {
			return time.Time{}, nil, err
		}
		endDate = &parsed
	}

	return startDate, endDate, nil
}

// parseOptionalDate はyyyy-MM-dd形式の省略可能な日付をパースする。
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	parsed, err := format.ParseISODate(*s)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeUserNotProvisioned:
		return http.StatusForbidden
	case model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeValidationFailed,
		model.ErrCodeInvalidPercentage,
		model.ErrCodeInvalidDateRange:
		return http.StatusBadRequest
	case model.ErrCodeProjectNotFound,
		model.ErrCodeTaskNotFound,
		model.ErrCodeGoalNotFound,
		model.ErrCodeTimeEntryNotFound:
		return http.StatusNotFound
	case model.ErrCodeChatNotConfigured:
		return http.StatusInternalServerError
	case model.ErrCodeChatUpstreamFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// unauthorizedError は認証が必要な場合のAPIErrorを返す。
func unauthorizedError() *model.APIError {
	return &model.APIError{
		Code:     model.ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// invalidBodyError はリクエストボディの解析失敗を表すAPIErrorを返す。
func invalidBodyError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}
