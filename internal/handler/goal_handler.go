package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brunomgama/utility-tool-sub002/internal/format"
	"github.com/brunomgama/utility-tool-sub002/internal/goal"
	"github.com/brunomgama/utility-tool-sub002/internal/middleware"
	"github.com/brunomgama/utility-tool-sub002/internal/model"
)

// GoalServiceInterface は目標ハンドラーが必要とするサービスインターフェース。
type GoalServiceInterface interface {
	Create(ctx context.Context, userID string, input goal.CreateInput) (*model.Goal, error)
	List(ctx context.Context, userID string) ([]model.Goal, error)
	UpdateProgress(ctx context.Context, userID, goalID string, progress int) (*model.Goal, error)
	Delete(ctx context.Context, userID, goalID string) error
}

// GoalHandler は目標管理のHTTPハンドラー。
type GoalHandler struct {
	service GoalServiceInterface
}

// NewGoalHandler はGoalHandlerを生成する。
func NewGoalHandler(service GoalServiceInterface) *GoalHandler {
	return &GoalHandler{service: service}
}

// createGoalRequest は目標作成リクエストのボディ。
type createGoalRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
}

// updateProgressRequest は達成率更新リクエストのボディ。
type updateProgressRequest struct {
	Progress int `json:"progress"`
}

// goalResponse は目標情報のAPIレスポンス。
type goalResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Progress    int     `json:"progress"`
	DueDate     *string `json:"due_date"`
	Completed   bool    `json:"completed"`
}

// ListGoals は操作ユーザーの目標一覧を返す。
// GET /api/goals
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	goals, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]goalResponse, len(goals))
	for i := range goals {
		results[i] = toGoalResponse(&goals[i])
	}

	writeJSON(w, http.StatusOK, results)
}

// CreateGoal は目標を作成する。
// POST /api/goals
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidBodyError())
		return
	}

	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("due_date"))
		return
	}

	created, err := h.service.Create(r.Context(), userID, goal.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGoalResponse(created))
}

// UpdateProgress は目標の達成率を更新する。
// PUT /api/goals/{id}/progress
func (h *GoalHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}
	goalID := chi.URLParam(r, "id")

	var req updateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidBodyError())
		return
	}

	updated, err := h.service.UpdateProgress(r.Context(), userID, goalID, req.Progress)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponse(updated))
}

// DeleteGoal は目標を削除する。
// DELETE /api/goals/{id}
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}
	goalID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, goalID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toGoalResponse はドメインのGoalをレスポンス型に変換する。
func toGoalResponse(g *model.Goal) goalResponse {
	var dueDate *string
	if g.DueDate != nil {
		s := format.ISODate(*g.DueDate)
		dueDate = &s
	}
	return goalResponse{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Progress:    g.Progress,
		DueDate:     dueDate,
		Completed:   g.Completed,
	}
}
