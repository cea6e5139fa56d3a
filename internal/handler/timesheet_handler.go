package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brunomgama/utility-tool-sub002/internal/format"
	"github.com/brunomgama/utility-tool-sub002/internal/middleware"
	"github.com/brunomgama/utility-tool-sub002/internal/model"
	"github.com/brunomgama/utility-tool-sub002/internal/timesheet"
)

// TimesheetServiceInterface はタイムシートハンドラーが必要とするサービスインターフェース。
type TimesheetServiceInterface interface {
	Create(ctx context.Context, userID string, input timesheet.CreateInput) (*model.TimeEntry, error)
	Week(ctx context.Context, userID string, anyDay time.Time) (*timesheet.WeekSummary, error)
	Delete(ctx context.Context, userID, entryID string) error
}

// TimesheetHandler はタイムシートのHTTPハンドラー。
type TimesheetHandler struct {
	service TimesheetServiceInterface
}

// NewTimesheetHandler はTimesheetHandlerを生成する。
func NewTimesheetHandler(service TimesheetServiceInterface) *TimesheetHandler {
	return &TimesheetHandler{service: service}
}

// createTimeEntryRequest は工数記録リクエストのボディ。
type createTimeEntryRequest struct {
	ProjectID string  `json:"project_id"`
	EntryDate string  `json:"entry_date"`
	Hours     float64 `json:"hours"`
	Note      string  `json:"note"`
}

// timeEntryResponse は工数記録のAPIレスポンス。
type timeEntryResponse struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"project_id"`
	EntryDate string  `json:"entry_date"`
	Hours     float64 `json:"hours"`
	Note      string  `json:"note"`
}

// weekResponse は1週間分のタイムシートのAPIレスポンス。
type weekResponse struct {
	WeekStart  string              `json:"week_start"`
	Entries    []timeEntryResponse `json:"entries"`
	TotalHours float64             `json:"total_hours"`
}

// GetWeek は指定週のタイムシートを返す。
// weekパラメータが無い場合は今週になる。
// GET /api/timesheet?week=yyyy-MM-dd
func (h *TimesheetHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	day := now()
	if weekParam := r.URL.Query().Get("week"); weekParam != "" {
		parsed, err := format.ParseISODate(weekParam)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("week"))
			return
		}
		day = parsed
	}

	summary, err := h.service.Week(r.Context(), userID, day)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	entries := make([]timeEntryResponse, len(summary.Entries))
	for i := range summary.Entries {
		entries[i] = toTimeEntryResponse(&summary.Entries[i])
	}

	writeJSON(w, http.StatusOK, weekResponse{
		WeekStart:  format.ISODate(summary.WeekStart),
		Entries:    entries,
		TotalHours: summary.TotalHours,
	})
}

// CreateEntry は工数記録を作成する。
// POST /api/timesheet
func (h *TimesheetHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	var req createTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidBodyError())
		return
	}

	var entryDate time.Time
	if req.EntryDate != "" {
		parsed, err := format.ParseISODate(req.EntryDate)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("entry_date"))
			return
		}
		entryDate = parsed
	}

	created, err := h.service.Create(r.Context(), userID, timesheet.CreateInput{
		ProjectID: req.ProjectID,
		EntryDate: entryDate,
		Hours:     req.Hours,
		Note:      req.Note,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTimeEntryResponse(created))
}

// DeleteEntry は工数記録を削除する。
// DELETE /api/timesheet/{id}
func (h *TimesheetHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}
	entryID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, entryID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toTimeEntryResponse はドメインのTimeEntryをレスポンス型に変換する。
func toTimeEntryResponse(e *model.TimeEntry) timeEntryResponse {
	return timeEntryResponse{
		ID:        e.ID,
		ProjectID: e.ProjectID,
		EntryDate: format.ISODate(e.EntryDate),
		Hours:     e.Hours,
		Note:      e.Note,
	}
}
