package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
)

// --- モック定義 ---

type mockAllocationService struct {
	createFn        func(ctx context.Context, projectID string, draft model.AllocationDraft, users []model.User) (*model.Allocation, error)
	listByProjectFn func(ctx context.Context, projectID string, users []model.User) ([]model.Allocation, error)
}

func (m *mockAllocationService) Create(ctx context.Context, projectID string, draft model.AllocationDraft, users []model.User) (*model.Allocation, error) {
	if m.createFn != nil {
		return m.createFn(ctx, projectID, draft, users)
	}
	return nil, nil
}

func (m *mockAllocationService) ListByProject(ctx context.Context, projectID string, users []model.User) ([]model.Allocation, error) {
	if m.listByProjectFn != nil {
		return m.listByProjectFn(ctx, projectID, users)
	}
	return nil, nil
}

type mockUserLister struct {
	users []model.User
}

func (m *mockUserLister) List(_ context.Context) ([]model.User, error) {
	return m.users, nil
}

func allocationTestRouter(h *AllocationHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/projects/{id}/allocations", h.ListAllocations)
	r.Post("/api/projects/{id}/allocations", h.CreateAllocation)
	return r
}

// --- テスト ---

func TestCreateAllocation_ReturnsAllocationAndNextDraft(t *testing.T) {
	// 現在時刻を固定してnext_draftを検証する
	fixedNow := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	originalNow := now
	now = func() time.Time { return fixedNow }
	defer func() { now = originalNow }()

	var capturedProjectID string
	var capturedDraft model.AllocationDraft
	service := &mockAllocationService{
		createFn: func(_ context.Context, projectID string, draft model.AllocationDraft, users []model.User) (*model.Allocation, error) {
			capturedProjectID = projectID
			capturedDraft = draft
			return &model.Allocation{
				ID:         "alloc-1",
				ProjectID:  projectID,
				UserID:     draft.UserID,
				RoleID:     draft.RoleID,
				RoleName:   draft.RoleName,
				Percentage: 0.75,
				StartDate:  draft.StartDate,
				EndDate:    draft.EndDate,
				User:       &model.User{ID: draft.UserID, Name: "Taro Yamada"},
			}, nil
		},
	}
	users := &mockUserLister{users: []model.User{{ID: "user-1", Name: "Taro Yamada"}}}
	router := allocationTestRouter(NewAllocationHandler(service, users))

	body := `{"user_id":"user-1","role_id":"role-1","role_name":"Backend Engineer","percentage":75,"start_date":"2024-06-01","end_date":"2024-12-31"}`
	req := httptest.NewRequest(http.MethodPost, "/api/projects/proj-1/allocations", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	if capturedProjectID != "proj-1" {
		t.Errorf("projectID = %q, want proj-1", capturedProjectID)
	}
	if capturedDraft.Percentage != 75 {
		t.Errorf("draft.Percentage = %d, want 75", capturedDraft.Percentage)
	}
	if got := capturedDraft.StartDate.Format("2006-01-02"); got != "2024-06-01" {
		t.Errorf("draft.StartDate = %q, want 2024-06-01", got)
	}

	var resp struct {
		Allocation allocationResponse `json:"allocation"`
		NextDraft  draftResponse      `json:"next_draft"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v", err)
	}

	// 割合は表示形式の0〜100で返される
	if resp.Allocation.Percentage != 75 {
		t.Errorf("allocation.percentage = %d, want 75", resp.Allocation.Percentage)
	}
	if resp.Allocation.User == nil || resp.Allocation.User.Initials != "TY" {
		t.Errorf("user.initials が TY であるべき: %+v", resp.Allocation.User)
	}

	// next_draftはユーザー・役割未選択、100%、開始・終了は当日
	if resp.NextDraft.UserID != "" || resp.NextDraft.RoleID != "" {
		t.Errorf("next_draftのユーザー・役割は未選択であるべき: %+v", resp.NextDraft)
	}
	if resp.NextDraft.Percentage != 100 {
		t.Errorf("next_draft.percentage = %d, want 100", resp.NextDraft.Percentage)
	}
	if resp.NextDraft.StartDate != "2024-05-20" {
		t.Errorf("next_draft.start_date = %q, want 2024-05-20", resp.NextDraft.StartDate)
	}
	if resp.NextDraft.EndDate == nil || *resp.NextDraft.EndDate != "2024-05-20" {
		t.Errorf("next_draft.end_date = %v, want 2024-05-20", resp.NextDraft.EndDate)
	}
}

func TestCreateAllocation_ServiceValidationError_Returns400(t *testing.T) {
	service := &mockAllocationService{
		createFn: func(_ context.Context, _ string, _ model.AllocationDraft, _ []model.User) (*model.Allocation, error) {
			return nil, model.NewInvalidPercentageError(150)
		},
	}
	users := &mockUserLister{}
	router := allocationTestRouter(NewAllocationHandler(service, users))

	body := `{"user_id":"user-1","role_name":"Backend Engineer","percentage":150,"start_date":"2024-06-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/projects/proj-1/allocations", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v", err)
	}
	if resp.Code != model.ErrCodeInvalidPercentage {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeInvalidPercentage)
	}
}

func TestCreateAllocation_MalformedDate_ReportsOffendingField(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{
			"開始日が不正",
			`{"user_id":"user-1","role_name":"Backend Engineer","percentage":50,"start_date":"06/01/2024"}`,
			"start_date",
		},
		{
			"終了日が不正",
			`{"user_id":"user-1","role_name":"Backend Engineer","percentage":50,"start_date":"2024-06-01","end_date":"12/31/2024"}`,
			"end_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockAllocationService{}
			users := &mockUserLister{}
			router := allocationTestRouter(NewAllocationHandler(service, users))

			req := httptest.NewRequest(http.MethodPost, "/api/projects/proj-1/allocations", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}

			var resp apiErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("レスポンスのデコードに失敗: %v", err)
			}
			if resp.Code != model.ErrCodeValidationFailed {
				t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeValidationFailed)
			}
			if !strings.Contains(resp.Message, tt.wantField) {
				t.Errorf("message = %q, want %q を含む", resp.Message, tt.wantField)
			}
		})
	}
}

func TestListAllocations_PassesUsersAndConvertsPercentage(t *testing.T) {
	var capturedUsers []model.User
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	service := &mockAllocationService{
		listByProjectFn: func(_ context.Context, projectID string, users []model.User) ([]model.Allocation, error) {
			capturedUsers = users
			return []model.Allocation{
				{
					ID:         "alloc-1",
					ProjectID:  projectID,
					UserID:     "user-1",
					RoleName:   "Designer",
					Percentage: 0.5,
					StartDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
					EndDate:    &end,
					User:       &model.User{ID: "user-1", Name: "Hanako Suzuki"},
				},
			}, nil
		},
	}
	users := &mockUserLister{users: []model.User{{ID: "user-1", Name: "Hanako Suzuki"}}}
	router := allocationTestRouter(NewAllocationHandler(service, users))

	req := httptest.NewRequest(http.MethodGet, "/api/projects/proj-1/allocations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if len(capturedUsers) != 1 {
		t.Errorf("サービスへ渡されたユーザー数 = %d, want 1", len(capturedUsers))
	}

	var resp []allocationResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("件数 = %d, want 1", len(resp))
	}
	if resp[0].Percentage != 50 {
		t.Errorf("percentage = %d, want 50", resp[0].Percentage)
	}
	if resp[0].StartDate != "2024-06-01" {
		t.Errorf("start_date = %q, want 2024-06-01", resp[0].StartDate)
	}
	if resp[0].EndDate == nil || *resp[0].EndDate != "2024-12-31" {
		t.Errorf("end_date = %v, want 2024-12-31", resp[0].EndDate)
	}
}
