package allocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
)

// --- モック ---

type mockAllocationRepo struct {
	insertFunc        func(ctx context.Context, alloc *model.Allocation) (*model.Allocation, error)
	listByProjectFunc func(ctx context.Context, projectID string) ([]model.Allocation, error)
	listByUserFunc    func(ctx context.Context, userID string) ([]model.Allocation, error)
	insertCalls       int
}

func (m *mockAllocationRepo) Insert(ctx context.Context, alloc *model.Allocation) (*model.Allocation, error) {
	m.insertCalls++
	if m.insertFunc != nil {
		return m.insertFunc(ctx, alloc)
	}
	return alloc, nil
}

func (m *mockAllocationRepo) ListByProject(ctx context.Context, projectID string) ([]model.Allocation, error) {
	if m.listByProjectFunc != nil {
		return m.listByProjectFunc(ctx, projectID)
	}
	return nil, nil
}

func (m *mockAllocationRepo) ListByUser(ctx context.Context, userID string) ([]model.Allocation, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockAllocationRepo) DeleteByUserID(ctx context.Context, userID string) error {
	return nil
}

type mockMetrics struct {
	created int
}

func (m *mockMetrics) RecordAllocationCreated() {
	m.created++
}

// --- テスト ---

func validDraft() model.AllocationDraft {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return model.AllocationDraft{
		UserID:     "u1",
		RoleID:     "role-1",
		RoleName:   "r1",
		Percentage: 50,
		StartDate:  start,
	}
}

func TestService_Create_Success(t *testing.T) {
	var captured *model.Allocation
	repo := &mockAllocationRepo{
		insertFunc: func(_ context.Context, alloc *model.Allocation) (*model.Allocation, error) {
			captured = alloc
			return alloc, nil
		},
	}
	metrics := &mockMetrics{}
	svc := NewService(repo, metrics)

	users := []model.User{{ID: "u1", Name: "佐藤"}}
	got, err := svc.Create(context.Background(), "p1", validDraft(), users)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	if captured.ProjectID != "p1" {
		t.Errorf("ProjectID = %q, want %q", captured.ProjectID, "p1")
	}
	if captured.UserID != "u1" {
		t.Errorf("UserID = %q, want %q", captured.UserID, "u1")
	}
	if captured.RoleName != "r1" {
		t.Errorf("RoleName = %q, want %q", captured.RoleName, "r1")
	}
	// 入力50% → 永続化0.5
	if captured.Percentage != 0.5 {
		t.Errorf("Percentage = %v, want 0.5", captured.Percentage)
	}
	if got := captured.StartDate.Format("2006-01-02"); got != "2024-01-01" {
		t.Errorf("StartDate = %q, want %q", got, "2024-01-01")
	}
	if captured.EndDate != nil {
		t.Errorf("EndDate = %v, want nil", captured.EndDate)
	}
	if captured.ID == "" {
		t.Error("IDが採番されていない")
	}

	// ユーザー参照は渡された一覧から解決される
	if got.User == nil || got.User.Name != "佐藤" {
		t.Errorf("User = %+v, want 佐藤", got.User)
	}
	if metrics.created != 1 {
		t.Errorf("メトリクス記録回数 = %d, want 1", metrics.created)
	}
}

func TestService_Create_RestoresDisplayPercentage(t *testing.T) {
	repo := &mockAllocationRepo{}
	svc := NewService(repo, nil)

	draft := validDraft()
	draft.Percentage = 75
	got, err := svc.Create(context.Background(), "p1", draft, nil)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	if got.Percentage != 0.75 {
		t.Errorf("永続化値 = %v, want 0.75", got.Percentage)
	}
	if got.DisplayPercentage() != 75 {
		t.Errorf("表示値 = %d, want 75", got.DisplayPercentage())
	}
}

func TestService_Create_MissingRequiredFields_ReturnsValidationError(t *testing.T) {
	tests := []struct {
		name      string
		projectID string
		mutate    func(*model.AllocationDraft)
		wantField string
	}{
		{
			name:      "プロジェクト未指定",
			projectID: "",
			mutate:    func(d *model.AllocationDraft) {},
			wantField: "project",
		},
		{
			name:      "ユーザー未指定",
			projectID: "p1",
			mutate:    func(d *model.AllocationDraft) { d.UserID = "" },
			wantField: "user_id",
		},
		{
			name:      "役割名未指定",
			projectID: "p1",
			mutate:    func(d *model.AllocationDraft) { d.RoleName = "" },
			wantField: "role_name",
		},
		{
			name:      "開始日未指定",
			projectID: "p1",
			mutate:    func(d *model.AllocationDraft) { d.StartDate = time.Time{} },
			wantField: "start_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAllocationRepo{}
			svc := NewService(repo, nil)

			draft := validDraft()
			tt.mutate(&draft)

			_, err := svc.Create(context.Background(), tt.projectID, draft, nil)
			if err == nil {
				t.Fatal("検証エラーが返されるべき")
			}

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("APIErrorであるべき: %v", err)
			}
			if apiErr.Code != model.ErrCodeValidationFailed {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
			}

			// 検証失敗時は挿入が呼ばれない
			if repo.insertCalls != 0 {
				t.Errorf("挿入呼び出し回数 = %d, want 0", repo.insertCalls)
			}
		})
	}
}

func TestService_Create_PercentageOutOfRange_ReturnsError(t *testing.T) {
	for _, pct := range []int{0, -1, 101} {
		repo := &mockAllocationRepo{}
		svc := NewService(repo, nil)

		draft := validDraft()
		draft.Percentage = pct

		_, err := svc.Create(context.Background(), "p1", draft, nil)
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidPercentage {
			t.Errorf("percentage=%d: err = %v, want INVALID_PERCENTAGE", pct, err)
		}
		if repo.insertCalls != 0 {
			t.Errorf("percentage=%d: 挿入が呼ばれてはいけない", pct)
		}
	}
}

func TestService_Create_EndBeforeStart_ReturnsError(t *testing.T) {
	repo := &mockAllocationRepo{}
	svc := NewService(repo, nil)

	draft := validDraft()
	end := draft.StartDate.AddDate(0, 0, -1)
	draft.EndDate = &end

	_, err := svc.Create(context.Background(), "p1", draft, nil)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidDateRange {
		t.Errorf("err = %v, want INVALID_DATE_RANGE", err)
	}
}

func TestService_Create_RepositoryError_ReturnsError(t *testing.T) {
	repo := &mockAllocationRepo{
		insertFunc: func(_ context.Context, _ *model.Allocation) (*model.Allocation, error) {
			return nil, errors.New("db down")
		},
	}
	metrics := &mockMetrics{}
	svc := NewService(repo, metrics)

	_, err := svc.Create(context.Background(), "p1", validDraft(), nil)
	if err == nil {
		t.Fatal("エラーが返されるべき")
	}
	if metrics.created != 0 {
		t.Errorf("失敗時にメトリクスを記録してはいけない")
	}
}

func TestService_ListByProject_ResolvesUserReferences(t *testing.T) {
	repo := &mockAllocationRepo{
		listByProjectFunc: func(_ context.Context, _ string) ([]model.Allocation, error) {
			return []model.Allocation{
				{ID: "a1", UserID: "u1"},
				{ID: "a2", UserID: "u-missing"},
			}, nil
		},
	}
	svc := NewService(repo, nil)

	users := []model.User{{ID: "u1", Name: "田中"}}
	got, err := svc.ListByProject(context.Background(), "p1", users)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	if got[0].User == nil || got[0].User.Name != "田中" {
		t.Errorf("got[0].User = %+v, want 田中", got[0].User)
	}
	// 一覧に存在しないユーザーはnilのまま
	if got[1].User != nil {
		t.Errorf("got[1].User = %+v, want nil", got[1].User)
	}
}
