package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
	"github.com/brunomgama/utility-tool-sub002/internal/security"
)

// --- モック ---

type mockProjectRepo struct {
	findByIDFunc   func(ctx context.Context, id string) (*model.Project, error)
	listFunc       func(ctx context.Context) ([]model.Project, error)
	createFunc     func(ctx context.Context, project *model.Project) error
	listRolesFunc  func(ctx context.Context, projectID string) ([]model.Role, error)
	createRoleFunc func(ctx context.Context, role *model.Role) error
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Project{ID: id}, nil
}

func (m *mockProjectRepo) List(ctx context.Context) ([]model.Project, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockProjectRepo) Create(ctx context.Context, project *model.Project) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, project)
	}
	return nil
}

func (m *mockProjectRepo) ListRoles(ctx context.Context, projectID string) ([]model.Role, error) {
	if m.listRolesFunc != nil {
		return m.listRolesFunc(ctx, projectID)
	}
	return nil, nil
}

func (m *mockProjectRepo) CreateRole(ctx context.Context, role *model.Role) error {
	if m.createRoleFunc != nil {
		return m.createRoleFunc(ctx, role)
	}
	return nil
}

// --- テスト ---

func newTestService(repo *mockProjectRepo) *Service {
	return NewService(repo, security.NewContentSanitizer())
}

func TestService_Create_Success(t *testing.T) {
	var captured *model.Project
	repo := &mockProjectRepo{
		createFunc: func(_ context.Context, p *model.Project) error {
			captured = p
			return nil
		},
	}
	svc := newTestService(repo)

	got, err := svc.Create(context.Background(), CreateInput{
		Name:      "社内ポータル刷新",
		Client:    "Acme Corp",
		Country:   "JP",
		Budget:    500000,
		Currency:  "JPY",
		StartDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	if captured == nil {
		t.Fatal("リポジトリのCreateが呼ばれていない")
	}
	if got.Status != model.ProjectStatusActive {
		t.Errorf("Status = %q, want active", got.Status)
	}
	if got.ID == "" {
		t.Error("IDが採番されていない")
	}
}

func TestService_Create_StripsScriptFromName(t *testing.T) {
	repo := &mockProjectRepo{}
	svc := newTestService(repo)

	got, err := svc.Create(context.Background(), CreateInput{
		Name:      `案件<script>alert(1)</script>`,
		StartDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if got.Name != "案件" {
		t.Errorf("Name = %q, want %q", got.Name, "案件")
	}
}

func TestService_Create_MissingRequiredFields_ReturnsValidationError(t *testing.T) {
	svc := newTestService(&mockProjectRepo{})

	_, err := svc.Create(context.Background(), CreateInput{
		StartDate: time.Now(),
	})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("err = %v, want VALIDATION_FAILED", err)
	}
}

func TestService_Get_Missing_ReturnsNotFound(t *testing.T) {
	repo := &mockProjectRepo{
		findByIDFunc: func(_ context.Context, _ string) (*model.Project, error) {
			return nil, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Get(context.Background(), "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProjectNotFound {
		t.Errorf("err = %v, want PROJECT_NOT_FOUND", err)
	}
}

func TestService_ListRoles_MissingProject_ReturnsNotFound(t *testing.T) {
	repo := &mockProjectRepo{
		findByIDFunc: func(_ context.Context, _ string) (*model.Project, error) {
			return nil, nil
		},
		listRolesFunc: func(_ context.Context, _ string) ([]model.Role, error) {
			t.Fatal("存在しないプロジェクトで役割取得が呼ばれてはいけない")
			return nil, nil
		},
	}
	svc := newTestService(repo)

	if _, err := svc.ListRoles(context.Background(), "missing"); err == nil {
		t.Error("エラーが返されるべき")
	}
}

func TestService_CreateRole_Success(t *testing.T) {
	var captured *model.Role
	repo := &mockProjectRepo{
		createRoleFunc: func(_ context.Context, r *model.Role) error {
			captured = r
			return nil
		},
	}
	svc := newTestService(repo)

	got, err := svc.CreateRole(context.Background(), "p1", "バックエンドエンジニア", 8000)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if captured.ProjectID != "p1" {
		t.Errorf("ProjectID = %q, want p1", captured.ProjectID)
	}
	if got.HourlyRate != 8000 {
		t.Errorf("HourlyRate = %v, want 8000", got.HourlyRate)
	}
}
