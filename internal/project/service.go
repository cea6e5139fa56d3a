// Package project はプロジェクト管理のドメインロジックを提供する。
package project

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
	"github.com/brunomgama/utility-tool-sub002/internal/repository"
	"github.com/brunomgama/utility-tool-sub002/internal/security"
)

// Service はプロジェクト管理のサービス層。
type Service struct {
	projectRepo repository.ProjectRepository
	sanitizer   security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(projectRepo repository.ProjectRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		projectRepo: projectRepo,
		sanitizer:   sanitizer,
	}
}

// CreateInput はプロジェクト作成の入力。
type CreateInput struct {
	Name      string
	Client    string
	Country   string
	Budget    float64
	Currency  string
	StartDate time.Time
	EndDate   *time.Time
}

// Create はプロジェクトを作成する。Name・StartDateは必須。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Project, error) {
	switch {
	case input.Name == "":
		return nil, model.NewValidationError("name")
	case input.StartDate.IsZero():
		return nil, model.NewValidationError("start_date")
	}

	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, model.NewInvalidDateRangeError()
	}

	now := time.Now()
	project := &model.Project{
		ID:        uuid.New().String(),
		Name:      s.sanitizer.SanitizeStrict(input.Name),
		Client:    s.sanitizer.SanitizeStrict(input.Client),
		Country:   input.Country,
		Status:    model.ProjectStatusActive,
		Budget:    input.Budget,
		Currency:  input.Currency,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("プロジェクトの作成に失敗しました: %w", err)
	}

	return project, nil
}

// List は全プロジェクトを作成日降順で返す。
func (s *Service) List(ctx context.Context) ([]model.Project, error) {
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("プロジェクト一覧の取得に失敗しました: %w", err)
	}
	return projects, nil
}

// Get は指定IDのプロジェクトを取得する。
// 見つからない場合はPROJECT_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, projectID string) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError(projectID)
	}
	return project, nil
}

// ListRoles はプロジェクトの役割一覧を返す。
// プロジェクトの存在チェックを先に行う。
func (s *Service) ListRoles(ctx context.Context, projectID string) ([]model.Role, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}

	roles, err := s.projectRepo.ListRoles(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("役割一覧の取得に失敗しました: %w", err)
	}
	return roles, nil
}

// CreateRole はプロジェクトに役割を追加する。
func (s *Service) CreateRole(ctx context.Context, projectID, name string, hourlyRate float64) (*model.Role, error) {
	if name == "" {
		return nil, model.NewValidationError("name")
	}
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}

	role := &model.Role{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		Name:       s.sanitizer.SanitizeStrict(name),
		HourlyRate: hourlyRate,
		CreatedAt:  time.Now(),
	}

	if err := s.projectRepo.CreateRole(ctx, role); err != nil {
		return nil, fmt.Errorf("役割の作成に失敗しました: %w", err)
	}
	return role, nil
}
