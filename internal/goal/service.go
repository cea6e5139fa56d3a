// Package goal はユーザーの目標管理のドメインロジックを提供する。
package goal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
	"github.com/brunomgama/utility-tool-sub002/internal/repository"
	"github.com/brunomgama/utility-tool-sub002/internal/security"
)

// Service は目標管理のサービス層。
// 全操作は操作ユーザー自身の目標に限定される。
type Service struct {
	goalRepo  repository.GoalRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(goalRepo repository.GoalRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		goalRepo:  goalRepo,
		sanitizer: sanitizer,
	}
}

// CreateInput は目標作成の入力。
type CreateInput struct {
	Title       string
	Description string
	DueDate     *time.Time
}

// Create はユーザーの目標を作成する。Titleは必須で、達成率は0から始まる。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Goal, error) {
	if input.Title == "" {
		return nil, model.NewValidationError("title")
	}

	now := time.Now()
	goal := &model.Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       s.sanitizer.SanitizeStrict(input.Title),
		Description: s.sanitizer.Sanitize(input.Description),
		Progress:    0,
		DueDate:     input.DueDate,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.goalRepo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("目標の作成に失敗しました: %w", err)
	}
	return goal, nil
}

// List はユーザーの目標一覧を作成日降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]model.Goal, error) {
	goals, err := s.goalRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("目標一覧の取得に失敗しました: %w", err)
	}
	return goals, nil
}

// UpdateProgress は目標の達成率を更新する。
// 達成率は0〜100にクランプされ、100でCompletedになる。
func (s *Service) UpdateProgress(ctx context.Context, userID, goalID string, progress int) (*model.Goal, error) {
	goal, err := s.findOwned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	goal.Progress = progress
	goal.Completed = progress == 100
	goal.UpdatedAt = time.Now()

	if err := s.goalRepo.Update(ctx, goal); err != nil {
		return nil, fmt.Errorf("目標の更新に失敗しました: %w", err)
	}
	return goal, nil
}

// Delete は指定目標を削除する。
func (s *Service) Delete(ctx context.Context, userID, goalID string) error {
	if _, err := s.findOwned(ctx, userID, goalID); err != nil {
		return err
	}
	if err := s.goalRepo.DeleteByID(ctx, goalID); err != nil {
		return fmt.Errorf("目標の削除に失敗しました: %w", err)
	}
	return nil
}

// findOwned は操作ユーザー所有の目標を取得する。
// 存在しない、または他ユーザーの目標の場合はGOAL_NOT_FOUNDを返す。
func (s *Service) findOwned(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	goal, err := s.goalRepo.FindByID(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("目標の取得に失敗しました: %w", err)
	}
	if goal == nil || goal.UserID != userID {
		return nil, model.NewGoalNotFoundError(goalID)
	}
	return goal, nil
}
