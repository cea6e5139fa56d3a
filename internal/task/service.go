// Package task はユーザーの作業タスク管理のドメインロジックを提供する。
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
	"github.com/brunomgama/utility-tool-sub002/internal/repository"
	"github.com/brunomgama/utility-tool-sub002/internal/security"
)

// Service はタスク管理のサービス層。
// 全操作は操作ユーザー自身のタスクに限定される。
type Service struct {
	taskRepo  repository.TaskRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(taskRepo repository.TaskRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		taskRepo:  taskRepo,
		sanitizer: sanitizer,
	}
}

// CreateInput はタスク作成の入力。
type CreateInput struct {
	Title       string
	Description string
	Priority    model.TaskPriority
	ProjectID   *string
	DueDate     *time.Time
}

// UpdateInput はタスク更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title       *string
	Description *string
	Priority    *model.TaskPriority
	Status      *model.TaskStatus
	DueDate     *time.Time
}

// Create はユーザーのタスクを作成する。Titleは必須。
// 優先度が未指定の場合はmediumになる。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, model.NewValidationError("title")
	}

	priority := input.Priority
	if priority == "" {
		priority = model.TaskPriorityMedium
	}
	if !isValidPriority(priority) {
		return nil, model.NewValidationError("priority")
	}

	now := time.Now()
	task := &model.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		ProjectID:   input.ProjectID,
		Title:       s.sanitizer.SanitizeStrict(input.Title),
		Description: s.sanitizer.Sanitize(input.Description),
		Priority:    priority,
		Status:      model.TaskStatusTodo,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}
	return task, nil
}

// List はユーザーのタスク一覧を作成日降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]model.Task, error) {
	tasks, err := s.taskRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	return tasks, nil
}

// Update は指定タスクを更新する。
// 他ユーザーのタスクは存在しないものとして扱う。
func (s *Service) Update(ctx context.Context, userID, taskID string, input UpdateInput) (*model.Task, error) {
	task, err := s.findOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, model.NewValidationError("title")
		}
		task.Title = s.sanitizer.SanitizeStrict(*input.Title)
	}
	if input.Description != nil {
		task.Description = s.sanitizer.Sanitize(*input.Description)
	}
	if input.Priority != nil {
		if !isValidPriority(*input.Priority) {
			return nil, model.NewValidationError("priority")
		}
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		if !isValidStatus(*input.Status) {
			return nil, model.NewValidationError("status")
		}
		task.Status = *input.Status
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	task.UpdatedAt = time.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}
	return task, nil
}

// ToggleComplete はタスクの完了状態を切り替える。
// done以外のタスクはdoneへ、doneのタスクはtodoへ戻る。
func (s *Service) ToggleComplete(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.findOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status == model.TaskStatusDone {
		task.Status = model.TaskStatusTodo
	} else {
		task.Status = model.TaskStatusDone
	}
	task.UpdatedAt = time.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}
	return task, nil
}

// Delete は指定タスクを削除する。
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	if _, err := s.findOwned(ctx, userID, taskID); err != nil {
		return err
	}
	if err := s.taskRepo.DeleteByID(ctx, taskID); err != nil {
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	return nil
}

// findOwned は操作ユーザー所有のタスクを取得する。
// 存在しない、または他ユーザーのタスクの場合はTASK_NOT_FOUNDを返す。
func (s *Service) findOwned(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if task == nil || task.UserID != userID {
		return nil, model.NewTaskNotFoundError(taskID)
	}
	return task, nil
}

func isValidPriority(p model.TaskPriority) bool {
	switch p {
	case model.TaskPriorityLow, model.TaskPriorityMedium, model.TaskPriorityHigh:
		return true
	}
	return false
}

func isValidStatus(s model.TaskStatus) bool {
	switch s {
	case model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusDone:
		return true
	}
	return false
}
