// Package user はユーザーのオンボーディングと退会処理を提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
	"github.com/brunomgama/utility-tool-sub002/internal/repository"
	"github.com/brunomgama/utility-tool-sub002/internal/security"
)

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo      repository.UserRepository
	sessionRepo   repository.SessionRepository
	allocRepo     repository.AllocationRepository
	taskRepo      repository.TaskRepository
	goalRepo      repository.GoalRepository
	timeEntryRepo repository.TimeEntryRepository
	sanitizer     security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	allocRepo repository.AllocationRepository,
	taskRepo repository.TaskRepository,
	goalRepo repository.GoalRepository,
	timeEntryRepo repository.TimeEntryRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		allocRepo:     allocRepo,
		taskRepo:      taskRepo,
		goalRepo:      goalRepo,
		timeEntryRepo: timeEntryRepo,
		sanitizer:     sanitizer,
	}
}

// OnboardInput はオンボーディングの入力。
type OnboardInput struct {
	Name    string
	Country string
}

// Onboard はセッションのsubjectに対応するユーザーレコードを作成する。
// 名前が未入力の場合はIDプロバイダーのクレーム由来の表示名を使う。
// 既にユーザーが存在する場合は既存行を返す（冪等）。
func (s *Service) Onboard(ctx context.Context, session *model.Session, input OnboardInput) (*model.User, error) {
	if session == nil {
		return nil, model.NewUserNotFoundError()
	}

	name := s.sanitizer.SanitizeStrict(input.Name)
	if name == "" {
		name = session.Email
	}

	now := time.Now()
	user := &model.User{
		ID:        uuid.New().String(),
		Subject:   session.Subject,
		Email:     session.Email,
		Name:      name,
		Country:   input.Country,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("オンボーディングが完了しました",
		slog.String("user_id", created.ID),
		slog.String("subject", created.Subject),
	)

	return created, nil
}

// List は全ユーザーを名前順で返す。チーム一覧とアロケーション解決に使う。
func (s *Service) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// Withdraw はユーザーと関連データを全て削除する退会処理。
// アロケーション、タスク、目標、工数記録、セッションの順に削除し、
// 最後にユーザー本体を削除する。
func (s *Service) Withdraw(ctx context.Context, user *model.User) error {
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if err := s.allocRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return fmt.Errorf("アロケーションの削除に失敗しました: %w", err)
	}
	if err := s.taskRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	if err := s.goalRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return fmt.Errorf("目標の削除に失敗しました: %w", err)
	}
	if err := s.timeEntryRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return fmt.Errorf("工数記録の削除に失敗しました: %w", err)
	}
	if err := s.sessionRepo.DeleteBySubject(ctx, user.Subject); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}
	if err := s.userRepo.DeleteByID(ctx, user.ID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました", slog.String("user_id", user.ID))
	return nil
}
