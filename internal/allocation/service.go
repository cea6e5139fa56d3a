// Package allocation はアロケーション管理のドメインロジックを提供する。
// ユーザーをプロジェクトの役割へ、期間と割合を指定して割り当てる。
package allocation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
	"github.com/brunomgama/utility-tool-sub002/internal/repository"
)

// MetricsRecorder はアロケーション関連メトリクスの記録インターフェース。
type MetricsRecorder interface {
	RecordAllocationCreated()
}

// Service はアロケーション管理のサービス層。
type Service struct {
	allocRepo repository.AllocationRepository
	metrics   MetricsRecorder // nilの場合は記録しない
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(allocRepo repository.AllocationRepository, metrics MetricsRecorder) *Service {
	return &Service{
		allocRepo: allocRepo,
		metrics:   metrics,
	}
}

// Create はドラフトを検証し、1行を挿入して、確定したアロケーションを返す。
//
// 検証はプロジェクト・ユーザー・役割名・開始日の必須チェックで、
// 失敗は明示的な検証エラーとして返す（暗黙の無視はしない）。
// 割合は入力の1〜100を0〜1の割合に正規化して永続化し、
// 返却行では表示用に復元された値（DisplayPercentage）が使える。
//
// usersは呼び出し元が既に取得済みのユーザー一覧で、挿入行のユーザー参照は
// この一覧から解決される。一覧が最新であることは呼び出し元が保証する
// （再フェッチしない設計）。
func (s *Service) Create(ctx context.Context, projectID string, draft model.AllocationDraft, users []model.User) (*model.Allocation, error) {
	if err := validateDraft(projectID, draft); err != nil {
		return nil, err
	}

	now := time.Now()
	alloc := &model.Allocation{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		UserID:     draft.UserID,
		RoleID:     draft.RoleID,
		RoleName:   draft.RoleName,
		Percentage: float64(draft.Percentage) / 100,
		StartDate:  draft.StartDate,
		EndDate:    draft.EndDate,
		CreatedAt:  now,
	}

	inserted, err := s.allocRepo.Insert(ctx, alloc)
	if err != nil {
		slog.Error("アロケーションの登録に失敗しました",
			slog.String("project_id", projectID),
			slog.String("user_id", draft.UserID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("アロケーションの登録に失敗しました: %w", err)
	}

	inserted.User = resolveUser(users, inserted.UserID)

	if s.metrics != nil {
		s.metrics.RecordAllocationCreated()
	}

	slog.Info("アロケーションを登録しました",
		slog.String("allocation_id", inserted.ID),
		slog.String("project_id", projectID),
		slog.String("user_id", inserted.UserID),
		slog.Int("percentage", inserted.DisplayPercentage()),
	)

	return inserted, nil
}

// ListByProject はプロジェクトのアロケーション一覧を返す。
// 各行のユーザー参照はusersから解決される。
func (s *Service) ListByProject(ctx context.Context, projectID string, users []model.User) ([]model.Allocation, error) {
	allocs, err := s.allocRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("アロケーション一覧の取得に失敗しました: %w", err)
	}

	for i := range allocs {
		allocs[i].User = resolveUser(users, allocs[i].UserID)
	}

	return allocs, nil
}

// ListByUser はユーザーのアロケーション一覧を返す。
func (s *Service) ListByUser(ctx context.Context, userID string) ([]model.Allocation, error) {
	allocs, err := s.allocRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("アロケーション一覧の取得に失敗しました: %w", err)
	}
	return allocs, nil
}

// validateDraft は必須フィールドと値域を検証する。
// 欠けているフィールドを名指しした検証エラーを返す。
func validateDraft(projectID string, draft model.AllocationDraft) error {
	switch {
	case projectID == "":
		return model.NewValidationError("project")
	case draft.UserID == "":
		return model.NewValidationError("user_id")
	case draft.RoleName == "":
		return model.NewValidationError("role_name")
	case draft.StartDate.IsZero():
		return model.NewValidationError("start_date")
	}

	if draft.Percentage < 1 || draft.Percentage > 100 {
		return model.NewInvalidPercentageError(draft.Percentage)
	}

	if draft.EndDate != nil && draft.EndDate.Before(draft.StartDate) {
		return model.NewInvalidDateRangeError()
	}

	return nil
}

// resolveUser は取得済みのユーザー一覧からIDでユーザーを解決する。
// 見つからない場合はnil（参照未解決のまま返す）。
func resolveUser(users []model.User, userID string) *model.User {
	for i := range users {
		if users[i].ID == userID {
			return &users[i]
		}
	}
	return nil
}
