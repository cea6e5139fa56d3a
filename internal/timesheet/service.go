// Package timesheet は工数記録（タイムシート）のドメインロジックを提供する。
package timesheet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
	"github.com/brunomgama/utility-tool-sub002/internal/repository"
	"github.com/brunomgama/utility-tool-sub002/internal/security"
)

// 1日の工数上限（時間）
const maxHoursPerEntry = 24

// Service はタイムシートのサービス層。
type Service struct {
	entryRepo repository.TimeEntryRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(entryRepo repository.TimeEntryRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		entryRepo: entryRepo,
		sanitizer: sanitizer,
	}
}

// CreateInput は工数記録の入力。
type CreateInput struct {
	ProjectID string
	EntryDate time.Time
	Hours     float64
	Note      string
}

// WeekSummary は1週間分の工数記録と合計。
type WeekSummary struct {
	WeekStart  time.Time
	Entries    []model.TimeEntry
	TotalHours float64
}

// Create は工数記録を作成する。
// プロジェクト・日付は必須、工数は0より大きく24時間以内。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.TimeEntry, error) {
	switch {
	case input.ProjectID == "":
		return nil, model.NewValidationError("project_id")
	case input.EntryDate.IsZero():
		return nil, model.NewValidationError("entry_date")
	}
	if input.Hours <= 0 || input.Hours > maxHoursPerEntry {
		return nil, model.NewValidationError("hours")
	}

	entry := &model.TimeEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProjectID: input.ProjectID,
		EntryDate: input.EntryDate,
		Hours:     input.Hours,
		Note:      s.sanitizer.Sanitize(input.Note),
		CreatedAt: time.Now(),
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("工数記録の作成に失敗しました: %w", err)
	}
	return entry, nil
}

// Week は指定日を含む週（月曜始まり）の工数記録と合計を返す。
func (s *Service) Week(ctx context.Context, userID string, anyDay time.Time) (*WeekSummary, error) {
	start := WeekStart(anyDay)
	end := start.AddDate(0, 0, 6)

	entries, err := s.entryRepo.ListByUserBetween(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("工数記録の取得に失敗しました: %w", err)
	}

	var total float64
	for _, e := range entries {
		total += e.Hours
	}

	return &WeekSummary{
		WeekStart:  start,
		Entries:    entries,
		TotalHours: total,
	}, nil
}

// Delete は本人の工数記録を削除する。他人の記録は存在しないものとして扱う。
func (s *Service) Delete(ctx context.Context, userID, entryID string) error {
	entry, err := s.entryRepo.FindByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("工数記録の取得に失敗しました: %w", err)
	}
	if entry == nil || entry.UserID != userID {
		return model.NewTimeEntryNotFoundError(entryID)
	}

	if err := s.entryRepo.DeleteByID(ctx, entryID); err != nil {
		return fmt.Errorf("工数記録の削除に失敗しました: %w", err)
	}
	return nil
}

// WeekStart は指定日を含む週の月曜日（時刻は切り捨て）を返す。
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	weekday := int(day.Weekday())
	// time.Weekdayは日曜=0のため月曜始まりに補正する
	offset := (weekday + 6) % 7
	return day.AddDate(0, 0, -offset)
}
