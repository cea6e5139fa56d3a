package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
)

// PostgresTimeEntryRepo はPostgreSQLを使用したタイムシートリポジトリ。
type PostgresTimeEntryRepo struct {
	db *sql.DB
}

// NewPostgresTimeEntryRepo はPostgresTimeEntryRepoを生成する。
func NewPostgresTimeEntryRepo(db *sql.DB) *PostgresTimeEntryRepo {
	return &PostgresTimeEntryRepo{db: db}
}

// FindByID は指定IDの工数記録を取得する。
func (r *PostgresTimeEntryRepo) FindByID(ctx context.Context, id string) (*model.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, project_id, entry_date, hours, note, created_at
		 FROM time_entries WHERE id = $1`,
		id,
	)
	var e model.TimeEntry
	err := row.Scan(&e.ID, &e.UserID, &e.ProjectID, &e.EntryDate, &e.Hours, &e.Note, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find time entry by ID: %w", err)
	}
	return &e, nil
}

// Create は工数記録を作成する。
func (r *PostgresTimeEntryRepo) Create(ctx context.Context, entry *model.TimeEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO time_entries (id, user_id, project_id, entry_date, hours, note, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.UserID, entry.ProjectID, entry.EntryDate.Format(isoDate),
		entry.Hours, entry.Note, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert time entry: %w", err)
	}
	return nil
}

// ListByUserBetween は期間内のユーザーの工数記録を日付順で返す。
func (r *PostgresTimeEntryRepo) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]model.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, project_id, entry_date, hours, note, created_at
		 FROM time_entries
		 WHERE user_id = $1 AND entry_date >= $2 AND entry_date <= $3
		 ORDER BY entry_date, created_at`,
		userID, from.Format(isoDate), to.Format(isoDate),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	var entries []model.TimeEntry
	for rows.Next() {
		var e model.TimeEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ProjectID, &e.EntryDate, &e.Hours, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan time entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate time entry rows: %w", err)
	}

	return entries, nil
}

// DeleteByID は指定IDの工数記録を削除する。
func (r *PostgresTimeEntryRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM time_entries WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}
	return nil
}

// DeleteByUserID はユーザーの全工数記録を削除する。
func (r *PostgresTimeEntryRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM time_entries WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user time entries: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TimeEntryRepository = (*PostgresTimeEntryRepo)(nil)
