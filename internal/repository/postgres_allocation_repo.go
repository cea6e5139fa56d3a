package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
)

// isoDate はアロケーションの日付の永続化形式。
const isoDate = "2006-01-02"

// PostgresAllocationRepo はPostgreSQLを使用したアロケーションリポジトリ。
type PostgresAllocationRepo struct {
	db *sql.DB
}

// NewPostgresAllocationRepo はPostgresAllocationRepoを生成する。
func NewPostgresAllocationRepo(db *sql.DB) *PostgresAllocationRepo {
	return &PostgresAllocationRepo{db: db}
}

// Insert は1行を挿入し、挿入された行をRETURNINGで取得して返す。
// 日付はISO形式（yyyy-MM-dd）の文字列として送信し、読み取り時に日付値へ戻す。
func (r *PostgresAllocationRepo) Insert(ctx context.Context, alloc *model.Allocation) (*model.Allocation, error) {
	var endDate interface{}
	if alloc.EndDate != nil {
		endDate = alloc.EndDate.Format(isoDate)
	}

	row := r.db.QueryRowContext(ctx,
		`INSERT INTO allocations (id, project_id, user_id, role_id, role_name, percentage, start_date, end_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, project_id, user_id, role_id, role_name, percentage, start_date, end_date, created_at`,
		alloc.ID, alloc.ProjectID, alloc.UserID, alloc.RoleID, alloc.RoleName,
		alloc.Percentage, alloc.StartDate.Format(isoDate), endDate, alloc.CreatedAt,
	)

	inserted, err := scanAllocation(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert allocation: %w", err)
	}

	return inserted, nil
}

// ListByProject はプロジェクトのアロケーション一覧を開始日順で返す。
func (r *PostgresAllocationRepo) ListByProject(ctx context.Context, projectID string) ([]model.Allocation, error) {
	return r.list(ctx,
		`SELECT id, project_id, user_id, role_id, role_name, percentage, start_date, end_date, created_at
		 FROM allocations WHERE project_id = $1 ORDER BY start_date, created_at`,
		projectID,
	)
}

// ListByUser はユーザーのアロケーション一覧を開始日順で返す。
func (r *PostgresAllocationRepo) ListByUser(ctx context.Context, userID string) ([]model.Allocation, error) {
	return r.list(ctx,
		`SELECT id, project_id, user_id, role_id, role_name, percentage, start_date, end_date, created_at
		 FROM allocations WHERE user_id = $1 ORDER BY start_date, created_at`,
		userID,
	)
}

// DeleteByUserID はユーザーの全アロケーションを削除する。
func (r *PostgresAllocationRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM allocations WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user allocations: %w", err)
	}
	return nil
}

func (r *PostgresAllocationRepo) list(ctx context.Context, query string, arg interface{}) ([]model.Allocation, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer rows.Close()

	var allocs []model.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation row: %w", err)
		}
		allocs = append(allocs, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocation rows: %w", err)
	}

	return allocs, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAllocation は1行をスキャンする。
// DATE列はドライバからtime.Timeとして返るため、そのまま日付値として保持する。
func scanAllocation(row rowScanner) (*model.Allocation, error) {
	a := &model.Allocation{}
	var endDate sql.NullTime
	if err := row.Scan(
		&a.ID, &a.ProjectID, &a.UserID, &a.RoleID, &a.RoleName,
		&a.Percentage, &a.StartDate, &endDate, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	if endDate.Valid {
		d := endDate.Time
		a.EndDate = &d
	}
	return a, nil
}

// compile-time interface check
var _ AllocationRepository = (*PostgresAllocationRepo)(nil)
