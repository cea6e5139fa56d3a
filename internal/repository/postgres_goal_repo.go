package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
)

// PostgresGoalRepo はPostgreSQLを使用した目標リポジトリ。
type PostgresGoalRepo struct {
	db *sql.DB
}

// NewPostgresGoalRepo はPostgresGoalRepoを生成する。
func NewPostgresGoalRepo(db *sql.DB) *PostgresGoalRepo {
	return &PostgresGoalRepo{db: db}
}

// FindByID は指定IDの目標を取得する。見つからない場合はnilを返す。
func (r *PostgresGoalRepo) FindByID(ctx context.Context, id string) (*model.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, progress, due_date, completed, created_at, updated_at
		 FROM goals WHERE id = $1`,
		id,
	)
	goal, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find goal by ID: %w", err)
	}
	return goal, nil
}

// ListByUser はユーザーの目標一覧を作成日降順で返す。
func (r *PostgresGoalRepo) ListByUser(ctx context.Context, userID string) ([]model.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, progress, due_date, completed, created_at, updated_at
		 FROM goals WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal row: %w", err)
		}
		goals = append(goals, *goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goal rows: %w", err)
	}

	return goals, nil
}

// Create は目標を作成する。
func (r *PostgresGoalRepo) Create(ctx context.Context, goal *model.Goal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, title, description, progress, due_date, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		goal.ID, goal.UserID, goal.Title, goal.Description, goal.Progress,
		nullableDate(goal.DueDate), goal.Completed, goal.CreatedAt, goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	return nil
}

// Update は既存目標を上書き更新する。
func (r *PostgresGoalRepo) Update(ctx context.Context, goal *model.Goal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE goals
		 SET title = $2, description = $3, progress = $4, due_date = $5, completed = $6, updated_at = $7
		 WHERE id = $1`,
		goal.ID, goal.Title, goal.Description, goal.Progress,
		nullableDate(goal.DueDate), goal.Completed, goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("goal not found: %s", goal.ID)
	}
	return nil
}

// DeleteByID は指定IDの目標を削除する。
func (r *PostgresGoalRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

// DeleteByUserID はユーザーの全目標を削除する。
func (r *PostgresGoalRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user goals: %w", err)
	}
	return nil
}

// scanGoal は1行をスキャンする。
func scanGoal(row rowScanner) (*model.Goal, error) {
	g := &model.Goal{}
	var dueDate sql.NullTime
	if err := row.Scan(
		&g.ID, &g.UserID, &g.Title, &g.Description, &g.Progress,
		&dueDate, &g.Completed, &g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if dueDate.Valid {
		d := dueDate.Time
		g.DueDate = &d
	}
	return g, nil
}

// compile-time interface check
var _ GoalRepository = (*PostgresGoalRepo)(nil)
