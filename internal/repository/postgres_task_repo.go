package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, project_id, title, description, priority, status, due_date, created_at, updated_at
		 FROM tasks WHERE id = $1`,
		id,
	)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}
	return task, nil
}

// ListByUser はユーザーのタスク一覧を作成日降順で返す。
func (r *PostgresTaskRepo) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, project_id, title, description, priority, status, due_date, created_at, updated_at
		 FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}

	return tasks, nil
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, project_id, title, description, priority, status, due_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID, task.UserID, task.ProjectID, task.Title, task.Description,
		task.Priority, task.Status, nullableDate(task.DueDate), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// Update は既存タスクを上書き更新する。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = $2, description = $3, priority = $4, status = $5, due_date = $6, project_id = $7, updated_at = $8
		 WHERE id = $1`,
		task.ID, task.Title, task.Description, task.Priority, task.Status,
		nullableDate(task.DueDate), task.ProjectID, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task not found: %s", task.ID)
	}
	return nil
}

// DeleteByID は指定IDのタスクを削除する。
func (r *PostgresTaskRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// DeleteByUserID はユーザーの全タスクを削除する。
func (r *PostgresTaskRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user tasks: %w", err)
	}
	return nil
}

// scanTask は1行をスキャンする。
func scanTask(row rowScanner) (*model.Task, error) {
	t := &model.Task{}
	var projectID sql.NullString
	var dueDate sql.NullTime
	if err := row.Scan(
		&t.ID, &t.UserID, &projectID, &t.Title, &t.Description,
		&t.Priority, &t.Status, &dueDate, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if projectID.Valid {
		s := projectID.String
		t.ProjectID = &s
	}
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	return t, nil
}

// nullableDate は日付ポインタをISO形式の文字列またはNULLに変換する。
func nullableDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(isoDate)
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
