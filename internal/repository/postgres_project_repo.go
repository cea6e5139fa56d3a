package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
)

// PostgresProjectRepo はPostgreSQLを使用したプロジェクトリポジトリ。
type PostgresProjectRepo struct {
	db *sql.DB
}

// NewPostgresProjectRepo はPostgresProjectRepoを生成する。
func NewPostgresProjectRepo(db *sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
func (r *PostgresProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	p := &model.Project{}
	var endDate sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, client, country, status, budget, currency, start_date, end_date, created_at, updated_at
		 FROM projects WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Client, &p.Country, &p.Status, &p.Budget, &p.Currency,
		&p.StartDate, &endDate, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project by ID: %w", err)
	}
	if endDate.Valid {
		d := endDate.Time
		p.EndDate = &d
	}

	return p, nil
}

// List は全プロジェクトを作成日降順で返す。
func (r *PostgresProjectRepo) List(ctx context.Context) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, client, country, status, budget, currency, start_date, end_date, created_at, updated_at
		 FROM projects ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		var endDate sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &p.Client, &p.Country, &p.Status, &p.Budget, &p.Currency,
			&p.StartDate, &endDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		if endDate.Valid {
			d := endDate.Time
			p.EndDate = &d
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project rows: %w", err)
	}

	return projects, nil
}

// Create はプロジェクトを作成する。
func (r *PostgresProjectRepo) Create(ctx context.Context, project *model.Project) error {
	var endDate interface{}
	if project.EndDate != nil {
		endDate = project.EndDate.Format(isoDate)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, client, country, status, budget, currency, start_date, end_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		project.ID, project.Name, project.Client, project.Country, project.Status,
		project.Budget, project.Currency, project.StartDate.Format(isoDate), endDate,
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// ListRoles はプロジェクトの役割一覧を返す。
func (r *PostgresProjectRepo) ListRoles(ctx context.Context, projectID string) ([]model.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, name, hourly_rate, created_at
		 FROM roles WHERE project_id = $1 ORDER BY name`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.ProjectID, &role.Name, &role.HourlyRate, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role row: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate role rows: %w", err)
	}

	return roles, nil
}

// CreateRole はプロジェクトの役割を作成する。
func (r *PostgresProjectRepo) CreateRole(ctx context.Context, role *model.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles (id, project_id, name, hourly_rate, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		role.ID, role.ProjectID, role.Name, role.HourlyRate, role.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert role: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ProjectRepository = (*PostgresProjectRepo)(nil)
