// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindBySubject はIDプロバイダーのsubject識別子でユーザーを取得する。
	// 見つからない場合はnilを返す。ガードの存在チェックで使用する。
	FindBySubject(ctx context.Context, subject string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Create はユーザーを作成する。subjectが既に存在する場合は既存行を返す。
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// List は全ユーザーを名前順で返す。
	// アロケーションのユーザー解決に使用するチーム一覧。
	List(ctx context.Context) ([]model.User, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するallocations、tasks、goals、time_entriesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteBySubject は指定subjectの全セッションを削除する。
	DeleteBySubject(ctx context.Context, subject string) error
}

// ProjectRepository はプロジェクトデータの永続化インターフェース。
type ProjectRepository interface {
	// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Project, error)

	// List は全プロジェクトを作成日降順で返す。
	List(ctx context.Context) ([]model.Project, error)

	// Create はプロジェクトを作成する。
	Create(ctx context.Context, project *model.Project) error

	// ListRoles はプロジェクトの役割一覧を返す。
	ListRoles(ctx context.Context, projectID string) ([]model.Role, error)

	// CreateRole はプロジェクトの役割を作成する。
	CreateRole(ctx context.Context, role *model.Role) error
}

// AllocationRepository はアロケーションデータの永続化インターフェース。
type AllocationRepository interface {
	// Insert は1行を挿入し、挿入された行をRETURNINGで取得して返す。
	// PercentageとDateは永続化形式（0〜1の割合、ISO日付文字列）のまま渡す。
	Insert(ctx context.Context, alloc *model.Allocation) (*model.Allocation, error)

	// ListByProject はプロジェクトのアロケーション一覧を開始日順で返す。
	ListByProject(ctx context.Context, projectID string) ([]model.Allocation, error)

	// ListByUser はユーザーのアロケーション一覧を開始日順で返す。
	ListByUser(ctx context.Context, userID string) ([]model.Allocation, error)

	// DeleteByUserID はユーザーの全アロケーションを削除する。退会処理用。
	DeleteByUserID(ctx context.Context, userID string) error
}

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// ListByUser はユーザーのタスク一覧を作成日降順で返す。
	ListByUser(ctx context.Context, userID string) ([]model.Task, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// Update は既存タスクを上書き更新する。
	Update(ctx context.Context, task *model.Task) error

	// DeleteByID は指定IDのタスクを削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteByUserID はユーザーの全タスクを削除する。退会処理用。
	DeleteByUserID(ctx context.Context, userID string) error
}

// GoalRepository は目標データの永続化インターフェース。
type GoalRepository interface {
	// FindByID は指定IDの目標を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Goal, error)

	// ListByUser はユーザーの目標一覧を作成日降順で返す。
	ListByUser(ctx context.Context, userID string) ([]model.Goal, error)

	// Create は目標を作成する。
	Create(ctx context.Context, goal *model.Goal) error

	// Update は既存目標を上書き更新する。
	Update(ctx context.Context, goal *model.Goal) error

	// DeleteByID は指定IDの目標を削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteByUserID はユーザーの全目標を削除する。退会処理用。
	DeleteByUserID(ctx context.Context, userID string) error
}

// TimeEntryRepository はタイムシートデータの永続化インターフェース。
type TimeEntryRepository interface {
	// FindByID は指定IDの工数記録を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.TimeEntry, error)

	// Create は工数記録を作成する。
	Create(ctx context.Context, entry *model.TimeEntry) error

	// ListByUserBetween は期間内のユーザーの工数記録を日付順で返す。
	ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]model.TimeEntry, error)

	// DeleteByID は指定IDの工数記録を削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteByUserID はユーザーの全工数記録を削除する。退会処理用。
	DeleteByUserID(ctx context.Context, userID string) error
}
