package model

import "time"

// Project はクライアント案件を表す。
type Project struct {
	ID        string
	Name      string
	Client    string
	Country   string // ISO 3166-1 alpha-2 国コード
	Status    ProjectStatus
	Budget    float64
	Currency  string // ISO 4217 通貨コード
	StartDate time.Time
	EndDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectStatus はプロジェクトの進行状態を表す。
type ProjectStatus string

const (
	// ProjectStatusActive は進行中のプロジェクト。
	ProjectStatusActive ProjectStatus = "active"
	// ProjectStatusOnHold は一時停止中のプロジェクト。
	ProjectStatusOnHold ProjectStatus = "on_hold"
	// ProjectStatusArchived は完了・アーカイブ済みのプロジェクト。
	ProjectStatusArchived ProjectStatus = "archived"
)

// Role はプロジェクト内の役割（ポジション）を表す。
// アロケーションはユーザーをこの役割に紐付ける。
type Role struct {
	ID         string
	ProjectID  string
	Name       string
	HourlyRate float64
	CreatedAt  time.Time
}
