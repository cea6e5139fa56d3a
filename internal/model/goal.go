package model

import "time"

// Goal はユーザーの目標を表す。
// Progressは0〜100の達成率。
type Goal struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Progress    int
	DueDate     *time.Time
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TimeEntry はタイムシートの1日分の工数記録を表す。
type TimeEntry struct {
	ID        string
	UserID    string
	ProjectID string
	EntryDate time.Time
	Hours     float64
	Note      string
	CreatedAt time.Time
}
