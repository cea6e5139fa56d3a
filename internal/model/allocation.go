package model

import "time"

// Allocation はユーザーのプロジェクト役割への時間配分を表す。
// Percentageは0〜1の割合として永続化され、表示時に0〜100に変換される。
type Allocation struct {
	ID         string
	ProjectID  string
	UserID     string
	RoleID     string
	RoleName   string
	Percentage float64 // 永続化形式: 0〜1の割合
	StartDate  time.Time
	EndDate    *time.Time
	CreatedAt  time.Time

	// User は呼び出し元が保持するユーザー一覧から解決された非正規化参照。
	// 再フェッチしない設計のため、一覧が最新であることは呼び出し元が保証する。
	User *User
}

// DisplayPercentage は永続化された割合を0〜100の表示値に変換して返す。
func (a *Allocation) DisplayPercentage() int {
	return int(a.Percentage*100 + 0.5)
}

// AllocationDraft はアロケーション登録ダイアログの未保存フォーム状態を表す。
// Percentageはユーザー入力のままの0〜100整数で保持する。
type AllocationDraft struct {
	UserID     string
	RoleID     string
	RoleName   string
	Percentage int // 入力形式: 1〜100
	StartDate  time.Time
	EndDate    *time.Time
}

// DefaultAllocationDraft は登録成功後にフォームへ戻すデフォルト値を返す。
// ユーザー・役割は未選択、割合100%、開始・終了は当日。
func DefaultAllocationDraft(now time.Time) AllocationDraft {
	end := now
	return AllocationDraft{
		Percentage: 100,
		StartDate:  now,
		EndDate:    &end,
	}
}
