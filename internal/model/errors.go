// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, allocation, chat, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeUserNotProvisioned  = "USER_NOT_PROVISIONED"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeProjectNotFound     = "PROJECT_NOT_FOUND"
	ErrCodeTaskNotFound        = "TASK_NOT_FOUND"
	ErrCodeGoalNotFound        = "GOAL_NOT_FOUND"
	ErrCodeTimeEntryNotFound   = "TIME_ENTRY_NOT_FOUND"
	ErrCodeInvalidPercentage   = "INVALID_PERCENTAGE"
	ErrCodeInvalidDateRange    = "INVALID_DATE_RANGE"
	ErrCodeChatNotConfigured   = "CHAT_NOT_CONFIGURED"
	ErrCodeChatUpstreamFailed  = "CHAT_UPSTREAM_FAILED"
)

// NewValidationError は必須フィールド欠落などの入力検証エラーを生成する。
func NewValidationError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("必須フィールドが未入力です: %s", field),
		Category: "validation",
		Action:   "入力内容を確認してから再度お試しください。",
	}
}

// NewInvalidPercentageError は割合が1〜100の範囲外の場合のエラーを生成する。
func NewInvalidPercentageError(percentage int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPercentage,
		Message:  fmt.Sprintf("無効な割合です: %d", percentage),
		Category: "validation",
		Action:   "割合は1〜100の整数で指定してください。",
	}
}

// NewInvalidDateRangeError は終了日が開始日より前の場合のエラーを生成する。
func NewInvalidDateRangeError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDateRange,
		Message:  "終了日は開始日以降の日付を指定してください。",
		Category: "validation",
		Action:   "開始日と終了日を確認してください。",
	}
}

// NewProjectNotFoundError はプロジェクトが見つからない場合のエラーを生成する。
func NewProjectNotFoundError(projectID string) *APIError {
	return &APIError{
		Code:     ErrCodeProjectNotFound,
		Message:  fmt.Sprintf("指定されたプロジェクトが見つかりません: %s", projectID),
		Category: "validation",
		Action:   "プロジェクトIDを確認してください。",
	}
}

// NewTaskNotFoundError はタスクが見つからない場合のエラーを生成する。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: "validation",
		Action:   "タスクIDを確認してください。",
	}
}

// NewGoalNotFoundError は目標が見つからない場合のエラーを生成する。
func NewGoalNotFoundError(goalID string) *APIError {
	return &APIError{
		Code:     ErrCodeGoalNotFound,
		Message:  fmt.Sprintf("指定された目標が見つかりません: %s", goalID),
		Category: "validation",
		Action:   "目標IDを確認してください。",
	}
}

// NewTimeEntryNotFoundError は工数記録が見つからない場合のエラーを生成する。
func NewTimeEntryNotFoundError(entryID string) *APIError {
	return &APIError{
		Code:     ErrCodeTimeEntryNotFound,
		Message:  fmt.Sprintf("指定された工数記録が見つかりません: %s", entryID),
		Category: "validation",
		Action:   "工数記録IDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewUserNotProvisionedError はセッションは有効だがユーザーレコードが
// 未作成の場合のエラーを生成する。オンボーディング未完了を意味する。
func NewUserNotProvisionedError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotProvisioned,
		Message:  "ユーザー登録が完了していません。",
		Category: "auth",
		Action:   "オンボーディングを完了してください。",
	}
}
