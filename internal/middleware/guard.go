// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/brunomgama/utility-tool-sub002/internal/model"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッションを格納するためのキー。
var sessionContextKey = contextKey("session")

// userContextKey はリクエストコンテキストにユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// UserFinder はユーザー存在チェックに必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindBySubject(ctx context.Context, subject string) (*model.User, error)
}

// GuardConfig はガードのリダイレクト先を保持する。
type GuardConfig struct {
	LoginURL      string // セッションが無い場合のリダイレクト先
	OnboardingURL string // ユーザーレコードが無い場合のリダイレクト先
}

// NewGuardMiddleware は保護されたルートのアクセスガードを返す。
//
//  1. Cookieのセッションが無い・期限切れの場合はログインへリダイレクトする。
//     このパスではユーザーレコードの照会は行わない。
//  2. セッションのsubjectでユーザーレコードを1件照会する。
//  3. 照会エラーまたは該当行なしの場合はオンボーディングへリダイレクトする。
//     ストレージ障害と未登録ユーザーはここで区別されない（現行仕様の踏襲）。
//     障害を観測できるよう、エラーはログには残す。
//  4. それ以外はセッションとユーザーをコンテキストに注入して続行する。
//
// リダイレクトは描画に対して終端的であり、ハンドラーは実行されない。
func NewGuardMiddleware(sessions SessionFinder, users UserFinder, config GuardConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Cookieからセッションを取得
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, config.LoginURL, http.StatusSeeOther)
				return
			}

			session, err := sessions.FindByID(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				http.Redirect(w, r, config.LoginURL, http.StatusSeeOther)
				return
			}
			if session == nil {
				http.Redirect(w, r, config.LoginURL, http.StatusSeeOther)
				return
			}

			// 2-3. subjectでユーザーレコードの存在を確認
			user, err := users.FindBySubject(r.Context(), session.Subject)
			if err != nil {
				slog.Error("failed to find user during guard check",
					slog.String("subject", session.Subject),
					slog.String("error", err.Error()),
				)
				http.Redirect(w, r, config.OnboardingURL, http.StatusSeeOther)
				return
			}
			if user == nil {
				http.Redirect(w, r, config.OnboardingURL, http.StatusSeeOther)
				return
			}

			// 4. セッションとユーザーをコンテキストに注入
			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			ctx = context.WithValue(ctx, userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewSessionOnlyMiddleware はセッションの有無だけを検証するガードを返す。
// オンボーディングエンドポイントのように、ユーザーレコードが
// まだ存在しない段階で呼ばれるルートに使用する。
func NewSessionOnlyMiddleware(sessions SessionFinder, config GuardConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, config.LoginURL, http.StatusSeeOther)
				return
			}

			session, err := sessions.FindByID(r.Context(), cookie.Value)
			if err != nil || session == nil {
				if err != nil {
					slog.Error("failed to find session",
						slog.String("error", err.Error()),
					)
				}
				http.Redirect(w, r, config.LoginURL, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext はリクエストコンテキストからセッションを取得する。
// ガードを通過したリクエストでのみ有効。
func SessionFromContext(ctx context.Context) (*model.Session, error) {
	session, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok || session == nil {
		return nil, fmt.Errorf("session not found in context")
	}
	return session, nil
}

// UserFromContext はリクエストコンテキストからユーザーを取得する。
// ガードを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	user, err := UserFromContext(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// ContextWithUser はコンテキストにセッションとユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, session *model.Session, user *model.User) context.Context {
	ctx = context.WithValue(ctx, sessionContextKey, session)
	return context.WithValue(ctx, userContextKey, user)
}
