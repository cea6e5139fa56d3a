package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brunomgama/utility-tool-sub002/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	UserFinder        middleware.UserFinder
	GuardConfig       middleware.GuardConfig
	CSRFConfig        middleware.CSRFConfig
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Metrics           middleware.RequestRecorder

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドメインサービス
	ProjectService    ProjectServiceInterface
	AllocationService AllocationServiceInterface
	TaskService       TaskServiceInterface
	GoalService       GoalServiceInterface
	TimesheetService  TimesheetServiceInterface
	UserService       UserServiceInterface
	ChatClient        ChatClientInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → （ルートごとのガード） → CSRF → RateLimit
//
// 認証ルート（/auth/*）とヘルスチェックはガードの外に配置する。
// オンボーディングはセッションのみを要求し、ユーザーレコードの存在は要求しない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	projectHandler := NewProjectHandler(deps.ProjectService)
	allocHandler := NewAllocationHandler(deps.AllocationService, deps.UserService)
	taskHandler := NewTaskHandler(deps.TaskService)
	goalHandler := NewGoalHandler(deps.GoalService)
	timesheetHandler := NewTimesheetHandler(deps.TimesheetService)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig)
	chatHandler := NewChatHandler(deps.ChatClient)

	// --- ガード不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// 認証ルート（OIDCフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.Login)
		r.Get("/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- セッションのみ必要なルート ---
	// オンボーディングはユーザーレコード作成前に呼ばれるため、
	// ガードの存在チェックを通さない
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionOnlyMiddleware(deps.SessionFinder, deps.GuardConfig))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/api/onboarding", userHandler.Onboard)
	})

	// --- ガードが必要なルート ---
	// ミドルウェアスタック: Guard → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewGuardMiddleware(deps.SessionFinder, deps.UserFinder, deps.GuardConfig))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// プロジェクト管理
		r.Route("/api/projects", func(r chi.Router) {
			r.Get("/", projectHandler.ListProjects)
			r.With(deps.RateLimiter.WriteMiddleware()).Post("/", projectHandler.CreateProject)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projectHandler.GetProject)

				r.Get("/roles", projectHandler.ListRoles)
				r.With(deps.RateLimiter.WriteMiddleware()).Post("/roles", projectHandler.CreateRole)

				r.Get("/allocations", allocHandler.ListAllocations)
				r.With(deps.RateLimiter.WriteMiddleware()).Post("/allocations", allocHandler.CreateAllocation)
			})
		})

		// タスク管理
		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", taskHandler.UpdateTask)
				r.Post("/toggle", taskHandler.ToggleTask)
				r.Delete("/", taskHandler.DeleteTask)
			})
		})

		// 目標管理
		r.Route("/api/goals", func(r chi.Router) {
			r.Get("/", goalHandler.ListGoals)
			r.Post("/", goalHandler.CreateGoal)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/progress", goalHandler.UpdateProgress)
				r.Delete("/", goalHandler.DeleteGoal)
			})
		})

		// タイムシート
		r.Route("/api/timesheet", func(r chi.Router) {
			r.Get("/", timesheetHandler.GetWeek)
			r.Post("/", timesheetHandler.CreateEntry)
			r.Delete("/{id}", timesheetHandler.DeleteEntry)
		})

		// チーム一覧
		r.Get("/api/team", userHandler.ListTeam)

		// チャット中継
		r.Post("/api/send-message", chatHandler.SendMessage)

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}
