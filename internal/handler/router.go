package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/snapgram/internal/metrics"
	"github.com/hitoshi/snapgram/internal/middleware"
)

// Pinger はヘルスチェック用のDB疎通確認インターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Recorder          middleware.RequestRecorder

	// メトリクス公開
	Gatherer prometheus.Gatherer

	// ヘルスチェック
	DB Pinger

	// ドメインサービス
	AuthService      AuthServiceInterface
	UserService      UserServiceInterface
	FollowService    FollowServiceInterface
	FeedService      FeedServiceInterface
	PostService      PostServiceInterface
	StoryService     StoryServiceInterface
	HighlightService HighlightServiceInterface
	SearchService    SearchServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → Auth → RateLimit(General)
//
// 認証ルート（/api/auth/*）・/health・/metricsは認証チェーンの外に配置する。
// 投稿・ストーリー作成には作成専用レート制限を追加で適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Recorder))

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService, deps.FollowService)
	feedHandler := NewFeedHandler(deps.FeedService)
	postHandler := NewPostHandler(deps.PostService)
	storyHandler := NewStoryHandler(deps.StoryService)
	highlightHandler := NewHighlightHandler(deps.HighlightService)
	searchHandler := NewSearchHandler(deps.SearchService)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.DB))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ホームフィード
		r.Get("/api/feed", feedHandler.GetFeed)

		// プロフィール・フォロー
		r.Route("/api/users", func(r chi.Router) {
			r.Put("/profile", userHandler.UpdateProfile)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.GetProfile)
				r.Post("/follow", userHandler.Follow)
				r.Post("/unfollow", userHandler.Unfollow)
			})
		})

		// 投稿・いいね・コメント
		r.Route("/api/posts", func(r chi.Router) {
			// POST /api/posts - 投稿作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.CreateMiddleware()).Post("/", postHandler.CreatePost)

			r.Get("/user/{id}", postHandler.ListByUser)
			r.Delete("/comments/{id}", postHandler.DeleteComment)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", postHandler.GetPost)
				r.Delete("/", postHandler.DeletePost)
				r.Put("/caption", postHandler.UpdateCaption)
				r.Post("/like", postHandler.Like)
				r.Post("/unlike", postHandler.Unlike)
				r.Get("/likes", postHandler.ListLikers)
				r.Post("/comment", postHandler.AddComment)
				r.Get("/comments", postHandler.ListComments)
			})
		})

		// ストーリー
		r.Route("/api/stories", func(r chi.Router) {
			r.Get("/", storyHandler.ListActive)
			r.With(deps.RateLimiter.CreateMiddleware()).Post("/", storyHandler.CreateStory)
			r.Get("/user/{id}", storyHandler.ListByUser)
			r.Delete("/{id}", storyHandler.DeleteStory)
		})

		// ハイライト
		r.Route("/api/highlights", func(r chi.Router) {
			r.Post("/", highlightHandler.CreateHighlight)
			r.Get("/user/{id}", highlightHandler.ListByUser)
			r.Get("/{id}", highlightHandler.GetHighlight)
			r.Delete("/{id}", highlightHandler.DeleteHighlight)
		})

		// 検索
		r.Route("/api/search", func(r chi.Router) {
			r.Get("/users", searchHandler.SearchUsers)
			r.Get("/suggestions", searchHandler.Suggestions)
		})
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
