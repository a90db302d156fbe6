package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/suissan/secret-board/internal/metrics"
	"github.com/suissan/secret-board/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// sql.DBのPingContextの部分集合として定義する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Authenticator middleware.CredentialVerifier
	AuthRealm     string
	RateLimiter   *middleware.RateLimiter

	// 監視
	HealthChecker HealthChecker
	Gatherer      prometheus.Gatherer
	Metrics       middleware.StatusRecorder

	// 投稿
	PostHandler *PostHandler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成した
// chi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → RequestID → Logging → Metrics → (認証ルートのみ) BasicAuth → RateLimit
//
// /health・/metrics・faviconは認証の外に配置する。
// /postsと/posts/deleteはハンドラー側でメソッドをディスパッチするため、
// 全メソッドを同一ハンドラーへ流す（未対応メソッドは400になる）。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	r.Get("/favicon.ico", HandleFavicon)

	// --- Basic認証が必要なルート ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewBasicAuthMiddleware(deps.Authenticator, deps.AuthRealm))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(deps.RateLimiter.MutationMiddleware())

		r.HandleFunc("/posts", deps.PostHandler.HandlePosts)
		r.HandleFunc("/posts/delete", deps.PostHandler.HandleDeletePost)
		r.Get("/logout", HandleLogout)
	})

	r.NotFound(HandleNotFound)

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := checker.PingContext(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
