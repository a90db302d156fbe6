// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/suissan/secret-board/internal/metrics"
	"github.com/suissan/secret-board/internal/middleware"
	"github.com/suissan/secret-board/internal/model"
	"github.com/suissan/secret-board/internal/repository"
	"github.com/suissan/secret-board/internal/security"
	"github.com/suissan/secret-board/internal/token"
	"github.com/suissan/secret-board/internal/tracking"
	"github.com/suissan/secret-board/internal/view"
)

// createdAtLayout は投稿日時の表示フォーマット。
const createdAtLayout = "2006年01月02日 15時04分05秒"

// 書き込みリクエストのボディはURLデコード後にこのパターン全体と照合する。
// (?s)により改行を含む投稿本文にもマッチする。
var (
	createBodyPattern = regexp.MustCompile(`(?s)^content=(.*)&oneTimeToken=(.*)$`)
	deleteBodyPattern = regexp.MustCompile(`(?s)^id=(.*)&oneTimeToken=(.*)$`)
)

// PostHandlerConfig はPostHandlerの設定。
type PostHandlerConfig struct {
	// AdminUser は全投稿を削除できる特権ユーザー名。
	AdminUser string
	// Location は投稿日時の表示に使うタイムゾーン。
	Location *time.Location
}

// PostHandler は投稿の一覧・作成・削除フローを調停するHTTPハンドラー。
// 外部のBasic認証が解決したユーザー識別子、トラッキング識別子、
// ワンタイムトークン、投稿リポジトリを組み合わせる。
type PostHandler struct {
	repo      repository.PostRepository
	tracker   *tracking.Manager
	tokens    *token.Registry
	sanitizer security.ContentSanitizerService
	renderer  *view.Renderer
	metrics   metrics.BoardMetrics
	config    PostHandlerConfig
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(
	repo repository.PostRepository,
	tracker *tracking.Manager,
	tokens *token.Registry,
	sanitizer security.ContentSanitizerService,
	renderer *view.Renderer,
	boardMetrics metrics.BoardMetrics,
	config PostHandlerConfig,
) *PostHandler {
	return &PostHandler{
		repo:      repo,
		tracker:   tracker,
		tokens:    tokens,
		sanitizer: sanitizer,
		renderer:  renderer,
		metrics:   boardMetrics,
		config:    config,
	}
}

// --- ビューモデル ---

// postView は投稿1件の表示用データ。
type postView struct {
	ID                 int64
	Content            template.HTML // sanitizer済みのHTML断片
	PostedBy           string
	FormattedCreatedAt string
	Deletable          bool
}

// postsPage は投稿一覧ページの描画コンテキスト。
type postsPage struct {
	User         string
	OneTimeToken string
	Posts        []postView
}

// HandlePosts は /posts のエントリポイント。
// GET: 投稿一覧の表示。POST: 投稿の作成。それ以外: 400。
func (h *PostHandler) HandlePosts(w http.ResponseWriter, r *http.Request) {
	user, trackingID, ok := h.prepare(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, user)
	case http.MethodPost:
		h.create(w, r, user, trackingID)
	default:
		writeBadRequest(w)
	}
}

// HandleDeletePost は /posts/delete のエントリポイント。
// POST: 投稿の削除。それ以外: 400。
func (h *PostHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.prepare(w, r)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		writeBadRequest(w)
		return
	}

	h.deletePost(w, r, user)
}

// prepare は認証済みユーザー名の解決とトラッキング識別子の保証を行う。
// どのフローでも最初に通る共通処理。
func (h *PostHandler) prepare(w http.ResponseWriter, r *http.Request) (string, tracking.ID, bool) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		// Basic認証ミドルウェアを通過していれば到達しない
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", tracking.ID{}, false
	}

	trackingID := h.tracker.Ensure(w, r, user)
	return user, trackingID, true
}

// list は投稿一覧を描画する。描画のたびに新しいワンタイムトークンを発行し、
// フォームに埋め込む。
func (h *PostHandler) list(w http.ResponseWriter, r *http.Request, user string) {
	start := time.Now()

	posts, err := h.repo.FindAllOrderedByIDDesc(r.Context())
	if err != nil {
		slog.Error("failed to list posts", slog.String("error", err.Error()))
		writeInternalServerError(w)
		return
	}

	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		views = append(views, postView{
			ID:                 post.ID,
			Content:            template.HTML(h.sanitizer.Sanitize(post.Content)),
			PostedBy:           post.PostedBy,
			FormattedCreatedAt: post.CreatedAt.In(h.config.Location).Format(createdAtLayout),
			Deletable:          user == post.PostedBy || user == h.config.AdminUser,
		})
	}

	oneTimeToken, err := h.tokens.Issue(user)
	if err != nil {
		slog.Error("failed to issue one-time token", slog.String("error", err.Error()))
		writeInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, "posts.html", postsPage{
		User:         user,
		OneTimeToken: oneTimeToken,
		Posts:        views,
	}); err != nil {
		slog.Error("failed to render posts page", slog.String("error", err.Error()))
		return
	}

	h.metrics.RecordRenderLatency(time.Since(start))
	slog.Info("posts viewed",
		slog.String("user", user),
		slog.String("user_agent", r.UserAgent()),
		slog.String("remote_addr", r.RemoteAddr),
	)
}

// create は投稿を作成する。トークン検証に成功した場合のみリポジトリへ書き込み、
// 書き込み成功後にトークンを消費して一覧へリダイレクトする。
func (h *PostHandler) create(w http.ResponseWriter, r *http.Request, user string, trackingID tracking.ID) {
	decoded, ok := readDecodedBody(w, r)
	if !ok {
		return
	}

	match := createBodyPattern.FindStringSubmatch(decoded)
	if match == nil {
		writeBadRequest(w)
		return
	}
	content, presentedToken := match[1], match[2]

	if !h.tokens.Verify(user, presentedToken) {
		h.metrics.RecordTokenRejected()
		writeBadRequest(w)
		return
	}

	post := &model.Post{
		Content:        content,
		PostedBy:       user,
		TrackingCookie: trackingID.String(),
	}
	if err := h.repo.Create(r.Context(), post); err != nil {
		// 失敗時はトークンを消費しない
		slog.Error("failed to create post", slog.String("error", err.Error()))
		writeInternalServerError(w)
		return
	}

	h.tokens.Consume(user)
	h.metrics.RecordPostCreated()

	slog.Info("post created",
		slog.String("user", user),
		slog.Int64("post_id", post.ID),
	)
	redirectToPosts(w)
}

// deletePost は投稿を削除する。投稿者本人または管理者のみが削除でき、
// それ以外は状態を変更せず汎用クライアントエラーを返す。
func (h *PostHandler) deletePost(w http.ResponseWriter, r *http.Request, user string) {
	decoded, ok := readDecodedBody(w, r)
	if !ok {
		return
	}

	match := deleteBodyPattern.FindStringSubmatch(decoded)
	if match == nil {
		writeBadRequest(w)
		return
	}

	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		writeBadRequest(w)
		return
	}
	presentedToken := match[2]

	if !h.tokens.Verify(user, presentedToken) {
		h.metrics.RecordTokenRejected()
		writeBadRequest(w)
		return
	}

	post, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("failed to find post", slog.String("error", err.Error()))
		writeInternalServerError(w)
		return
	}
	if post == nil {
		// 存在しないIDの削除要求。どの検査で失敗したかは開示しない。
		writeBadRequest(w)
		return
	}

	if user != post.PostedBy && user != h.config.AdminUser {
		h.metrics.RecordDeleteDenied()
		slog.Warn("delete denied",
			slog.String("user", user),
			slog.Int64("post_id", post.ID),
			slog.String("posted_by", post.PostedBy),
		)
		writeBadRequest(w)
		return
	}

	if err := h.repo.Delete(r.Context(), post); err != nil {
		// 失敗時はトークンを消費しない
		slog.Error("failed to delete post", slog.String("error", err.Error()))
		writeInternalServerError(w)
		return
	}

	h.tokens.Consume(user)
	h.metrics.RecordPostDeleted()

	slog.Info("post deleted",
		slog.String("user", user),
		slog.Int64("post_id", post.ID),
		slog.String("user_agent", r.UserAgent()),
		slog.String("remote_addr", r.RemoteAddr),
	)
	redirectToPosts(w)
}

// readDecodedBody はリクエストボディを終端まで読み込み、URLデコードして返す。
// ボディは断片的に届くため、パースの前に必ず全体をバッファする。
// デコードには「+」を空白へ変換しないPathUnescapeを使う。「+」は表示時に
// サニタイザーが空白へ正規化する。
func readDecodedBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read request body", slog.String("error", err.Error()))
		writeBadRequest(w)
		return "", false
	}

	decoded, err := url.PathUnescape(string(body))
	if err != nil {
		writeBadRequest(w)
		return "", false
	}

	return decoded, true
}
