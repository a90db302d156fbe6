package handler

import (
	_ "embed"
	"net/http"
)

//go:embed static/favicon.ico
var faviconData []byte

// 固定のHTMLエラーページ。MalformedRequestとUnauthorizedActionは
// どちらも同じ400ページとして返し、どの検査で失敗したかは開示しない。
const (
	badRequestPage = `<!DOCTYPE html><html lang="ja"><body>
<h1>未対応のリクエストです。</h1>
</body></html>`

	notFoundPage = `<!DOCTYPE html><html lang="ja"><body>
<h1>ページが見つかりません。</h1>
</body></html>`

	internalErrorPage = `<!DOCTYPE html><html lang="ja"><body>
<h1>サーバーエラーが発生しました。しばらく待ってから再度お試しください。</h1>
</body></html>`

	logoutPage = `<!DOCTYPE html><html lang="ja"><body>
<h1>ログアウトしました</h1>
<a href="/posts">ログイン</a>
</body></html>`
)

// writeHTMLPage は固定HTMLページを指定ステータスで書き込む。
func writeHTMLPage(w http.ResponseWriter, status int, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(page))
}

// writeBadRequest は汎用クライアントエラー（400）ページを書き込む。
func writeBadRequest(w http.ResponseWriter) {
	writeHTMLPage(w, http.StatusBadRequest, badRequestPage)
}

// writeInternalServerError は500ページを書き込む。詳細はログのみに記録する。
func writeInternalServerError(w http.ResponseWriter) {
	writeHTMLPage(w, http.StatusInternalServerError, internalErrorPage)
}

// redirectToPosts は投稿一覧へ303 See Otherでリダイレクトする。
func redirectToPosts(w http.ResponseWriter) {
	w.Header().Set("Location", "/posts")
	w.WriteHeader(http.StatusSeeOther)
}

// HandleNotFound は404ページを返す。
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeHTMLPage(w, http.StatusNotFound, notFoundPage)
}

// HandleLogout は401ページを返す。Basic認証の資格情報をブラウザに
// 破棄させるため、意図的に401を使う。
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	writeHTMLPage(w, http.StatusUnauthorized, logoutPage)
}

// HandleFavicon は埋め込みのfaviconを返す。
func HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/vnd.microsoft.icon")
	w.Write(faviconData)
}
