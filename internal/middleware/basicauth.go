package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
)

// CredentialVerifier はユーザー名とパスワードの組を検証するインターフェース。
// auth.HtpasswdStoreの部分集合として定義する。
type CredentialVerifier interface {
	Verify(username, password string) bool
}

// NewBasicAuthMiddleware はHTTP Basic認証を行うミドルウェアを返す。
// 資格情報が未提示または不正な場合は401とWWW-Authenticateチャレンジを返す。
// 認証済みユーザー名をリクエストコンテキストに注入する。
func NewBasicAuthMiddleware(verifier CredentialVerifier, realm string) func(next http.Handler) http.Handler {
	challenge := fmt.Sprintf(`Basic realm=%q, charset="UTF-8"`, realm)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok || !verifier.Verify(username, password) {
				if ok {
					// パスワードはログに出さない
					slog.Warn("basic auth failed",
						slog.String("user", username),
						slog.String("path", r.URL.Path),
					)
				}
				w.Header().Set("WWW-Authenticate", challenge)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := ContextWithUser(r.Context(), username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
