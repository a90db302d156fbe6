// Package token は状態変更リクエストを認可するワンタイムトークンを管理する。
//
// トークンは投稿一覧の描画時に発行され、フォームに埋め込まれてクライアントへ
// 渡る。作成・削除リクエストは直前に描画されたフォームを経由したことの証明
// としてトークンを提示する必要があり、これによりCSRFを防ぐ。
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// tokenBytes はトークンの乱数長。16進文字列としては2倍の長さになる。
const tokenBytes = 8

// Registry はユーザー識別子ごとの発行済みワンタイムトークンを
// プロセス内メモリに保持する。隠れたグローバル変数ではなく、サーバー起動時に
// 生成して依存として注入する。永続化やTTLは持たず、プロセスの生存期間か
// 消費されるまで生きる。
type Registry struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewRegistry はRegistryを生成する。
func NewRegistry() *Registry {
	return &Registry{tokens: make(map[string]string)}
}

// Issue は新しいトークンを生成して identity に登録し、その値を返す。
// 既存の未消費トークンは上書きによって暗黙に無効化される。
// 1ユーザーにつき同時に有効なトークンは常に最大1つ。
func (r *Registry) Issue(identity string) (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate one-time token: %w", err)
	}
	t := hex.EncodeToString(b)

	r.mu.Lock()
	r.tokens[identity] = t
	r.mu.Unlock()

	return t, nil
}

// Verify は提示されたトークンが identity の現在の登録値と厳密に一致するかを
// 返す。状態は変更しない。未登録の場合は常にfalse。
func (r *Registry) Verify(identity, presented string) bool {
	r.mu.Lock()
	current, ok := r.tokens[identity]
	r.mu.Unlock()

	return ok && current == presented
}

// Consume は identity の登録を削除する。未登録でも何もせず正常終了する（冪等）。
// 呼び出し側は認可対象の操作が成功した後にのみConsumeを呼ぶこと。
func (r *Registry) Consume(identity string) {
	r.mu.Lock()
	delete(r.tokens, identity)
	r.mu.Unlock()
}
