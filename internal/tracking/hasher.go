// Package tracking はCookieで持ち回る自己検証型のトラッキング識別子を管理する。
//
// 識別子はサーバー側に保存されない。値・ユーザー識別子・秘密鍵を結合した
// 鍵付きダイジェストを識別子自体に埋め込むことで改ざんを検出する。
package tracking

import (
	"crypto/sha1"
	"encoding/hex"
)

// Hasher は値とユーザー識別子を秘密鍵付きの一方向ダイジェストへ変換する。
// 同一入力に対して常に同一出力を返す（決定的）。
// 秘密鍵はプロセス全体で固定の設定値であり、リクエスト由来の値から
// 導出してはならず、ログにも出力してはならない。
type Hasher struct {
	secretKey string
}

// NewHasher はHasherを生成する。
func NewHasher(secretKey string) *Hasher {
	return &Hasher{secretKey: secretKey}
}

// Digest は value + identity + 秘密鍵 のSHA-1ダイジェストを16進文字列で返す。
func (h *Hasher) Digest(value, identity string) string {
	sum := sha1.Sum([]byte(value + identity + h.secretKey))
	return hex.EncodeToString(sum[:])
}
