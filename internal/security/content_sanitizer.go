// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は投稿本文を表示用にサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// 掲示板の投稿はプレーンテキストとして扱うため、bluemondayの
// StrictPolicyで全てのマークアップを除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// forbiddenWord は投稿に表示してはならない禁止語。
	forbiddenWord = "うんち"
	// maskedWord は禁止語の代わりに表示する文字列。
	maskedWord = "禁句だぞ…"
)

// ContentSanitizerService は投稿本文のサニタイズ機能のインターフェースを定義する。
// 投稿一覧の描画時に使用される。
type ContentSanitizerService interface {
	// Sanitize は投稿本文をサニタイズして表示用の安全なHTML断片を返す。
	// 全てのタグを除去し、禁止語をマスクし、URLエンコード由来の「+」を
	// 空白として描画する。空文字列の入力には空文字列を返す。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全ての要素・属性を除去し、テキストのみを残す。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は投稿本文をサニタイズして表示用の安全なHTML断片を返す。
// 戻り値はエンティティエスケープ済みのため、テンプレートには
// template.HTMLとして埋め込むこと（二重エスケープを避ける）。
func (s *contentSanitizer) Sanitize(raw string) string {
	out := s.policy.Sanitize(raw)
	out = strings.ReplaceAll(out, forbiddenWord, maskedWord)
	out = strings.ReplaceAll(out, "+", " ")
	return out
}
