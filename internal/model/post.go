// Package model はドメインモデルを定義する。
package model

import "time"

// Post は掲示板への投稿を表す。
// TrackingCookieは投稿時にクライアントへ付与されていたトラッキング識別子の
// 文字列表現で、監査目的で保存する。
type Post struct {
	ID             int64
	Content        string
	PostedBy       string
	TrackingCookie string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
