package model

import "errors"

// 掲示板コアのエラー種別。
// クライアントへはどちらも同一の汎用クライアントエラーとして返し、
// どの検査で失敗したかは開示しない。
var (
	// ErrMalformedRequest は未対応のメソッドまたは解析できないボディを表す。
	ErrMalformedRequest = errors.New("malformed request")

	// ErrUnauthorizedAction はトークン不一致、または削除権限のない操作を表す。
	ErrUnauthorizedAction = errors.New("unauthorized action")
)
