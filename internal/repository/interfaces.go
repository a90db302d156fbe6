// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/suissan/secret-board/internal/model"
)

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// FindAllOrderedByIDDesc は全投稿をID降順（新着順）で取得する。
	FindAllOrderedByIDDesc(ctx context.Context) ([]*model.Post, error)

	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Post, error)

	// Create は投稿を作成する。採番されたIDと作成日時をpostに書き戻す。
	Create(ctx context.Context, post *model.Post) error

	// Delete は指定の投稿を削除する。
	Delete(ctx context.Context, post *model.Post) error
}
