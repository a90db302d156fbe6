package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/suissan/secret-board/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// FindAllOrderedByIDDesc は全投稿をID降順（新着順）で取得する。
func (r *PostgresPostRepo) FindAllOrderedByIDDesc(ctx context.Context) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, content, posted_by, tracking_cookie, created_at, updated_at
		 FROM posts ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		post := &model.Post{}
		if err := rows.Scan(
			&post.ID, &post.Content, &post.PostedBy, &post.TrackingCookie,
			&post.CreatedAt, &post.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("投稿行の読み取りに失敗しました: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("投稿一覧の走査に失敗しました: %w", err)
	}

	return posts, nil
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	post := &model.Post{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, content, posted_by, tracking_cookie, created_at, updated_at
		 FROM posts WHERE id = $1`,
		id,
	).Scan(
		&post.ID, &post.Content, &post.PostedBy, &post.TrackingCookie,
		&post.CreatedAt, &post.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}

	return post, nil
}

// Create は投稿を作成する。採番されたIDと作成日時をpostに書き戻す。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO posts (content, posted_by, tracking_cookie)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		post.Content, post.PostedBy, post.TrackingCookie,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)

	if err != nil {
		return fmt.Errorf("投稿の作成に失敗しました: %w", err)
	}

	return nil
}

// Delete は指定の投稿を削除する。
func (r *PostgresPostRepo) Delete(ctx context.Context, post *model.Post) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1`,
		post.ID,
	); err != nil {
		return fmt.Errorf("投稿の削除に失敗しました: %w", err)
	}

	return nil
}
