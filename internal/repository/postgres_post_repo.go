package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/miniblog/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// ListWithAuthor は全投稿を著者名付きでcreated_at降順に取得する。
func (r *PostgresPostRepo) ListWithAuthor(ctx context.Context) ([]model.PostWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.title, p.content, p.created_at, p.edited, p.author_id, u.name
		 FROM posts p
		 INNER JOIN users u ON p.author_id = u.id
		 ORDER BY p.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []model.PostWithAuthor{}
	for rows.Next() {
		var p model.PostWithAuthor
		var content sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &content, &p.CreatedAt, &p.Edited, &p.AuthorID, &p.AuthorName); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		if content.Valid {
			p.Content = &content.String
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post rows: %w", err)
	}

	return posts, nil
}

// FindByIDWithAuthor は指定IDの投稿を著者名付きで取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByIDWithAuthor(ctx context.Context, id string) (*model.PostWithAuthor, error) {
	p := &model.PostWithAuthor{}
	var content sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.title, p.content, p.created_at, p.edited, p.author_id, u.name
		 FROM posts p
		 INNER JOIN users u ON p.author_id = u.id
		 WHERE p.id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &content, &p.CreatedAt, &p.Edited, &p.AuthorID, &p.AuthorName)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post with author: %w", err)
	}
	if content.Valid {
		p.Content = &content.String
	}

	return p, nil
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	p := &model.Post{}
	var content sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, content, created_at, edited, author_id FROM posts WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &content, &p.CreatedAt, &p.Edited, &p.AuthorID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}
	if content.Valid {
		p.Content = &content.String
	}

	return p, nil
}

// Create は投稿を作成する。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	var content sql.NullString
	if post.Content != nil {
		content = sql.NullString{String: *post.Content, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, created_at, edited, author_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		post.ID, post.Title, content, post.CreatedAt, post.Edited, post.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// Update は指定IDの投稿のタイトルと本文を更新し、editedをtrueにする。
// 新旧の値が同一でもeditedは必ずtrueになる。
func (r *PostgresPostRepo) Update(ctx context.Context, id, title, content string) (*model.Post, error) {
	p := &model.Post{}
	var updatedContent sql.NullString
	err := r.db.QueryRowContext(ctx,
		`UPDATE posts SET title = $1, content = $2, edited = TRUE
		 WHERE id = $3
		 RETURNING id, title, content, created_at, edited, author_id`,
		title, content, id,
	).Scan(&p.ID, &p.Title, &updatedContent, &p.CreatedAt, &p.Edited, &p.AuthorID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	if updatedContent.Valid {
		p.Content = &updatedContent.String
	}

	return p, nil
}

// Delete は指定IDの投稿を削除する。
func (r *PostgresPostRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("post not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
