// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/miniblog/internal/model"
)

// ErrDuplicateEmail はusersテーブルのemail一意制約違反を表す。
// PostgreSQL実装がunique_violation(23505)をこのエラーにマッピングする。
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。email重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// ListWithAuthor は全投稿を著者名付きでcreated_at降順に取得する。
	ListWithAuthor(ctx context.Context) ([]model.PostWithAuthor, error)

	// FindByIDWithAuthor は指定IDの投稿を著者名付きで取得する。見つからない場合はnilを返す。
	FindByIDWithAuthor(ctx context.Context, id string) (*model.PostWithAuthor, error)

	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	// 所有者チェックのためAuthorIDを含む。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// Create は投稿を作成する。
	Create(ctx context.Context, post *model.Post) error

	// Update は指定IDの投稿のタイトルと本文を更新し、editedをtrueにする。
	// 更新後の行を返す。見つからない場合はnilを返す。
	Update(ctx context.Context, id, title, content string) (*model.Post, error)

	// Delete は指定IDの投稿を削除する。
	Delete(ctx context.Context, id string) error
}
