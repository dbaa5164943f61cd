// Package post は投稿のCRUDと所有者チェックのビジネスロジックを提供する。
package post

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/miniblog/internal/model"
	"github.com/hitoshi/miniblog/internal/repository"
	"github.com/hitoshi/miniblog/internal/security"
)

// CreateInput は投稿作成の入力。Contentは省略可能。
type CreateInput struct {
	Title   string
	Content *string
}

// UpdateInput は投稿更新の入力。更新時はContentも必須。
type UpdateInput struct {
	Title   string
	Content string
}

// Service は投稿に関するビジネスロジックを提供する。
type Service struct {
	postRepo  repository.PostRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(postRepo repository.PostRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		postRepo:  postRepo,
		sanitizer: sanitizer,
	}
}

// List は全投稿を著者名付きで新しい順に返す。認証不要。
func (s *Service) List(ctx context.Context) ([]model.PostWithAuthor, error) {
	posts, err := s.postRepo.ListWithAuthor(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetByID は指定IDの投稿を著者名付きで返す。認証不要。
func (s *Service) GetByID(ctx context.Context, postID string) (*model.PostWithAuthor, error) {
	p, err := s.postRepo.FindByIDWithAuthor(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if p == nil {
		return nil, model.NewPostNotFoundError()
	}
	return p, nil
}

// Create は新規投稿を作成する。
// AuthorIDは検証済みトークンのクレームからのみ設定する。クライアント入力の
// 著者指定は存在せず、なりすまし投稿は構造上不可能。
func (s *Service) Create(ctx context.Context, sess *model.Session, in CreateInput) (*model.Post, error) {
	if sess == nil || !sess.Present {
		return nil, model.NewUnauthenticatedError()
	}
	if !sess.Authenticated() {
		return nil, model.NewTokenRejectedError("create")
	}

	p := &model.Post{
		ID:        uuid.New().String(),
		Title:     s.sanitizer.Sanitize(in.Title),
		CreatedAt: time.Now(),
		Edited:    false,
		AuthorID:  sess.UserID,
	}
	if in.Content != nil {
		content := s.sanitizer.Sanitize(*in.Content)
		p.Content = &content
	}

	if err := s.postRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	slog.Info("post created",
		slog.String("post_id", p.ID),
		slog.String("author_id", p.AuthorID),
	)
	return p, nil
}

// Update は所有者本人による投稿の更新を行う。
// 新旧の値が同一でもeditedは必ずtrueになる。
func (s *Service) Update(ctx context.Context, sess *model.Session, postID string, in UpdateInput) (*model.Post, error) {
	if _, err := s.requireOwner(ctx, sess, postID, "update"); err != nil {
		return nil, err
	}

	updated, err := s.postRepo.Update(ctx, postID, s.sanitizer.Sanitize(in.Title), s.sanitizer.Sanitize(in.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	if updated == nil {
		return nil, model.NewPostNotFoundError()
	}

	slog.Info("post updated", slog.String("post_id", postID))
	return updated, nil
}

// Delete は所有者本人による投稿の削除を行い、削除した行の内容を返す。
func (s *Service) Delete(ctx context.Context, sess *model.Session, postID string) (*model.Post, error) {
	p, err := s.requireOwner(ctx, sess, postID, "delete")
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return nil, fmt.Errorf("failed to delete post: %w", err)
	}

	slog.Info("post deleted", slog.String("post_id", postID))
	return p, nil
}

// requireOwner はミューテーションの認可ゲートを順に適用する。
// クッキー存在 → トークン検証 → 投稿存在 → 所有者一致 の順で、
// 各段階の失敗はそこで終端となる。通過した場合は対象投稿を返す。
func (s *Service) requireOwner(ctx context.Context, sess *model.Session, postID, action string) (*model.Post, error) {
	if sess == nil || !sess.Present {
		return nil, model.NewUnauthenticatedError()
	}
	if !sess.Authenticated() {
		return nil, model.NewTokenRejectedError(action)
	}

	p, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if p == nil {
		return nil, model.NewPostNotFoundError()
	}

	if p.AuthorID != sess.UserID {
		slog.Warn("ownership check failed",
			slog.String("post_id", postID),
			slog.String("user_id", sess.UserID),
		)
		return nil, model.NewNotOwnerError(action)
	}

	return p, nil
}
