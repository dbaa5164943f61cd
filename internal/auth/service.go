// Package auth はパスワード認証とセッション発行のビジネスロジックを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/miniblog/internal/model"
	"github.com/hitoshi/miniblog/internal/repository"
)

// TokenSigner はセッショントークンの発行に必要なインターフェース。
// token.Codecの部分集合として定義する。
type TokenSigner interface {
	Sign(userID string) (string, error)
}

// RegisterInput はユーザー登録の入力。
// フィールド制約の検証はハンドラー側で完了している前提。
type RegisterInput struct {
	Name          string
	Email         string
	Password      string
	LoginDirectly bool
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	signer   TokenSigner
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, signer TokenSigner) *Service {
	return &Service{
		userRepo: userRepo,
		signer:   signer,
	}
}

// Register は新規ユーザーを作成する。
// パスワードはbcryptでハッシュ化して保存し、返却するユーザーからはハッシュを除く。
// LoginDirectlyがtrueの場合はセッショントークンも発行して返す。
// email重複時はCONSTRAINT_VIOLATIONを返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", model.NewEmailTakenError()
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.Bool("login_directly", in.LoginDirectly),
	)

	if !in.LoginDirectly {
		return user.Sanitized(), "", nil
	}

	signed, err := s.signer.Sign(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	return user.Sanitized(), signed, nil
}

// Login はメールアドレスとパスワードでユーザーを認証し、セッショントークンを発行する。
// 既にセッションクッキーが存在する場合は再ログインを拒否する。
// アクティブなセッションをログインで無効化・更新することは意図的にできない。
func (s *Service) Login(ctx context.Context, sess *model.Session, email, password string) (*model.User, string, error) {
	if sess != nil && sess.Present {
		return nil, "", model.NewAlreadyAuthenticatedError()
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return nil, "", model.NewUserNotFoundError(email)
	}

	if !VerifyPassword(user.PasswordHash, password) {
		slog.Warn("login failed: wrong password", slog.String("user_id", user.ID))
		return nil, "", model.NewWrongPasswordError()
	}

	signed, err := s.signer.Sign(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return user.Sanitized(), signed, nil
}

// CurrentUser はセッションから現在のユーザーを取得する。
// トークンに埋め込まれたIDでストアから再取得し、クレーム以外の内容は信用しない。
func (s *Service) CurrentUser(ctx context.Context, sess *model.Session) (*model.User, error) {
	if sess == nil || !sess.Present {
		return nil, model.NewNoSessionError()
	}
	if sess.Err != nil {
		return nil, model.NewInvalidTokenError()
	}

	user, err := s.userRepo.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidTokenError()
	}

	return user.Sanitized(), nil
}
