package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/miniblog/internal/model"
	"github.com/hitoshi/miniblog/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	createFn      func(ctx context.Context, user *model.User) error
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

type mockSigner struct {
	signFn func(userID string) (string, error)
}

func (m *mockSigner) Sign(userID string) (string, error) {
	if m.signFn != nil {
		return m.signFn(userID)
	}
	return "signed-token", nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ TokenSigner = (*mockSigner)(nil)

// --- テスト ---

func TestRegister_Success_StripsPasswordHash(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(_ context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := NewService(repo, &mockSigner{})

	user, signed, err := svc.Register(context.Background(), RegisterInput{
		Name:     "alice",
		Email:    "a@a.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if user.PasswordHash != "" {
		t.Error("returned user must not carry the password hash")
	}
	if signed != "" {
		t.Errorf("token = %q, want empty without loginDirectly", signed)
	}
	if user.ID == "" {
		t.Error("expected a generated user ID")
	}

	// ストアには平文ではなくハッシュが渡されること
	if created == nil {
		t.Fatal("expected Create to be called")
	}
	if created.PasswordHash == "" || created.PasswordHash == "correct-password" {
		t.Errorf("stored password hash = %q, must be a bcrypt hash", created.PasswordHash)
	}
	if !VerifyPassword(created.PasswordHash, "correct-password") {
		t.Error("stored hash should verify against the original password")
	}
}

func TestRegister_LoginDirectly_IssuesToken(t *testing.T) {
	repo := &mockUserRepo{}
	signer := &mockSigner{
		signFn: func(userID string) (string, error) {
			return "token-for-" + userID, nil
		},
	}
	svc := NewService(repo, signer)

	user, signed, err := svc.Register(context.Background(), RegisterInput{
		Name:          "alice",
		Email:         "a@a.com",
		Password:      "correct-password",
		LoginDirectly: true,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if signed != "token-for-"+user.ID {
		t.Errorf("token = %q, want token signed for the new user ID", signed)
	}
}

func TestRegister_DuplicateEmail_ReturnsConstraintViolation(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			return repository.ErrDuplicateEmail
		},
	}
	svc := NewService(repo, &mockSigner{})

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name:     "alice",
		Email:    "a@a.com",
		Password: "correct-password",
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeConstraintViolation {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeConstraintViolation)
	}
}

func TestLogin_ExistingSession_ReturnsAlreadyAuthenticated(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSigner{})

	sess := &model.Session{Present: true, UserID: "user-1"}
	_, _, err := svc.Login(context.Background(), sess, "a@a.com", "whatever")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeAlreadyAuthenticated {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeAlreadyAuthenticated)
	}
	if apiErr.Message != "Session already exists" {
		t.Errorf("message = %q, want %q", apiErr.Message, "Session already exists")
	}
}

func TestLogin_UnknownEmail_ReturnsNotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSigner{})

	_, _, err := svc.Login(context.Background(), &model.Session{}, "nobody@a.com", "whatever")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUserNotFound)
	}
	if apiErr.Message != "No user with email nobody@a.com exists" {
		t.Errorf("message = %q, want the email embedded", apiErr.Message)
	}
}

func TestLogin_WrongPassword_ReturnsInvalidCredentials(t *testing.T) {
	hash, err := HashPassword("correct")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	repo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: "a@a.com", PasswordHash: hash}, nil
		},
	}
	svc := NewService(repo, &mockSigner{})

	_, _, err = svc.Login(context.Background(), &model.Session{}, "a@a.com", "wrong")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredentials)
	}
	if apiErr.Message != "Wrong password" {
		t.Errorf("message = %q, want %q", apiErr.Message, "Wrong password")
	}
}

func TestLogin_Success_ReturnsUserAndToken(t *testing.T) {
	hash, err := HashPassword("correct")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	repo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{
				ID:           "user-1",
				Name:         "alice",
				Email:        email,
				PasswordHash: hash,
				CreatedAt:    time.Now(),
			}, nil
		},
	}
	signer := &mockSigner{
		signFn: func(userID string) (string, error) {
			return "token-for-" + userID, nil
		},
	}
	svc := NewService(repo, signer)

	user, signed, err := svc.Login(context.Background(), &model.Session{}, "a@a.com", "correct")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("returned user must not carry the password hash")
	}
	if signed != "token-for-user-1" {
		t.Errorf("token = %q, want %q", signed, "token-for-user-1")
	}
}

func TestCurrentUser_NoCookie_ReturnsNoSession(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSigner{})

	_, err := svc.CurrentUser(context.Background(), &model.Session{})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeNoSession {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeNoSession)
	}
}

func TestCurrentUser_InvalidToken_ReturnsInvalidToken(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSigner{})

	sess := &model.Session{Present: true, Err: errors.New("invalid or expired token")}
	_, err := svc.CurrentUser(context.Background(), sess)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeInvalidToken {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeInvalidToken)
	}
}

func TestCurrentUser_Success_RefetchesFromStore(t *testing.T) {
	var askedID string
	repo := &mockUserRepo{
		findByIDFn: func(_ context.Context, id string) (*model.User, error) {
			askedID = id
			return &model.User{ID: id, Name: "alice", Email: "a@a.com", PasswordHash: "hash"}, nil
		},
	}
	svc := NewService(repo, &mockSigner{})

	sess := &model.Session{Present: true, UserID: "user-1"}
	user, err := svc.CurrentUser(context.Background(), sess)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// トークンに埋め込まれたIDでストアから再取得すること
	if askedID != "user-1" {
		t.Errorf("looked up ID = %q, want %q", askedID, "user-1")
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "user-1")
	}
	if user.PasswordHash != "" {
		t.Error("returned user must not carry the password hash")
	}
}

func TestRoundTrip_RegisterLogoutLogin_MeReturnsSameProfile(t *testing.T) {
	users := map[string]*model.User{}
	repo := &mockUserRepo{
		createFn: func(_ context.Context, u *model.User) error {
			if _, ok := users[u.Email]; ok {
				return repository.ErrDuplicateEmail
			}
			cp := *u
			users[u.Email] = &cp
			return nil
		},
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			if u, ok := users[email]; ok {
				cp := *u
				return &cp, nil
			}
			return nil, nil
		},
		findByIDFn: func(_ context.Context, id string) (*model.User, error) {
			for _, u := range users {
				if u.ID == id {
					cp := *u
					return &cp, nil
				}
			}
			return nil, nil
		},
	}
	svc := NewService(repo, &mockSigner{})
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, RegisterInput{
		Name:          "alice",
		Email:         "a@a.com",
		Password:      "correct-password",
		LoginDirectly: true,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	first, err := svc.CurrentUser(ctx, &model.Session{Present: true, UserID: registered.ID})
	if err != nil {
		t.Fatalf("me after register: %v", err)
	}

	// ログアウトはクッキー削除のみ。再ログインはセッション不在の状態から行う。
	loggedIn, _, err := svc.Login(ctx, &model.Session{}, "a@a.com", "correct-password")
	if err != nil {
		t.Fatalf("login after logout: %v", err)
	}

	second, err := svc.CurrentUser(ctx, &model.Session{Present: true, UserID: loggedIn.ID})
	if err != nil {
		t.Fatalf("me after login: %v", err)
	}

	if *first != *second {
		t.Errorf("profiles differ across sessions:\nfirst  = %+v\nsecond = %+v", first, second)
	}
	if second.PasswordHash != "" {
		t.Error("returned profile must not carry the password hash")
	}
}

func TestCurrentUser_UserDeleted_ReturnsInvalidToken(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSigner{})

	sess := &model.Session{Present: true, UserID: "ghost"}
	_, err := svc.CurrentUser(context.Background(), sess)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeInvalidToken {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeInvalidToken)
	}
}
