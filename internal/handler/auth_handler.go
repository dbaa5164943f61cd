package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"unicode/utf8"

	"github.com/hitoshi/miniblog/internal/auth"
	"github.com/hitoshi/miniblog/internal/middleware"
	"github.com/hitoshi/miniblog/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in auth.RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, sess *model.Session, email, password string) (*model.User, string, error)
	CurrentUser(ctx context.Context, sess *model.Session) (*model.User, error)
}

// AuthMetrics は認証ハンドラーが記録するメトリクスのインターフェース。
type AuthMetrics interface {
	RecordLoginSuccess()
	RecordLoginFailure()
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はパスワード認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics AuthMetrics
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, metrics AuthMetrics, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		metrics: metrics,
		config:  config,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	LoginDirectly bool   `json:"loginDirectly"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register は新規ユーザーを登録する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if apiErr := validateRegisterRequest(&req); apiErr != nil {
		handleServiceError(w, apiErr)
		return
	}

	user, signed, err := h.service.Register(r.Context(), auth.RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		LoginDirectly: req.LoginDirectly,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	msg := "Registered"
	if signed != "" {
		h.setSessionCookie(w, signed)
		msg = "Registered and logged in"
	}

	writeJSON(w, http.StatusCreated, messageUserResponse{
		Msg:  msg,
		User: toUserResponse(user),
	})
}

// Login はメールアドレスとパスワードでログインし、セッションクッキーを発行する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		handleServiceError(w, model.NewValidationError("Email and password are required"))
		return
	}

	sess := middleware.SessionFromContext(r.Context())

	user, signed, err := h.service.Login(r.Context(), sess, req.Email, req.Password)
	if err != nil {
		h.metrics.RecordLoginFailure()
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordLoginSuccess()
	h.setSessionCookie(w, signed)

	writeJSON(w, http.StatusOK, messageUserResponse{
		Msg:  "Logged in",
		User: toUserResponse(user),
	})
}

// Logout はセッションクッキーを削除する。
// クッキーが存在しない場合はNO_SESSIONを返す。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if !sess.Present {
		handleServiceError(w, model.NewNoSessionError())
		return
	}

	h.clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "Logged out")
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	user, err := h.service.CurrentUser(r.Context(), sess)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageUserResponse{
		Msg:  "User exists",
		User: toUserResponse(user),
	})
}

// setSessionCookie はセッショントークンをTOKENクッキーに設定する。
// HttpOnlyは付けない。クライアントスクリプトがトークンを参照する既存の
// クライアント実装との互換のためだが、XSS耐性の観点では要検討。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, signed string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    signed,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: false,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はTOKENクッキーを削除する。
// max-ageのゼロ化ではなく削除で統一する。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: false,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// validateRegisterRequest は登録リクエストのフィールド制約を検証する。
// name 3〜12文字、emailは整形式、passwordは8文字以上。
func validateRegisterRequest(req *registerRequest) *model.APIError {
	nameLen := utf8.RuneCountInString(req.Name)
	if nameLen < 3 || nameLen > 12 {
		return model.NewValidationError("Name must be between 3 and 12 characters")
	}

	addr, err := mail.ParseAddress(req.Email)
	if err != nil || addr.Address != req.Email {
		return model.NewValidationError("Invalid email")
	}

	if utf8.RuneCountInString(req.Password) < 8 {
		return model.NewValidationError("Password must be at least 8 characters")
	}

	return nil
}
