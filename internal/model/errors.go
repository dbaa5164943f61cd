// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// MessageはそのままAPIレスポンスのmsgフィールドになるため、文言を変更する際は
// クライアントとの互換性に注意すること。
type APIError struct {
	Code     string // エラーコード
	Message  string // クライアントに返すメッセージ
	Category string // カテゴリ: auth, validation, post, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodePostNotFound         = "POST_NOT_FOUND"
	ErrCodeAlreadyAuthenticated = "ALREADY_AUTHENTICATED"
	ErrCodeUnauthenticated      = "UNAUTHENTICATED"
	ErrCodeNoSession            = "NO_SESSION"
	ErrCodeInvalidToken         = "INVALID_TOKEN"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeConstraintViolation  = "CONSTRAINT_VIOLATION"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
)

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
	}
}

// NewUserNotFoundError は指定メールアドレスのユーザーが存在しないエラーを生成する。
func NewUserNotFoundError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("No user with email %s exists", email),
		Category: "auth",
	}
}

// NewPostNotFoundError は投稿未検出エラーを生成する。
func NewPostNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  "Post not found",
		Category: "post",
	}
}

// NewAlreadyAuthenticatedError はセッションが既に存在する状態での再ログインエラーを生成する。
func NewAlreadyAuthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyAuthenticated,
		Message:  "Session already exists",
		Category: "auth",
	}
}

// NewUnauthenticatedError はセッションクッキー不在のエラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "You are not logged in",
		Category: "auth",
	}
}

// NewNoSessionError はauthエンドポイント向けのセッション不在エラーを生成する。
func NewNoSessionError() *APIError {
	return &APIError{
		Code:     ErrCodeNoSession,
		Message:  "No session exists",
		Category: "auth",
	}
}

// NewInvalidTokenError はトークンの署名・期限検証に失敗した際のエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "Invalid or expired token",
		Category: "auth",
	}
}

// NewTokenRejectedError は投稿ミューテーションでトークン検証に失敗した際のエラーを生成する。
// actionには "create"、"update"、"delete" のいずれかを指定する。
func NewTokenRejectedError(action string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "Unauthorized to " + action,
		Category: "auth",
	}
}

// NewNotOwnerError は認証済みだが投稿の所有者でない場合のエラーを生成する。
// メッセージはトークン検証失敗時と同一だが、コードで区別する。
func NewNotOwnerError(action string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "Unauthorized to " + action,
		Category: "post",
	}
}

// NewEmailTakenError はメールアドレスの一意制約違反エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeConstraintViolation,
		Message:  "A user with that email already exists",
		Category: "auth",
	}
}

// NewWrongPasswordError はパスワード不一致エラーを生成する。
func NewWrongPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Wrong password",
		Category: "auth",
	}
}
