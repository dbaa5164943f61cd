// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/miniblog/internal/model"
)

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// postResponse は投稿のAPIレスポンス。author_idは含めない。
type postResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   *string   `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Edited    bool      `json:"edited"`
}

// postWithAuthorResponse は著者表示名付きの投稿レスポンス。一覧・詳細で使用する。
type postWithAuthorResponse struct {
	postResponse
	AuthorName string `json:"author_name"`
}

// messageResponse はmsgフィールドのみのレスポンス。
type messageResponse struct {
	Msg string `json:"msg"`
}

// messageUserResponse はmsgとuserを返すレスポンス。
type messageUserResponse struct {
	Msg  string       `json:"msg"`
	User userResponse `json:"user"`
}

// messagePostResponse はmsgとpostを返すレスポンス。
type messagePostResponse struct {
	Msg  string `json:"msg"`
	Post any    `json:"post"`
}

// messagePostsResponse はmsgとposts配列を返すレスポンス。
type messagePostsResponse struct {
	Msg   string                   `json:"msg"`
	Posts []postWithAuthorResponse `json:"posts"`
}

// --- ヘルパー関数 ---

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// toPostResponse はmodel.PostからAPIレスポンスに変換する。
func toPostResponse(p *model.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		Edited:    p.Edited,
	}
}

// toPostWithAuthorResponse はmodel.PostWithAuthorからAPIレスポンスに変換する。
func toPostWithAuthorResponse(p *model.PostWithAuthor) postWithAuthorResponse {
	return postWithAuthorResponse{
		postResponse: toPostResponse(&p.Post),
		AuthorName:   p.AuthorName,
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeMessage はmsgフィールドのみのレスポンスを書き込む。
func writeMessage(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, messageResponse{Msg: msg})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// msgの文言は維持し、ステータスコードのみ失敗種別ごとに付与する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeMessage(w, mapAPIErrorToHTTPStatus(apiErr), apiErr.Message)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeNoSession, model.ErrCodeUnauthenticated,
		model.ErrCodeInvalidToken, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeUserNotFound, model.ErrCodePostNotFound:
		return http.StatusNotFound
	case model.ErrCodeAlreadyAuthenticated, model.ErrCodeConstraintViolation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
