package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/miniblog/internal/middleware"
	"github.com/hitoshi/miniblog/internal/model"
	"github.com/hitoshi/miniblog/internal/post"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	List(ctx context.Context) ([]model.PostWithAuthor, error)
	GetByID(ctx context.Context, postID string) (*model.PostWithAuthor, error)
	Create(ctx context.Context, sess *model.Session, in post.CreateInput) (*model.Post, error)
	Update(ctx context.Context, sess *model.Session, postID string, in post.UpdateInput) (*model.Post, error)
	Delete(ctx context.Context, sess *model.Session, postID string) (*model.Post, error)
}

// PostMetrics は投稿ハンドラーが記録するメトリクスのインターフェース。
type PostMetrics interface {
	RecordPostCreated()
}

// PostHandler は投稿管理のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
	metrics PostMetrics
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface, metrics PostMetrics) *PostHandler {
	return &PostHandler{
		service: service,
		metrics: metrics,
	}
}

// createPostRequest は投稿作成リクエストのボディ。contentは省略可能。
type createPostRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}

// updatePostRequest は投稿更新リクエストのボディ。更新時はcontentも必須。
type updatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ListPosts は全投稿を新しい順に返す。認証不要。
// GET /posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]postWithAuthorResponse, 0, len(posts))
	for i := range posts {
		out = append(out, toPostWithAuthorResponse(&posts[i]))
	}

	writeJSON(w, http.StatusOK, messagePostsResponse{
		Msg:   "All posts",
		Posts: out,
	})
}

// GetPost は指定IDの投稿を返す。認証不要。
// GET /posts/post/{postId}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postId")

	p, err := h.service.GetByID(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messagePostResponse{
		Msg:  "Post found",
		Post: toPostWithAuthorResponse(p),
	})
}

// CreatePost は新規投稿を作成する。要認証。
// POST /posts/create-post
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if apiErr := validateTitle(req.Title); apiErr != nil {
		handleServiceError(w, apiErr)
		return
	}
	if req.Content != nil {
		if apiErr := validateContent(*req.Content); apiErr != nil {
			handleServiceError(w, apiErr)
			return
		}
	}

	sess := middleware.SessionFromContext(r.Context())

	p, err := h.service.Create(r.Context(), sess, post.CreateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordPostCreated()

	writeJSON(w, http.StatusCreated, messagePostResponse{
		Msg:  "Post created",
		Post: toPostResponse(p),
	})
}

// UpdatePost は所有者本人による投稿の更新を行う。要認証。
// PATCH /posts/update-post/{postId}
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postId")

	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if apiErr := validateTitle(req.Title); apiErr != nil {
		handleServiceError(w, apiErr)
		return
	}
	if apiErr := validateContent(req.Content); apiErr != nil {
		handleServiceError(w, apiErr)
		return
	}

	sess := middleware.SessionFromContext(r.Context())

	p, err := h.service.Update(r.Context(), sess, postID, post.UpdateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messagePostResponse{
		Msg:  "Post updated",
		Post: toPostResponse(p),
	})
}

// DeletePost は所有者本人による投稿の削除を行い、削除した行の内容を返す。要認証。
// DELETE /posts/delete-post/{postId}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postId")

	sess := middleware.SessionFromContext(r.Context())

	p, err := h.service.Delete(r.Context(), sess, postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messagePostResponse{
		Msg:  "Post deleted",
		Post: toPostResponse(p),
	})
}

// validateTitle はタイトルの4〜100文字制約を検証する。
func validateTitle(title string) *model.APIError {
	titleLen := utf8.RuneCountInString(title)
	if titleLen < 4 || titleLen > 100 {
		return model.NewValidationError("Title must be between 4 and 100 characters")
	}
	return nil
}

// validateContent は本文の1〜500文字制約を検証する。
func validateContent(content string) *model.APIError {
	contentLen := utf8.RuneCountInString(content)
	if contentLen < 1 || contentLen > 500 {
		return model.NewValidationError("Content must be between 1 and 500 characters")
	}
	return nil
}
