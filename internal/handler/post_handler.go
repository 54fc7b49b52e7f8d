package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/snapgram/internal/middleware"
	"github.com/hitoshi/snapgram/internal/model"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	// CreatePost は新しい投稿を作成する。
	CreatePost(ctx context.Context, userID, imageURL, caption string) (*model.Post, error)
	// GetPost は投稿をいいね数・いいね有無付きで返す。
	GetPost(ctx context.Context, postID, viewerID string) (*model.FeedPost, error)
	// ListByUser は指定ユーザーの全投稿を新しい順に返す。
	ListByUser(ctx context.Context, ownerID, viewerID string) ([]model.FeedPost, error)
	// UpdateCaption は投稿のキャプションを更新する。
	UpdateCaption(ctx context.Context, postID, userID, caption string) (*model.Post, error)
	// DeletePost は投稿を関連コメントごと削除する。
	DeletePost(ctx context.Context, postID, userID string) error
	// Like は投稿にいいねする。
	Like(ctx context.Context, postID, userID string) error
	// Unlike は投稿のいいねを取り消す。
	Unlike(ctx context.Context, postID, userID string) error
	// ListLikers は投稿にいいねしたユーザー一覧を返す。
	ListLikers(ctx context.Context, postID string) ([]model.UserRef, error)
	// AddComment は投稿にコメントを追加する。
	AddComment(ctx context.Context, postID, userID, text string) (*model.Comment, error)
	// ListComments はコメント一覧と投稿所有者IDを返す。
	ListComments(ctx context.Context, postID string) ([]model.CommentWithUser, string, error)
	// DeleteComment はコメントを削除する。
	DeleteComment(ctx context.Context, commentID, userID string) error
}

// PostHandler は投稿・いいね・コメントのHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{
		service: service,
	}
}

// createPostRequest は投稿作成リクエストのボディ。
type createPostRequest struct {
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption"`
}

// updateCaptionRequest はキャプション更新リクエストのボディ。
type updateCaptionRequest struct {
	Caption string `json:"caption"`
}

// commentRequest はコメント追加リクエストのボディ。
type commentRequest struct {
	Text string `json:"text"`
}

// commentResponse はコメントのAPIレスポンス。
// IsOwnerはコメント投稿者本人、PostOwnerはコメント先投稿の所有者を表す。
type commentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	IsOwner   bool      `json:"is_owner"`
	PostOwner bool      `json:"post_owner"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePost は新しい投稿を作成する。
// POST /api/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	post, err := h.service.CreatePost(r.Context(), userID, req.ImageURL, req.Caption)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, postResponse{
		ID:        post.ID,
		UserID:    post.UserID,
		ImageURL:  post.ImageURL,
		Caption:   post.Caption,
		IsOwner:   true,
		CreatedAt: post.CreatedAt,
	})
}

// GetPost は投稿の詳細を取得する。
// GET /api/posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	viewerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	postID := chi.URLParam(r, "id")

	post, err := h.service.GetPost(r.Context(), postID, viewerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponse(*post, viewerID))
}

// ListByUser は指定ユーザーの投稿一覧を取得する。
// GET /api/posts/user/{id}
func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	viewerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	ownerID := chi.URLParam(r, "id")

	posts, err := h.service.ListByUser(r.Context(), ownerID, viewerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponses(posts, viewerID))
}

// UpdateCaption は投稿のキャプションを更新する。
// PUT /api/posts/{id}/caption
func (h *PostHandler) UpdateCaption(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	postID := chi.URLParam(r, "id")

	var req updateCaptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	post, err := h.service.UpdateCaption(r.Context(), postID, userID, req.Caption)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postResponse{
		ID:        post.ID,
		UserID:    post.UserID,
		ImageURL:  post.ImageURL,
		Caption:   post.Caption,
		IsOwner:   true,
		CreatedAt: post.CreatedAt,
	})
}

// DeletePost は投稿を関連コメントごと削除する。
// DELETE /api/posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	postID := chi.URLParam(r, "id")

	if err := h.service.DeletePost(r.Context(), postID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Like は投稿にいいねする。
// POST /api/posts/{id}/like
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	postID := chi.URLParam(r, "id")

	if err := h.service.Like(r.Context(), postID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unlike は投稿のいいねを取り消す。
// POST /api/posts/{id}/unlike
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	postID := chi.URLParam(r, "id")

	if err := h.service.Unlike(r.Context(), postID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLikers は投稿にいいねしたユーザー一覧を取得する。
// GET /api/posts/{id}/likes
func (h *PostHandler) ListLikers(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	postID := chi.URLParam(r, "id")

	likers, err := h.service.ListLikers(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserRefResponses(likers))
}

// AddComment は投稿にコメントを追加する。
// POST /api/posts/{id}/comment
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	postID := chi.URLParam(r, "id")

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	comment, err := h.service.AddComment(r.Context(), postID, userID, req.Text)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, commentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		UserID:    comment.UserID,
		Text:      comment.Text,
		IsOwner:   true,
		CreatedAt: comment.CreatedAt,
	})
}

// ListComments は投稿のコメント一覧を取得する。
// GET /api/posts/{id}/comments
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	viewerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	postID := chi.URLParam(r, "id")

	comments, postOwnerID, err := h.service.ListComments(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result := make([]commentResponse, len(comments))
	for i, c := range comments {
		result[i] = commentResponse{
			ID:        c.ID,
			PostID:    c.PostID,
			UserID:    c.UserID,
			Username:  c.Username,
			Text:      c.Text,
			IsOwner:   c.UserID == viewerID,
			PostOwner: c.UserID == postOwnerID,
			CreatedAt: c.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// DeleteComment はコメントを削除する。
// DELETE /api/posts/comments/{id}
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	commentID := chi.URLParam(r, "id")

	if err := h.service.DeleteComment(r.Context(), commentID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
