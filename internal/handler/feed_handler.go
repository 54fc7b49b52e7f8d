package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/snapgram/internal/middleware"
	"github.com/hitoshi/snapgram/internal/model"
)

// FeedServiceInterface はフィードハンドラーが必要とするサービスインターフェース。
type FeedServiceInterface interface {
	// GetFeed はフォロー中ユーザーの投稿を新しい順に返す。
	GetFeed(ctx context.Context, viewerID string) ([]model.FeedPost, error)
}

// FeedHandler はホームフィードのHTTPハンドラー。
type FeedHandler struct {
	service FeedServiceInterface
}

// NewFeedHandler はFeedHandlerを生成する。
func NewFeedHandler(service FeedServiceInterface) *FeedHandler {
	return &FeedHandler{
		service: service,
	}
}

// postResponse は投稿のAPIレスポンス。
type postResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	ImageURL   string    `json:"image_url"`
	Caption    string    `json:"caption"`
	LikesCount int       `json:"likes_count"`
	IsLiked    bool      `json:"is_liked"`
	IsOwner    bool      `json:"is_owner"`
	CreatedAt  time.Time `json:"created_at"`
}

// toPostResponse はフィード投稿をviewer視点のAPIレスポンスに変換する。
func toPostResponse(p model.FeedPost, viewerID string) postResponse {
	return postResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Username:   p.Username,
		ImageURL:   p.ImageURL,
		Caption:    p.Caption,
		LikesCount: p.LikesCount,
		IsLiked:    p.IsLiked,
		IsOwner:    p.UserID == viewerID,
		CreatedAt:  p.CreatedAt,
	}
}

// toPostResponses はフィード投稿の列をAPIレスポンスに変換する。
func toPostResponses(posts []model.FeedPost, viewerID string) []postResponse {
	result := make([]postResponse, len(posts))
	for i, p := range posts {
		result[i] = toPostResponse(p, viewerID)
	}
	return result
}

// GetFeed はフォロー中ユーザーの投稿フィードを取得する。
// GET /api/feed
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	viewerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	posts, err := h.service.GetFeed(r.Context(), viewerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponses(posts, viewerID))
}
