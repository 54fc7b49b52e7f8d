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

// StoryServiceInterface はストーリーハンドラーが必要とするサービスインターフェース。
type StoryServiceInterface interface {
	// CreateStory は新しいストーリーを作成する。
	CreateStory(ctx context.Context, userID, imageURL string) (*model.Story, error)
	// ListActive はviewerとフォロー中ユーザーのストーリーをユーザーごとに返す。
	ListActive(ctx context.Context, viewerID string) ([]model.StoryGroup, error)
	// ListByUser は指定ユーザーのアクティブなストーリーを返す。
	ListByUser(ctx context.Context, userID string) ([]model.Story, error)
	// DeleteStory はストーリーを削除する。
	DeleteStory(ctx context.Context, storyID, userID string) error
}

// StoryHandler はストーリーのHTTPハンドラー。
type StoryHandler struct {
	service StoryServiceInterface
}

// NewStoryHandler はStoryHandlerを生成する。
func NewStoryHandler(service StoryServiceInterface) *StoryHandler {
	return &StoryHandler{
		service: service,
	}
}

// createStoryRequest はストーリー作成リクエストのボディ。
type createStoryRequest struct {
	ImageURL string `json:"image_url"`
}

// storyResponse はストーリーのAPIレスポンス。
type storyResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// storyGroupResponse は1ユーザー分のストーリーのまとまりのAPIレスポンス。
type storyGroupResponse struct {
	UserID       string          `json:"user_id"`
	Username     string          `json:"username"`
	ProfilePhoto string          `json:"profile_photo,omitempty"`
	Stories      []storyResponse `json:"stories"`
}

// toStoryResponse はストーリーをAPIレスポンスに変換する。
func toStoryResponse(s model.Story) storyResponse {
	return storyResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		ImageURL:  s.ImageURL,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

// toStoryResponses はストーリーの列をAPIレスポンスに変換する。
func toStoryResponses(stories []model.Story) []storyResponse {
	result := make([]storyResponse, len(stories))
	for i, s := range stories {
		result[i] = toStoryResponse(s)
	}
	return result
}

// CreateStory は新しいストーリーを作成する。
// POST /api/stories
func (h *StoryHandler) CreateStory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req createStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	story, err := h.service.CreateStory(r.Context(), userID, req.ImageURL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toStoryResponse(*story))
}

// ListActive はviewerとフォロー中ユーザーのアクティブなストーリーを
// ユーザーごとにまとめて取得する。
// GET /api/stories
func (h *StoryHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	viewerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	groups, err := h.service.ListActive(r.Context(), viewerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result := make([]storyGroupResponse, len(groups))
	for i, g := range groups {
		result[i] = storyGroupResponse{
			UserID:       g.UserID,
			Username:     g.Username,
			ProfilePhoto: g.ProfilePhoto,
			Stories:      toStoryResponses(g.Stories),
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// ListByUser は指定ユーザーのアクティブなストーリー一覧を取得する。
// GET /api/stories/user/{id}
func (h *StoryHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	userID := chi.URLParam(r, "id")

	stories, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStoryResponses(stories))
}

// DeleteStory はストーリーを削除する。
// DELETE /api/stories/{id}
func (h *StoryHandler) DeleteStory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	storyID := chi.URLParam(r, "id")

	if err := h.service.DeleteStory(r.Context(), storyID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
