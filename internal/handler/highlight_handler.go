package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/snapgram/internal/highlight"
	"github.com/hitoshi/snapgram/internal/middleware"
	"github.com/hitoshi/snapgram/internal/model"
)

// HighlightServiceInterface はハイライトハンドラーが必要とするサービスインターフェース。
type HighlightServiceInterface interface {
	// CreateHighlight は選択したストーリーからハイライトを作成する。
	CreateHighlight(ctx context.Context, userID, title string, storyIDs []string) (*highlight.HighlightDetail, error)
	// ListByUser は指定ユーザーのハイライト一覧を返す。
	ListByUser(ctx context.Context, userID string) ([]model.HighlightSummary, error)
	// GetHighlight はハイライトをストーリー付きで返す。
	GetHighlight(ctx context.Context, highlightID string) (*highlight.HighlightDetail, error)
	// DeleteHighlight はハイライトを削除する。
	DeleteHighlight(ctx context.Context, highlightID, userID string) error
}

// HighlightHandler はハイライトのHTTPハンドラー。
type HighlightHandler struct {
	service HighlightServiceInterface
}

// NewHighlightHandler はHighlightHandlerを生成する。
func NewHighlightHandler(service HighlightServiceInterface) *HighlightHandler {
	return &HighlightHandler{
		service: service,
	}
}

// createHighlightRequest はハイライト作成リクエストのボディ。
type createHighlightRequest struct {
	Title    string   `json:"title"`
	StoryIDs []string `json:"story_ids"`
}

// highlightStoryResponse はハイライト内ストーリースナップショットのAPIレスポンス。
type highlightStoryResponse struct {
	StoryID   string    `json:"story_id"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// highlightResponse はハイライトのAPIレスポンス。
type highlightResponse struct {
	ID           string                   `json:"id"`
	UserID       string                   `json:"user_id"`
	Title        string                   `json:"title"`
	CoverImage   string                   `json:"cover_image"`
	StoriesCount int                      `json:"stories_count"`
	Stories      []highlightStoryResponse `json:"stories,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
}

// toHighlightDetailResponse はハイライト詳細をAPIレスポンスに変換する。
func toHighlightDetailResponse(d *highlight.HighlightDetail) highlightResponse {
	stories := make([]highlightStoryResponse, len(d.Stories))
	for i, s := range d.Stories {
		stories[i] = highlightStoryResponse{
			StoryID:   s.StoryID,
			ImageURL:  s.ImageURL,
			CreatedAt: s.StoryCreatedAt,
		}
	}

	return highlightResponse{
		ID:           d.Highlight.ID,
		UserID:       d.Highlight.UserID,
		Title:        d.Highlight.Title,
		CoverImage:   d.Highlight.CoverImage,
		StoriesCount: len(stories),
		Stories:      stories,
		CreatedAt:    d.Highlight.CreatedAt,
	}
}

// CreateHighlight は選択したストーリーからハイライトを作成する。
// POST /api/highlights
func (h *HighlightHandler) CreateHighlight(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req createHighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	detail, err := h.service.CreateHighlight(r.Context(), userID, req.Title, req.StoryIDs)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toHighlightDetailResponse(detail))
}

// ListByUser は指定ユーザーのハイライト一覧を取得する。
// GET /api/highlights/user/{id}
func (h *HighlightHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	userID := chi.URLParam(r, "id")

	highlights, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result := make([]highlightResponse, len(highlights))
	for i, hl := range highlights {
		result[i] = highlightResponse{
			ID:           hl.ID,
			UserID:       hl.UserID,
			Title:        hl.Title,
			CoverImage:   hl.CoverImage,
			StoriesCount: hl.StoriesCount,
			CreatedAt:    hl.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// GetHighlight はハイライトをストーリー付きで取得する。
// GET /api/highlights/{id}
func (h *HighlightHandler) GetHighlight(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	highlightID := chi.URLParam(r, "id")

	detail, err := h.service.GetHighlight(r.Context(), highlightID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHighlightDetailResponse(detail))
}

// DeleteHighlight はハイライトを削除する。
// DELETE /api/highlights/{id}
func (h *HighlightHandler) DeleteHighlight(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	highlightID := chi.URLParam(r, "id")

	if err := h.service.DeleteHighlight(r.Context(), highlightID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
