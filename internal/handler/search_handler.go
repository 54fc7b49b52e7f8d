package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/snapgram/internal/middleware"
	"github.com/hitoshi/snapgram/internal/model"
)

// SearchServiceInterface は検索ハンドラーが必要とするサービスインターフェース。
type SearchServiceInterface interface {
	// SearchUsers はユーザー名の部分一致で検索する。
	SearchUsers(ctx context.Context, requesterID, query string) ([]model.UserSearchRow, error)
	// Suggestions はまだフォローしていないユーザーを新しい順に返す。
	Suggestions(ctx context.Context, requesterID string) ([]*model.User, error)
}

// SearchHandler はユーザー検索のHTTPハンドラー。
type SearchHandler struct {
	service SearchServiceInterface
}

// NewSearchHandler はSearchHandlerを生成する。
func NewSearchHandler(service SearchServiceInterface) *SearchHandler {
	return &SearchHandler{
		service: service,
	}
}

// searchUserResponse はユーザー検索結果の1件分のAPIレスポンス。
type searchUserResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
	IsFollowing  bool   `json:"is_following"`
}

// SearchUsers はユーザー名の部分一致でユーザーを検索する。
// GET /api/search/users?query=
func (h *SearchHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	requesterID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	query := r.URL.Query().Get("query")

	rows, err := h.service.SearchUsers(r.Context(), requesterID, query)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result := make([]searchUserResponse, len(rows))
	for i, row := range rows {
		result[i] = searchUserResponse{
			ID:           row.ID,
			Username:     row.Username,
			ProfilePhoto: row.ProfilePhoto,
			IsFollowing:  row.IsFollowing,
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// Suggestions はまだフォローしていないおすすめユーザーを取得する。
// GET /api/search/suggestions
func (h *SearchHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	requesterID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	users, err := h.service.Suggestions(r.Context(), requesterID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result := make([]searchUserResponse, len(users))
	for i, u := range users {
		result[i] = searchUserResponse{
			ID:           u.ID,
			Username:     u.Username,
			ProfilePhoto: u.ProfilePhoto,
		}
	}

	writeJSON(w, http.StatusOK, result)
}
