package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/snapgram/internal/middleware"
	"github.com/hitoshi/snapgram/internal/model"
	"github.com/hitoshi/snapgram/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// GetProfile はプロフィールをフォロワー・フォロー中一覧付きで返す。
	GetProfile(ctx context.Context, userID, requesterID string) (*user.Profile, error)
	// UpdateProfile は自分自身のプロフィールを更新する。
	UpdateProfile(ctx context.Context, userID string, update user.ProfileUpdate) (*model.User, error)
}

// FollowServiceInterface はフォロー操作のサービスインターフェース。
type FollowServiceInterface interface {
	// Follow はフォローエッジを追加する。
	Follow(ctx context.Context, followerID, targetID string) error
	// Unfollow はフォローエッジを削除する。
	Unfollow(ctx context.Context, followerID, targetID string) error
}

// UserHandler はプロフィール・フォロー操作のHTTPハンドラー。
type UserHandler struct {
	userService   UserServiceInterface
	followService FollowServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(userService UserServiceInterface, followService FollowServiceInterface) *UserHandler {
	return &UserHandler{
		userService:   userService,
		followService: followService,
	}
}

// userRefResponse は一覧表示用の軽量ユーザー参照。
type userRefResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// profileResponse はプロフィールのAPIレスポンス。
type profileResponse struct {
	userResponse
	Followers      []userRefResponse `json:"followers"`
	Following      []userRefResponse `json:"following"`
	FollowersCount int               `json:"followers_count"`
	FollowingCount int               `json:"following_count"`
	IsFollowing    bool              `json:"is_following"`
}

// profileUpdateRequest はプロフィール更新リクエストのボディ。
// 省略されたフィールドは更新しない。
type profileUpdateRequest struct {
	Username     *string `json:"username"`
	Bio          *string `json:"bio"`
	ProfilePhoto *string `json:"profile_photo"`
}

// toUserRefResponses はユーザー参照の列をAPIレスポンスに変換する。
func toUserRefResponses(refs []model.UserRef) []userRefResponse {
	result := make([]userRefResponse, len(refs))
	for i, ref := range refs {
		result[i] = userRefResponse{ID: ref.ID, Username: ref.Username}
	}
	return result
}

// GetProfile は指定ユーザーのプロフィールを取得する。
// GET /api/users/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	requesterID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	targetID := chi.URLParam(r, "id")

	profile, err := h.userService.GetProfile(r.Context(), targetID, requesterID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		userResponse:   toUserResponse(&profile.User),
		Followers:      toUserRefResponses(profile.Followers),
		Following:      toUserRefResponses(profile.Following),
		FollowersCount: len(profile.Followers),
		FollowingCount: len(profile.Following),
		IsFollowing:    profile.IsFollowing,
	})
}

// UpdateProfile は自分自身のプロフィールを更新する。
// PUT /api/users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), userID, user.ProfileUpdate{
		Username:     req.Username,
		Bio:          req.Bio,
		ProfilePhoto: req.ProfilePhoto,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

// Follow は指定ユーザーをフォローする。
// POST /api/users/{id}/follow
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	targetID := chi.URLParam(r, "id")

	if err := h.followService.Follow(r.Context(), followerID, targetID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unfollow は指定ユーザーのフォローを解除する。
// POST /api/users/{id}/unfollow
func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	targetID := chi.URLParam(r, "id")

	if err := h.followService.Unfollow(r.Context(), followerID, targetID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
