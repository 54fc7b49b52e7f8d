package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/snapgram/internal/middleware"
	"github.com/hitoshi/snapgram/internal/model"
)

// --- モック定義 ---

type mockPostService struct {
	createPostFn    func(ctx context.Context, userID, imageURL, caption string) (*model.Post, error)
	getPostFn       func(ctx context.Context, postID, viewerID string) (*model.FeedPost, error)
	listByUserFn    func(ctx context.Context, ownerID, viewerID string) ([]model.FeedPost, error)
	updateCaptionFn func(ctx context.Context, postID, userID, caption string) (*model.Post, error)
	deletePostFn    func(ctx context.Context, postID, userID string) error
	likeFn          func(ctx context.Context, postID, userID string) error
	unlikeFn        func(ctx context.Context, postID, userID string) error
	listLikersFn    func(ctx context.Context, postID string) ([]model.UserRef, error)
	addCommentFn    func(ctx context.Context, postID, userID, text string) (*model.Comment, error)
	listCommentsFn  func(ctx context.Context, postID string) ([]model.CommentWithUser, string, error)
	deleteCommentFn func(ctx context.Context, commentID, userID string) error
}

func (m *mockPostService) CreatePost(ctx context.Context, userID, imageURL, caption string) (*model.Post, error) {
	if m.createPostFn != nil {
		return m.createPostFn(ctx, userID, imageURL, caption)
	}
	return nil, nil
}
func (m *mockPostService) GetPost(ctx context.Context, postID, viewerID string) (*model.FeedPost, error) {
	if m.getPostFn != nil {
		return m.getPostFn(ctx, postID, viewerID)
	}
	return nil, nil
}
func (m *mockPostService) ListByUser(ctx context.Context, ownerID, viewerID string) ([]model.FeedPost, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, ownerID, viewerID)
	}
	return nil, nil
}
func (m *mockPostService) UpdateCaption(ctx context.Context, postID, userID, caption string) (*model.Post, error) {
	if m.updateCaptionFn != nil {
		return m.updateCaptionFn(ctx, postID, userID, caption)
	}
	return nil, nil
}
func (m *mockPostService) DeletePost(ctx context.Context, postID, userID string) error {
	if m.deletePostFn != nil {
		return m.deletePostFn(ctx, postID, userID)
	}
	return nil
}
func (m *mockPostService) Like(ctx context.Context, postID, userID string) error {
	if m.likeFn != nil {
		return m.likeFn(ctx, postID, userID)
	}
	return nil
}
func (m *mockPostService) Unlike(ctx context.Context, postID, userID string) error {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, postID, userID)
	}
	return nil
}
func (m *mockPostService) ListLikers(ctx context.Context, postID string) ([]model.UserRef, error) {
	if m.listLikersFn != nil {
		return m.listLikersFn(ctx, postID)
	}
	return nil, nil
}
func (m *mockPostService) AddComment(ctx context.Context, postID, userID, text string) (*model.Comment, error) {
	if m.addCommentFn != nil {
		return m.addCommentFn(ctx, postID, userID, text)
	}
	return nil, nil
}
func (m *mockPostService) ListComments(ctx context.Context, postID string) ([]model.CommentWithUser, string, error) {
	if m.listCommentsFn != nil {
		return m.listCommentsFn(ctx, postID)
	}
	return nil, "", nil
}
func (m *mockPostService) DeleteComment(ctx context.Context, commentID, userID string) error {
	if m.deleteCommentFn != nil {
		return m.deleteCommentFn(ctx, commentID, userID)
	}
	return nil
}

// --- テストヘルパー ---

// withUserID はテスト用にリクエストコンテキストにユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// --- テスト ---

func TestPostHandler_CreatePost_Success(t *testing.T) {
	svc := &mockPostService{
		createPostFn: func(ctx context.Context, userID, imageURL, caption string) (*model.Post, error) {
			if userID != "user-123" {
				t.Errorf("userID = %q, want %q", userID, "user-123")
			}
			return &model.Post{
				ID:        "post-id-1",
				UserID:    userID,
				ImageURL:  imageURL,
				Caption:   caption,
				CreatedAt: time.Now(),
			}, nil
		},
	}
	h := NewPostHandler(svc)

	body := `{"image_url":"https://cdn.example.com/p.jpg","caption":"hello"}`
	req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.CreatePost(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var got postResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != "post-id-1" {
		t.Errorf("id = %q, want %q", got.ID, "post-id-1")
	}
	if !got.IsOwner {
		t.Error("is_owner = false, want true")
	}
}

func TestPostHandler_CreatePost_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := NewPostHandler(&mockPostService{})

	body := `{"image_url":"https://cdn.example.com/p.jpg"}`
	req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.CreatePost(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestPostHandler_CreatePost_ValidationError_ReturnsBadRequest(t *testing.T) {
	svc := &mockPostService{
		createPostFn: func(ctx context.Context, userID, imageURL, caption string) (*model.Post, error) {
			return nil, model.NewValidationError("画像URLは必須です。")
		},
	}
	h := NewPostHandler(svc)

	body := `{"caption":"no image"}`
	req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewBufferString(body))
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.CreatePost(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestPostHandler_GetPost_NotFound_Returns404(t *testing.T) {
	svc := &mockPostService{
		getPostFn: func(ctx context.Context, postID, viewerID string) (*model.FeedPost, error) {
			return nil, model.NewPostNotFoundError(postID)
		},
	}
	h := NewPostHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/post-missing", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "post-missing")
	w := httptest.NewRecorder()

	h.GetPost(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	var got apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if got.Code != model.ErrCodePostNotFound {
		t.Errorf("code = %q, want %q", got.Code, model.ErrCodePostNotFound)
	}
}

func TestPostHandler_DeletePost_Success_ReturnsNoContent(t *testing.T) {
	deleted := false
	svc := &mockPostService{
		deletePostFn: func(ctx context.Context, postID, userID string) error {
			deleted = true
			if postID != "post-id-1" {
				t.Errorf("postID = %q, want %q", postID, "post-id-1")
			}
			return nil
		},
	}
	h := NewPostHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/post-id-1", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "post-id-1")
	w := httptest.NewRecorder()

	h.DeletePost(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if !deleted {
		t.Error("DeletePost was not called on the service")
	}
}

func TestPostHandler_DeletePost_WrongOwner_ReturnsForbidden(t *testing.T) {
	svc := &mockPostService{
		deletePostFn: func(ctx context.Context, postID, userID string) error {
			return model.NewForbiddenError("この投稿を削除する権限がありません。")
		},
	}
	h := NewPostHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/post-id-1", nil)
	req = withUserID(req, "user-other")
	req = withChiURLParam(req, "id", "post-id-1")
	w := httptest.NewRecorder()

	h.DeletePost(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
}

func TestPostHandler_Like_Duplicate_ReturnsConflict(t *testing.T) {
	svc := &mockPostService{
		likeFn: func(ctx context.Context, postID, userID string) error {
			return model.NewAlreadyLikedError()
		},
	}
	h := NewPostHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/posts/post-id-1/like", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "post-id-1")
	w := httptest.NewRecorder()

	h.Like(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	var got apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if got.Code != model.ErrCodeAlreadyLiked {
		t.Errorf("code = %q, want %q", got.Code, model.ErrCodeAlreadyLiked)
	}
}

func TestPostHandler_ListComments_AnnotatesOwnership(t *testing.T) {
	svc := &mockPostService{
		listCommentsFn: func(ctx context.Context, postID string) ([]model.CommentWithUser, string, error) {
			return []model.CommentWithUser{
				{Comment: model.Comment{ID: "c-1", PostID: postID, UserID: "user-viewer"}, Username: "alice"},
				{Comment: model.Comment{ID: "c-2", PostID: postID, UserID: "user-owner"}, Username: "bob"},
			}, "user-owner", nil
		},
	}
	h := NewPostHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/post-id-1/comments", nil)
	req = withUserID(req, "user-viewer")
	req = withChiURLParam(req, "id", "post-id-1")
	w := httptest.NewRecorder()

	h.ListComments(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got []commentResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("comments = %d, want 2", len(got))
	}
	// 閲覧者自身のコメントにはis_ownerが立つ
	if !got[0].IsOwner || got[0].PostOwner {
		t.Errorf("comment c-1: is_owner = %v post_owner = %v, want true false", got[0].IsOwner, got[0].PostOwner)
	}
	// 投稿所有者のコメントにはpost_ownerが立つ
	if got[1].IsOwner || !got[1].PostOwner {
		t.Errorf("comment c-2: is_owner = %v post_owner = %v, want false true", got[1].IsOwner, got[1].PostOwner)
	}
}

func TestPostHandler_AddComment_Success(t *testing.T) {
	svc := &mockPostService{
		addCommentFn: func(ctx context.Context, postID, userID, text string) (*model.Comment, error) {
			return &model.Comment{
				ID:        "c-1",
				PostID:    postID,
				UserID:    userID,
				Text:      text,
				CreatedAt: time.Now(),
			}, nil
		},
	}
	h := NewPostHandler(svc)

	body := `{"text":"nice shot"}`
	req := httptest.NewRequest(http.MethodPost, "/api/posts/post-id-1/comment", bytes.NewBufferString(body))
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "post-id-1")
	w := httptest.NewRecorder()

	h.AddComment(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var got commentResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Text != "nice shot" {
		t.Errorf("text = %q, want %q", got.Text, "nice shot")
	}
}

func TestPostHandler_DeleteComment_NotFound_Returns404(t *testing.T) {
	svc := &mockPostService{
		deleteCommentFn: func(ctx context.Context, commentID, userID string) error {
			return model.NewCommentNotFoundError(commentID)
		},
	}
	h := NewPostHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/comments/c-missing", nil)
	req = withUserID(req, "user-123")
	req = withChiURLParam(req, "id", "c-missing")
	w := httptest.NewRecorder()

	h.DeleteComment(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
