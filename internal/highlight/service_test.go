package highlight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/snapgram/internal/model"
)

// --- モック ---

type mockHighlightRepo struct {
	createWithStoriesFn func(ctx context.Context, highlight *model.Highlight, stories []model.HighlightStory) error
	findByIDFn          func(ctx context.Context, id string) (*model.Highlight, error)
	listStoriesFn       func(ctx context.Context, highlightID string) ([]model.HighlightStory, error)
	deleteByIDFn        func(ctx context.Context, id string) error
}

func (m *mockHighlightRepo) CreateWithStories(ctx context.Context, highlight *model.Highlight, stories []model.HighlightStory) error {
	return m.createWithStoriesFn(ctx, highlight, stories)
}
func (m *mockHighlightRepo) FindByID(ctx context.Context, id string) (*model.Highlight, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockHighlightRepo) ListByUser(ctx context.Context, userID string) ([]model.HighlightSummary, error) {
	return nil, nil
}
func (m *mockHighlightRepo) ListStories(ctx context.Context, highlightID string) ([]model.HighlightStory, error) {
	if m.listStoriesFn != nil {
		return m.listStoriesFn(ctx, highlightID)
	}
	return nil, nil
}
func (m *mockHighlightRepo) DeleteByID(ctx context.Context, id string) error {
	return m.deleteByIDFn(ctx, id)
}

type mockStoryRepo struct {
	listOwnedByIDsFn func(ctx context.Context, ownerID string, ids []string) ([]*model.Story, error)
}

func (m *mockStoryRepo) Create(ctx context.Context, story *model.Story) error {
	return nil
}
func (m *mockStoryRepo) FindByID(ctx context.Context, id string) (*model.Story, error) {
	return nil, nil
}
func (m *mockStoryRepo) ListActiveForViewer(ctx context.Context, viewerID string, now time.Time) ([]model.StoryWithUser, error) {
	return nil, nil
}
func (m *mockStoryRepo) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]model.StoryWithUser, error) {
	return nil, nil
}
func (m *mockStoryRepo) ListOwnedByIDs(ctx context.Context, ownerID string, ids []string) ([]*model.Story, error) {
	return m.listOwnedByIDsFn(ctx, ownerID, ids)
}
func (m *mockStoryRepo) DeleteByID(ctx context.Context, id string) error {
	return nil
}

type stubSanitizer struct{}

func (stubSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(raw)
}

// --- テスト ---

// TestService_CreateHighlight は選択順のスナップショット作成と
// カバー画像の固定を検証する。
func TestService_CreateHighlight(t *testing.T) {
	now := time.Now()
	stories := map[string]*model.Story{
		"s-1": {ID: "s-1", UserID: "user-1", ImageURL: "https://cdn.example.com/1.jpg", CreatedAt: now.Add(-2 * time.Hour)},
		"s-2": {ID: "s-2", UserID: "user-1", ImageURL: "https://cdn.example.com/2.jpg", CreatedAt: now.Add(-1 * time.Hour)},
	}
	storyRepo := &mockStoryRepo{
		listOwnedByIDsFn: func(ctx context.Context, ownerID string, ids []string) ([]*model.Story, error) {
			var owned []*model.Story
			for _, id := range ids {
				if st, ok := stories[id]; ok {
					owned = append(owned, st)
				}
			}
			return owned, nil
		},
	}

	var createdStories []model.HighlightStory
	highlightRepo := &mockHighlightRepo{
		createWithStoriesFn: func(ctx context.Context, highlight *model.Highlight, snapshots []model.HighlightStory) error {
			createdStories = snapshots
			return nil
		},
	}

	svc := NewService(highlightRepo, storyRepo, stubSanitizer{})

	// 選択順はs-2が先頭
	detail, err := svc.CreateHighlight(context.Background(), "user-1", "Summer", []string{"s-2", "s-1"})
	if err != nil {
		t.Fatalf("CreateHighlight returned error: %v", err)
	}

	// カバー画像は選択順先頭のストーリーの画像で固定される
	if detail.Highlight.CoverImage != "https://cdn.example.com/2.jpg" {
		t.Errorf("CoverImage = %q, want %q", detail.Highlight.CoverImage, "https://cdn.example.com/2.jpg")
	}
	if len(createdStories) != 2 {
		t.Fatalf("snapshot count = %d, want 2", len(createdStories))
	}
	if createdStories[0].StoryID != "s-2" || createdStories[0].Position != 0 {
		t.Errorf("first snapshot = %s pos %d, want s-2 pos 0", createdStories[0].StoryID, createdStories[0].Position)
	}
	if createdStories[1].StoryID != "s-1" || createdStories[1].Position != 1 {
		t.Errorf("second snapshot = %s pos %d, want s-1 pos 1", createdStories[1].StoryID, createdStories[1].Position)
	}
	// スナップショットは元ストーリーの画像URLと作成時刻を保持する
	if !createdStories[1].StoryCreatedAt.Equal(stories["s-1"].CreatedAt) {
		t.Errorf("StoryCreatedAt = %v, want %v", createdStories[1].StoryCreatedAt, stories["s-1"].CreatedAt)
	}
}

// TestService_CreateHighlight_DeduplicatesStoryIDs は重複した選択IDが
// 1件として扱われることを検証する。
func TestService_CreateHighlight_DeduplicatesStoryIDs(t *testing.T) {
	storyRepo := &mockStoryRepo{
		listOwnedByIDsFn: func(ctx context.Context, ownerID string, ids []string) ([]*model.Story, error) {
			if len(ids) != 1 {
				t.Errorf("unique ids = %d, want 1", len(ids))
			}
			return []*model.Story{{ID: "s-1", UserID: ownerID, ImageURL: "https://cdn.example.com/1.jpg"}}, nil
		},
	}
	highlightRepo := &mockHighlightRepo{
		createWithStoriesFn: func(ctx context.Context, highlight *model.Highlight, snapshots []model.HighlightStory) error {
			if len(snapshots) != 1 {
				t.Errorf("snapshot count = %d, want 1", len(snapshots))
			}
			return nil
		},
	}

	svc := NewService(highlightRepo, storyRepo, stubSanitizer{})

	if _, err := svc.CreateHighlight(context.Background(), "user-1", "Trip", []string{"s-1", "s-1", "s-1"}); err != nil {
		t.Fatalf("CreateHighlight returned error: %v", err)
	}
}

// TestService_CreateHighlight_UnownedStory_ReturnsNotFound は他ユーザーの
// ストーリーを含む作成が拒否されることを検証する。
func TestService_CreateHighlight_UnownedStory_ReturnsNotFound(t *testing.T) {
	storyRepo := &mockStoryRepo{
		listOwnedByIDsFn: func(ctx context.Context, ownerID string, ids []string) ([]*model.Story, error) {
			// s-otherは所有外のため返らない
			return []*model.Story{{ID: "s-1", UserID: ownerID, ImageURL: "https://cdn.example.com/1.jpg"}}, nil
		},
	}

	svc := NewService(&mockHighlightRepo{}, storyRepo, stubSanitizer{})

	_, err := svc.CreateHighlight(context.Background(), "user-1", "Trip", []string{"s-1", "s-other"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeStoryNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeStoryNotFound)
	}
}

// TestService_CreateHighlight_TitleTooLong_ReturnsError はタイトルの
// 長さ上限を検証する。
func TestService_CreateHighlight_TitleTooLong_ReturnsError(t *testing.T) {
	svc := NewService(&mockHighlightRepo{}, &mockStoryRepo{}, stubSanitizer{})

	longTitle := strings.Repeat("あ", model.MaxHighlightTitleLength+1)
	_, err := svc.CreateHighlight(context.Background(), "user-1", longTitle, []string{"s-1"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeInvalidRequest)
	}
}

// TestService_CreateHighlight_NoStories_ReturnsError はストーリー未選択の
// 作成が拒否されることを検証する。
func TestService_CreateHighlight_NoStories_ReturnsError(t *testing.T) {
	svc := NewService(&mockHighlightRepo{}, &mockStoryRepo{}, stubSanitizer{})

	_, err := svc.CreateHighlight(context.Background(), "user-1", "Trip", nil)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeInvalidRequest)
	}
}

// TestService_DeleteHighlight_WrongOwner_ReturnsForbidden は他ユーザーの
// ハイライト削除が拒否されることを検証する。
func TestService_DeleteHighlight_WrongOwner_ReturnsForbidden(t *testing.T) {
	highlightRepo := &mockHighlightRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Highlight, error) {
			return &model.Highlight{ID: id, UserID: "user-owner"}, nil
		},
	}

	svc := NewService(highlightRepo, &mockStoryRepo{}, stubSanitizer{})

	err := svc.DeleteHighlight(context.Background(), "hl-1", "user-other")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeForbidden {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeForbidden)
	}
}

// TestService_GetHighlight はハイライト詳細の取得を検証する。
func TestService_GetHighlight(t *testing.T) {
	highlightRepo := &mockHighlightRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Highlight, error) {
			return &model.Highlight{ID: id, UserID: "user-1", Title: "Summer", CoverImage: "https://cdn.example.com/2.jpg"}, nil
		},
		listStoriesFn: func(ctx context.Context, highlightID string) ([]model.HighlightStory, error) {
			return []model.HighlightStory{
				{HighlightID: highlightID, StoryID: "s-2", Position: 0},
				{HighlightID: highlightID, StoryID: "s-1", Position: 1},
			}, nil
		},
	}

	svc := NewService(highlightRepo, &mockStoryRepo{}, stubSanitizer{})

	detail, err := svc.GetHighlight(context.Background(), "hl-1")
	if err != nil {
		t.Fatalf("GetHighlight returned error: %v", err)
	}
	if detail.Highlight.Title != "Summer" {
		t.Errorf("Title = %q, want %q", detail.Highlight.Title, "Summer")
	}
	if len(detail.Stories) != 2 {
		t.Errorf("stories = %d, want 2", len(detail.Stories))
	}
}
