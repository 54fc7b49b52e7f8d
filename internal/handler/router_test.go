package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/snapgram/internal/highlight"
	"github.com/hitoshi/snapgram/internal/middleware"
	"github.com/hitoshi/snapgram/internal/model"
	"github.com/hitoshi/snapgram/internal/user"
)

// --- モック定義 ---

type mockVerifier struct {
	verifyFn func(tokenString string) (string, error)
}

func (m *mockVerifier) Verify(tokenString string) (string, error) {
	if m.verifyFn != nil {
		return m.verifyFn(tokenString)
	}
	return "", errors.New("invalid token")
}

type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

type mockUserService struct{}

func (m *mockUserService) GetProfile(ctx context.Context, userID, requesterID string) (*user.Profile, error) {
	return &user.Profile{
		User:      model.User{ID: userID, Username: "alice"},
		Followers: []model.UserRef{},
		Following: []model.UserRef{},
	}, nil
}
func (m *mockUserService) UpdateProfile(ctx context.Context, userID string, update user.ProfileUpdate) (*model.User, error) {
	return &model.User{ID: userID}, nil
}

type mockFollowService struct{}

func (m *mockFollowService) Follow(ctx context.Context, followerID, targetID string) error {
	return nil
}
func (m *mockFollowService) Unfollow(ctx context.Context, followerID, targetID string) error {
	return nil
}

type mockFeedService struct{}

func (m *mockFeedService) GetFeed(ctx context.Context, viewerID string) ([]model.FeedPost, error) {
	return []model.FeedPost{}, nil
}

type mockStoryService struct{}

func (m *mockStoryService) CreateStory(ctx context.Context, userID, imageURL string) (*model.Story, error) {
	return &model.Story{ID: "story-1", UserID: userID, ImageURL: imageURL}, nil
}
func (m *mockStoryService) ListActive(ctx context.Context, viewerID string) ([]model.StoryGroup, error) {
	return []model.StoryGroup{}, nil
}
func (m *mockStoryService) ListByUser(ctx context.Context, userID string) ([]model.Story, error) {
	return []model.Story{}, nil
}
func (m *mockStoryService) DeleteStory(ctx context.Context, storyID, userID string) error {
	return nil
}

type mockHighlightService struct{}

func (m *mockHighlightService) CreateHighlight(ctx context.Context, userID, title string, storyIDs []string) (*highlight.HighlightDetail, error) {
	return &highlight.HighlightDetail{}, nil
}
func (m *mockHighlightService) ListByUser(ctx context.Context, userID string) ([]model.HighlightSummary, error) {
	return []model.HighlightSummary{}, nil
}
func (m *mockHighlightService) GetHighlight(ctx context.Context, highlightID string) (*highlight.HighlightDetail, error) {
	return &highlight.HighlightDetail{}, nil
}
func (m *mockHighlightService) DeleteHighlight(ctx context.Context, highlightID, userID string) error {
	return nil
}

type mockSearchService struct{}

func (m *mockSearchService) SearchUsers(ctx context.Context, requesterID, query string) ([]model.UserSearchRow, error) {
	return []model.UserSearchRow{}, nil
}
func (m *mockSearchService) Suggestions(ctx context.Context, requesterID string) ([]*model.User, error) {
	return []*model.User{}, nil
}

// --- テストヘルパー ---

// newTestRouter はモックサービスで構成したルーターを返すヘルパー。
func newTestRouter(t *testing.T, verifier middleware.TokenVerifier, db Pinger) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(600, 600))
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		TokenVerifier:     verifier,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Gatherer:          prometheus.NewRegistry(),
		DB:                db,
		AuthService:       &mockAuthService{},
		UserService:       &mockUserService{},
		FollowService:     &mockFollowService{},
		FeedService:       &mockFeedService{},
		PostService:       &mockPostService{},
		StoryService:      &mockStoryService{},
		HighlightService:  &mockHighlightService{},
		SearchService:     &mockSearchService{},
	})
}

func validVerifier() *mockVerifier {
	return &mockVerifier{
		verifyFn: func(tokenString string) (string, error) {
			return "user-123", nil
		},
	}
}

// --- テスト ---

func TestRouter_Health_ReturnsOK(t *testing.T) {
	router := newTestRouter(t, &mockVerifier{}, &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_Health_DBDown_ReturnsServiceUnavailable(t *testing.T) {
	db := &mockPinger{
		pingFn: func(ctx context.Context) error {
			return errors.New("connection refused")
		},
	}
	router := newTestRouter(t, &mockVerifier{}, db)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /health status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestRouter_Metrics_Exposed(t *testing.T) {
	router := newTestRouter(t, &mockVerifier{}, &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /metrics status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_AuthRoutes_NoTokenRequired(t *testing.T) {
	router := newTestRouter(t, &mockVerifier{}, &mockPinger{})

	// ボディ不正でも401ではなく400が返ること（認証チェーンの外にある）
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code == http.StatusUnauthorized {
		t.Error("POST /api/auth/signup should not require authentication")
	}
}

func TestRouter_ProtectedRoute_WithoutToken_Returns401(t *testing.T) {
	router := newTestRouter(t, &mockVerifier{}, &mockPinger{})

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/feed"},
		{http.MethodGet, "/api/users/user-1/"},
		{http.MethodGet, "/api/posts/post-1/"},
		{http.MethodGet, "/api/stories/"},
		{http.MethodGet, "/api/highlights/hl-1"},
		{http.MethodGet, "/api/search/users"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want %d", p.method, p.path, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestRouter_ProtectedRoute_WithValidToken_Succeeds(t *testing.T) {
	router := newTestRouter(t, validVerifier(), &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /api/feed status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_SearchRoute_Wired(t *testing.T) {
	router := newTestRouter(t, validVerifier(), &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/api/search/users?query=alice", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /api/search/users status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_UnknownRoute_Returns404(t *testing.T) {
	router := newTestRouter(t, validVerifier(), &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("GET /api/unknown status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRouter_SecurityHeaders_Applied(t *testing.T) {
	router := newTestRouter(t, &mockVerifier{}, &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
}
