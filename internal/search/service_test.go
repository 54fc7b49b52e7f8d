package search

import (
	"context"
	"testing"

	"github.com/hitoshi/snapgram/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	searchByUsernameFn func(ctx context.Context, requesterID, query string, limit int) ([]model.UserSearchRow, error)
	listSuggestionsFn  func(ctx context.Context, requesterID string, limit int) ([]*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) FindByUsernameExcept(ctx context.Context, username, exceptID string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return nil
}
func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	return nil
}
func (m *mockUserRepo) SearchByUsername(ctx context.Context, requesterID, query string, limit int) ([]model.UserSearchRow, error) {
	return m.searchByUsernameFn(ctx, requesterID, query, limit)
}
func (m *mockUserRepo) ListSuggestions(ctx context.Context, requesterID string, limit int) ([]*model.User, error) {
	return m.listSuggestionsFn(ctx, requesterID, limit)
}

// --- テスト ---

// TestService_SearchUsers は検索クエリの前後空白除去と上限件数の指定を検証する。
func TestService_SearchUsers(t *testing.T) {
	repo := &mockUserRepo{
		searchByUsernameFn: func(ctx context.Context, requesterID, query string, limit int) ([]model.UserSearchRow, error) {
			if query != "alice" {
				t.Errorf("query = %q, want %q", query, "alice")
			}
			if limit != SearchLimit {
				t.Errorf("limit = %d, want %d", limit, SearchLimit)
			}
			return []model.UserSearchRow{
				{ID: "user-2", Username: "alice", IsFollowing: true},
			}, nil
		},
	}

	svc := NewService(repo)

	rows, err := svc.SearchUsers(context.Background(), "user-1", "  alice  ")
	if err != nil {
		t.Fatalf("SearchUsers returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if !rows[0].IsFollowing {
		t.Error("IsFollowing = false, want true")
	}
}

// TestService_SearchUsers_BlankQuery_ReturnsEmpty は空白のみのクエリで
// 検索を行わず空の結果を返すことを検証する。
func TestService_SearchUsers_BlankQuery_ReturnsEmpty(t *testing.T) {
	repo := &mockUserRepo{
		searchByUsernameFn: func(ctx context.Context, requesterID, query string, limit int) ([]model.UserSearchRow, error) {
			t.Error("SearchByUsername should not be called for a blank query")
			return nil, nil
		},
	}

	svc := NewService(repo)

	rows, err := svc.SearchUsers(context.Background(), "user-1", "   ")
	if err != nil {
		t.Fatalf("SearchUsers returned error: %v", err)
	}
	if rows == nil {
		t.Fatal("rows is nil, want empty slice")
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
}

// TestService_SearchUsers_NoMatches_ReturnsEmpty は結果0件でnilではなく
// 空スライスを返すことを検証する。
func TestService_SearchUsers_NoMatches_ReturnsEmpty(t *testing.T) {
	repo := &mockUserRepo{
		searchByUsernameFn: func(ctx context.Context, requesterID, query string, limit int) ([]model.UserSearchRow, error) {
			return nil, nil
		},
	}

	svc := NewService(repo)

	rows, err := svc.SearchUsers(context.Background(), "user-1", "nobody")
	if err != nil {
		t.Fatalf("SearchUsers returned error: %v", err)
	}
	if rows == nil {
		t.Fatal("rows is nil, want empty slice")
	}
}

// TestService_Suggestions はおすすめユーザー取得の上限件数を検証する。
func TestService_Suggestions(t *testing.T) {
	repo := &mockUserRepo{
		listSuggestionsFn: func(ctx context.Context, requesterID string, limit int) ([]*model.User, error) {
			if requesterID != "user-1" {
				t.Errorf("requesterID = %q, want %q", requesterID, "user-1")
			}
			if limit != SuggestionsLimit {
				t.Errorf("limit = %d, want %d", limit, SuggestionsLimit)
			}
			return []*model.User{{ID: "user-9", Username: "newcomer"}}, nil
		},
	}

	svc := NewService(repo)

	users, err := svc.Suggestions(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Suggestions returned error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("users = %d, want 1", len(users))
	}
	if users[0].Username != "newcomer" {
		t.Errorf("Username = %q, want %q", users[0].Username, "newcomer")
	}
}
