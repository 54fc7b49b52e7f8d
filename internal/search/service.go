// Package search はユーザー検索とおすすめユーザーのドメインロジックを提供する。
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/hitoshi/snapgram/internal/model"
	"github.com/hitoshi/snapgram/internal/repository"
)

// 取得件数の上限。
const (
	SearchLimit      = 20
	SuggestionsLimit = 10
)

// Service はユーザー検索のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// SearchUsers はユーザー名の部分一致（大文字小文字区別なし）で検索する。
// リクエストユーザー自身は結果から除外し、各結果にフォロー状態を付与する。
// クエリが空白のみの場合は検索を行わず空の結果を返す。
func (s *Service) SearchUsers(ctx context.Context, requesterID, query string) ([]model.UserSearchRow, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.UserSearchRow{}, nil
	}

	rows, err := s.userRepo.SearchByUsername(ctx, requesterID, query, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("ユーザー検索に失敗しました: %w", err)
	}
	if rows == nil {
		rows = []model.UserSearchRow{}
	}
	return rows, nil
}

// Suggestions はまだフォローしていないユーザーをアカウント作成の新しい順に返す。
// リクエストユーザー自身とフォロー中のユーザーは除外される。
func (s *Service) Suggestions(ctx context.Context, requesterID string) ([]*model.User, error) {
	users, err := s.userRepo.ListSuggestions(ctx, requesterID, SuggestionsLimit)
	if err != nil {
		return nil, fmt.Errorf("おすすめユーザーの取得に失敗しました: %w", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}
