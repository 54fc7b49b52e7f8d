// Package feed はホームフィード合成のドメインロジックを提供する。
package feed

import (
	"context"
	"fmt"

	"github.com/hitoshi/snapgram/internal/model"
	"github.com/hitoshi/snapgram/internal/repository"
)

// FeedLimit はホームフィード1回の取得件数の上限。
const FeedLimit = 50

// Service はフォローグラフから導出されるホームフィードを提供する。
type Service struct {
	postRepo repository.PostRepository
}

// NewService はServiceを生成する。
func NewService(postRepo repository.PostRepository) *Service {
	return &Service{postRepo: postRepo}
}

// GetFeed はviewerがフォロー中のユーザーの投稿を新しい順に返す。
// 各投稿にはいいね数とviewer自身のいいね有無が付与される。
// フォローが0件の場合やフォロー先に投稿がない場合は空のスライスを返す。
func (s *Service) GetFeed(ctx context.Context, viewerID string) ([]model.FeedPost, error) {
	posts, err := s.postRepo.ListFeed(ctx, viewerID, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得に失敗しました: %w", err)
	}

	if posts == nil {
		posts = []model.FeedPost{}
	}

	return posts, nil
}
