// Package follow はフォローグラフのドメインロジックを提供する。
package follow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/snapgram/internal/model"
	"github.com/hitoshi/snapgram/internal/repository"
)

// Service はフォロー・アンフォローのビジネスロジックを提供する。
// フォロー関係はfollowsテーブルのエッジ1行で表現されるため、
// followers/followingの整合性は構造的に保証される。
type Service struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow はfollowerIDからtargetIDへのフォローエッジを追加する。
// 自分自身へのフォローと重複フォローはエラーとして報告する。
func (s *Service) Follow(ctx context.Context, followerID, targetID string) error {
	if followerID == targetID {
		return model.NewSelfFollowError()
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("フォロー対象ユーザーの取得に失敗しました: %w", err)
	}
	if target == nil {
		return model.NewUserNotFoundError()
	}

	inserted, err := s.followRepo.Create(ctx, followerID, targetID)
	if err != nil {
		return fmt.Errorf("フォローの作成に失敗しました: %w", err)
	}
	if !inserted {
		return model.NewAlreadyFollowingError()
	}

	slog.Info("user followed",
		slog.String("follower_id", followerID),
		slog.String("followee_id", targetID),
	)

	return nil
}

// Unfollow はfollowerIDからtargetIDへのフォローエッジを削除する。
// エッジが存在しない場合はエラーとして報告する。
func (s *Service) Unfollow(ctx context.Context, followerID, targetID string) error {
	if followerID == targetID {
		return model.NewSelfFollowError()
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("フォロー対象ユーザーの取得に失敗しました: %w", err)
	}
	if target == nil {
		return model.NewUserNotFoundError()
	}

	deleted, err := s.followRepo.Delete(ctx, followerID, targetID)
	if err != nil {
		return fmt.Errorf("フォローの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewNotFollowingError()
	}

	slog.Info("user unfollowed",
		slog.String("follower_id", followerID),
		slog.String("followee_id", targetID),
	)

	return nil
}
