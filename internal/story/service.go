// Package story は24時間で期限切れになるストーリーのドメインロジックを提供する。
package story

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/snapgram/internal/model"
	"github.com/hitoshi/snapgram/internal/repository"
)

// Recorder はストーリー作成のメトリクス記録インターフェース。
type Recorder interface {
	RecordStoryCreated()
}

// Service はストーリーに関するビジネスロジックを提供する。
// 期限判定は読み取り時に厳密比較（expires_at > now）で行い、
// 期限切れ行の物理削除はクリーンアップジョブに任せる。
type Service struct {
	storyRepo repository.StoryRepository
	ttl       time.Duration
	recorder  Recorder
	now       func() time.Time
}

// NewService はServiceを生成する。ttlはストーリーの有効期間。
func NewService(storyRepo repository.StoryRepository, ttl time.Duration, recorder Recorder) *Service {
	return &Service{
		storyRepo: storyRepo,
		ttl:       ttl,
		recorder:  recorder,
		now:       time.Now,
	}
}

// CreateStory は新しいストーリーを作成する。
// 期限は作成時刻 + TTL で固定される。
func (s *Service) CreateStory(ctx context.Context, userID, imageURL string) (*model.Story, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, model.NewValidationError("画像を指定してください。")
	}

	now := s.now()
	story := &model.Story{
		ID:        uuid.New().String(),
		UserID:    userID,
		ImageURL:  imageURL,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("ストーリーの作成に失敗しました: %w", err)
	}

	s.recorder.RecordStoryCreated()

	slog.Info("story created",
		slog.String("story_id", story.ID),
		slog.String("user_id", userID),
	)

	return story, nil
}

// ListActive はviewer自身とフォロー中ユーザーのアクティブなストーリーを
// ユーザーごとにまとめて返す。グループはグループ内の最新ストーリー順、
// グループ内のストーリーは新しい順に並ぶ。
func (s *Service) ListActive(ctx context.Context, viewerID string) ([]model.StoryGroup, error) {
	rows, err := s.storyRepo.ListActiveForViewer(ctx, viewerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("ストーリー一覧の取得に失敗しました: %w", err)
	}

	return groupByUser(rows), nil
}

// ListByUser は指定ユーザーのアクティブなストーリーを新しい順に返す。
func (s *Service) ListByUser(ctx context.Context, userID string) ([]model.Story, error) {
	rows, err := s.storyRepo.ListActiveByUser(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("ストーリー一覧の取得に失敗しました: %w", err)
	}

	stories := make([]model.Story, len(rows))
	for i, row := range rows {
		stories[i] = row.Story
	}
	return stories, nil
}

// DeleteStory はストーリーを削除する。ストーリーの所有者のみ実行できる。
// 既に期限切れのストーリーは存在しないものとして扱う。
func (s *Service) DeleteStory(ctx context.Context, storyID, userID string) error {
	story, err := s.storyRepo.FindByID(ctx, storyID)
	if err != nil {
		return fmt.Errorf("ストーリーの取得に失敗しました: %w", err)
	}
	if story == nil || !story.Active(s.now()) {
		return model.NewStoryNotFoundError(storyID)
	}
	if story.UserID != userID {
		return model.NewForbiddenError("このストーリーを削除する権限がありません。")
	}

	if err := s.storyRepo.DeleteByID(ctx, storyID); err != nil {
		return fmt.Errorf("ストーリーの削除に失敗しました: %w", err)
	}

	slog.Info("story deleted",
		slog.String("story_id", storyID),
		slog.String("user_id", userID),
	)

	return nil
}

// groupByUser はユーザー情報付きストーリーの列をユーザーごとにまとめる。
// 入力は全体で新しい順に並んでいるため、各ユーザーの初出順が
// そのままグループの並び順（最新ストーリーを持つユーザーが先頭）になる。
func groupByUser(rows []model.StoryWithUser) []model.StoryGroup {
	groups := []model.StoryGroup{}
	index := map[string]int{}

	for _, row := range rows {
		i, ok := index[row.UserID]
		if !ok {
			i = len(groups)
			index[row.UserID] = i
			groups = append(groups, model.StoryGroup{
				UserID:       row.UserID,
				Username:     row.Username,
				ProfilePhoto: row.ProfilePhoto,
			})
		}
		groups[i].Stories = append(groups[i].Stories, row.Story)
	}

	return groups
}
