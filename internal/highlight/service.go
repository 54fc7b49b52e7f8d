// Package highlight はストーリーハイライトのドメインロジックを提供する。
package highlight

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/snapgram/internal/model"
	"github.com/hitoshi/snapgram/internal/repository"
	"github.com/hitoshi/snapgram/internal/security"
)

// HighlightDetail はハイライト本体と含まれるストーリースナップショット。
type HighlightDetail struct {
	Highlight model.Highlight
	Stories   []model.HighlightStory
}

// Service はハイライトに関するビジネスロジックを提供する。
// ハイライトはストーリーのスナップショットを保持するため、
// 元ストーリーが期限切れ・削除されても内容は変わらない。
type Service struct {
	highlightRepo repository.HighlightRepository
	storyRepo     repository.StoryRepository
	sanitizer     security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	highlightRepo repository.HighlightRepository,
	storyRepo repository.StoryRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		highlightRepo: highlightRepo,
		storyRepo:     storyRepo,
		sanitizer:     sanitizer,
	}
}

// CreateHighlight は選択したストーリーからハイライトを作成する。
// 選択ストーリーは全て作成ユーザー自身の所有でなければならない。
// カバー画像は選択順の先頭ストーリーの画像で固定される。
func (s *Service) CreateHighlight(ctx context.Context, userID, title string, storyIDs []string) (*HighlightDetail, error) {
	title = s.sanitizer.Sanitize(title)
	if title == "" {
		return nil, model.NewValidationError("タイトルを入力してください。")
	}
	if utf8.RuneCountInString(title) > model.MaxHighlightTitleLength {
		return nil, model.NewValidationError(
			fmt.Sprintf("タイトルは%d文字以内で入力してください。", model.MaxHighlightTitleLength))
	}
	if len(storyIDs) == 0 {
		return nil, model.NewValidationError("ストーリーを1件以上選択してください。")
	}

	// 選択ストーリーの所有権検証。重複IDは1件として扱う。
	unique := dedupe(storyIDs)
	owned, err := s.storyRepo.ListOwnedByIDs(ctx, userID, unique)
	if err != nil {
		return nil, fmt.Errorf("ストーリーの取得に失敗しました: %w", err)
	}
	byID := make(map[string]*model.Story, len(owned))
	for _, st := range owned {
		byID[st.ID] = st
	}
	for _, id := range unique {
		if _, ok := byID[id]; !ok {
			return nil, model.NewStoryNotFoundError(id)
		}
	}

	highlight := &model.Highlight{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now(),
	}

	// スナップショットは選択順に並べる。カバーは先頭の画像。
	snapshots := make([]model.HighlightStory, len(unique))
	for i, id := range unique {
		st := byID[id]
		snapshots[i] = model.HighlightStory{
			HighlightID:    highlight.ID,
			StoryID:        st.ID,
			ImageURL:       st.ImageURL,
			StoryCreatedAt: st.CreatedAt,
			Position:       i,
		}
	}
	highlight.CoverImage = snapshots[0].ImageURL

	if err := s.highlightRepo.CreateWithStories(ctx, highlight, snapshots); err != nil {
		return nil, fmt.Errorf("ハイライトの作成に失敗しました: %w", err)
	}

	slog.Info("highlight created",
		slog.String("highlight_id", highlight.ID),
		slog.String("user_id", userID),
		slog.Int("stories", len(snapshots)),
	)

	return &HighlightDetail{Highlight: *highlight, Stories: snapshots}, nil
}

// ListByUser は指定ユーザーのハイライト一覧をストーリー数付きで新しい順に返す。
func (s *Service) ListByUser(ctx context.Context, userID string) ([]model.HighlightSummary, error) {
	highlights, err := s.highlightRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ハイライト一覧の取得に失敗しました: %w", err)
	}
	if highlights == nil {
		highlights = []model.HighlightSummary{}
	}
	return highlights, nil
}

// GetHighlight はハイライトを含まれるストーリー付きで返す。
func (s *Service) GetHighlight(ctx context.Context, highlightID string) (*HighlightDetail, error) {
	highlight, err := s.highlightRepo.FindByID(ctx, highlightID)
	if err != nil {
		return nil, fmt.Errorf("ハイライトの取得に失敗しました: %w", err)
	}
	if highlight == nil {
		return nil, model.NewHighlightNotFoundError(highlightID)
	}

	stories, err := s.highlightRepo.ListStories(ctx, highlightID)
	if err != nil {
		return nil, fmt.Errorf("ハイライトのストーリー取得に失敗しました: %w", err)
	}
	if stories == nil {
		stories = []model.HighlightStory{}
	}

	return &HighlightDetail{Highlight: *highlight, Stories: stories}, nil
}

// DeleteHighlight はハイライトを削除する。ハイライトの所有者のみ実行できる。
// スナップショットのみが削除され、元ストーリーには影響しない。
func (s *Service) DeleteHighlight(ctx context.Context, highlightID, userID string) error {
	highlight, err := s.highlightRepo.FindByID(ctx, highlightID)
	if err != nil {
		return fmt.Errorf("ハイライトの取得に失敗しました: %w", err)
	}
	if highlight == nil {
		return model.NewHighlightNotFoundError(highlightID)
	}
	if highlight.UserID != userID {
		return model.NewForbiddenError("このハイライトを削除する権限がありません。")
	}

	if err := s.highlightRepo.DeleteByID(ctx, highlightID); err != nil {
		return fmt.Errorf("ハイライトの削除に失敗しました: %w", err)
	}

	return nil
}

// dedupe は順序を保ったまま重複IDを除去する。
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
