// Package post は投稿・いいね・コメントのドメインロジックを提供する。
package post

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/snapgram/internal/model"
	"github.com/hitoshi/snapgram/internal/repository"
	"github.com/hitoshi/snapgram/internal/security"
)

// Recorder は投稿作成のメトリクス記録インターフェース。
type Recorder interface {
	RecordPostCreated()
}

// Service は投稿に関するビジネスロジックを提供する。
// いいね・コメントも投稿のサブリソースとしてここで扱う。
type Service struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	sanitizer   security.ContentSanitizerService
	recorder    Recorder
}

// NewService はServiceを生成する。
func NewService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	sanitizer security.ContentSanitizerService,
	recorder Recorder,
) *Service {
	return &Service{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		sanitizer:   sanitizer,
		recorder:    recorder,
	}
}

// CreatePost は新しい投稿を作成する。
// キャプションはサニタイズ後に長さ検証を行う。画像URLは必須。
func (s *Service) CreatePost(ctx context.Context, userID, imageURL, caption string) (*model.Post, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, model.NewValidationError("画像を指定してください。")
	}

	caption = s.sanitizer.Sanitize(caption)
	if utf8.RuneCountInString(caption) > model.MaxCaptionLength {
		return nil, model.NewValidationError(
			fmt.Sprintf("キャプションは%d文字以内で入力してください。", model.MaxCaptionLength))
	}

	post := &model.Post{
		ID:        uuid.New().String(),
		UserID:    userID,
		ImageURL:  imageURL,
		Caption:   caption,
		CreatedAt: time.Now(),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("投稿の作成に失敗しました: %w", err)
	}

	s.recorder.RecordPostCreated()

	slog.Info("post created",
		slog.String("post_id", post.ID),
		slog.String("user_id", userID),
	)

	return post, nil
}

// GetPost は投稿を投稿者名・いいね数・viewerのいいね有無付きで返す。
func (s *Service) GetPost(ctx context.Context, postID, viewerID string) (*model.FeedPost, error) {
	post, err := s.postRepo.FindWithMeta(ctx, postID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	return post, nil
}

// ListByUser は指定ユーザーの全投稿を新しい順に返す。
func (s *Service) ListByUser(ctx context.Context, ownerID, viewerID string) ([]model.FeedPost, error) {
	posts, err := s.postRepo.ListByUser(ctx, ownerID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	if posts == nil {
		posts = []model.FeedPost{}
	}
	return posts, nil
}

// UpdateCaption は投稿のキャプションを更新する。投稿の所有者のみ実行できる。
func (s *Service) UpdateCaption(ctx context.Context, postID, userID, caption string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	if post.UserID != userID {
		return nil, model.NewForbiddenError("この投稿のキャプションを編集する権限がありません。")
	}

	caption = s.sanitizer.Sanitize(caption)
	if utf8.RuneCountInString(caption) > model.MaxCaptionLength {
		return nil, model.NewValidationError(
			fmt.Sprintf("キャプションは%d文字以内で入力してください。", model.MaxCaptionLength))
	}

	if err := s.postRepo.UpdateCaption(ctx, postID, caption); err != nil {
		return nil, fmt.Errorf("キャプションの更新に失敗しました: %w", err)
	}

	post.Caption = caption
	return post, nil
}

// DeletePost は投稿を関連コメントごと削除する。投稿の所有者のみ実行できる。
// 投稿・コメントの削除は同一トランザクションで行われ、部分的な削除状態を残さない。
func (s *Service) DeletePost(ctx context.Context, postID, userID string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return model.NewPostNotFoundError(postID)
	}
	if post.UserID != userID {
		return model.NewForbiddenError("この投稿を削除する権限がありません。")
	}

	if err := s.postRepo.DeleteWithComments(ctx, postID); err != nil {
		return fmt.Errorf("投稿の削除に失敗しました: %w", err)
	}

	slog.Info("post deleted",
		slog.String("post_id", postID),
		slog.String("user_id", userID),
	)

	return nil
}

// Like は投稿のいいね集合にユーザーを追加する。
// 存在しない投稿へのいいねと重複いいねはエラーとして報告する。
func (s *Service) Like(ctx context.Context, postID, userID string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return model.NewPostNotFoundError(postID)
	}

	inserted, err := s.postRepo.AddLike(ctx, postID, userID)
	if err != nil {
		return fmt.Errorf("いいねの追加に失敗しました: %w", err)
	}
	if !inserted {
		return model.NewAlreadyLikedError()
	}

	return nil
}

// Unlike は投稿のいいね集合からユーザーを除去する。
// いいねしていない投稿への解除はエラーとして報告する。
func (s *Service) Unlike(ctx context.Context, postID, userID string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return model.NewPostNotFoundError(postID)
	}

	deleted, err := s.postRepo.RemoveLike(ctx, postID, userID)
	if err != nil {
		return fmt.Errorf("いいねの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewNotLikedError()
	}

	return nil
}

// ListLikers は投稿にいいねしたユーザー一覧を返す。
func (s *Service) ListLikers(ctx context.Context, postID string) ([]model.UserRef, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	likers, err := s.postRepo.ListLikers(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("いいね一覧の取得に失敗しました: %w", err)
	}
	if likers == nil {
		likers = []model.UserRef{}
	}
	return likers, nil
}

// AddComment は投稿にコメントを追加する。
// 本文はサニタイズ後に空・長さ検証を行う。
func (s *Service) AddComment(ctx context.Context, postID, userID, text string) (*model.Comment, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	text = s.sanitizer.Sanitize(text)
	if text == "" {
		return nil, model.NewValidationError("コメントを入力してください。")
	}
	if utf8.RuneCountInString(text) > model.MaxCommentLength {
		return nil, model.NewValidationError(
			fmt.Sprintf("コメントは%d文字以内で入力してください。", model.MaxCommentLength))
	}

	comment := &model.Comment{
		ID:        uuid.New().String(),
		UserID:    userID,
		PostID:    postID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("コメントの作成に失敗しました: %w", err)
	}

	return comment, nil
}

// ListComments は投稿のコメント一覧を新しい順に返す。
// コメントの表示権限判定に使うため、投稿の所有者IDも合わせて返す。
func (s *Service) ListComments(ctx context.Context, postID string) ([]model.CommentWithUser, string, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, "", fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, "", model.NewPostNotFoundError(postID)
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, "", fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}
	if comments == nil {
		comments = []model.CommentWithUser{}
	}
	return comments, post.UserID, nil
}

// DeleteComment はコメントを削除する。
// コメントの所有者、またはコメント先投稿の所有者のみ実行できる。
func (s *Service) DeleteComment(ctx context.Context, commentID, userID string) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("コメントの取得に失敗しました: %w", err)
	}
	if comment == nil {
		return model.NewCommentNotFoundError(commentID)
	}

	if comment.UserID != userID {
		post, err := s.postRepo.FindByID(ctx, comment.PostID)
		if err != nil {
			return fmt.Errorf("投稿の取得に失敗しました: %w", err)
		}
		if post == nil || post.UserID != userID {
			return model.NewForbiddenError("このコメントを削除する権限がありません。")
		}
	}

	if err := s.commentRepo.DeleteByID(ctx, commentID); err != nil {
		return fmt.Errorf("コメントの削除に失敗しました: %w", err)
	}

	return nil
}
