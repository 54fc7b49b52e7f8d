// Package user はプロフィール管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/snapgram/internal/model"
	"github.com/hitoshi/snapgram/internal/repository"
	"github.com/hitoshi/snapgram/internal/security"
)

// Profile はプロフィール表示用のドメインオブジェクト。
// フォロワー・フォロー中の一覧とリクエストユーザーからのフォロー状態を含む。
type Profile struct {
	User        model.User
	Followers   []model.UserRef
	Following   []model.UserRef
	IsFollowing bool
}

// ProfileUpdate はプロフィール更新の入力。
// nilのフィールドは更新しない。
type ProfileUpdate struct {
	Username     *string
	Bio          *string
	ProfilePhoto *string
}

// Service はプロフィールに関するビジネスロジックを提供する。
type Service struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	sanitizer  security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		userRepo:   userRepo,
		followRepo: followRepo,
		sanitizer:  sanitizer,
	}
}

// GetProfile は指定ユーザーのプロフィールを返す。
// フォロワー・フォロー中の一覧はフォローグラフから導出され、
// requesterから見たフォロー状態を付与する。
func (s *Service) GetProfile(ctx context.Context, userID, requesterID string) (*Profile, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError()
	}

	followers, err := s.followRepo.ListFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("フォロワー一覧の取得に失敗しました: %w", err)
	}
	if followers == nil {
		followers = []model.UserRef{}
	}

	following, err := s.followRepo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("フォロー中一覧の取得に失敗しました: %w", err)
	}
	if following == nil {
		following = []model.UserRef{}
	}

	isFollowing := false
	if requesterID != userID {
		isFollowing, err = s.followRepo.Exists(ctx, requesterID, userID)
		if err != nil {
			return nil, fmt.Errorf("フォロー状態の取得に失敗しました: %w", err)
		}
	}

	return &Profile{
		User:        *u,
		Followers:   followers,
		Following:   following,
		IsFollowing: isFollowing,
	}, nil
}

// UpdateProfile は自分自身のプロフィールを更新する。
// ユーザー名を変更する場合は他ユーザーとの重複を検証する。
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError()
	}

	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if len(username) < model.MinUsernameLength || len(username) > model.MaxUsernameLength {
			return nil, model.NewValidationError(
				fmt.Sprintf("ユーザー名は%d〜%d文字で指定してください。", model.MinUsernameLength, model.MaxUsernameLength))
		}

		if username != u.Username {
			existing, err := s.userRepo.FindByUsernameExcept(ctx, username, userID)
			if err != nil {
				return nil, fmt.Errorf("ユーザー名の重複チェックに失敗しました: %w", err)
			}
			if existing != nil {
				return nil, model.NewUsernameTakenError(username)
			}
		}

		u.Username = username
	}

	if update.Bio != nil {
		bio := s.sanitizer.Sanitize(*update.Bio)
		if utf8.RuneCountInString(bio) > model.MaxBioLength {
			return nil, model.NewValidationError(
				fmt.Sprintf("自己紹介は%d文字以内で入力してください。", model.MaxBioLength))
		}
		u.Bio = bio
	}

	if update.ProfilePhoto != nil {
		u.ProfilePhoto = strings.TrimSpace(*update.ProfilePhoto)
	}

	u.UpdatedAt = time.Now()

	if err := s.userRepo.UpdateProfile(ctx, u); err != nil {
		return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}

	slog.Info("profile updated",
		slog.String("user_id", userID),
	)

	return u, nil
}
