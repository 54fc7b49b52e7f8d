// Package auth はサインアップ・ログインとBearerトークン管理を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/snapgram/internal/model"
	"github.com/hitoshi/snapgram/internal/repository"
)

// emailPattern はメールアドレスの簡易フォーマット検証。
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 6

// TokenIssuer はトークン発行のインターフェース。
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, tokens TokenIssuer) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Signup は新規ユーザーを登録し、Bearerトークンを発行する。
// ユーザー名・メールアドレスの重複はConflictとして報告する。
func (s *Service) Signup(ctx context.Context, username, email, password string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateSignupInput(username, email, password); err != nil {
		return nil, "", err
	}

	// ユーザー名・メールアドレスの重複チェック
	existing, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, "", fmt.Errorf("ユーザーの重複チェックに失敗しました: %w", err)
	}
	if existing != nil {
		return nil, "", model.NewDuplicateUserError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	slog.Info("new user signed up",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, token, nil
}

// Login は認証情報を検証し、Bearerトークンを発行する。
// ユーザー不在とパスワード不一致は同一のエラーとして報告する。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" || password == "" {
		return nil, "", model.NewValidationError("メールアドレスとパスワードを入力してください。")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, "", model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return user, token, nil
}

// validateSignupInput はサインアップ入力を検証する。
func validateSignupInput(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return model.NewValidationError("ユーザー名・メールアドレス・パスワードは必須です。")
	}
	if len(username) < model.MinUsernameLength || len(username) > model.MaxUsernameLength {
		return model.NewValidationError(
			fmt.Sprintf("ユーザー名は%d〜%d文字で指定してください。", model.MinUsernameLength, model.MaxUsernameLength))
	}
	if !emailPattern.MatchString(email) {
		return model.NewValidationError("メールアドレスの形式が正しくありません。")
	}
	if len(password) < minPasswordLength {
		return model.NewValidationError(
			fmt.Sprintf("パスワードは%d文字以上で指定してください。", minPasswordLength))
	}
	return nil
}
