// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, social, content, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeDuplicateUser      = "DUPLICATE_USER"
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodePostNotFound       = "POST_NOT_FOUND"
	ErrCodeCommentNotFound    = "COMMENT_NOT_FOUND"
	ErrCodeStoryNotFound      = "STORY_NOT_FOUND"
	ErrCodeHighlightNotFound  = "HIGHLIGHT_NOT_FOUND"
	ErrCodeSelfFollow         = "SELF_FOLLOW"
	ErrCodeAlreadyFollowing   = "ALREADY_FOLLOWING"
	ErrCodeNotFollowing       = "NOT_FOLLOWING"
	ErrCodeAlreadyLiked       = "ALREADY_LIKED"
	ErrCodeNotLiked           = "NOT_LIKED"
	ErrCodeForbidden          = "FORBIDDEN"
)

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// ユーザー不在とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "認証情報を確認して再度お試しください。",
	}
}

// NewDuplicateUserError はユーザー名またはメールアドレスの重複エラーを生成する。
func NewDuplicateUserError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUser,
		Message:  "このユーザー名またはメールアドレスは既に使用されています。",
		Category: "validation",
		Action:   "別のユーザー名・メールアドレスで登録してください。",
	}
}

// NewUsernameTakenError はプロフィール更新時のユーザー名重複エラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("このユーザー名は既に使用されています: %s", username),
		Category: "validation",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "social",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewPostNotFoundError は投稿が見つからない場合のエラーを生成する。
func NewPostNotFoundError(postID string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された投稿が見つかりません: %s", postID),
		Category: "content",
		Action:   "投稿IDを確認してください。",
	}
}

// NewCommentNotFoundError はコメントが見つからない場合のエラーを生成する。
func NewCommentNotFoundError(commentID string) *APIError {
	return &APIError{
		Code:     ErrCodeCommentNotFound,
		Message:  fmt.Sprintf("指定されたコメントが見つかりません: %s", commentID),
		Category: "content",
		Action:   "コメントIDを確認してください。",
	}
}

// NewStoryNotFoundError はストーリーが見つからない場合のエラーを生成する。
func NewStoryNotFoundError(storyID string) *APIError {
	return &APIError{
		Code:     ErrCodeStoryNotFound,
		Message:  fmt.Sprintf("指定されたストーリーが見つかりません: %s", storyID),
		Category: "content",
		Action:   "ストーリーIDを確認してください。期限切れのストーリーは自動的に削除されます。",
	}
}

// NewHighlightNotFoundError はハイライトが見つからない場合のエラーを生成する。
func NewHighlightNotFoundError(highlightID string) *APIError {
	return &APIError{
		Code:     ErrCodeHighlightNotFound,
		Message:  fmt.Sprintf("指定されたハイライトが見つかりません: %s", highlightID),
		Category: "content",
		Action:   "ハイライトIDを確認してください。",
	}
}

// NewSelfFollowError は自分自身へのフォロー操作エラーを生成する。
func NewSelfFollowError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfFollow,
		Message:  "自分自身をフォローすることはできません。",
		Category: "social",
		Action:   "他のユーザーを指定してください。",
	}
}

// NewAlreadyFollowingError は重複フォローエラーを生成する。
func NewAlreadyFollowingError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyFollowing,
		Message:  "このユーザーは既にフォローしています。",
		Category: "social",
		Action:   "フォロー中の一覧を確認してください。",
	}
}

// NewNotFollowingError はフォローしていないユーザーへのアンフォローエラーを生成する。
func NewNotFollowingError() *APIError {
	return &APIError{
		Code:     ErrCodeNotFollowing,
		Message:  "このユーザーをフォローしていません。",
		Category: "social",
		Action:   "フォロー中の一覧を確認してください。",
	}
}

// NewAlreadyLikedError は重複いいねエラーを生成する。
func NewAlreadyLikedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyLiked,
		Message:  "この投稿には既にいいねしています。",
		Category: "content",
		Action:   "いいねを取り消す場合はunlikeを使用してください。",
	}
}

// NewNotLikedError はいいねしていない投稿への取り消しエラーを生成する。
func NewNotLikedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotLiked,
		Message:  "この投稿にはいいねしていません。",
		Category: "content",
		Action:   "いいね済みの投稿を指定してください。",
	}
}

// NewForbiddenError は所有権違反エラーを生成する。
func NewForbiddenError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  message,
		Category: "content",
		Action:   "自分が所有するコンテンツのみ操作できます。",
	}
}
