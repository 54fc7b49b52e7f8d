// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hitoshi/snapgram/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。
	// パスワードハッシュを含めて返す。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByUsernameOrEmail はユーザー名またはメールアドレスの一致するユーザーを検索する。
	// サインアップ時の重複チェックに使用する。見つからない場合はnilを返す。
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)

	// FindByUsernameExcept は指定ID以外でユーザー名が一致するユーザーを検索する。
	// プロフィール更新時のユーザー名重複チェックに使用する。見つからない場合はnilを返す。
	FindByUsernameExcept(ctx context.Context, username, exceptID string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile はusername、bio、profile_photo、updated_atを更新する。
	UpdateProfile(ctx context.Context, user *model.User) error

	// SearchByUsername はユーザー名の部分一致（大文字小文字区別なし）でユーザーを検索する。
	// requesterID自身は結果から除外し、各結果にフォロー状態を付与する。
	SearchByUsername(ctx context.Context, requesterID, query string, limit int) ([]model.UserSearchRow, error)

	// ListSuggestions は {requester} ∪ フォロー中 を除くユーザーを
	// アカウント作成の新しい順に返す。
	ListSuggestions(ctx context.Context, requesterID string, limit int) ([]*model.User, error)
}

// FollowRepository はフォローグラフの永続化インターフェース。
// followsテーブルの1行がエッジ「follower → followee」を表し、
// followers/followingの双方向はこの1テーブルから導出される。
type FollowRepository interface {
	// Create はフォローエッジを追加する。
	// 既にエッジが存在する場合はinserted=falseを返す（エラーにしない）。
	Create(ctx context.Context, followerID, followeeID string) (inserted bool, err error)

	// Delete はフォローエッジを削除する。
	// エッジが存在しない場合はdeleted=falseを返す（エラーにしない）。
	Delete(ctx context.Context, followerID, followeeID string) (deleted bool, err error)

	// Exists はフォローエッジの有無を返す。
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)

	// ListFollowers は指定ユーザーのフォロワー一覧（id・username）を返す。
	ListFollowers(ctx context.Context, userID string) ([]model.UserRef, error)

	// ListFollowing は指定ユーザーがフォロー中のユーザー一覧（id・username）を返す。
	ListFollowing(ctx context.Context, userID string) ([]model.UserRef, error)
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// Create は投稿を作成する。
	Create(ctx context.Context, post *model.Post) error

	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// FindWithMeta は投稿を投稿者名・いいね数・viewerのいいね有無付きで取得する。
	// 見つからない場合はnilを返す。
	FindWithMeta(ctx context.Context, postID, viewerID string) (*model.FeedPost, error)

	// ListFeed はviewerがフォロー中のユーザーの投稿を新しい順に返す。
	// いいね数とviewer自身のいいね有無を付与する。最大limit件。
	ListFeed(ctx context.Context, viewerID string, limit int) ([]model.FeedPost, error)

	// ListByUser は指定ユーザーの全投稿を新しい順に返す。
	ListByUser(ctx context.Context, ownerID, viewerID string) ([]model.FeedPost, error)

	// UpdateCaption は投稿のキャプションを更新する。
	UpdateCaption(ctx context.Context, postID, caption string) error

	// DeleteWithComments は投稿と関連コメントを同一トランザクションで削除する。
	// 部分的な削除状態を残さない。
	DeleteWithComments(ctx context.Context, postID string) error

	// AddLike はいいね集合にユーザーを追加する。
	// 既にいいね済みの場合はinserted=falseを返す。
	AddLike(ctx context.Context, postID, userID string) (inserted bool, err error)

	// RemoveLike はいいね集合からユーザーを除去する。
	// いいねしていない場合はdeleted=falseを返す。
	RemoveLike(ctx context.Context, postID, userID string) (deleted bool, err error)

	// ListLikers は投稿にいいねしたユーザー一覧（id・username）を返す。
	ListLikers(ctx context.Context, postID string) ([]model.UserRef, error)
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// Create はコメントを作成する。
	Create(ctx context.Context, comment *model.Comment) error

	// FindByID は指定IDのコメントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Comment, error)

	// ListByPost は投稿のコメント一覧を新しい順にユーザー名付きで返す。
	ListByPost(ctx context.Context, postID string) ([]model.CommentWithUser, error)

	// DeleteByID は指定IDのコメントを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// StoryRepository はストーリーデータの永続化インターフェース。
// 読み取り系メソッドは期限切れ（expires_at <= now）の行を返さない。
type StoryRepository interface {
	// Create はストーリーを作成する。
	Create(ctx context.Context, story *model.Story) error

	// FindByID は指定IDのストーリーを取得する。期限切れかどうかは判定しない。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Story, error)

	// ListActiveForViewer はviewer自身とフォロー中ユーザーのアクティブな
	// ストーリーを新しい順にユーザー情報付きで返す。
	ListActiveForViewer(ctx context.Context, viewerID string, now time.Time) ([]model.StoryWithUser, error)

	// ListActiveByUser は指定ユーザーのアクティブなストーリーを新しい順に返す。
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]model.StoryWithUser, error)

	// ListOwnedByIDs は指定IDのうちownerIDが所有するストーリーを返す。
	// ハイライト作成時の所有権検証に使用する。渡したID順ではなく作成順で返す。
	ListOwnedByIDs(ctx context.Context, ownerID string, ids []string) ([]*model.Story, error)

	// DeleteByID は指定IDのストーリーを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// HighlightRepository はハイライトデータの永続化インターフェース。
type HighlightRepository interface {
	// CreateWithStories はハイライト本体とストーリースナップショットを
	// 同一トランザクションで作成する。
	CreateWithStories(ctx context.Context, highlight *model.Highlight, stories []model.HighlightStory) error

	// FindByID は指定IDのハイライトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Highlight, error)

	// ListByUser は指定ユーザーのハイライト一覧をストーリー数付きで新しい順に返す。
	ListByUser(ctx context.Context, userID string) ([]model.HighlightSummary, error)

	// ListStories はハイライトに含まれるストーリースナップショットをposition順に返す。
	ListStories(ctx context.Context, highlightID string) ([]model.HighlightStory, error)

	// DeleteByID は指定IDのハイライトを削除する。
	// highlight_storiesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
