// Package model はドメインモデルを定義する。
package model

import "time"

// 入力テキストの最大長。
const (
	MaxCaptionLength = 500
	MaxCommentLength = 500
	MaxBioLength     = 150
	MaxUsernameLength = 30
	MinUsernameLength = 3
)

// Post はユーザーの投稿を表す。
type Post struct {
	ID        string
	UserID    string
	ImageURL  string
	Caption   string
	CreatedAt time.Time
}

// FeedPost は投稿とフィード表示に必要な付加情報を結合したモデル。
// 投稿者名・いいね数・閲覧ユーザー自身のいいね有無をJOINで取得する。
type FeedPost struct {
	Post
	Username   string
	LikesCount int
	IsLiked    bool
}

// Comment は投稿へのコメントを表す。
type Comment struct {
	ID        string
	UserID    string
	PostID    string
	Text      string
	CreatedAt time.Time
}

// CommentWithUser はコメントとコメント投稿者情報を結合したモデル。
type CommentWithUser struct {
	Comment
	Username string
}
