// Package model はドメインモデルを定義する。
package model

import "time"

// StoryTTL はストーリーの有効期間。作成時刻 + 24時間で期限切れになる。
const StoryTTL = 24 * time.Hour

// Story は24時間で期限切れになる一時コンテンツを表す。
// expires_atを過ぎたストーリーは読み取り操作から除外され、
// クリーンアップジョブによって削除される。
type Story struct {
	ID        string
	UserID    string
	ImageURL  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Active はストーリーが指定時刻の時点で有効かどうかを返す。
// 期限判定は厳密比較（expiresAt > now）で行う。
func (s *Story) Active(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// StoryWithUser はストーリーと所有ユーザー情報を結合したモデル。
type StoryWithUser struct {
	Story
	Username     string
	ProfilePhoto string
}

// StoryGroup は1ユーザー分のアクティブなストーリーのまとまり。
// Storiesは新しい順に並ぶ。
type StoryGroup struct {
	UserID       string
	Username     string
	ProfilePhoto string
	Stories      []Story
}
