// Package model はドメインモデルを定義する。
package model

import "time"

// MaxHighlightTitleLength はハイライトタイトルの最大長。
const MaxHighlightTitleLength = 30

// Highlight はユーザーが選んだストーリーの永続コレクションを表す。
// CoverImageは作成時に先頭ストーリーの画像で固定され、
// 元ストーリーが期限切れ・削除されても更新されない。
type Highlight struct {
	ID         string
	UserID     string
	Title      string
	CoverImage string
	CreatedAt  time.Time
}

// HighlightStory はハイライトに含まれるストーリーのスナップショット。
// 元ストーリーは24時間で削除されるため、画像URLと作成時刻を
// ハイライト作成時点の値で保持する。Positionは選択順。
type HighlightStory struct {
	HighlightID    string
	StoryID        string
	ImageURL       string
	StoryCreatedAt time.Time
	Position       int
}

// HighlightSummary はハイライト一覧の1件分。含まれるストーリー数を持つ。
type HighlightSummary struct {
	Highlight
	StoriesCount int
}
