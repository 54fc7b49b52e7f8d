// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュで、APIレスポンスには決して含めない。
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	ProfilePhoto string // プロフィール画像URL。未設定の場合は空文字列。
	Bio          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRef はフォロワー一覧等で使用するユーザーへの軽量参照。
type UserRef struct {
	ID       string
	Username string
}

// UserSearchRow はユーザー検索の1件分の結果。
// リクエストユーザーから見たフォロー状態を含む。
type UserSearchRow struct {
	ID           string
	Username     string
	ProfilePhoto string
	IsFollowing  bool
}
