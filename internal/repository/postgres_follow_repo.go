package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/snapgram/internal/model"
)

// PostgresFollowRepo はPostgreSQLを使用したフォローグラフリポジトリ。
// エッジの追加・削除は単一文で実行されるため、followers/followingの
// 双方向一貫性は部分的な失敗で崩れない。
type PostgresFollowRepo struct {
	db *sql.DB
}

// NewPostgresFollowRepo はPostgresFollowRepoを生成する。
func NewPostgresFollowRepo(db *sql.DB) *PostgresFollowRepo {
	return &PostgresFollowRepo{db: db}
}

// Create はフォローエッジを追加する。既存の場合はinserted=falseを返す。
func (r *PostgresFollowRepo) Create(ctx context.Context, followerID, followeeID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO follows (follower_id, followee_id)
		 VALUES ($1, $2)
		 ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		followerID, followeeID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert follow edge: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Delete はフォローエッジを削除する。存在しない場合はdeleted=falseを返す。
func (r *PostgresFollowRepo) Delete(ctx context.Context, followerID, followeeID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow edge: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Exists はフォローエッジの有無を返す。
func (r *PostgresFollowRepo) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`,
		followerID, followeeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow edge: %w", err)
	}
	return exists, nil
}

// ListFollowers は指定ユーザーのフォロワー一覧を返す。
func (r *PostgresFollowRepo) ListFollowers(ctx context.Context, userID string) ([]model.UserRef, error) {
	return r.listRefs(ctx,
		`SELECT u.id, u.username
		 FROM follows f
		 JOIN users u ON u.id = f.follower_id
		 WHERE f.followee_id = $1
		 ORDER BY f.created_at DESC`,
		userID,
	)
}

// ListFollowing は指定ユーザーがフォロー中のユーザー一覧を返す。
func (r *PostgresFollowRepo) ListFollowing(ctx context.Context, userID string) ([]model.UserRef, error) {
	return r.listRefs(ctx,
		`SELECT u.id, u.username
		 FROM follows f
		 JOIN users u ON u.id = f.followee_id
		 WHERE f.follower_id = $1
		 ORDER BY f.created_at DESC`,
		userID,
	)
}

func (r *PostgresFollowRepo) listRefs(ctx context.Context, query, userID string) ([]model.UserRef, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow edges: %w", err)
	}
	defer rows.Close()

	var refs []model.UserRef
	for rows.Next() {
		var ref model.UserRef
		if err := rows.Scan(&ref.ID, &ref.Username); err != nil {
			return nil, fmt.Errorf("failed to scan follow row: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate follow rows: %w", err)
	}

	return refs, nil
}

// compile-time interface check
var _ FollowRepository = (*PostgresFollowRepo)(nil)
