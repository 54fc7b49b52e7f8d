package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/snapgram/internal/model"
)

// PostgresStoryRepo はPostgreSQLを使用したストーリーリポジトリ。
type PostgresStoryRepo struct {
	db *sql.DB
}

// NewPostgresStoryRepo はPostgresStoryRepoを生成する。
func NewPostgresStoryRepo(db *sql.DB) *PostgresStoryRepo {
	return &PostgresStoryRepo{db: db}
}

// Create はストーリーを作成する。
func (r *PostgresStoryRepo) Create(ctx context.Context, story *model.Story) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stories (id, user_id, image_url, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		story.ID, story.UserID, story.ImageURL, story.CreatedAt, story.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert story: %w", err)
	}
	return nil
}

// FindByID は指定IDのストーリーを取得する。見つからない場合はnilを返す。
func (r *PostgresStoryRepo) FindByID(ctx context.Context, id string) (*model.Story, error) {
	story := &model.Story{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, image_url, created_at, expires_at FROM stories WHERE id = $1`,
		id,
	).Scan(&story.ID, &story.UserID, &story.ImageURL, &story.CreatedAt, &story.ExpiresAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find story by ID: %w", err)
	}

	return story, nil
}

// ListActiveForViewer はviewer自身とフォロー中ユーザーのアクティブな
// ストーリーを新しい順にユーザー情報付きで返す。
// 期限判定は厳密比較（expires_at > now）。
func (r *PostgresStoryRepo) ListActiveForViewer(ctx context.Context, viewerID string, now time.Time) ([]model.StoryWithUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.user_id, s.image_url, s.created_at, s.expires_at,
		        u.username, u.profile_photo
		 FROM stories s
		 JOIN users u ON u.id = s.user_id
		 WHERE (s.user_id = $1
		        OR s.user_id IN (SELECT followee_id FROM follows WHERE follower_id = $1))
		   AND s.expires_at > $2
		 ORDER BY s.created_at DESC`,
		viewerID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active stories: %w", err)
	}
	defer rows.Close()

	return scanStoriesWithUser(rows)
}

// ListActiveByUser は指定ユーザーのアクティブなストーリーを新しい順に返す。
func (r *PostgresStoryRepo) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]model.StoryWithUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.user_id, s.image_url, s.created_at, s.expires_at,
		        u.username, u.profile_photo
		 FROM stories s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.user_id = $1 AND s.expires_at > $2
		 ORDER BY s.created_at DESC`,
		userID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user stories: %w", err)
	}
	defer rows.Close()

	return scanStoriesWithUser(rows)
}

func scanStoriesWithUser(rows *sql.Rows) ([]model.StoryWithUser, error) {
	var stories []model.StoryWithUser
	for rows.Next() {
		var s model.StoryWithUser
		var profilePhoto sql.NullString
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.ImageURL, &s.CreatedAt, &s.ExpiresAt,
			&s.Username, &profilePhoto,
		); err != nil {
			return nil, fmt.Errorf("failed to scan story row: %w", err)
		}
		s.ProfilePhoto = nullStringValue(profilePhoto)
		stories = append(stories, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate story rows: %w", err)
	}
	return stories, nil
}

// ListOwnedByIDs は指定IDのうちownerIDが所有するストーリーを作成順で返す。
func (r *PostgresStoryRepo) ListOwnedByIDs(ctx context.Context, ownerID string, ids []string) ([]*model.Story, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, image_url, created_at, expires_at
		 FROM stories
		 WHERE user_id = $1 AND id = ANY($2)
		 ORDER BY created_at`,
		ownerID, pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned stories: %w", err)
	}
	defer rows.Close()

	var stories []*model.Story
	for rows.Next() {
		story := &model.Story{}
		if err := rows.Scan(&story.ID, &story.UserID, &story.ImageURL, &story.CreatedAt, &story.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan story row: %w", err)
		}
		stories = append(stories, story)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate story rows: %w", err)
	}

	return stories, nil
}

// DeleteByID は指定IDのストーリーを削除する。
func (r *PostgresStoryRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM stories WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("story not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ StoryRepository = (*PostgresStoryRepo)(nil)
