package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/snapgram/internal/model"
)

// PostgresHighlightRepo はPostgreSQLを使用したハイライトリポジトリ。
type PostgresHighlightRepo struct {
	db *sql.DB
}

// NewPostgresHighlightRepo はPostgresHighlightRepoを生成する。
func NewPostgresHighlightRepo(db *sql.DB) *PostgresHighlightRepo {
	return &PostgresHighlightRepo{db: db}
}

// CreateWithStories はハイライト本体とストーリースナップショットを
// 同一トランザクションで作成する。
func (r *PostgresHighlightRepo) CreateWithStories(ctx context.Context, highlight *model.Highlight, stories []model.HighlightStory) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// ハイライト本体を作成
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO highlights (id, user_id, title, cover_image, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		highlight.ID, highlight.UserID, highlight.Title, highlight.CoverImage, highlight.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert highlight: %w", err)
	}

	// ストーリースナップショットを作成
	for _, s := range stories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO highlight_stories (highlight_id, story_id, image_url, story_created_at, position)
			 VALUES ($1, $2, $3, $4, $5)`,
			highlight.ID, s.StoryID, s.ImageURL, s.StoryCreatedAt, s.Position,
		); err != nil {
			return fmt.Errorf("failed to insert highlight story: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID は指定IDのハイライトを取得する。見つからない場合はnilを返す。
func (r *PostgresHighlightRepo) FindByID(ctx context.Context, id string) (*model.Highlight, error) {
	h := &model.Highlight{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, cover_image, created_at FROM highlights WHERE id = $1`,
		id,
	).Scan(&h.ID, &h.UserID, &h.Title, &h.CoverImage, &h.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find highlight by ID: %w", err)
	}

	return h, nil
}

// ListByUser は指定ユーザーのハイライト一覧をストーリー数付きで新しい順に返す。
func (r *PostgresHighlightRepo) ListByUser(ctx context.Context, userID string) ([]model.HighlightSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT h.id, h.user_id, h.title, h.cover_image, h.created_at,
		        (SELECT count(*) FROM highlight_stories hs WHERE hs.highlight_id = h.id) AS stories_count
		 FROM highlights h
		 WHERE h.user_id = $1
		 ORDER BY h.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}
	defer rows.Close()

	var summaries []model.HighlightSummary
	for rows.Next() {
		var s model.HighlightSummary
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.CoverImage, &s.CreatedAt, &s.StoriesCount); err != nil {
			return nil, fmt.Errorf("failed to scan highlight row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate highlight rows: %w", err)
	}

	return summaries, nil
}

// ListStories はハイライトに含まれるストーリースナップショットをposition順に返す。
func (r *PostgresHighlightRepo) ListStories(ctx context.Context, highlightID string) ([]model.HighlightStory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT highlight_id, story_id, image_url, story_created_at, position
		 FROM highlight_stories
		 WHERE highlight_id = $1
		 ORDER BY position`,
		highlightID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlight stories: %w", err)
	}
	defer rows.Close()

	var stories []model.HighlightStory
	for rows.Next() {
		var s model.HighlightStory
		if err := rows.Scan(&s.HighlightID, &s.StoryID, &s.ImageURL, &s.StoryCreatedAt, &s.Position); err != nil {
			return nil, fmt.Errorf("failed to scan highlight story row: %w", err)
		}
		stories = append(stories, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate highlight story rows: %w", err)
	}

	return stories, nil
}

// DeleteByID は指定IDのハイライトを削除する。highlight_storiesはCASCADE削除される。
func (r *PostgresHighlightRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM highlights WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete highlight: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("highlight not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ HighlightRepository = (*PostgresHighlightRepo)(nil)
