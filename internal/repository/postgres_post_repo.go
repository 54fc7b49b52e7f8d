package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/snapgram/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// feedPostColumns は投稿＋付加情報のSELECT句。$1はviewerのユーザーID。
const feedPostColumns = `
	p.id, p.user_id, u.username, p.image_url, p.caption, p.created_at,
	(SELECT count(*) FROM post_likes l WHERE l.post_id = p.id) AS likes_count,
	EXISTS(SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $1) AS is_liked`

// Create は投稿を作成する。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, image_url, caption, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		post.ID, post.UserID, post.ImageURL, post.Caption, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	post := &model.Post{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, image_url, caption, created_at FROM posts WHERE id = $1`,
		id,
	).Scan(&post.ID, &post.UserID, &post.ImageURL, &post.Caption, &post.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}

	return post, nil
}

// FindWithMeta は投稿を投稿者名・いいね数・viewerのいいね有無付きで取得する。
func (r *PostgresPostRepo) FindWithMeta(ctx context.Context, postID, viewerID string) (*model.FeedPost, error) {
	fp := &model.FeedPost{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+feedPostColumns+`
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.id = $2`,
		viewerID, postID,
	).Scan(
		&fp.ID, &fp.UserID, &fp.Username, &fp.ImageURL, &fp.Caption,
		&fp.CreatedAt, &fp.LikesCount, &fp.IsLiked,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post with meta: %w", err)
	}

	return fp, nil
}

// ListFeed はviewerがフォロー中のユーザーの投稿を新しい順に返す。
// フォローが0件の場合は空の結果を返す。
func (r *PostgresPostRepo) ListFeed(ctx context.Context, viewerID string, limit int) ([]model.FeedPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+feedPostColumns+`
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.user_id IN (SELECT followee_id FROM follows WHERE follower_id = $1)
		 ORDER BY p.created_at DESC
		 LIMIT $2`,
		viewerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed posts: %w", err)
	}
	defer rows.Close()

	return scanFeedPosts(rows)
}

// ListByUser は指定ユーザーの全投稿を新しい順に返す。
func (r *PostgresPostRepo) ListByUser(ctx context.Context, ownerID, viewerID string) ([]model.FeedPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+feedPostColumns+`
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = $2
		 ORDER BY p.created_at DESC`,
		viewerID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user posts: %w", err)
	}
	defer rows.Close()

	return scanFeedPosts(rows)
}

func scanFeedPosts(rows *sql.Rows) ([]model.FeedPost, error) {
	var posts []model.FeedPost
	for rows.Next() {
		var fp model.FeedPost
		if err := rows.Scan(
			&fp.ID, &fp.UserID, &fp.Username, &fp.ImageURL, &fp.Caption,
			&fp.CreatedAt, &fp.LikesCount, &fp.IsLiked,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post rows: %w", err)
	}
	return posts, nil
}

// UpdateCaption は投稿のキャプションを更新する。
func (r *PostgresPostRepo) UpdateCaption(ctx context.Context, postID, caption string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET caption = $2 WHERE id = $1`,
		postID, caption,
	)
	if err != nil {
		return fmt.Errorf("failed to update caption: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("post not found: %s", postID)
	}
	return nil
}

// DeleteWithComments は投稿と関連コメントを同一トランザクションで削除する。
// トランザクションが失敗した場合はロールバックされ、部分的な削除状態を残さない。
func (r *PostgresPostRepo) DeleteWithComments(ctx context.Context, postID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// コメントを削除
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM comments WHERE post_id = $1`,
		postID,
	); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}

	// 投稿を削除（post_likesはCASCADE削除）
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1`,
		postID,
	); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AddLike はいいね集合にユーザーを追加する。既存の場合はinserted=falseを返す。
func (r *PostgresPostRepo) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO post_likes (post_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert like: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// RemoveLike はいいね集合からユーザーを除去する。未いいねの場合はdeleted=falseを返す。
func (r *PostgresPostRepo) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListLikers は投稿にいいねしたユーザー一覧を返す。
func (r *PostgresPostRepo) ListLikers(ctx context.Context, postID string) ([]model.UserRef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.username
		 FROM post_likes l
		 JOIN users u ON u.id = l.user_id
		 WHERE l.post_id = $1
		 ORDER BY l.created_at`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list likers: %w", err)
	}
	defer rows.Close()

	var refs []model.UserRef
	for rows.Next() {
		var ref model.UserRef
		if err := rows.Scan(&ref.ID, &ref.Username); err != nil {
			return nil, fmt.Errorf("failed to scan liker row: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate liker rows: %w", err)
	}

	return refs, nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
