package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/snapgram/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, username, email, password_hash, profile_photo, bio, created_at, updated_at`

// scanUser は1行分のユーザーをスキャンする。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var profilePhoto sql.NullString

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&profilePhoto, &user.Bio, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.ProfilePhoto = nullStringValue(profilePhoto)
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByUsernameOrEmail はユーザー名またはメールアドレスの一致するユーザーを検索する。
func (r *PostgresUserRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $2 LIMIT 1`,
		username, email,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username or email: %w", err)
	}
	return user, nil
}

// FindByUsernameExcept は指定ID以外でユーザー名が一致するユーザーを検索する。
func (r *PostgresUserRepo) FindByUsernameExcept(ctx context.Context, username, exceptID string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 AND id <> $2`,
		username, exceptID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return user, nil
}

// Create はユーザーを作成する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, profile_photo, bio, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)`,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.ProfilePhoto, user.Bio, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdateProfile はusername、bio、profile_photo、updated_atを更新する。
func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET username = $2, bio = $3, profile_photo = NULLIF($4, ''), updated_at = $5
		 WHERE id = $1`,
		user.ID, user.Username, user.Bio, user.ProfilePhoto, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", user.ID)
	}
	return nil
}

// SearchByUsername はユーザー名の部分一致（大文字小文字区別なし）でユーザーを検索する。
// ILIKE用にパターン内の % と _ はエスケープする。
func (r *PostgresUserRepo) SearchByUsername(ctx context.Context, requesterID, query string, limit int) ([]model.UserSearchRow, error) {
	pattern := "%" + escapeLikePattern(query) + "%"

	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.username, u.profile_photo,
		        EXISTS(SELECT 1 FROM follows f WHERE f.follower_id = $1 AND f.followee_id = u.id) AS is_following
		 FROM users u
		 WHERE u.username ILIKE $2 ESCAPE '\' AND u.id <> $1
		 ORDER BY u.username
		 LIMIT $3`,
		requesterID, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var results []model.UserSearchRow
	for rows.Next() {
		var row model.UserSearchRow
		var profilePhoto sql.NullString
		if err := rows.Scan(&row.ID, &row.Username, &profilePhoto, &row.IsFollowing); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		row.ProfilePhoto = nullStringValue(profilePhoto)
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search rows: %w", err)
	}

	return results, nil
}

// ListSuggestions は {requester} ∪ フォロー中 を除くユーザーを
// アカウント作成の新しい順に返す。
func (r *PostgresUserRepo) ListSuggestions(ctx context.Context, requesterID string, limit int) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE id <> $1
		   AND id NOT IN (SELECT followee_id FROM follows WHERE follower_id = $1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		requesterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		var profilePhoto sql.NullString
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.PasswordHash,
			&profilePhoto, &user.Bio, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion row: %w", err)
		}
		user.ProfilePhoto = nullStringValue(profilePhoto)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suggestion rows: %w", err)
	}

	return users, nil
}

// nullStringValue はsql.NullStringから値を取り出す。NULLの場合は空文字列。
func nullStringValue(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}

// escapeLikePattern はLIKE/ILIKEパターン内のメタ文字をエスケープする。
func escapeLikePattern(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
