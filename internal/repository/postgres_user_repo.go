package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/tasuku/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, name, picture, google_id, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByGoogleID はGoogleの一意識別子でユーザーを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	user, err := r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, name, picture, google_id, created_at, updated_at
		 FROM users WHERE google_id = $1`,
		googleID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by google ID: %w", err)
	}
	return user, nil
}

// Upsert はgoogle_idをキーにユーザーを作成または更新する。
// UNIQUE(google_id)制約を利用したINSERT ON CONFLICTで実装する。
// 既存行の場合はnameとpictureのみ更新し、emailとgoogle_idは変更しない。
func (r *PostgresUserRepo) Upsert(ctx context.Context, googleID, email, name, picture string) (*model.User, error) {
	user, err := r.scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, name, picture, google_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (google_id) DO UPDATE SET
		     name = EXCLUDED.name,
		     picture = EXCLUDED.picture,
		     updated_at = now()
		 RETURNING id, email, name, picture, google_id, created_at, updated_at`,
		email, name, nullString(picture), googleID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("upsert user returned no row")
	}
	return user, nil
}

// scanUser は1行のユーザーをスキャンする。sql.ErrNoRowsはnilに変換する。
func (r *PostgresUserRepo) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var picture sql.NullString

	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &picture,
		&user.GoogleID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if picture.Valid {
		user.Picture = picture.String
	}
	return user, nil
}

// nullString は空文字をNULLとして保存するためのヘルパー。
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
