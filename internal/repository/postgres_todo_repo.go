package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/tasuku/internal/model"
)

// PostgresTodoRepo はPostgreSQLを使用したTodoリポジトリ。
type PostgresTodoRepo struct {
	db *sql.DB
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sql.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

// ListByUserID は指定ユーザーが所有する全TodoをID昇順で返す。
func (r *PostgresTodoRepo) ListByUserID(ctx context.Context, userID int64) ([]*model.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, completed, user_id, created_at, updated_at
		 FROM todos WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []*model.Todo{}
	for rows.Next() {
		todo := &model.Todo{}
		if err := rows.Scan(
			&todo.ID, &todo.Title, &todo.Completed, &todo.UserID,
			&todo.CreatedAt, &todo.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, nil
}

// FindByIDAndUserID は指定IDかつ指定ユーザー所有のTodoを取得する。
// 存在しない、または他ユーザー所有の場合はnilを返す。
func (r *PostgresTodoRepo) FindByIDAndUserID(ctx context.Context, id, userID int64) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, completed, user_id, created_at, updated_at
		 FROM todos WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(
		&todo.ID, &todo.Title, &todo.Completed, &todo.UserID,
		&todo.CreatedAt, &todo.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	return todo, nil
}

// Create はTodoを作成する。IDとタイムスタンプはDB側で採番され、todoに書き戻される。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO todos (title, completed, user_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		todo.Title, todo.Completed, todo.UserID,
	).Scan(&todo.ID, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert todo: %w", err)
	}
	return nil
}

// UpdatePartial は指定されたフィールドのみを更新する部分更新を行う。
// nilのフィールドはCOALESCEで既存値を維持する。
// 存在しない、または他ユーザー所有の場合はnilを返す。
func (r *PostgresTodoRepo) UpdatePartial(ctx context.Context, id, userID int64, title *string, completed *bool) (*model.Todo, error) {
	var newTitle sql.NullString
	if title != nil {
		newTitle = sql.NullString{String: *title, Valid: true}
	}
	var newCompleted sql.NullBool
	if completed != nil {
		newCompleted = sql.NullBool{Bool: *completed, Valid: true}
	}

	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE todos SET
		     title = COALESCE($3, title),
		     completed = COALESCE($4, completed),
		     updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, title, completed, user_id, created_at, updated_at`,
		id, userID, newTitle, newCompleted,
	).Scan(
		&todo.ID, &todo.Title, &todo.Completed, &todo.UserID,
		&todo.CreatedAt, &todo.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return todo, nil
}

// DeleteByIDAndUserID は指定IDかつ指定ユーザー所有のTodoを削除する。
// 削除した場合はtrue、対象が存在しない場合はfalseを返す。
func (r *PostgresTodoRepo) DeleteByIDAndUserID(ctx context.Context, id, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)
