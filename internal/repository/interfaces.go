// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/tasuku/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByGoogleID はGoogleの一意識別子でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)

	// Upsert はgoogle_idをキーにユーザーを作成または更新する。
	// 未登録の場合は新規作成し、登録済みの場合はnameとpictureのみ更新する。
	// emailとgoogle_idは不変のアイデンティティとして扱う。
	Upsert(ctx context.Context, googleID, email, name, picture string) (*model.User, error)
}

// TodoRepository はTodoデータの永続化インターフェース。
// 全操作がtodo自身のIDと所有ユーザーIDの両方で絞り込むため、
// 他ユーザーのTodoを参照・変更することはできない。
type TodoRepository interface {
	// ListByUserID は指定ユーザーが所有する全Todoを返す。
	ListByUserID(ctx context.Context, userID int64) ([]*model.Todo, error)

	// FindByIDAndUserID は指定IDかつ指定ユーザー所有のTodoを取得する。
	// 存在しない、または他ユーザー所有の場合はnilを返す。
	FindByIDAndUserID(ctx context.Context, id, userID int64) (*model.Todo, error)

	// Create はTodoを作成する。IDとタイムスタンプはDB側で採番される。
	Create(ctx context.Context, todo *model.Todo) error

	// UpdatePartial は指定されたフィールドのみを更新する部分更新を行う。
	// nilのフィールドは変更しない。存在しない、または他ユーザー所有の場合はnilを返す。
	UpdatePartial(ctx context.Context, id, userID int64, title *string, completed *bool) (*model.Todo, error)

	// DeleteByIDAndUserID は指定IDかつ指定ユーザー所有のTodoを削除する。
	// 削除した場合はtrue、対象が存在しない場合はfalseを返す。
	DeleteByIDAndUserID(ctx context.Context, id, userID int64) (bool, error)
}
