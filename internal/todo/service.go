// Package todo はTodoに関するビジネスロジックを提供する。
package todo

import (
	"context"
	"fmt"

	"github.com/hitoshi/tasuku/internal/model"
	"github.com/hitoshi/tasuku/internal/repository"
	"github.com/hitoshi/tasuku/internal/security"
)

// Service はTodoの取得・作成・更新・削除を提供する。
// すべての操作は呼び出しユーザーのIDで絞り込まれ、他ユーザーのTodoには到達できない。
type Service struct {
	todoRepo  repository.TodoRepository
	sanitizer security.TitleSanitizer
}

// NewService はServiceを生成する。
func NewService(todoRepo repository.TodoRepository, sanitizer security.TitleSanitizer) *Service {
	return &Service{
		todoRepo:  todoRepo,
		sanitizer: sanitizer,
	}
}

// List は指定ユーザーが所有する全Todoを返す。
func (s *Service) List(ctx context.Context, userID int64) ([]*model.Todo, error) {
	todos, err := s.todoRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Get は指定ユーザー所有のTodoを取得する。
// 存在しない、または他ユーザー所有の場合はnilを返す。
func (s *Service) Get(ctx context.Context, userID, id int64) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return todo, nil
}

// Create は指定ユーザーをオーナーとしてTodoを作成する。
// タイトルはサニタイズ後に空であればバリデーションエラーを返す。
func (s *Service) Create(ctx context.Context, userID int64, title string, completed bool) (*model.Todo, error) {
	cleanTitle := s.sanitizer.Sanitize(title)
	if cleanTitle == "" {
		return nil, model.NewValidationError("title must be a non-empty string", "title")
	}

	todo := &model.Todo{
		Title:     cleanTitle,
		Completed: completed,
		UserID:    userID,
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return todo, nil
}

// Update は指定されたフィールドのみを更新する部分更新を行う。
// nilのフィールドは変更しない。タイトルが指定された場合はサニタイズし、
// 空になればバリデーションエラーを返す。
// 存在しない、または他ユーザー所有の場合はnilを返す。
func (s *Service) Update(ctx context.Context, userID, id int64, title *string, completed *bool) (*model.Todo, error) {
	if title != nil {
		cleanTitle := s.sanitizer.Sanitize(*title)
		if cleanTitle == "" {
			return nil, model.NewValidationError("title must be a non-empty string", "title")
		}
		title = &cleanTitle
	}

	todo, err := s.todoRepo.UpdatePartial(ctx, id, userID, title, completed)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return todo, nil
}

// Delete は指定ユーザー所有のTodoを削除する。
// 削除した場合はtrue、対象が存在しない場合はfalseを返す。
func (s *Service) Delete(ctx context.Context, userID, id int64) (bool, error) {
	deleted, err := s.todoRepo.DeleteByIDAndUserID(ctx, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete todo: %w", err)
	}
	return deleted, nil
}
