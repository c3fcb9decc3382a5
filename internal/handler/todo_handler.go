package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/tasuku/internal/middleware"
	"github.com/hitoshi/tasuku/internal/model"
)

// TodoServiceInterface はTodoハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	List(ctx context.Context, userID int64) ([]*model.Todo, error)
	Get(ctx context.Context, userID, id int64) (*model.Todo, error)
	Create(ctx context.Context, userID int64, title string, completed bool) (*model.Todo, error)
	Update(ctx context.Context, userID, id int64, title *string, completed *bool) (*model.Todo, error)
	Delete(ctx context.Context, userID, id int64) (bool, error)
}

// TodoHandler はTodo CRUDのHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(service TodoServiceInterface) *TodoHandler {
	return &TodoHandler{service: service}
}

// --- リクエスト/レスポンス型 ---

// todoCreateRequest はTodo作成リクエストのボディ。
type todoCreateRequest struct {
	Title     *string `json:"title"`
	Completed bool    `json:"completed"`
}

// todoUpdateRequest はTodo部分更新リクエストのボディ。
// 指定されたフィールドのみを変更する。
type todoUpdateRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// todoResponse はTodoのレスポンス。
type todoResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	UserID    int64  `json:"user_id"`
}

func toTodoResponse(t *model.Todo) todoResponse {
	return todoResponse{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		UserID:    t.UserID,
	}
}

// ListTodos は呼び出しユーザーが所有する全Todoを返す。
// GET /api/todos
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	todos, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		responses = append(responses, toTodoResponse(t))
	}

	writeJSON(w, http.StatusOK, responses)
}

// CreateTodo は呼び出しユーザーをオーナーとしてTodoを作成する。
// POST /api/todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req todoCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, model.NewValidationError("invalid request body"))
		return
	}
	if req.Title == nil {
		middleware.WriteErrorResponse(w, model.NewValidationError("title is required", "title"))
		return
	}

	created, err := h.service.Create(r.Context(), user.ID, *req.Title, req.Completed)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTodoResponse(created))
}

// GetTodo は呼び出しユーザー所有のTodoを取得する。
// 存在しない、または他ユーザー所有の場合は404を返す。
// GET /api/todos/{id}
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	id, ok := todoIDFromURL(r)
	if !ok {
		middleware.WriteErrorResponse(w, model.NewTodoNotFoundError())
		return
	}

	todo, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if todo == nil {
		middleware.WriteErrorResponse(w, model.NewTodoNotFoundError())
		return
	}

	writeJSON(w, http.StatusOK, toTodoResponse(todo))
}

// UpdateTodo はTodoの部分更新を行う。指定されたフィールドのみを変更する。
// PUT /api/todos/{id}
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	id, ok := todoIDFromURL(r)
	if !ok {
		middleware.WriteErrorResponse(w, model.NewTodoNotFoundError())
		return
	}

	var req todoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, model.NewValidationError("invalid request body"))
		return
	}

	updated, err := h.service.Update(r.Context(), user.ID, id, req.Title, req.Completed)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if updated == nil {
		middleware.WriteErrorResponse(w, model.NewTodoNotFoundError())
		return
	}

	writeJSON(w, http.StatusOK, toTodoResponse(updated))
}

// DeleteTodo は呼び出しユーザー所有のTodoを削除する。
// DELETE /api/todos/{id}
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	id, ok := todoIDFromURL(r)
	if !ok {
		middleware.WriteErrorResponse(w, model.NewTodoNotFoundError())
		return
	}

	deleted, err := h.service.Delete(r.Context(), user.ID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !deleted {
		middleware.WriteErrorResponse(w, model.NewTodoNotFoundError())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Todo deleted successfully",
	})
}

// todoIDFromURL はURLパラメータからTodo IDを取得する。
// 数値として解釈できない場合はfalseを返し、呼び出し側で404として扱う。
func todoIDFromURL(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// APIErrorはそのままのステータスで返し、それ以外は詳細をログに記録して500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, apiErr)
		return
	}

	slog.Error("service error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}
