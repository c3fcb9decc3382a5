// Package model はドメインモデルを定義する。
package model

// APIError はAPIの統一エラーフォーマットを表す。
// レスポンスボディは {"detail": メッセージ} の形式で返される。
// バリデーションエラーの場合は問題のあったフィールド名をFieldsに列挙する。
type APIError struct {
	Status int      // HTTPステータスコード
	Detail string   // エラーメッセージ
	Fields []string // バリデーションエラーの対象フィールド（省略可）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return e.Detail
}

// NewTodoNotFoundError はTodoが存在しない、または他ユーザー所有の場合のエラーを生成する。
// 所有権違反も存在しない場合と区別せず404として扱う。
func NewTodoNotFoundError() *APIError {
	return &APIError{
		Status: 404,
		Detail: "Todo not found",
	}
}

// NewUnauthorizedError は認証エラーを生成する。
// トークン欠落・不正・期限切れ・ユーザー不在はすべて401で返す。
func NewUnauthorizedError(detail string) *APIError {
	return &APIError{
		Status: 401,
		Detail: detail,
	}
}

// NewExchangeFailedError はIdPとのトークン交換・プロフィール取得失敗のエラーを生成する。
func NewExchangeFailedError() *APIError {
	return &APIError{
		Status: 400,
		Detail: "authentication exchange failed",
	}
}

// NewValidationError はリクエストボディのバリデーションエラーを生成する。
// 問題のあったフィールド名を列挙して422で返す。
func NewValidationError(detail string, fields ...string) *APIError {
	return &APIError{
		Status: 422,
		Detail: detail,
		Fields: fields,
	}
}
