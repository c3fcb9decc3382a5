package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/tasuku/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 本文は {"detail": メッセージ} を基本とし、バリデーションエラーのみ
// 問題のあったフィールド名をfieldsに列挙する。
type ErrorResponseBody struct {
	Detail string   `json:"detail"`
	Fields []string `json:"fields,omitempty"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	// ステータス送信後のエンコード失敗はレスポンスを修復できない
	_ = json.NewEncoder(w).Encode(ErrorResponseBody{
		Detail: apiErr.Detail,
		Fields: apiErr.Fields,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, &model.APIError{
		Status: http.StatusInternalServerError,
		Detail: "internal server error",
	})
}
