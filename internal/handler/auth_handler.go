// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hitoshi/tasuku/internal/middleware"
	"github.com/hitoshi/tasuku/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	AuthorizationURL() string
	HandleCallback(ctx context.Context, code string) (string, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	// ログイン成功後にトークン付きでリダイレクトするフロントエンドのオリジン。
	FrontendOrigin string
}

// AuthHandler はOAuth認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// GoogleLogin はGoogle OAuthの認可URLを返す。
// サーバー側ではリダイレクトせず、クライアントがこのURLへ遷移する。
// GET /api/auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": h.service.AuthorizationURL(),
	})
}

// Callback はOAuthコールバックを処理する。
// コード交換、ユーザーUPSERT、トークン発行の順に実行し、
// 成功時はトークンをクエリパラメータに載せてフロントエンドへリダイレクトする。
// チェーンのいずれかが失敗した場合はリダイレクト前に中断する。
// GET /api/auth/google/callback?code=xxx
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		middleware.WriteErrorResponse(w, &model.APIError{
			Status: http.StatusBadRequest,
			Detail: "missing authorization code",
		})
		return
	}

	sessionToken, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			middleware.WriteErrorResponse(w, apiErr)
			return
		}
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	redirectURL := h.config.FrontendOrigin + "?token=" + url.QueryEscape(sessionToken)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// Logout はログアウトの確認応答のみを返す。
// トークンはステートレスでサーバー側に破棄すべき状態はなく、
// クライアントが保持しているトークンを破棄することでログアウトが完了する。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

// Me は認証済みユーザーの公開プロフィールを返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"picture": user.Picture,
	})
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// ステータス送信後のエンコード失敗はレスポンスを修復できない
	_ = json.NewEncoder(w).Encode(body)
}
