// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/tasuku/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// authRecordContextKey はリクエストコンテキストにauthRecordを格納するためのキー。
var authRecordContextKey = contextKey("auth_record")

// authRecord は認証ミドルウェアより外側のミドルウェアへ認証結果を公開するホルダー。
// r.WithContextで分岐したコンテキストは外側のハンドラーへ伝播しないため、
// ロギングミドルウェアが事前に仕込んだポインタへ書き込んで共有する。
type authRecord struct {
	userID int64
}

// contextWithAuthRecord は新しいauthRecordを格納したコンテキストとそのポインタを返す。
func contextWithAuthRecord(ctx context.Context) (context.Context, *authRecord) {
	record := &authRecord{}
	return context.WithValue(ctx, authRecordContextKey, record), record
}

// recordAuthenticatedUser はコンテキストにauthRecordがあれば認証済みユーザーIDを書き込む。
func recordAuthenticatedUser(ctx context.Context, userID int64) {
	if record, ok := ctx.Value(authRecordContextKey).(*authRecord); ok {
		record.userID = userID
	}
}

// TokenVerifier はセッショントークンの検証に必要なインターフェース。
// token.Serviceの部分集合として定義する。
type TokenVerifier interface {
	Verify(tokenString string) (int64, error)
}

// UserFinder は認証済みユーザーの解決に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証し、
// 解決したユーザーをリクエストコンテキストに注入するミドルウェアを返す。
// ヘッダー欠落・形式不正・トークン不正・期限切れ、および
// トークンが指すユーザーが既に存在しない場合はすべて401を返す。
func NewAuthMiddleware(verifier TokenVerifier, users UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取得
			authHeader := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				WriteErrorResponse(w, model.NewUnauthorizedError("missing or malformed Authorization header"))
				return
			}

			// 2. トークンの署名と有効期限を検証
			userID, err := verifier.Verify(tokenString)
			if err != nil {
				WriteErrorResponse(w, model.NewUnauthorizedError(err.Error()))
				return
			}

			// 3. トークンのユーザーIDを永続化されたユーザーに解決する。
			// 帯域外で削除されたユーザーのトークンは404ではなく認証エラーとして扱う。
			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				slog.Error("failed to resolve authenticated user",
					slog.Int64("user_id", userID),
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if user == nil {
				WriteErrorResponse(w, model.NewUnauthorizedError("user no longer exists"))
				return
			}

			// 4. 認証済みユーザーをコンテキストに注入
			// 外側のロギングミドルウェアからも参照できるよう記録する
			recordAuthenticatedUser(r.Context(), user.ID)
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("authenticated user not found in context")
	}
	return user, nil
}

// ContextWithUser はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
