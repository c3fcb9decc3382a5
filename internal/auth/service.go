// Package auth はGoogle OAuthログインフローとトークン発行を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/tasuku/internal/model"
	"github.com/hitoshi/tasuku/internal/repository"
)

// Profile はOAuthプロバイダーから取得したユーザープロフィールを表す。
type Profile struct {
	ProviderUserID string
	Email          string
	Name           string
	Picture        string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// AuthorizationURL はOAuth認可URLを生成する。
	AuthorizationURL() string
	// ExchangeCode は認可コードをトークンに交換し、プロフィールを取得する。
	ExchangeCode(ctx context.Context, code string) (*Profile, error)
}

// TokenIssuer はセッショントークンの発行インターフェース。
// token.Serviceの部分集合として定義する。
type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth    OAuthProvider
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

// NewService はServiceを生成する。
func NewService(oauth OAuthProvider, userRepo repository.UserRepository, tokens TokenIssuer) *Service {
	return &Service{
		oauth:    oauth,
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// AuthorizationURL はOAuth認可URLを返す。
func (s *Service) AuthorizationURL() string {
	return s.oauth.AuthorizationURL()
}

// HandleCallback はOAuthコールバックを処理し、セッショントークンを発行する。
// 認可コードをプロフィールに交換し、google_idをキーにユーザーをUPSERTする。
// 初回ログインではユーザーを作成し、再ログインではnameとpictureを更新する。
func (s *Service) HandleCallback(ctx context.Context, code string) (string, error) {
	profile, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		slog.Warn("oauth code exchange failed", slog.String("error", err.Error()))
		return "", model.NewExchangeFailedError()
	}

	// 新規ログインか再ログインかはログ出力のためだけに判定する。
	// 書き込み自体はUpsertの単一ステートメントで行う。
	existing, err := s.userRepo.FindByGoogleID(ctx, profile.ProviderUserID)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	user, err := s.userRepo.Upsert(ctx, profile.ProviderUserID, profile.Email, profile.Name, profile.Picture)
	if err != nil {
		return "", fmt.Errorf("failed to upsert user: %w", err)
	}

	if existing == nil {
		slog.Info("new user created",
			slog.Int64("user_id", user.ID),
			slog.String("email", user.Email),
		)
	} else {
		slog.Info("existing user logged in",
			slog.Int64("user_id", user.ID),
		)
	}

	sessionToken, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return sessionToken, nil
}
