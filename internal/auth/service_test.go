package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/tasuku/internal/model"
	"github.com/hitoshi/tasuku/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id int64) (*model.User, error)
	findByGoogleIDFn func(ctx context.Context, googleID string) (*model.User, error)
	upsertFn         func(ctx context.Context, googleID, email, name, picture string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	if m.findByGoogleIDFn != nil {
		return m.findByGoogleIDFn(ctx, googleID)
	}
	return nil, nil
}

func (m *mockUserRepo) Upsert(ctx context.Context, googleID, email, name, picture string) (*model.User, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, googleID, email, name, picture)
	}
	return nil, nil
}

type mockOAuthProvider struct {
	authorizationURLFn func() string
	exchangeCodeFn     func(ctx context.Context, code string) (*Profile, error)
}

func (m *mockOAuthProvider) AuthorizationURL() string {
	if m.authorizationURLFn != nil {
		return m.authorizationURLFn()
	}
	return ""
}

func (m *mockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*Profile, error) {
	if m.exchangeCodeFn != nil {
		return m.exchangeCodeFn(ctx, code)
	}
	return nil, nil
}

type mockTokenIssuer struct {
	issueFn func(userID int64, email string) (string, error)
}

func (m *mockTokenIssuer) Issue(userID int64, email string) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(userID, email)
	}
	return "", nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ OAuthProvider = (*mockOAuthProvider)(nil)
var _ TokenIssuer = (*mockTokenIssuer)(nil)

// --- テスト ---

func TestAuthorizationURL_DelegatesToProvider(t *testing.T) {
	provider := &mockOAuthProvider{
		authorizationURLFn: func() string {
			return "https://accounts.google.com/o/oauth2/auth?client_id=test"
		},
	}
	svc := NewService(provider, nil, nil)

	url := svc.AuthorizationURL()
	if url != "https://accounts.google.com/o/oauth2/auth?client_id=test" {
		t.Errorf("AuthorizationURL() = %q", url)
	}
}

func TestHandleCallback_NewUser_UpsertsAndIssuesToken(t *testing.T) {
	ctx := context.Background()

	var upsertedGoogleID string
	var issuedUserID int64

	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*Profile, error) {
			return &Profile{
				ProviderUserID: "google-user-123",
				Email:          "new@example.com",
				Name:           "New User",
				Picture:        "https://example.com/p.jpg",
			}, nil
		},
	}

	userRepo := &mockUserRepo{
		findByGoogleIDFn: func(ctx context.Context, googleID string) (*model.User, error) {
			// 初回ログイン: ユーザーは存在しない
			return nil, nil
		},
		upsertFn: func(ctx context.Context, googleID, email, name, picture string) (*model.User, error) {
			upsertedGoogleID = googleID
			return &model.User{
				ID:       10,
				Email:    email,
				Name:     name,
				Picture:  picture,
				GoogleID: googleID,
			}, nil
		},
	}

	tokens := &mockTokenIssuer{
		issueFn: func(userID int64, email string) (string, error) {
			issuedUserID = userID
			return "signed-token", nil
		},
	}

	svc := NewService(provider, userRepo, tokens)

	sessionToken, err := svc.HandleCallback(ctx, "auth-code-123")
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}

	if sessionToken != "signed-token" {
		t.Errorf("token = %q, want %q", sessionToken, "signed-token")
	}
	if upsertedGoogleID != "google-user-123" {
		t.Errorf("upserted googleID = %q, want %q", upsertedGoogleID, "google-user-123")
	}
	if issuedUserID != 10 {
		t.Errorf("issued userID = %d, want %d", issuedUserID, 10)
	}
}

func TestHandleCallback_ExistingUser_UpsertsAndIssuesToken(t *testing.T) {
	ctx := context.Background()

	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*Profile, error) {
			return &Profile{
				ProviderUserID: "google-user-789",
				Email:          "existing@example.com",
				Name:           "Updated Name",
			}, nil
		},
	}

	userRepo := &mockUserRepo{
		findByGoogleIDFn: func(ctx context.Context, googleID string) (*model.User, error) {
			return &model.User{ID: 20, Email: "existing@example.com", GoogleID: googleID}, nil
		},
		upsertFn: func(ctx context.Context, googleID, email, name, picture string) (*model.User, error) {
			return &model.User{ID: 20, Email: email, Name: name, GoogleID: googleID}, nil
		},
	}

	tokens := &mockTokenIssuer{
		issueFn: func(userID int64, email string) (string, error) {
			if userID != 20 {
				t.Errorf("issued userID = %d, want %d", userID, 20)
			}
			return "existing-token", nil
		},
	}

	svc := NewService(provider, userRepo, tokens)

	sessionToken, err := svc.HandleCallback(ctx, "auth-code-existing")
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}
	if sessionToken != "existing-token" {
		t.Errorf("token = %q, want %q", sessionToken, "existing-token")
	}
}

func TestHandleCallback_ExchangeError_ReturnsAPIError400(t *testing.T) {
	ctx := context.Background()

	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*Profile, error) {
			return nil, errors.New("oauth exchange failed")
		},
	}

	svc := NewService(provider, nil, nil)

	_, err := svc.HandleCallback(ctx, "bad-code")
	if err == nil {
		t.Fatal("expected error from HandleCallback")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Status != 400 {
		t.Errorf("status = %d, want 400", apiErr.Status)
	}
}

func TestHandleCallback_UpsertError_ReturnsError(t *testing.T) {
	ctx := context.Background()

	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*Profile, error) {
			return &Profile{ProviderUserID: "google-user-err", Email: "err@example.com"}, nil
		},
	}

	userRepo := &mockUserRepo{
		upsertFn: func(ctx context.Context, googleID, email, name, picture string) (*model.User, error) {
			return nil, errors.New("db error")
		},
	}

	svc := NewService(provider, userRepo, nil)

	_, err := svc.HandleCallback(ctx, "auth-code-err")
	if err == nil {
		t.Fatal("expected error from HandleCallback")
	}
	// 交換失敗(400)ではなく内部エラーとして扱われること
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("db error should not be an APIError, got status %d", apiErr.Status)
	}
}

func TestHandleCallback_TokenIssueError_ReturnsError(t *testing.T) {
	ctx := context.Background()

	provider := &mockOAuthProvider{
		exchangeCodeFn: func(ctx context.Context, code string) (*Profile, error) {
			return &Profile{ProviderUserID: "google-user-1", Email: "a@example.com"}, nil
		},
	}

	userRepo := &mockUserRepo{
		upsertFn: func(ctx context.Context, googleID, email, name, picture string) (*model.User, error) {
			return &model.User{ID: 1, Email: email, GoogleID: googleID}, nil
		},
	}

	tokens := &mockTokenIssuer{
		issueFn: func(userID int64, email string) (string, error) {
			return "", errors.New("signing failed")
		},
	}

	svc := NewService(provider, userRepo, tokens)

	_, err := svc.HandleCallback(ctx, "auth-code-1")
	if err == nil {
		t.Fatal("expected error from HandleCallback")
	}
}
