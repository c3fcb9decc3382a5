// Package token はステートレスなセッショントークンの発行と検証を提供する。
// トークンはHS256で署名されたJWTで、サーバー側にセッション状態は持たない。
// 有効性は署名と有効期限のみで決まり、失効リストは存在しない。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims はセッショントークンに埋め込むクレームを表す。
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ErrInvalidToken は署名不正・形式不正なトークンを表す。
var ErrInvalidToken = errors.New("invalid token")

// ErrExpiredToken は有効期限切れのトークンを表す。
// 401という挙動はErrInvalidTokenと同じで、診断メッセージのみ区別する。
var ErrExpiredToken = errors.New("token has expired")

// Service はトークンの発行と検証を行う。
type Service struct {
	secret []byte
	maxAge time.Duration
}

// NewService はServiceを生成する。
// maxAgeは発行するトークンの有効期間（通常24時間）。
func NewService(secret string, maxAge time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		maxAge: maxAge,
	}
}

// Issue は指定ユーザーのセッショントークンを発行する。
// 有効期限は発行時刻からmaxAge後に設定される。
func (s *Service) Issue(userID int64, email string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
	})

	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、埋め込まれたユーザーIDを返す。
// 失敗はErrExpiredTokenまたはErrInvalidTokenのいずれかに分類される。
// user_idクレームが欠落している場合もErrInvalidTokenとして扱う。
func (s *Service) Verify(tokenString string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return 0, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}
