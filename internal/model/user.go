// Package model はドメインモデルを定義する。
package model

import "time"

// User はGoogleログインで登録されたサービス利用ユーザーを表す。
// emailとgoogle_idはそれぞれ全ユーザーで一意。
type User struct {
	ID        int64
	Email     string
	Name      string
	Picture   string // プロフィール画像URL（空文字は未設定）
	GoogleID  string // Googleが発行する安定した一意識別子（sub）
	CreatedAt time.Time
	UpdatedAt time.Time
}
