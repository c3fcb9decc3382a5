// Package model はドメインモデルを定義する。
package model

import "time"

// Todo はユーザーが所有するタスクを表す。
// 必ず1人のオーナーを持ち、オーナー以外からは参照・変更できない。
type Todo struct {
	ID        int64
	Title     string
	Completed bool
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
