// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TitleSanitizer はユーザーが入力したTodoタイトルをサニタイズし、
// フロントエンドでの表示時にXSSの原因となるHTMLを保存前に除去する。
// bluemondayのStrictPolicyですべてのタグと属性を落とし、プレーンテキストのみを保存する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TitleSanitizer はタイトル文字列のサニタイズ機能のインターフェースを定義する。
type TitleSanitizer interface {
	// Sanitize はタイトルからすべてのHTMLタグを除去し、前後の空白を取り除いて返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(title string) string
}

// titleSanitizer はTitleSanitizerの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type titleSanitizer struct {
	policy *bluemonday.Policy
}

// NewTitleSanitizer はTitleSanitizerの新しいインスタンスを生成する。
// StrictPolicyはいかなるタグも許可しないため、タイトルは常にプレーンテキストになる。
func NewTitleSanitizer() *titleSanitizer {
	return &titleSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はタイトルからすべてのHTMLタグを除去し、前後の空白を取り除いて返す。
func (s *titleSanitizer) Sanitize(title string) string {
	return strings.TrimSpace(s.policy.Sanitize(title))
}

// compile-time interface check
var _ TitleSanitizer = (*titleSanitizer)(nil)
