// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は投稿のタイトルと本文からHTMLを除去し、
// 保存データを平文として維持することでXSSリスクからクライアントを保護する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は投稿テキストのサニタイズ機能のインターフェースを定義する。
type ContentSanitizerService interface {
	// Sanitize は入力からすべてのHTMLタグを除去した文字列を返す。
	// 投稿は平文のみを想定するため、許可タグは存在しない。
	// 前後の空白は除去する。同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全タグを除去し、scriptやon*イベント属性を含む
// あらゆるマークアップを通過させない。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からすべてのHTMLタグを除去した文字列を返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

// compile-time interface check
var _ ContentSanitizerService = (*contentSanitizer)(nil)
