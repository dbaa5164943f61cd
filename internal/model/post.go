// Package model はドメインモデルを定義する。
package model

import "time"

// Post はユーザー投稿を表す。
// AuthorIDは作成時にセッションの検証済みクレームから設定され、以後不変。
// Contentは作成時に省略可能なためnilを許容する。
type Post struct {
	ID        string
	Title     string
	Content   *string
	CreatedAt time.Time
	Edited    bool
	AuthorID  string
}

// PostWithAuthor は投稿と著者表示名をJOINした読み取り用の構造体。
// 一覧・詳細取得のレスポンスに使用する。AuthorIDは出力に含めない。
type PostWithAuthor struct {
	Post
	AuthorName string
}
