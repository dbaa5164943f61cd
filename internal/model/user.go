// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュであり、APIレスポンスには決して含めない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Sanitized はパスワードハッシュを除いたコピーを返す。
// サービス層からハンドラーへユーザーを返す際に必ず経由させる。
func (u *User) Sanitized() *User {
	out := *u
	out.PasswordHash = ""
	return &out
}
