// Package model はドメインモデルを定義する。
package model

// Session はリクエストごとに1回解決されるセッション状態を表す。
// ミドルウェアがTOKENクッキーを読み取り、トークン検証の結果をここに集約する。
// サービス層はこの値を明示的に受け取り、認証要否を判断する。
type Session struct {
	// Present はTOKENクッキーが存在したかどうか。
	Present bool
	// UserID は検証に成功したトークンのloggedInUserIdクレーム。
	UserID string
	// Err はトークン検証の失敗理由。検証成功時はnil。
	Err error
}

// Authenticated はトークン検証まで成功したセッションかどうかを返す。
func (s *Session) Authenticated() bool {
	return s != nil && s.Present && s.Err == nil && s.UserID != ""
}
