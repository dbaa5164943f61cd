// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"net/http"

	"github.com/hitoshi/miniblog/internal/model"
)

// SessionCookieName はセッショントークンを運ぶクッキーの名前。
const SessionCookieName = "TOKEN"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッション状態を格納するためのキー。
var sessionContextKey = contextKey("session")

// TokenVerifier はセッショントークンの検証に必要なインターフェース。
// token.Codecの部分集合として定義する。
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// NewSessionResolver はTOKENクッキーからセッション状態を1回だけ解決し、
// リクエストコンテキストに注入するミドルウェアを返す。
// ここではリクエストを拒否しない。公開ルートとエンドポイントごとの
// エラーメッセージが異なるため、可否の判断はハンドラーとサービスが行う。
func NewSessionResolver(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &model.Session{}

			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				sess.Present = true

				userID, verr := verifier.Verify(cookie.Value)
				if verr != nil {
					sess.Err = verr
				} else {
					sess.UserID = userID
				}
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext はリクエストコンテキストからセッション状態を取得する。
// セッションリゾルバを通過していないコンテキストでは空のセッションを返す。
func SessionFromContext(ctx context.Context) *model.Session {
	sess, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok {
		return &model.Session{}
	}
	return sess
}

// ContextWithSession はコンテキストにセッション状態を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
