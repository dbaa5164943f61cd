// Package token はセッショントークンの署名と検証を提供する。
//
// トークンはHS256で署名されたJWTで、loggedInUserIdクレームのみを運ぶ。
// 有効期限はクッキーのMaxAgeと同じ値をトークン自体にも持たせ、
// クッキー属性の改変だけではセッションを延命できないようにする。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken は署名不正・期限切れ・改ざんなど、検証に失敗した全ケースを表す。
// 呼び出し側は失敗理由を区別しない。詳細はログにのみ残す。
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims はセッショントークンのクレームセット。
type Claims struct {
	LoggedInUserID string `json:"loggedInUserId"`
	jwt.RegisteredClaims
}

// Codec はサーバー秘密鍵によるトークンの署名・検証を行う。
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec はCodecを生成する。ttlはセッションの有効期間。
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Sign は指定ユーザーIDを持つセッショントークンを発行する。
func (c *Codec) Sign(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		LoggedInUserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンを検証し、loggedInUserIdクレームを返す。
// 署名不正、期限切れ、別の秘密鍵による署名、アルゴリズムのすり替えは
// すべてErrInvalidTokenとして扱う。
func (c *Codec) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}

	if claims.LoggedInUserID == "" {
		return "", ErrInvalidToken
	}

	return claims.LoggedInUserID, nil
}
