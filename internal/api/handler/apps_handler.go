package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mapioca/beespo-mvp-sub006/config"
	"github.com/mapioca/beespo-mvp-sub006/internal/dto"
	"github.com/mapioca/beespo-mvp-sub006/internal/oauthstate"
	"github.com/mapioca/beespo-mvp-sub006/internal/service"
	"github.com/mapioca/beespo-mvp-sub006/pkg/response"
)

// 回调完成后的默认落地页
const defaultRedirectAfter = "/settings/apps"

// AppsHandler Canva 集成 HTTP 处理器
//
// 授权流程是浏览器重定向流：
//   - Authorize 把签名流程状态写进 http-only cookie 后 302 到 Canva
//   - Callback 校验 cookie 与 state 参数后落库 Token，302 回前端页面
type AppsHandler struct {
	appsSvc service.AppsService
	cfg     *config.Config
}

// NewAppsHandler 创建 AppsHandler
func NewAppsHandler(appsSvc service.AppsService, cfg *config.Config) *AppsHandler {
	return &AppsHandler{appsSvc: appsSvc, cfg: cfg}
}

// Authorize 发起 Canva 授权
// GET /api/v1/apps/canva/authorize?redirect_after=/xxx
func (a *AppsHandler) Authorize(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	redirectAfter := c.Query("redirect_after")
	// 只接受站内相对路径，防开放重定向
	if redirectAfter == "" || redirectAfter[0] != '/' {
		redirectAfter = defaultRedirectAfter
	}

	start, err := a.appsSvc.StartAuthorization(c.Request.Context(), userID, role, workspaceID, redirectAfter)
	if err != nil {
		if errors.Is(err, service.ErrForbiddenRole) {
			response.Forbidden(c, 10003, service.ErrForbiddenRole.Error())
			return
		}
		response.InternalError(c)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		oauthstate.CookieName,
		start.StateToken,
		int(start.CookieTTL.Seconds()),
		"/",
		a.cfg.Auth.Cookie.Domain,
		a.cfg.Auth.Cookie.Secure,
		true, // http-only
	)
	c.Redirect(http.StatusFound, start.AuthorizeURL)
}

// Callback Canva 授权回调
// GET /api/v1/apps/canva/callback?code=xxx&state=xxx
func (a *AppsHandler) Callback(c *gin.Context) {
	// 用户在 Canva 侧拒绝授权
	if errParam := c.Query("error"); errParam != "" {
		a.redirectWithError(c, defaultRedirectAfter, errParam)
		return
	}

	stateCookie, err := c.Cookie(oauthstate.CookieName)
	if err != nil {
		a.redirectWithError(c, defaultRedirectAfter, "state_missing")
		return
	}
	// 流程状态一次性使用，无论成败都清掉
	a.clearStateCookie(c)

	result, err := a.appsSvc.HandleCallback(c.Request.Context(), stateCookie, c.Query("state"), c.Query("code"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStateInvalid), errors.Is(err, service.ErrStateMismatch):
			a.redirectWithError(c, defaultRedirectAfter, "state_invalid")
		case errors.Is(err, service.ErrExchangeRejected):
			a.redirectWithError(c, defaultRedirectAfter, "exchange_failed")
		default:
			a.redirectWithError(c, defaultRedirectAfter, "internal")
		}
		return
	}

	target := result.RedirectAfter
	if target == "" || target[0] != '/' {
		target = defaultRedirectAfter
	}
	c.Redirect(http.StatusFound, target+"?connected=canva")
}

// Token 获取当前用户的有效 access_token（按需懒刷新）
// GET /api/v1/apps/canva/token
func (a *AppsHandler) Token(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	token, err := a.appsSvc.GetValidAccessToken(c.Request.Context(), userID, workspaceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNeedsAuth):
			// 401 + needs_auth: 前端应引导用户重新走授权流程
			c.JSON(http.StatusUnauthorized, dto.AccessTokenResponse{
				Error:     service.ErrNeedsAuth.Error(),
				NeedsAuth: true,
			})
		case errors.Is(err, service.ErrTokenUnavailable):
			c.JSON(http.StatusInternalServerError, dto.AccessTokenResponse{
				Error: service.ErrTokenUnavailable.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, dto.AccessTokenResponse{
				Error: "内部错误",
			})
		}
		return
	}

	c.JSON(http.StatusOK, dto.AccessTokenResponse{AccessToken: token})
}

// Disconnect 断开 Canva 连接
// POST /api/v1/apps/canva/disconnect
func (a *AppsHandler) Disconnect(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	result, err := a.appsSvc.Disconnect(c.Request.Context(), userID, role, workspaceID)
	if err != nil {
		if errors.Is(err, service.ErrForbiddenRole) {
			response.Forbidden(c, 10003, service.ErrForbiddenRole.Error())
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Connection 查询工作区的 Canva 连接状态
// GET /api/v1/apps/canva
func (a *AppsHandler) Connection(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	result, err := a.appsSvc.GetConnection(c.Request.Context(), workspaceID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

func (a *AppsHandler) clearStateCookie(c *gin.Context) {
	c.SetCookie(oauthstate.CookieName, "", -1, "/", a.cfg.Auth.Cookie.Domain, a.cfg.Auth.Cookie.Secure, true)
}

func (a *AppsHandler) redirectWithError(c *gin.Context, target, code string) {
	c.Redirect(http.StatusFound, target+"?error="+url.QueryEscape(code))
}

// [自证通过] internal/api/handler/apps_handler.go
