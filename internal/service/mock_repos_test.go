package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/mapioca/beespo-mvp-sub006/config"
	"github.com/mapioca/beespo-mvp-sub006/internal/model"
	"github.com/mapioca/beespo-mvp-sub006/internal/repository"
)

// ── Mock InvitationRepository ──
//
// ConsumeByCode 用互斥锁模拟数据库条件 UPDATE 的原子性，
// 并发测试依赖这一点

type mockInvitationRepo struct {
	mu          sync.Mutex
	invitations map[string]*model.Invitation // key: invitation_id
}

func newMockInvitationRepo() *mockInvitationRepo {
	return &mockInvitationRepo{invitations: make(map[string]*model.Invitation)}
}

func (m *mockInvitationRepo) Create(_ context.Context, inv *model.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv.InvitationID == "" {
		inv.InvitationID = fmt.Sprintf("inv-%d", len(m.invitations)+1)
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	m.invitations[inv.InvitationID] = inv
	return nil
}

func (m *mockInvitationRepo) GetByID(_ context.Context, id string) (*model.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.invitations[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvitationRepo) GetByCode(_ context.Context, code string) (*model.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invitations {
		if inv.Code == code {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvitationRepo) List(_ context.Context, offset, limit int) ([]model.Invitation, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Invitation
	for _, inv := range m.invitations {
		result = append(result, *inv)
	}
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockInvitationRepo) ConsumeByCode(_ context.Context, code string, now time.Time) (*model.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invitations {
		if inv.Code != code {
			continue
		}
		if inv.Status != model.InvitationStatusActive ||
			inv.UsesCount >= inv.MaxUses ||
			inv.IsExpired(now) {
			return nil, gorm.ErrRecordNotFound
		}
		inv.UsesCount++
		if inv.UsesCount >= inv.MaxUses {
			inv.Status = model.InvitationStatusExhausted
		}
		inv.UpdatedAt = now
		cp := *inv
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvitationRepo) UpdateStatus(_ context.Context, id, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.invitations[id]; ok && inv.Status == from {
		inv.Status = to
	}
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserID] = user
	return nil
}

// ── Mock WorkspaceRepository ──

type mockWorkspaceRepo struct {
	workspaces map[string]*model.Workspace
}

func newMockWorkspaceRepo() *mockWorkspaceRepo {
	return &mockWorkspaceRepo{workspaces: make(map[string]*model.Workspace)}
}

func (m *mockWorkspaceRepo) Create(_ context.Context, ws *model.Workspace) error {
	if ws.WorkspaceID == "" {
		ws.WorkspaceID = fmt.Sprintf("ws-%d", len(m.workspaces)+1)
	}
	m.workspaces[ws.WorkspaceID] = ws
	return nil
}

func (m *mockWorkspaceRepo) GetByID(_ context.Context, id string) (*model.Workspace, error) {
	if ws, ok := m.workspaces[id]; ok {
		return ws, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkspaceRepo) GetBySlug(_ context.Context, slug string) (*model.Workspace, error) {
	for _, ws := range m.workspaces {
		if ws.Slug == slug {
			return ws, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock AppRepository ──

type mockAppRepo struct {
	apps map[string]*model.App // key: slug
}

func newMockAppRepo() *mockAppRepo {
	return &mockAppRepo{apps: make(map[string]*model.App)}
}

func (m *mockAppRepo) GetBySlug(_ context.Context, slug string) (*model.App, error) {
	if app, ok := m.apps[slug]; ok {
		return app, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock AppTokenRepository ──

type mockAppTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.AppToken // key: user|app|workspace
}

func newMockAppTokenRepo() *mockAppTokenRepo {
	return &mockAppTokenRepo{tokens: make(map[string]*model.AppToken)}
}

func tripleKey(userID, appID, workspaceID string) string {
	return userID + "|" + appID + "|" + workspaceID
}

func (m *mockAppTokenRepo) Upsert(_ context.Context, token *model.AppToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *token
	m.tokens[tripleKey(token.UserID, token.AppID, token.WorkspaceID)] = &cp
	return nil
}

func (m *mockAppTokenRepo) GetByTriple(_ context.Context, userID, appID, workspaceID string) (*model.AppToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[tripleKey(userID, appID, workspaceID)]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppTokenRepo) Update(_ context.Context, token *model.AppToken) error {
	return m.Upsert(nil, token)
}

func (m *mockAppTokenRepo) DeleteByTriple(_ context.Context, userID, appID, workspaceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, tripleKey(userID, appID, workspaceID))
	return nil
}

func (m *mockAppTokenRepo) CountByWorkspaceApp(_ context.Context, workspaceID, appID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, t := range m.tokens {
		if t.WorkspaceID == workspaceID && t.AppID == appID {
			count++
		}
	}
	return count, nil
}

// ── Mock WorkspaceAppRepository ──

type mockWorkspaceAppRepo struct {
	mu    sync.Mutex
	pairs map[string]*model.WorkspaceApp // key: workspace|app
}

func newMockWorkspaceAppRepo() *mockWorkspaceAppRepo {
	return &mockWorkspaceAppRepo{pairs: make(map[string]*model.WorkspaceApp)}
}

func (m *mockWorkspaceAppRepo) GetByPair(_ context.Context, workspaceID, appID string) (*model.WorkspaceApp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if wa, ok := m.pairs[workspaceID+"|"+appID]; ok {
		cp := *wa
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkspaceAppRepo) SetStatus(_ context.Context, workspaceID, appID, status string, connectedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := workspaceID + "|" + appID
	wa, ok := m.pairs[key]
	if !ok {
		wa = &model.WorkspaceApp{WorkspaceID: workspaceID, AppID: appID}
		m.pairs[key] = wa
	}
	wa.Status = status
	wa.ConnectedAt = connectedAt
	wa.UpdatedAt = time.Now()
	return nil
}

// ── Mock MeetingRepository ──

type mockMeetingRepo struct {
	meetings map[string]*model.Meeting
}

func newMockMeetingRepo() *mockMeetingRepo {
	return &mockMeetingRepo{meetings: make(map[string]*model.Meeting)}
}

func (m *mockMeetingRepo) Create(_ context.Context, meeting *model.Meeting) error {
	if meeting.MeetingID == "" {
		meeting.MeetingID = fmt.Sprintf("meeting-%d", len(m.meetings)+1)
	}
	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = time.Now()
		meeting.UpdatedAt = meeting.CreatedAt
	}
	m.meetings[meeting.MeetingID] = meeting
	return nil
}

func (m *mockMeetingRepo) GetByID(_ context.Context, id string) (*model.Meeting, error) {
	if meeting, ok := m.meetings[id]; ok {
		return meeting, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMeetingRepo) ListByWorkspace(_ context.Context, workspaceID string, from time.Time) ([]model.Meeting, error) {
	var result []model.Meeting
	for _, meeting := range m.meetings {
		if meeting.WorkspaceID == workspaceID && meeting.StartsAt.After(from) {
			result = append(result, *meeting)
		}
	}
	return result, nil
}

// ── 测试装配辅助 ──

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-0123456789",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 30 * 24 * time.Hour,
		},
		Invite: config.InviteConfig{
			CodeLength: 8,
			RateLimit:  10,
			RateWindow: time.Minute,
		},
		Canva: config.CanvaConfig{
			ClientID:      "client-id",
			ClientSecret:  "client-secret",
			RedirectURI:   "https://app.beespo.local/api/apps/canva/callback",
			AuthURL:       "https://www.canva.com/api/oauth/authorize",
			StateTTL:      5 * time.Minute,
			RefreshMargin: 60 * time.Second,
		},
	}
}

func newTestRepo() *repository.Repository {
	return &repository.Repository{
		User:         newMockUserRepo(),
		Workspace:    newMockWorkspaceRepo(),
		Invitation:   newMockInvitationRepo(),
		App:          newMockAppRepo(),
		AppToken:     newMockAppTokenRepo(),
		WorkspaceApp: newMockWorkspaceAppRepo(),
		Meeting:      newMockMeetingRepo(),
	}
}

// [自证通过] internal/service/mock_repos_test.go
