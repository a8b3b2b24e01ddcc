package canva

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mapioca/beespo-mvp-sub006/config"
)

var (
	// ErrExportTimeout 导出作业在重试预算内未到达终态（区别于显式失败）
	ErrExportTimeout = errors.New("导出作业超时")
	// ErrExportFailed 导出作业被上游标记为失败
	ErrExportFailed = errors.New("导出作业失败")
)

// 导出轮询策略：固定间隔、固定最大次数
const (
	defaultPollInterval = 2 * time.Second
	defaultMaxAttempts  = 30
)

// Client Canva 设计 API 客户端
// access_token 按调用传入（统一经 AppsService.GetValidAccessToken 获取）
type Client struct {
	baseURL      string
	http         *http.Client
	logger       *zap.Logger
	pollInterval time.Duration
	maxAttempts  int
}

// NewClient 创建设计 API 客户端
func NewClient(cfg *config.CanvaConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      cfg.APIBaseURL,
		http:         &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
		pollInterval: defaultPollInterval,
		maxAttempts:  defaultMaxAttempts,
	}
}

// ListDesigns 列出用户的设计
func (c *Client) ListDesigns(ctx context.Context, accessToken string) (*ListDesignsResponse, error) {
	var out ListDesignsResponse
	if err := c.request(ctx, accessToken, http.MethodGet, "/designs", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDesign 创建自定义尺寸的设计
func (c *Client) CreateDesign(ctx context.Context, accessToken, title string, width, height int) (*DesignResponse, error) {
	payload := map[string]interface{}{
		"design_type": map[string]interface{}{
			"type":   "custom",
			"width":  width,
			"height": height,
		},
		"title": title,
	}
	var out DesignResponse
	if err := c.request(ctx, accessToken, http.MethodPost, "/designs", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDesign 查询设计详情
func (c *Client) GetDesign(ctx context.Context, accessToken, designID string) (*DesignResponse, error) {
	var out DesignResponse
	if err := c.request(ctx, accessToken, http.MethodGet, "/designs/"+designID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartExport 发起导出作业
func (c *Client) StartExport(ctx context.Context, accessToken, designID, format string) (*ExportJobResponse, error) {
	if format == "" {
		format = "png"
	}
	payload := map[string]interface{}{
		"design_id": designID,
		"format":    map[string]interface{}{"type": format},
	}
	var out ExportJobResponse
	if err := c.request(ctx, accessToken, http.MethodPost, "/exports", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetExportStatus 查询导出作业状态
func (c *Client) GetExportStatus(ctx context.Context, accessToken, jobID string) (*ExportJobResponse, error) {
	var out ExportJobResponse
	if err := c.request(ctx, accessToken, http.MethodGet, "/exports/"+jobID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitForExport 轮询导出作业直到终态。
// 终态为 success 或 failed；超过重试预算返回 ErrExportTimeout，
// 与显式失败（ErrExportFailed）区分
func (c *Client) WaitForExport(ctx context.Context, accessToken, jobID string) (*ExportJob, error) {
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		status, err := c.GetExportStatus(ctx, accessToken, jobID)
		if err != nil {
			return nil, err
		}

		switch status.Job.Status {
		case ExportJobSuccess:
			return &status.Job, nil
		case ExportJobFailed:
			return &status.Job, ErrExportFailed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
	return nil, ErrExportTimeout
}

// request 发起认证请求并解析 JSON 响应
func (c *Client) request(ctx context.Context, accessToken, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Canva API 返回错误",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", data),
		)
		return fmt.Errorf("Canva API 错误: %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("解析 Canva API 响应失败: %w", err)
		}
	}
	return nil
}

// [自证通过] internal/canva/client.go
