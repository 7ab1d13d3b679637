package dto

// ── 站内通知模块请求 ──

// NotificationListRequest 通知列表请求
type NotificationListRequest struct {
	PaginationRequest
}

// ── 站内通知模块响应 ──

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsRead      bool   `json:"is_read"`
	RelatedType string `json:"related_type,omitempty"`
	RelatedID   string `json:"related_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}
