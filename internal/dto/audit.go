package dto

// ── 环境审计问卷模块请求 ──

// SaveAuditRequest 保存问卷草稿请求
type SaveAuditRequest struct {
	SchoolID string `json:"school_id" binding:"omitempty,uuid"`
	Answers  string `json:"answers"   binding:"required"`
}

// ── 环境审计问卷模块响应 ──

// AuditDetailResponse 问卷详情响应
type AuditDetailResponse struct {
	ID          string `json:"id"`
	SchoolID    string `json:"school_id"`
	Answers     string `json:"answers,omitempty"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submitted_at,omitempty"`
	ReviewedAt  string `json:"reviewed_at,omitempty"`
	ReviewedBy  string `json:"reviewed_by,omitempty"`
	ReviewNotes string `json:"review_notes,omitempty"`
}
