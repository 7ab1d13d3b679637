package model

import "time"

// ── 审计问卷状态常量 ──

const (
	AuditStatusDraft     = "draft"
	AuditStatusSubmitted = "submitted"
	AuditStatusApproved  = "approved"
	AuditStatusRejected  = "rejected"
)

// AuditResponse 环境审计问卷表 — 对应 audit_responses
// 每所学校填写一次；批准后在 investigate 阶段按一个计数项参与达标计算。
// 注意：批准的问卷不按轮次区分——第 1 轮批准的问卷在后续轮次仍然计数，
// 这是产品层面的既定行为，不要在计数器里"顺手修掉"
type AuditResponse struct {
	AuditID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"audit_id"`
	SchoolID    string     `gorm:"type:uuid;not null"                             json:"school_id"`
	Answers     string     `gorm:"type:text"                                      json:"answers,omitempty"` // 问卷答案 JSON
	Status      string     `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`            // draft | submitted | approved | rejected
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  *string    `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	ReviewNotes string     `gorm:"type:text"                                      json:"review_notes,omitempty"`
	BaseModel

	// 关联
	School *School `gorm:"foreignKey:SchoolID;references:SchoolID" json:"school,omitempty"`
}

// TableName 指定表名
func (AuditResponse) TableName() string { return "audit_responses" }
