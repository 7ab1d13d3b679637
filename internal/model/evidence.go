package model

import "time"

// ── 材料审核状态常量 ──

const (
	EvidenceStatusPending  = "pending"
	EvidenceStatusApproved = "approved"
	EvidenceStatusRejected = "rejected"
)

// Evidence 实证材料表 — 对应 evidence
// school_id / stage / round_number 创建后不可变；
// 审核字段只由审核入口修改，文件元数据可在上传完成后补写
type Evidence struct {
	EvidenceID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"evidence_id"`
	SchoolID    string     `gorm:"type:uuid;not null"                             json:"school_id"`
	Stage       string     `gorm:"type:varchar(20);not null"                      json:"stage"` // inspire | investigate | act
	RoundNumber int        `gorm:"not null"                                       json:"round_number"`
	Title       string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string     `gorm:"type:text"                                      json:"description,omitempty"`
	FileName    string     `gorm:"type:varchar(255)"                              json:"file_name,omitempty"`
	FileURL     string     `gorm:"type:varchar(1024)"                             json:"file_url,omitempty"`
	FileSize    int64      `json:"file_size,omitempty"`
	ContentType string     `gorm:"type:varchar(100)"                              json:"content_type,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | approved | rejected
	SubmittedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  *string    `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	ReviewNotes string     `gorm:"type:text"                                      json:"review_notes,omitempty"`
	BaseModel

	// 关联
	School *School `gorm:"foreignKey:SchoolID;references:SchoolID" json:"school,omitempty"`
}

// TableName 指定表名
func (Evidence) TableName() string { return "evidence" }
