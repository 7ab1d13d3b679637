package model

import "time"

// Certificate 证书表 — 对应 certificates
// 同一学校同一阶段至多一张（uq_certificates_school_stage 唯一约束兜底）；
// 创建后不再修改，仅支持管理端软停用（is_active）
type Certificate struct {
	CertificateID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"certificate_id"`
	SchoolID            string    `gorm:"type:uuid;not null;uniqueIndex:uq_certificates_school_stage" json:"school_id"`
	Stage               string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_certificates_school_stage" json:"stage"`
	CertificateNumber   string    `gorm:"type:varchar(100);not null;unique"              json:"certificate_number"`
	InspireApproved     int       `gorm:"not null;default:0"                             json:"inspire_approved"`
	InvestigateApproved int       `gorm:"not null;default:0"                             json:"investigate_approved"`
	ActApproved         int       `gorm:"not null;default:0"                             json:"act_approved"`
	IssuedAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"issued_at"`
	IsActive            bool      `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	School *School `gorm:"foreignKey:SchoolID;references:SchoolID" json:"school,omitempty"`
}

// TableName 指定表名
func (Certificate) TableName() string { return "certificates" }
