package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	School       SchoolRepository
	Evidence     EvidenceRepository
	Audit        AuditRepository
	Certificate  CertificateRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		School:       NewSchoolRepo(db),
		Evidence:     NewEvidenceRepo(db),
		Audit:        NewAuditRepo(db),
		Certificate:  NewCertificateRepo(db),
		Notification: NewNotificationRepo(db),
	}
}
