package repository

import (
	"context"

	"gorm.io/gorm"

	"eco-award/backend/internal/model"
)

// CertificateRepository 证书数据访问接口
type CertificateRepository interface {
	Create(ctx context.Context, cert *model.Certificate) error
	Exists(ctx context.Context, schoolID, stage string) (bool, error)
	ListBySchool(ctx context.Context, schoolID string) ([]model.Certificate, error)
}

// certificateRepo CertificateRepository 的 GORM 实现
type certificateRepo struct {
	db *gorm.DB
}

// NewCertificateRepo 创建 CertificateRepository 实例
func NewCertificateRepo(db *gorm.DB) CertificateRepository {
	return &certificateRepo{db: db}
}

func (r *certificateRepo) Create(ctx context.Context, cert *model.Certificate) error {
	return r.db.WithContext(ctx).Create(cert).Error
}

func (r *certificateRepo) Exists(ctx context.Context, schoolID, stage string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Certificate{}).
		Where("school_id = ? AND stage = ?", schoolID, stage).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *certificateRepo) ListBySchool(ctx context.Context, schoolID string) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("issued_at DESC").
		Find(&certs).Error
	return certs, err
}
