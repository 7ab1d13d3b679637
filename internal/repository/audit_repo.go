package repository

import (
	"context"

	"gorm.io/gorm"

	"eco-award/backend/internal/model"
)

// AuditRepository 环境审计问卷数据访问接口
type AuditRepository interface {
	Create(ctx context.Context, audit *model.AuditResponse) error
	GetByID(ctx context.Context, id string) (*model.AuditResponse, error)
	// GetLatestBySchool 取学校最近一份问卷（任意状态），草稿编辑用
	GetLatestBySchool(ctx context.Context, schoolID string) (*model.AuditResponse, error)
	// GetLatestApproved 取学校最近一份已批准问卷；不按轮次过滤（既定产品行为）
	GetLatestApproved(ctx context.Context, schoolID string) (*model.AuditResponse, error)
	Update(ctx context.Context, audit *model.AuditResponse) error
}

// auditRepo AuditRepository 的 GORM 实现
type auditRepo struct {
	db *gorm.DB
}

// NewAuditRepo 创建 AuditRepository 实例
func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, audit *model.AuditResponse) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

func (r *auditRepo) GetByID(ctx context.Context, id string) (*model.AuditResponse, error) {
	var audit model.AuditResponse
	err := r.db.WithContext(ctx).
		Where("audit_id = ?", id).
		First(&audit).Error
	if err != nil {
		return nil, err
	}
	return &audit, nil
}

func (r *auditRepo) GetLatestBySchool(ctx context.Context, schoolID string) (*model.AuditResponse, error) {
	var audit model.AuditResponse
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("created_at DESC").
		First(&audit).Error
	if err != nil {
		return nil, err
	}
	return &audit, nil
}

func (r *auditRepo) GetLatestApproved(ctx context.Context, schoolID string) (*model.AuditResponse, error) {
	var audit model.AuditResponse
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND status = ?", schoolID, model.AuditStatusApproved).
		Order("reviewed_at DESC").
		First(&audit).Error
	if err != nil {
		return nil, err
	}
	return &audit, nil
}

func (r *auditRepo) Update(ctx context.Context, audit *model.AuditResponse) error {
	return r.db.WithContext(ctx).Save(audit).Error
}
