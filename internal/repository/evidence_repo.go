package repository

import (
	"context"

	"gorm.io/gorm"

	"eco-award/backend/internal/model"
)

// EvidenceListFilters 材料列表过滤条件
type EvidenceListFilters struct {
	Round  *int
	Stage  string
	Status string
}

// EvidenceRepository 实证材料数据访问接口
type EvidenceRepository interface {
	Create(ctx context.Context, evidence *model.Evidence) error
	GetByID(ctx context.Context, id string) (*model.Evidence, error)
	// ListBySchool 返回学校全部历史材料（跨轮次），计数器自行按轮次过滤
	ListBySchool(ctx context.Context, schoolID string) ([]model.Evidence, error)
	ListBySchoolFiltered(ctx context.Context, schoolID string, filters *EvidenceListFilters) ([]model.Evidence, error)
	Update(ctx context.Context, evidence *model.Evidence) error
}

// evidenceRepo EvidenceRepository 的 GORM 实现
type evidenceRepo struct {
	db *gorm.DB
}

// NewEvidenceRepo 创建 EvidenceRepository 实例
func NewEvidenceRepo(db *gorm.DB) EvidenceRepository {
	return &evidenceRepo{db: db}
}

func (r *evidenceRepo) Create(ctx context.Context, evidence *model.Evidence) error {
	return r.db.WithContext(ctx).Create(evidence).Error
}

func (r *evidenceRepo) GetByID(ctx context.Context, id string) (*model.Evidence, error) {
	var evidence model.Evidence
	err := r.db.WithContext(ctx).
		Where("evidence_id = ?", id).
		First(&evidence).Error
	if err != nil {
		return nil, err
	}
	return &evidence, nil
}

func (r *evidenceRepo) ListBySchool(ctx context.Context, schoolID string) ([]model.Evidence, error) {
	var list []model.Evidence
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("submitted_at ASC").
		Find(&list).Error
	return list, err
}

func (r *evidenceRepo) ListBySchoolFiltered(ctx context.Context, schoolID string, filters *EvidenceListFilters) ([]model.Evidence, error) {
	db := r.db.WithContext(ctx).Where("school_id = ?", schoolID)
	if filters != nil {
		if filters.Round != nil {
			db = db.Where("round_number = ?", *filters.Round)
		}
		if filters.Stage != "" {
			db = db.Where("stage = ?", filters.Stage)
		}
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
	}

	var list []model.Evidence
	err := db.Order("submitted_at ASC").Find(&list).Error
	return list, err
}

func (r *evidenceRepo) Update(ctx context.Context, evidence *model.Evidence) error {
	return r.db.WithContext(ctx).Save(evidence).Error
}
