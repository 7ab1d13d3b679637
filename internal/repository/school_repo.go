package repository

import (
	"context"

	"gorm.io/gorm"

	"eco-award/backend/internal/model"
	pkgerrors "eco-award/backend/pkg/errors"
)

// SchoolListFilters 学校列表过滤条件
type SchoolListFilters struct {
	Region string
	Stage  string
}

// SchoolRepository 学校数据访问接口
type SchoolRepository interface {
	Create(ctx context.Context, school *model.School) error
	GetByID(ctx context.Context, id string) (*model.School, error)
	List(ctx context.Context, filters *SchoolListFilters, offset, limit int) ([]model.School, int64, error)
	// UpdateWithVersion 带乐观锁的进度更新：版本不匹配时返回 pkgerrors.ErrOptimisticLock
	UpdateWithVersion(ctx context.Context, school *model.School) error
}

// schoolRepo SchoolRepository 的 GORM 实现
type schoolRepo struct {
	db *gorm.DB
}

// NewSchoolRepo 创建 SchoolRepository 实例
func NewSchoolRepo(db *gorm.DB) SchoolRepository {
	return &schoolRepo{db: db}
}

func (r *schoolRepo) Create(ctx context.Context, school *model.School) error {
	return r.db.WithContext(ctx).Create(school).Error
}

func (r *schoolRepo) GetByID(ctx context.Context, id string) (*model.School, error) {
	var school model.School
	err := r.db.WithContext(ctx).
		Where("school_id = ?", id).
		First(&school).Error
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *schoolRepo) List(ctx context.Context, filters *SchoolListFilters, offset, limit int) ([]model.School, int64, error) {
	var schools []model.School
	var total int64

	db := r.db.WithContext(ctx).Model(&model.School{})
	if filters != nil {
		if filters.Region != "" {
			db = db.Where("region = ?", filters.Region)
		}
		if filters.Stage != "" {
			db = db.Where("current_stage = ?", filters.Stage)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&schools).Error; err != nil {
		return nil, 0, err
	}

	return schools, total, nil
}

// UpdateWithVersion 进度字段整体更新，WHERE 带版本号做 CAS。
// 并发审核同一学校时后写的一方拿到 ErrOptimisticLock，由调用方决定重试或上抛。
func (r *schoolRepo) UpdateWithVersion(ctx context.Context, school *model.School) error {
	oldVersion := school.Version
	result := r.db.WithContext(ctx).
		Model(school).
		Where("school_id = ? AND version = ?", school.SchoolID, oldVersion).
		Updates(map[string]interface{}{
			"current_stage":         school.CurrentStage,
			"inspire_completed":     school.InspireCompleted,
			"investigate_completed": school.InvestigateCompleted,
			"act_completed":         school.ActCompleted,
			"award_completed":       school.AwardCompleted,
			"audit_quiz_completed":  school.AuditQuizCompleted,
			"current_round":         school.CurrentRound,
			"rounds_completed":      school.RoundsCompleted,
			"progress_percentage":   school.ProgressPercentage,
			"updated_by":            school.UpdatedBy,
			"version":               oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	school.Version = oldVersion + 1
	return nil
}
