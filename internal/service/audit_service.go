package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"eco-award/backend/internal/dto"
	"eco-award/backend/internal/model"
	"eco-award/backend/internal/repository"
)

// ── 问卷模块业务错误 ──

var (
	ErrAuditAlreadyDecided = errors.New("问卷已有审核结论，不能再修改")
	ErrAuditNotSubmittable = errors.New("问卷当前状态不能提交")
)

// AuditService 环境审计问卷业务接口
//
// 状态机：draft →(Submit)→ submitted →(审核)→ approved | rejected；
// rejected 后可再次 SaveDraft 回到 draft 重新修改提交
type AuditService interface {
	// SaveDraft 保存（或创建）问卷草稿；rejected 的问卷也可回写为草稿重改
	SaveDraft(ctx context.Context, req *dto.SaveAuditRequest, schoolID, operatorID string) (*dto.AuditDetailResponse, error)
	// Submit 将草稿提交送审
	Submit(ctx context.Context, schoolID, operatorID string) (*dto.AuditDetailResponse, error)
	// GetBySchool 取学校最近一份问卷
	GetBySchool(ctx context.Context, schoolID string) (*dto.AuditDetailResponse, error)
}

type auditService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

// ────────────────────── SaveDraft ──────────────────────

func (s *auditService) SaveDraft(ctx context.Context, req *dto.SaveAuditRequest, schoolID, operatorID string) (*dto.AuditDetailResponse, error) {
	if schoolID == "" {
		return nil, ErrSchoolIDRequired
	}

	if _, err := s.repo.School.GetByID(ctx, schoolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		s.logger.Error("查询学校失败", zap.String("id", schoolID), zap.Error(err))
		return nil, err
	}

	audit, err := s.repo.Audit.GetLatestBySchool(ctx, schoolID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询问卷失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}

	switch {
	case audit == nil || errors.Is(err, gorm.ErrRecordNotFound):
		// 首次填写
		audit = &model.AuditResponse{
			SchoolID: schoolID,
			Answers:  req.Answers,
			Status:   model.AuditStatusDraft,
		}
		if operatorID != "" {
			audit.CreatedBy = &operatorID
			audit.UpdatedBy = &operatorID
		}
		if err := s.repo.Audit.Create(ctx, audit); err != nil {
			s.logger.Error("创建问卷草稿失败", zap.String("school_id", schoolID), zap.Error(err))
			return nil, err
		}

	case audit.Status == model.AuditStatusApproved:
		// 已批准的问卷是计数依据，不允许改动
		return nil, ErrAuditAlreadyDecided

	default:
		// draft / submitted / rejected 都可以继续编辑，统一回到 draft
		audit.Answers = req.Answers
		audit.Status = model.AuditStatusDraft
		audit.SubmittedAt = nil
		audit.ReviewedAt = nil
		audit.ReviewedBy = nil
		audit.ReviewNotes = ""
		if operatorID != "" {
			audit.UpdatedBy = &operatorID
		}
		if err := s.repo.Audit.Update(ctx, audit); err != nil {
			s.logger.Error("保存问卷草稿失败", zap.String("school_id", schoolID), zap.Error(err))
			return nil, err
		}
	}

	return toAuditResponse(audit), nil
}

// ────────────────────── Submit ──────────────────────

func (s *auditService) Submit(ctx context.Context, schoolID, operatorID string) (*dto.AuditDetailResponse, error) {
	audit, err := s.repo.Audit.GetLatestBySchool(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuditNotFound
		}
		s.logger.Error("查询问卷失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}

	if audit.Status != model.AuditStatusDraft {
		return nil, ErrAuditNotSubmittable
	}

	now := time.Now()
	audit.Status = model.AuditStatusSubmitted
	audit.SubmittedAt = &now
	if operatorID != "" {
		audit.UpdatedBy = &operatorID
	}

	if err := s.repo.Audit.Update(ctx, audit); err != nil {
		s.logger.Error("提交问卷失败", zap.String("audit_id", audit.AuditID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("问卷已提交送审",
		zap.String("audit_id", audit.AuditID),
		zap.String("school_id", schoolID),
	)
	return toAuditResponse(audit), nil
}

// ────────────────────── GetBySchool ──────────────────────

func (s *auditService) GetBySchool(ctx context.Context, schoolID string) (*dto.AuditDetailResponse, error) {
	audit, err := s.repo.Audit.GetLatestBySchool(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuditNotFound
		}
		s.logger.Error("查询问卷失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}
	return toAuditResponse(audit), nil
}
