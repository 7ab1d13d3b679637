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

// ── 实证材料模块业务错误 ──

var (
	ErrInvalidStage     = errors.New("阶段不合法")
	ErrSchoolIDRequired = errors.New("缺少学校ID")
)

// EvidenceService 实证材料业务接口
type EvidenceService interface {
	// Submit 提交材料：轮次固定取学校当前轮次；阶段缺省取学校当前阶段
	Submit(ctx context.Context, req *dto.SubmitEvidenceRequest, schoolID, submitterID string) (*dto.EvidenceResponse, error)
	GetByID(ctx context.Context, evidenceID string) (*dto.EvidenceResponse, error)
	ListBySchool(ctx context.Context, schoolID string, req *dto.EvidenceListRequest) ([]dto.EvidenceResponse, error)
	// UpdateFileMetadata 对象存储上传完成后补写文件元数据
	UpdateFileMetadata(ctx context.Context, evidenceID string, req *dto.UpdateEvidenceFileRequest, operatorID string) (*dto.EvidenceResponse, error)
}

type evidenceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEvidenceService 创建 EvidenceService 实例
func NewEvidenceService(repo *repository.Repository, logger *zap.Logger) EvidenceService {
	return &evidenceService{repo: repo, logger: logger}
}

// ────────────────────── Submit ──────────────────────

// Submit 提交实证材料。
// schoolID 来自调用方上下文（教师取自 Token，管理员可在请求体指定），
// 材料的轮次在创建时冻结为学校当前轮次，此后不随学校换轮而改变。
// 提交不触发任何进度计算——只有审核入口会触发。
func (s *evidenceService) Submit(ctx context.Context, req *dto.SubmitEvidenceRequest, schoolID, submitterID string) (*dto.EvidenceResponse, error) {
	if schoolID == "" {
		return nil, ErrSchoolIDRequired
	}

	school, err := s.repo.School.GetByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		s.logger.Error("查询学校失败", zap.String("id", schoolID), zap.Error(err))
		return nil, err
	}

	stage := req.Stage
	if stage == "" {
		stage = school.CurrentStage
	}
	if !model.ValidStage(stage) {
		return nil, ErrInvalidStage
	}

	evidence := &model.Evidence{
		SchoolID:    school.SchoolID,
		Stage:       stage,
		RoundNumber: school.CurrentRound,
		Title:       req.Title,
		Description: req.Description,
		FileName:    req.FileName,
		FileURL:     req.FileURL,
		FileSize:    req.FileSize,
		ContentType: req.ContentType,
		Status:      model.EvidenceStatusPending,
		SubmittedAt: time.Now(),
	}
	if submitterID != "" {
		evidence.CreatedBy = &submitterID
		evidence.UpdatedBy = &submitterID
	}

	if err := s.repo.Evidence.Create(ctx, evidence); err != nil {
		s.logger.Error("创建材料失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("材料提交成功",
		zap.String("evidence_id", evidence.EvidenceID),
		zap.String("school_id", school.SchoolID),
		zap.String("stage", stage),
		zap.Int("round", evidence.RoundNumber),
	)
	return toEvidenceResponse(evidence), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *evidenceService) GetByID(ctx context.Context, evidenceID string) (*dto.EvidenceResponse, error) {
	evidence, err := s.repo.Evidence.GetByID(ctx, evidenceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvidenceNotFound
		}
		s.logger.Error("查询材料失败", zap.String("id", evidenceID), zap.Error(err))
		return nil, err
	}
	return toEvidenceResponse(evidence), nil
}

// ────────────────────── ListBySchool ──────────────────────

func (s *evidenceService) ListBySchool(ctx context.Context, schoolID string, req *dto.EvidenceListRequest) ([]dto.EvidenceResponse, error) {
	if _, err := s.repo.School.GetByID(ctx, schoolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		s.logger.Error("查询学校失败", zap.String("id", schoolID), zap.Error(err))
		return nil, err
	}

	filters := &repository.EvidenceListFilters{
		Round:  req.Round,
		Stage:  req.Stage,
		Status: req.Status,
	}

	list, err := s.repo.Evidence.ListBySchoolFiltered(ctx, schoolID, filters)
	if err != nil {
		s.logger.Error("查询材料列表失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}

	resp := make([]dto.EvidenceResponse, 0, len(list))
	for i := range list {
		resp = append(resp, *toEvidenceResponse(&list[i]))
	}
	return resp, nil
}

// ────────────────────── UpdateFileMetadata ──────────────────────

func (s *evidenceService) UpdateFileMetadata(ctx context.Context, evidenceID string, req *dto.UpdateEvidenceFileRequest, operatorID string) (*dto.EvidenceResponse, error) {
	evidence, err := s.repo.Evidence.GetByID(ctx, evidenceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvidenceNotFound
		}
		s.logger.Error("查询材料失败", zap.String("id", evidenceID), zap.Error(err))
		return nil, err
	}

	// 只允许补写文件元数据；school/stage/round 与审核字段不可经此修改
	evidence.FileName = req.FileName
	evidence.FileURL = req.FileURL
	evidence.FileSize = req.FileSize
	evidence.ContentType = req.ContentType
	if operatorID != "" {
		evidence.UpdatedBy = &operatorID
	}

	if err := s.repo.Evidence.Update(ctx, evidence); err != nil {
		s.logger.Error("补写文件元数据失败", zap.String("id", evidenceID), zap.Error(err))
		return nil, err
	}

	return toEvidenceResponse(evidence), nil
}
