package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"eco-award/backend/internal/dto"
	"eco-award/backend/internal/model"
	"eco-award/backend/internal/repository"
)

// ── 学校模块业务错误 ──

var (
	ErrSchoolNotFound   = errors.New("学校不存在")
	ErrRoundNotEligible = errors.New("当前轮次尚未完成，不能开启新轮次")
)

// SchoolService 学校业务接口
type SchoolService interface {
	Register(ctx context.Context, req *dto.RegisterSchoolRequest, operatorID string) (*dto.SchoolResponse, error)
	GetByID(ctx context.Context, schoolID string) (*dto.SchoolResponse, error)
	List(ctx context.Context, req *dto.SchoolListRequest) ([]dto.SchoolResponse, int64, error)
	GetEvidenceCounts(ctx context.Context, schoolID string) (*dto.EvidenceCountsResponse, error)
	// StartNewRound 开启新一轮：仅当前轮已完赛（award_completed）时允许，
	// 重置完成标记与进度，轮次号加一，阶段回到 inspire
	StartNewRound(ctx context.Context, schoolID, operatorID string) (*dto.SchoolResponse, error)
	ListCertificates(ctx context.Context, schoolID string) ([]dto.CertificateResponse, error)
}

type schoolService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSchoolService 创建 SchoolService 实例
func NewSchoolService(repo *repository.Repository, logger *zap.Logger) SchoolService {
	return &schoolService{repo: repo, logger: logger}
}

// ────────────────────── Register ──────────────────────

func (s *schoolService) Register(ctx context.Context, req *dto.RegisterSchoolRequest, operatorID string) (*dto.SchoolResponse, error) {
	school := &model.School{
		Name:               req.Name,
		Region:             req.Region,
		ContactEmail:       req.ContactEmail,
		CurrentStage:       model.StageInspire,
		CurrentRound:       1,
		ProgressPercentage: 0,
	}
	if operatorID != "" {
		school.CreatedBy = &operatorID
		school.UpdatedBy = &operatorID
	}

	if err := s.repo.School.Create(ctx, school); err != nil {
		s.logger.Error("创建学校失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("学校注册成功", zap.String("school_id", school.SchoolID), zap.String("name", school.Name))
	return toSchoolResponse(school), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *schoolService) GetByID(ctx context.Context, schoolID string) (*dto.SchoolResponse, error) {
	school, err := s.repo.School.GetByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		s.logger.Error("查询学校失败", zap.String("id", schoolID), zap.Error(err))
		return nil, err
	}
	return toSchoolResponse(school), nil
}

// ────────────────────── List ──────────────────────

func (s *schoolService) List(ctx context.Context, req *dto.SchoolListRequest) ([]dto.SchoolResponse, int64, error) {
	filters := &repository.SchoolListFilters{
		Region: req.Region,
		Stage:  req.Stage,
	}

	schools, total, err := s.repo.School.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询学校列表失败", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.SchoolResponse, 0, len(schools))
	for i := range schools {
		resp = append(resp, *toSchoolResponse(&schools[i]))
	}
	return resp, total, nil
}

// ────────────────────── GetEvidenceCounts ──────────────────────

func (s *schoolService) GetEvidenceCounts(ctx context.Context, schoolID string) (*dto.EvidenceCountsResponse, error) {
	school, err := s.repo.School.GetByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		s.logger.Error("查询学校失败", zap.String("id", schoolID), zap.Error(err))
		return nil, err
	}

	evidence, err := s.repo.Evidence.ListBySchool(ctx, schoolID)
	if err != nil {
		s.logger.Error("查询学校材料失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}

	hasQuiz := false
	if _, err := s.repo.Audit.GetLatestApproved(ctx, schoolID); err == nil {
		hasQuiz = true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询已批准问卷失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}

	counts := CountEvidence(evidence, school.CurrentRound, hasQuiz)
	return &dto.EvidenceCountsResponse{
		SchoolID:     school.SchoolID,
		CurrentRound: school.CurrentRound,
		CurrentStage: school.CurrentStage,
		Inspire:      dto.StageCountsResponse{Total: counts.Inspire.Total, Approved: counts.Inspire.Approved},
		Investigate:  dto.StageCountsResponse{Total: counts.Investigate.Total, Approved: counts.Investigate.Approved},
		Act:          dto.StageCountsResponse{Total: counts.Act.Total, Approved: counts.Act.Approved},
		HasQuiz:      counts.HasQuiz,
	}, nil
}

// ────────────────────── StartNewRound ──────────────────────

// ══════════════════════════════════════════════════════════════
// 开启新轮次
//
// 设计说明：
//   - 准入条件只有一个：当前轮已完赛（award_completed = true）
//   - 重置的是"当前轮"的状态机：四个完成标记、问卷标记、阶段、进度；
//     rounds_completed 是累计值不回退，历史材料按轮次号自然留档
//   - audit_quiz_completed 随轮重置，但已批准的问卷行不删——
//     新轮次的计数器依旧能看到它（问卷不按轮次过滤的既定行为）
//   - 写回走乐观锁：与审核重算并发时由版本号裁决
// ══════════════════════════════════════════════════════════════
func (s *schoolService) StartNewRound(ctx context.Context, schoolID, operatorID string) (*dto.SchoolResponse, error) {
	school, err := s.repo.School.GetByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		s.logger.Error("查询学校失败", zap.String("id", schoolID), zap.Error(err))
		return nil, err
	}

	if !school.AwardCompleted {
		return nil, ErrRoundNotEligible
	}

	school.CurrentRound++
	school.CurrentStage = model.StageInspire
	school.InspireCompleted = false
	school.InvestigateCompleted = false
	school.ActCompleted = false
	school.AwardCompleted = false
	school.AuditQuizCompleted = false
	school.ProgressPercentage = 0
	if operatorID != "" {
		school.UpdatedBy = &operatorID
	}

	if err := s.repo.School.UpdateWithVersion(ctx, school); err != nil {
		return nil, err
	}

	s.logger.Info("学校开启新轮次",
		zap.String("school_id", school.SchoolID),
		zap.Int("round", school.CurrentRound),
	)
	return toSchoolResponse(school), nil
}

// ────────────────────── ListCertificates ──────────────────────

func (s *schoolService) ListCertificates(ctx context.Context, schoolID string) ([]dto.CertificateResponse, error) {
	if _, err := s.repo.School.GetByID(ctx, schoolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		s.logger.Error("查询学校失败", zap.String("id", schoolID), zap.Error(err))
		return nil, err
	}

	certs, err := s.repo.Certificate.ListBySchool(ctx, schoolID)
	if err != nil {
		s.logger.Error("查询学校证书失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}

	resp := make([]dto.CertificateResponse, 0, len(certs))
	for i := range certs {
		resp = append(resp, *toCertificateResponse(&certs[i]))
	}
	return resp, nil
}
