package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"eco-award/backend/internal/dto"
	"eco-award/backend/internal/model"
	"eco-award/backend/internal/repository"
	"eco-award/backend/pkg/redis"
)

// ── 审核模块业务错误 ──

var (
	ErrEvidenceNotFound   = errors.New("实证材料不存在")
	ErrAuditNotFound      = errors.New("环境审计问卷不存在")
	ErrAuditNotReviewable = errors.New("问卷尚未提交，不能审核")
)

// ReviewService 审核入口业务接口
//
// 设计说明：
//   - 审核是进度引擎的唯一触发点：改状态 → 重新计数 → 晋级评估 → 落库 → 可能发证
//   - 同一学校的重算必须串行（见 §pkg/redis 咨询锁）；学校行版本号 CAS 兜底，
//     冲突以 pkgerrors.ErrOptimisticLock 上抛为 409
//   - 批量审核逐条独立处理，单条失败不中断批次，结果逐条返回
//   - 审核通知（邮件 + 站内）异步尽力而为，失败绝不影响审核结果
type ReviewService interface {
	ReviewEvidence(ctx context.Context, evidenceID string, req *dto.ReviewRequest, reviewerID string) (*dto.EvidenceResponse, error)
	BulkReviewEvidence(ctx context.Context, req *dto.BulkReviewRequest, reviewerID string) (*dto.BulkReviewResponse, error)
	ReviewAudit(ctx context.Context, auditID string, req *dto.ReviewRequest, reviewerID string) (*dto.AuditDetailResponse, error)
}

type reviewService struct {
	repo       *repository.Repository
	rdb        *redis.Client // 允许为 nil：降级为仅乐观锁
	notifier   Notifier
	thresholds Thresholds
	certPrefix string
	logger     *zap.Logger
}

// NewReviewService 创建 ReviewService 实例
func NewReviewService(
	repo *repository.Repository,
	rdb *redis.Client,
	notifier Notifier,
	thresholds Thresholds,
	certPrefix string,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		repo:       repo,
		rdb:        rdb,
		notifier:   notifier,
		thresholds: thresholds,
		certPrefix: certPrefix,
		logger:     logger,
	}
}

// ────────────────────── ReviewEvidence ──────────────────────

func (s *reviewService) ReviewEvidence(ctx context.Context, evidenceID string, req *dto.ReviewRequest, reviewerID string) (*dto.EvidenceResponse, error) {
	evidence, err := s.repo.Evidence.GetByID(ctx, evidenceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvidenceNotFound
		}
		s.logger.Error("查询材料失败", zap.String("id", evidenceID), zap.Error(err))
		return nil, err
	}

	// 1. 更新审核字段（允许覆盖此前的审核结论）
	now := time.Now()
	evidence.Status = req.Status
	evidence.ReviewedAt = &now
	evidence.ReviewedBy = &reviewerID
	evidence.ReviewNotes = req.Notes
	evidence.UpdatedBy = &reviewerID

	if err := s.repo.Evidence.Update(ctx, evidence); err != nil {
		s.logger.Error("更新材料审核状态失败", zap.String("id", evidenceID), zap.Error(err))
		return nil, err
	}

	// 2. 同校串行化后重算进度
	unlock := s.lockSchool(ctx, evidence.SchoolID)
	school, err := s.reevaluate(ctx, evidence.SchoolID, reviewerID)
	unlock()
	if err != nil {
		return nil, err
	}

	// 3. 通知异步尽力而为
	s.notifyAsync(func(bg context.Context) {
		s.notifier.EvidenceReviewed(bg, evidence, school)
	})

	return toEvidenceResponse(evidence), nil
}

// ────────────────────── BulkReviewEvidence ──────────────────────

func (s *reviewService) BulkReviewEvidence(ctx context.Context, req *dto.BulkReviewRequest, reviewerID string) (*dto.BulkReviewResponse, error) {
	single := &dto.ReviewRequest{Status: req.Status, Notes: req.Notes}

	resp := &dto.BulkReviewResponse{
		Results: make([]dto.BulkReviewItemResult, 0, len(req.EvidenceIDs)),
	}

	for _, id := range req.EvidenceIDs {
		item := dto.BulkReviewItemResult{EvidenceID: id}
		if _, err := s.ReviewEvidence(ctx, id, single, reviewerID); err != nil {
			item.Error = err.Error()
			resp.Failed++
		} else {
			item.Success = true
			resp.Succeeded++
		}
		resp.Results = append(resp.Results, item)
	}

	return resp, nil
}

// ────────────────────── ReviewAudit ──────────────────────

func (s *reviewService) ReviewAudit(ctx context.Context, auditID string, req *dto.ReviewRequest, reviewerID string) (*dto.AuditDetailResponse, error) {
	audit, err := s.repo.Audit.GetByID(ctx, auditID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuditNotFound
		}
		s.logger.Error("查询问卷失败", zap.String("id", auditID), zap.Error(err))
		return nil, err
	}

	if audit.Status == model.AuditStatusDraft {
		return nil, ErrAuditNotReviewable
	}

	now := time.Now()
	if req.Status == "approved" {
		audit.Status = model.AuditStatusApproved
	} else {
		audit.Status = model.AuditStatusRejected
	}
	audit.ReviewedAt = &now
	audit.ReviewedBy = &reviewerID
	audit.ReviewNotes = req.Notes
	audit.UpdatedBy = &reviewerID

	if err := s.repo.Audit.Update(ctx, audit); err != nil {
		s.logger.Error("更新问卷审核状态失败", zap.String("id", auditID), zap.Error(err))
		return nil, err
	}

	unlock := s.lockSchool(ctx, audit.SchoolID)
	defer unlock()

	// 问卷批准直接置位 audit_quiz_completed（独立于晋级评估的既定副作用），
	// 之后再走一遍常规重算，让问卷计数项参与 investigate 达标判断
	if audit.Status == model.AuditStatusApproved {
		school, err := s.repo.School.GetByID(ctx, audit.SchoolID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询学校失败", zap.String("id", audit.SchoolID), zap.Error(err))
			return nil, err
		}
		if school != nil && !school.AuditQuizCompleted {
			school.AuditQuizCompleted = true
			school.UpdatedBy = &reviewerID
			if err := s.repo.School.UpdateWithVersion(ctx, school); err != nil {
				return nil, err
			}
		}
	}

	school, err := s.reevaluate(ctx, audit.SchoolID, reviewerID)
	if err != nil {
		return nil, err
	}

	s.notifyAsync(func(bg context.Context) {
		s.notifier.AuditReviewed(bg, audit, school)
	})

	return toAuditResponse(audit), nil
}

// ────────────────────── 进度重算 ──────────────────────

// reevaluate 读全量材料与问卷状态，从头重算计数并评估晋级。
// 计数不做增量维护：每次审核都重新统计，正确性一眼可证，
// 单校材料量级下性能足够。
func (s *reviewService) reevaluate(ctx context.Context, schoolID, reviewerID string) (*model.School, error) {
	school, err := s.repo.School.GetByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 材料存在但学校已被删除：不阻断审核本身
			s.logger.Warn("材料所属学校不存在，跳过进度重算", zap.String("school_id", schoolID))
			return nil, nil
		}
		s.logger.Error("查询学校失败", zap.String("id", schoolID), zap.Error(err))
		return nil, err
	}

	counts, err := s.collectCounts(ctx, school)
	if err != nil {
		return nil, err
	}

	upd, certificateDue := EvaluateProgression(school, counts, s.thresholds)
	if upd.Changed() {
		upd.Apply(school)
		school.UpdatedBy = &reviewerID
		if err := s.repo.School.UpdateWithVersion(ctx, school); err != nil {
			return nil, err
		}
		s.logger.Info("学校进度已更新",
			zap.String("school_id", school.SchoolID),
			zap.String("stage", school.CurrentStage),
			zap.Int("round", school.CurrentRound),
			zap.Int("progress", school.ProgressPercentage),
		)
	}

	if certificateDue {
		if err := s.issueCertificate(ctx, school, counts, reviewerID); err != nil {
			return nil, err
		}
	}

	return school, nil
}

// collectCounts 读库并调用纯计数器
func (s *reviewService) collectCounts(ctx context.Context, school *model.School) (EvidenceCounts, error) {
	evidence, err := s.repo.Evidence.ListBySchool(ctx, school.SchoolID)
	if err != nil {
		s.logger.Error("查询学校材料失败", zap.String("school_id", school.SchoolID), zap.Error(err))
		return EvidenceCounts{}, err
	}

	hasQuiz := false
	if _, err := s.repo.Audit.GetLatestApproved(ctx, school.SchoolID); err == nil {
		hasQuiz = true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询已批准问卷失败", zap.String("school_id", school.SchoolID), zap.Error(err))
		return EvidenceCounts{}, err
	}

	return CountEvidence(evidence, school.CurrentRound, hasQuiz), nil
}

// ────────────────────── 发证 ──────────────────────

// issueCertificate 为完赛学校签发 act 阶段证书。
// 先做存在性检查；并发窗口内的重复插入由 (school_id, stage) 唯一约束拦下，
// 唯一键冲突视作"已签发"静默返回。
func (s *reviewService) issueCertificate(ctx context.Context, school *model.School, counts EvidenceCounts, reviewerID string) error {
	exists, err := s.repo.Certificate.Exists(ctx, school.SchoolID, model.StageAct)
	if err != nil {
		s.logger.Error("查询证书是否已存在失败", zap.String("school_id", school.SchoolID), zap.Error(err))
		return err
	}
	if exists {
		return nil
	}

	cert := &model.Certificate{
		SchoolID:            school.SchoolID,
		Stage:               model.StageAct,
		CertificateNumber:   s.certificateNumber(school.SchoolID),
		InspireApproved:     counts.Inspire.Approved,
		InvestigateApproved: counts.Investigate.Approved,
		ActApproved:         counts.Act.Approved,
		IssuedAt:            time.Now(),
		IsActive:            true,
	}
	cert.CreatedBy = &reviewerID
	cert.UpdatedBy = &reviewerID

	if err := s.repo.Certificate.Create(ctx, cert); err != nil {
		if isUniqueViolation(err) {
			s.logger.Info("证书已由并发审核签发，跳过", zap.String("school_id", school.SchoolID))
			return nil
		}
		s.logger.Error("签发证书失败", zap.String("school_id", school.SchoolID), zap.Error(err))
		return err
	}

	s.logger.Info("证书已签发",
		zap.String("school_id", school.SchoolID),
		zap.String("certificate_number", cert.CertificateNumber),
	)
	return nil
}

// certificateNumber 证书编号：前缀-时间戳-学校ID前8位
func (s *reviewService) certificateNumber(schoolID string) string {
	idPrefix := schoolID
	if len(idPrefix) > 8 {
		idPrefix = idPrefix[:8]
	}
	return fmt.Sprintf("%s-%s-%s", s.certPrefix, time.Now().Format("20060102150405"), idPrefix)
}

// isUniqueViolation PostgreSQL 唯一键冲突（SQLSTATE 23505）
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ────────────────────── 同校串行化 ──────────────────────

const (
	reviewLockTTL      = 10 * time.Second
	reviewLockRetries  = 20
	reviewLockInterval = 50 * time.Millisecond
)

// lockSchool 获取学校级审核咨询锁，返回释放函数。
// Redis 不可用或等待超时均降级放行——乐观锁版本号是最终兜底。
func (s *reviewService) lockSchool(ctx context.Context, schoolID string) func() {
	if s.rdb == nil {
		return func() {}
	}

	for i := 0; i < reviewLockRetries; i++ {
		ok, err := s.rdb.AcquireReviewLock(ctx, schoolID, reviewLockTTL)
		if err != nil {
			s.logger.Warn("获取审核锁失败，降级为乐观锁", zap.String("school_id", schoolID), zap.Error(err))
			return func() {}
		}
		if ok {
			return func() {
				if err := s.rdb.ReleaseReviewLock(context.Background(), schoolID); err != nil {
					s.logger.Warn("释放审核锁失败", zap.String("school_id", schoolID), zap.Error(err))
				}
			}
		}
		time.Sleep(reviewLockInterval)
	}

	s.logger.Warn("等待审核锁超时，降级为乐观锁", zap.String("school_id", schoolID))
	return func() {}
}

// notifyAsync 异步执行通知回调，panic 只记日志
func (s *reviewService) notifyAsync(fn func(ctx context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("通知回调 panic", zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		fn(ctx)
	}()
}
