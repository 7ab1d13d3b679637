package service

import (
	"go.uber.org/zap"

	"eco-award/backend/config"
	"eco-award/backend/internal/repository"
	"eco-award/backend/pkg/jwt"
	"eco-award/backend/pkg/mailer"
	"eco-award/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	School       SchoolService
	Evidence     EvidenceService
	Audit        AuditService
	Review       ReviewService
	Export       ExportService
	Notification NotificationService
}

// NewService 创建 Service 聚合
// rdb 允许为 nil（Redis 不可用时降级运行，审核串行化退化为仅乐观锁）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	notifier := NewMailNotifier(repo, mailer.NewMailer(&cfg.Mail, logger), logger)
	thresholds := Thresholds{
		InspireRequired:     cfg.Award.InspireRequired,
		InvestigateRequired: cfg.Award.InvestigateRequired,
		ActRequired:         cfg.Award.ActRequired,
	}

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		School:       NewSchoolService(repo, logger),
		Evidence:     NewEvidenceService(repo, logger),
		Audit:        NewAuditService(repo, logger),
		Review:       NewReviewService(repo, rdb, notifier, thresholds, cfg.Award.CertificatePrefix, logger),
		Export:       NewExportService(repo, logger),
		Notification: NewNotificationService(repo, logger),
	}
}
