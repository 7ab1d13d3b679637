package handler

import "eco-award/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	School       *SchoolHandler
	Evidence     *EvidenceHandler
	Audit        *AuditHandler
	Review       *ReviewHandler
	Export       *ExportHandler
	Notification *NotificationHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		School:       NewSchoolHandler(svc.School),
		Evidence:     NewEvidenceHandler(svc.Evidence),
		Audit:        NewAuditHandler(svc.Audit),
		Review:       NewReviewHandler(svc.Review),
		Export:       NewExportHandler(svc.Export),
		Notification: NewNotificationHandler(svc.Notification),
	}
}
