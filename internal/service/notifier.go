package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"eco-award/backend/internal/model"
	"eco-award/backend/internal/repository"
	"eco-award/backend/pkg/mailer"
)

// Notifier 审核结果通知接口
// 所有实现都必须是尽力而为：通知失败只记日志，绝不向调用方返回错误，
// 更不能回滚已经生效的审核与进度更新
type Notifier interface {
	EvidenceReviewed(ctx context.Context, evidence *model.Evidence, school *model.School)
	AuditReviewed(ctx context.Context, audit *model.AuditResponse, school *model.School)
}

// mailNotifier 邮件 + 站内通知实现
type mailNotifier struct {
	repo   *repository.Repository
	mail   *mailer.Mailer
	logger *zap.Logger
}

// NewMailNotifier 创建 Notifier 实例
func NewMailNotifier(repo *repository.Repository, mail *mailer.Mailer, logger *zap.Logger) Notifier {
	return &mailNotifier{repo: repo, mail: mail, logger: logger}
}

func (n *mailNotifier) EvidenceReviewed(ctx context.Context, evidence *model.Evidence, school *model.School) {
	approved := evidence.Status == model.EvidenceStatusApproved

	notifType := model.NotificationEvidenceRejected
	subject := fmt.Sprintf("实证材料《%s》未通过审核", evidence.Title)
	body := fmt.Sprintf("您提交的 %s 阶段材料《%s》未通过审核。", evidence.Stage, evidence.Title)
	if approved {
		notifType = model.NotificationEvidenceApproved
		subject = fmt.Sprintf("实证材料《%s》已通过审核", evidence.Title)
		body = fmt.Sprintf("您提交的 %s 阶段材料《%s》已通过审核。", evidence.Stage, evidence.Title)
	}
	if evidence.ReviewNotes != "" {
		body += "\n审核意见：" + evidence.ReviewNotes
	}

	relatedType := "evidence"
	n.deliver(ctx, school, evidence.CreatedBy, notifType, subject, body, &relatedType, &evidence.EvidenceID)
}

func (n *mailNotifier) AuditReviewed(ctx context.Context, audit *model.AuditResponse, school *model.School) {
	approved := audit.Status == model.AuditStatusApproved

	notifType := model.NotificationAuditRejected
	subject := "环境审计问卷未通过审核"
	body := "您提交的环境审计问卷未通过审核，可修改后重新提交。"
	if approved {
		notifType = model.NotificationAuditApproved
		subject = "环境审计问卷已通过审核"
		body = "您提交的环境审计问卷已通过审核，将计入 investigate 阶段达标项。"
	}
	if audit.ReviewNotes != "" {
		body += "\n审核意见：" + audit.ReviewNotes
	}

	relatedType := "audit"
	n.deliver(ctx, school, audit.CreatedBy, notifType, subject, body, &relatedType, &audit.AuditID)
}

// deliver 写站内通知并发送邮件，任一失败只记日志
func (n *mailNotifier) deliver(ctx context.Context, school *model.School, submitterID *string,
	notifType, subject, body string, relatedType, relatedID *string) {

	if submitterID != nil && *submitterID != "" {
		notification := &model.Notification{
			UserID:      *submitterID,
			Type:        notifType,
			Title:       subject,
			Content:     body,
			RelatedType: relatedType,
			RelatedID:   relatedID,
		}
		if err := n.repo.Notification.Create(ctx, notification); err != nil {
			n.logger.Warn("写入站内通知失败",
				zap.String("user_id", *submitterID),
				zap.String("type", notifType),
				zap.Error(err),
			)
		}
	}

	if school != nil && school.ContactEmail != "" {
		if err := n.mail.Send(school.ContactEmail, subject, body); err != nil {
			n.logger.Warn("发送审核通知邮件失败",
				zap.String("to", school.ContactEmail),
				zap.String("type", notifType),
				zap.Error(err),
			)
		}
	}
}

// nopNotifier 空实现，单元测试用
type nopNotifier struct{}

// NewNopNotifier 创建不做任何事的 Notifier
func NewNopNotifier() Notifier {
	return nopNotifier{}
}

func (nopNotifier) EvidenceReviewed(context.Context, *model.Evidence, *model.School) {}
func (nopNotifier) AuditReviewed(context.Context, *model.AuditResponse, *model.School) {}
