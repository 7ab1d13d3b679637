package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"eco-award/backend/config"
)

// Mailer SMTP 邮件发送器
// 审核通知邮件为尽力而为：发送失败只记日志，绝不影响审核与进度更新
type Mailer struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

// NewMailer 创建 Mailer 实例
func NewMailer(cfg *config.MailConfig, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Send 发送一封纯文本邮件
// mail.enabled 为 false 时直接跳过（开发环境默认关闭）
func (m *Mailer) Send(to, subject, body string) error {
	if !m.cfg.Enabled {
		m.logger.Debug("邮件发送已禁用，跳过", zap.String("to", to), zap.String("subject", subject))
		return nil
	}
	if to == "" {
		return fmt.Errorf("收件人为空")
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("SMTP 发送失败: %w", err)
	}

	return nil
}
