package service

import (
	"context"
	"coursemart_backend/internal/config"
	"coursemart_backend/internal/model"
	"coursemart_backend/pkg/logger"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer 邮件发送通道
type Mailer interface {
	Send(ctx context.Context, toName, toEmail, subject, body string) error
}

// SendGridMailer 配置了 API Key 时使用
type SendGridMailer struct {
	Client   *sendgrid.Client
	FromName string
	From     string
}

func (m *SendGridMailer) Send(ctx context.Context, toName, toEmail, subject, body string) error {
	msg := mail.NewSingleEmail(
		mail.NewEmail(m.FromName, m.From),
		subject,
		mail.NewEmail(toName, toEmail),
		body,
		"",
	)
	resp, err := m.Client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer 未配置邮件服务时只写日志
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, toName, toEmail, subject, body string) error {
	logger.Log.Info("Notification (mail disabled)",
		zap.String("to", toEmail),
		zap.String("subject", subject))
	return nil
}

type NotificationService struct {
	Mailer     Mailer
	AdminEmail string
}

func NewNotificationService(cfg *config.MailConfig) *NotificationService {
	var mailer Mailer = LogMailer{}
	if cfg.SendGridAPIKey != "" && cfg.FromEmail != "" {
		mailer = &SendGridMailer{
			Client:   sendgrid.NewSendClient(cfg.SendGridAPIKey),
			FromName: cfg.FromName,
			From:     cfg.FromEmail,
		}
	}
	return &NotificationService{Mailer: mailer, AdminEmail: cfg.AdminEmail}
}

// 通知失败只记录日志，不影响支付流程
func (s *NotificationService) send(ctx context.Context, toName, toEmail, subject, body string) {
	if toEmail == "" {
		return
	}
	if err := s.Mailer.Send(ctx, toName, toEmail, subject, body); err != nil {
		logger.Log.Warn("Failed to send notification", zap.String("to", toEmail), zap.Error(err))
	}
}

func (s *NotificationService) PaymentSubmitted(ctx context.Context, settings *model.PaymentSettings, p *model.Payment) {
	if !settings.NotifyAdminOnPayment {
		return
	}
	to := s.AdminEmail
	if to == "" {
		to = settings.PlatformEmail
	}
	s.send(ctx, settings.PlatformName, to,
		fmt.Sprintf("New payment #%d pending review", p.ID),
		fmt.Sprintf("%s submitted %s for \"%s\" (transaction %s).",
			p.Student.Name, p.Amount.StringFixed(2), p.Course.Title, p.TransactionID))
}

func (s *NotificationService) PaymentApproved(ctx context.Context, settings *model.PaymentSettings, p *model.Payment) {
	if !settings.NotifyStudentOnApproval {
		return
	}
	s.send(ctx, p.Student.Name, p.Student.Email,
		fmt.Sprintf("Your enrollment in \"%s\" is confirmed", p.Course.Title),
		fmt.Sprintf("Your payment of %s has been verified. You can start learning now.", p.Amount.StringFixed(2)))
}

func (s *NotificationService) PaymentRejected(ctx context.Context, settings *model.PaymentSettings, p *model.Payment) {
	if !settings.NotifyStudentOnApproval {
		return
	}
	s.send(ctx, p.Student.Name, p.Student.Email,
		fmt.Sprintf("Payment for \"%s\" was not approved", p.Course.Title),
		fmt.Sprintf("Reason: %s", p.AdminNotes))
}
