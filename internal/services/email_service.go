// file: internal/services/email_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"rekaloka/internal/config"

	"go.uber.org/zap"
)

const verificationSubject = "Kode Verifikasi Akun Rekaloka kamu"

var verificationTemplate = template.Must(template.New("verification").Parse(`<div style="font-family: Arial, sans-serif; line-height: 1.6;">
  <h2>Halo, {{.Username}}!</h2>
  <p>Terimakasih udah daftar di Rekaloka. Ini kode verifikasi kamu:</p>
  <h1 style="font-size: 3rem; letter-spacing: 0.5rem; margin: 2rem 0; text-align: center;">{{.Code}}</h1>
  <p>Masukkan kode ini di aplikasi buat ngelanjutin, ya. Jangan kasih tau siapa-siapa!</p>
  <br>
  <p>Salam hangat,</p>
  <p>Tim Rekaloka</p>
</div>`))

// sendMailFunc matches smtp.SendMail
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// emailService implements EmailService over SMTP
type emailService struct {
	cfg      config.MailConfig
	sendMail sendMailFunc
	logger   *zap.Logger
}

// NewEmailService creates an SMTP mailer. With no SMTP host configured,
// messages are logged and dropped.
func NewEmailService(cfg config.MailConfig, logger *zap.Logger) EmailService {
	return &emailService{
		cfg:      cfg,
		sendMail: smtp.SendMail,
		logger:   logger,
	}
}

// SendVerificationCode mails the account verification code
func (s *emailService) SendVerificationCode(ctx context.Context, email, username, code string) error {
	if !s.cfg.Enabled() {
		s.logger.Warn("SMTP not configured, verification email not sent",
			zap.String("email", email))
		return nil
	}

	var html bytes.Buffer
	if err := verificationTemplate.Execute(&html, struct{ Username, Code string }{username, code}); err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.send([]string{email}, verificationSubject, html.String()); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	s.logger.Info("Verification email sent", zap.String("email", email))
	return nil
}

func (s *emailService) send(to []string, subject, html string) error {
	port := s.cfg.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, port)

	from := s.cfg.Username
	fromHeader := from
	if s.cfg.FromName != "" {
		fromHeader = fmt.Sprintf("%q <%s>", s.cfg.FromName, from)
	}

	var body bytes.Buffer
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString(fmt.Sprintf("From: %s\r\n", fromHeader))
	body.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	body.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	body.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	body.WriteString("\r\n")
	body.WriteString(html)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	return s.sendMail(addr, auth, from, to, body.Bytes())
}
