package services

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sistenfrota/auth-service/internal/config"
	"github.com/sistenfrota/auth-service/internal/models"
)

// NewDeviceInfo describes the device signature of a successful login that did
// not match any earlier one.
type NewDeviceInfo struct {
	Browser  string
	OS       string
	Device   string
	Location string
	Time     time.Time
}

// Mailer is the notification collaborator of the auth workflow. Every send is
// fire-and-return; callers decide whether a failure aborts the request.
type Mailer interface {
	SendVerificationEmail(user *models.User, token string) error
	SendPasswordRecoveryEmail(user *models.User, token string) error
	SendPasswordChangedEmail(user *models.User) error
	SendNewDeviceLoginEmail(user *models.User, info NewDeviceInfo) error
}

type smtpMailer struct {
	cfg *config.EmailConfig
}

func NewSMTPMailer(cfg *config.EmailConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

// send handles the SMTP handshake and delivery. Headers follow RFC 822, CRLF
// separated with a blank line before the body.
func (m *smtpMailer) send(toEmail, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	headers := []string{
		fmt.Sprintf("From: %s <%s>", m.cfg.AppName, m.cfg.From),
		fmt.Sprintf("To: %s", toEmail),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}
	message := strings.Join(headers, "\r\n")

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)

	return smtp.SendMail(addr, auth, m.cfg.From, []string{toEmail}, []byte(message))
}

func (m *smtpMailer) SendVerificationEmail(user *models.User, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s&email=%s", m.cfg.FrontendURL, token, user.Email)
	subject := fmt.Sprintf("%s - Verify your email", m.cfg.AppName)
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Thank you for signing up for %s. To activate your account, open the link below:\n\n"+
			"%s\n\n"+
			"This link expires in 24 hours.\n\n"+
			"If you did not create this account, please ignore this email.",
		user.Name, m.cfg.AppName, link)
	return m.send(user.Email, subject, body)
}

func (m *smtpMailer) SendPasswordRecoveryEmail(user *models.User, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s&email=%s", m.cfg.FrontendURL, token, user.Email)
	subject := fmt.Sprintf("%s - Password recovery", m.cfg.AppName)
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"We received a request to reset your password. Open the link below to choose a new one:\n\n"+
			"%s\n\n"+
			"This link expires in 1 hour.\n\n"+
			"If you did not request a password reset, please ignore this email.",
		user.Name, link)
	return m.send(user.Email, subject, body)
}

func (m *smtpMailer) SendPasswordChangedEmail(user *models.User) error {
	subject := fmt.Sprintf("%s - Your password was changed", m.cfg.AppName)
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your password was changed successfully. All active sessions were signed out.\n\n"+
			"If this wasn't you, contact support immediately.",
		user.Name)
	return m.send(user.Email, subject, body)
}

func (m *smtpMailer) SendNewDeviceLoginEmail(user *models.User, info NewDeviceInfo) error {
	subject := fmt.Sprintf("%s - New login detected", m.cfg.AppName)
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"We detected a login to your account from a new device:\n\n"+
			"Time: %s\n"+
			"Device: %s\n"+
			"Browser: %s\n"+
			"Operating system: %s\n"+
			"Location: %s\n\n"+
			"If this was you, no action is needed. Otherwise, reset your password now.",
		user.Name, info.Time.Format(time.RFC1123), info.Device, info.Browser, info.OS, info.Location)
	return m.send(user.Email, subject, body)
}

// logMailer is used in development and in deployments without SMTP
// credentials. It logs the intent instead of sending.
type logMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) Mailer {
	return &logMailer{log: log}
}

func (m *logMailer) SendVerificationEmail(user *models.User, token string) error {
	m.log.Info("mail: verification email",
		zap.String("to", user.Email),
		zap.String("token", token),
	)
	return nil
}

func (m *logMailer) SendPasswordRecoveryEmail(user *models.User, token string) error {
	m.log.Info("mail: password recovery email",
		zap.String("to", user.Email),
		zap.String("token", token),
	)
	return nil
}

func (m *logMailer) SendPasswordChangedEmail(user *models.User) error {
	m.log.Info("mail: password changed email", zap.String("to", user.Email))
	return nil
}

func (m *logMailer) SendNewDeviceLoginEmail(user *models.User, info NewDeviceInfo) error {
	m.log.Info("mail: new device login email",
		zap.String("to", user.Email),
		zap.String("browser", info.Browser),
		zap.String("os", info.OS),
		zap.String("device", info.Device),
	)
	return nil
}
