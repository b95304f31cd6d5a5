package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/goal-tracker-services/common/logger"
)

// ============================================================
// CONFIGURATION & SERVICE
// ============================================================

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func DefaultConfig() *Config {
	return &Config{
		Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		Port:     getEnv("SMTP_PORT", "587"),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "noreply@goaltracker.app"),
		FromName: getEnv("SMTP_FROM_NAME", "Goal Tracker"),
	}
}

// EmailService sends transactional mail. Without SMTP credentials it runs
// in dev mode: messages are logged and dropped instead of sent, so local
// environments never need a mail server.
type EmailService struct {
	config  *Config
	devMode bool
}

func NewEmailService(config *Config) *EmailService {
	if config == nil {
		config = DefaultConfig()
	}
	devMode := config.Username == "" || config.Password == ""
	return &EmailService{
		config:  config,
		devMode: devMode,
	}
}

// ============================================================
// DATA STRUCTURES
// ============================================================

type EmailMessage struct {
	To          []string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

type Attachment struct {
	Filename string
	Data     []byte
	MimeType string
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ============================================================
// SENDING ENGINE
// ============================================================

func (s *EmailService) Send(msg EmailMessage) error {
	if s.devMode {
		logger.Info("email skipped (dev mode, no SMTP credentials)",
			"to", strings.Join(msg.To, ", "),
			"subject", msg.Subject,
		)
		return nil
	}
	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	var body bytes.Buffer
	boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())
	body.WriteString(fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%s\r\n\r\n", s.config.FromName, s.config.From, strings.Join(msg.To, ", "), msg.Subject, boundary))
	body.WriteString(fmt.Sprintf("--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, msg.HTMLBody))
	for _, att := range msg.Attachments {
		body.WriteString(fmt.Sprintf("--%s\r\nContent-Type: %s; name=\"%s\"\r\nContent-Transfer-Encoding: base64\r\nContent-Disposition: attachment; filename=\"%s\"\r\n\r\n%s\r\n", boundary, att.MimeType, att.Filename, att.Filename, base64.StdEncoding.EncodeToString(att.Data)))
	}
	body.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return smtp.SendMail(addr, auth, s.config.From, msg.To, body.Bytes())
}

// ============================================================
// TEMPLATE BUILDERS
// ============================================================

// SendPasswordRecoveryEmail sends the reset link to a user who asked to
// recover their account. The link embeds the single-use reset token.
func (s *EmailService) SendPasswordRecoveryEmail(to, username, resetLink string) error {
	html := fmt.Sprintf(`<!DOCTYPE html><html><body style="margin:0;padding:0;font-family:Arial,sans-serif;background-color:#f5f5f5;">
    <table width="100%%" border="0" cellspacing="0" cellpadding="0" bgcolor="#f5f5f5"><tr><td align="center" style="padding:40px 0;">
    <table width="600" border="0" cellspacing="0" cellpadding="0" bgcolor="#ffffff" style="border-radius:16px;overflow:hidden;box-shadow:0 4px 15px rgba(0,0,0,0.1);">
    <tr><td height="8" bgcolor="#2E7D32" style="line-height:8px;font-size:8px;">&nbsp;</td></tr>
    <tr><td align="left" style="padding:35px 40px;"><h1 style="margin:0;color:#2E7D32;font-size:24px;font-weight:bold;letter-spacing:1px;">GOAL TRACKER</h1></td></tr>
    <tr><td style="padding:10px 40px 40px 40px;"><h2 style="color:#000000;margin:0 0 10px 0;">PASSWORD RESET</h2>
    <p>Hello <strong>%s</strong>, we received a request to reset your password. Click the button below to choose a new one. The link expires in 1 hour and can only be used once.</p>
    <table border="0" cellspacing="0" cellpadding="0" style="margin:25px 0;"><tr><td bgcolor="#2E7D32" style="border-radius:50px;padding:15px 35px;"><a href="%s" style="color:#ffffff;text-decoration:none;font-weight:bold;">RESET PASSWORD</a></td></tr></table>
    <p style="color:#999999;font-size:13px;">If you did not request this, please ignore this email. Your password will not change.</p>
    </td></tr><tr><td align="center" bgcolor="#2c2c2c" style="padding:20px;color:#999999;font-size:12px;">© 2026 Goal Tracker. All rights reserved.</td></tr></table></td></tr></table></body></html>`,
		username, resetLink)
	return s.Send(EmailMessage{To: []string{to}, Subject: "Goal Tracker - Password Reset", HTMLBody: html})
}

// SendPasswordResetConfirmation notifies a user that their password was
// changed through the recovery flow.
func (s *EmailService) SendPasswordResetConfirmation(to, username string) error {
	html := fmt.Sprintf(`<!DOCTYPE html><html><body style="margin:0;padding:0;font-family:Arial,sans-serif;background-color:#f5f5f5;">
    <table width="100%%" border="0" cellspacing="0" cellpadding="0" bgcolor="#f5f5f5"><tr><td align="center" style="padding:40px 0;">
    <table width="600" border="0" cellspacing="0" cellpadding="0" bgcolor="#ffffff" style="border-radius:16px;overflow:hidden;box-shadow:0 4px 15px rgba(0,0,0,0.1);">
    <tr><td height="8" bgcolor="#2E7D32" style="line-height:8px;font-size:8px;">&nbsp;</td></tr>
    <tr><td align="left" style="padding:35px 40px;"><h1 style="margin:0;color:#2E7D32;font-size:24px;font-weight:bold;letter-spacing:1px;">GOAL TRACKER</h1></td></tr>
    <tr><td style="padding:10px 40px 40px 40px;"><h2 style="color:#000000;margin:0 0 10px 0;">PASSWORD CHANGED</h2>
    <p>Hello <strong>%s</strong>, your password was just changed. You can now sign in with your new password.</p>
    <p style="color:#999999;font-size:13px;">If you did not make this change, please contact support immediately.</p>
    </td></tr><tr><td align="center" bgcolor="#2c2c2c" style="padding:20px;color:#999999;font-size:12px;">© 2026 Goal Tracker. All rights reserved.</td></tr></table></td></tr></table></body></html>`,
		username)
	return s.Send(EmailMessage{To: []string{to}, Subject: "Goal Tracker - Your Password Was Changed", HTMLBody: html})
}

// SendWelcomeEmail greets a newly registered user.
func (s *EmailService) SendWelcomeEmail(to, username string) error {
	html := fmt.Sprintf(`<!DOCTYPE html><html><body style="margin:0;padding:0;font-family:Arial,sans-serif;background-color:#f5f5f5;">
    <table width="100%%" border="0" cellspacing="0" cellpadding="0" bgcolor="#f5f5f5"><tr><td align="center" style="padding:40px 0;">
    <table width="600" border="0" cellspacing="0" cellpadding="0" bgcolor="#ffffff" style="border-radius:16px;overflow:hidden;box-shadow:0 4px 15px rgba(0,0,0,0.1);">
    <tr><td height="8" bgcolor="#2E7D32" style="line-height:8px;font-size:8px;">&nbsp;</td></tr>
    <tr><td align="left" style="padding:35px 40px;"><h1 style="margin:0;color:#2E7D32;font-size:24px;font-weight:bold;letter-spacing:1px;">GOAL TRACKER</h1></td></tr>
    <tr><td style="padding:10px 40px 40px 40px;"><h2 style="color:#000000;margin:0 0 10px 0;">WELCOME</h2>
    <p>Hello <strong>%s</strong>, your account is ready. Start by creating your first goal and breaking it down into steps you can check off.</p>
    </td></tr><tr><td align="center" bgcolor="#2c2c2c" style="padding:20px;color:#999999;font-size:12px;">© 2026 Goal Tracker. All rights reserved.</td></tr></table></td></tr></table></body></html>`,
		username)
	return s.Send(EmailMessage{To: []string{to}, Subject: "Welcome to Goal Tracker", HTMLBody: html})
}
