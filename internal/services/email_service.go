package services

import (
	"fmt"
	"strconv"

	gomail "gopkg.in/gomail.v2"

	"github.com/tejgit8102/expensemate-backend/internal/config"
	"github.com/tejgit8102/expensemate-backend/internal/logger"
)

// smtpMailer delivers mail through the configured SMTP relay.
type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a Mailer backed by the SMTP settings in cfg.
func NewSMTPMailer(cfg *config.Config) Mailer {
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		logger.Get().Warnw("invalid SMTP port, falling back to 587", "port", cfg.SMTPPort)
		port = 587
	}

	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.MailFrom,
	}
}

// SendOTP mails a password-reset one-time password to the recipient.
func (m *smtpMailer) SendOTP(to, otp string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your password reset code")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your one-time password is %s. It expires in 10 minutes.\n\nIf you did not request a password reset, you can ignore this email.",
		otp,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

// NopMailer discards all mail. Used when SMTP is not configured and in tests.
type NopMailer struct{}

func (NopMailer) SendOTP(to, otp string) error {
	logger.Get().Infow("mail delivery disabled, dropping OTP mail", "email", to)
	return nil
}
