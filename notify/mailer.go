// Package notify sends transactional email and phone verification codes
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/mail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers HTML email over SMTP
type SMTPMailer struct {
	dialer *mail.Dialer
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.Timeout = 20 * time.Second
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{dialer: d, from: from}
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, to, name string) error {
	return m.send(ctx, to, welcomeMessage(name))
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	return m.send(ctx, to, passwordResetMessage(resetURL))
}

func (m *SMTPMailer) SendResetSuccess(ctx context.Context, to string) error {
	return m.send(ctx, to, resetSuccessMessage())
}

func (m *SMTPMailer) send(ctx context.Context, to string, msg message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := msg.render()
	if err != nil {
		return fmt.Errorf("render %q: %w", msg.Subject, err)
	}

	em := mail.NewMessage()
	em.SetHeader("From", m.from)
	em.SetHeader("To", to)
	em.SetHeader("Subject", msg.Subject)
	em.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(em); err != nil {
		return fmt.Errorf("send %q to %s: %w", msg.Subject, to, err)
	}
	return nil
}

// LogMailer writes email to the log instead of sending it
type LogMailer struct {
	log logrus.FieldLogger
}

func NewLogMailer(log logrus.FieldLogger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendWelcome(_ context.Context, to, name string) error {
	return m.record(to, welcomeMessage(name))
}

func (m *LogMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	return m.record(to, passwordResetMessage(resetURL))
}

func (m *LogMailer) SendResetSuccess(_ context.Context, to string) error {
	return m.record(to, resetSuccessMessage())
}

func (m *LogMailer) record(to string, msg message) error {
	if _, err := msg.render(); err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{
		"to":      to,
		"subject": msg.Subject,
		"link":    msg.Link,
	}).Info("email not sent (log mailer)")
	return nil
}
