// Package notify delivers correction passcodes to operators.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPSender sends plain-text mail through an SMTP relay.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *zap.Logger
	dial   func(ctx context.Context, msg *mail.Msg) error
}

func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) *SMTPSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	s := &SMTPSender{cfg: cfg, logger: logger}
	s.dial = s.dialAndSend
	return s
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg, err := s.message(to, subject, body)
	if err != nil {
		return err
	}
	if err := s.dial(ctx, msg); err != nil {
		s.logger.Warn("smtp send failed", zap.String("to", to), zap.String("host", s.cfg.Host), zap.Error(err))
		return fmt.Errorf("send mail: %w", err)
	}
	s.logger.Info("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (s *SMTPSender) message(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func (s *SMTPSender) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(s.cfg.Timeout),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("new smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// LogSender writes messages to the logger instead of delivering them. Used
// when no SMTP relay is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("notification",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
