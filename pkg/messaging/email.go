package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/JoeSaf/Allika-sub000/config"
)

const (
	defaultEmailSubject = "You're invited"
	smtpTimeout         = 15 * time.Second
)

// deliverFunc hands a composed message to the SMTP relay; swapped in tests.
type deliverFunc func(ctx context.Context, m *mail.Msg) error

// EmailSender delivers plain-text mail over SMTP.
type EmailSender struct {
	from    string
	deliver deliverFunc
	logger  *zap.Logger
}

func NewEmailSender(cfg *config.EmailConfig, logger *zap.Logger) *EmailSender {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(smtpTimeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	host := cfg.SMTPHost
	return &EmailSender{
		from: cfg.From,
		deliver: func(ctx context.Context, m *mail.Msg) error {
			client, err := mail.NewClient(host, opts...)
			if err != nil {
				return err
			}
			return client.DialAndSendWithContext(ctx, m)
		},
		logger: logger,
	}
}

func (s *EmailSender) Channel() string { return ChannelEmail }

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.buildMessage(msg)
	if err != nil {
		return fmt.Errorf("compose email: %w", err)
	}
	if err := s.deliver(ctx, m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Debug("email sent", zap.String("to", msg.To))
	return nil
}

// buildMessage composes the MIME message. Header values are encoded by
// go-mail; line breaks in the subject are folded to spaces first.
func (s *EmailSender) buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}

	subject := singleLine(msg.Subject)
	if subject == "" {
		subject = defaultEmailSubject
	}
	m.Subject(subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

func singleLine(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(s)
	return strings.TrimSpace(s)
}
