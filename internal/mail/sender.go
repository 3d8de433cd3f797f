package mail

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	gomail "gopkg.in/mail.v2"

	"github.com/nurpe/seminar-quote/internal/config"
	"github.com/nurpe/seminar-quote/internal/model"
)

type Sender interface {
	Send(ctx context.Context, msg model.Message) error
}

// NewSender returns an SMTP sender, or a logging one when no SMTP host is
// configured.
func NewSender(cfg config.MailConfig, log zerolog.Logger) Sender {
	if cfg.Host == "" {
		return NewLogSender(log)
	}
	return NewSMTPSender(cfg)
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = 15 * time.Second
	return &SMTPSender{dialer: dialer, from: cfg.From}
}

func (s *SMTPSender) Send(ctx context.Context, msg model.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("message %q has no recipients", msg.Subject)
	}
	return s.dialer.DialAndSend(buildMessage(s.from, msg))
}

func buildMessage(from string, msg model.Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To...)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	for _, attachment := range msg.Attachments {
		content := attachment.Content
		m.Attach(attachment.FileName,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {attachment.ContentType}}),
		)
	}
	return m
}

// LogSender only logs outgoing messages.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log.With().Str("component", "mail").Logger()}
}

func (s *LogSender) Send(_ context.Context, msg model.Message) error {
	s.log.Info().
		Strs("to", msg.To).
		Str("reply_to", msg.ReplyTo).
		Str("subject", msg.Subject).
		Int("attachments", len(msg.Attachments)).
		Msg("smtp not configured, message not sent")
	return nil
}
