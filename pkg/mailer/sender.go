package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-registration-flow/config"
	tpl "github.com/oksasatya/go-registration-flow/pkg/mailer/templates"
)

// Publisher enqueues a JSON message.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

func passphraseData(cfg *config.Config, username, email, passphrase string) map[string]any {
	return tpl.NewPassphraseData(cfg, username, email, passphrase, tpl.WithTime(time.Now()))
}

// QueueSender enqueues passphrase emails for cmd/email_worker.
type QueueSender struct {
	Pub Publisher
	Cfg *config.Config
}

func NewQueueSender(pub Publisher, cfg *config.Config) *QueueSender {
	return &QueueSender{Pub: pub, Cfg: cfg}
}

func (s *QueueSender) SendPassphrase(ctx context.Context, username, email, passphrase string) error {
	job := EmailJob{
		To:       email,
		Template: tpl.Passphrase,
		Data:     passphraseData(s.Cfg, username, email, passphrase),
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		return fmt.Errorf("enqueue passphrase email: %w", err)
	}
	return nil
}

// DirectSender renders and sends passphrase emails within the request.
type DirectSender struct {
	Transport Transport
	Cfg       *config.Config
}

func NewDirectSender(t Transport, cfg *config.Config) *DirectSender {
	return &DirectSender{Transport: t, Cfg: cfg}
}

func (s *DirectSender) SendPassphrase(ctx context.Context, username, email, passphrase string) error {
	subject, text, html, err := tpl.Render(tpl.Passphrase, passphraseData(s.Cfg, username, email, passphrase))
	if err != nil {
		return err
	}
	if err := s.Transport.Send(ctx, email, subject, text, html); err != nil {
		return fmt.Errorf("send passphrase email: %w", err)
	}
	return nil
}

// LogSender only logs the passphrase; used when MAIL_SEND_ENABLED=false.
type LogSender struct {
	Logger *logrus.Logger
}

func (s LogSender) SendPassphrase(_ context.Context, username, email, passphrase string) error {
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"email": email, "username": username, "passphrase": passphrase}).
			Info("mail sending disabled; passphrase not delivered")
	}
	return nil
}
