package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun sends rendered emails through the Mailgun API. It implements Transport.
type Mailgun struct {
	Sender string
	Tags   []string
	client *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string, tags ...string) *Mailgun {
	return &Mailgun{Sender: sender, Tags: tags, client: mg.NewMailgun(domain, apiKey)}
}

// Send delivers one message; html is optional.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	if to == "" {
		return errors.New("mailgun: empty recipient")
	}
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	for _, tag := range m.Tags {
		if err := msg.AddTag(tag); err != nil {
			return err
		}
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}
