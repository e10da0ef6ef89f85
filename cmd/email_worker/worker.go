package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-registration-flow/pkg/helpers"
	"github.com/oksasatya/go-registration-flow/pkg/mailer"
	mailtpl "github.com/oksasatya/go-registration-flow/pkg/mailer/templates"
)

// errBadJob marks messages that can never be delivered; they are not requeued.
var errBadJob = errors.New("bad email job")

// process decodes one queued EmailJob, renders it and sends it through t.
func process(ctx context.Context, body []byte, t mailer.Transport) error {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %v", errBadJob, err)
	}
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", errBadJob)
	}
	helpers.EnsureRecipientAndEmail(&job)

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, tx, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", errBadJob, job.Template, err)
		}
		subject, text, html = s, tx, h
	}
	if subject == "" || (text == "" && html == "") {
		return fmt.Errorf("%w: empty message", errBadJob)
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return t.Send(c, job.To, subject, text, html)
}

// consume handles deliveries until msgs is closed. Bad jobs are dropped,
// send failures requeued.
func consume(ctx context.Context, msgs <-chan amqp.Delivery, t mailer.Transport, logger *logrus.Logger) {
	for msg := range msgs {
		err := process(ctx, msg.Body, t)
		switch {
		case err == nil:
			_ = msg.Ack(false)
		case errors.Is(err, errBadJob):
			helpers.LogError(logger, "dropping email job", err, nil)
			_ = msg.Nack(false, false)
		default:
			helpers.LogError(logger, "send failed, requeueing", err, logrus.Fields{"delivery_tag": msg.DeliveryTag})
			_ = msg.Nack(false, true)
		}
	}
}
