package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-registration-flow/config"
	"github.com/oksasatya/go-registration-flow/pkg/helpers"
	"github.com/oksasatya/go-registration-flow/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env, cfg.LogLevel)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailFrom == "" {
		logger.Fatal("Mailgun not configured")
	}

	// Prefetch for fair dispatch
	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16)
	if err != nil {
		logger.Fatalf("amqp: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailFrom, "registration")
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		consume(ctx, msgs, mg, logger)
		close(done)
	}()

	helpers.LogInfo(logger, "email worker listening", logrus.Fields{"queue": cfg.RabbitMQEmailQueue})
	<-stop
	logger.Info("shutting down...")
	if err := consumer.Stop(); err != nil {
		helpers.LogError(logger, "cancel consumer", err, nil)
		return
	}
	select {
	case <-done:
	case <-time.After(20 * time.Second):
		logger.Warn("in-flight email jobs did not finish in time")
	}
}
