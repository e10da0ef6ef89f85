package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-registration-flow/config"
	"github.com/oksasatya/go-registration-flow/internal/application"
	"github.com/oksasatya/go-registration-flow/internal/container"
	"github.com/oksasatya/go-registration-flow/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-registration-flow/internal/infrastructure/storage"
	"github.com/oksasatya/go-registration-flow/internal/interface/middleware"
	"github.com/oksasatya/go-registration-flow/internal/router"
	"github.com/oksasatya/go-registration-flow/pkg/helpers"
	"github.com/oksasatya/go-registration-flow/pkg/mailer"
	"github.com/oksasatya/go-registration-flow/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Credential store (mongo, postgres or memory)
	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open credential store: %v", err)
	}
	defer store.Close()

	// Redis backs sessions and rate limits
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := helpers.PingRedis(ctx, rdb); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetMongoDB(store.MongoDB)
	container.SetPGPool(store.PGPool)
	container.SetCredentialStore(store.Users, store.Pending)
	container.SetSessionStore(redisstore.NewSessionStore(rdb))
	container.SetJWT(helpers.NewJWTManager(cfg.SessionSecret, cfg.SessionTTL))
	container.SetCookies(helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure))

	sender, closeSender := buildSender(cfg, logger)
	defer closeSender()
	container.SetSender(sender)

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("failed to init elasticsearch client: %v", err)
		}
		if err := helpers.EnsureUsersIndex(ctx, es, cfg.ESUsersIndex); err != nil {
			helpers.LogError(logger, "elasticsearch users index unavailable", err, logrus.Fields{"index": cfg.ESUsersIndex})
		}
		container.SetES(es)
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.Env == "development" || cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		helpers.LogInfo(logger, "server starting", logrus.Fields{"port": cfg.Port, "store": store.Driver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// buildSender picks how passphrases leave the process: logged only, queued for
// cmd/email_worker, or sent through Mailgun within the request.
func buildSender(cfg *config.Config, logger *logrus.Logger) (application.PassphraseSender, func()) {
	noop := func() {}
	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; passphrases are only logged")
		return mailer.LogSender{Logger: logger}, noop
	}
	switch cfg.MailDelivery {
	case "direct":
		mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailFrom, "registration")
		return mailer.NewDirectSender(mg, cfg), noop
	default:
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		return mailer.NewQueueSender(pub, cfg), pub.Close
	}
}
