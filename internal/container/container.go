package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/go-registration-flow/config"
	"github.com/oksasatya/go-registration-flow/internal/application"
	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
	"github.com/oksasatya/go-registration-flow/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	mongoDB     *mongo.Database
	redisClient *redis.Client

	users   repository.UserRepository
	pending repository.PendingRegistrationRepository
	sess    repository.SessionStore

	jwtManager *helpers.JWTManager
	cookies    *helpers.Manager

	sender   application.PassphraseSender
	esClient *elasticsearch.Client
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return logrus.StandardLogger()
}
func SetPGPool(p *pgxpool.Pool)     { pgPool = p }
func GetPGPool() *pgxpool.Pool      { return pgPool }
func SetMongoDB(db *mongo.Database) { mongoDB = db }
func GetMongoDB() *mongo.Database   { return mongoDB }
func SetRedis(r *redis.Client)      { redisClient = r }
func GetRedis() *redis.Client       { return redisClient }
func SetJWT(m *helpers.JWTManager)  { jwtManager = m }
func GetJWT() *helpers.JWTManager   { return jwtManager }
func SetCookies(m *helpers.Manager) { cookies = m }
func GetCookies() *helpers.Manager  { return cookies }

// SetCredentialStore installs the user and pending-registration repositories
// of the configured STORE_DRIVER.
func SetCredentialStore(u repository.UserRepository, p repository.PendingRegistrationRepository) {
	users, pending = u, p
}
func GetUserRepository() repository.UserRepository                   { return users }
func GetPendingRepository() repository.PendingRegistrationRepository { return pending }
func SetSessionStore(s repository.SessionStore)                      { sess = s }
func GetSessionStore() repository.SessionStore                       { return sess }

func SetSender(s application.PassphraseSender) { sender = s }
func GetSender() application.PassphraseSender  { return sender }
func SetES(c *elasticsearch.Client)            { esClient = c }
func GetES() *elasticsearch.Client             { return esClient }
