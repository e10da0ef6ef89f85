package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/oksasatya/go-registration-flow/pkg/helpers"
	"github.com/oksasatya/go-registration-flow/pkg/response"
)

// PageHandler serves the static pages and the health probe. Nil backends are
// skipped by the probe.
type PageHandler struct {
	Redis *redis.Client
	Mongo *mongo.Database
	PG    *pgxpool.Pool
}

func NewPageHandler(rdb *redis.Client, mdb *mongo.Database, pg *pgxpool.Pool) *PageHandler {
	return &PageHandler{Redis: rdb, Mongo: mdb, PG: pg}
}

func (h *PageHandler) Home(c *gin.Context) {
	page(c, http.StatusOK, "home", gin.H{"title": "Home"})
}

func (h *PageHandler) Contact(c *gin.Context) {
	page(c, http.StatusOK, "contact", gin.H{"title": "Contact"})
}

func (h *PageHandler) Health(c *gin.Context) {
	if name, err := h.check(c.Request.Context()); err != nil {
		response.Error[any](c, http.StatusServiceUnavailable, name+" unavailable", err.Error()).Write(c)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"}, "healthy", nil).Write(c)
}

func (h *PageHandler) check(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if h.Redis != nil {
		if err := helpers.PingRedis(ctx, h.Redis); err != nil {
			return "session store", err
		}
	}
	if h.Mongo != nil {
		if err := h.Mongo.Client().Ping(ctx, readpref.Primary()); err != nil {
			return "credential store", err
		}
	}
	if h.PG != nil {
		if err := h.PG.Ping(ctx); err != nil {
			return "credential store", err
		}
	}
	return "", nil
}
