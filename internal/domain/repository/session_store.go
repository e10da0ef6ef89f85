package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
)

// SessionStore persists server-side session state keyed by session id.
type SessionStore interface {
	// Load returns ErrNotFound when no session exists for id.
	Load(ctx context.Context, id string) (*entity.Session, error)
	// Save writes s under s.ID. A zero ttl keeps the session until Destroy.
	Save(ctx context.Context, s *entity.Session, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
}
