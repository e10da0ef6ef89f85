package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
)

// UserRepository defines the interface for active user records.
type UserRepository interface {
	// Create inserts u and fills u.ID. A unique violation returns a *ConflictError.
	Create(ctx context.Context, u *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}

// PendingRegistrationRepository defines the interface for unverified registrations.
type PendingRegistrationRepository interface {
	// Create inserts p. A unique violation returns a *ConflictError.
	Create(ctx context.Context, p *entity.PendingRegistration) error
	GetByEmail(ctx context.Context, email string) (*entity.PendingRegistration, error)
	DeleteByEmail(ctx context.Context, email string) error
	// DeleteCreatedBefore removes records created before cutoff and returns how many.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}
