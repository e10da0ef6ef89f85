package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, phone, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at
	`, u.Email, u.Username, u.Phone, u.PasswordHash)

	return mapWriteError(row.Scan(&u.ID, &u.CreatedAt))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u := &entity.User{}

	row := r.pool.QueryRow(ctx, `
		SELECT id::text, email, username, phone, password_hash, created_at
		FROM users
		WHERE username = $1
	`, username)

	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Phone, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, mapReadError(err)
	}

	return u, nil
}

// exists runs query, which must select a single boolean.
func exists(ctx context.Context, pool *pgxpool.Pool, query, arg string) (bool, error) {
	var ok bool
	if err := pool.QueryRow(ctx, query, arg).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return exists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return exists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM users WHERE phone = $1)`, phone)
}

var _ repository.UserRepository = (*UserRepository)(nil)
