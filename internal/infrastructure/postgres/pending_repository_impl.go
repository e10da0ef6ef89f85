package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
)

type PendingRegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewPendingRegistrationRepository(pool *pgxpool.Pool) *PendingRegistrationRepository {
	return &PendingRegistrationRepository{pool: pool}
}

func (r *PendingRegistrationRepository) Create(ctx context.Context, p *entity.PendingRegistration) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO pendingregistrations (email, username, phone, passphrase)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, p.Email, p.Username, p.Phone, p.Passphrase)

	return mapWriteError(row.Scan(&p.CreatedAt))
}

func (r *PendingRegistrationRepository) GetByEmail(ctx context.Context, email string) (*entity.PendingRegistration, error) {
	p := &entity.PendingRegistration{}

	row := r.pool.QueryRow(ctx, `
		SELECT email, username, phone, passphrase, created_at
		FROM pendingregistrations
		WHERE email = $1
	`, email)

	if err := row.Scan(&p.Email, &p.Username, &p.Phone, &p.Passphrase, &p.CreatedAt); err != nil {
		return nil, mapReadError(err)
	}
	return p, nil
}

func (r *PendingRegistrationRepository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM pendingregistrations WHERE email = $1`, email)
	return err
}

func (r *PendingRegistrationRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pendingregistrations WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PendingRegistrationRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return exists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM pendingregistrations WHERE username = $1)`, username)
}

func (r *PendingRegistrationRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM pendingregistrations WHERE email = $1)`, email)
}

func (r *PendingRegistrationRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return exists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM pendingregistrations WHERE phone = $1)`, phone)
}

var _ repository.PendingRegistrationRepository = (*PendingRegistrationRepository)(nil)
