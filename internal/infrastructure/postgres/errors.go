package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
)

const uniqueViolation = "23505"

// mapWriteError turns a unique violation into a *repository.ConflictError.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	return &repository.ConflictError{Field: constraintField(pgErr.ConstraintName)}
}

// constraintField maps "<table>_<field>_key" to field.
func constraintField(name string) string {
	name = strings.TrimSuffix(name, "_key")
	i := strings.LastIndex(name, "_")
	if i < 0 {
		return ""
	}
	switch f := name[i+1:]; f {
	case repository.FieldEmail, repository.FieldUsername, repository.FieldPhone:
		return f
	}
	return ""
}

func mapReadError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}
