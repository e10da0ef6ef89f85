package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
)

func TestPendingUniqueness(t *testing.T) {
	ctx := context.Background()
	pending := NewStore().Pending()

	require.NoError(t, pending.Create(ctx, &entity.PendingRegistration{Email: "a@x.io", Username: "a", Phone: "1"}))

	err := pending.Create(ctx, &entity.PendingRegistration{Email: "a@x.io", Username: "b", Phone: "2"})
	var ce *repository.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, repository.FieldEmail, ce.Field)
	assert.ErrorIs(t, err, repository.ErrConflict)

	err = pending.Create(ctx, &entity.PendingRegistration{Email: "b@x.io", Username: "a", Phone: "2"})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, repository.FieldUsername, ce.Field)

	err = pending.Create(ctx, &entity.PendingRegistration{Email: "b@x.io", Username: "b", Phone: "1"})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, repository.FieldPhone, ce.Field)
}

func TestPendingGetDelete(t *testing.T) {
	ctx := context.Background()
	pending := NewStore().Pending()

	_, err := pending.GetByEmail(ctx, "a@x.io")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, pending.Create(ctx, &entity.PendingRegistration{Email: "a@x.io", Username: "a", Phone: "1", Passphrase: "p"}))
	p, err := pending.GetByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "p", p.Passphrase)
	assert.False(t, p.CreatedAt.IsZero())

	require.NoError(t, pending.DeleteByEmail(ctx, "a@x.io"))
	require.NoError(t, pending.DeleteByEmail(ctx, "a@x.io"))
	ok, err := pending.ExistsByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPendingDeleteCreatedBefore(t *testing.T) {
	ctx := context.Background()
	pending := NewStore().Pending()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, pending.Create(ctx, &entity.PendingRegistration{Email: "old@x.io", Username: "old", Phone: "1", CreatedAt: t0}))
	require.NoError(t, pending.Create(ctx, &entity.PendingRegistration{Email: "new@x.io", Username: "new", Phone: "2", CreatedAt: t0.Add(time.Hour)}))

	n, err := pending.DeleteCreatedBefore(ctx, t0.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, _ := pending.ExistsByUsername(ctx, "old")
	assert.False(t, ok)
	ok, _ = pending.ExistsByUsername(ctx, "new")
	assert.True(t, ok)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	u := &entity.User{Email: "a@x.io", Username: "a", Phone: "1", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	got, err := users.GetByUsername(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.GetByUsername(ctx, "zz")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ok, _ := users.ExistsByPhone(ctx, "1")
	assert.True(t, ok)
	ok, _ = users.ExistsByEmail(ctx, "nobody@x.io")
	assert.False(t, ok)

	err = users.Create(ctx, &entity.User{Email: "b@x.io", Username: "a", Phone: "2"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}
