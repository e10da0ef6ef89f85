package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
)

func newSessionStoreTest(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSessionStore(rdb), mr
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store, _ := newSessionStoreTest(t)
	ctx := context.Background()

	sess := &entity.Session{ID: "sid-1"}
	sess.PendingPassword("a@example.com", "alice")
	require.NoError(t, store.Save(ctx, sess, 0))

	got, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StagePendingPassword, got.Stage)
	assert.Equal(t, "a@example.com", got.Email)
	assert.Equal(t, "alice", got.Username)
	assert.Nil(t, got.User)

	sess.Authenticate(entity.SessionUser{ID: "u1", Username: "alice", Email: "a@example.com"})
	require.NoError(t, store.Save(ctx, sess, 0))

	got, err = store.Load(ctx, "sid-1")
	require.NoError(t, err)
	require.True(t, got.IsAuthenticated())
	assert.Equal(t, "u1", got.User.ID)
	assert.Empty(t, got.Email, "stage fields must be replaced")
}

func TestSessionStore_MissingAndDestroy(t *testing.T) {
	store, _ := newSessionStoreTest(t)
	ctx := context.Background()

	_, err := store.Load(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	sess := &entity.Session{ID: "sid-2"}
	sess.Registering("b@example.com")
	require.NoError(t, store.Save(ctx, sess, 0))
	require.NoError(t, store.Destroy(ctx, "sid-2"))
	require.NoError(t, store.Destroy(ctx, "sid-2"))

	_, err = store.Load(ctx, "sid-2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionStore_TTL(t *testing.T) {
	store, mr := newSessionStoreTest(t)
	ctx := context.Background()

	sess := &entity.Session{ID: "sid-3"}
	sess.Registering("c@example.com")
	require.NoError(t, store.Save(ctx, sess, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL(sessionKey("sid-3")))

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, "sid-3")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionStore_ConnectionError(t *testing.T) {
	store, mr := newSessionStoreTest(t)
	mr.Close()

	_, err := store.Load(context.Background(), "sid")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
	assert.Error(t, store.Destroy(context.Background(), "sid"))
}
