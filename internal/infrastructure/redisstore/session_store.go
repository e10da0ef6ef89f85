package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
)

// SessionStore keeps each session as a Redis hash under "session:<id>".
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(id string) string {
	return "session:" + id
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (s *SessionStore) Load(ctx context.Context, id string) (*entity.Session, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, repository.ErrNotFound
	}
	sess := &entity.Session{
		ID:       id,
		Stage:    entity.Stage(data["stage"]),
		Email:    data["email"],
		Username: data["username"],
	}
	if sess.Stage == entity.StageAuthenticated {
		sess.User = &entity.SessionUser{
			ID:       data["user_id"],
			Username: data["user_username"],
			Email:    data["user_email"],
		}
	}
	if sess.Stage == "" {
		sess.Stage = entity.StageAnonymous
	}
	return sess, nil
}

// Save replaces the hash so fields from an earlier stage do not linger.
func (s *SessionStore) Save(ctx context.Context, sess *entity.Session, ttl time.Duration) error {
	fields := map[string]any{
		"stage":      string(sess.Stage),
		"email":      sess.Email,
		"username":   sess.Username,
		"updated_at": nowRFC3339(),
	}
	if sess.User != nil {
		fields["user_id"] = sess.User.ID
		fields["user_username"] = sess.User.Username
		fields["user_email"] = sess.User.Email
	}
	key := sessionKey(sess.ID)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}

var _ repository.SessionStore = (*SessionStore)(nil)
