// Package memory is an in-process credential store for local runs and tests.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
	"github.com/oksasatya/go-registration-flow/internal/domain/repository"
)

// Store holds users and pending registrations with the same unique
// constraints as the database-backed stores.
type Store struct {
	mu      sync.RWMutex
	users   map[string]entity.User // by id
	pending map[string]entity.PendingRegistration
	nextID  int
}

func NewStore() *Store {
	return &Store{
		users:   map[string]entity.User{},
		pending: map[string]entity.PendingRegistration{},
	}
}

// Users returns the UserRepository view of s.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Pending returns the PendingRegistrationRepository view of s.
func (s *Store) Pending() *PendingRegistrationRepository { return &PendingRegistrationRepository{s: s} }

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.users {
		switch {
		case x.Username == u.Username:
			return &repository.ConflictError{Field: repository.FieldUsername}
		case x.Email == u.Email:
			return &repository.ConflictError{Field: repository.FieldEmail}
		case x.Phone == u.Phone:
			return &repository.ConflictError{Field: repository.FieldPhone}
		}
	}
	r.s.nextID++
	u.ID = strconv.Itoa(r.s.nextID)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) exists(match func(entity.User) bool) bool {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return true
		}
	}
	return false
}

func (r *UserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	return r.exists(func(u entity.User) bool { return u.Username == username }), nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.exists(func(u entity.User) bool { return u.Email == email }), nil
}

func (r *UserRepository) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	return r.exists(func(u entity.User) bool { return u.Phone == phone }), nil
}

type PendingRegistrationRepository struct{ s *Store }

func (r *PendingRegistrationRepository) Create(_ context.Context, p *entity.PendingRegistration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.pending[p.Email]; ok {
		return &repository.ConflictError{Field: repository.FieldEmail}
	}
	for _, x := range r.s.pending {
		switch {
		case x.Username == p.Username:
			return &repository.ConflictError{Field: repository.FieldUsername}
		case x.Phone == p.Phone:
			return &repository.ConflictError{Field: repository.FieldPhone}
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	r.s.pending[p.Email] = *p
	return nil
}

func (r *PendingRegistrationRepository) GetByEmail(_ context.Context, email string) (*entity.PendingRegistration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.pending[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// DeleteByEmail is a no-op when no record exists.
func (r *PendingRegistrationRepository) DeleteByEmail(_ context.Context, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.pending, email)
	return nil
}

func (r *PendingRegistrationRepository) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for email, p := range r.s.pending {
		if p.CreatedAt.Before(cutoff) {
			delete(r.s.pending, email)
			n++
		}
	}
	return n, nil
}

func (r *PendingRegistrationRepository) exists(match func(entity.PendingRegistration) bool) bool {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.pending {
		if match(p) {
			return true
		}
	}
	return false
}

func (r *PendingRegistrationRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	return r.exists(func(p entity.PendingRegistration) bool { return p.Username == username }), nil
}

func (r *PendingRegistrationRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.exists(func(p entity.PendingRegistration) bool { return p.Email == email }), nil
}

func (r *PendingRegistrationRepository) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	return r.exists(func(p entity.PendingRegistration) bool { return p.Phone == phone }), nil
}

var (
	_ repository.UserRepository                = (*UserRepository)(nil)
	_ repository.PendingRegistrationRepository = (*PendingRegistrationRepository)(nil)
)
