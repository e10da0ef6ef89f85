package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-registration-flow/internal/domain/entity"
	repo "github.com/oksasatya/go-registration-flow/internal/domain/repository"
	"github.com/oksasatya/go-registration-flow/pkg/helpers"
	"github.com/oksasatya/go-registration-flow/pkg/validation"
)

// PassphraseSender delivers a registration passphrase to an email address.
type PassphraseSender interface {
	SendPassphrase(ctx context.Context, username, email, passphrase string) error
}

type Service struct {
	Users        repo.UserRepository
	Pending      repo.PendingRegistrationRepository
	Sender       PassphraseSender
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string

	PasswordCost int
	PendingTTL   time.Duration // 0 never expires

	Now           func() time.Time
	NewPassphrase func() (string, error)
}

func NewService(users repo.UserRepository, pending repo.PendingRegistrationRepository, sender PassphraseSender, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string, passwordCost int, pendingTTL time.Duration) *Service {
	return &Service{
		Users:         users,
		Pending:       pending,
		Sender:        sender,
		Logger:        logger,
		ES:            es,
		ESUsersIndex:  esUsersIndex,
		PasswordCost:  passwordCost,
		PendingTTL:    pendingTTL,
		Now:           time.Now,
		NewPassphrase: helpers.GenPassphrase,
	}
}

type RegisterInput struct {
	Email    string
	Username string
	Phone    string
}

type existsFunc func(ctx context.Context, v string) (bool, error)

// taken reports whether v exists in either the users or the pending store.
func taken(ctx context.Context, v string, inUsers, inPending existsFunc) (bool, error) {
	ok, err := inUsers(ctx, v)
	if err != nil || ok {
		return ok, err
	}
	return inPending(ctx, v)
}

// Register validates in, checks username, email and phone for conflicts in that
// order, stores a PendingRegistration and sends its passphrase.
// A send failure leaves the pending record in place.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if !validation.ValidUsername(in.Username) {
		return ErrInvalidUsername
	}
	if strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Phone) == "" {
		return ErrMissingContact
	}

	if err := s.purgeExpired(ctx); err != nil {
		return err
	}

	checks := []struct {
		value     string
		inUsers   existsFunc
		inPending existsFunc
		conflict  error
	}{
		{in.Username, s.Users.ExistsByUsername, s.Pending.ExistsByUsername, ErrUsernameTaken},
		{in.Email, s.Users.ExistsByEmail, s.Pending.ExistsByEmail, ErrEmailTaken},
		{in.Phone, s.Users.ExistsByPhone, s.Pending.ExistsByPhone, ErrPhoneTaken},
	}
	for _, c := range checks {
		ok, err := taken(ctx, c.value, c.inUsers, c.inPending)
		if err != nil {
			return fmt.Errorf("uniqueness check: %w", err)
		}
		if ok {
			return c.conflict
		}
	}

	passphrase, err := s.NewPassphrase()
	if err != nil {
		return fmt.Errorf("generate passphrase: %w", err)
	}
	if s.Logger != nil {
		s.Logger.WithField("email", in.Email).Debugf("generated passphrase %s", passphrase)
	}

	p := &entity.PendingRegistration{
		Email:      in.Email,
		Username:   in.Username,
		Phone:      in.Phone,
		Passphrase: passphrase,
		CreatedAt:  s.Now().UTC(),
	}
	if err := s.Pending.Create(ctx, p); err != nil {
		if mapped := conflictError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("create pending registration: %w", err)
	}

	if err := s.Sender.SendPassphrase(ctx, in.Username, in.Email, passphrase); err != nil {
		return fmt.Errorf("send passphrase: %w", err)
	}
	registrationsStarted.Add(1)
	return nil
}

// purgeExpired drops pending registrations older than PendingTTL so their
// email, username and phone can be registered again.
func (s *Service) purgeExpired(ctx context.Context) error {
	if s.PendingTTL <= 0 {
		return nil
	}
	n, err := s.Pending.DeleteCreatedBefore(ctx, s.Now().Add(-s.PendingTTL))
	if err != nil {
		return fmt.Errorf("purge expired registrations: %w", err)
	}
	if n > 0 && s.Logger != nil {
		s.Logger.WithField("count", n).Debug("purged expired pending registrations")
	}
	return nil
}

// conflictError maps a unique violation from the store to the matching flow
// error. It returns nil for errors that are not conflicts.
func conflictError(err error) error {
	var ce *repo.ConflictError
	if !errors.As(err, &ce) {
		return nil
	}
	switch ce.Field {
	case repo.FieldUsername:
		return ErrUsernameTaken
	case repo.FieldPhone:
		return ErrPhoneTaken
	default:
		return ErrEmailTaken
	}
}

// Verify matches passphrase against the pending registration for email.
// Unknown, expired and mismatching records all yield ErrInvalidPassphrase.
func (s *Service) Verify(ctx context.Context, email, passphrase string) (*entity.PendingRegistration, error) {
	p, err := s.Pending.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidPassphrase
	}
	if err != nil {
		return nil, fmt.Errorf("load pending registration: %w", err)
	}
	if p.Expired(s.PendingTTL, s.Now()) {
		return nil, ErrInvalidPassphrase
	}
	if passphrase == "" || subtle.ConstantTimeCompare([]byte(p.Passphrase), []byte(passphrase)) != 1 {
		return nil, ErrInvalidPassphrase
	}
	registrationsVerified.Add(1)
	return p, nil
}

// SetPassword promotes the pending registration for email to a User with the
// given password, then removes the pending record. If a user already holds the
// email it returns ErrAccountExists; a username or phone held by another user
// yields ErrUsernameTaken or ErrPhoneTaken. Both drop the pending record.
func (s *Service) SetPassword(ctx context.Context, email, password string) (*entity.User, error) {
	if !validation.ValidPassword(password) {
		return nil, ErrWeakPassword
	}
	hash, err := helpers.HashPassword(password, s.PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p, err := s.Pending.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load pending registration: %w", err)
	}
	if p.Expired(s.PendingTTL, s.Now()) {
		return nil, ErrRegistrationNotFound
	}

	u := &entity.User{
		Email:        p.Email,
		Username:     p.Username,
		Phone:        p.Phone,
		PasswordHash: hash,
		CreatedAt:    s.Now().UTC(),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		mapped := conflictError(err)
		if mapped == nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		// a user already holds one of the fields, so this record can never be promoted
		if err := s.Pending.DeleteByEmail(ctx, email); err != nil {
			return nil, fmt.Errorf("delete pending registration: %w", err)
		}
		if errors.Is(mapped, ErrEmailTaken) {
			return nil, ErrAccountExists
		}
		return nil, mapped
	}
	if err := s.Pending.DeleteByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("delete pending registration: %w", err)
	}
	accountsActivated.Add(1)

	// Index latest user to Elasticsearch
	_ = s.indexUser(ctx, u)
	return u, nil
}

// Login checks username and password against the stored bcrypt hash.
func (s *Service) Login(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		loginsFailed.Add(1)
		return nil, ErrUserNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		loginsFailed.Add(1)
		return nil, ErrInvalidPassword
	}
	loginsSucceeded.Add(1)
	return u, nil
}
