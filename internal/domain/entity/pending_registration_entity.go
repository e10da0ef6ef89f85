package entity

import "time"

// PendingRegistration is an account awaiting email verification and a password.
type PendingRegistration struct {
	Email      string
	Username   string
	Phone      string
	Passphrase string
	CreatedAt  time.Time
}

// Expired reports whether the record is older than ttl. A zero ttl never expires.
func (p *PendingRegistration) Expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 || p.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(p.CreatedAt) > ttl
}
