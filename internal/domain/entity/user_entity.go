package entity

import (
	"time"
)

// User is an active account, created once from a PendingRegistration.
// PasswordHash holds a bcrypt hash; identity fields are immutable.
type User struct {
	ID           string
	Email        string
	Username     string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}
