package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned by user lookups when no staff member matches.
var ErrUserNotFound = errors.New("user not found")

// User is a staff member who can sign in to the POS.
type User struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
