package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/geo-visibility/internal/types"
)

// User represents a user account row
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	PasswordSet  bool      `json:"password_set" db:"password_set"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns the API view of the user.
func (u *User) Public() *types.User {
	return &types.User{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PasswordSet: u.PasswordSet,
		CreatedAt:   u.CreatedAt,
	}
}

// Default and maximum page sizes for ListDomainHistory.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)
