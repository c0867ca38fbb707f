package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

// ReanalyzeRequest is the body of POST /history/reanalyze.
type ReanalyzeRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

// RegisterRequest creates an account with password authentication.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User is the public view of an account (never carries the password hash).
type User struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PasswordSet bool      `json:"passwordSet"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// DomainHistory indexes one completed analysis for a user and normalized URL.
type DomainHistory struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"userId"`
	Domain            string    `json:"domain"`
	NormalizedURL     string    `json:"normalizedUrl"`
	AIVisibilityScore int       `json:"aiVisibilityScore"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
}

// HistoryStatusCompleted is the only status written by the pipeline.
const HistoryStatusCompleted = "completed"

// HistoryFilter narrows a history listing.
type HistoryFilter struct {
	Search string
	Limit  int
	Offset int
}

// Validate validates the request fields.
func (r *AnalyzeRequest) Validate() error { return validate.Struct(r) }

// Validate validates the request fields.
func (r *ReanalyzeRequest) Validate() error { return validate.Struct(r) }

// Validate validates the request fields.
func (r *RegisterRequest) Validate() error { return validate.Struct(r) }

// Validate validates the request fields.
func (r *LoginRequest) Validate() error { return validate.Struct(r) }
