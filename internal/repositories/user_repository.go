package repositories

import (
	"context"
	"errors"

	"prospects/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert collides with a unique key.
	ErrDuplicate = errors.New("record already exists")
)

// Field names a user attribute that can be looked up.
type Field string

const (
	FieldEmail    Field = "email"
	FieldUsername Field = "username"
)

func (f Field) valid() bool {
	return f == FieldEmail || f == FieldUsername
}

// UserRepository defines the interface for account data access.
type UserRepository interface {
	// FindByField returns the first user whose field equals value.
	FindByField(ctx context.Context, field Field, value string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	// UsernameExists reports whether a username reservation exists.
	UsernameExists(ctx context.Context, username string) (bool, error)
	// CreateAccount writes the user, profile and username reservation as one
	// unit. It never overwrites an existing record.
	CreateAccount(ctx context.Context, account *models.Account) error
}
