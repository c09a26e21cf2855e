package i

import (
	"errors"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/identity"
	"github.com/google/uuid"
)

var (
	ErrUsernameTaken = errors.New("username already taken")
)

// UserRepo defines the interface for user persistence operations.
type UserRepo interface {
	// Save inserts or updates a user in the repository.
	// If the user already exists, it updates the record. Otherwise, it creates a new one.
	// Returns ErrUsernameTaken if another user holds the username.
	Save(user *identity.User) error

	// ByID retrieves a user by their unique ID.
	// Returns an error if the user is not found or in case of an unexpected error.
	ByID(id uuid.UUID) (*identity.User, error)

	// ByUsername retrieves a user by their username.
	// Returns an error if the user is not found or in case of an unexpected error.
	ByUsername(username string) (*identity.User, error)
}

// LayoutRepo defines persistence for grid layouts.
type LayoutRepo interface {
	// Save inserts or replaces the layout with the same ID.
	Save(layout *domain.Layout) error

	// ByID retrieves a layout by its ID.
	// Returns ErrLayoutNotFound if no such layout exists.
	ByID(id uuid.UUID) (*domain.Layout, error)

	// Delete removes the layout. Deleting a missing layout is not an error.
	Delete(id uuid.UUID) error
}
