// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/todosponen/internal/models"
)

var (
	// ErrNotFound is wrapped by lookups that match no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is wrapped when a unique key (invite code, email,
	// circle+user membership) is already taken.
	ErrConflict = errors.New("conflict")
)

// Queries is the set of reads and writes available both directly on a Store
// and inside a transaction.
type Queries interface {
	// CreateCircle persists a new circle. ID and timestamps are filled in when empty.
	CreateCircle(ctx context.Context, circle *models.Circle) error
	GetCircle(ctx context.Context, circleID string) (*models.Circle, error)
	GetCircleByInviteCode(ctx context.Context, code string) (*models.Circle, error)
	UpdateCircle(ctx context.Context, circle *models.Circle) error
	// ListCirclesForUser returns circles the user organizes or holds a live membership in.
	ListCirclesForUser(ctx context.Context, userID string) ([]*models.Circle, error)

	// CreateMembership persists a new membership. A second membership for the
	// same (circle, user) fails with ErrConflict.
	CreateMembership(ctx context.Context, membership *models.Membership) error
	GetMembership(ctx context.Context, membershipID string) (*models.Membership, error)
	GetMembershipByUser(ctx context.Context, circleID, userID string) (*models.Membership, error)
	// ListMemberships returns all memberships of a circle ordered by turn, then join time.
	ListMemberships(ctx context.Context, circleID string) ([]models.Membership, error)
	UpdateMembership(ctx context.Context, membership *models.Membership) error
	DeleteMembership(ctx context.Context, membershipID string) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	// GetUsersByIDs returns the users that exist among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// Profile is the identity-provider lookup used by admission and notifiers.
	Profile(ctx context.Context, userID string) (models.Profile, error)
}

// Store defines the interface for TodosPonen storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the engine or service layers.
type Store interface {
	Queries

	// RunInTx runs fn inside a single transaction. If fn returns an error the
	// transaction is rolled back and nothing fn wrote is kept. fn must only use
	// the Queries it is given.
	RunInTx(ctx context.Context, fn func(q Queries) error) error

	// ResetData deletes every circle and membership and every user except
	// keepUserID. Used only by the maintenance command.
	ResetData(ctx context.Context, keepUserID string) error

	// HasAdmin reports whether any account holds the admin role.
	HasAdmin(ctx context.Context) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
