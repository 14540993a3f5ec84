package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a global account role. Circle organizers are per circle and are
// not a role.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique).
	// Used for login and notifications.
	Email string

	// DisplayName is shown to other circle members.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	Role Role

	// Bank details and national ID gate admission to circles.
	BankName      string
	AccountNumber string
	NationalID    string

	// PushToken is the device token for push notifications, if any.
	PushToken string

	CreatedAt int64
	UpdatedAt int64
}

// NewUser creates a member account with a generated ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Role:         RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Profile is the identity-provider view of a user used by admission and
// notification delivery.
type Profile struct {
	UserID        string
	DisplayName   string
	Email         string
	BankName      string
	AccountNumber string
	NationalID    string
	PushToken     string
}

// Profile returns the identity-provider view of u.
func (u *User) Profile() Profile {
	return Profile{
		UserID:        u.ID,
		DisplayName:   u.DisplayName,
		Email:         u.Email,
		BankName:      u.BankName,
		AccountNumber: u.AccountNumber,
		NationalID:    u.NationalID,
		PushToken:     u.PushToken,
	}
}

// HasPayoutDetails reports whether bank name, account number and national ID
// are all present.
func (p Profile) HasPayoutDetails() bool {
	return p.BankName != "" && p.AccountNumber != "" && p.NationalID != ""
}
