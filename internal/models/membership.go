package models

import (
	"fmt"
	"time"
)

// MembershipStatus is the admission state of a membership.
type MembershipStatus string

const (
	MembershipStatusPending  MembershipStatus = "pending"
	MembershipStatusActive   MembershipStatus = "active"
	MembershipStatusRejected MembershipStatus = "rejected"
)

// Valid reports whether s is a known membership status.
func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipStatusPending, MembershipStatusActive, MembershipStatusRejected:
		return true
	}
	return false
}

// PaymentStatus is a member's contribution state for the current cycle.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusReviewing PaymentStatus = "reviewing"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusLate      PaymentStatus = "late"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusReviewing, PaymentStatusPaid, PaymentStatusLate:
		return true
	}
	return false
}

// Share is the fraction of a turn a member holds, counted in half shares so
// that slot arithmetic stays exact.
type Share int

const (
	ShareHalf Share = 1
	ShareFull Share = 2
)

// Valid reports whether s is a half or a full share.
func (s Share) Valid() bool {
	return s == ShareHalf || s == ShareFull
}

// Percentage returns the share as a fraction of a turn (0.5 or 1.0).
func (s Share) Percentage() float64 {
	return float64(s) / float64(ShareFull)
}

func (s Share) String() string {
	return fmt.Sprintf("%.1f", s.Percentage())
}

// ShareFromPercentage converts 0.5 or 1.0 into a Share.
func ShareFromPercentage(p float64) (Share, error) {
	switch p {
	case 0.5:
		return ShareHalf, nil
	case 1.0:
		return ShareFull, nil
	}
	return 0, fmt.Errorf("share must be 0.5 or 1.0, got %v", p)
}

// Membership links a user to a circle, their turn and their share of it.
// Memberships are unique per (CircleID, UserID).
type Membership struct {
	// ID is the unique identifier for the membership (UUID format).
	ID string

	CircleID string
	UserID   string

	// TurnNumber is 0 while unassigned, else 1..ParticipantCount.
	TurnNumber int

	Status MembershipStatus

	Share Share

	PaymentStatus PaymentStatus

	// PaymentProofRef is the blob reference of the latest uploaded proof.
	PaymentProofRef string

	// JoinedAt is the Unix timestamp of the join request.
	JoinedAt  int64
	UpdatedAt int64
}

// IsLive reports whether the membership holds a slot (pending or active).
func (m *Membership) IsLive() bool {
	return m.Status == MembershipStatusPending || m.Status == MembershipStatusActive
}

// IsActive reports whether the membership was approved.
func (m *Membership) IsActive() bool {
	return m.Status == MembershipStatusActive
}

// Touch stamps UpdatedAt with now.
func (m *Membership) Touch(now time.Time) {
	m.UpdatedAt = now.Unix()
}
