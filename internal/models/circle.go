package models

import "time"

// Frequency is how often contributions are collected.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// TurnAssignmentMode decides how final turns are chosen at lock-in.
type TurnAssignmentMode string

const (
	// TurnAssignmentRandom reshuffles turns once when the organizer locks the circle.
	TurnAssignmentRandom TurnAssignmentMode = "random"
	// TurnAssignmentManual keeps the turns picked at join-request time.
	TurnAssignmentManual TurnAssignmentMode = "manual"
)

// Valid reports whether m is a known assignment mode.
func (m TurnAssignmentMode) Valid() bool {
	return m == TurnAssignmentRandom || m == TurnAssignmentManual
}

// CircleStatus is the lifecycle state of a circle.
type CircleStatus string

const (
	CircleStatusPending   CircleStatus = "pending"
	CircleStatusActive    CircleStatus = "active"
	CircleStatusCompleted CircleStatus = "completed"
	CircleStatusSuspended CircleStatus = "suspended"
)

// Valid reports whether s is a known circle status.
func (s CircleStatus) Valid() bool {
	switch s {
	case CircleStatusPending, CircleStatusActive, CircleStatusCompleted, CircleStatusSuspended:
		return true
	}
	return false
}

// PayoutStatus tracks whether the current turn's pot has been delivered.
type PayoutStatus string

const (
	PayoutStatusCollecting PayoutStatus = "collecting"
	PayoutStatusPaidOut    PayoutStatus = "paid_out"
)

// Valid reports whether s is a known payout status.
func (s PayoutStatus) Valid() bool {
	return s == PayoutStatusCollecting || s == PayoutStatusPaidOut
}

// Circle is a rotating savings group (a SANG): a fixed contribution, a fixed
// cycle length and a fixed number of turns.
type Circle struct {
	// ID is the unique identifier for the circle (UUID format).
	ID string

	// Name is the display name, sanitised on creation.
	Name string

	// ContributionAmount is what each full share pays per cycle, in the
	// smallest currency unit.
	ContributionAmount int64

	Frequency Frequency

	// ParticipantCount is the number of turns in the rotation.
	ParticipantCount int

	// StartDate is the civil date of the first due date, stored at UTC midnight.
	StartDate time.Time

	TurnAssignmentMode TurnAssignmentMode

	// OrganizerID is the user allowed to approve, lock in and confirm payouts.
	OrganizerID string

	Status CircleStatus

	// InviteCode is a unique 6-character uppercase alphanumeric code.
	InviteCode string

	// CurrentTurn is 1-indexed and always within [1, ParticipantCount].
	CurrentTurn int

	PayoutStatus PayoutStatus

	AllowHalfShares bool

	// MaxHalfShares is how many turns may be split between two half-share members.
	MaxHalfShares int

	CreatedAt int64
	UpdatedAt int64
}

// IsOrganizer reports whether userID organizes the circle.
func (c *Circle) IsOrganizer(userID string) bool {
	return userID != "" && c.OrganizerID == userID
}

// PotAmount is what the holders of one turn receive per cycle.
func (c *Circle) PotAmount() int64 {
	return c.ContributionAmount * int64(c.ParticipantCount)
}
