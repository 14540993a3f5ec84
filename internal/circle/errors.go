package circle

import (
	"errors"
	"fmt"

	"github.com/mmynk/todosponen/internal/ledger"
)

// Kind groups reasons by how a caller should react to them.
type Kind string

const (
	KindValidation Kind = "validation"
	KindCapacity   Kind = "capacity"
	KindNotFound   Kind = "not_found"
	KindPermission Kind = "permission"
	KindState      Kind = "state"
)

// Reason is a machine-readable error code.
type Reason string

const (
	// Validation
	ReasonIncompleteProfile   Reason = "INCOMPLETE_PROFILE"
	ReasonDuplicateMembership Reason = "DUPLICATE_MEMBERSHIP"
	ReasonTurnOutOfRange      Reason = "TURN_OUT_OF_RANGE"
	ReasonHalfSharesDisabled  Reason = "HALF_SHARES_DISABLED"
	ReasonInvalidInput        Reason = "INVALID_INPUT"
	ReasonPendingRequests     Reason = "PENDING_REQUESTS"
	ReasonNotEnoughMembers    Reason = "NOT_ENOUGH_MEMBERS"

	// Capacity
	ReasonTurnFull                  Reason = "TURN_FULL"
	ReasonCircleFull                Reason = "CIRCLE_FULL"
	ReasonHalfShareCapacityExceeded Reason = "HALF_SHARE_CAPACITY_EXCEEDED"

	// Lookup
	ReasonCircleNotFound     Reason = "CIRCLE_NOT_FOUND"
	ReasonMembershipNotFound Reason = "MEMBERSHIP_NOT_FOUND"

	// Authorization
	ReasonNotOrganizer Reason = "NOT_ORGANIZER"
	ReasonNotMember    Reason = "NOT_MEMBER"
	ReasonNotAdmin     Reason = "NOT_ADMIN"

	// Lifecycle
	ReasonInvalidTransition Reason = "INVALID_TRANSITION"
	ReasonCircleNotOpen     Reason = "CIRCLE_NOT_OPEN"
	ReasonCircleNotActive   Reason = "CIRCLE_NOT_ACTIVE"
	ReasonPayoutPending     Reason = "PAYOUT_PENDING"
)

// Kind returns the group a reason belongs to.
func (r Reason) Kind() Kind {
	switch r {
	case ReasonTurnFull, ReasonCircleFull, ReasonHalfShareCapacityExceeded:
		return KindCapacity
	case ReasonCircleNotFound, ReasonMembershipNotFound:
		return KindNotFound
	case ReasonNotOrganizer, ReasonNotMember, ReasonNotAdmin:
		return KindPermission
	case ReasonInvalidTransition, ReasonCircleNotOpen, ReasonCircleNotActive, ReasonPayoutPending:
		return KindState
	}
	return KindValidation
}

// Error is a domain error returned by engine commands.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Is matches another *Error by reason, so errors.Is(err, circle.ErrTurnFull) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Reason == t.Reason
}

// newError creates an Error with its kind derived from reason.
func newError(reason Reason, format string, args ...any) *Error {
	return &Error{Kind: reason.Kind(), Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is checks.
var (
	ErrIncompleteProfile         = &Error{Kind: KindValidation, Reason: ReasonIncompleteProfile}
	ErrDuplicateMembership       = &Error{Kind: KindValidation, Reason: ReasonDuplicateMembership}
	ErrTurnOutOfRange            = &Error{Kind: KindValidation, Reason: ReasonTurnOutOfRange}
	ErrHalfSharesDisabled        = &Error{Kind: KindValidation, Reason: ReasonHalfSharesDisabled}
	ErrInvalidInput              = &Error{Kind: KindValidation, Reason: ReasonInvalidInput}
	ErrPendingRequests           = &Error{Kind: KindValidation, Reason: ReasonPendingRequests}
	ErrNotEnoughMembers          = &Error{Kind: KindValidation, Reason: ReasonNotEnoughMembers}
	ErrTurnFull                  = &Error{Kind: KindCapacity, Reason: ReasonTurnFull}
	ErrCircleFull                = &Error{Kind: KindCapacity, Reason: ReasonCircleFull}
	ErrHalfShareCapacityExceeded = &Error{Kind: KindCapacity, Reason: ReasonHalfShareCapacityExceeded}
	ErrCircleNotFound            = &Error{Kind: KindNotFound, Reason: ReasonCircleNotFound}
	ErrMembershipNotFound        = &Error{Kind: KindNotFound, Reason: ReasonMembershipNotFound}
	ErrNotOrganizer              = &Error{Kind: KindPermission, Reason: ReasonNotOrganizer}
	ErrNotMember                 = &Error{Kind: KindPermission, Reason: ReasonNotMember}
	ErrNotAdmin                  = &Error{Kind: KindPermission, Reason: ReasonNotAdmin}
	ErrInvalidTransition         = &Error{Kind: KindState, Reason: ReasonInvalidTransition}
	ErrCircleNotOpen             = &Error{Kind: KindState, Reason: ReasonCircleNotOpen}
	ErrCircleNotActive           = &Error{Kind: KindState, Reason: ReasonCircleNotActive}
	ErrPayoutPending             = &Error{Kind: KindState, Reason: ReasonPayoutPending}
)

// AsError extracts a domain error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// fromRejection converts a ledger rejection into a domain error.
func fromRejection(err error) error {
	var r *ledger.Rejection
	if !errors.As(err, &r) {
		return err
	}
	var reason Reason
	switch r.Reason {
	case ledger.ReasonTurnOutOfRange:
		reason = ReasonTurnOutOfRange
	case ledger.ReasonHalfSharesDisabled:
		reason = ReasonHalfSharesDisabled
	case ledger.ReasonTurnFull:
		reason = ReasonTurnFull
	case ledger.ReasonHalfShareCapacityExceeded:
		reason = ReasonHalfShareCapacityExceeded
	default:
		reason = ReasonInvalidInput
	}
	return &Error{Kind: reason.Kind(), Reason: reason, Message: r.Error()}
}
