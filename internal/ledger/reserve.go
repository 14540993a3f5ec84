package ledger

import (
	"fmt"

	"github.com/mmynk/todosponen/internal/models"
)

// Reason is the machine-readable cause of a rejected reservation.
type Reason string

const (
	ReasonTurnOutOfRange            Reason = "TURN_OUT_OF_RANGE"
	ReasonInvalidShare              Reason = "INVALID_SHARE"
	ReasonHalfSharesDisabled        Reason = "HALF_SHARES_DISABLED"
	ReasonTurnFull                  Reason = "TURN_FULL"
	ReasonHalfShareCapacityExceeded Reason = "HALF_SHARE_CAPACITY_EXCEEDED"
)

// Rejection is returned by Reserve when a turn cannot take the requested share.
type Rejection struct {
	Reason Reason
	Turn   int
	Share  models.Share
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case ReasonTurnOutOfRange:
		return fmt.Sprintf("%s: turn %d is outside the rotation", r.Reason, r.Turn)
	case ReasonTurnFull:
		return fmt.Sprintf("%s: turn %d cannot take another %s share", r.Reason, r.Turn, r.Share)
	case ReasonHalfShareCapacityExceeded:
		return fmt.Sprintf("%s: no half-share places left", r.Reason)
	case ReasonHalfSharesDisabled:
		return fmt.Sprintf("%s: circle does not allow half shares", r.Reason)
	default:
		return fmt.Sprintf("%s: share %d", r.Reason, int(r.Share))
	}
}

// Reserve checks whether share can be placed on turn. It returns nil or a
// *Rejection; the availability is not modified.
//
// Checks run in order: range, share policy, turn capacity, then the
// circle-wide half-share capacity.
func (a *Availability) Reserve(turn int, share models.Share) error {
	slot, ok := a.Slot(turn)
	if !ok {
		return &Rejection{Reason: ReasonTurnOutOfRange, Turn: turn, Share: share}
	}
	if !share.Valid() {
		return &Rejection{Reason: ReasonInvalidShare, Turn: turn, Share: share}
	}
	if share == models.ShareHalf && !a.AllowHalfShares {
		return &Rejection{Reason: ReasonHalfSharesDisabled, Turn: turn, Share: share}
	}
	if slot.Occupied+share > models.ShareFull {
		return &Rejection{Reason: ReasonTurnFull, Turn: turn, Share: share}
	}
	if share == models.ShareHalf && a.HalfShareHolders >= a.HalfShareCapacity() {
		return &Rejection{Reason: ReasonHalfShareCapacityExceeded, Turn: turn, Share: share}
	}
	return nil
}

// Take reserves share on turn for membershipID and records it in the view, so
// a sequence of requests can be replayed against one Availability.
func (a *Availability) Take(turn int, share models.Share, membershipID string) error {
	if err := a.Reserve(turn, share); err != nil {
		return err
	}
	slot := &a.Slots[turn-1]
	slot.Occupied += share
	slot.Holders = append(slot.Holders, membershipID)
	slot.State = stateFor(slot.Occupied)
	if share == models.ShareHalf {
		a.HalfShareHolders++
	}
	return nil
}
