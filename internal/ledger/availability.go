// Package ledger computes which turns of a circle are free, half-open or full
// and decides whether a turn can be reserved for a given share.
//
// Everything here is a pure function of a circle and its memberships; the
// ledger is derived on every decision and never stored.
package ledger

import (
	"sort"

	"github.com/mmynk/todosponen/internal/models"
)

// SlotState classifies a turn by the shares already placed on it.
type SlotState string

const (
	SlotEmpty SlotState = "empty"
	SlotHalf  SlotState = "half"
	SlotFull  SlotState = "full"
)

// Slot is one turn of the rotation.
type Slot struct {
	Turn  int
	State SlotState

	// Occupied is the sum of holder shares, capped at a full share.
	Occupied models.Share

	// Holders are the membership IDs placed on this turn.
	Holders []string
}

// Remaining is the share still free on the turn.
func (s Slot) Remaining() models.Share {
	return models.ShareFull - s.Occupied
}

// InconsistencyKind names a stored-data violation found while aggregating.
type InconsistencyKind string

const (
	// InconsistencyOverbooked means holders on one turn sum to more than a full share.
	InconsistencyOverbooked InconsistencyKind = "overbooked"
	// InconsistencyTurnOutOfRange means a membership points past ParticipantCount.
	InconsistencyTurnOutOfRange InconsistencyKind = "turn_out_of_range"
)

// Inconsistency is stored data the ledger could not classify cleanly. Callers
// must surface these as warnings.
type Inconsistency struct {
	Kind          InconsistencyKind
	Turn          int
	Occupied      models.Share // raw, uncapped sum
	MembershipIDs []string
}

// Availability is the slot view of one circle.
type Availability struct {
	ParticipantCount int
	AllowHalfShares  bool
	MaxHalfShares    int

	// Slots holds turns 1..ParticipantCount at index turn-1.
	Slots []Slot

	// HalfShareHolders counts half-share memberships circle-wide, including
	// ones without a turn yet.
	HalfShareHolders int

	Inconsistencies []Inconsistency
}

// Compute aggregates the live memberships (pending or active) of a circle into
// a slot view. Rejected memberships and other circles' memberships are ignored.
func Compute(circle *models.Circle, memberships []models.Membership) *Availability {
	a := &Availability{
		ParticipantCount: circle.ParticipantCount,
		AllowHalfShares:  circle.AllowHalfShares,
		MaxHalfShares:    circle.MaxHalfShares,
		Slots:            make([]Slot, max(circle.ParticipantCount, 0)),
	}
	for i := range a.Slots {
		a.Slots[i] = Slot{Turn: i + 1, State: SlotEmpty}
	}

	raw := make(map[int]models.Share)
	outOfRange := make(map[int][]string)
	for _, m := range memberships {
		if m.CircleID != circle.ID || !m.IsLive() {
			continue
		}
		if m.Share == models.ShareHalf {
			a.HalfShareHolders++
		}
		switch {
		case m.TurnNumber == 0:
			// unassigned: counts toward half-share capacity only
		case m.TurnNumber < 0 || m.TurnNumber > a.ParticipantCount:
			outOfRange[m.TurnNumber] = append(outOfRange[m.TurnNumber], m.ID)
		default:
			slot := &a.Slots[m.TurnNumber-1]
			slot.Holders = append(slot.Holders, m.ID)
			raw[m.TurnNumber] += m.Share
		}
	}

	for i := range a.Slots {
		slot := &a.Slots[i]
		occupied := raw[slot.Turn]
		if occupied > models.ShareFull {
			a.Inconsistencies = append(a.Inconsistencies, Inconsistency{
				Kind:          InconsistencyOverbooked,
				Turn:          slot.Turn,
				Occupied:      occupied,
				MembershipIDs: append([]string(nil), slot.Holders...),
			})
			occupied = models.ShareFull
		}
		slot.Occupied = occupied
		slot.State = stateFor(occupied)
	}

	turns := make([]int, 0, len(outOfRange))
	for t := range outOfRange {
		turns = append(turns, t)
	}
	sort.Ints(turns)
	for _, t := range turns {
		a.Inconsistencies = append(a.Inconsistencies, Inconsistency{
			Kind:          InconsistencyTurnOutOfRange,
			Turn:          t,
			MembershipIDs: outOfRange[t],
		})
	}

	return a
}

func stateFor(occupied models.Share) SlotState {
	switch {
	case occupied >= models.ShareFull:
		return SlotFull
	case occupied == models.ShareHalf:
		return SlotHalf
	default:
		return SlotEmpty
	}
}

// Slot returns the slot for turn, or false when turn is out of range.
func (a *Availability) Slot(turn int) (Slot, bool) {
	if turn < 1 || turn > len(a.Slots) {
		return Slot{}, false
	}
	return a.Slots[turn-1], true
}

// HalfShareCapacity is the maximum number of half-share holders.
func (a *Availability) HalfShareCapacity() int {
	return a.MaxHalfShares * 2
}

// OccupiedTurns returns the turns with at least one holder, ascending.
func (a *Availability) OccupiedTurns() []int {
	var turns []int
	for _, s := range a.Slots {
		if len(s.Holders) > 0 {
			turns = append(turns, s.Turn)
		}
	}
	return turns
}

// Selectable returns the turns a joiner holding share could pick right now.
func (a *Availability) Selectable(share models.Share) []int {
	var turns []int
	for _, s := range a.Slots {
		if a.Reserve(s.Turn, share) == nil {
			turns = append(turns, s.Turn)
		}
	}
	return turns
}
