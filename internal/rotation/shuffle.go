// Package rotation assigns payout turns and computes contribution due dates.
package rotation

import (
	"math/rand/v2"
	"sort"

	"github.com/mmynk/todosponen/internal/models"
)

// IntN returns a uniformly distributed int in [0, n). rand.IntN satisfies it
// and is safe for concurrent use; tests pass a seeded (*rand.Rand).IntN.
type IntN func(n int) int

// DefaultIntN is the package-level math/rand/v2 source.
var DefaultIntN IntN = rand.IntN

// Shuffle permutes items in place with the Fisher–Yates algorithm: for i from
// the last index down to 1, swap items[i] with items[j], j uniform in [0, i].
func Shuffle[T any](items []T, intn IntN) {
	if intn == nil {
		intn = DefaultIntN
	}
	for i := len(items) - 1; i > 0; i-- {
		j := intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Unit is the set of memberships that hold one turn together: a single
// full-share member, or two half-share members.
type Unit []string

// Units groups live memberships by their requested turn. Memberships without a
// turn each form their own unit. Units are ordered by turn, then ID, so the
// result is deterministic before shuffling.
func Units(memberships []models.Membership) []Unit {
	byTurn := make(map[int]Unit)
	var loose []Unit
	for _, m := range memberships {
		if !m.IsLive() {
			continue
		}
		if m.TurnNumber <= 0 {
			loose = append(loose, Unit{m.ID})
			continue
		}
		byTurn[m.TurnNumber] = append(byTurn[m.TurnNumber], m.ID)
	}

	turns := make([]int, 0, len(byTurn))
	for t := range byTurn {
		turns = append(turns, t)
	}
	sort.Ints(turns)

	units := make([]Unit, 0, len(turns)+len(loose))
	for _, t := range turns {
		u := byTurn[t]
		sort.Strings(u)
		units = append(units, u)
	}
	sort.Slice(loose, func(i, j int) bool { return loose[i][0] < loose[j][0] })
	return append(units, loose...)
}

// AssignTurns shuffles units and places them on turns 1..len(units). It
// returns the new turn for every membership ID.
func AssignTurns(units []Unit, intn IntN) map[string]int {
	order := append([]Unit(nil), units...)
	Shuffle(order, intn)

	turns := make(map[string]int)
	for i, u := range order {
		for _, id := range u {
			turns[id] = i + 1
		}
	}
	return turns
}
