package circle

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mmynk/todosponen/internal/models"
	"github.com/mmynk/todosponen/internal/notify"
	"github.com/mmynk/todosponen/internal/rotation"
	"github.com/mmynk/todosponen/internal/storage"
)

// minMembers is the fewest approved members a circle can start with.
const minMembers = 2

// LockIn fixes the turn order and activates a pending circle.
//
// In random mode the turn holders are shuffled onto turns 1..U, where U is the
// number of holders; two half-share members on one turn stay together. In
// manual mode the requested turns are kept. Every member's payment status is
// reset and the first occupied turn becomes current.
func (e *Engine) LockIn(ctx context.Context, actor Actor, circleID string) (c *models.Circle, err error) {
	ctx, span := e.start(ctx, "LockIn", attribute.String("circle_id", circleID))
	defer func() { e.finish(span, "LockIn", err) }()

	var members []models.Membership
	err = e.store.RunInTx(ctx, func(q storage.Queries) error {
		c, err = loadCircle(ctx, q, circleID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(c, actor); err != nil {
			return err
		}
		if c.Status != models.CircleStatusPending {
			return newError(ReasonInvalidTransition, "circle %s is %s", c.ID, c.Status)
		}

		memberships, err := q.ListMemberships(ctx, c.ID)
		if err != nil {
			return err
		}
		pending := 0
		for _, m := range memberships {
			if m.Status == models.MembershipStatusPending {
				pending++
			}
		}
		if pending > 0 {
			return newError(ReasonPendingRequests, "%d join requests are still pending", pending)
		}
		members = approved(memberships)
		if len(members) < minMembers {
			return newError(ReasonNotEnoughMembers, "need at least %d approved members, have %d", minMembers, len(members))
		}

		if c.TurnAssignmentMode == models.TurnAssignmentRandom {
			turns := rotation.AssignTurns(rotation.Units(members), e.intn)
			for i := range members {
				members[i].TurnNumber = turns[members[i].ID]
			}
		}

		for i := range members {
			members[i].PaymentStatus = models.PaymentStatusPending
			members[i].PaymentProofRef = ""
			if err := q.UpdateMembership(ctx, &members[i]); err != nil {
				return err
			}
		}

		occupied := e.availability(c, members).OccupiedTurns()
		if len(occupied) == 0 {
			return newError(ReasonNotEnoughMembers, "no approved member holds a turn")
		}
		c.Status = models.CircleStatusActive
		c.CurrentTurn = occupied[0]
		c.PayoutStatus = models.PayoutStatusCollecting
		return q.UpdateCircle(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Circle locked in",
		"circle_id", c.ID,
		"mode", c.TurnAssignmentMode,
		"members", len(members),
		"current_turn", c.CurrentTurn,
	)

	events := make([]notify.Event, 0, len(members))
	for _, m := range members {
		events = append(events, notify.Event{
			UserID: m.UserID,
			Kind:   notify.CircleStarted,
			Data:   eventData(c, m.TurnNumber),
		})
	}
	e.dispatch(ctx, events)
	return c, nil
}
