package circle

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mmynk/todosponen/internal/models"
	"github.com/mmynk/todosponen/internal/notify"
	"github.com/mmynk/todosponen/internal/storage"
)

// ConfirmPayout records that the current turn's holders were paid. When the
// current turn is the last occupied one the circle completes.
func (e *Engine) ConfirmPayout(ctx context.Context, actor Actor, circleID string) (c *models.Circle, err error) {
	ctx, span := e.start(ctx, "ConfirmPayout", attribute.String("circle_id", circleID))
	defer func() { e.finish(span, "ConfirmPayout", err) }()

	var holders []models.Membership
	err = e.store.RunInTx(ctx, func(q storage.Queries) error {
		c, err = loadCircle(ctx, q, circleID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(c, actor); err != nil {
			return err
		}
		if err := requireActive(c); err != nil {
			return err
		}
		if c.PayoutStatus != models.PayoutStatusCollecting {
			return newError(ReasonInvalidTransition, "payout for turn %d is already %s", c.CurrentTurn, c.PayoutStatus)
		}

		memberships, err := q.ListMemberships(ctx, c.ID)
		if err != nil {
			return err
		}
		holders = holdersOf(memberships, c.CurrentTurn)

		c.PayoutStatus = models.PayoutStatusPaidOut
		if _, ok := nextTurn(e.availability(c, approved(memberships)).OccupiedTurns(), c.CurrentTurn); !ok {
			c.Status = models.CircleStatusCompleted
		}
		return q.UpdateCircle(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Payout confirmed",
		"circle_id", c.ID,
		"turn", c.CurrentTurn,
		"holders", len(holders),
		"status", c.Status,
	)

	events := make([]notify.Event, 0, len(holders))
	for _, m := range holders {
		events = append(events, notify.Event{
			UserID: m.UserID,
			Kind:   notify.PayoutProcessed,
			Data:   eventData(c, c.CurrentTurn),
		})
	}
	e.dispatch(ctx, events)
	return c, nil
}

// AdvanceCycle moves a paid-out circle to its next occupied turn and resets
// every member's payment. With no turn left the circle completes and the
// current turn stays where it is.
func (e *Engine) AdvanceCycle(ctx context.Context, actor Actor, circleID string) (c *models.Circle, err error) {
	ctx, span := e.start(ctx, "AdvanceCycle", attribute.String("circle_id", circleID))
	defer func() { e.finish(span, "AdvanceCycle", err) }()

	err = e.store.RunInTx(ctx, func(q storage.Queries) error {
		c, err = loadCircle(ctx, q, circleID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(c, actor); err != nil {
			return err
		}
		if err := requireActive(c); err != nil {
			return err
		}
		if c.PayoutStatus != models.PayoutStatusPaidOut {
			return newError(ReasonPayoutPending, "turn %d has not been paid out", c.CurrentTurn)
		}

		memberships, err := q.ListMemberships(ctx, c.ID)
		if err != nil {
			return err
		}
		members := approved(memberships)

		next, ok := nextTurn(e.availability(c, members).OccupiedTurns(), c.CurrentTurn)
		if !ok {
			c.Status = models.CircleStatusCompleted
			c.CurrentTurn = min(c.CurrentTurn, c.ParticipantCount)
			return q.UpdateCircle(ctx, c)
		}

		c.CurrentTurn = next
		c.PayoutStatus = models.PayoutStatusCollecting
		for i := range members {
			members[i].PaymentStatus = models.PaymentStatusPending
			members[i].PaymentProofRef = ""
			if err := q.UpdateMembership(ctx, &members[i]); err != nil {
				return err
			}
		}
		return q.UpdateCircle(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Cycle advanced", "circle_id", c.ID, "current_turn", c.CurrentTurn, "status", c.Status)
	return c, nil
}

// nextTurn returns the first occupied turn after current.
func nextTurn(occupied []int, current int) (int, bool) {
	for _, t := range occupied {
		if t > current {
			return t, true
		}
	}
	return 0, false
}
