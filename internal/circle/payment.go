package circle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mmynk/todosponen/internal/blob"
	"github.com/mmynk/todosponen/internal/models"
	"github.com/mmynk/todosponen/internal/notify"
	"github.com/mmynk/todosponen/internal/rotation"
	"github.com/mmynk/todosponen/internal/storage"
)

// canSubmitProof lists the payment states a proof may be submitted from.
// Submitting while reviewing replaces the previous proof.
func canSubmitProof(s models.PaymentStatus) bool {
	return s == models.PaymentStatusPending || s == models.PaymentStatusLate || s == models.PaymentStatusReviewing
}

// SubmitPaymentProof uploads the actor's proof of payment for the current
// cycle and moves their payment to reviewing.
func (e *Engine) SubmitPaymentProof(ctx context.Context, actor Actor, circleID, filename string, file io.Reader) (m *models.Membership, err error) {
	ctx, span := e.start(ctx, "SubmitPaymentProof",
		attribute.String("circle_id", circleID),
		attribute.String("user_id", actor.UserID),
	)
	defer func() { e.finish(span, "SubmitPaymentProof", err) }()

	if e.blobs == nil {
		return nil, errors.New("no blob store configured")
	}

	// Validate before uploading so rejected submissions leave no blob behind.
	c, m, err := e.payer(ctx, e.store, actor, circleID)
	if err != nil {
		return nil, err
	}

	ref, err := e.blobs.Put(ctx, blob.ProofKey(c.ID, m.ID, c.CurrentTurn, filename), file)
	if err != nil {
		return nil, fmt.Errorf("failed to store payment proof: %w", err)
	}

	err = e.store.RunInTx(ctx, func(q storage.Queries) error {
		_, m, err = e.payer(ctx, q, actor, circleID)
		if err != nil {
			return err
		}
		m.PaymentStatus = models.PaymentStatusReviewing
		m.PaymentProofRef = ref
		return q.UpdateMembership(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Payment proof submitted",
		"circle_id", c.ID,
		"membership_id", m.ID,
		"turn", c.CurrentTurn,
		"ref", ref,
	)
	return m, nil
}

// payer loads the circle and the actor's membership and checks that a proof
// can be submitted.
func (e *Engine) payer(ctx context.Context, q storage.Queries, actor Actor, circleID string) (*models.Circle, *models.Membership, error) {
	c, err := loadCircle(ctx, q, circleID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireActive(c); err != nil {
		return nil, nil, err
	}
	m, err := q.GetMembershipByUser(ctx, c.ID, actor.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, newError(ReasonNotMember, "user is not a member of circle %s", c.ID)
	}
	if err != nil {
		return nil, nil, err
	}
	if !m.IsActive() {
		return nil, nil, newError(ReasonNotMember, "membership %s is %s", m.ID, m.Status)
	}
	if !canSubmitProof(m.PaymentStatus) {
		return nil, nil, newError(ReasonInvalidTransition, "payment is already %s", m.PaymentStatus)
	}
	return c, m, nil
}

// ConfirmPayment marks a reviewed payment as paid.
func (e *Engine) ConfirmPayment(ctx context.Context, actor Actor, membershipID string) (m *models.Membership, err error) {
	ctx, span := e.start(ctx, "ConfirmPayment", attribute.String("membership_id", membershipID))
	defer func() { e.finish(span, "ConfirmPayment", err) }()

	var c *models.Circle
	err = e.store.RunInTx(ctx, func(q storage.Queries) error {
		m, c, err = loadMembership(ctx, q, membershipID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(c, actor); err != nil {
			return err
		}
		if err := requireActive(c); err != nil {
			return err
		}
		if m.PaymentStatus != models.PaymentStatusReviewing {
			return newError(ReasonInvalidTransition, "payment is %s, not reviewing", m.PaymentStatus)
		}
		m.PaymentStatus = models.PaymentStatusPaid
		return q.UpdateMembership(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Payment confirmed", "circle_id", c.ID, "membership_id", m.ID, "turn", c.CurrentTurn)
	e.dispatch(ctx, []notify.Event{{
		UserID: m.UserID,
		Kind:   notify.PaymentReceived,
		Data:   eventData(c, c.CurrentTurn),
	}})
	return m, nil
}

// MarkOverdue moves every pending payment of the current cycle to late once
// the cycle's due date is before now. It returns the memberships it changed.
// The organizer or an admin may run it.
func (e *Engine) MarkOverdue(ctx context.Context, actor Actor, circleID string, now time.Time) (late []models.Membership, err error) {
	ctx, span := e.start(ctx, "MarkOverdue", attribute.String("circle_id", circleID))
	defer func() { e.finish(span, "MarkOverdue", err) }()

	if now.IsZero() {
		now = e.now()
	}

	err = e.store.RunInTx(ctx, func(q storage.Queries) error {
		c, err := loadCircle(ctx, q, circleID)
		if err != nil {
			return err
		}
		if !c.IsOrganizer(actor.UserID) && !actor.IsAdmin() {
			return newError(ReasonNotOrganizer, "only the organizer or an admin can mark payments overdue")
		}
		if err := requireActive(c); err != nil {
			return err
		}

		due, err := rotation.CircleDueDate(c)
		if err != nil {
			return err
		}
		if !due.Before(rotation.CivilDate(now)) {
			return nil
		}

		memberships, err := q.ListMemberships(ctx, c.ID)
		if err != nil {
			return err
		}
		for _, m := range approved(memberships) {
			if m.PaymentStatus != models.PaymentStatusPending {
				continue
			}
			m.PaymentStatus = models.PaymentStatusLate
			if err := q.UpdateMembership(ctx, &m); err != nil {
				return err
			}
			late = append(late, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(late) > 0 {
		slog.Info("Payments marked overdue", "circle_id", circleID, "count", len(late))
	}
	return late, nil
}
