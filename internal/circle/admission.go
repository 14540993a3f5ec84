package circle

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mmynk/todosponen/internal/models"
	"github.com/mmynk/todosponen/internal/notify"
	"github.com/mmynk/todosponen/internal/storage"
)

// RequestJoin files a pending membership for the actor on turn with share.
//
// Checks fail fast in this order: payout profile, invite code, circle open,
// circle capacity, duplicate membership, then the slot ledger. Everything
// after the profile check runs in one transaction with the insert.
func (e *Engine) RequestJoin(ctx context.Context, actor Actor, inviteCode string, turn int, share models.Share) (m *models.Membership, err error) {
	ctx, span := e.start(ctx, "RequestJoin",
		attribute.String("user_id", actor.UserID),
		attribute.Int("turn", turn),
		attribute.Int("share_halves", int(share)),
	)
	defer func() { e.finish(span, "RequestJoin", err) }()

	profile, err := e.store.Profile(ctx, actor.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newError(ReasonIncompleteProfile, "no profile for user %s", actor.UserID)
	}
	if err != nil {
		return nil, err
	}
	if !profile.HasPayoutDetails() {
		return nil, newError(ReasonIncompleteProfile, "bank name, account number and national ID are required")
	}

	code := normalizeCode(inviteCode)
	err = e.store.RunInTx(ctx, func(q storage.Queries) error {
		c, err := q.GetCircleByInviteCode(ctx, code)
		if errors.Is(err, storage.ErrNotFound) {
			return newError(ReasonCircleNotFound, "no circle for invite code %q", inviteCode)
		}
		if err != nil {
			return err
		}
		if c.Status != models.CircleStatusPending {
			return newError(ReasonCircleNotOpen, "circle %s is %s", c.ID, c.Status)
		}

		memberships, err := q.ListMemberships(ctx, c.ID)
		if err != nil {
			return err
		}
		if len(approved(memberships)) >= c.ParticipantCount {
			return newError(ReasonCircleFull, "circle %s has %d approved members", c.ID, c.ParticipantCount)
		}
		for _, existing := range memberships {
			if existing.UserID == actor.UserID && existing.IsLive() {
				return newError(ReasonDuplicateMembership, "user already has a %s membership", existing.Status)
			}
		}

		if err := e.availability(c, memberships).Reserve(turn, share); err != nil {
			return fromRejection(err)
		}

		m = &models.Membership{
			CircleID:      c.ID,
			UserID:        actor.UserID,
			TurnNumber:    turn,
			Status:        models.MembershipStatusPending,
			Share:         share,
			PaymentStatus: models.PaymentStatusPending,
		}
		if err := q.CreateMembership(ctx, m); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return newError(ReasonDuplicateMembership, "user already belongs to circle %s", c.ID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Join requested",
		"circle_id", m.CircleID,
		"membership_id", m.ID,
		"user_id", m.UserID,
		"turn", m.TurnNumber,
		"share", m.Share.String(),
	)
	return m, nil
}

// Approve activates a pending membership. The circle capacity and the turn
// are checked again, this time against approved members only.
func (e *Engine) Approve(ctx context.Context, actor Actor, membershipID string) (m *models.Membership, err error) {
	ctx, span := e.start(ctx, "Approve", attribute.String("membership_id", membershipID))
	defer func() { e.finish(span, "Approve", err) }()

	var c *models.Circle
	err = e.store.RunInTx(ctx, func(q storage.Queries) error {
		m, c, err = loadMembership(ctx, q, membershipID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(c, actor); err != nil {
			return err
		}
		if m.Status != models.MembershipStatusPending {
			return newError(ReasonInvalidTransition, "membership %s is %s", m.ID, m.Status)
		}
		if c.Status != models.CircleStatusPending {
			return newError(ReasonCircleNotOpen, "circle %s is %s", c.ID, c.Status)
		}

		memberships, err := q.ListMemberships(ctx, c.ID)
		if err != nil {
			return err
		}
		active := approved(memberships)
		if len(active) >= c.ParticipantCount {
			return newError(ReasonCircleFull, "circle %s already has %d approved members", c.ID, len(active))
		}
		if err := e.availability(c, active).Reserve(m.TurnNumber, m.Share); err != nil {
			return fromRejection(err)
		}

		m.Status = models.MembershipStatusActive
		return q.UpdateMembership(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Membership approved", "circle_id", c.ID, "membership_id", m.ID, "user_id", m.UserID)
	e.dispatch(ctx, []notify.Event{{
		UserID: m.UserID,
		Kind:   notify.RequestAccepted,
		Data:   eventData(c, m.TurnNumber),
	}})
	return m, nil
}

// Reject removes a pending membership, freeing its slot. The returned record
// carries status rejected.
func (e *Engine) Reject(ctx context.Context, actor Actor, membershipID string) (m *models.Membership, err error) {
	ctx, span := e.start(ctx, "Reject", attribute.String("membership_id", membershipID))
	defer func() { e.finish(span, "Reject", err) }()

	var c *models.Circle
	err = e.store.RunInTx(ctx, func(q storage.Queries) error {
		m, c, err = loadMembership(ctx, q, membershipID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(c, actor); err != nil {
			return err
		}
		if m.Status != models.MembershipStatusPending {
			return newError(ReasonInvalidTransition, "membership %s is %s", m.ID, m.Status)
		}
		return q.DeleteMembership(ctx, m.ID)
	})
	if err != nil {
		return nil, err
	}

	m.Status = models.MembershipStatusRejected
	m.Touch(e.now())

	slog.Info("Membership rejected", "circle_id", c.ID, "membership_id", m.ID, "user_id", m.UserID)
	e.dispatch(ctx, []notify.Event{{
		UserID: m.UserID,
		Kind:   notify.RequestRejected,
		Data:   eventData(c, m.TurnNumber),
	}})
	return m, nil
}
