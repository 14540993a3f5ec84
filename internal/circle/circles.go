package circle

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mmynk/todosponen/internal/ledger"
	"github.com/mmynk/todosponen/internal/models"
	"github.com/mmynk/todosponen/internal/rotation"
	"github.com/mmynk/todosponen/internal/storage"
)

const (
	maxNameLength = 80

	// MaxParticipants bounds the turns of a circle.
	MaxParticipants = 100
)

var namePolicy = bluemonday.StrictPolicy()

// CreateParams are the organizer's choices for a new circle.
type CreateParams struct {
	Name               string
	ContributionAmount int64
	Frequency          models.Frequency
	ParticipantCount   int
	StartDate          time.Time
	TurnAssignmentMode models.TurnAssignmentMode
	AllowHalfShares    bool
	MaxHalfShares      int
}

func (p CreateParams) validate() (CreateParams, error) {
	p.Name = strings.TrimSpace(namePolicy.Sanitize(p.Name))
	switch {
	case p.Name == "":
		return p, newError(ReasonInvalidInput, "name is required")
	case utf8.RuneCountInString(p.Name) > maxNameLength:
		return p, newError(ReasonInvalidInput, "name is longer than %d characters", maxNameLength)
	case p.ContributionAmount <= 0:
		return p, newError(ReasonInvalidInput, "contribution amount must be positive")
	case !p.Frequency.Valid():
		return p, newError(ReasonInvalidInput, "unknown frequency %q", p.Frequency)
	case p.ParticipantCount < 2:
		return p, newError(ReasonInvalidInput, "a circle needs at least 2 participants")
	case p.ParticipantCount > MaxParticipants:
		return p, newError(ReasonInvalidInput, "a circle has at most %d participants", MaxParticipants)
	case p.StartDate.IsZero():
		return p, newError(ReasonInvalidInput, "start date is required")
	case !p.TurnAssignmentMode.Valid():
		return p, newError(ReasonInvalidInput, "unknown turn assignment mode %q", p.TurnAssignmentMode)
	case p.MaxHalfShares < 0 || p.MaxHalfShares > p.ParticipantCount:
		return p, newError(ReasonInvalidInput, "max half shares must be between 0 and %d", p.ParticipantCount)
	case p.AllowHalfShares && p.MaxHalfShares == 0:
		return p, newError(ReasonInvalidInput, "max half shares must be at least 1 when half shares are allowed")
	}
	if !p.AllowHalfShares {
		p.MaxHalfShares = 0
	}
	p.StartDate = rotation.CivilDate(p.StartDate)
	return p, nil
}

// CreateCircle creates a pending circle organized by the actor.
func (e *Engine) CreateCircle(ctx context.Context, actor Actor, params CreateParams) (c *models.Circle, err error) {
	ctx, span := e.start(ctx, "CreateCircle", attribute.String("user_id", actor.UserID))
	defer func() { e.finish(span, "CreateCircle", err) }()

	if actor.UserID == "" {
		return nil, newError(ReasonNotMember, "an authenticated user is required")
	}
	params, err = params.validate()
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < inviteAttempts; attempt++ {
		code, err := e.inviteCode()
		if err != nil {
			return nil, err
		}
		c = &models.Circle{
			Name:               params.Name,
			ContributionAmount: params.ContributionAmount,
			Frequency:          params.Frequency,
			ParticipantCount:   params.ParticipantCount,
			StartDate:          params.StartDate,
			TurnAssignmentMode: params.TurnAssignmentMode,
			OrganizerID:        actor.UserID,
			Status:             models.CircleStatusPending,
			InviteCode:         code,
			CurrentTurn:        1,
			PayoutStatus:       models.PayoutStatusCollecting,
			AllowHalfShares:    params.AllowHalfShares,
			MaxHalfShares:      params.MaxHalfShares,
		}
		err = e.store.CreateCircle(ctx, c)
		if err == nil {
			span.SetAttributes(attribute.String("circle_id", c.ID))
			return c, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return nil, err
		}
	}
	return nil, errors.New("failed to allocate a unique invite code")
}

// GetCircle returns a circle visible to the actor.
func (e *Engine) GetCircle(ctx context.Context, actor Actor, circleID string) (*models.Circle, error) {
	c, err := loadCircle(ctx, e.store, circleID)
	if err != nil {
		return nil, err
	}
	if err := e.requireViewer(ctx, e.store, c, actor); err != nil {
		return nil, err
	}
	return c, nil
}

// Preview resolves an invite code into the circle and its current slot view
// so a prospective member can pick a turn.
func (e *Engine) Preview(ctx context.Context, actor Actor, inviteCode string) (*models.Circle, *ledger.Availability, error) {
	if actor.UserID == "" {
		return nil, nil, newError(ReasonNotMember, "an authenticated user is required")
	}
	c, err := e.store.GetCircleByInviteCode(ctx, normalizeCode(inviteCode))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, newError(ReasonCircleNotFound, "no circle for invite code %q", inviteCode)
	}
	if err != nil {
		return nil, nil, err
	}
	memberships, err := e.store.ListMemberships(ctx, c.ID)
	if err != nil {
		return nil, nil, err
	}
	return c, e.availability(c, memberships), nil
}

// ListMyCircles returns circles the actor organizes or belongs to.
func (e *Engine) ListMyCircles(ctx context.Context, actor Actor) ([]*models.Circle, error) {
	if actor.UserID == "" {
		return nil, newError(ReasonNotMember, "an authenticated user is required")
	}
	return e.store.ListCirclesForUser(ctx, actor.UserID)
}

// GetAvailability returns the live slot view of a circle.
func (e *Engine) GetAvailability(ctx context.Context, actor Actor, circleID string) (*ledger.Availability, error) {
	c, err := loadCircle(ctx, e.store, circleID)
	if err != nil {
		return nil, err
	}
	if err := e.requireViewer(ctx, e.store, c, actor); err != nil {
		return nil, err
	}
	memberships, err := e.store.ListMemberships(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return e.availability(c, memberships), nil
}

// ListMemberships returns every membership of a circle.
func (e *Engine) ListMemberships(ctx context.Context, actor Actor, circleID string) ([]models.Membership, error) {
	c, err := loadCircle(ctx, e.store, circleID)
	if err != nil {
		return nil, err
	}
	if err := e.requireViewer(ctx, e.store, c, actor); err != nil {
		return nil, err
	}
	return e.store.ListMemberships(ctx, c.ID)
}

// SuspendCircle moves any circle that is not already suspended to suspended.
// Admins only.
func (e *Engine) SuspendCircle(ctx context.Context, actor Actor, circleID string) (c *models.Circle, err error) {
	ctx, span := e.start(ctx, "SuspendCircle", attribute.String("circle_id", circleID))
	defer func() { e.finish(span, "SuspendCircle", err) }()

	if !actor.IsAdmin() {
		return nil, newError(ReasonNotAdmin, "only admins can suspend circles")
	}

	err = e.store.RunInTx(ctx, func(q storage.Queries) error {
		c, err = loadCircle(ctx, q, circleID)
		if err != nil {
			return err
		}
		if c.Status == models.CircleStatusSuspended {
			return newError(ReasonInvalidTransition, "circle %s is already suspended", c.ID)
		}
		c.Status = models.CircleStatusSuspended
		return q.UpdateCircle(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Circle suspended", "circle_id", c.ID, "admin_id", actor.UserID)
	return c, nil
}

// requireViewer allows the organizer, admins and live members.
func (e *Engine) requireViewer(ctx context.Context, q storage.Queries, c *models.Circle, actor Actor) error {
	if c.IsOrganizer(actor.UserID) || actor.IsAdmin() {
		return nil
	}
	m, err := q.GetMembershipByUser(ctx, c.ID, actor.UserID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !m.IsLive()) {
		return newError(ReasonNotMember, "user is not a member of circle %s", c.ID)
	}
	return err
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
