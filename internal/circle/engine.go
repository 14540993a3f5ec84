// Package circle runs the circle lifecycle: admission, lock-in and the
// per-cycle payment and payout state machine.
//
// Every command takes the acting user explicitly, re-reads the circle and its
// memberships inside a storage transaction, decides, writes, and only after
// the commit hands notification events to the notifier.
package circle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mmynk/todosponen/internal/blob"
	"github.com/mmynk/todosponen/internal/ledger"
	"github.com/mmynk/todosponen/internal/models"
	"github.com/mmynk/todosponen/internal/notify"
	"github.com/mmynk/todosponen/internal/rotation"
	"github.com/mmynk/todosponen/internal/storage"
)

const tracerName = "github.com/mmynk/todosponen/internal/circle"

// DefaultNotifyTimeout bounds each notification delivery.
const DefaultNotifyTimeout = 5 * time.Second

// Actor is the authenticated user issuing a command.
type Actor struct {
	UserID string
	Role   models.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Engine executes circle commands against a Store.
type Engine struct {
	store         storage.Store
	notifier      notify.Notifier
	blobs         blob.Store
	intn          rotation.IntN
	now           func() time.Time
	inviteCode    func() (string, error)
	notifyTimeout time.Duration
	metrics       *Metrics
	tracer        trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets where lifecycle events are delivered.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithBlobStore sets where payment proofs are uploaded.
func WithBlobStore(b blob.Store) Option {
	return func(e *Engine) { e.blobs = b }
}

// WithIntN sets the random source used by lock-in.
func WithIntN(intn rotation.IntN) Option {
	return func(e *Engine) { e.intn = intn }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithInviteCodeGenerator replaces the invite code generator.
func WithInviteCodeGenerator(gen func() (string, error)) Option {
	return func(e *Engine) { e.inviteCode = gen }
}

// WithNotifyTimeout bounds each notification delivery.
func WithNotifyTimeout(d time.Duration) Option {
	return func(e *Engine) { e.notifyTimeout = d }
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an Engine. Without options it logs notifications, has no blob
// store, and uses math/rand/v2 and the wall clock.
func New(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		notifier:      notify.Log{},
		intn:          rotation.DefaultIntN,
		now:           time.Now,
		inviteCode:    NewInviteCode,
		notifyTimeout: DefaultNotifyTimeout,
		tracer:        otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	return e
}

// start opens a span for command.
func (e *Engine) start(ctx context.Context, command string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "circle."+command, trace.WithAttributes(attrs...))
}

// finish closes span and records the command outcome.
func (e *Engine) finish(span trace.Span, command string, err error) {
	defer span.End()
	if err == nil {
		e.metrics.commands.WithLabelValues(command, "ok").Inc()
		return
	}
	if de, ok := AsError(err); ok {
		e.metrics.commands.WithLabelValues(command, "rejected").Inc()
		e.metrics.rejections.WithLabelValues(command, string(de.Reason)).Inc()
		span.SetAttributes(attribute.String("reason", string(de.Reason)))
		span.SetStatus(codes.Error, string(de.Reason))
		return
	}
	e.metrics.commands.WithLabelValues(command, "error").Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// dispatch delivers events after a commit. Failures are logged and counted
// but never returned.
func (e *Engine) dispatch(ctx context.Context, events []notify.Event) {
	if e.notifier == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	for _, ev := range events {
		nctx, cancel := context.WithTimeout(base, e.notifyTimeout)
		err := e.notifier.Notify(nctx, ev)
		cancel()
		if err != nil {
			e.metrics.notifications.WithLabelValues(string(ev.Kind), "failed").Inc()
			slog.Warn("Notification failed",
				"user_id", ev.UserID,
				"kind", ev.Kind,
				"circle_id", ev.Data["circle_id"],
				"error", err,
			)
			continue
		}
		e.metrics.notifications.WithLabelValues(string(ev.Kind), "sent").Inc()
	}
}

// availability computes the slot view and surfaces stored-data
// inconsistencies as warnings.
func (e *Engine) availability(c *models.Circle, memberships []models.Membership) *ledger.Availability {
	a := ledger.Compute(c, memberships)
	for _, inc := range a.Inconsistencies {
		e.metrics.inconsistencies.WithLabelValues(string(inc.Kind)).Inc()
		slog.Warn("Slot ledger inconsistency",
			"circle_id", c.ID,
			"kind", inc.Kind,
			"turn", inc.Turn,
			"occupied_halves", int(inc.Occupied),
			"membership_ids", inc.MembershipIDs,
		)
	}
	return a
}

// loadCircle reads a circle, translating a missing row.
func loadCircle(ctx context.Context, q storage.Queries, circleID string) (*models.Circle, error) {
	c, err := q.GetCircle(ctx, circleID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newError(ReasonCircleNotFound, "circle %s", circleID)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// loadMembership reads a membership and its circle.
func loadMembership(ctx context.Context, q storage.Queries, membershipID string) (*models.Membership, *models.Circle, error) {
	m, err := q.GetMembership(ctx, membershipID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, newError(ReasonMembershipNotFound, "membership %s", membershipID)
	}
	if err != nil {
		return nil, nil, err
	}
	c, err := loadCircle(ctx, q, m.CircleID)
	if err != nil {
		return nil, nil, err
	}
	return m, c, nil
}

func requireOrganizer(c *models.Circle, actor Actor) error {
	if !c.IsOrganizer(actor.UserID) {
		return newError(ReasonNotOrganizer, "only the organizer of %s can do this", c.ID)
	}
	return nil
}

func requireActive(c *models.Circle) error {
	if c.Status != models.CircleStatusActive {
		return newError(ReasonCircleNotActive, "circle %s is %s", c.ID, c.Status)
	}
	return nil
}

// approved returns the active memberships.
func approved(memberships []models.Membership) []models.Membership {
	var out []models.Membership
	for _, m := range memberships {
		if m.IsActive() {
			out = append(out, m)
		}
	}
	return out
}

// holdersOf returns the active memberships on turn.
func holdersOf(memberships []models.Membership, turn int) []models.Membership {
	var out []models.Membership
	for _, m := range memberships {
		if m.IsActive() && m.TurnNumber == turn {
			out = append(out, m)
		}
	}
	return out
}

func eventData(c *models.Circle, turn int) map[string]string {
	return map[string]string{
		"circle_id":   c.ID,
		"circle_name": c.Name,
		"turn":        fmt.Sprint(turn),
	}
}
