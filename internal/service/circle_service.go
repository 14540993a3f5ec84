package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/todosponen/internal/auth"
	"github.com/mmynk/todosponen/internal/circle"
	"github.com/mmynk/todosponen/internal/middleware"
	"github.com/mmynk/todosponen/internal/models"
	"github.com/mmynk/todosponen/internal/rotation"
	"github.com/mmynk/todosponen/internal/storage"
	v1 "github.com/mmynk/todosponen/pkg/api/todosponenv1"
	"github.com/mmynk/todosponen/pkg/api/todosponenv1/todosponenv1connect"
)

// MaxProofBytes caps the size of an uploaded payment proof.
const MaxProofBytes = 8 << 20

// CircleService implements the Connect CircleService on top of the circle engine.
type CircleService struct {
	engine *circle.Engine
	store  storage.Store
}

var _ todosponenv1connect.CircleServiceHandler = (*CircleService)(nil)

// NewCircleService creates a CircleService. store resolves the acting user and
// member display names.
func NewCircleService(engine *circle.Engine, store storage.Store) *CircleService {
	return &CircleService{engine: engine, store: store}
}

// actor loads the acting user named by the identity the auth interceptor
// placed on ctx. The role is read from the store so promotions and deleted
// accounts take effect before the token expires.
func (s *CircleService) actor(ctx context.Context) (circle.Actor, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return circle.Actor{}, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return circle.Actor{}, connect.NewError(connect.CodeUnauthenticated, errUnknownUser)
	}
	if err != nil {
		slog.Error("Failed to load acting user", "user_id", userID, "error", err)
		return circle.Actor{}, connect.NewError(connect.CodeInternal, errInternal)
	}
	return circle.Actor{UserID: user.ID, Role: user.Role}, nil
}

// names resolves display names for the members of memberships. Lookup
// failures only cost the names.
func (s *CircleService) names(ctx context.Context, memberships []models.Membership) map[string]*models.User {
	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		slog.Warn("Failed to resolve member names", "error", err)
		return nil
	}
	return users
}

// CreateCircle creates a pending circle organized by the caller.
func (s *CircleService) CreateCircle(ctx context.Context, req *connect.Request[v1.CreateCircleRequest]) (*connect.Response[v1.CreateCircleResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateCircle request received",
		"user_id", actor.UserID,
		"participant_count", req.Msg.ParticipantCount,
		"frequency", req.Msg.Frequency,
	)

	start, err := rotation.ParseDate(req.Msg.StartDate)
	if err != nil {
		return nil, toConnectError("CreateCircle", &circle.Error{
			Kind:    circle.KindValidation,
			Reason:  circle.ReasonInvalidInput,
			Message: err.Error(),
		})
	}

	c, err := s.engine.CreateCircle(ctx, actor, circle.CreateParams{
		Name:               req.Msg.Name,
		ContributionAmount: req.Msg.ContributionAmount,
		Frequency:          models.Frequency(req.Msg.Frequency),
		ParticipantCount:   int(req.Msg.ParticipantCount),
		StartDate:          start,
		TurnAssignmentMode: models.TurnAssignmentMode(req.Msg.TurnAssignmentMode),
		AllowHalfShares:    req.Msg.AllowHalfShares,
		MaxHalfShares:      int(req.Msg.MaxHalfShares),
	})
	if err != nil {
		return nil, toConnectError("CreateCircle", err)
	}

	return connect.NewResponse(&v1.CreateCircleResponse{Circle: toCircle(c)}), nil
}

// GetCircle returns a circle the caller organizes or belongs to.
func (s *CircleService) GetCircle(ctx context.Context, req *connect.Request[v1.GetCircleRequest]) (*connect.Response[v1.GetCircleResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.engine.GetCircle(ctx, actor, req.Msg.CircleId)
	if err != nil {
		return nil, toConnectError("GetCircle", err)
	}
	return connect.NewResponse(&v1.GetCircleResponse{Circle: toCircle(c)}), nil
}

// PreviewCircle resolves an invite code for a prospective member.
func (s *CircleService) PreviewCircle(ctx context.Context, req *connect.Request[v1.PreviewCircleRequest]) (*connect.Response[v1.PreviewCircleResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, a, err := s.engine.Preview(ctx, actor, req.Msg.InviteCode)
	if err != nil {
		return nil, toConnectError("PreviewCircle", err)
	}
	return connect.NewResponse(&v1.PreviewCircleResponse{
		Circle:       toCircle(c),
		Availability: toAvailability(c.ID, a),
	}), nil
}

// ListMyCircles returns the circles the caller organizes or belongs to.
func (s *CircleService) ListMyCircles(ctx context.Context, req *connect.Request[v1.ListMyCirclesRequest]) (*connect.Response[v1.ListMyCirclesResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	circles, err := s.engine.ListMyCircles(ctx, actor)
	if err != nil {
		return nil, toConnectError("ListMyCircles", err)
	}
	return connect.NewResponse(&v1.ListMyCirclesResponse{Circles: toCircles(circles)}), nil
}

// GetAvailability returns the slot view of a circle.
func (s *CircleService) GetAvailability(ctx context.Context, req *connect.Request[v1.GetAvailabilityRequest]) (*connect.Response[v1.GetAvailabilityResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.engine.GetAvailability(ctx, actor, req.Msg.CircleId)
	if err != nil {
		return nil, toConnectError("GetAvailability", err)
	}
	return connect.NewResponse(&v1.GetAvailabilityResponse{Availability: toAvailability(req.Msg.CircleId, a)}), nil
}

// GetSchedule returns every turn with its due date and holders.
func (s *CircleService) GetSchedule(ctx context.Context, req *connect.Request[v1.GetScheduleRequest]) (*connect.Response[v1.GetScheduleResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.engine.GetSchedule(ctx, actor, req.Msg.CircleId)
	if err != nil {
		return nil, toConnectError("GetSchedule", err)
	}
	return connect.NewResponse(&v1.GetScheduleResponse{Entries: toSchedule(entries)}), nil
}

// RequestJoin asks to join a circle on a turn with a full or half share.
func (s *CircleService) RequestJoin(ctx context.Context, req *connect.Request[v1.RequestJoinRequest]) (*connect.Response[v1.RequestJoinResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RequestJoin request received",
		"user_id", actor.UserID,
		"turn", req.Msg.TurnNumber,
		"share", req.Msg.SharePercentage,
	)

	share, err := models.ShareFromPercentage(req.Msg.SharePercentage)
	if err != nil {
		return nil, toConnectError("RequestJoin", &circle.Error{
			Kind:    circle.KindValidation,
			Reason:  circle.ReasonInvalidInput,
			Message: err.Error(),
		})
	}

	m, err := s.engine.RequestJoin(ctx, actor, req.Msg.InviteCode, int(req.Msg.TurnNumber), share)
	if err != nil {
		return nil, toConnectError("RequestJoin", err)
	}
	return connect.NewResponse(&v1.RequestJoinResponse{Membership: toMembership(m, nil)}), nil
}

// ApproveMembership accepts a pending join request.
func (s *CircleService) ApproveMembership(ctx context.Context, req *connect.Request[v1.ApproveMembershipRequest]) (*connect.Response[v1.ApproveMembershipResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.engine.Approve(ctx, actor, req.Msg.MembershipId)
	if err != nil {
		return nil, toConnectError("ApproveMembership", err)
	}
	return connect.NewResponse(&v1.ApproveMembershipResponse{Membership: toMembership(m, nil)}), nil
}

// RejectMembership declines a pending join request.
func (s *CircleService) RejectMembership(ctx context.Context, req *connect.Request[v1.RejectMembershipRequest]) (*connect.Response[v1.RejectMembershipResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.engine.Reject(ctx, actor, req.Msg.MembershipId)
	if err != nil {
		return nil, toConnectError("RejectMembership", err)
	}
	return connect.NewResponse(&v1.RejectMembershipResponse{Membership: toMembership(m, nil)}), nil
}

// ListMemberships returns a circle's memberships with member names.
func (s *CircleService) ListMemberships(ctx context.Context, req *connect.Request[v1.ListMembershipsRequest]) (*connect.Response[v1.ListMembershipsResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	memberships, err := s.engine.ListMemberships(ctx, actor, req.Msg.CircleId)
	if err != nil {
		return nil, toConnectError("ListMemberships", err)
	}
	return connect.NewResponse(&v1.ListMembershipsResponse{
		Memberships: toMemberships(memberships, s.names(ctx, memberships)),
	}), nil
}

// LockIn activates a pending circle and fixes its turns.
func (s *CircleService) LockIn(ctx context.Context, req *connect.Request[v1.LockInRequest]) (*connect.Response[v1.LockInResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.engine.LockIn(ctx, actor, req.Msg.CircleId)
	if err != nil {
		return nil, toConnectError("LockIn", err)
	}
	return connect.NewResponse(&v1.LockInResponse{Circle: toCircle(c)}), nil
}

// SubmitPaymentProof uploads the caller's proof of payment for the current cycle.
func (s *CircleService) SubmitPaymentProof(ctx context.Context, req *connect.Request[v1.SubmitPaymentProofRequest]) (*connect.Response[v1.SubmitPaymentProofResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if len(req.Msg.Content) == 0 || len(req.Msg.Content) > MaxProofBytes {
		return nil, toConnectError("SubmitPaymentProof", &circle.Error{
			Kind:    circle.KindValidation,
			Reason:  circle.ReasonInvalidInput,
			Message: "proof must be between 1 byte and 8 MiB",
		})
	}
	m, err := s.engine.SubmitPaymentProof(ctx, actor, req.Msg.CircleId, req.Msg.Filename, bytes.NewReader(req.Msg.Content))
	if err != nil {
		return nil, toConnectError("SubmitPaymentProof", err)
	}
	return connect.NewResponse(&v1.SubmitPaymentProofResponse{Membership: toMembership(m, nil)}), nil
}

// ConfirmPayment marks a reviewed payment as paid.
func (s *CircleService) ConfirmPayment(ctx context.Context, req *connect.Request[v1.ConfirmPaymentRequest]) (*connect.Response[v1.ConfirmPaymentResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.engine.ConfirmPayment(ctx, actor, req.Msg.MembershipId)
	if err != nil {
		return nil, toConnectError("ConfirmPayment", err)
	}
	return connect.NewResponse(&v1.ConfirmPaymentResponse{Membership: toMembership(m, nil)}), nil
}

// MarkOverdue flags unpaid contributions past the current due date.
func (s *CircleService) MarkOverdue(ctx context.Context, req *connect.Request[v1.MarkOverdueRequest]) (*connect.Response[v1.MarkOverdueResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	late, err := s.engine.MarkOverdue(ctx, actor, req.Msg.CircleId, time.Time{})
	if err != nil {
		return nil, toConnectError("MarkOverdue", err)
	}
	return connect.NewResponse(&v1.MarkOverdueResponse{Memberships: toMemberships(late, nil)}), nil
}

// ConfirmPayout records that the current turn has been paid out.
func (s *CircleService) ConfirmPayout(ctx context.Context, req *connect.Request[v1.ConfirmPayoutRequest]) (*connect.Response[v1.ConfirmPayoutResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.engine.ConfirmPayout(ctx, actor, req.Msg.CircleId)
	if err != nil {
		return nil, toConnectError("ConfirmPayout", err)
	}
	return connect.NewResponse(&v1.ConfirmPayoutResponse{Circle: toCircle(c)}), nil
}

// AdvanceCycle moves the circle to its next turn.
func (s *CircleService) AdvanceCycle(ctx context.Context, req *connect.Request[v1.AdvanceCycleRequest]) (*connect.Response[v1.AdvanceCycleResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.engine.AdvanceCycle(ctx, actor, req.Msg.CircleId)
	if err != nil {
		return nil, toConnectError("AdvanceCycle", err)
	}
	return connect.NewResponse(&v1.AdvanceCycleResponse{Circle: toCircle(c)}), nil
}

// SuspendCircle freezes a circle. Admins only.
func (s *CircleService) SuspendCircle(ctx context.Context, req *connect.Request[v1.SuspendCircleRequest]) (*connect.Response[v1.SuspendCircleResponse], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SuspendCircle request received", "user_id", actor.UserID, "circle_id", req.Msg.CircleId)
	c, err := s.engine.SuspendCircle(ctx, actor, req.Msg.CircleId)
	if err != nil {
		return nil, toConnectError("SuspendCircle", err)
	}
	return connect.NewResponse(&v1.SuspendCircleResponse{Circle: toCircle(c)}), nil
}
