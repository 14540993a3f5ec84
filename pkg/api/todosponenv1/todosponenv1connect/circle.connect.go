package todosponenv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/mmynk/todosponen/pkg/api/todosponenv1"
)

// CircleServiceName is the fully-qualified name of the CircleService.
const CircleServiceName = "todosponen.v1.CircleService"

// Procedure paths of the CircleService.
const (
	CircleServiceCreateCircleProcedure       = "/" + CircleServiceName + "/CreateCircle"
	CircleServiceGetCircleProcedure          = "/" + CircleServiceName + "/GetCircle"
	CircleServicePreviewCircleProcedure      = "/" + CircleServiceName + "/PreviewCircle"
	CircleServiceListMyCirclesProcedure      = "/" + CircleServiceName + "/ListMyCircles"
	CircleServiceGetAvailabilityProcedure    = "/" + CircleServiceName + "/GetAvailability"
	CircleServiceGetScheduleProcedure        = "/" + CircleServiceName + "/GetSchedule"
	CircleServiceRequestJoinProcedure        = "/" + CircleServiceName + "/RequestJoin"
	CircleServiceApproveMembershipProcedure  = "/" + CircleServiceName + "/ApproveMembership"
	CircleServiceRejectMembershipProcedure   = "/" + CircleServiceName + "/RejectMembership"
	CircleServiceListMembershipsProcedure    = "/" + CircleServiceName + "/ListMemberships"
	CircleServiceLockInProcedure             = "/" + CircleServiceName + "/LockIn"
	CircleServiceSubmitPaymentProofProcedure = "/" + CircleServiceName + "/SubmitPaymentProof"
	CircleServiceConfirmPaymentProcedure     = "/" + CircleServiceName + "/ConfirmPayment"
	CircleServiceMarkOverdueProcedure        = "/" + CircleServiceName + "/MarkOverdue"
	CircleServiceConfirmPayoutProcedure      = "/" + CircleServiceName + "/ConfirmPayout"
	CircleServiceAdvanceCycleProcedure       = "/" + CircleServiceName + "/AdvanceCycle"
	CircleServiceSuspendCircleProcedure      = "/" + CircleServiceName + "/SuspendCircle"
)

// CircleServiceHandler is implemented by the server.
// Every procedure requires an authenticated caller.
type CircleServiceHandler interface {
	CreateCircle(context.Context, *connect.Request[v1.CreateCircleRequest]) (*connect.Response[v1.CreateCircleResponse], error)
	GetCircle(context.Context, *connect.Request[v1.GetCircleRequest]) (*connect.Response[v1.GetCircleResponse], error)
	PreviewCircle(context.Context, *connect.Request[v1.PreviewCircleRequest]) (*connect.Response[v1.PreviewCircleResponse], error)
	ListMyCircles(context.Context, *connect.Request[v1.ListMyCirclesRequest]) (*connect.Response[v1.ListMyCirclesResponse], error)
	GetAvailability(context.Context, *connect.Request[v1.GetAvailabilityRequest]) (*connect.Response[v1.GetAvailabilityResponse], error)
	GetSchedule(context.Context, *connect.Request[v1.GetScheduleRequest]) (*connect.Response[v1.GetScheduleResponse], error)
	RequestJoin(context.Context, *connect.Request[v1.RequestJoinRequest]) (*connect.Response[v1.RequestJoinResponse], error)
	ApproveMembership(context.Context, *connect.Request[v1.ApproveMembershipRequest]) (*connect.Response[v1.ApproveMembershipResponse], error)
	RejectMembership(context.Context, *connect.Request[v1.RejectMembershipRequest]) (*connect.Response[v1.RejectMembershipResponse], error)
	ListMemberships(context.Context, *connect.Request[v1.ListMembershipsRequest]) (*connect.Response[v1.ListMembershipsResponse], error)
	LockIn(context.Context, *connect.Request[v1.LockInRequest]) (*connect.Response[v1.LockInResponse], error)
	SubmitPaymentProof(context.Context, *connect.Request[v1.SubmitPaymentProofRequest]) (*connect.Response[v1.SubmitPaymentProofResponse], error)
	ConfirmPayment(context.Context, *connect.Request[v1.ConfirmPaymentRequest]) (*connect.Response[v1.ConfirmPaymentResponse], error)
	MarkOverdue(context.Context, *connect.Request[v1.MarkOverdueRequest]) (*connect.Response[v1.MarkOverdueResponse], error)
	ConfirmPayout(context.Context, *connect.Request[v1.ConfirmPayoutRequest]) (*connect.Response[v1.ConfirmPayoutResponse], error)
	AdvanceCycle(context.Context, *connect.Request[v1.AdvanceCycleRequest]) (*connect.Response[v1.AdvanceCycleResponse], error)
	SuspendCircle(context.Context, *connect.Request[v1.SuspendCircleRequest]) (*connect.Response[v1.SuspendCircleResponse], error)
}

// NewCircleServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on.
func NewCircleServiceHandler(svc CircleServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	handlers := map[string]http.Handler{
		CircleServiceCreateCircleProcedure:       connect.NewUnaryHandler(CircleServiceCreateCircleProcedure, svc.CreateCircle, opts...),
		CircleServiceGetCircleProcedure:          connect.NewUnaryHandler(CircleServiceGetCircleProcedure, svc.GetCircle, opts...),
		CircleServicePreviewCircleProcedure:      connect.NewUnaryHandler(CircleServicePreviewCircleProcedure, svc.PreviewCircle, opts...),
		CircleServiceListMyCirclesProcedure:      connect.NewUnaryHandler(CircleServiceListMyCirclesProcedure, svc.ListMyCircles, opts...),
		CircleServiceGetAvailabilityProcedure:    connect.NewUnaryHandler(CircleServiceGetAvailabilityProcedure, svc.GetAvailability, opts...),
		CircleServiceGetScheduleProcedure:        connect.NewUnaryHandler(CircleServiceGetScheduleProcedure, svc.GetSchedule, opts...),
		CircleServiceRequestJoinProcedure:        connect.NewUnaryHandler(CircleServiceRequestJoinProcedure, svc.RequestJoin, opts...),
		CircleServiceApproveMembershipProcedure:  connect.NewUnaryHandler(CircleServiceApproveMembershipProcedure, svc.ApproveMembership, opts...),
		CircleServiceRejectMembershipProcedure:   connect.NewUnaryHandler(CircleServiceRejectMembershipProcedure, svc.RejectMembership, opts...),
		CircleServiceListMembershipsProcedure:    connect.NewUnaryHandler(CircleServiceListMembershipsProcedure, svc.ListMemberships, opts...),
		CircleServiceLockInProcedure:             connect.NewUnaryHandler(CircleServiceLockInProcedure, svc.LockIn, opts...),
		CircleServiceSubmitPaymentProofProcedure: connect.NewUnaryHandler(CircleServiceSubmitPaymentProofProcedure, svc.SubmitPaymentProof, opts...),
		CircleServiceConfirmPaymentProcedure:     connect.NewUnaryHandler(CircleServiceConfirmPaymentProcedure, svc.ConfirmPayment, opts...),
		CircleServiceMarkOverdueProcedure:        connect.NewUnaryHandler(CircleServiceMarkOverdueProcedure, svc.MarkOverdue, opts...),
		CircleServiceConfirmPayoutProcedure:      connect.NewUnaryHandler(CircleServiceConfirmPayoutProcedure, svc.ConfirmPayout, opts...),
		CircleServiceAdvanceCycleProcedure:       connect.NewUnaryHandler(CircleServiceAdvanceCycleProcedure, svc.AdvanceCycle, opts...),
		CircleServiceSuspendCircleProcedure:      connect.NewUnaryHandler(CircleServiceSuspendCircleProcedure, svc.SuspendCircle, opts...),
	}
	return "/" + CircleServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// CircleServiceClient calls the CircleService.
type CircleServiceClient interface {
	CreateCircle(context.Context, *connect.Request[v1.CreateCircleRequest]) (*connect.Response[v1.CreateCircleResponse], error)
	GetCircle(context.Context, *connect.Request[v1.GetCircleRequest]) (*connect.Response[v1.GetCircleResponse], error)
	PreviewCircle(context.Context, *connect.Request[v1.PreviewCircleRequest]) (*connect.Response[v1.PreviewCircleResponse], error)
	ListMyCircles(context.Context, *connect.Request[v1.ListMyCirclesRequest]) (*connect.Response[v1.ListMyCirclesResponse], error)
	GetAvailability(context.Context, *connect.Request[v1.GetAvailabilityRequest]) (*connect.Response[v1.GetAvailabilityResponse], error)
	GetSchedule(context.Context, *connect.Request[v1.GetScheduleRequest]) (*connect.Response[v1.GetScheduleResponse], error)
	RequestJoin(context.Context, *connect.Request[v1.RequestJoinRequest]) (*connect.Response[v1.RequestJoinResponse], error)
	ApproveMembership(context.Context, *connect.Request[v1.ApproveMembershipRequest]) (*connect.Response[v1.ApproveMembershipResponse], error)
	RejectMembership(context.Context, *connect.Request[v1.RejectMembershipRequest]) (*connect.Response[v1.RejectMembershipResponse], error)
	ListMemberships(context.Context, *connect.Request[v1.ListMembershipsRequest]) (*connect.Response[v1.ListMembershipsResponse], error)
	LockIn(context.Context, *connect.Request[v1.LockInRequest]) (*connect.Response[v1.LockInResponse], error)
	SubmitPaymentProof(context.Context, *connect.Request[v1.SubmitPaymentProofRequest]) (*connect.Response[v1.SubmitPaymentProofResponse], error)
	ConfirmPayment(context.Context, *connect.Request[v1.ConfirmPaymentRequest]) (*connect.Response[v1.ConfirmPaymentResponse], error)
	MarkOverdue(context.Context, *connect.Request[v1.MarkOverdueRequest]) (*connect.Response[v1.MarkOverdueResponse], error)
	ConfirmPayout(context.Context, *connect.Request[v1.ConfirmPayoutRequest]) (*connect.Response[v1.ConfirmPayoutResponse], error)
	AdvanceCycle(context.Context, *connect.Request[v1.AdvanceCycleRequest]) (*connect.Response[v1.AdvanceCycleResponse], error)
	SuspendCircle(context.Context, *connect.Request[v1.SuspendCircleRequest]) (*connect.Response[v1.SuspendCircleResponse], error)
}

// NewCircleServiceClient creates a client for the CircleService served at baseURL.
func NewCircleServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) CircleServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withJSONClient(opts)
	return &circleServiceClient{
		createCircle:       connect.NewClient[v1.CreateCircleRequest, v1.CreateCircleResponse](httpClient, baseURL+CircleServiceCreateCircleProcedure, opts...),
		getCircle:          connect.NewClient[v1.GetCircleRequest, v1.GetCircleResponse](httpClient, baseURL+CircleServiceGetCircleProcedure, opts...),
		previewCircle:      connect.NewClient[v1.PreviewCircleRequest, v1.PreviewCircleResponse](httpClient, baseURL+CircleServicePreviewCircleProcedure, opts...),
		listMyCircles:      connect.NewClient[v1.ListMyCirclesRequest, v1.ListMyCirclesResponse](httpClient, baseURL+CircleServiceListMyCirclesProcedure, opts...),
		getAvailability:    connect.NewClient[v1.GetAvailabilityRequest, v1.GetAvailabilityResponse](httpClient, baseURL+CircleServiceGetAvailabilityProcedure, opts...),
		getSchedule:        connect.NewClient[v1.GetScheduleRequest, v1.GetScheduleResponse](httpClient, baseURL+CircleServiceGetScheduleProcedure, opts...),
		requestJoin:        connect.NewClient[v1.RequestJoinRequest, v1.RequestJoinResponse](httpClient, baseURL+CircleServiceRequestJoinProcedure, opts...),
		approveMembership:  connect.NewClient[v1.ApproveMembershipRequest, v1.ApproveMembershipResponse](httpClient, baseURL+CircleServiceApproveMembershipProcedure, opts...),
		rejectMembership:   connect.NewClient[v1.RejectMembershipRequest, v1.RejectMembershipResponse](httpClient, baseURL+CircleServiceRejectMembershipProcedure, opts...),
		listMemberships:    connect.NewClient[v1.ListMembershipsRequest, v1.ListMembershipsResponse](httpClient, baseURL+CircleServiceListMembershipsProcedure, opts...),
		lockIn:             connect.NewClient[v1.LockInRequest, v1.LockInResponse](httpClient, baseURL+CircleServiceLockInProcedure, opts...),
		submitPaymentProof: connect.NewClient[v1.SubmitPaymentProofRequest, v1.SubmitPaymentProofResponse](httpClient, baseURL+CircleServiceSubmitPaymentProofProcedure, opts...),
		confirmPayment:     connect.NewClient[v1.ConfirmPaymentRequest, v1.ConfirmPaymentResponse](httpClient, baseURL+CircleServiceConfirmPaymentProcedure, opts...),
		markOverdue:        connect.NewClient[v1.MarkOverdueRequest, v1.MarkOverdueResponse](httpClient, baseURL+CircleServiceMarkOverdueProcedure, opts...),
		confirmPayout:      connect.NewClient[v1.ConfirmPayoutRequest, v1.ConfirmPayoutResponse](httpClient, baseURL+CircleServiceConfirmPayoutProcedure, opts...),
		advanceCycle:       connect.NewClient[v1.AdvanceCycleRequest, v1.AdvanceCycleResponse](httpClient, baseURL+CircleServiceAdvanceCycleProcedure, opts...),
		suspendCircle:      connect.NewClient[v1.SuspendCircleRequest, v1.SuspendCircleResponse](httpClient, baseURL+CircleServiceSuspendCircleProcedure, opts...),
	}
}

type circleServiceClient struct {
	createCircle       *connect.Client[v1.CreateCircleRequest, v1.CreateCircleResponse]
	getCircle          *connect.Client[v1.GetCircleRequest, v1.GetCircleResponse]
	previewCircle      *connect.Client[v1.PreviewCircleRequest, v1.PreviewCircleResponse]
	listMyCircles      *connect.Client[v1.ListMyCirclesRequest, v1.ListMyCirclesResponse]
	getAvailability    *connect.Client[v1.GetAvailabilityRequest, v1.GetAvailabilityResponse]
	getSchedule        *connect.Client[v1.GetScheduleRequest, v1.GetScheduleResponse]
	requestJoin        *connect.Client[v1.RequestJoinRequest, v1.RequestJoinResponse]
	approveMembership  *connect.Client[v1.ApproveMembershipRequest, v1.ApproveMembershipResponse]
	rejectMembership   *connect.Client[v1.RejectMembershipRequest, v1.RejectMembershipResponse]
	listMemberships    *connect.Client[v1.ListMembershipsRequest, v1.ListMembershipsResponse]
	lockIn             *connect.Client[v1.LockInRequest, v1.LockInResponse]
	submitPaymentProof *connect.Client[v1.SubmitPaymentProofRequest, v1.SubmitPaymentProofResponse]
	confirmPayment     *connect.Client[v1.ConfirmPaymentRequest, v1.ConfirmPaymentResponse]
	markOverdue        *connect.Client[v1.MarkOverdueRequest, v1.MarkOverdueResponse]
	confirmPayout      *connect.Client[v1.ConfirmPayoutRequest, v1.ConfirmPayoutResponse]
	advanceCycle       *connect.Client[v1.AdvanceCycleRequest, v1.AdvanceCycleResponse]
	suspendCircle      *connect.Client[v1.SuspendCircleRequest, v1.SuspendCircleResponse]
}

func (c *circleServiceClient) CreateCircle(ctx context.Context, req *connect.Request[v1.CreateCircleRequest]) (*connect.Response[v1.CreateCircleResponse], error) {
	return c.createCircle.CallUnary(ctx, req)
}

func (c *circleServiceClient) GetCircle(ctx context.Context, req *connect.Request[v1.GetCircleRequest]) (*connect.Response[v1.GetCircleResponse], error) {
	return c.getCircle.CallUnary(ctx, req)
}

func (c *circleServiceClient) PreviewCircle(ctx context.Context, req *connect.Request[v1.PreviewCircleRequest]) (*connect.Response[v1.PreviewCircleResponse], error) {
	return c.previewCircle.CallUnary(ctx, req)
}

func (c *circleServiceClient) ListMyCircles(ctx context.Context, req *connect.Request[v1.ListMyCirclesRequest]) (*connect.Response[v1.ListMyCirclesResponse], error) {
	return c.listMyCircles.CallUnary(ctx, req)
}

func (c *circleServiceClient) GetAvailability(ctx context.Context, req *connect.Request[v1.GetAvailabilityRequest]) (*connect.Response[v1.GetAvailabilityResponse], error) {
	return c.getAvailability.CallUnary(ctx, req)
}

func (c *circleServiceClient) GetSchedule(ctx context.Context, req *connect.Request[v1.GetScheduleRequest]) (*connect.Response[v1.GetScheduleResponse], error) {
	return c.getSchedule.CallUnary(ctx, req)
}

func (c *circleServiceClient) RequestJoin(ctx context.Context, req *connect.Request[v1.RequestJoinRequest]) (*connect.Response[v1.RequestJoinResponse], error) {
	return c.requestJoin.CallUnary(ctx, req)
}

func (c *circleServiceClient) ApproveMembership(ctx context.Context, req *connect.Request[v1.ApproveMembershipRequest]) (*connect.Response[v1.ApproveMembershipResponse], error) {
	return c.approveMembership.CallUnary(ctx, req)
}

func (c *circleServiceClient) RejectMembership(ctx context.Context, req *connect.Request[v1.RejectMembershipRequest]) (*connect.Response[v1.RejectMembershipResponse], error) {
	return c.rejectMembership.CallUnary(ctx, req)
}

func (c *circleServiceClient) ListMemberships(ctx context.Context, req *connect.Request[v1.ListMembershipsRequest]) (*connect.Response[v1.ListMembershipsResponse], error) {
	return c.listMemberships.CallUnary(ctx, req)
}

func (c *circleServiceClient) LockIn(ctx context.Context, req *connect.Request[v1.LockInRequest]) (*connect.Response[v1.LockInResponse], error) {
	return c.lockIn.CallUnary(ctx, req)
}

func (c *circleServiceClient) SubmitPaymentProof(ctx context.Context, req *connect.Request[v1.SubmitPaymentProofRequest]) (*connect.Response[v1.SubmitPaymentProofResponse], error) {
	return c.submitPaymentProof.CallUnary(ctx, req)
}

func (c *circleServiceClient) ConfirmPayment(ctx context.Context, req *connect.Request[v1.ConfirmPaymentRequest]) (*connect.Response[v1.ConfirmPaymentResponse], error) {
	return c.confirmPayment.CallUnary(ctx, req)
}

func (c *circleServiceClient) MarkOverdue(ctx context.Context, req *connect.Request[v1.MarkOverdueRequest]) (*connect.Response[v1.MarkOverdueResponse], error) {
	return c.markOverdue.CallUnary(ctx, req)
}

func (c *circleServiceClient) ConfirmPayout(ctx context.Context, req *connect.Request[v1.ConfirmPayoutRequest]) (*connect.Response[v1.ConfirmPayoutResponse], error) {
	return c.confirmPayout.CallUnary(ctx, req)
}

func (c *circleServiceClient) AdvanceCycle(ctx context.Context, req *connect.Request[v1.AdvanceCycleRequest]) (*connect.Response[v1.AdvanceCycleResponse], error) {
	return c.advanceCycle.CallUnary(ctx, req)
}

func (c *circleServiceClient) SuspendCircle(ctx context.Context, req *connect.Request[v1.SuspendCircleRequest]) (*connect.Response[v1.SuspendCircleResponse], error) {
	return c.suspendCircle.CallUnary(ctx, req)
}
