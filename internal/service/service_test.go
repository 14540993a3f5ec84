package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/todosponen/internal/auth"
	"github.com/mmynk/todosponen/internal/blob"
	"github.com/mmynk/todosponen/internal/circle"
	"github.com/mmynk/todosponen/internal/middleware"
	"github.com/mmynk/todosponen/internal/models"
	"github.com/mmynk/todosponen/internal/storage/sqlite"
	v1 "github.com/mmynk/todosponen/pkg/api/todosponenv1"
	"github.com/mmynk/todosponen/pkg/api/todosponenv1/todosponenv1connect"
)

type testServer struct {
	circles  todosponenv1connect.CircleServiceClient
	accounts todosponenv1connect.AccountServiceClient
	store    *sqlite.SQLiteStore
	blobDir  string
}

// setupTestServer creates a test server with both services behind the auth
// and logging interceptors.
func setupTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "todosponen-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	store, err := sqlite.New(filepath.Join(dir, "test.db"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("failed to create store: %v", err)
	}

	blobDir := filepath.Join(dir, "blobs")
	blobs, err := blob.NewLocalStore(blobDir)
	if err != nil {
		store.Close()
		os.RemoveAll(dir)
		t.Fatalf("failed to create blob store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := circle.New(store, circle.WithBlobStore(blobs))

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, PublicProcedures...),
		middleware.LoggingInterceptor(),
	)
	circlePath, circleHandler := todosponenv1connect.NewCircleServiceHandler(NewCircleService(engine, store), interceptors)
	accountPath, accountHandler := todosponenv1connect.NewAccountServiceHandler(
		NewAccountService(auth.NewPasswordAuthenticator(store), jwtManager, store, logger),
		interceptors,
	)

	mux := http.NewServeMux()
	mux.Handle(circlePath, circleHandler)
	mux.Handle(accountPath, accountHandler)

	server := httptest.NewServer(mux)

	ts := &testServer{
		circles:  todosponenv1connect.NewCircleServiceClient(http.DefaultClient, server.URL),
		accounts: todosponenv1connect.NewAccountServiceClient(http.DefaultClient, server.URL),
		store:    store,
		blobDir:  blobDir,
	}

	cleanup := func() {
		server.Close()
		store.Close()
		os.RemoveAll(dir)
	}

	return ts, cleanup
}

// authed wraps msg in a request carrying token.
func authed[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

// member registers an account and fills in its payout details.
func (ts *testServer) member(t *testing.T, name string) (string, *v1.User) {
	t.Helper()
	ctx := context.Background()

	resp, err := ts.accounts.Register(ctx, connect.NewRequest(&v1.RegisterRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Password:    "password-" + name,
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}
	token := resp.Msg.Token

	updated, err := ts.accounts.UpdateProfile(ctx, authed(token, &v1.UpdateProfileRequest{
		DisplayName:   name,
		BankName:      "Banco Popular",
		AccountNumber: "0001-" + name,
		NationalId:    "001-" + name,
	}))
	if err != nil {
		t.Fatalf("UpdateProfile(%s) failed: %v", name, err)
	}
	return token, updated.Msg.User
}

func createRequest(participants int32) *v1.CreateCircleRequest {
	return &v1.CreateCircleRequest{
		Name:               "Office SANG",
		ContributionAmount: 10000,
		Frequency:          "monthly",
		ParticipantCount:   participants,
		StartDate:          "2025-03-01",
		TurnAssignmentMode: "manual",
	}
}

func expectCode(t *testing.T, err error, code connect.Code, reason circle.Reason) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("code: expected %s, got %s (%v)", code, got, err)
	}
	if reason != "" && Reason(err) != reason {
		t.Fatalf("reason: expected %s, got %q", reason, Reason(err))
	}
}

func TestAccountService(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	resp, err := ts.accounts.Register(ctx, connect.NewRequest(&v1.RegisterRequest{
		Email:       "maria@example.com",
		DisplayName: "Maria",
		Password:    "long-password",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Msg.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.Msg.User.Role != string(models.RoleMember) {
		t.Errorf("role: expected member, got %q", resp.Msg.User.Role)
	}
	if resp.Msg.User.HasPayoutDetails {
		t.Error("new account should not have payout details")
	}
	token := resp.Msg.Token

	t.Run("duplicate email", func(t *testing.T) {
		_, err := ts.accounts.Register(ctx, connect.NewRequest(&v1.RegisterRequest{
			Email:       "MARIA@example.com",
			DisplayName: "Other",
			Password:    "long-password",
		}))
		expectCode(t, err, connect.CodeAlreadyExists, "")
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := ts.accounts.Register(ctx, connect.NewRequest(&v1.RegisterRequest{
			Email:       "jose@example.com",
			DisplayName: "Jose",
			Password:    "short",
		}))
		expectCode(t, err, connect.CodeInvalidArgument, "")
	})

	t.Run("login", func(t *testing.T) {
		login, err := ts.accounts.Login(ctx, connect.NewRequest(&v1.LoginRequest{
			Email:    "maria@example.com",
			Password: "long-password",
		}))
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if login.Msg.User.Id != resp.Msg.User.Id {
			t.Errorf("expected user %s, got %s", resp.Msg.User.Id, login.Msg.User.Id)
		}

		_, err = ts.accounts.Login(ctx, connect.NewRequest(&v1.LoginRequest{
			Email:    "maria@example.com",
			Password: "wrong-password",
		}))
		expectCode(t, err, connect.CodeUnauthenticated, "")
	})

	t.Run("profile requires token", func(t *testing.T) {
		_, err := ts.accounts.GetProfile(ctx, connect.NewRequest(&v1.GetProfileRequest{}))
		expectCode(t, err, connect.CodeUnauthenticated, "")

		_, err = ts.accounts.GetProfile(ctx, authed("not-a-token", &v1.GetProfileRequest{}))
		expectCode(t, err, connect.CodeUnauthenticated, "")
	})

	t.Run("update profile", func(t *testing.T) {
		updated, err := ts.accounts.UpdateProfile(ctx, authed(token, &v1.UpdateProfileRequest{
			DisplayName:   " Maria P ",
			BankName:      "Banreservas",
			AccountNumber: "123456",
			NationalId:    "402-0000000-1",
			PushToken:     "device-token",
		}))
		if err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		if !updated.Msg.User.HasPayoutDetails {
			t.Error("expected payout details to be complete")
		}
		if updated.Msg.User.DisplayName != "Maria P" {
			t.Errorf("display name: expected trimmed name, got %q", updated.Msg.User.DisplayName)
		}

		profile, err := ts.accounts.GetProfile(ctx, authed(token, &v1.GetProfileRequest{}))
		if err != nil {
			t.Fatalf("GetProfile failed: %v", err)
		}
		if profile.Msg.User.BankName != "Banreservas" {
			t.Errorf("bank name: expected Banreservas, got %q", profile.Msg.User.BankName)
		}

		stored, err := ts.store.Profile(ctx, resp.Msg.User.Id)
		if err != nil {
			t.Fatalf("Profile failed: %v", err)
		}
		if stored.PushToken != "device-token" {
			t.Errorf("push token: expected device-token, got %q", stored.PushToken)
		}

		_, err = ts.accounts.UpdateProfile(ctx, authed(token, &v1.UpdateProfileRequest{DisplayName: "  "}))
		expectCode(t, err, connect.CodeInvalidArgument, "")
	})
}

func TestCircleServiceLifecycle(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	organizer, _ := ts.member(t, "organizer")
	alice, aliceUser := ts.member(t, "alice")
	bob, _ := ts.member(t, "bob")

	created, err := ts.circles.CreateCircle(ctx, authed(organizer, createRequest(2)))
	if err != nil {
		t.Fatalf("CreateCircle failed: %v", err)
	}
	c := created.Msg.Circle
	if c.Status != "pending" || len(c.InviteCode) != 6 {
		t.Fatalf("unexpected circle: %+v", c)
	}
	if c.PotAmount != 20000 {
		t.Errorf("pot: expected 20000, got %d", c.PotAmount)
	}

	preview, err := ts.circles.PreviewCircle(ctx, authed(alice, &v1.PreviewCircleRequest{InviteCode: c.InviteCode}))
	if err != nil {
		t.Fatalf("PreviewCircle failed: %v", err)
	}
	if got := preview.Msg.Availability.SelectableFull; len(got) != 2 {
		t.Errorf("selectable full turns: expected 2, got %v", got)
	}

	var memberships []*v1.Membership
	for i, token := range []string{alice, bob} {
		resp, err := ts.circles.RequestJoin(ctx, authed(token, &v1.RequestJoinRequest{
			InviteCode:      c.InviteCode,
			TurnNumber:      int32(i + 1),
			SharePercentage: 1.0,
		}))
		if err != nil {
			t.Fatalf("RequestJoin(turn %d) failed: %v", i+1, err)
		}
		memberships = append(memberships, resp.Msg.Membership)
	}

	for _, m := range memberships {
		if _, err := ts.circles.ApproveMembership(ctx, authed(organizer, &v1.ApproveMembershipRequest{MembershipId: m.Id})); err != nil {
			t.Fatalf("ApproveMembership failed: %v", err)
		}
	}

	list, err := ts.circles.ListMemberships(ctx, authed(organizer, &v1.ListMembershipsRequest{CircleId: c.Id}))
	if err != nil {
		t.Fatalf("ListMemberships failed: %v", err)
	}
	if len(list.Msg.Memberships) != 2 || list.Msg.Memberships[0].DisplayName != "alice" {
		t.Fatalf("unexpected memberships: %+v", list.Msg.Memberships)
	}

	locked, err := ts.circles.LockIn(ctx, authed(organizer, &v1.LockInRequest{CircleId: c.Id}))
	if err != nil {
		t.Fatalf("LockIn failed: %v", err)
	}
	if locked.Msg.Circle.Status != "active" || locked.Msg.Circle.CurrentTurn != 1 {
		t.Fatalf("unexpected circle after lock-in: %+v", locked.Msg.Circle)
	}

	schedule, err := ts.circles.GetSchedule(ctx, authed(bob, &v1.GetScheduleRequest{CircleId: c.Id}))
	if err != nil {
		t.Fatalf("GetSchedule failed: %v", err)
	}
	if len(schedule.Msg.Entries) != 2 || schedule.Msg.Entries[1].DueDate != "2025-04-01" || !schedule.Msg.Entries[0].Current {
		t.Fatalf("unexpected schedule: %+v", schedule.Msg.Entries)
	}
	if holders := schedule.Msg.Entries[0].HolderIds; len(holders) != 1 || holders[0] != aliceUser.Id {
		t.Errorf("turn 1 holders: expected alice, got %v", holders)
	}

	proof, err := ts.circles.SubmitPaymentProof(ctx, authed(bob, &v1.SubmitPaymentProofRequest{
		CircleId: c.Id,
		Filename: "receipt.PNG",
		Content:  []byte("fake png"),
	}))
	if err != nil {
		t.Fatalf("SubmitPaymentProof failed: %v", err)
	}
	if proof.Msg.Membership.PaymentStatus != "reviewing" || proof.Msg.Membership.PaymentProofRef == "" {
		t.Fatalf("unexpected membership after proof: %+v", proof.Msg.Membership)
	}

	if _, err := ts.circles.ConfirmPayment(ctx, authed(organizer, &v1.ConfirmPaymentRequest{MembershipId: proof.Msg.Membership.Id})); err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}

	_, err = ts.circles.AdvanceCycle(ctx, authed(organizer, &v1.AdvanceCycleRequest{CircleId: c.Id}))
	expectCode(t, err, connect.CodeFailedPrecondition, circle.ReasonPayoutPending)

	if _, err := ts.circles.ConfirmPayout(ctx, authed(organizer, &v1.ConfirmPayoutRequest{CircleId: c.Id})); err != nil {
		t.Fatalf("ConfirmPayout failed: %v", err)
	}
	advanced, err := ts.circles.AdvanceCycle(ctx, authed(organizer, &v1.AdvanceCycleRequest{CircleId: c.Id}))
	if err != nil {
		t.Fatalf("AdvanceCycle failed: %v", err)
	}
	if advanced.Msg.Circle.CurrentTurn != 2 || advanced.Msg.Circle.PayoutStatus != "collecting" {
		t.Fatalf("unexpected circle after advance: %+v", advanced.Msg.Circle)
	}

	done, err := ts.circles.ConfirmPayout(ctx, authed(organizer, &v1.ConfirmPayoutRequest{CircleId: c.Id}))
	if err != nil {
		t.Fatalf("final ConfirmPayout failed: %v", err)
	}
	if done.Msg.Circle.Status != "completed" {
		t.Errorf("status: expected completed, got %s", done.Msg.Circle.Status)
	}

	mine, err := ts.circles.ListMyCircles(ctx, authed(alice, &v1.ListMyCirclesRequest{}))
	if err != nil {
		t.Fatalf("ListMyCircles failed: %v", err)
	}
	if len(mine.Msg.Circles) != 1 || mine.Msg.Circles[0].Id != c.Id {
		t.Errorf("expected alice to see the circle, got %+v", mine.Msg.Circles)
	}
}

func TestCircleServiceErrors(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	organizer, _ := ts.member(t, "organizer")
	alice, _ := ts.member(t, "alice")
	bob, _ := ts.member(t, "bob")

	created, err := ts.circles.CreateCircle(ctx, authed(organizer, createRequest(3)))
	if err != nil {
		t.Fatalf("CreateCircle failed: %v", err)
	}
	c := created.Msg.Circle

	joined, err := ts.circles.RequestJoin(ctx, authed(alice, &v1.RequestJoinRequest{
		InviteCode:      c.InviteCode,
		TurnNumber:      1,
		SharePercentage: 1.0,
	}))
	if err != nil {
		t.Fatalf("RequestJoin failed: %v", err)
	}

	incomplete, err := ts.accounts.Register(ctx, connect.NewRequest(&v1.RegisterRequest{
		Email:       "nobank@example.com",
		DisplayName: "No Bank",
		Password:    "long-password",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name   string
		call   func() error
		code   connect.Code
		reason circle.Reason
	}{
		{
			name: "unauthenticated",
			call: func() error {
				_, err := ts.circles.ListMyCircles(ctx, connect.NewRequest(&v1.ListMyCirclesRequest{}))
				return err
			},
			code: connect.CodeUnauthenticated,
		},
		{
			name: "bad start date",
			call: func() error {
				req := createRequest(3)
				req.StartDate = "01/03/2025"
				_, err := ts.circles.CreateCircle(ctx, authed(organizer, req))
				return err
			},
			code:   connect.CodeInvalidArgument,
			reason: circle.ReasonInvalidInput,
		},
		{
			name: "bad share",
			call: func() error {
				_, err := ts.circles.RequestJoin(ctx, authed(bob, &v1.RequestJoinRequest{
					InviteCode:      c.InviteCode,
					TurnNumber:      2,
					SharePercentage: 0.25,
				}))
				return err
			},
			code:   connect.CodeInvalidArgument,
			reason: circle.ReasonInvalidInput,
		},
		{
			name: "incomplete profile",
			call: func() error {
				_, err := ts.circles.RequestJoin(ctx, authed(incomplete.Msg.Token, &v1.RequestJoinRequest{
					InviteCode:      c.InviteCode,
					TurnNumber:      1,
					SharePercentage: 1.0,
				}))
				return err
			},
			code:   connect.CodeInvalidArgument,
			reason: circle.ReasonIncompleteProfile,
		},
		{
			name: "turn full",
			call: func() error {
				_, err := ts.circles.RequestJoin(ctx, authed(bob, &v1.RequestJoinRequest{
					InviteCode:      c.InviteCode,
					TurnNumber:      1,
					SharePercentage: 1.0,
				}))
				return err
			},
			code:   connect.CodeResourceExhausted,
			reason: circle.ReasonTurnFull,
		},
		{
			name: "unknown invite code",
			call: func() error {
				_, err := ts.circles.PreviewCircle(ctx, authed(bob, &v1.PreviewCircleRequest{InviteCode: "ZZZZZZ"}))
				return err
			},
			code:   connect.CodeNotFound,
			reason: circle.ReasonCircleNotFound,
		},
		{
			name: "approve by non-organizer",
			call: func() error {
				_, err := ts.circles.ApproveMembership(ctx, authed(bob, &v1.ApproveMembershipRequest{MembershipId: joined.Msg.Membership.Id}))
				return err
			},
			code:   connect.CodePermissionDenied,
			reason: circle.ReasonNotOrganizer,
		},
		{
			name: "outsider reads circle",
			call: func() error {
				_, err := ts.circles.GetCircle(ctx, authed(bob, &v1.GetCircleRequest{CircleId: c.Id}))
				return err
			},
			code:   connect.CodePermissionDenied,
			reason: circle.ReasonNotMember,
		},
		{
			name: "lock in with pending requests",
			call: func() error {
				_, err := ts.circles.LockIn(ctx, authed(organizer, &v1.LockInRequest{CircleId: c.Id}))
				return err
			},
			code:   connect.CodeInvalidArgument,
			reason: circle.ReasonPendingRequests,
		},
		{
			name: "suspend by non-admin",
			call: func() error {
				_, err := ts.circles.SuspendCircle(ctx, authed(organizer, &v1.SuspendCircleRequest{CircleId: c.Id}))
				return err
			},
			code:   connect.CodePermissionDenied,
			reason: circle.ReasonNotAdmin,
		},
		{
			name: "empty proof",
			call: func() error {
				_, err := ts.circles.SubmitPaymentProof(ctx, authed(alice, &v1.SubmitPaymentProofRequest{CircleId: c.Id, Filename: "a.png"}))
				return err
			},
			code:   connect.CodeInvalidArgument,
			reason: circle.ReasonInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectCode(t, tt.call(), tt.code, tt.reason)
		})
	}
}

func TestCircleServiceResolvesActorFromStore(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	adminToken, adminUser := ts.member(t, "rosa")
	orgToken, _ := ts.member(t, "luis")

	created, err := ts.circles.CreateCircle(ctx, authed(orgToken, createRequest(3)))
	if err != nil {
		t.Fatalf("CreateCircle failed: %v", err)
	}
	circleID := created.Msg.Circle.Id

	_, err = ts.circles.SuspendCircle(ctx, authed(adminToken, &v1.SuspendCircleRequest{CircleId: circleID}))
	expectCode(t, err, connect.CodePermissionDenied, circle.ReasonNotAdmin)

	// Promote without issuing a new token.
	user, err := ts.store.GetUserByID(ctx, adminUser.Id)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	user.Role = models.RoleAdmin
	if err := ts.store.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	suspended, err := ts.circles.SuspendCircle(ctx, authed(adminToken, &v1.SuspendCircleRequest{CircleId: circleID}))
	if err != nil {
		t.Fatalf("SuspendCircle after promotion failed: %v", err)
	}
	if suspended.Msg.Circle.Status != string(models.CircleStatusSuspended) {
		t.Errorf("status: expected suspended, got %s", suspended.Msg.Circle.Status)
	}

	if err := ts.store.ResetData(ctx, adminUser.Id); err != nil {
		t.Fatalf("ResetData failed: %v", err)
	}
	_, err = ts.circles.ListMyCircles(ctx, authed(orgToken, &v1.ListMyCirclesRequest{}))
	expectCode(t, err, connect.CodeUnauthenticated, "")

	if _, err := ts.circles.ListMyCircles(ctx, authed(adminToken, &v1.ListMyCirclesRequest{})); err != nil {
		t.Errorf("ListMyCircles for kept admin failed: %v", err)
	}
}

func TestToConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code connect.Code
	}{
		{"validation", circle.ErrTurnOutOfRange, connect.CodeInvalidArgument},
		{"capacity", circle.ErrHalfShareCapacityExceeded, connect.CodeResourceExhausted},
		{"not found", circle.ErrMembershipNotFound, connect.CodeNotFound},
		{"permission", circle.ErrNotOrganizer, connect.CodePermissionDenied},
		{"state", circle.ErrCircleNotActive, connect.CodeFailedPrecondition},
		{"canceled", context.Canceled, connect.CodeCanceled},
		{"storage", errors.New("disk I/O error"), connect.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := toConnectError("Test", tt.err)
			if got := connect.CodeOf(err); got != tt.code {
				t.Errorf("expected %s, got %s", tt.code, got)
			}
		})
	}

	t.Run("internal errors are hidden", func(t *testing.T) {
		var cerr *connect.Error
		if !errors.As(toConnectError("Test", errors.New("secret path /var/db")), &cerr) {
			t.Fatal("expected a connect error")
		}
		if cerr.Message() != errInternal.Error() {
			t.Errorf("message leaked: %q", cerr.Message())
		}
	})

	t.Run("reason travels in metadata", func(t *testing.T) {
		err := toConnectError("Test", circle.ErrTurnFull)
		if Reason(err) != circle.ReasonTurnFull {
			t.Errorf("expected TURN_FULL, got %q", Reason(err))
		}
	})

	if toConnectError("Test", nil) != nil {
		t.Error("nil error should stay nil")
	}
}
