package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/todosponen/internal/models"
	"github.com/mmynk/todosponen/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "todosponen-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func createUser(t *testing.T, store *SQLiteStore, email string) *models.User {
	t.Helper()
	user := models.NewUser(email, email, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func newCircle(organizerID, code string) *models.Circle {
	return &models.Circle{
		Name:               "Family SANG",
		ContributionAmount: 1000,
		Frequency:          models.FrequencyMonthly,
		ParticipantCount:   4,
		StartDate:          time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		TurnAssignmentMode: models.TurnAssignmentManual,
		OrganizerID:        organizerID,
		Status:             models.CircleStatusPending,
		InviteCode:         code,
		PayoutStatus:       models.PayoutStatusCollecting,
		AllowHalfShares:    true,
		MaxHalfShares:      1,
	}
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	organizer := createUser(t, store, "org@example.com")
	member := createUser(t, store, "member@example.com")

	t.Run("CreateCircle generates ID and defaults", func(t *testing.T) {
		circle := newCircle(organizer.ID, "ABC123")
		circle.CurrentTurn = 0

		if err := store.CreateCircle(ctx, circle); err != nil {
			t.Fatalf("CreateCircle failed: %v", err)
		}
		if circle.ID == "" {
			t.Error("Expected circle ID to be generated")
		}
		if circle.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		if circle.CurrentTurn != 1 {
			t.Errorf("CurrentTurn = %d, want 1", circle.CurrentTurn)
		}
	})

	t.Run("GetCircle round-trips all fields", func(t *testing.T) {
		original := newCircle(organizer.ID, "RND001")
		if err := store.CreateCircle(ctx, original); err != nil {
			t.Fatalf("CreateCircle failed: %v", err)
		}

		got, err := store.GetCircle(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetCircle failed: %v", err)
		}
		if got.Name != original.Name || got.ContributionAmount != original.ContributionAmount {
			t.Errorf("got %+v, want %+v", got, original)
		}
		if !got.StartDate.Equal(original.StartDate) {
			t.Errorf("StartDate = %v, want %v", got.StartDate, original.StartDate)
		}
		if !got.AllowHalfShares || got.MaxHalfShares != 1 {
			t.Errorf("half share settings = %v/%d, want true/1", got.AllowHalfShares, got.MaxHalfShares)
		}
		if got.Frequency != models.FrequencyMonthly || got.TurnAssignmentMode != models.TurnAssignmentManual {
			t.Errorf("frequency/mode = %s/%s", got.Frequency, got.TurnAssignmentMode)
		}

		byCode, err := store.GetCircleByInviteCode(ctx, "RND001")
		if err != nil {
			t.Fatalf("GetCircleByInviteCode failed: %v", err)
		}
		if byCode.ID != original.ID {
			t.Errorf("GetCircleByInviteCode ID = %s, want %s", byCode.ID, original.ID)
		}
	})

	t.Run("duplicate invite code is a conflict", func(t *testing.T) {
		if err := store.CreateCircle(ctx, newCircle(organizer.ID, "DUP001")); err != nil {
			t.Fatalf("CreateCircle failed: %v", err)
		}
		err := store.CreateCircle(ctx, newCircle(organizer.ID, "DUP001"))
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("missing rows wrap ErrNotFound", func(t *testing.T) {
		if _, err := store.GetCircle(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetCircle: expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetCircleByInviteCode(ctx, "ZZZZZZ"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetCircleByInviteCode: expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetMembership(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetMembership: expected ErrNotFound, got %v", err)
		}
		if err := store.DeleteMembership(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("DeleteMembership: expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetUserByEmail: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateCircle persists lifecycle fields", func(t *testing.T) {
		circle := newCircle(organizer.ID, "UPD001")
		if err := store.CreateCircle(ctx, circle); err != nil {
			t.Fatalf("CreateCircle failed: %v", err)
		}

		circle.Status = models.CircleStatusActive
		circle.CurrentTurn = 3
		circle.PayoutStatus = models.PayoutStatusPaidOut
		if err := store.UpdateCircle(ctx, circle); err != nil {
			t.Fatalf("UpdateCircle failed: %v", err)
		}

		got, err := store.GetCircle(ctx, circle.ID)
		if err != nil {
			t.Fatalf("GetCircle failed: %v", err)
		}
		if got.Status != models.CircleStatusActive || got.CurrentTurn != 3 || got.PayoutStatus != models.PayoutStatusPaidOut {
			t.Errorf("got status=%s turn=%d payout=%s", got.Status, got.CurrentTurn, got.PayoutStatus)
		}
	})

	t.Run("current turn is bounded by participant count", func(t *testing.T) {
		circle := newCircle(organizer.ID, "BND001")
		if err := store.CreateCircle(ctx, circle); err != nil {
			t.Fatalf("CreateCircle failed: %v", err)
		}
		circle.CurrentTurn = 5
		if err := store.UpdateCircle(ctx, circle); err == nil {
			t.Error("Expected CHECK constraint failure for current turn 5 of 4")
		}
	})

	t.Run("memberships are unique per circle and user", func(t *testing.T) {
		circle := newCircle(organizer.ID, "MEM001")
		if err := store.CreateCircle(ctx, circle); err != nil {
			t.Fatalf("CreateCircle failed: %v", err)
		}

		first := &models.Membership{
			CircleID:      circle.ID,
			UserID:        member.ID,
			TurnNumber:    2,
			Status:        models.MembershipStatusPending,
			Share:         models.ShareHalf,
			PaymentStatus: models.PaymentStatusPending,
		}
		if err := store.CreateMembership(ctx, first); err != nil {
			t.Fatalf("CreateMembership failed: %v", err)
		}
		if first.ID == "" || first.JoinedAt == 0 {
			t.Error("Expected ID and JoinedAt to be set")
		}

		second := &models.Membership{
			CircleID:      circle.ID,
			UserID:        member.ID,
			TurnNumber:    3,
			Status:        models.MembershipStatusPending,
			Share:         models.ShareFull,
			PaymentStatus: models.PaymentStatusPending,
		}
		if err := store.CreateMembership(ctx, second); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}

		got, err := store.GetMembershipByUser(ctx, circle.ID, member.ID)
		if err != nil {
			t.Fatalf("GetMembershipByUser failed: %v", err)
		}
		if got.Share != models.ShareHalf || got.TurnNumber != 2 {
			t.Errorf("got share=%v turn=%d, want 0.5 on turn 2", got.Share, got.TurnNumber)
		}

		got.Status = models.MembershipStatusActive
		got.PaymentStatus = models.PaymentStatusReviewing
		got.PaymentProofRef = "proofs/abc.jpg"
		if err := store.UpdateMembership(ctx, got); err != nil {
			t.Fatalf("UpdateMembership failed: %v", err)
		}
		reloaded, err := store.GetMembership(ctx, got.ID)
		if err != nil {
			t.Fatalf("GetMembership failed: %v", err)
		}
		if reloaded.Status != models.MembershipStatusActive || reloaded.PaymentProofRef != "proofs/abc.jpg" {
			t.Errorf("got %+v", reloaded)
		}

		circles, err := store.ListCirclesForUser(ctx, member.ID)
		if err != nil {
			t.Fatalf("ListCirclesForUser failed: %v", err)
		}
		found := false
		for _, c := range circles {
			if c.ID == circle.ID {
				found = true
			}
		}
		if !found {
			t.Error("Expected member's circle in ListCirclesForUser")
		}

		if err := store.DeleteMembership(ctx, got.ID); err != nil {
			t.Fatalf("DeleteMembership failed: %v", err)
		}
		list, err := store.ListMemberships(ctx, circle.ID)
		if err != nil {
			t.Fatalf("ListMemberships failed: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("Expected 0 memberships after delete, got %d", len(list))
		}
	})

	t.Run("ListMemberships orders by turn", func(t *testing.T) {
		circle := newCircle(organizer.ID, "ORD001")
		if err := store.CreateCircle(ctx, circle); err != nil {
			t.Fatalf("CreateCircle failed: %v", err)
		}
		for i, turn := range []int{3, 1, 2} {
			u := createUser(t, store, "ord"+string(rune('a'+i))+"@example.com")
			m := &models.Membership{
				CircleID:      circle.ID,
				UserID:        u.ID,
				TurnNumber:    turn,
				Status:        models.MembershipStatusPending,
				Share:         models.ShareFull,
				PaymentStatus: models.PaymentStatusPending,
			}
			if err := store.CreateMembership(ctx, m); err != nil {
				t.Fatalf("CreateMembership failed: %v", err)
			}
		}

		list, err := store.ListMemberships(ctx, circle.ID)
		if err != nil {
			t.Fatalf("ListMemberships failed: %v", err)
		}
		for i, m := range list {
			if m.TurnNumber != i+1 {
				t.Errorf("list[%d].TurnNumber = %d, want %d", i, m.TurnNumber, i+1)
			}
		}
	})
}

func TestRunInTx(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	organizer := createUser(t, store, "tx@example.com")

	t.Run("error rolls back", func(t *testing.T) {
		circle := newCircle(organizer.ID, "TXR001")
		boom := errors.New("boom")

		err := store.RunInTx(ctx, func(q storage.Queries) error {
			if err := q.CreateCircle(ctx, circle); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("RunInTx error = %v, want boom", err)
		}
		if _, err := store.GetCircleByInviteCode(ctx, "TXR001"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected rolled back circle to be missing, got %v", err)
		}
	})

	t.Run("success commits", func(t *testing.T) {
		circle := newCircle(organizer.ID, "TXC001")
		err := store.RunInTx(ctx, func(q storage.Queries) error {
			return q.CreateCircle(ctx, circle)
		})
		if err != nil {
			t.Fatalf("RunInTx failed: %v", err)
		}
		if _, err := store.GetCircle(ctx, circle.ID); err != nil {
			t.Errorf("Expected committed circle, got %v", err)
		}
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := createUser(t, store, "alice@example.com")

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "Alice 2", "hash")
		if err := store.CreateUser(ctx, dup); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("Profile reflects UpdateUser", func(t *testing.T) {
		profile, err := store.Profile(ctx, user.ID)
		if err != nil {
			t.Fatalf("Profile failed: %v", err)
		}
		if profile.HasPayoutDetails() {
			t.Error("Expected new user to lack payout details")
		}

		user.BankName = "Banco Popular"
		user.AccountNumber = "123-456"
		user.NationalID = "001-0000000-1"
		user.PushToken = "device-token"
		if err := store.UpdateUser(ctx, user); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}

		profile, err = store.Profile(ctx, user.ID)
		if err != nil {
			t.Fatalf("Profile failed: %v", err)
		}
		if !profile.HasPayoutDetails() {
			t.Errorf("Expected payout details, got %+v", profile)
		}
		if profile.PushToken != "device-token" {
			t.Errorf("PushToken = %q, want device-token", profile.PushToken)
		}
	})

	t.Run("GetUsersByIDs omits unknown IDs", func(t *testing.T) {
		users, err := store.GetUsersByIDs(ctx, []string{user.ID, "ghost"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 1 || users[user.ID] == nil {
			t.Errorf("got %v, want only %s", users, user.ID)
		}
	})
}

func TestResetData(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	admin := createUser(t, store, "admin@example.com")
	other := createUser(t, store, "other@example.com")
	circle := newCircle(other.ID, "RST001")
	if err := store.CreateCircle(ctx, circle); err != nil {
		t.Fatalf("CreateCircle failed: %v", err)
	}

	if err := store.ResetData(ctx, admin.ID); err != nil {
		t.Fatalf("ResetData failed: %v", err)
	}

	if _, err := store.GetUserByID(ctx, admin.ID); err != nil {
		t.Errorf("Expected admin to survive reset, got %v", err)
	}
	if _, err := store.GetUserByID(ctx, other.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected other user removed, got %v", err)
	}
	if _, err := store.GetCircle(ctx, circle.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected circle removed, got %v", err)
	}
}

func TestHasAdmin(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := createUser(t, store, "root@example.com")
	if has, err := store.HasAdmin(ctx); err != nil || has {
		t.Fatalf("HasAdmin = %v, %v; expected false", has, err)
	}

	user.Role = models.RoleAdmin
	if err := store.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if has, err := store.HasAdmin(ctx); err != nil || !has {
		t.Fatalf("HasAdmin = %v, %v; expected true", has, err)
	}
}
