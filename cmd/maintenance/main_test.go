package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmynk/todosponen/internal/models"
	"github.com/mmynk/todosponen/internal/storage"
	"github.com/mmynk/todosponen/internal/storage/sqlite"
)

func seed(t *testing.T, dbPath string, emails ...string) {
	t.Helper()
	store, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()
	for _, email := range emails {
		if err := store.CreateUser(context.Background(), models.NewUser(email, email, "hash")); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", email, err)
		}
	}
}

func TestMaintenance(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "maint.db")
	seed(t, dbPath, "root@example.com", "user@example.com", "other@example.com")
	db := "-db=" + dbPath

	t.Run("usage", func(t *testing.T) {
		if err := run(ctx, nil); !errors.Is(err, errUsage) {
			t.Errorf("expected usage error, got %v", err)
		}
		if err := run(ctx, []string{"drop", db}); !errors.Is(err, errUsage) {
			t.Errorf("expected usage error, got %v", err)
		}
	})

	t.Run("reset needs confirmation", func(t *testing.T) {
		if err := run(ctx, []string{"reset", db, "-admin=root@example.com"}); err == nil {
			t.Error("expected an error without -confirm")
		}
	})

	t.Run("reset needs an admin", func(t *testing.T) {
		err := run(ctx, []string{"reset", db, "-admin=root@example.com", "-confirm"})
		if !errors.Is(err, errNotAdmin) {
			t.Errorf("expected errNotAdmin, got %v", err)
		}
	})

	t.Run("bootstrap promote", func(t *testing.T) {
		if err := run(ctx, []string{"promote", db, "-admin=Root@example.com", "-email=root@example.com"}); err != nil {
			t.Fatalf("promote failed: %v", err)
		}
	})

	t.Run("self promote once an admin exists", func(t *testing.T) {
		err := run(ctx, []string{"promote", db, "-admin=user@example.com", "-email=user@example.com"})
		if !errors.Is(err, errNotAdmin) {
			t.Errorf("expected errNotAdmin, got %v", err)
		}
	})

	t.Run("reset", func(t *testing.T) {
		if err := run(ctx, []string{"reset", db, "-admin=root@example.com", "-confirm"}); err != nil {
			t.Fatalf("reset failed: %v", err)
		}

		store, err := sqlite.New(dbPath)
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer store.Close()

		root, err := store.GetUserByEmail(ctx, "root@example.com")
		if err != nil {
			t.Fatalf("expected admin to survive: %v", err)
		}
		if root.Role != models.RoleAdmin {
			t.Errorf("role: expected admin, got %s", root.Role)
		}
		if _, err := store.GetUserByEmail(ctx, "user@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected user removed, got %v", err)
		}
	})
}
