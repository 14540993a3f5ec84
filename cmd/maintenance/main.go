// Command maintenance runs operator tasks directly against the database.
// None of them is reachable over RPC.
//
// Usage:
//
//	maintenance reset -admin admin@example.com -confirm
//	maintenance promote -admin admin@example.com -email user@example.com
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mmynk/todosponen/internal/auth"
	"github.com/mmynk/todosponen/internal/models"
	"github.com/mmynk/todosponen/internal/storage"
	"github.com/mmynk/todosponen/internal/storage/sqlite"
	"github.com/mmynk/todosponen/pkg/logging"
)

var (
	errUsage    = errors.New("usage: maintenance <reset|promote> [flags]")
	errNotAdmin = errors.New("the -admin account must exist and hold the admin role")
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("Maintenance failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	dbPath := fs.String("db", envOr("DB_PATH", "./data/todosponen.db"), "path to the SQLite database")
	admin := fs.String("admin", "", "email of the admin running the task")
	confirm := fs.Bool("confirm", false, "confirm a destructive task")
	email := fs.String("email", "", "email of the account to promote")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	switch args[0] {
	case "reset":
		return reset(ctx, store, *admin, *confirm)
	case "promote":
		return promote(ctx, store, *admin, *email)
	}
	return errUsage
}

// requireAdmin resolves email to an admin account.
func requireAdmin(ctx context.Context, store storage.Store, email string) (*models.User, error) {
	if email == "" {
		return nil, errNotAdmin
	}
	user, err := store.GetUserByEmail(ctx, auth.NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errNotAdmin
	}
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleAdmin {
		return nil, errNotAdmin
	}
	return user, nil
}

// reset deletes every circle and membership and every account except the
// admin running it.
func reset(ctx context.Context, store storage.Store, adminEmail string, confirm bool) error {
	if !confirm {
		return errors.New("reset deletes all data; pass -confirm to proceed")
	}
	admin, err := requireAdmin(ctx, store, adminEmail)
	if err != nil {
		return err
	}
	if err := store.ResetData(ctx, admin.ID); err != nil {
		return err
	}
	slog.Info("Database reset", "admin_id", admin.ID)
	return nil
}

// promote grants the admin role. The first admin bootstraps itself by naming
// its own email as both -admin and -email while no admin exists yet.
func promote(ctx context.Context, store storage.Store, adminEmail, email string) error {
	if email == "" {
		return errors.New("promote needs -email")
	}
	target, err := store.GetUserByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", email, err)
	}

	if _, err := requireAdmin(ctx, store, adminEmail); err != nil {
		if !errors.Is(err, errNotAdmin) || auth.NormalizeEmail(adminEmail) != target.Email {
			return err
		}
		// Self-promotion is only a bootstrap path.
		exists, err := store.HasAdmin(ctx)
		if err != nil {
			return err
		}
		if exists {
			return errNotAdmin
		}
	}

	target.Role = models.RoleAdmin
	if err := store.UpdateUser(ctx, target); err != nil {
		return err
	}
	slog.Info("User promoted to admin", "user_id", target.ID)
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
