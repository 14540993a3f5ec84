package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/todosponen/internal/auth"
	"github.com/mmynk/todosponen/internal/blob"
	"github.com/mmynk/todosponen/internal/circle"
	"github.com/mmynk/todosponen/internal/config"
	"github.com/mmynk/todosponen/internal/middleware"
	"github.com/mmynk/todosponen/internal/notify"
	"github.com/mmynk/todosponen/internal/service"
	"github.com/mmynk/todosponen/internal/storage/sqlite"
	"github.com/mmynk/todosponen/internal/telemetry"
	"github.com/mmynk/todosponen/pkg/api/todosponenv1/todosponenv1connect"
	"github.com/mmynk/todosponen/pkg/logging"
)

const serviceName = "todosponen"

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()
	logging.Setup()

	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Warn("Failed to flush traces", "error", err)
		}
	}()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	blobs, err := newBlobStore(cfg)
	if err != nil {
		return err
	}

	notifier, err := newNotifier(ctx, cfg, store)
	if err != nil {
		return err
	}

	engine := circle.New(store,
		circle.WithNotifier(notifier),
		circle.WithBlobStore(blobs),
		circle.WithNotifyTimeout(cfg.NotifyTimeout),
		circle.WithMetrics(circle.NewMetrics(prometheus.DefaultRegisterer)),
	)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, service.PublicProcedures...),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()

	// Register Connect services
	circlePath, circleHandler := todosponenv1connect.NewCircleServiceHandler(
		service.NewCircleService(engine, store),
		interceptors,
		connect.WithReadMaxBytes(2*service.MaxProofBytes),
	)
	mux.Handle(circlePath, circleHandler)

	accountPath, accountHandler := todosponenv1connect.NewAccountServiceHandler(
		service.NewAccountService(auth.NewPasswordAuthenticator(store), jwtManager, store, slog.Default()),
		interceptors,
	)
	mux.Handle(accountPath, accountHandler)

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Add logging, CORS and rate limiting middleware
	var handler http.Handler = loggingMiddleware(corsMiddleware(mux))
	if cfg.RateLimit.Enabled {
		handler = rateLimit(cfg.RateLimit)(handler)
	}

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(sctx)
}

// newBlobStore returns Cloudinary when configured and a local directory otherwise.
func newBlobStore(cfg *config.Config) (blob.Store, error) {
	if cfg.Cloudinary.Enabled() {
		store, err := blob.NewCloudinaryStore(blob.CloudinaryConfig{
			CloudName: cfg.Cloudinary.CloudName,
			APIKey:    cfg.Cloudinary.APIKey,
			APISecret: cfg.Cloudinary.APISecret,
			Folder:    cfg.Cloudinary.Folder,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
		}
		slog.Info("Payment proofs stored in Cloudinary", "folder", cfg.Cloudinary.Folder)
		return store, nil
	}

	store, err := blob.NewLocalStore(cfg.BlobDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob directory: %w", err)
	}
	slog.Info("Payment proofs stored locally", "path", cfg.BlobDir)
	return store, nil
}

// newNotifier always logs events and adds push and email delivery when
// configured.
func newNotifier(ctx context.Context, cfg *config.Config, profiles notify.ProfileLookup) (notify.Notifier, error) {
	notifiers := notify.Fanout{notify.Log{}}

	if cfg.FirebaseCredentials != "" {
		push, err := notify.NewPush(ctx, cfg.FirebaseCredentials, profiles)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize push notifications: %w", err)
		}
		notifiers = append(notifiers, push)
		slog.Info("Push notifications enabled")
	}

	if cfg.SMTP.Enabled() {
		notifiers = append(notifiers, notify.NewEmail(notify.EmailConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: "TodosPonen",
		}, profiles))
		slog.Info("Email notifications enabled", "host", cfg.SMTP.Host)
	}

	return notifiers, nil
}

// rateLimit limits requests per client IP.
func rateLimit(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			slog.Warn("Rate limit exceeded",
				"ip", r.RemoteAddr,
				"path", r.URL.Path,
			)
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		}),
	)
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, "+middleware.ReasonHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
