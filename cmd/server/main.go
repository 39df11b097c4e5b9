// @title Conference Central API
// @version 1.0
// @description Conferences, registrations, sessions, wishlists and announcements.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"conferencecentral/config"
	_ "conferencecentral/docs"
	"conferencecentral/internal/adapters/auth"
	"conferencecentral/internal/adapters/email"
	httpdelivery "conferencecentral/internal/delivery/http"
	"conferencecentral/internal/delivery/http/controllers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
	"conferencecentral/internal/repository/postgres"
	"conferencecentral/internal/services"
	"conferencecentral/internal/worker"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	store := postgres.NewStore(db, logger, cfg.TxMaxAttempts)
	repos := store.Repositories()
	cache := postgres.NewAnnouncementCache(db)

	featured := services.NewFeaturedSpeakerDetector(repos.Profiles, cache, logger)
	profiles := services.NewProfileService(store, repos, logger)
	conferences := services.NewConferenceService(store, repos, logger)
	ledger := services.NewRegistrationLedger(store, logger)
	directory := services.NewSessionDirectory(store, repos, featured, logger)
	planner := services.NewSessionQueryPlanner(repos.Sessions)
	announcements := services.NewAnnouncementService(repos.Conferences, cache, logger)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}

	dispatcher := worker.NewDispatcher(postgres.NewTaskStore(store), logger,
		worker.WithBatchSize(cfg.WorkerBatchSize),
		worker.WithPollInterval(cfg.WorkerPollInterval),
	)
	dispatcher.Register(domain.TaskSendConfirmationEmail,
		services.NewEmailTaskHandler(mailer, email.NewTemplateRenderer(), logger))

	router := httpdelivery.NewRouter(httpdelivery.Controllers{
		Profile:      controllers.NewProfileController(logger, profiles),
		Conference:   controllers.NewConferenceController(logger, conferences, ledger),
		Session:      controllers.NewSessionController(logger, directory, planner),
		Announcement: controllers.NewAnnouncementController(logger, announcements, featured),
	}, auth.NewJWTVerifier(cfg.JWTSecret), logger)

	var handler http.Handler = router
	handler = http.TimeoutHandler(handler, cfg.RequestTimeout, `{"data":null,"error":{"code":"internal_error","message":"request timed out"}}`)
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return dispatcher.Run(ctx)
	})
	g.Go(func() error {
		return worker.RunPeriodic(ctx, logger, "announcement", cfg.AnnouncementInterval, announcements.Refresh)
	})

	return g.Wait()
}
