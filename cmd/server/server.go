// cmd/server/server.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/courtbook/internal/api"
	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/cognito"
	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/db"
	"github.com/codr1/courtbook/internal/email"
	"github.com/codr1/courtbook/internal/events"
	"github.com/codr1/courtbook/internal/notify"
	"github.com/codr1/courtbook/internal/ratelimit"
	"github.com/codr1/courtbook/internal/scheduler"
	"github.com/codr1/courtbook/internal/tournament"
)

const (
	shutdownTimeout = 30 * time.Second
	drainTimeout    = 10 * time.Second
)

type app struct {
	server     *http.Server
	database   *db.DB
	scheduler  *scheduler.Service
	dispatcher *notify.Dispatcher
	publisher  *events.Publisher
	limiter    *ratelimit.Limiter
}

func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.database, err = db.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	manager, err := booking.NewManager(a.database, cfg)
	if err != nil {
		return nil, err
	}
	directory, err := buildDirectory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	registrar, err := tournament.NewRegistrar(a.database, directory, cfg)
	if err != nil {
		return nil, err
	}
	bracket, err := tournament.NewBracket(a.database)
	if err != nil {
		return nil, err
	}

	notifier, err := a.buildNotifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Facility.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load facility timezone: %w", err)
	}
	a.scheduler, err = scheduler.New(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}
	if cfg.Scheduler.ReminderCron != "" {
		if err := scheduler.RegisterReminderJobs(a.scheduler, manager, notifier, cfg.Scheduler, loc); err != nil {
			return nil, err
		}
	}

	if cfg.App.AdminTokenHash == "" {
		log.Warn().Msg("ADMIN_TOKEN_HASH is not set; admin routes are disabled")
	}
	a.limiter = ratelimit.New(ratelimit.FromConfig(cfg.RateLimit))
	a.dispatcher = notify.NewDispatcher(notifier)
	handler := api.NewRouter(api.Dependencies{
		Bookings:       manager,
		Registrar:      registrar,
		Bracket:        bracket,
		Dispatcher:     a.dispatcher,
		Limiter:        a.limiter,
		AdminTokenHash: cfg.App.AdminTokenHash,
	})

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return a, nil
}

// buildDirectory returns nil for the store provider, which makes the
// registrar read the local users table.
func buildDirectory(ctx context.Context, cfg *config.Config) (tournament.Directory, error) {
	if cfg.Directory.Provider != "cognito" {
		return nil, nil
	}
	directory, err := cognito.NewDirectory(ctx, cfg.Directory.UserPoolID)
	if err != nil {
		return nil, fmt.Errorf("create cognito directory: %w", err)
	}
	log.Info().Str("user_pool_id", cfg.Directory.UserPoolID).Msg("Partner lookups use Cognito")
	return directory, nil
}

// buildNotifier fans events out to every enabled channel.
func (a *app) buildNotifier(ctx context.Context, cfg *config.Config) (notify.Notifier, error) {
	var notifiers notify.Multi
	if cfg.Email.Enabled {
		client, err := email.NewSESClient(ctx, cfg.Email)
		if err != nil {
			return nil, fmt.Errorf("create SES client: %w", err)
		}
		notifiers = append(notifiers, email.NewNotifier(client, cfg.Facility.Name))
		log.Info().Str("sender", cfg.Email.Sender).Msg("Email notifications enabled")
	}
	if cfg.Events.Enabled {
		publisher, err := events.NewPublisher(cfg.Events)
		if err != nil {
			return nil, fmt.Errorf("connect event broker: %w", err)
		}
		a.publisher = publisher
		notifiers = append(notifiers, publisher)
		log.Info().Str("queue", cfg.Events.Queue).Msg("Event publishing enabled")
	}
	if len(notifiers) == 0 {
		return notify.Nop{}, nil
	}
	return notifiers, nil
}

func (a *app) run(ctx context.Context) error {
	defer a.close()

	g, ctx := errgroup.WithContext(ctx)

	a.scheduler.Start()

	g.Go(func() error {
		log.Info().Str("addr", a.server.Addr).Msg("Starting server")
		if err := a.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *app) close() {
	if a.scheduler != nil {
		if err := a.scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
	}
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.dispatcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		if err := a.dispatcher.Wait(ctx); err != nil {
			log.Warn().Err(err).Msg("Gave up waiting for pending notifications")
		}
		cancel()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close event publisher")
		}
	}
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
}
