package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/transporteur/marketplace/internal/api"
	"github.com/transporteur/marketplace/internal/api/metrics"
	"github.com/transporteur/marketplace/pkg/logger"
)

// sweepInterval is how often expired trips and keys are purged.
const sweepInterval = time.Minute

// purger is implemented by key stores that need explicit expiry.
type purger interface {
	Purge() (int, error)
}

// ServeCmd runs the HTTP API until SIGINT or SIGTERM.
func ServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the marketplace HTTP API",
		Long: `Start the HTTP API with its background workers.

The audit/event dispatcher and the tracking sweeper run alongside the server.
On SIGINT or SIGTERM the server stops accepting requests, then queued lifecycle
events are drained until SHUTDOWN_TIMEOUT elapses.

Examples:
  marketplace serve             # Serve with the schema already migrated
  marketplace serve --migrate   # Apply pending migrations first`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			log := logger.Init(logger.Options{
				Level:   cfg.LogLevel,
				Pretty:  cfg.LogPretty || cfg.IsDevelopment(),
				Service: "marketplace",
			})

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.close(); err != nil {
					log.Error().Err(err).Msg("release resources")
				}
			}()

			if migrate {
				if err := a.store.MigrateUp(); err != nil {
					return err
				}
			}

			return a.serve(ctx)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving")

	return cmd
}

// serve blocks until ctx is cancelled or the listener fails.
func (a *app) serve(ctx context.Context) error {
	deps := a.deps
	deps.Registerer = prometheus.DefaultRegisterer
	e := api.NewRouter(deps)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	a.events.Start(workerCtx)
	go a.sweep(ctx, a.log)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", a.cfg.Port),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Str("store", string(a.store.Dialect())).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("http shutdown")
	}
	if err := a.events.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("event queue not drained")
	}
	return nil
}

// sweep drops expired trips and, for Bolt, expired keys.
func (a *app) sweep(ctx context.Context, log zerolog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweepOnce(log)
		}
	}
}

func (a *app) sweepOnce(log zerolog.Logger) {
	if n := a.tracker.Sweep(); n > 0 {
		metrics.TrackingExpiredTotal.Add(float64(n))
		log.Debug().Int("trips", n).Msg("expired trips dropped")
	}
	metrics.TrackingActiveTrips.Set(float64(a.tracker.Len()))

	if p, ok := a.keys.(purger); ok {
		if n, err := p.Purge(); err != nil {
			log.Warn().Err(err).Msg("purge expired keys")
		} else if n > 0 {
			log.Debug().Int("keys", n).Msg("expired keys purged")
		}
	}
}
