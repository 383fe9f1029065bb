// EventLink Manager is the internal admin tool that tracks events, the
// partner websites allowed to publish them, and the approval workflow for
// cross-site event-data changes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/eventlink/eventlink/internal/api"
	"github.com/eventlink/eventlink/internal/migrations"
	"github.com/eventlink/eventlink/internal/recon"
	"github.com/eventlink/eventlink/internal/sqlite"
	"github.com/eventlink/eventlink/internal/sync"
	"github.com/eventlink/eventlink/internal/webclient"
	"github.com/eventlink/eventlink/logger"
)

type config struct {
	Port     int    `env:"PORT, default=4444"`
	Database string `env:"DATABASE, required"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`

	CookieHashKey  string `env:"COOKIE_HASH_KEY, required"`
	CookieBlockKey string `env:"COOKIE_BLOCK_KEY, required"`
	HTTPSCookies   bool   `env:"HTTPS_COOKIES, default=false"`
	CorsOrigin     string `env:"CORS_ORIGIN, default=*"`

	// Outbound calls to partner websites
	PartnerTimeout     time.Duration `env:"PARTNER_TIMEOUT, default=10s"`
	VerifyPartnerCerts bool          `env:"VERIFY_PARTNER_CERTS, default=false"`
	ReconConcurrency   int           `env:"RECON_CONCURRENCY, default=8"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	// Determine which logger format to use
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if cfg.LoggerFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	l := slog.New(logger.NewContextHandler(handler))
	slog.SetDefault(l)

	// Start the application
	if err := run(ctx, cfg); err != nil {
		slog.Error("error running", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	slog.Info("running", "port", cfg.Port, "database", cfg.Database)

	// Connect to the db
	dbx, err := sqlx.Open("sqlite", fmt.Sprintf("%s?_journal_mode=WAL", cfg.Database))
	if err != nil {
		return fmt.Errorf("error opening database: %s", err)
	}
	defer dbx.Close()

	// Migrate, always
	if err := migrations.Run(dbx); err != nil {
		return fmt.Errorf("error migrating: %s", err)
	}

	repo := sqlite.New(dbx)
	client := webclient.New(webclient.Config{
		Timeout:            cfg.PartnerTimeout,
		VerifyCertificates: cfg.VerifyPartnerCerts,
	})

	s := api.NewServer(
		api.ServerConfig{
			Port:           cfg.Port,
			CookieHashKey:  []byte(cfg.CookieHashKey),
			CookieBlockKey: []byte(cfg.CookieBlockKey),
			HttpsCookies:   cfg.HTTPSCookies,
			CorsOrigin:     cfg.CorsOrigin,
		},
		repo,
		sync.NewEngine(repo),
		sync.NewApprover(repo),
		recon.NewEngine(client, repo, cfg.ReconConcurrency),
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Start the server
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error listening: %s", err)
		}

		return nil
	})
	g.Go(func() error {
		// Block from shutting down until the group is canceled
		<-gCtx.Done()

		downCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(downCtx); err != nil {
			slog.Error("error shutting down server", "error", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("error running: %s", err)
	}

	return nil
}
