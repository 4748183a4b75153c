// Package main is the entry point for the jokesite server.
// It loads configuration, picks a storage backend and runs one of the
// serve, migrate or seed commands.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"jokesite/src/app/server"
	"jokesite/src/core/usecase"
	"jokesite/src/infra/config"
	"jokesite/src/infra/db"
	"jokesite/src/infra/logger"
	"jokesite/src/infra/repo"
	"jokesite/src/infra/repo/memory"
	"jokesite/src/infra/security"
)

func main() {
	app := &cli.App{
		Name:   "jokesite",
		Usage:  "Serve and manage the jokes site",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations and exit",
				Action: migrate,
			},
			{
				Name:  "seed",
				Usage: "Create the seed jokester and the starter jokes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "username",
						Usage: "jokester that owns the starter jokes (defaults to APP_SEED_USERNAME)",
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "password for a newly created jokester (defaults to APP_SEED_PASSWORD)",
					},
				},
				Action: seed,
			},
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}

// stores holds the repositories for the selected backend and a close hook.
type stores struct {
	deps  server.Deps
	close func()
}

func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	if cfg.Database.UsesMemory() {
		log.Warn("using in-memory storage; data is lost on restart")
		m := memory.New()
		return &stores{
			deps:  server.Deps{Users: m.Users(), Jokes: m.Jokes()},
			close: func() {},
		}, nil
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, cfg.Database, log); err != nil {
			return nil, err
		}
	}
	pg, err := db.New(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return &stores{
		deps: server.Deps{
			Users: repo.NewUserRepository(pg, log),
			Jokes: repo.NewJokeRepository(pg, log),
		},
		close: pg.Close,
	}, nil
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.Log), nil
}

func serve(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	log.Info("starting application",
		"port", cfg.Server.Port,
		"log_level", cfg.Log.Level,
		"storage", cfg.Database.Storage,
		"version", cfg.Site.Version,
	)

	st, err := openStores(c.Context, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	// The in-memory store starts empty on every boot.
	if cfg.Database.UsesMemory() && cfg.Seed.Password != "" {
		if err := runSeed(c.Context, cfg, log, st.deps, cfg.Seed.Username, cfg.Seed.Password); err != nil {
			return err
		}
	}

	srv, err := server.New(cfg, log, st.deps)
	if err != nil {
		return err
	}

	// Run blocks until the context is cancelled or the listener fails
	return srv.Run(c.Context)
}

func migrate(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if cfg.Database.UsesMemory() {
		return errors.New("migrate needs postgres storage")
	}
	return db.Migrate(c.Context, cfg.Database, log)
}

func seed(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if cfg.Database.UsesMemory() {
		return errors.New("seeding the in-memory store has no lasting effect; use postgres storage")
	}

	username := cfg.Seed.Username
	if v := c.String("username"); v != "" {
		username = v
	}
	password := cfg.Seed.Password
	if v := c.String("password"); v != "" {
		password = v
	}
	if password == "" {
		return errors.New("seed password is required (APP_SEED_PASSWORD or --password)")
	}

	st, err := openStores(c.Context, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	return runSeed(c.Context, cfg, log, st.deps, username, password)
}

func runSeed(ctx context.Context, cfg *config.Config, log *slog.Logger, deps server.Deps, username, password string) error {
	svc := usecase.NewSeedService(
		deps.Users,
		deps.Jokes,
		security.NewBcryptHasher(cfg.Session.PasswordCost),
		logger.WithComponent(log, "seed"),
	)
	res, err := svc.Seed(ctx, username, password)
	if err != nil {
		return err
	}
	log.Info("seed complete",
		"username", res.User.Username,
		"jokes_created", res.JokesCreated,
		"jokes_skipped", res.JokesSkipped,
	)
	return nil
}
