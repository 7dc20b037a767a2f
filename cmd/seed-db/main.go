package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/bistro/internal/domain/auth"
	"github.com/xenking/bistro/internal/domain/task"
	"github.com/xenking/bistro/internal/storage/postgres"
)

var sampleTasks = []task.Task{
	{Title: "Set up the database", Description: "Run migrations and seed the default API key", Done: true},
	{Title: "Write API docs", Description: "Document every /api/tasks route"},
	{Title: "Review pull requests"},
}

// options are the seed-db inputs. Empty flags fall back to the environment.
type options struct {
	DatabaseURL  string
	APIKey       string
	APIKeyPepper string
	WithSamples  bool
}

// resolve fills empty fields from getenv and reports the first missing one.
// The pepper is required so that seeded hashes match what task-api computes.
func (o *options) resolve(getenv func(string) string) error {
	if o.DatabaseURL == "" {
		o.DatabaseURL = getenv("DATABASE_URL")
	}
	if o.APIKey == "" {
		o.APIKey = getenv("TASKS_SEED_API_KEY")
	}
	if o.APIKeyPepper == "" {
		o.APIKeyPepper = getenv("TASKS_API_KEY_PEPPER")
	}

	switch {
	case o.DatabaseURL == "":
		return errors.New("database URL is required: set --database-url or DATABASE_URL")
	case o.APIKey == "":
		return errors.New("API key is required: set --api-key or TASKS_SEED_API_KEY")
	case o.APIKeyPepper == "":
		return errors.New("API key pepper is required: set --api-key-pepper or TASKS_API_KEY_PEPPER")
	}
	return nil
}

func main() {
	var opts options

	flag.StringVar(&opts.DatabaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&opts.APIKey, "api-key", "", "API key to seed (or TASKS_SEED_API_KEY env)")
	flag.StringVar(&opts.APIKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or TASKS_API_KEY_PEPPER env)")
	flag.BoolVar(&opts.WithSamples, "sample-tasks", true, "insert sample tasks into an empty table")
	flag.Parse()

	if err := opts.resolve(os.Getenv); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, opts.DatabaseURL, opts.APIKey, opts.APIKeyPepper, opts.WithSamples); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, apiKey, pepper string, withSamples bool) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedAPIKey(ctx, postgres.NewAPIKeyRepository(pool), apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}
	if withSamples {
		if err := seedTasks(ctx, postgres.NewTaskRepository(pool)); err != nil {
			return errors.Wrap(err, "seed tasks")
		}
	}
	return nil
}

func seedAPIKey(ctx context.Context, keys *postgres.APIKeyRepository, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	info := auth.APIKeyInfo{
		ID:      "default",
		KeyHash: auth.HashKeyHex([]byte(pepper), apiKey),
		Name:    "Default API Key",
		Scopes:  []string{auth.ScopeTasksWrite},
	}
	if err := keys.Upsert(ctx, info); err != nil {
		return err
	}

	slog.Info("upserted API key", slog.String("id", info.ID), slog.String("name", info.Name))
	return nil
}

// seedTasks inserts sampleTasks only when the table is empty, so reruns do
// not duplicate them.
func seedTasks(ctx context.Context, tasks *postgres.TaskRepository) error {
	existing, err := tasks.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("tasks table not empty, skipping samples", slog.Int("count", len(existing)))
		return nil
	}

	for _, t := range sampleTasks {
		if err := tasks.Create(ctx, &t); err != nil {
			return errors.Wrapf(err, "create task %q", t.Title)
		}
		slog.Info("created task", slog.Int64("id", t.ID), slog.String("title", t.Title))
	}
	return nil
}
