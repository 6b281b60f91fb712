package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/kickstart/internal/config"
	"github.com/dmitrymomot/kickstart/internal/db/migrations"
	"github.com/dmitrymomot/kickstart/pkg/db"
	"github.com/dmitrymomot/kickstart/pkg/scheduler"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Create the service and job store schemas when missing and apply every
pending migration embedded in the binary.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, log, flush, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = flush(context.WithoutCancel(ctx)) }()

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	return migrate(ctx, cfg, pool, log)
}

func migrate(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) error {
	if err := db.EnsureSchema(ctx, pool, cfg.DB.Schema); err != nil {
		return err
	}
	if err := db.Migrate(ctx, pool, migrations.FS, cfg.DB.MigrationsTable, log); err != nil {
		return err
	}
	if err := scheduler.NewPostgresStore(pool, cfg.JobStoreSchema).EnsureSchema(ctx); err != nil {
		return fmt.Errorf("job store: %w", err)
	}
	log.InfoContext(ctx, "migrations applied", slog.String("schema", cfg.DB.Schema))
	return nil
}
