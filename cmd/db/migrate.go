package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	_ "github.com/lib/pq"

	"github.com/kashguard/go-wallet-connect/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS dapp_relationships (
	dapp_definition_address TEXT NOT NULL,
	network_id SMALLINT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	personas JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (dapp_definition_address, network_id)
);

CREATE INDEX IF NOT EXISTS idx_dapp_relationships_network
	ON dapp_relationships (network_id);
`

func newMigrate() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Applies the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runMigrate(cmd.Context()); err != nil {
				log.Fatal().Err(err).Msg("Failed to migrate database")
			}
			log.Info().Msg("Database migrated")
		},
	}
}

func runMigrate(ctx context.Context) error {
	cfg := config.DefaultServiceConfigFromEnv()

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}
