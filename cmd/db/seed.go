package db

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kashguard/go-wallet-connect/internal/api"
	"github.com/kashguard/go-wallet-connect/internal/config"
	"github.com/kashguard/go-wallet-connect/internal/interaction"
	"github.com/kashguard/go-wallet-connect/internal/relationship"
	"github.com/kashguard/go-wallet-connect/internal/util/command"
)

func newSeed() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Inserts development fixtures",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.DefaultServiceConfigFromEnv()
			err := command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				return seedRelationships(ctx, s)
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to seed database")
			}
			log.Info().Msg("Database seeded")
		},
	}
}

// seedRelationships 写入一条本地开发用的授权关系
func seedRelationships(ctx context.Context, s *api.Server) error {
	return s.Store.Upsert(ctx, &relationship.Relationship{
		DappDefinitionAddress: "account_tdx_2_12x4zx09f8962a9wesfqvxaue0qn6m39r3cpysrjd6dtqppzhrkjrsr",
		NetworkID:             s.Config.Wallet.NetworkID,
		DisplayName:           "Dev Sandbox dApp",
		Personas: []relationship.AuthorizedPersona{
			{
				IdentityAddress: "identity_tdx_2_122mkzkkdf8tfvvmeaqrcyl8l2q2vhpz69rqcmdpvujuu8yzjqrzdm9",
				LastLogin:       time.Now().UTC(),
				SharedAccounts: &relationship.SharedAccounts{
					Request: interaction.NumberOfValues{
						Quantity:   1,
						Quantifier: interaction.QuantifierAtLeast,
					},
					AccountAddresses: []string{
						"account_tdx_2_128jx5fmru80v38a7hun8tdhajf2exef756c92tfg4atwl3y4pqn48m",
					},
				},
			},
		},
	})
}
