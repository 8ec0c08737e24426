package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kashguard/go-wallet-connect/cmd/db"
	"github.com/kashguard/go-wallet-connect/cmd/probe"
	"github.com/kashguard/go-wallet-connect/cmd/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wallet-connect",
		Short: "dApp interaction verification and notarization service",
		Run: func(cmd *cobra.Command, args []string) {
			if err := cmd.Help(); err != nil {
				log.Fatal().Err(err).Msg("Failed to print help")
			}
		},
	}

	rootCmd.AddCommand(
		server.New(),
		probe.New(),
		db.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
