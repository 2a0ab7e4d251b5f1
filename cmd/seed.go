/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hbnb/apiserver/internal/auth"
	"github.com/hbnb/apiserver/internal/db"
	"github.com/hbnb/apiserver/internal/seed"
	"github.com/hbnb/apiserver/internal/store"
)

var (
	seedCountries     bool
	seedAdminEmail    string
	seedAdminPassword string
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the country list and the bootstrap admin",
	Long: `Loads reference data into the configured database. Usage:

	hbnb seed --countries
	hbnb seed --admin-email root@example.com --admin-password s3cret-pass

Flags fall back to SEED_COUNTRIES, ADMIN_EMAIL and ADMIN_PASSWORD.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		countries := seedCountries || cfg.Bootstrap.SeedCountries
		email, password := seedAdminEmail, seedAdminPassword
		if email == "" {
			email, password = cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword
		}
		if !countries && email == "" {
			return errors.New("nothing to seed: pass --countries or --admin-email")
		}

		ctx := cmd.Context()
		conn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer conn.Close()
		st := store.New(conn)

		if countries {
			inserted, err := seed.Countries(ctx, st)
			if err != nil {
				return err
			}
			logger.Info("seeded countries", zap.Int("inserted", inserted))
		}
		if email != "" {
			verifier := auth.NewVerifier(cfg.Auth.JWTSecret)
			admin, err := seed.Admin(ctx, st, verifier, email, password)
			if err != nil {
				return err
			}
			logger.Info("bootstrap admin ready", zap.String("user_id", admin.ID), zap.String("email", admin.Email))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().BoolVar(&seedCountries, "countries", false, "insert the ISO 3166-1 country list")
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "", "email of the admin to create or promote")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "", "password for a newly created admin")
}
