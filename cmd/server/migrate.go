package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"realmgov/internal/custody"
	"realmgov/internal/platform/config"
	pgplatform "realmgov/internal/platform/postgres"
	"realmgov/internal/realm"
)

func migrateCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the postgres schema and seed realms and custody from config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dryRun {
				fmt.Fprint(cmd.OutOrStdout(), pgplatform.Schema())
				return nil
			}
			cfg, err := config.Load(globalFlags.configFile)
			if err != nil {
				return err
			}
			if cfg.Store.DatabaseURL == "" {
				return errors.New("migrate requires REALMGOV_STORE_DATABASE_URL")
			}
			ctx := cmd.Context()
			db, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := pgplatform.Migrate(ctx, db); err != nil {
				return err
			}

			registry := realm.NewPostgres(db)
			seeded := 0
			for _, entry := range cfg.Registry.Realms {
				mints, err := realm.ParseEntry(entry)
				if err != nil {
					return err
				}
				for _, m := range mints {
					if err := registry.Upsert(ctx, m); err != nil {
						return err
					}
					seeded++
				}
			}

			ledger := custody.NewPostgres(db)
			for _, e := range cfg.Custody.Mints {
				mint, authority, err := parseMintEntry(e)
				if err != nil {
					return err
				}
				if err := ledger.RegisterMint(ctx, mint, authority); err != nil {
					return err
				}
			}
			for _, e := range cfg.Custody.Accounts {
				acct, mint, authority, err := parseAccountEntry(e)
				if err != nil {
					return err
				}
				if err := ledger.OpenAccount(ctx, acct, mint, authority, e.Balance); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema applied, %d mint configs, %d custody mints, %d custody accounts seeded\n",
				seeded, len(cfg.Custody.Mints), len(cfg.Custody.Accounts))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the schema instead of applying it")
	return cmd
}
