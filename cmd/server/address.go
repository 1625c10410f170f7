package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"realmgov/internal/platform/config"
	"realmgov/pkg/domain"
)

func addressCommand() *cobra.Command {
	var realm, mint, owner string
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the derived token owner record and holding addresses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(globalFlags.configFile)
			if err != nil {
				return err
			}
			programID, err := domain.ParsePubkey(cfg.ProgramID)
			if err != nil {
				return err
			}
			key := domain.RecordKey{}
			if key.Realm, err = domain.ParseRealmID(realm); err != nil {
				return err
			}
			if key.Mint, err = domain.ParseMintID(mint); err != nil {
				return err
			}
			if key.Owner, err = domain.ParseIdentity(owner); err != nil {
				return err
			}

			addr, err := domain.TokenOwnerRecordAddress(programID, key)
			if err != nil {
				return err
			}
			holding, err := domain.GoverningTokenHoldingAddress(programID, key.Realm, key.Mint)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "record:  %s\n", addr)
			fmt.Fprintf(out, "holding: %s\n", holding)
			return nil
		},
	}
	cmd.Flags().StringVar(&realm, "realm", "", "realm public key")
	cmd.Flags().StringVar(&mint, "mint", "", "governing token mint")
	cmd.Flags().StringVar(&owner, "owner", "", "governing token owner")
	_ = cmd.MarkFlagRequired("realm")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
