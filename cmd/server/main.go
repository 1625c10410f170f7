package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const programName = "realmgov"

var globalFlags = struct {
	configFile string
}{}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Token owner record governance service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&globalFlags.configFile, "config", "c", "", "path to YAML config file")

	rootCmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		addressCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
