// Package cmd wires up the keyden command line interface.
package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	outputFormat string
	configPath   string
	verbose      bool
	quiet        bool
)

// Build metadata, set by Execute.
var (
	keydenVersion = "dev"
	keydenCommit  = "none"
	keydenDate    = "unknown"
)

func Execute(version, commit, date string) error {
	keydenVersion = version
	keydenCommit = commit
	keydenDate = date

	rootCmd := &cobra.Command{
		Use:   "keyden",
		Short: "Game license key manager",
		Long: `keyden organizes your game license keys in a local encrypted vault.

The update subcommands keep the keyden binary itself current: check for
new releases, read their changelog, and install them in place.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			switch {
			case quiet:
				log.SetLevel(log.ErrorLevel)
			case verbose:
				log.SetLevel(log.DebugLevel)
			default:
				log.SetLevel(log.WarnLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to updater config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newChangelogCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newCompletionCmd())

	// Register completion function for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd.Execute()
}
