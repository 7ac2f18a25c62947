package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkarlen/keyden/internal/output"
	"github.com/mkarlen/keyden/internal/settings"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check whether a newer keyden release is available",
		Long: `Check queries the release service and compares the latest published
version against the running binary.

Examples:
  keyden check              # Human-readable result
  keyden check -o json      # Machine-readable result`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck()
		},
	}
}

func runCheck() error {
	cfg, err := loadUpdaterConfig()
	if err != nil {
		return err
	}

	writer, err := newOutputWriter()
	if err != nil {
		return err
	}

	client := newReleaseClient(cfg)
	checker := newChecker(client)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := checker.Check(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}

	// Remember when we last checked, best effort.
	if store, serr := openSettings(); serr == nil {
		store.Set(settings.KeyLastCheck, result.CheckedAt.Format(time.RFC3339))
		_ = store.Save()
	}

	if writer.Format() != output.FormatText {
		return writer.Write(result)
	}

	fmt.Printf("Current version: %s\n", result.CurrentVersion)
	if !result.Available {
		fmt.Println("Already running the latest version")
		return nil
	}

	fmt.Printf("Latest version: %s available\n", result.LatestVersion)
	if result.ReleaseNotes != "" {
		fmt.Println("\nRelease notes:")
		fmt.Println(result.ReleaseNotes)
	}
	fmt.Println("\nRun 'keyden update' to install")
	return nil
}
