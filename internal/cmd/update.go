package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mkarlen/keyden/internal/config"
	"github.com/mkarlen/keyden/internal/dialog"
	"github.com/mkarlen/keyden/internal/interactive"
	"github.com/mkarlen/keyden/internal/settings"
	"github.com/mkarlen/keyden/internal/update"
)

func newUpdateCmd() *cobra.Command {
	var (
		targetVersion string
		yes           bool
		rollback      bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Download and install a keyden release",
		Long: `Update replaces the running keyden binary with a published release.

In a terminal this opens an interactive dialog listing available
versions with their changelog. With --yes or --version the update runs
non-interactively.

The previous binary is kept next to the new one with a .bak suffix;
'keyden update --rollback' swaps it back.

Examples:
  keyden update                     # Interactive dialog
  keyden update --yes               # Install the latest release
  keyden update --version v1.3.0    # Install a specific release
  keyden update --rollback          # Restore the previous binary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rollback {
				return runRollback()
			}
			return runUpdate(targetVersion, yes)
		},
	}

	cmd.Flags().StringVar(&targetVersion, "version", "", "Release tag to install (default: latest)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation and install without the dialog")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "Restore the previous binary from its backup")

	return cmd
}

func runUpdate(targetVersion string, yes bool) error {
	cfg, err := loadUpdaterConfig()
	if err != nil {
		return err
	}

	platform := update.Detect()
	if !platform.IsSupported() && cfg.AssetName == "" {
		return fmt.Errorf("unsupported platform: %s/%s", platform.OS, platform.Arch)
	}

	client := newReleaseClient(cfg)
	checker := newChecker(client)

	downloader, err := newDownloader(cfg, client)
	if err != nil {
		return err
	}
	installer := update.NewInstaller(downloader.ExecPath())

	store, err := openSettings()
	if err != nil {
		log.Warn("settings unavailable, continuing without them", "error", err)
		store = nil
	}

	interactiveMode := interactive.IsTerminal() && !yes && targetVersion == ""
	if interactiveMode {
		return runUpdateDialog(cfg, client, checker, downloader, installer, store)
	}
	return runUpdateHeadless(client, checker, downloader, installer, store, targetVersion, yes)
}

// runUpdateDialog drives the interactive bubbletea update flow.
func runUpdateDialog(cfg *config.Updater, client *update.Client, checker *update.Checker, downloader *update.Downloader, installer *update.Installer, store *settings.Store) error {
	snapshotSettings(store)

	model := dialog.NewModel(dialog.Config{
		Client:         client,
		Checker:        checker,
		Downloader:     downloader,
		Installer:      installer,
		Store:          store,
		CurrentVersion: keydenVersion,
		Branch:         cfg.Channel.Branch(),
	})

	program := tea.NewProgram(model)
	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("update dialog failed: %w", err)
	}

	final := finalModel.(*dialog.Model)
	switch final.State() {
	case dialog.StateInstalled:
		fmt.Printf("Updated to %s. Restart keyden to use the new version.\n", final.SelectedTag())
		return nil
	case dialog.StateDownloadFailed, dialog.StateCheckFailed:
		return fmt.Errorf("update failed: %w", final.Err())
	default:
		return nil
	}
}

// runUpdateHeadless installs an update without the dialog, for scripts
// and non-TTY environments.
func runUpdateHeadless(client *update.Client, checker *update.Checker, downloader *update.Downloader, installer *update.Installer, store *settings.Store, targetVersion string, yes bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tag := targetVersion
	if tag == "" {
		checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		result, err := checker.Check(checkCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to check for updates: %w", err)
		}
		if !result.Available {
			fmt.Println("Already running the latest version")
			return nil
		}
		// Download the tag as published; LatestVersion is stripped of any
		// v prefix and would miss the release endpoint.
		tag = result.LatestTag
		fmt.Printf("Update available: %s -> %s\n", result.CurrentVersion, result.LatestVersion)
	}

	if !yes {
		prompter := interactive.NewPrompter()
		if !prompter.Confirm("Install %s?", tag) {
			fmt.Println("Update cancelled.")
			return nil
		}
	}

	snapshotSettings(store)

	fmt.Printf("Downloading %s...\n", tag)
	staged, err := downloader.Download(ctx, tag, printProgress)
	fmt.Println()
	if err != nil {
		if errors.Is(err, update.ErrCancelled) {
			fmt.Println("Download cancelled.")
			return nil
		}
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Printf("Installing to %s...\n", downloader.ExecPath())
	if err := installer.Install(staged); err != nil {
		return fmt.Errorf("installation failed: %w", err)
	}

	if store != nil {
		store.MarkUpdated(tag)
		_ = store.Save()
	}

	fmt.Printf("Successfully updated to %s. Restart keyden to use the new version.\n", tag)
	return nil
}

func runRollback() error {
	execPath, err := update.ExecutablePath()
	if err != nil {
		return err
	}

	installer := update.NewInstaller(execPath)
	if err := installer.Rollback(); err != nil {
		return err
	}

	fmt.Println("Previous binary restored.")
	return nil
}

// snapshotSettings saves a pre-update snapshot, best effort.
func snapshotSettings(store *settings.Store) {
	if store == nil {
		return
	}
	mgr, err := settings.NewSnapshotManager(keydenVersion)
	if err != nil {
		log.Warn("skipping settings snapshot", "error", err)
		return
	}
	if _, err := mgr.Create(store, "pre-update"); err != nil {
		log.Warn("skipping settings snapshot", "error", err)
	}
}

// printProgress renders a single-line progress readout.
func printProgress(p update.Progress) {
	line := fmt.Sprintf("\r  %s / %s", formatSize(p.Downloaded), formatSize(p.Total))
	if p.Speed > 0 {
		line += fmt.Sprintf("  %s/s", formatSize(int64(p.Speed)))
	}
	if p.ETA > 0 {
		line += fmt.Sprintf("  ETA %s", p.ETA.Round(time.Second))
	}
	fmt.Print(line + "    ")
}

// formatSize formats a byte size as a human-readable string.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
