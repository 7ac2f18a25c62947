package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkarlen/keyden/internal/interactive"
	"github.com/mkarlen/keyden/internal/output"
	"github.com/mkarlen/keyden/internal/settings"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage settings snapshots",
		Long: `Snapshot manages the settings snapshots keyden takes before each
update installs. Snapshots live in the cache directory and the oldest
are pruned automatically.

Use 'keyden snapshot restore latest' to recover settings after a bad
upgrade; pair it with 'keyden update --rollback' to also restore the
previous binary.`,
	}

	cmd.AddCommand(newSnapshotListCmd())
	cmd.AddCommand(newSnapshotRestoreCmd())
	cmd.AddCommand(newSnapshotDeleteCmd())

	return cmd
}

func newSnapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotList()
		},
	}
}

func newSnapshotRestoreCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore settings from a snapshot",
		Long: `Restore applies a snapshot's settings over the current settings file.

Use 'latest' as the ID to restore the most recent snapshot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotRestore(args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")

	return cmd
}

func newSnapshotDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := settings.NewSnapshotManager(keydenVersion)
			if err != nil {
				return err
			}
			if err := mgr.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("Snapshot deleted: %s\n", args[0])
			return nil
		},
	}
}

func runSnapshotList() error {
	mgr, err := settings.NewSnapshotManager(keydenVersion)
	if err != nil {
		return err
	}

	snapshots, err := mgr.List()
	if err != nil {
		return err
	}

	writer, err := newOutputWriter()
	if err != nil {
		return err
	}

	if writer.Format() != output.FormatText {
		return writer.Write(snapshots)
	}

	if len(snapshots) == 0 {
		fmt.Println("No snapshots found.")
		fmt.Printf("Snapshot directory: %s\n", mgr.SnapshotDir())
		return nil
	}

	fmt.Printf("Snapshots stored in %s:\n\n", mgr.SnapshotDir())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCreated\tNote\tSize")
	for _, s := range snapshots {
		note := s.Note
		if note == "" {
			note = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			s.ID,
			s.CreatedAt.Format("2006-01-02 15:04:05"),
			note,
			formatSize(s.Size),
		)
	}
	return w.Flush()
}

func runSnapshotRestore(id string, skipConfirm bool) error {
	mgr, err := settings.NewSnapshotManager(keydenVersion)
	if err != nil {
		return err
	}

	snapshot, err := mgr.Get(id)
	if err != nil {
		return err
	}

	fmt.Printf("Restoring from snapshot: %s\n", snapshot.ID)
	fmt.Printf("Created: %s (keyden %s)\n", snapshot.CreatedAt.Format("2006-01-02 15:04:05"), snapshot.AppVersion)
	if snapshot.Note != "" {
		fmt.Printf("Note: %s\n", snapshot.Note)
	}

	if !skipConfirm {
		prompter := interactive.NewPrompter()
		if !prompter.Confirm("Overwrite current settings?") {
			fmt.Println("Restore cancelled.")
			return nil
		}
	}

	store, err := openSettings()
	if err != nil {
		return err
	}

	if err := mgr.Restore(snapshot.ID, store); err != nil {
		return err
	}

	fmt.Println("Settings restored.")
	return nil
}
