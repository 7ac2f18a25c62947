package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkarlen/keyden/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit application settings",
		Long: `Config reads and writes the flat settings file keyden keeps in its
config directory. These are runtime application settings, distinct from
the updater config file that names the release repository.`,
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSettings()
			if err != nil {
				return err
			}

			writer, err := newOutputWriter()
			if err != nil {
				return err
			}

			all := store.All()
			if writer.Format() != output.FormatText {
				return writer.Write(all)
			}

			if len(all) == 0 {
				fmt.Println("No settings stored.")
				fmt.Printf("Settings file: %s\n", store.Path())
				return nil
			}

			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, k := range keys {
				_, _ = fmt.Fprintf(w, "%s\t%v\n", k, all[k])
			}
			return w.Flush()
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSettings()
			if err != nil {
				return err
			}

			if !store.IsSet(args[0]) {
				return fmt.Errorf("setting not found: %s", args[0])
			}

			fmt.Printf("%v\n", store.Get(args[0]))
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSettings()
			if err != nil {
				return err
			}

			store.Set(args[0], args[1])
			if err := store.Save(); err != nil {
				return err
			}

			fmt.Printf("%s = %s\n", args[0], args[1])
			return nil
		},
	}
}
