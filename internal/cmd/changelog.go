package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newChangelogCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Show the release changelog",
		Long: `Changelog fetches and renders the changelog for the configured
release channel.

Examples:
  keyden changelog            # Rendered markdown
  keyden changelog --plain    # Raw markdown, suitable for piping`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChangelog(plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print raw markdown without terminal rendering")

	return cmd
}

func runChangelog(plain bool) error {
	cfg, err := loadUpdaterConfig()
	if err != nil {
		return err
	}

	client := newReleaseClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	raw := client.Changelog(ctx, cfg.Channel.Branch())

	if plain {
		fmt.Println(raw)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		fmt.Println(raw)
		return nil
	}

	rendered, err := renderer.Render(raw)
	if err != nil {
		fmt.Println(raw)
		return nil
	}

	fmt.Print(rendered)
	return nil
}
