package cmd

import (
	"fmt"
	"os"

	"github.com/mkarlen/keyden/internal/config"
	"github.com/mkarlen/keyden/internal/output"
	"github.com/mkarlen/keyden/internal/settings"
	"github.com/mkarlen/keyden/internal/update"
)

// loadUpdaterConfig resolves the updater configuration from the
// --config flag, standard locations, or built-in defaults.
func loadUpdaterConfig() (*config.Updater, error) {
	return config.Resolve(configPath)
}

// newReleaseClient builds a release client from the updater config.
// The credential travels with the client; nothing update-related reads
// the environment after this point.
func newReleaseClient(cfg *config.Updater) *update.Client {
	var opts []update.ClientOption
	if cfg.Token != "" {
		opts = append(opts, update.WithToken(cfg.Token))
	}
	return update.NewClient(cfg.Owner, cfg.Repo, opts...)
}

// newChecker builds an update checker for the running version.
func newChecker(client *update.Client) *update.Checker {
	return update.NewChecker(client, keydenVersion)
}

// newDownloader builds a downloader for the running binary, honoring
// an asset-name override from the config.
func newDownloader(cfg *config.Updater, client *update.Client) (*update.Downloader, error) {
	execPath, err := update.ExecutablePath()
	if err != nil {
		return nil, err
	}

	var opts []update.DownloaderOption
	if cfg.AssetName != "" {
		opts = append(opts, update.WithAssetName(cfg.AssetName))
	}
	return update.NewDownloader(client, execPath, opts...), nil
}

// newOutputWriter builds a writer for the --output flag.
func newOutputWriter() (*output.Writer, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewWriter(os.Stdout, format), nil
}

// openSettings loads the settings store from its default location.
func openSettings() (*settings.Store, error) {
	path, err := settings.DefaultPath()
	if err != nil {
		return nil, err
	}
	store := settings.NewStore(path)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return store, nil
}
