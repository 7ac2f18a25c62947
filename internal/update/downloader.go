package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// downloadChunkSize is the fixed read size for streaming an asset to
// disk. Progress is reported after every chunk.
const downloadChunkSize = 8 << 10

// StagingSuffix is appended to the executable path to form the staging
// file for a fully downloaded but not-yet-installed binary.
const StagingSuffix = ".new"

// Downloader streams a release asset to a staging file next to the
// running executable. One download session at a time; the session state
// (byte counts, start time) lives only for the duration of Download.
type Downloader struct {
	client    *Client
	execPath  string
	assetName string
	chunkSize int
	// Streaming uses its own client with no overall timeout so large
	// binaries are not cut off mid-transfer.
	httpClient *http.Client
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithAssetName overrides the expected asset filename. The default is
// the platform asset name for the current OS and architecture.
func WithAssetName(name string) DownloaderOption {
	return func(d *Downloader) {
		d.assetName = name
	}
}

// WithDownloadHTTPClient sets a custom HTTP client for asset streaming.
func WithDownloadHTTPClient(client *http.Client) DownloaderOption {
	return func(d *Downloader) {
		d.httpClient = client
	}
}

// NewDownloader creates a downloader that stages downloads adjacent to
// execPath, the running executable.
func NewDownloader(client *Client, execPath string, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client:     client,
		execPath:   execPath,
		assetName:  Detect().AssetName(),
		chunkSize:  downloadChunkSize,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// StagingPath returns the path of the staging file this downloader writes.
func (d *Downloader) StagingPath() string {
	return d.execPath + StagingSuffix
}

// ExecPath returns the executable path this downloader targets.
func (d *Downloader) ExecPath() string {
	return d.execPath
}

// Download resolves the asset list for tag, locates the expected
// platform asset, and streams it to the staging file in fixed-size
// chunks, invoking onProgress after each chunk.
//
// Failure modes: ErrAssetNotFound if no asset matches (no staging file
// is created), ErrInvalidAsset if the asset reports zero size (before
// any stream begins), ErrCancelled if ctx is cancelled mid-stream, and
// ErrNetwork for transport failures. The partial staging file is
// removed on every non-success exit path. On success the staging file
// path is returned and the final progress snapshot reports
// Downloaded == Total.
func (d *Downloader) Download(ctx context.Context, tag string, onProgress ProgressFunc) (string, error) {
	assets, err := d.client.ReleaseAssets(ctx, tag)
	if err != nil {
		return "", err
	}

	asset, err := findAsset(assets, d.assetName)
	if err != nil {
		return "", err
	}
	if asset.Size == 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidAsset, asset.Name)
	}

	log.Debug("starting download", "tag", tag, "asset", asset.Name, "size", asset.Size)

	if err := d.stream(ctx, asset, onProgress); err != nil {
		return "", err
	}

	log.Debug("download complete", "tag", tag, "staging", d.StagingPath())
	return d.StagingPath(), nil
}

// stream performs the chunked copy of the asset body to the staging file.
func (d *Downloader) stream(ctx context.Context, asset *Asset, onProgress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.BrowserDownloadURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/octet-stream")
	req.Header.Set("User-Agent", "keyden-updater")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return d.streamErr(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	stagePath := d.StagingPath()
	out, err := os.OpenFile(stagePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}

	// The staging file never outlives a failed session.
	completed := false
	defer func() {
		_ = out.Close()
		if !completed {
			_ = os.Remove(stagePath)
		}
	}()

	total := asset.Size
	start := time.Now()
	var downloaded int64

	if onProgress != nil {
		onProgress(Progress{Downloaded: 0, Total: total})
	}

	buf := make([]byte, d.chunkSize)
	for {
		// Cooperative cancellation between chunks.
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("write staging file: %w", writeErr)
			}
			downloaded += int64(n)
			if onProgress != nil {
				onProgress(snapshot(downloaded, total, start))
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return d.streamErr(ctx, readErr)
		}
	}

	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync staging file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close staging file: %w", err)
	}

	completed = true
	return nil
}

// streamErr maps a transport error to ErrCancelled when the context was
// cancelled, ErrNetwork otherwise.
func (d *Downloader) streamErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// snapshot derives speed and ETA for a progress report.
// Speed is bytes/elapsed (0 if no time has elapsed); ETA is
// remaining/speed (0 if speed is 0).
func snapshot(downloaded, total int64, start time.Time) Progress {
	elapsed := time.Since(start).Seconds()

	var speed float64
	if elapsed > 0 && downloaded > 0 {
		speed = float64(downloaded) / elapsed
	}

	var eta time.Duration
	if speed > 0 && total > downloaded {
		eta = time.Duration(float64(total-downloaded) / speed * float64(time.Second))
	}

	return Progress{
		Downloaded: downloaded,
		Total:      total,
		Speed:      speed,
		ETA:        eta,
	}
}

// findAsset locates the asset with the given name.
func findAsset(assets []Asset, name string) (*Asset, error) {
	for i := range assets {
		if assets[i].Name == name {
			return &assets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: expected %s", ErrAssetNotFound, name)
}
