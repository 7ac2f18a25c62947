// Package update implements the self-update workflow: release
// discovery, version comparison, chunked asset download with progress
// reporting, and binary installation with a single-generation backup.
package update

import (
	"errors"
	"time"
)

// Sentinel errors for the update workflow.
var (
	// ErrNetwork wraps any transport or HTTP-level failure.
	ErrNetwork = errors.New("network request failed")
	// ErrAssetNotFound means the release carries no asset matching the
	// expected platform filename.
	ErrAssetNotFound = errors.New("no matching asset in release")
	// ErrInvalidAsset means the matching asset reports a zero byte size.
	ErrInvalidAsset = errors.New("asset reports zero size")
	// ErrInstall wraps a filesystem rename or permission failure during install.
	ErrInstall = errors.New("install failed")
	// ErrCancelled means the download was aborted by the user. Not a
	// failure from the user's perspective.
	ErrCancelled = errors.New("download cancelled")
)

// Release is a tagged, versioned build published by the release service.
// Immutable once fetched; re-fetched on every check.
type Release struct {
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	Body       string  `json:"body"`
	HTMLURL    string  `json:"html_url"`
	Prerelease bool    `json:"prerelease"`
	Assets     []Asset `json:"assets"`
}

// Asset is a single downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// Progress is a snapshot of one in-flight download, emitted after every
// chunk. Downloaded values are monotonically non-decreasing across a
// session; the final successful snapshot has Downloaded == Total.
type Progress struct {
	Downloaded int64         // Bytes written so far
	Total      int64         // Expected total bytes (asset size)
	Speed      float64       // Bytes per second; 0 until any time has elapsed
	ETA        time.Duration // Estimated time remaining; 0 when speed is 0
}

// ProgressFunc receives progress snapshots during a download. It is
// invoked from the worker goroutine.
type ProgressFunc func(Progress)

// Result describes the outcome of a version check. LatestTag is the
// tag exactly as published and is what downloads must request;
// LatestVersion is normalized for display and comparison.
type Result struct {
	CurrentVersion string    `json:"current_version"`
	LatestVersion  string    `json:"latest_version,omitempty"`
	LatestTag      string    `json:"latest_tag,omitempty"`
	Available      bool      `json:"update_available"`
	ReleaseNotes   string    `json:"release_notes,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}
