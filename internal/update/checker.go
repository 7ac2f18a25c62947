package update

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Checker compares the running version against the latest published
// release. It runs exactly once per Check call; re-checks happen only
// on explicit user action.
type Checker struct {
	client         *Client
	currentVersion string
}

// NewChecker creates a checker for the given release client and running version.
func NewChecker(client *Client, currentVersion string) *Checker {
	return &Checker{
		client:         client,
		currentVersion: currentVersion,
	}
}

// Check fetches the latest release and reports whether it is newer than
// the running version. On any network or parse failure the Result
// reports Available=false and the error is returned alongside it so the
// caller can surface it. Never retries.
func (c *Checker) Check(ctx context.Context) (Result, error) {
	result := Result{
		CurrentVersion: Normalize(c.currentVersion),
		CheckedAt:      time.Now(),
	}

	release, err := c.client.LatestRelease(ctx)
	if err != nil {
		log.Debug("update check failed", "err", err)
		return result, err
	}

	newer, err := IsNewer(release.TagName, c.currentVersion)
	if err != nil {
		log.Debug("update check: unparsable version", "tag", release.TagName, "err", err)
		return result, err
	}

	result.LatestVersion = Normalize(release.TagName)
	result.LatestTag = release.TagName
	result.Available = newer
	result.ReleaseNotes = release.Body

	log.Debug("update check complete",
		"current", result.CurrentVersion,
		"latest", result.LatestVersion,
		"available", result.Available)

	return result, nil
}
