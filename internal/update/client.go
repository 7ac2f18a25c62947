package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default endpoints and limits for the release service.
const (
	defaultAPIBaseURL = "https://api.github.com"
	defaultRawBaseURL = "https://raw.githubusercontent.com"
	defaultTimeout    = 30 * time.Second

	// maxResponseBytes bounds API response bodies (10 MB).
	maxResponseBytes = 10 << 20
)

// changelogPlaceholder is returned when the changelog cannot be fetched.
const changelogPlaceholder = "Changelog unavailable."

// Client queries the release service for version metadata, asset lists,
// and changelog text. The credential is an explicit construction-time
// value, never read from process globals.
type Client struct {
	owner      string
	repo       string
	token      string // Optional bearer credential
	httpClient *http.Client
	apiBaseURL string // Overridable for tests
	rawBaseURL string // Overridable for tests
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets an optional bearer credential. Absent, calls degrade
// to unauthenticated requests.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithBaseURLs overrides the API and raw-content base URLs, primarily
// for test servers.
func WithBaseURLs(api, raw string) ClientOption {
	return func(c *Client) {
		c.apiBaseURL = api
		c.rawBaseURL = raw
	}
}

// NewClient creates a release client for the given repository.
func NewClient(owner, repo string, opts ...ClientOption) *Client {
	c := &Client{
		owner: owner,
		repo:  repo,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		apiBaseURL: defaultAPIBaseURL,
		rawBaseURL: defaultRawBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestRelease fetches the single most recent release.
func (c *Client) LatestRelease(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.apiBaseURL, c.owner, c.repo)

	var release Release
	if err := c.getJSON(ctx, url, &release); err != nil {
		return nil, err
	}
	return &release, nil
}

// ListReleases fetches all releases in service-defined order (newest first).
func (c *Client) ListReleases(ctx context.Context) ([]Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases", c.apiBaseURL, c.owner, c.repo)

	var releases []Release
	if err := c.getJSON(ctx, url, &releases); err != nil {
		return nil, err
	}
	return releases, nil
}

// ReleaseAssets fetches the asset list for a given tag.
func (c *Client) ReleaseAssets(ctx context.Context, tag string) ([]Asset, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.apiBaseURL, c.owner, c.repo, tag)

	var release Release
	if err := c.getJSON(ctx, url, &release); err != nil {
		return nil, err
	}
	return release.Assets, nil
}

// Changelog fetches the raw changelog text for a branch. Any failure
// degrades to a placeholder string rather than propagating an error.
func (c *Client) Changelog(ctx context.Context, branch string) string {
	url := fmt.Sprintf("%s/%s/%s/%s/CHANGELOG.md", c.rawBaseURL, c.owner, c.repo, branch)

	resp, err := c.get(ctx, url)
	if err != nil {
		return changelogPlaceholder
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return changelogPlaceholder
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return changelogPlaceholder
	}
	return string(body)
}

// get executes a GET request with the common service headers.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "keyden-updater")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return resp, nil
}

// getJSON executes a GET request and decodes the JSON response into v.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: status 403 (rate limited?)", ErrNetwork)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
