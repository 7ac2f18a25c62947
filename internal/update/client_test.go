package update

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLatestRelease(t *testing.T) {
	var gotAuth, gotAccept string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/someuser/someapp/releases/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"tag_name": "v1.3.0", "name": "1.3.0", "body": "notes"}`))
	}))
	defer server.Close()

	client := NewClient("someuser", "someapp",
		WithToken("secret"),
		WithBaseURLs(server.URL, server.URL),
	)

	release, err := client.LatestRelease(context.Background())
	if err != nil {
		t.Fatalf("LatestRelease() error = %v", err)
	}

	if release.TagName != "v1.3.0" {
		t.Errorf("TagName = %s, want v1.3.0", release.TagName)
	}
	if release.Body != "notes" {
		t.Errorf("Body = %s, want notes", release.Body)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", gotAuth)
	}
	if gotAccept != "application/vnd.github+json" {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestLatestReleaseNoToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("Authorization should be unset, got %q", auth)
		}
		w.Write([]byte(`{"tag_name": "v1.3.0"}`))
	}))
	defer server.Close()

	client := NewClient("someuser", "someapp", WithBaseURLs(server.URL, server.URL))
	if _, err := client.LatestRelease(context.Background()); err != nil {
		t.Fatalf("LatestRelease() error = %v", err)
	}
}

func TestListReleases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/someuser/someapp/releases" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"tag_name": "v1.3.0"}, {"tag_name": "v1.2.0"}]`))
	}))
	defer server.Close()

	client := NewClient("someuser", "someapp", WithBaseURLs(server.URL, server.URL))

	releases, err := client.ListReleases(context.Background())
	if err != nil {
		t.Fatalf("ListReleases() error = %v", err)
	}
	if len(releases) != 2 {
		t.Fatalf("len(releases) = %d, want 2", len(releases))
	}
	if releases[0].TagName != "v1.3.0" {
		t.Errorf("releases[0] = %s, want v1.3.0 (service order preserved)", releases[0].TagName)
	}
}

func TestReleaseAssets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/someuser/someapp/releases/tags/v1.3.0" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"tag_name": "v1.3.0", "assets": [
			{"name": "keyden-linux-amd64", "browser_download_url": "http://example/dl", "size": 1000}
		]}`))
	}))
	defer server.Close()

	client := NewClient("someuser", "someapp", WithBaseURLs(server.URL, server.URL))

	assets, err := client.ReleaseAssets(context.Background(), "v1.3.0")
	if err != nil {
		t.Fatalf("ReleaseAssets() error = %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("len(assets) = %d, want 1", len(assets))
	}
	if assets[0].Size != 1000 {
		t.Errorf("Size = %d, want 1000", assets[0].Size)
	}
}

func TestGetJSONErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"rate limited", http.StatusForbidden},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient("someuser", "someapp", WithBaseURLs(server.URL, server.URL))

			_, err := client.LatestRelease(context.Background())
			if !errors.Is(err, ErrNetwork) {
				t.Errorf("error = %v, want ErrNetwork", err)
			}
		})
	}
}

func TestChangelog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/someuser/someapp/main/CHANGELOG.md" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("# Changelog\n\n## 1.3.0\n- things"))
	}))
	defer server.Close()

	client := NewClient("someuser", "someapp", WithBaseURLs(server.URL, server.URL))

	got := client.Changelog(context.Background(), "main")
	if !strings.HasPrefix(got, "# Changelog") {
		t.Errorf("Changelog() = %q", got)
	}
}

func TestChangelogDegradesToPlaceholder(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		client := NewClient("someuser", "someapp", WithBaseURLs(server.URL, server.URL))
		if got := client.Changelog(context.Background(), "main"); got != changelogPlaceholder {
			t.Errorf("Changelog() = %q, want placeholder", got)
		}
	})

	t.Run("unreachable server", func(t *testing.T) {
		server := httptest.NewServer(nil)
		server.Close()

		client := NewClient("someuser", "someapp", WithBaseURLs(server.URL, server.URL))
		if got := client.Changelog(context.Background(), "main"); got != changelogPlaceholder {
			t.Errorf("Changelog() = %q, want placeholder", got)
		}
	})
}
