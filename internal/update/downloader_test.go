package update

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newReleaseServer serves a single v1.3.0 release whose asset body is
// content, downloadable from the same server.
func newReleaseServer(t *testing.T, assetName string, content []byte) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/someuser/someapp/releases/tags/v1.3.0", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tag_name": "v1.3.0", "assets": [
			{"name": %q, "browser_download_url": "%s/asset", "size": %d}
		]}`, assetName, server.URL, len(content))
	})
	mux.HandleFunc("/asset", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(content)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestDownloader(t *testing.T, server *httptest.Server) *Downloader {
	t.Helper()

	execPath := filepath.Join(t.TempDir(), "keyden")
	if err := os.WriteFile(execPath, []byte("old binary"), 0755); err != nil {
		t.Fatal(err)
	}

	client := NewClient("someuser", "someapp", WithBaseURLs(server.URL, server.URL))
	return NewDownloader(client, execPath, WithAssetName("keyden-test"))
}

func TestDownloadSuccess(t *testing.T) {
	content := bytes.Repeat([]byte("x"), 1000)
	server := newReleaseServer(t, "keyden-test", content)
	d := newTestDownloader(t, server)

	staged, err := d.Download(context.Background(), "v1.3.0", nil)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if staged != d.StagingPath() {
		t.Errorf("staged = %s, want %s", staged, d.StagingPath())
	}

	got, err := os.ReadFile(staged)
	if err != nil {
		t.Fatalf("read staging file: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("staging file has %d bytes, want %d", len(got), len(content))
	}
}

func TestDownloadProgressReporting(t *testing.T) {
	content := bytes.Repeat([]byte("x"), 1000)
	server := newReleaseServer(t, "keyden-test", content)
	d := newTestDownloader(t, server)
	d.chunkSize = 100

	var calls []Progress
	_, err := d.Download(context.Background(), "v1.3.0", func(p Progress) {
		calls = append(calls, p)
	})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if len(calls) < 11 {
		t.Fatalf("got %d progress calls, want at least 11 (initial + 10 chunks)", len(calls))
	}

	first := calls[0]
	if first.Downloaded != 0 || first.Total != 1000 {
		t.Errorf("first snapshot = %d/%d, want 0/1000", first.Downloaded, first.Total)
	}

	last := calls[len(calls)-1]
	if last.Downloaded != 1000 || last.Total != 1000 {
		t.Errorf("final snapshot = %d/%d, want 1000/1000", last.Downloaded, last.Total)
	}

	for i := 1; i < len(calls); i++ {
		delta := calls[i].Downloaded - calls[i-1].Downloaded
		if delta < 0 {
			t.Fatalf("progress went backwards at call %d: %d -> %d", i, calls[i-1].Downloaded, calls[i].Downloaded)
		}
		if delta > 100 {
			t.Fatalf("chunk delta %d exceeds chunk size at call %d", delta, i)
		}
		if calls[i].Total != 1000 {
			t.Fatalf("total changed mid-download at call %d", i)
		}
	}
}

func TestDownloadAssetNotFound(t *testing.T) {
	server := newReleaseServer(t, "keyden-other-platform", []byte("data"))
	d := newTestDownloader(t, server)

	_, err := d.Download(context.Background(), "v1.3.0", nil)
	if !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("error = %v, want ErrAssetNotFound", err)
	}

	if _, statErr := os.Stat(d.StagingPath()); !os.IsNotExist(statErr) {
		t.Error("no staging file should exist when the asset is missing")
	}
}

func TestDownloadZeroSizeAsset(t *testing.T) {
	server := newReleaseServer(t, "keyden-test", nil)
	d := newTestDownloader(t, server)

	_, err := d.Download(context.Background(), "v1.3.0", nil)
	if !errors.Is(err, ErrInvalidAsset) {
		t.Fatalf("error = %v, want ErrInvalidAsset", err)
	}
}

func TestDownloadCancellation(t *testing.T) {
	var server *httptest.Server
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/someuser/someapp/releases/tags/v1.3.0", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tag_name": "v1.3.0", "assets": [
			{"name": "keyden-test", "browser_download_url": "%s/asset", "size": 1000}
		]}`, server.URL)
	})
	mux.HandleFunc("/asset", func(w http.ResponseWriter, r *http.Request) {
		// Deliver a partial body, then stall until the client goes away.
		_, _ = w.Write(bytes.Repeat([]byte("x"), 200))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	server = httptest.NewServer(mux)
	defer server.Close()
	defer close(release)

	d := newTestDownloader(t, server)
	d.chunkSize = 100

	ctx, cancel := context.WithCancel(context.Background())

	var sawBytes bool
	_, err := d.Download(ctx, "v1.3.0", func(p Progress) {
		if p.Downloaded > 0 && !sawBytes {
			sawBytes = true
			cancel()
		}
	})

	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("error = %v, want ErrCancelled", err)
	}
	if !sawBytes {
		t.Error("expected at least one chunk before cancellation")
	}

	// The partial staging file must not survive a cancelled session.
	if _, statErr := os.Stat(d.StagingPath()); !os.IsNotExist(statErr) {
		t.Error("partial staging file should be removed after cancellation")
	}
}

func TestDownloadServerFailure(t *testing.T) {
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/someuser/someapp/releases/tags/v1.3.0", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tag_name": "v1.3.0", "assets": [
			{"name": "keyden-test", "browser_download_url": "%s/asset", "size": 1000}
		]}`, server.URL)
	})
	mux.HandleFunc("/asset", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	d := newTestDownloader(t, server)

	_, err := d.Download(context.Background(), "v1.3.0", nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
	if _, statErr := os.Stat(d.StagingPath()); !os.IsNotExist(statErr) {
		t.Error("no staging file should survive a failed download")
	}
}

func TestFindAsset(t *testing.T) {
	assets := []Asset{
		{Name: "keyden-linux-amd64", Size: 10},
		{Name: "keyden-darwin-arm64", Size: 20},
	}

	got, err := findAsset(assets, "keyden-darwin-arm64")
	if err != nil {
		t.Fatalf("findAsset() error = %v", err)
	}
	if got.Size != 20 {
		t.Errorf("Size = %d, want 20", got.Size)
	}

	if _, err := findAsset(assets, "keyden-windows-amd64.exe"); !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("error = %v, want ErrAssetNotFound", err)
	}
}

func TestSnapshotMath(t *testing.T) {
	t.Run("zero elapsed yields zero speed", func(t *testing.T) {
		p := snapshot(0, 1000, time.Now())
		if p.Speed != 0 {
			t.Errorf("Speed = %f, want 0", p.Speed)
		}
		if p.ETA != 0 {
			t.Errorf("ETA = %v, want 0", p.ETA)
		}
	})

	t.Run("speed and eta derived from elapsed", func(t *testing.T) {
		start := time.Now().Add(-2 * time.Second)
		p := snapshot(500, 1000, start)

		// ~250 B/s after 2s; allow scheduling slack.
		if p.Speed < 200 || p.Speed > 300 {
			t.Errorf("Speed = %f, want ~250", p.Speed)
		}
		if p.ETA <= 0 || p.ETA > 3*time.Second {
			t.Errorf("ETA = %v, want ~2s", p.ETA)
		}
	})

	t.Run("complete download has zero eta", func(t *testing.T) {
		start := time.Now().Add(-1 * time.Second)
		p := snapshot(1000, 1000, start)
		if p.ETA != 0 {
			t.Errorf("ETA = %v, want 0 when nothing remains", p.ETA)
		}
	})
}
