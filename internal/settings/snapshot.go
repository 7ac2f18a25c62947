package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// maxSnapshots bounds the number of retained snapshots; older ones are
// pruned on Create.
const maxSnapshots = 10

// Snapshot is a point-in-time copy of the settings taken before an
// update installs, so a bad upgrade can be unwound along with the
// binary rollback.
type Snapshot struct {
	ID         string                 `json:"id"`
	CreatedAt  time.Time              `json:"created_at"`
	Note       string                 `json:"note,omitempty"`
	AppVersion string                 `json:"app_version"`
	Settings   map[string]interface{} `json:"settings"`
}

// SnapshotInfo provides summary information about a snapshot for listing.
type SnapshotInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Note      string    `json:"note,omitempty"`
	Size      int64     `json:"size"`
}

// SnapshotManager handles snapshot operations.
type SnapshotManager struct {
	snapshotDir string
	appVersion  string
}

// NewSnapshotManager creates a snapshot manager using the default
// cache directory.
func NewSnapshotManager(version string) (*SnapshotManager, error) {
	dir, err := getSnapshotDir()
	if err != nil {
		return nil, err
	}
	return &SnapshotManager{snapshotDir: dir, appVersion: version}, nil
}

// NewSnapshotManagerWithDir creates a snapshot manager with a custom
// directory (for testing).
func NewSnapshotManagerWithDir(dir, version string) *SnapshotManager {
	return &SnapshotManager{snapshotDir: dir, appVersion: version}
}

// getSnapshotDir returns the default snapshot directory path.
func getSnapshotDir() (string, error) {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "keyden", "snapshots"), nil
}

// Create writes a new snapshot of the given store and prunes old ones.
func (m *SnapshotManager) Create(store *Store, note string) (*Snapshot, error) {
	if err := os.MkdirAll(m.snapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	now := time.Now()
	id := now.Format("2006-01-02-150405")

	snapshot := &Snapshot{
		ID:         id,
		CreatedAt:  now,
		Note:       note,
		AppVersion: m.appVersion,
		Settings:   store.All(),
	}

	path := filepath.Join(m.snapshotDir, fmt.Sprintf("%s.json", id))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot file: %w", err)
	}

	if err := m.prune(); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// List returns all snapshots sorted by creation time (newest first).
func (m *SnapshotManager) List() ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(m.snapshotDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SnapshotInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var snapshots []SnapshotInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		snapshot, err := m.loadSnapshot(filepath.Join(m.snapshotDir, entry.Name()))
		if err != nil {
			continue
		}

		snapshots = append(snapshots, SnapshotInfo{
			ID:        snapshot.ID,
			CreatedAt: snapshot.CreatedAt,
			Note:      snapshot.Note,
			Size:      info.Size(),
		})
	}

	// Sort by creation time, newest first
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})

	return snapshots, nil
}

// Get retrieves a snapshot by ID. Use "latest" for the most recent one.
func (m *SnapshotManager) Get(id string) (*Snapshot, error) {
	if id == "latest" {
		snapshots, err := m.List()
		if err != nil {
			return nil, err
		}
		if len(snapshots) == 0 {
			return nil, fmt.Errorf("no snapshots found")
		}
		id = snapshots[0].ID
	}

	return m.loadSnapshot(filepath.Join(m.snapshotDir, fmt.Sprintf("%s.json", id)))
}

// Delete removes a snapshot by ID.
func (m *SnapshotManager) Delete(id string) error {
	path := filepath.Join(m.snapshotDir, fmt.Sprintf("%s.json", id))

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("snapshot not found: %s", id)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	return nil
}

// Restore applies a snapshot's settings to the store and saves it.
func (m *SnapshotManager) Restore(id string, store *Store) error {
	snapshot, err := m.Get(id)
	if err != nil {
		return err
	}

	for key, value := range snapshot.Settings {
		store.Set(key, value)
	}

	return store.Save()
}

// prune removes the oldest snapshots beyond the retention limit.
func (m *SnapshotManager) prune() error {
	snapshots, err := m.List()
	if err != nil {
		return err
	}

	for i := maxSnapshots; i < len(snapshots); i++ {
		if err := m.Delete(snapshots[i].ID); err != nil {
			return err
		}
	}

	return nil
}

// loadSnapshot reads and parses a snapshot file.
func (m *SnapshotManager) loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot not found: %s", filepath.Base(path))
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}

	return &snapshot, nil
}

// SnapshotDir returns the snapshot directory path.
func (m *SnapshotManager) SnapshotDir() string {
	return m.snapshotDir
}
