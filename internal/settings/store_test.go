package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"))

	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
	if len(store.All()) != 0 {
		t.Errorf("All() = %v, want empty", store.All())
	}
}

func TestStoreLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v, want nil for malformed file", err)
	}
	if len(store.All()) != 0 {
		t.Errorf("All() = %v, want empty after discarding malformed file", store.All())
	}
}

func TestStoreSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	store := NewStore(path)
	store.Set(KeyAutoCheck, true)
	store.Set("theme", "dark")

	if err := store.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded := NewStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reloaded.GetBool(KeyAutoCheck) {
		t.Error("auto_check should survive a save/load round trip")
	}
	if got := reloaded.GetString("theme"); got != "dark" {
		t.Errorf("theme = %q, want dark", got)
	}
}

func TestMarkUpdated(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"))

	store.MarkUpdated("1.3.0")

	if !store.GetBool(KeyShowUpdateMessage) {
		t.Error("show_update_message should be set")
	}
	if got := store.GetString(KeyUpdatedVersion); got != "1.3.0" {
		t.Errorf("updated_version = %q, want 1.3.0", got)
	}

	store.ClearUpdateNotice()

	if store.GetBool(KeyShowUpdateMessage) {
		t.Error("show_update_message should be cleared")
	}
}
