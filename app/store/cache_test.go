package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassificationCache_MissingFileStartsEmpty(t *testing.T) {
	cache := OpenClassificationCache(filepath.Join(t.TempDir(), "categories.json"))
	if cache.Len() != 0 {
		t.Errorf("len = %d, want 0", cache.Len())
	}
}

func TestClassificationCache_SetCommitReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.json")

	cache := OpenClassificationCache(path)
	cache.Set("https://zp/events.php?zid=1", "race")
	if err := cache.Commit(); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}

	reloaded := OpenClassificationCache(path)
	token, ok := reloaded.Get("https://zp/events.php?zid=1")
	if !ok || token != "race" {
		t.Errorf("Get = (%q, %v), want (race, true)", token, ok)
	}
}

func TestClassificationCache_CommitWithoutChangesDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.json")

	cache := OpenClassificationCache(path)
	if err := cache.Commit(); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("clean cache should not create a file on commit")
	}
}

func TestClassificationCache_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.json")
	if err := os.WriteFile(path, []byte("[1,2,3]"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := OpenClassificationCache(path)
	if cache.Len() != 0 {
		t.Errorf("len = %d, want 0 for corrupt file", cache.Len())
	}
}
