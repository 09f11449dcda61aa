package store

import (
	"encoding/json"
	"log/slog"
	"os"
)

// ClassificationCache maps event URLs to their normalized category token so
// an event's detail page is fetched at most once across runs. There is no
// expiry: a classification is treated as immutable once observed (delete the
// file out-of-band to force reclassification).
type ClassificationCache struct {
	path    string
	entries map[string]string
	dirty   bool
}

// OpenClassificationCache loads the cache at path; missing or corrupt files
// yield an empty cache without failing the run.
func OpenClassificationCache(path string) *ClassificationCache {
	cache := &ClassificationCache{
		path:    path,
		entries: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read classification cache, starting empty", "path", path, "error", err)
		}
		return cache
	}

	if err := json.Unmarshal(data, &cache.entries); err != nil {
		slog.Warn("Classification cache corrupt, starting empty", "path", path, "error", err)
		cache.entries = make(map[string]string)
	}
	return cache
}

func (c *ClassificationCache) Get(eventURL string) (string, bool) {
	token, ok := c.entries[eventURL]
	return token, ok
}

func (c *ClassificationCache) Set(eventURL, token string) {
	if existing, ok := c.entries[eventURL]; ok && existing == token {
		return
	}
	c.entries[eventURL] = token
	c.dirty = true
}

func (c *ClassificationCache) Len() int {
	return len(c.entries)
}

// Commit rewrites the backing file when entries changed this run.
// Classification is independent of delivery, so unlike the ledger this is
// committed even when the notification post fails.
func (c *ClassificationCache) Commit() error {
	if !c.dirty {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(c.path, data); err != nil {
		return err
	}
	c.dirty = false
	return nil
}
