package store

import (
	"encoding/json"
	"log/slog"
	"os"
)

// IgnoreList is the externally maintained set of rider names excluded from
// posting. It is loaded fresh each run and never written by the bot.
type IgnoreList struct {
	riders map[string]struct{}
}

type ignoreFile struct {
	Riders []string `json:"riders"`
}

// LoadIgnoreList reads the ignore file at path. An absent or malformed file
// yields an empty exclusion set without aborting the run.
func LoadIgnoreList(path string) *IgnoreList {
	list := &IgnoreList{riders: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read ignore list, excluding nobody", "path", path, "error", err)
		}
		return list
	}

	var parsed ignoreFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		slog.Warn("Ignore list malformed, excluding nobody", "path", path, "error", err)
		return list
	}

	for _, rider := range parsed.Riders {
		list.riders[rider] = struct{}{}
	}
	return list
}

// Contains is an exact-match test on the rider name.
func (l *IgnoreList) Contains(rider string) bool {
	_, ok := l.riders[rider]
	return ok
}

func (l *IgnoreList) Len() int {
	return len(l.riders)
}
