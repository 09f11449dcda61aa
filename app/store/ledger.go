// Package store holds the flat-file persistence for the bot: the dedup
// ledger, the event classification cache, and the rider ignore list. Each is
// a single JSON text file, read whole at startup and rewritten whole on
// commit. Absent or corrupt files degrade to empty state; report-once
// correctness is preferred over crashing, at the cost of a possible repeat
// post after a lost ledger.
package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"sort"
)

// Ledger is the persistent set of result identities that have already been
// posted. It grows monotonically and is never evicted: a historical identity
// remains a valid exclusion key indefinitely. At tens of records per week the
// unbounded growth is an accepted tradeoff.
type Ledger struct {
	path string
	seen map[string]struct{}
}

// OpenLedger loads the ledger at path. A missing or unreadable file yields an
// empty ledger, never an error: the first run starts from nothing.
func OpenLedger(path string) *Ledger {
	ledger := &Ledger{
		path: path,
		seen: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read ledger, starting empty", "path", path, "error", err)
		}
		return ledger
	}

	var identities []string
	if err := json.Unmarshal(data, &identities); err != nil {
		slog.Warn("Ledger file corrupt, starting empty", "path", path, "error", err)
		return ledger
	}

	for _, id := range identities {
		ledger.seen[id] = struct{}{}
	}
	return ledger
}

func (l *Ledger) Contains(identity string) bool {
	_, ok := l.seen[identity]
	return ok
}

func (l *Ledger) Len() int {
	return len(l.seen)
}

// Commit adds the newly accepted identities and rewrites the backing file in
// full, sorted for stable diffs. Called at most once per run, and only after
// the notification actually went out: an identity is never marked seen unless
// it was reported, so a delivery failure keeps the records retryable.
func (l *Ledger) Commit(accepted []string) error {
	for _, id := range accepted {
		l.seen[id] = struct{}{}
	}

	identities := make([]string, 0, len(l.seen))
	for id := range l.seen {
		identities = append(identities, id)
	}
	sort.Strings(identities)

	data, err := json.MarshalIndent(identities, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(l.path, data)
}
