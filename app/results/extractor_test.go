package results

import (
	"testing"
	"time"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	extractor, err := NewExtractor("https://zwiftpower.com")
	if err != nil {
		t.Fatalf("failed to build extractor: %v", err)
	}
	return extractor
}

func TestExtractor_QualifyingRow(t *testing.T) {
	html := `<table><tr>
		<td>1</td>
		<td>2025-09-04 18:45:00</td>
		<td><a href="events.php?zid=101">Evening Crit</a></td>
		<td><a href="profile.php?z=555">Alice</a></td>
		<td>B</td>
	</tr></table>`

	extracted := newTestExtractor(t).Run([]byte(html))
	if len(extracted) != 1 {
		t.Fatalf("expected 1 record, got %d", len(extracted))
	}

	r := extracted[0]
	if r.Rank != 1 {
		t.Errorf("rank = %d, want 1", r.Rank)
	}
	if r.Rider != "Alice" {
		t.Errorf("rider = %q, want Alice", r.Rider)
	}
	if r.EventName != "Evening Crit" {
		t.Errorf("event name = %q, want Evening Crit", r.EventName)
	}
	if r.EventURL != "https://zwiftpower.com/events.php?zid=101" {
		t.Errorf("event URL = %q", r.EventURL)
	}
	if r.Category != "B" {
		t.Errorf("category = %q, want B", r.Category)
	}
	want := time.Date(2025, 9, 4, 18, 45, 0, 0, time.UTC)
	if !r.OccurredAt.Equal(want) {
		t.Errorf("occurred at = %v, want %v", r.OccurredAt, want)
	}
}

func TestExtractor_RowsWithoutBothLinksSkipped(t *testing.T) {
	html := `<table>
		<tr><td>1</td><td>2025-09-04</td><td><a href="events.php?zid=1">Race</a></td><td>no rider link</td></tr>
		<tr><td>2</td><td>2025-09-04</td><td>no event link</td><td><a href="profile.php?z=2">Bob</a></td></tr>
		<tr><td>header-ish row with no links at all</td></tr>
	</table>`

	if extracted := newTestExtractor(t).Run([]byte(html)); len(extracted) != 0 {
		t.Errorf("expected 0 records, got %d", len(extracted))
	}
}

func TestExtractor_LabeledRankPreferred(t *testing.T) {
	// The scan fallback would find 7 first; the data-label cell must win.
	html := `<table><tr>
		<td>7</td>
		<td data-label="Position">2nd</td>
		<td>2025-09-04</td>
		<td><a href="events.php?zid=1">Race</a></td>
		<td><a href="profile.php?z=2">Bob</a></td>
	</tr></table>`

	extracted := newTestExtractor(t).Run([]byte(html))
	if len(extracted) != 1 {
		t.Fatalf("expected 1 record, got %d", len(extracted))
	}
	if extracted[0].Rank != 2 {
		t.Errorf("rank = %d, want 2 (from labeled cell)", extracted[0].Rank)
	}
}

func TestExtractor_ClassHintedRank(t *testing.T) {
	html := `<table><tr>
		<td>2025-09-04</td>
		<td class="col-rank">3rd</td>
		<td><a href="events.php?zid=1">Race</a></td>
		<td><a href="profile.php?z=2">Bob</a></td>
	</tr></table>`

	extracted := newTestExtractor(t).Run([]byte(html))
	if len(extracted) != 1 {
		t.Fatalf("expected 1 record, got %d", len(extracted))
	}
	if extracted[0].Rank != 3 {
		t.Errorf("rank = %d, want 3", extracted[0].Rank)
	}
}

// A date cell must never be misread as a rank, even when it is the only
// numeric-looking cell ahead of the real one.
func TestExtractor_DateCellNotMistakenForRank(t *testing.T) {
	html := `<table><tr>
		<td>2025-09-04</td>
		<td>1</td>
		<td><a href="events.php?zid=1">Race</a></td>
		<td><a href="profile.php?z=2">Bob</a></td>
	</tr></table>`

	extracted := newTestExtractor(t).Run([]byte(html))
	if len(extracted) != 1 {
		t.Fatalf("expected 1 record, got %d", len(extracted))
	}
	if extracted[0].Rank != 1 {
		t.Errorf("rank = %d, want 1", extracted[0].Rank)
	}
}

func TestExtractor_NoRankSkipsRow(t *testing.T) {
	html := `<table><tr>
		<td>2025-09-04</td>
		<td>DNF</td>
		<td><a href="events.php?zid=1">Race</a></td>
		<td><a href="profile.php?z=2">Bob</a></td>
	</tr></table>`

	if extracted := newTestExtractor(t).Run([]byte(html)); len(extracted) != 0 {
		t.Errorf("expected 0 records, got %d", len(extracted))
	}
}

func TestExtractor_RankBounds(t *testing.T) {
	// 1000 has four digits and must not qualify as a rank; with no other
	// integer cell the row is dropped.
	html := `<table><tr>
		<td>1000</td>
		<td>2025-09-04</td>
		<td><a href="events.php?zid=1">Race</a></td>
		<td><a href="profile.php?z=2">Bob</a></td>
	</tr></table>`

	if extracted := newTestExtractor(t).Run([]byte(html)); len(extracted) != 0 {
		t.Errorf("expected 0 records for rank 1000, got %d", len(extracted))
	}
}

func TestExtractor_NoDateSkipsRow(t *testing.T) {
	html := `<table><tr>
		<td>1</td>
		<td>sometime last week</td>
		<td><a href="events.php?zid=1">Race</a></td>
		<td><a href="profile.php?z=2">Bob</a></td>
	</tr></table>`

	if extracted := newTestExtractor(t).Run([]byte(html)); len(extracted) != 0 {
		t.Errorf("expected 0 records, got %d", len(extracted))
	}
}

func TestExtractor_NamelessRiderDegradesToUnknown(t *testing.T) {
	html := `<table><tr>
		<td>1</td>
		<td>2025-09-04</td>
		<td><a href="events.php?zid=1">Race</a></td>
		<td><a href="profile.php?z=2"></a></td>
	</tr></table>`

	extracted := newTestExtractor(t).Run([]byte(html))
	if len(extracted) != 1 {
		t.Fatalf("expected 1 record, got %d", len(extracted))
	}
	if extracted[0].Rider != "Unknown" {
		t.Errorf("rider = %q, want Unknown", extracted[0].Rider)
	}
}

func TestExtractor_MissingCategoryDefaultsToQuestionMark(t *testing.T) {
	html := `<table><tr>
		<td>1</td>
		<td>2025-09-04</td>
		<td><a href="events.php?zid=1">Race</a></td>
		<td><a href="profile.php?z=2">Bob</a></td>
	</tr></table>`

	extracted := newTestExtractor(t).Run([]byte(html))
	if len(extracted) != 1 {
		t.Fatalf("expected 1 record, got %d", len(extracted))
	}
	if extracted[0].Category != "?" {
		t.Errorf("category = %q, want ?", extracted[0].Category)
	}
}

func TestExtractor_GarbageDocument(t *testing.T) {
	if extracted := newTestExtractor(t).Run([]byte("not markup at all")); len(extracted) != 0 {
		t.Errorf("expected 0 records from garbage input, got %d", len(extracted))
	}
}
