package results

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimestamp_AcceptedFormats(t *testing.T) {
	cases := []struct {
		text string
		want time.Time
	}{
		{"2025-09-04 18:45:00", time.Date(2025, 9, 4, 18, 45, 0, 0, time.UTC)},
		{"2025-09-04", time.Date(2025, 9, 4, 0, 0, 0, 0, time.UTC)},
		{"2025-9-4", time.Date(2025, 9, 4, 0, 0, 0, 0, time.UTC)},
		{"04/09/2025 18:45:00", time.Date(2025, 9, 4, 18, 45, 0, 0, time.UTC)},
		{"04/09/2025", time.Date(2025, 9, 4, 0, 0, 0, 0, time.UTC)},
		{"4 September 2025 18:45", time.Date(2025, 9, 4, 18, 45, 0, 0, time.UTC)},
		{"4 September 2025", time.Date(2025, 9, 4, 0, 0, 0, 0, time.UTC)},
		{"  2025-09-04  ", time.Date(2025, 9, 4, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, err := ParseTimestamp(tc.text)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) returned error: %v", tc.text, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tc.text, got, tc.want)
		}
		if got.Location() != time.UTC {
			t.Errorf("ParseTimestamp(%q) location = %v, want UTC", tc.text, got.Location())
		}
	}
}

func TestParseTimestamp_Rejected(t *testing.T) {
	cases := []string{
		"",
		"yesterday",
		"Alice",
		"385 W",
		"09-04-2025", // month-first with dashes is not an accepted shape
		"2025/09",
	}

	for _, text := range cases {
		_, err := ParseTimestamp(text)
		if !errors.Is(err, ErrUnparseableTimestamp) {
			t.Errorf("ParseTimestamp(%q) error = %v, want ErrUnparseableTimestamp", text, err)
		}
	}
}

// Every text the extractor treats as date-like must parse. The two heuristics
// are logically independent, so this is the guard that keeps them in sync.
func TestLooksLikeDate_ImpliesParseable(t *testing.T) {
	samples := []string{
		"2025-09-04 18:45:00",
		"2025-09-04 18:45",
		"2025-09-04",
		"2025/09/04",
		"2025-9-4",
		"04/09/2025 18:45:00",
		"04/09/2025",
		"4 September 2025 18:45",
		"4 September 2025",
		"28 February 2024",
	}

	for _, text := range samples {
		if !LooksLikeDate(text) {
			t.Errorf("LooksLikeDate(%q) = false, want true", text)
			continue
		}
		if _, err := ParseTimestamp(text); err != nil {
			t.Errorf("%q looks like a date but does not parse: %v", text, err)
		}
	}
}

func TestLooksLikeDate_Negative(t *testing.T) {
	cases := []string{
		"1",
		"2nd",
		"Alice Smith",
		"Race results 2025",
		"B",
	}

	for _, text := range cases {
		if LooksLikeDate(text) {
			t.Errorf("LooksLikeDate(%q) = true, want false", text)
		}
	}
}
