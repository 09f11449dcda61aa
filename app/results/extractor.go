package results

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor recovers Result records from the team results page. The page has
// no stable schema: its layout has changed several times, so every field is
// recovered by an ordered list of heuristics, first success wins, and rows
// that defeat all of them are skipped rather than failing the run.
type Extractor struct {
	baseURL *url.URL
}

func NewExtractor(baseURL string) (*Extractor, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	return &Extractor{baseURL: parsed}, nil
}

// Run parses the markup and returns every row that yields a complete record.
// It never fails: a document with no recognizable rows produces an empty
// slice, and per-row problems are logged at debug level only.
func (e *Extractor) Run(data []byte) []Result {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		slog.Debug("Markup not parseable, no rows extracted", "error", err)
		return nil
	}

	var extracted []Result
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		result, ok := e.extractRow(row)
		if !ok {
			return
		}
		extracted = append(extracted, result)
	})

	return extracted
}

// extractRow evaluates one structural row. A candidate must carry both an
// event link and a rider profile link; anything else is not a results row and
// is rejected before field extraction is attempted.
func (e *Extractor) extractRow(row *goquery.Selection) (Result, bool) {
	eventLink := row.Find(`a[href*="events.php"]`).First()
	riderLink := row.Find(`a[href*="profile.php?z="]`).First()
	if eventLink.Length() == 0 || riderLink.Length() == 0 {
		return Result{}, false
	}

	cells := row.Find("td")
	if cells.Length() == 0 {
		return Result{}, false
	}

	rank, ok := firstRankMatch(cells)
	if !ok {
		slog.Debug("Row skipped, no rank cell found", "row", rowPreview(row))
		return Result{}, false
	}

	timestampText, ok := firstTimestampMatch(cells)
	if !ok {
		slog.Debug("Row skipped, no date cell found", "row", rowPreview(row))
		return Result{}, false
	}

	occurredAt, err := ParseTimestamp(timestampText)
	if err != nil {
		slog.Debug("Row skipped, timestamp not parseable", "text", timestampText)
		return Result{}, false
	}

	href, _ := eventLink.Attr("href")
	eventURL, err := e.resolveURL(href)
	if err != nil {
		slog.Debug("Row skipped, event link not resolvable", "href", href)
		return Result{}, false
	}

	rider := strings.TrimSpace(riderLink.Text())
	if rider == "" {
		// A nameless profile link is still a structurally valid row; identity
		// degrades instead of causing a skip.
		rider = "Unknown"
	}

	return Result{
		EventName:  strings.TrimSpace(eventLink.Text()),
		EventURL:   eventURL,
		Rider:      rider,
		Rank:       rank,
		OccurredAt: occurredAt,
		Category:   scanCategory(cells),
	}, true
}

func (e *Extractor) resolveURL(href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return e.baseURL.ResolveReference(ref).String(), nil
}

// Per-field heuristics, tried in priority order. Labeled and class-hinted
// cells win because they are unambiguous when present; the scanning fallbacks
// exist because the markup is not guaranteed to carry structural hints at all.

type cellRule func(*goquery.Selection) (string, bool)

var rankRules = []cellRule{
	labeledCell("pos", "position", "rank", "#"),
	classHintedCell("rank", "position", "pos"),
	scanForRank,
}

var timestampRules = []cellRule{
	labeledCell("date", "time", "event date"),
	scanForDate,
}

func firstRankMatch(cells *goquery.Selection) (int, bool) {
	for _, rule := range rankRules {
		if text, ok := rule(cells); ok {
			if rank, ok := parseRank(text); ok {
				return rank, true
			}
		}
	}
	return 0, false
}

func firstTimestampMatch(cells *goquery.Selection) (string, bool) {
	for _, rule := range timestampRules {
		if text, ok := rule(cells); ok {
			return text, true
		}
	}
	return "", false
}

// labeledCell matches a cell whose data-label attribute names the field.
func labeledCell(labels ...string) cellRule {
	return func(cells *goquery.Selection) (string, bool) {
		var text string
		found := false
		cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
			label, ok := cell.Attr("data-label")
			if !ok {
				return true
			}
			label = strings.ToLower(strings.TrimSpace(label))
			for _, want := range labels {
				if label == want {
					text = strings.TrimSpace(cell.Text())
					found = true
					return false
				}
			}
			return true
		})
		return text, found
	}
}

// classHintedCell matches a cell whose class list carries a role hint.
func classHintedCell(hints ...string) cellRule {
	return func(cells *goquery.Selection) (string, bool) {
		var text string
		found := false
		cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
			class, ok := cell.Attr("class")
			if !ok {
				return true
			}
			class = strings.ToLower(class)
			for _, hint := range hints {
				if strings.Contains(class, hint) {
					text = strings.TrimSpace(cell.Text())
					found = true
					return false
				}
			}
			return true
		})
		return text, found
	}
}

// scanForRank walks the cells in order and returns the first whole-cell
// integer. Date-shaped cells are excluded so a year or day-of-month is never
// misread as a rank.
func scanForRank(cells *goquery.Selection) (string, bool) {
	var text string
	found := false
	cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
		candidate := strings.TrimSpace(cell.Text())
		if LooksLikeDate(candidate) {
			return true
		}
		if _, ok := parseRank(candidate); ok {
			text = candidate
			found = true
			return false
		}
		return true
	})
	return text, found
}

// scanForDate returns the first cell whose text has a date-like shape.
func scanForDate(cells *goquery.Selection) (string, bool) {
	var text string
	found := false
	cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
		candidate := strings.TrimSpace(cell.Text())
		if LooksLikeDate(candidate) {
			text = candidate
			found = true
			return false
		}
		return true
	})
	return text, found
}

var rankRe = regexp.MustCompile(`^(\d{1,3})(?:st|nd|rd|th)?\.?$`)

// parseRank accepts plain integers and ordinal forms (1, 2nd, 3rd, 4.),
// bounded to 1-999.
func parseRank(text string) (int, bool) {
	m := rankRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}
	rank, err := strconv.Atoi(m[1])
	if err != nil || rank < 1 {
		return 0, false
	}
	return rank, true
}

var categoryRe = regexp.MustCompile(`\b([ABCD])\b`)

// scanCategory is best-effort: the first single-letter pen token found in any
// cell, "?" when absent. Absence never skips the row.
func scanCategory(cells *goquery.Selection) string {
	category := "?"
	cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
		if m := categoryRe.FindStringSubmatch(cell.Text()); m != nil {
			category = m[1]
			return false
		}
		return true
	})
	return category
}

func rowPreview(row *goquery.Selection) string {
	text := strings.Join(strings.Fields(row.Text()), " ")
	if len(text) > 80 {
		text = text[:80]
	}
	return text
}
