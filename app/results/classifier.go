package results

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// CategoryUnknown is the fail-closed classification: events that match
// neither keyword set, or whose detail page cannot be fetched, are excluded
// from posting rather than guessed at.
const CategoryUnknown = "unknown"

// EventFetcher fetches an event detail page. Implemented by the zwiftpower
// client; faked in tests.
type EventFetcher interface {
	EventPage(ctx context.Context, eventURL string) ([]byte, error)
}

// CategoryCache is the persistent event-to-category mapping. Implemented by
// the store package.
type CategoryCache interface {
	Get(eventURL string) (string, bool)
	Set(eventURL, token string)
}

// Classifier derives a normalized category token for an event reference. A
// classification is treated as immutable once observed: hits in the
// persistent cache never trigger another fetch, within or across runs.
type Classifier struct {
	fetcher EventFetcher
	cache   CategoryCache
	rules   *Rules

	// failed memoizes transport failures for the current run only. A failed
	// fetch is not an observation of the event, so "unknown" from a transport
	// error is never written to the persistent cache.
	failed map[string]struct{}
}

func NewClassifier(fetcher EventFetcher, cache CategoryCache, rules *Rules) *Classifier {
	return &Classifier{
		fetcher: fetcher,
		cache:   cache,
		rules:   rules,
		failed:  make(map[string]struct{}),
	}
}

// BeginRun clears the per-run transport-failure memo so a flaky event fetch
// in one run does not pin the event to "unknown" in the next.
func (c *Classifier) BeginRun() {
	c.failed = make(map[string]struct{})
}

// Classify returns the category token for the event, fetching and caching on
// first sight. Transport failures degrade to CategoryUnknown instead of
// aborting the pipeline.
func (c *Classifier) Classify(ctx context.Context, eventURL string) string {
	if token, ok := c.cache.Get(eventURL); ok {
		return token
	}
	if _, ok := c.failed[eventURL]; ok {
		return CategoryUnknown
	}

	data, err := c.fetcher.EventPage(ctx, eventURL)
	if err != nil {
		slog.Warn("Failed to fetch event page, classifying as unknown", "event", eventURL, "error", err)
		c.failed[eventURL] = struct{}{}
		return CategoryUnknown
	}

	token := c.rules.Match(visibleText(data))
	c.cache.Set(eventURL, token)

	slog.Debug("Event classified", "event", eventURL, "category", token)
	return token
}

// Accepted reports whether a token passes the fail-closed category policy.
func (c *Classifier) Accepted(token string) bool {
	return c.rules.Accepted(token)
}

// visibleText extracts the readable text of an event page. Readability strips
// navigation and script noise; when it finds no article content the raw
// document text is used instead so keyword matching still sees the page.
func visibleText(data []byte) string {
	article, err := readability.FromReader(bytes.NewReader(data), nil)
	if err == nil && article.TextContent != "" {
		return article.TextContent
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return string(data)
	}
	return doc.Text()
}
