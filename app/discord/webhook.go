// Package discord posts the weekly podium summary as a webhook embed.
package discord

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rcf-tools/podiumbot/app/results"
)

const (
	embedTitle = "Weekly podiums"
	embedColor = 0x00BC8C
	// Discord caps embed descriptions at 4096 characters; 3900 leaves
	// headroom so truncation never lands mid-markdown.
	descriptionLimit = 3900
)

type Embed struct {
	Type        string       `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Timestamp   string       `json:"timestamp"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type webhookPayload struct {
	Embeds []Embed `json:"embeds"`
}

// DeliveryError is a rejected webhook post. The pipeline treats it as a
// signal to skip the ledger commit so the records stay retryable.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("discord webhook rejected post: status %d: %s", e.StatusCode, e.Body)
}

type Webhook struct {
	http *resty.Client
	url  string
	now  func() time.Time
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	client := resty.New()
	client.SetTimeout(timeout)

	return &Webhook{
		http: client,
		url:  url,
		now:  time.Now,
	}
}

// Send implements results.Notifier: it renders the embed and posts it. An
// empty podium list still produces a message (the force-post path).
func (w *Webhook) Send(ctx context.Context, podiums []results.Result, window results.Window) error {
	return w.Post(ctx, BuildEmbed(podiums, window, w.now()))
}

// Post delivers a single embed to the webhook.
func (w *Webhook) Post(ctx context.Context, embed Embed) error {
	res, err := w.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookPayload{Embeds: []Embed{embed}}).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}

	if res.StatusCode() >= 300 {
		return &DeliveryError{StatusCode: res.StatusCode(), Body: string(res.Body())}
	}
	return nil
}

// BuildEmbed renders the podium list grouped per event, events sorted
// case-insensitively by name and placings by rank within each event.
func BuildEmbed(podiums []results.Result, window results.Window, now time.Time) Embed {
	type group struct {
		name  string
		url   string
		items []results.Result
	}

	groups := make(map[string]*group)
	var order []string
	for _, p := range podiums {
		key := p.EventName + "\x00" + p.EventURL
		g, ok := groups[key]
		if !ok {
			g = &group{name: p.EventName, url: p.EventURL}
			groups[key] = g
			order = append(order, key)
		}
		g.items = append(g.items, p)
	}

	sort.Slice(order, func(i, j int) bool {
		return strings.ToLower(groups[order[i]].name) < strings.ToLower(groups[order[j]].name)
	})

	var sections []string
	for _, key := range order {
		g := groups[key]
		sort.Slice(g.items, func(i, j int) bool { return g.items[i].Rank < g.items[j].Rank })

		lines := make([]string, 0, len(g.items)+1)
		lines = append(lines, fmt.Sprintf("**[%s](%s)**", g.name, g.url))
		for _, item := range g.items {
			lines = append(lines, fmt.Sprintf("#%d — %s (Cat %s)", item.Rank, item.Rider, item.Category))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	description := "No podiums this week."
	if len(sections) > 0 {
		description = strings.Join(sections, "\n\n")
	}
	if len(description) > descriptionLimit {
		description = description[:descriptionLimit]
	}

	return Embed{
		Type:        "rich",
		Title:       embedTitle,
		Description: description,
		Color:       embedColor,
		Timestamp:   now.UTC().Format(time.RFC3339),
		Footer: &EmbedFooter{
			Text: fmt.Sprintf("Window %s to %s", window.Start.Format("2006-01-02"), window.End.Format("2006-01-02")),
		},
	}
}
