// Package zwiftpower is the authenticated source client. ZwiftPower has no
// public API for team results, so the bot fetches rendered pages with a
// logged-in session cookie and leaves all interpretation to the extractor.
package zwiftpower

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://zwiftpower.com"

// ErrAuthFailure means the session cookie was rejected and the source served
// its login page instead of content. It is terminal for the run and requires
// credential rotation, so callers must distinguish it from a transport
// failure, which is worth retrying on the next invocation.
var ErrAuthFailure = errors.New("zwiftpower: session cookie rejected")

type Client struct {
	http    *resty.Client
	baseURL string
	teamID  string
}

type ClientOptions struct {
	BaseURL   string // defaults to DefaultBaseURL
	TeamID    string
	Cookie    string // raw Cookie header of a logged-in session
	UserAgent string
	Timeout   time.Duration
}

func NewClient(opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Cookie", opts.Cookie)
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	client.SetTimeout(opts.Timeout)

	return &Client{
		http:    client,
		baseURL: baseURL,
		teamID:  opts.TeamID,
	}
}

// BaseURL is the absolute root event links are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// TeamURL is the results listing page for the configured team.
func (c *Client) TeamURL() string {
	return fmt.Sprintf("%s/team.php?id=%s", c.baseURL, c.teamID)
}

// TeamPage fetches the team results listing.
func (c *Client) TeamPage(ctx context.Context) ([]byte, error) {
	return c.get(ctx, c.TeamURL())
}

// EventPage fetches an event detail page for classification.
func (c *Client) EventPage(ctx context.Context, eventURL string) ([]byte, error) {
	return c.get(ctx, eventURL)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	res, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	status := res.StatusCode()
	if status == 401 || status == 403 {
		return nil, ErrAuthFailure
	}
	if status >= 400 {
		return nil, fmt.Errorf("unexpected status %d fetching %s", status, url)
	}

	body := res.Body()
	if looksLikeLoginPage(res, body) {
		return nil, ErrAuthFailure
	}
	return body, nil
}

// looksLikeLoginPage detects an expired session: the site answers 200 but
// redirects to, or inlines, its login form.
func looksLikeLoginPage(res *resty.Response, body []byte) bool {
	finalURL := res.RawResponse.Request.URL
	if finalURL != nil && strings.Contains(finalURL.Path, "login.php") {
		return true
	}

	lowered := strings.ToLower(string(body))
	return strings.Contains(lowered, "login") && strings.Contains(lowered, "password")
}
