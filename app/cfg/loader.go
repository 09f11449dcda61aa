package cfg

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

type rawCfg struct {
	// Delivery and source credentials
	WebhookURL string `long:"webhook-url" env:"WEBHOOK_URL" description:"Discord webhook URL (required)" required:"true"`
	Cookie     string `long:"cookie" env:"ZWIFTPOWER_COOKIE" description:"Logged-in ZwiftPower session cookie (required)" required:"true"`
	TeamID     string `long:"team-id" env:"ZWIFTPOWER_TEAM_ID" default:"20561" description:"ZwiftPower team id"`
	BaseURL    string `long:"base-url" env:"ZWIFTPOWER_BASE_URL" default:"https://zwiftpower.com" description:"ZwiftPower base URL"`

	// Pipeline tunables
	Timezone   string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for the reporting window (e.g. Europe/Helsinki)"`
	WindowDays int    `long:"window-days" env:"WINDOW_DAYS" default:"7" description:"Trailing window length in calendar days"`
	MaxRank    int    `long:"max-rank" env:"MAX_RANK" default:"3" description:"Highest rank still counted as a podium"`
	ForcePost  bool   `long:"force-post" env:"FORCE_POST" description:"Post a 'nothing found' message when no podiums survive filtering"`

	// File locations
	DataDir    string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for the ledger, cache and archive files"`
	RulesFile  string `long:"rules-file" env:"RULES_FILE" default:"./rules.yml" description:"Classification rule file (optional)"`
	IgnoreFile string `long:"ignore-file" env:"IGNORE_FILE" default:"./ignore.json" description:"Rider ignore list (optional)"`

	// Service configuration
	Once              bool   `long:"once" env:"RUN_ONCE" description:"Run the pipeline once and exit"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"3600" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"podiumbot/1.0" description:"User agent string for HTTP requests"`
	Timeout   int    `long:"timeout" env:"TIMEOUT" default:"20" description:"HTTP request timeout in seconds"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses environment variables and command-line flags into a Cfg. The
// result is passed explicitly into the components that need it; nothing reads
// configuration ambiently after this point. Returns (nil, nil) when help was
// requested.
func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	location, err := time.LoadLocation(raw.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", raw.Timezone, err)
	}

	return &Cfg{
		WebhookURL:        raw.WebhookURL,
		Cookie:            raw.Cookie,
		TeamID:            raw.TeamID,
		BaseURL:           raw.BaseURL,
		Timezone:          raw.Timezone,
		Location:          location,
		WindowDays:        raw.WindowDays,
		MaxRank:           raw.MaxRank,
		ForcePost:         raw.ForcePost,
		DataDir:           raw.DataDir,
		RulesFile:         raw.RulesFile,
		IgnoreFile:        raw.IgnoreFile,
		Once:              raw.Once,
		Port:              raw.Port,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		UserAgent:         raw.UserAgent,
		Timeout:           raw.Timeout,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}, nil
}
