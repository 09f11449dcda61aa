package cfg

import "time"

type Cfg struct {
	// Delivery and source credentials
	WebhookURL string
	Cookie     string
	TeamID     string
	BaseURL    string

	// Pipeline tunables
	Timezone   string
	Location   *time.Location
	WindowDays int
	MaxRank    int
	ForcePost  bool

	// File locations
	DataDir    string
	RulesFile  string
	IgnoreFile string

	// Service configuration
	Once              bool
	Port              string
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timeout   int
	Debug     bool
	Version   string
}
