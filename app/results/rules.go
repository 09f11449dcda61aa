package results

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules holds the keyword sets driving event classification. They ship with
// compiled-in defaults and can be overridden by a YAML file so the sets can
// track upstream naming changes without a rebuild.
type Rules struct {
	// Deny keywords are checked first, as case-insensitive substrings of the
	// event page text. Any match classifies the event as that token and
	// short-circuits the allow checks.
	Deny []string `yaml:"deny"`
	// Allow keywords are matched on word boundaries (so "tt" does not fire
	// inside "matter"). Only allow tokens are ever accepted for posting.
	Allow []string `yaml:"allow"`
	// Synonyms rewrite matched tokens into their canonical form.
	Synonyms map[string]string `yaml:"synonyms"`

	allowRes []*regexp.Regexp
}

func DefaultRules() *Rules {
	r := &Rules{
		Deny: []string{
			"group ride", "workout", "training", "pace partner",
			"social ride", "fondo", "tour", "badge hunt",
		},
		Allow: []string{
			"time trial", "tt", "criterium", "crit", "road race", "scratch", "race",
		},
		Synonyms: map[string]string{
			"tt":         "time trial",
			"tt race":    "time trial",
			"time-trial": "time trial",
			"crit":       "criterium",
			"road race":  "race",
			"scratch":    "race",
		},
	}
	r.compile()
	return r
}

// LoadRules reads the rule file at path, falling back to the defaults when
// the file is absent. A present-but-invalid file is an error: silently
// ignoring a broken rule set would change filtering behavior unnoticed.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Debug("Rule file not found, using defaults", "path", path)
		return DefaultRules(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}

	rules := &Rules{}
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}

	defaults := DefaultRules()
	if len(rules.Deny) == 0 {
		rules.Deny = defaults.Deny
	}
	if len(rules.Allow) == 0 {
		rules.Allow = defaults.Allow
	}
	if rules.Synonyms == nil {
		rules.Synonyms = defaults.Synonyms
	}
	rules.compile()

	return rules, nil
}

func (r *Rules) compile() {
	r.allowRes = make([]*regexp.Regexp, 0, len(r.Allow))
	for _, keyword := range r.Allow {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(strings.ToLower(keyword)) + `\b`)
		r.allowRes = append(r.allowRes, re)
	}
}

// Match classifies free text against the rule sets: deny first, then allow,
// then "unknown". The returned token is already normalized.
func (r *Rules) Match(text string) string {
	lowered := strings.ToLower(text)

	for _, keyword := range r.Deny {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return r.Normalize(keyword)
		}
	}
	for i, re := range r.allowRes {
		if re.MatchString(lowered) {
			return r.Normalize(r.Allow[i])
		}
	}
	return CategoryUnknown
}

// Normalize lowercases a token and applies the synonym rewrites.
func (r *Rules) Normalize(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if canonical, ok := r.Synonyms[token]; ok {
		return canonical
	}
	return token
}

// Accepted reports whether a normalized token is explicitly in the allow set.
// Deny tokens and "unknown" are both rejected: an event we cannot positively
// classify as competitive is excluded rather than posted as noise.
func (r *Rules) Accepted(token string) bool {
	if token == CategoryUnknown {
		return false
	}
	for _, keyword := range r.Allow {
		if r.Normalize(keyword) == token {
			return true
		}
	}
	return false
}
