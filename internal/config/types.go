package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Defaults applied when the corresponding field is omitted.
const (
	DefaultUsername   = "pip-stats"
	DefaultIconEmoji  = ":chart_with_upwards_trend:"
	DefaultLogLevel   = "info"
	DefaultRatePerSec = 1
)

// Config is the effective configuration of one run: file values overlaid
// with environment overrides, then defaults.
type Config struct {
	// Package is the name of the package to report on, in any spelling
	// the index accepts.
	Package string `json:"package"`

	Slack   SlackConfig   `json:"slack"`
	Stats   StatsConfig   `json:"stats,omitempty"`
	Notify  NotifyConfig  `json:"notify,omitempty"`
	Logging LoggingConfig `json:"logging,omitempty"`
}

// SlackConfig identifies the webhook and the destinations to post to.
type SlackConfig struct {
	// WebhookURL is the full incoming-webhook endpoint. Secret; never log.
	WebhookURL string `json:"webhook_url"`

	// Channels lists destinations: "#channel", "@username", or a bare
	// name (posted as a #channel). May be empty; a run with no
	// destinations fetches the count and posts nothing.
	Channels []string `json:"channels"`

	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

// StatsConfig controls the download-stats API client.
type StatsConfig struct {
	// BaseURL overrides the API root, mainly for tests.
	BaseURL string `json:"base_url,omitempty"`
	// Timeout is a Go duration string (e.g. "10s", "1m").
	Timeout string `json:"timeout,omitempty"`

	timeout time.Duration
}

// RequestTimeout is the Timeout parsed during Load. Zero when the field
// was omitted; the stats client falls back to its own default then.
func (s *StatsConfig) RequestTimeout() time.Duration { return s.timeout }

// NotifyConfig controls delivery pacing.
type NotifyConfig struct {
	// SendTimeout is a Go duration string bounding one webhook post.
	SendTimeout string `json:"send_timeout,omitempty"`
	// RatePerSec caps webhook posts per second. Omitted or 0 means
	// DefaultRatePerSec.
	RatePerSec int `json:"rate_per_sec,omitempty"`

	sendTimeout time.Duration
}

// PostTimeout is the SendTimeout parsed during Load. Zero when the field
// was omitted; the webhook client falls back to its own default then.
func (n *NotifyConfig) PostTimeout() time.Duration { return n.sendTimeout }

// LoggingConfig controls the zerolog sinks.
//
// Console is a pointer so an omitted value (default true) can be told apart
// from an explicit false.
type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console *bool       `json:"console,omitempty"`
	File    LoggingFile `json:"file,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// ConsoleEnabled reports whether console logging is on, treating an omitted
// value as true.
func (l *LoggingConfig) ConsoleEnabled() bool {
	return l.Console == nil || *l.Console
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Slack.Username) == "" {
		c.Slack.Username = DefaultUsername
	}
	if strings.TrimSpace(c.Slack.IconEmoji) == "" {
		c.Slack.IconEmoji = DefaultIconEmoji
	}
	if c.Notify.RatePerSec == 0 {
		c.Notify.RatePerSec = DefaultRatePerSec
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Console == nil {
		on := true
		c.Logging.Console = &on
	}
}

// Validate checks the effective configuration and resolves its duration
// fields, so callers never re-parse them. Errors name the offending field
// with its config path.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Package) == "" {
		return fmt.Errorf("package: required")
	}

	hook := strings.TrimSpace(c.Slack.WebhookURL)
	if hook == "" {
		return fmt.Errorf("slack.webhook_url: required")
	}
	if u, err := url.Parse(hook); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("slack.webhook_url: must be an http(s) URL")
	}

	// An empty destination list is legal: the run completes with zero
	// posts. Blank entries are not.
	for i, ch := range c.Slack.Channels {
		if strings.TrimSpace(ch) == "" {
			return fmt.Errorf("slack.channels[%d]: empty destination", i)
		}
	}

	d, err := ParseDuration("stats.timeout", c.Stats.Timeout, 0)
	if err != nil {
		return err
	}
	c.Stats.timeout = d

	d, err = ParseDuration("notify.send_timeout", c.Notify.SendTimeout, 0)
	if err != nil {
		return err
	}
	c.Notify.sendTimeout = d

	if c.Notify.RatePerSec < 0 {
		return fmt.Errorf("notify.rate_per_sec: must be >= 0")
	}

	if c.Logging.File.Enabled && strings.TrimSpace(c.Logging.File.Path) == "" {
		return fmt.Errorf("logging.file.path: required when file logging is enabled")
	}
	return nil
}
