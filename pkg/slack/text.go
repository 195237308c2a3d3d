package slack

import "strings"

// escaper rewrites the three characters Slack reserves for control
// sequences in message text.
// See https://api.slack.com/reference/surfaces/formatting#escaping
var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Esc escapes text for Slack mrkdwn. Already-escaped entities are escaped
// again; callers should escape exactly once, on the final rendered text.
func Esc(s string) string { return escaper.Replace(s) }

// Code wraps s in inline code markup.
func Code(s string) string { return "`" + s + "`" }

// Pre wraps s in a fenced code block.
func Pre(s string) string { return "```" + s + "```" }

// Target normalizes a destination name. Bare names become "#name" channels;
// names already prefixed with '#' (channel) or '@' (direct message) pass
// through unchanged.
func Target(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	if name[0] == '#' || name[0] == '@' {
		return name
	}
	return "#" + name
}
