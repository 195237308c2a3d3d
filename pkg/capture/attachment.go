package capture

import (
	"fmt"
	"strconv"

	"github.com/Dinesh2521/slack-pip-stats/pkg/slack"
)

// Attachment renders the result as a Slack attachment: green with the
// captured stdout on success, red with the exit code and stderr on failure.
func (r *Result) Attachment() slack.Attachment {
	a := slack.Attachment{
		Color:    "good",
		MrkdwnIn: []string{"pretext", "text", "fields"},
		Fields: []slack.Field{
			{Title: "command", Value: slack.Esc(slack.Code(r.Command)), Short: true},
			{Title: "execution time", Value: r.Duration.String(), Short: true},
		},
	}

	if r.ExitCode != 0 {
		a.Color = "danger"
		a.Fallback = slack.Esc(fmt.Sprintf("[exit code: %d] Failed to execute: %s", r.ExitCode, r.Command))
		a.Fields = append(a.Fields,
			slack.Field{Title: "exit code", Value: strconv.Itoa(r.ExitCode), Short: true},
			slack.Field{Title: "stderr", Value: outputField(r.Stderr)},
		)
		return a
	}

	a.Fallback = slack.Esc("Succeeded to execute: " + r.Command)
	a.Fields = append(a.Fields, slack.Field{Title: "stdout", Value: outputField(r.Stdout)})
	return a
}

func outputField(out string) string {
	if out == "" {
		return "_no output_"
	}
	return slack.Esc(slack.Pre(out))
}
