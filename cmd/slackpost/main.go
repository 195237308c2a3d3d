package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"os/user"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Dinesh2521/slack-pip-stats/pkg/capture"
	"github.com/Dinesh2521/slack-pip-stats/pkg/slack"
)

// slackpost posts a message to Slack from scripts and crontabs. With a
// trailing command it also runs the command and attaches its exit status,
// output, and execution time.
func main() {
	_ = godotenv.Load()

	var (
		channel  string
		username string
		icon     string
		text     string
		hookURL  string
		file     string
		size     int
		noSize   bool
	)

	flag.StringVar(&channel, "channel", envOr("SLACK_CHANNEL", "#general"),
		"destination #channel or @username (default $SLACK_CHANNEL or #general)")
	flag.StringVar(&channel, "c", envOr("SLACK_CHANNEL", "#general"), "shorthand for -channel")
	flag.StringVar(&username, "username", envOr("SLACK_USERNAME", defaultUsername()),
		"bot display name (default $SLACK_USERNAME or user@host)")
	flag.StringVar(&username, "u", envOr("SLACK_USERNAME", defaultUsername()), "shorthand for -username")
	flag.StringVar(&icon, "icon-emoji", envOr("SLACK_ICON", ":robot_face:"),
		"bot icon (default $SLACK_ICON or :robot_face:)")
	flag.StringVar(&icon, "i", envOr("SLACK_ICON", ":robot_face:"), "shorthand for -icon-emoji")
	flag.StringVar(&text, "text", os.Getenv("SLACK_TEXT"),
		"message to send (default $SLACK_TEXT)")
	flag.StringVar(&text, "t", os.Getenv("SLACK_TEXT"), "shorthand for -text")
	flag.StringVar(&hookURL, "webhook-url", os.Getenv("SLACK_WEBHOOK_URL"),
		"incoming-webhook URL (default $SLACK_WEBHOOK_URL)")
	flag.StringVar(&hookURL, "w", os.Getenv("SLACK_WEBHOOK_URL"), "shorthand for -webhook-url")
	flag.StringVar(&file, "file", "", "post the content of a text file; use - for stdin")
	flag.StringVar(&file, "f", "", "shorthand for -file")
	flag.IntVar(&size, "size", envInt("SLACK_OUTPUT_SIZE", capture.DefaultMaxOutput),
		"truncate command output past this many bytes")
	flag.IntVar(&size, "s", envInt("SLACK_OUTPUT_SIZE", capture.DefaultMaxOutput), "shorthand for -size")
	flag.BoolVar(&noSize, "no-size", envBool("SLACK_OUTPUT_NO_SIZE"), "don't truncate command output (overrides -size)")
	flag.BoolVar(&noSize, "S", envBool("SLACK_OUTPUT_NO_SIZE"), "shorthand for -no-size")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: slackpost [flags] [command ...]\n\n"+
				"Post a message to Slack. With a trailing command, run it and attach\nits exit status and output.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	command := strings.Join(flag.Args(), " ")

	if strings.TrimSpace(hookURL) == "" {
		fmt.Fprintln(os.Stderr, "slackpost: set $SLACK_WEBHOOK_URL or pass -w")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, runArgs{
		channel: channel,
		usernm:  username,
		icon:    icon,
		text:    text,
		hookURL: hookURL,
		file:    file,
		command: command,
		size:    size,
		noSize:  noSize,
	}); err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}

type runArgs struct {
	channel string
	usernm  string
	icon    string
	text    string
	hookURL string
	file    string
	command string
	size    int
	noSize  bool
}

func run(ctx context.Context, a runArgs) error {
	var parts []string
	if a.text != "" {
		parts = append(parts, a.text)
	}
	if a.file != "" {
		content, err := readInput(a.file)
		if err != nil {
			return fmt.Errorf("read %s: %w", a.file, err)
		}
		parts = append(parts, slack.Pre(content))
	}
	if len(parts) == 0 && a.command == "" {
		parts = append(parts, fortune(ctx))
	}

	payload := slack.Payload{
		Channel:   slack.Target(a.channel),
		Username:  a.usernm,
		IconEmoji: a.icon,
		Text:      slack.Esc(strings.Join(parts, "\n")),
	}

	if a.command != "" {
		maxOut := a.size
		if a.noSize {
			maxOut = 0
		}
		res, err := capture.Run(ctx, a.command, maxOut)
		if err != nil {
			return err
		}
		payload.Attachments = []slack.Attachment{res.Attachment()}
	}

	hook, err := slack.NewWebhook(slack.Config{WebhookURL: a.hookURL})
	if err != nil {
		return err
	}
	return hook.Post(ctx, payload)
}

func readInput(name string) (string, error) {
	if name == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(name)
	return string(b), err
}

// fortune fills the message when the caller gave nothing to say.
func fortune(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "fortune").Output()
	if err != nil {
		return "I love cats!"
	}
	return string(out)
}

func defaultUsername() string {
	name := "unknown"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	}
	host := "localhost"
	if h, err := os.Hostname(); err == nil && h != "" {
		host = h
	}
	return name + "@" + host
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "", "0", "false", "no":
		return false
	}
	return true
}
