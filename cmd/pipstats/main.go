package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Dinesh2521/slack-pip-stats/internal/config"
	"github.com/Dinesh2521/slack-pip-stats/internal/logging"
	"github.com/Dinesh2521/slack-pip-stats/internal/notifier"
	"github.com/Dinesh2521/slack-pip-stats/internal/pypistats"
	"github.com/Dinesh2521/slack-pip-stats/pkg/slack"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config yaml/json")
	flag.Parse()

	// Optional .env in the working directory; the real environment wins.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfgPath); err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	log, closeLogs := logging.New(logging.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File: logging.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer func() { _ = closeLogs() }()

	if len(cfg.Slack.Channels) == 0 {
		log.Warn().Msg("no destinations configured, nothing will be posted")
	}

	stats := pypistats.New(pypistats.Config{
		BaseURL: cfg.Stats.BaseURL,
		Timeout: cfg.Stats.RequestTimeout(),
	})
	hook, err := slack.NewWebhook(slack.Config{
		WebhookURL: cfg.Slack.WebhookURL,
		Timeout:    cfg.Notify.PostTimeout(),
	})
	if err != nil {
		return err
	}

	svc := notifier.New(notifier.Config{
		Package:     cfg.Package,
		Channels:    cfg.Slack.Channels,
		Username:    cfg.Slack.Username,
		IconEmoji:   cfg.Slack.IconEmoji,
		RatePerSec:  cfg.Notify.RatePerSec,
		SendTimeout: cfg.Notify.PostTimeout(),
	}, stats, hook, log)

	rep, err := svc.Run(ctx)
	if err != nil {
		if rep != nil && len(rep.Deliveries) > 0 {
			log.Warn().
				Str("run_id", rep.RunID).
				Int("sent", rep.Sent).
				Int("failed", rep.Failed).
				Dur("took", rep.Duration).
				Msg("run finished with failures")
		}
		return err
	}

	log.Info().
		Str("run_id", rep.RunID).
		Str("package", rep.Package).
		Int64("downloads", rep.Count).
		Int("sent", rep.Sent).
		Dur("took", rep.Duration).
		Msg("report delivered")
	return nil
}
