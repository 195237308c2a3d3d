package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Dinesh2521/slack-pip-stats/pkg/slack"
)

// StatsProvider yields the download count to report.
type StatsProvider interface {
	WeeklyDownloads(ctx context.Context, pkg string) (int64, error)
}

// Gateway posts one rendered payload to the messaging service.
type Gateway interface {
	Post(ctx context.Context, p slack.Payload) error
}

// Config controls one run.
type Config struct {
	// Package is reported on and embedded in the message as configured.
	Package string
	// Channels are destinations in the order they will be attempted.
	Channels []string

	Username  string
	IconEmoji string

	// RatePerSec caps posts per second. Values <= 0 mean 1.
	RatePerSec int
	// SendTimeout bounds a single post on top of the run context.
	// Zero means no extra bound.
	SendTimeout time.Duration
}

// Service wires the stats provider to the gateway.
type Service struct {
	cfg     Config
	stats   StatsProvider
	gateway Gateway
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New returns a ready service.
func New(cfg Config, stats StatsProvider, gateway Gateway, log zerolog.Logger) *Service {
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	return &Service{
		cfg:     cfg,
		stats:   stats,
		gateway: gateway,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log.With().Str("component", "notifier").Logger(),
	}
}

// Run executes one report cycle. The returned Report always holds one
// Delivery per configured destination once the fan-out has started; when
// the stats fetch fails, no post is attempted and Deliveries stays empty.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	rep := &Report{
		RunID:     uuid.NewString(),
		Package:   s.cfg.Package,
		StartedAt: time.Now(),
	}
	defer func() { rep.Duration = time.Since(rep.StartedAt) }()

	log := s.log.With().Str("run_id", rep.RunID).Logger()
	log.Info().Str("package", s.cfg.Package).Msg("fetching download stats")

	count, err := s.stats.WeeklyDownloads(ctx, s.cfg.Package)
	if err != nil {
		return rep, fmt.Errorf("fetch stats for %q: %w", s.cfg.Package, err)
	}
	rep.Count = count
	rep.Message = RenderMessage(s.cfg.Package, count)
	log.Info().Int64("downloads", count).Msg("stats fetched")

	var errs []error
	for _, name := range s.cfg.Channels {
		d := Delivery{Destination: slack.Target(name)}
		if err := s.sendOne(ctx, d.Destination, rep.Message); err != nil {
			d.Err = err
			rep.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", d.Destination, err))
			log.Error().Err(err).Str("destination", d.Destination).Msg("post failed")
		} else {
			rep.Sent++
			log.Info().Str("destination", d.Destination).Msg("posted")
		}
		rep.Deliveries = append(rep.Deliveries, d)
	}

	if len(errs) > 0 {
		return rep, fmt.Errorf("%d of %d posts failed: %w",
			rep.Failed, len(s.cfg.Channels), errors.Join(errs...))
	}
	return rep, nil
}

func (s *Service) sendOne(ctx context.Context, dest, text string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if s.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SendTimeout)
		defer cancel()
	}
	return s.gateway.Post(ctx, slack.Payload{
		Channel:   dest,
		Username:  s.cfg.Username,
		IconEmoji: s.cfg.IconEmoji,
		Text:      slack.Esc(text),
	})
}
