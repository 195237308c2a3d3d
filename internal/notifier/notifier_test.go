package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Dinesh2521/slack-pip-stats/pkg/slack"
)

type fakeStats struct {
	count  int64
	err    error
	calls  int
	gotPkg string
}

func (f *fakeStats) WeeklyDownloads(_ context.Context, pkg string) (int64, error) {
	f.calls++
	f.gotPkg = pkg
	if f.err != nil {
		return 0, f.err
	}
	return f.count, nil
}

type fakeGateway struct {
	posts   []slack.Payload
	failFor map[string]error
}

func (f *fakeGateway) Post(_ context.Context, p slack.Payload) error {
	f.posts = append(f.posts, p)
	if err, ok := f.failFor[p.Channel]; ok {
		return err
	}
	return nil
}

func testConfig(channels ...string) Config {
	return Config{
		Package:   "bigchaindb",
		Channels:  channels,
		Username:  "pip-stats",
		IconEmoji: ":chart_with_upwards_trend:",
		// High rate so tests never sit in the limiter.
		RatePerSec: 1000,
	}
}

func TestRunPostsToAllDestinations(t *testing.T) {
	t.Parallel()
	stats := &fakeStats{count: 1234567}
	gw := &fakeGateway{}
	svc := New(testConfig("#dev", "@simon", "general"), stats, gw, zerolog.Nop())

	rep, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.calls != 1 {
		t.Fatalf("stats fetched %d times, want 1", stats.calls)
	}
	if stats.gotPkg != "bigchaindb" {
		t.Fatalf("fetched package = %q", stats.gotPkg)
	}
	if rep.Count != 1234567 {
		t.Fatalf("Count = %d", rep.Count)
	}
	wantMsg := "bigchaindb has been downloaded 1234567 times in the last week"
	if rep.Message != wantMsg {
		t.Fatalf("Message = %q, want %q", rep.Message, wantMsg)
	}
	if rep.RunID == "" {
		t.Fatal("RunID is empty")
	}
	if rep.Sent != 3 || rep.Failed != 0 {
		t.Fatalf("Sent/Failed = %d/%d, want 3/0", rep.Sent, rep.Failed)
	}

	wantDest := []string{"#dev", "@simon", "#general"}
	if len(gw.posts) != len(wantDest) {
		t.Fatalf("posted %d times, want %d", len(gw.posts), len(wantDest))
	}
	for i, p := range gw.posts {
		if p.Channel != wantDest[i] {
			t.Fatalf("post[%d].Channel = %q, want %q", i, p.Channel, wantDest[i])
		}
		if p.Text != wantMsg {
			t.Fatalf("post[%d].Text = %q, want identical message", i, p.Text)
		}
		if p.Username != "pip-stats" || p.IconEmoji != ":chart_with_upwards_trend:" {
			t.Fatalf("post[%d] identity = %q %q", i, p.Username, p.IconEmoji)
		}
	}

	if len(rep.Deliveries) != 3 {
		t.Fatalf("len(Deliveries) = %d, want 3", len(rep.Deliveries))
	}
	for i, d := range rep.Deliveries {
		if d.Destination != wantDest[i] || d.Err != nil {
			t.Fatalf("Deliveries[%d] = %+v", i, d)
		}
	}
}

func TestRunEmptyDestinations(t *testing.T) {
	t.Parallel()
	stats := &fakeStats{count: 42}
	gw := &fakeGateway{}
	svc := New(testConfig(), stats, gw, zerolog.Nop())

	rep, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(gw.posts) != 0 {
		t.Fatalf("posted %d times, want 0", len(gw.posts))
	}
	if rep.Sent != 0 || rep.Failed != 0 || len(rep.Deliveries) != 0 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestRunStatsFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("upstream down")
	stats := &fakeStats{err: boom}
	gw := &fakeGateway{}
	svc := New(testConfig("#dev", "@simon"), stats, gw, zerolog.Nop())

	rep, err := svc.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want %v", err, boom)
	}
	if len(gw.posts) != 0 {
		t.Fatalf("posted %d times despite fetch failure", len(gw.posts))
	}
	if len(rep.Deliveries) != 0 {
		t.Fatalf("Deliveries = %+v, want none", rep.Deliveries)
	}
}

func TestRunPartialFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("channel_not_found")
	stats := &fakeStats{count: 7}
	gw := &fakeGateway{failFor: map[string]error{"#two": boom}}
	svc := New(testConfig("#one", "#two", "#three"), stats, gw, zerolog.Nop())

	rep, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want to wrap %v", err, boom)
	}
	if !strings.Contains(err.Error(), "#two") {
		t.Fatalf("error %q does not name the failed destination", err)
	}

	// The failure must not stop later destinations.
	if len(gw.posts) != 3 {
		t.Fatalf("posted %d times, want 3", len(gw.posts))
	}
	if rep.Sent != 2 || rep.Failed != 1 {
		t.Fatalf("Sent/Failed = %d/%d, want 2/1", rep.Sent, rep.Failed)
	}
	if rep.Deliveries[0].Err != nil || rep.Deliveries[2].Err != nil {
		t.Fatalf("unexpected delivery errors: %+v", rep.Deliveries)
	}
	if !errors.Is(rep.Deliveries[1].Err, boom) {
		t.Fatalf("Deliveries[1].Err = %v, want %v", rep.Deliveries[1].Err, boom)
	}
}

func TestRunEscapesPayloadText(t *testing.T) {
	t.Parallel()
	stats := &fakeStats{count: 5}
	gw := &fakeGateway{}
	cfg := testConfig("#dev")
	cfg.Package = "weird<pkg>&co"
	svc := New(cfg, stats, gw, zerolog.Nop())

	rep, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantRaw := "weird<pkg>&co has been downloaded 5 times in the last week"
	if rep.Message != wantRaw {
		t.Fatalf("Message = %q, want unescaped %q", rep.Message, wantRaw)
	}
	wantWire := "weird&lt;pkg&gt;&amp;co has been downloaded 5 times in the last week"
	if gw.posts[0].Text != wantWire {
		t.Fatalf("posted text = %q, want escaped %q", gw.posts[0].Text, wantWire)
	}
}

func TestRunCanceledContext(t *testing.T) {
	t.Parallel()
	stats := &fakeStats{count: 9}
	gw := &fakeGateway{}
	svc := New(testConfig("#one", "#two"), stats, gw, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := svc.Run(ctx)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	// The limiter rejects before the gateway is reached, but every
	// destination still gets a recorded outcome.
	if len(gw.posts) != 0 {
		t.Fatalf("posted %d times, want 0", len(gw.posts))
	}
	if len(rep.Deliveries) != 2 || rep.Failed != 2 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestRenderMessage(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		pkg   string
		count int64
		want  string
	}{
		{
			name:  "typical",
			pkg:   "requests",
			count: 352994,
			want:  "requests has been downloaded 352994 times in the last week",
		},
		{
			name:  "zero",
			pkg:   "dusty",
			count: 0,
			want:  "dusty has been downloaded 0 times in the last week",
		},
		{
			name:  "one keeps plural wording",
			pkg:   "niche",
			count: 1,
			want:  "niche has been downloaded 1 times in the last week",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderMessage(tt.pkg, tt.count); got != tt.want {
				t.Fatalf("RenderMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
