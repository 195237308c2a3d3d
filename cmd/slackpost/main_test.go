package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Dinesh2521/slack-pip-stats/pkg/slack"
)

func capturePayload(t *testing.T) (*slack.Payload, *httptest.Server) {
	t.Helper()
	var got slack.Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)
	return &got, srv
}

func TestRunSimpleMessage(t *testing.T) {
	got, srv := capturePayload(t)

	err := run(context.Background(), runArgs{
		channel: "general",
		usernm:  "cron@host",
		icon:    ":robot_face:",
		text:    "backup done <ok>",
		hookURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got.Channel != "#general" {
		t.Fatalf("Channel = %q, want #general", got.Channel)
	}
	if got.Text != "backup done &lt;ok&gt;" {
		t.Fatalf("Text = %q", got.Text)
	}
	if len(got.Attachments) != 0 {
		t.Fatalf("Attachments = %+v, want none", got.Attachments)
	}
}

func TestRunDefaultMessage(t *testing.T) {
	got, srv := capturePayload(t)

	// An empty PATH leaves no fortune binary to consult.
	t.Setenv("PATH", t.TempDir())

	err := run(context.Background(), runArgs{
		channel: "general",
		hookURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got.Channel != "#general" {
		t.Fatalf("Channel = %q, want #general", got.Channel)
	}
	if got.Text != "I love cats!" {
		t.Fatalf("Text = %q, want the fallback line", got.Text)
	}
	if len(got.Attachments) != 0 {
		t.Fatalf("Attachments = %+v, want none", got.Attachments)
	}
}

func TestRunFileMode(t *testing.T) {
	got, srv := capturePayload(t)

	path := filepath.Join(t.TempDir(), "report.txt")
	if err := os.WriteFile(path, []byte("all systems go"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	err := run(context.Background(), runArgs{
		channel: "#ops",
		text:    "nightly report",
		file:    path,
		hookURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := "nightly report\n```all systems go```"
	if got.Text != want {
		t.Fatalf("Text = %q, want %q", got.Text, want)
	}
}

func TestRunCommandMode(t *testing.T) {
	got, srv := capturePayload(t)

	err := run(context.Background(), runArgs{
		channel: "@simon",
		command: "echo hi; exit 4",
		size:    1024,
		hookURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got.Channel != "@simon" {
		t.Fatalf("Channel = %q, want @simon", got.Channel)
	}
	// No text and a command given: the message body stays empty.
	if got.Text != "" {
		t.Fatalf("Text = %q, want empty", got.Text)
	}
	if len(got.Attachments) != 1 {
		t.Fatalf("len(Attachments) = %d, want 1", len(got.Attachments))
	}

	a := got.Attachments[0]
	if a.Color != "danger" {
		t.Fatalf("Color = %q, want danger", a.Color)
	}
	if !strings.Contains(a.Fallback, "[exit code: 4]") {
		t.Fatalf("Fallback = %q", a.Fallback)
	}
	var titles []string
	for _, f := range a.Fields {
		titles = append(titles, f.Title)
	}
	want := []string{"command", "execution time", "exit code", "stderr"}
	if strings.Join(titles, ",") != strings.Join(want, ",") {
		t.Fatalf("field titles = %v, want %v", titles, want)
	}
}
