// Package pypistats fetches package download counts from the pypistats.org
// JSON API.
package pypistats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DefaultBaseURL is the public pypistats.org API root.
const DefaultBaseURL = "https://pypistats.org/api"

// DefaultTimeout bounds a single request when Config.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// userAgent identifies this tool to the API, per its etiquette guidelines.
const userAgent = "slack-pip-stats/1.0 (+https://github.com/Dinesh2521/slack-pip-stats)"

// ErrNotFound is returned when the API has no such package.
var ErrNotFound = errors.New("pypistats: package not found")

// Config holds stats client settings.
type Config struct {
	// BaseURL overrides the API root, mainly for tests. Empty means
	// DefaultBaseURL.
	BaseURL string

	// Timeout bounds a single request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Client queries recent download counts for packages on the index.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a ready client.
func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
	}
}

// nameSep matches the separator runs PEP 503 collapses into a single dash.
var nameSep = regexp.MustCompile(`[-_.]+`)

// NormalizeName canonicalizes a package name the way the index does:
// lowercase, with runs of dots, underscores and dashes collapsed to a
// single dash.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	return strings.ToLower(nameSep.ReplaceAllString(name, "-"))
}

// WeeklyDownloads returns the download count for pkg over the trailing
// week. The name is normalized before querying, so any spelling accepted
// by the index works here too.
func (c *Client) WeeklyDownloads(ctx context.Context, pkg string) (int64, error) {
	name := NormalizeName(pkg)
	if name == "" {
		return 0, errors.New("pypistats: package name is empty")
	}

	u := fmt.Sprintf("%s/packages/%s/recent?period=week", c.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("pypistats: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("pypistats: fetch %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("pypistats: %q: %w", name, ErrNotFound)
	}
	if resp.StatusCode/100 != 2 {
		reason, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if s := strings.TrimSpace(string(reason)); s != "" {
			return 0, fmt.Errorf("pypistats: fetch %q failed: %s (http=%d)", name, s, resp.StatusCode)
		}
		return 0, fmt.Errorf("pypistats: fetch %q failed: http=%d", name, resp.StatusCode)
	}

	var out struct {
		Data struct {
			LastWeek int64 `json:"last_week"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("pypistats: decode response for %q: %w", name, err)
	}
	return out.Data.LastWeek, nil
}
