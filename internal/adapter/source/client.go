// Package source fetches directory listings and product files from the
// upstream forecast tree over HTTP.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/celtiberi/wind-service-2/internal/domain"
)

// ErrNotPublished indicates the requested cycle subpath answered
// forbidden or not-found. The upstream uses both for directories that
// do not exist yet; it is a "come back later" signal, not a failure.
var ErrNotPublished = errors.New("cycle not published yet")

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// The upstream rejects default Go user agents on some paths.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// BackoffConfig controls retry behaviour for transient failures.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Client reads the upstream forecast tree: date directories at the
// root, cycle directories under a date, family listings under a cycle.
type Client struct {
	baseURL string
	http    *http.Client
	backoff BackoffConfig
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// New builds a client rooted at baseURL (no trailing slash required).
func New(baseURL string, httpClient *http.Client, backoff BackoffConfig, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "forecast-source",
		Timeout: 2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		backoff: backoff,
		breaker: cb,
		logger:  logger.With("component", "source"),
	}
}

// ListDates returns the issue dates present at the tree root, sorted
// ascending.
func (c *Client) ListDates(ctx context.Context) ([]time.Time, error) {
	names, err := c.listLinks(ctx, "")
	if err != nil {
		return nil, err
	}
	var dates []time.Time
	for _, name := range names {
		d, err := domain.ParseDateDir(name)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// ListCycles returns the cycle hours published under a date directory,
// sorted ascending.
func (c *Client) ListCycles(ctx context.Context, date time.Time) ([]int, error) {
	names, err := c.listLinks(ctx, domain.ForecastCycle{Date: date}.DateDir()+"/")
	if err != nil {
		return nil, err
	}
	var hours []int
	for _, name := range names {
		h, err := domain.ParseCycleDir(name)
		if err != nil {
			continue
		}
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours, nil
}

// ListFiles returns the file names in a family's directory for the
// given cycle. Returns ErrNotPublished while the directory does not
// exist upstream.
func (c *Client) ListFiles(ctx context.Context, family domain.Family, cycle domain.ForecastCycle) ([]string, error) {
	path := cycle.DateDir() + "/" + cycle.DirName() + "/" + family.SubDir() + "/"
	names, err := c.listLinks(ctx, path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, name := range names {
		if !strings.HasSuffix(name, "/") && strings.HasPrefix(name, family.FilePrefix()) {
			files = append(files, name)
		}
	}
	return files, nil
}

// Download streams the family's analysis file for cycle into destDir.
// The file is written under a temporary name and renamed only once the
// body has been fully copied and synced, so a path returned here always
// names a complete file.
func (c *Client) Download(ctx context.Context, family domain.Family, cycle domain.ForecastCycle, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", destDir, err)
	}
	name := family.FileName(cycle)
	final := filepath.Join(destDir, name)
	partial := final + ".partial"

	resp, err := c.get(ctx, family.RemotePath(cycle))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%s for %s: %w", name, cycle, ErrNotPublished)
	}

	f, err := os.Create(partial)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", partial, err)
	}
	n, err := io.Copy(f, resp.Body)
	if err != nil {
		f.Close()
		os.Remove(partial)
		return "", fmt.Errorf("download %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(partial)
		return "", fmt.Errorf("sync %s: %w", partial, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(partial)
		return "", fmt.Errorf("close %s: %w", partial, err)
	}
	if err := os.Rename(partial, final); err != nil {
		os.Remove(partial)
		return "", fmt.Errorf("finalize %s: %w", name, err)
	}
	c.logger.Info("downloaded file", "family", family, "file", name, "bytes", n)
	return final, nil
}

var hrefPattern = regexp.MustCompile(`href="([^"?/][^"]*)"`)

// listLinks fetches an HTML directory listing and extracts link
// targets. Returns ErrNotPublished on 403/404.
func (c *Client) listLinks(ctx context.Context, path string) ([]string, error) {
	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", path, ErrNotPublished)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read listing %s: %w", path, err)
	}
	var names []string
	for _, m := range hrefPattern.FindAllStringSubmatch(string(body), -1) {
		names = append(names, m[1])
	}
	return names, nil
}

// get executes one GET with retries, exponential backoff and a circuit
// breaker. 403/404 responses are returned to the caller, not retried;
// the upstream answers them routinely for unpublished cycles and they
// must not trip the breaker.
func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	url := c.baseURL + "/" + path

	var attempt int
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if reqErr != nil {
				return nil, reqErr
			}
			req.Header.Set("User-Agent", userAgent)

			resp, doErr := c.http.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				resp.Body.Close()
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				resp.Body.Close()
				return nil, errServerError
			case resp.StatusCode >= 200 && resp.StatusCode < 300,
				resp.StatusCode == http.StatusForbidden,
				resp.StatusCode == http.StatusNotFound:
				return resp, nil
			default:
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
		})
		if err == nil {
			return result.(*http.Response), nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if attempt >= c.backoff.MaxRetries {
			return nil, fmt.Errorf("GET %s: %w", url, err)
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}
		c.logger.Warn("request failed, retrying", "url", url, "attempt", attempt+1, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}
