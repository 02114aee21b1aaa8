// Package archive queries the month-granular archive metadata endpoint
// and reduces it to the target day's headlines and, on request, a
// content summary. The endpoint returns every article for a month; all
// day filtering happens client-side.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"frontpage/internal/dateinfo"
	"frontpage/internal/logging"
	"frontpage/internal/retry"
)

// FallbackLead is used when no headline can be extracted for a date.
const FallbackLead = "The New York Times"

// Placeholder lines for dates the archive has not caught up with yet.
const (
	placeholderLead    = "Today's headlines are not yet in the archive."
	placeholderSupport = "The archive usually catches up within a day."
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultRetryDelay  = 10 * time.Second
	maxHeadlines       = 6
)

// errNoDayArticles marks a month fetch that produced no articles for the
// target day; it drives the single automatic retry.
var errNoDayArticles = errors.New("no articles for target day")

// HeadlineSet is the per-day result. Headlines[0], when present, is the
// lead; the remainder are supporting lines.
type HeadlineSet struct {
	Headlines   []string
	Placeholder bool
	Summary     *Summary
}

// Lead returns the lead headline or the empty string.
func (h HeadlineSet) Lead() string {
	if len(h.Headlines) == 0 {
		return ""
	}
	return h.Headlines[0]
}

// Supporting returns the non-lead headlines.
func (h HeadlineSet) Supporting() []string {
	if len(h.Headlines) <= 1 {
		return nil
	}
	return h.Headlines[1:]
}

// Client talks to the archive API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	retryDelay time.Duration
	sleeper    func(time.Duration)
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryDelay overrides the pause before the single empty-day retry.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = delay
	}
}

// WithSleeper overrides how the retry delay is performed (for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// WithClock overrides the wall clock used for the today/yesterday
// placeholder decision (for tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an archive client.
func New(apiKey, baseURL string, logger *slog.Logger, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("archive api key required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("archive base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     logging.NewComponentLogger(logger, "archive"),
		retryDelay: defaultRetryDelay,
		sleeper:    time.Sleep,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchDay retrieves the month's metadata, filters it to the date, and
// selects headlines. The month fetch is retried exactly once, after a
// fixed delay, when the day yields no articles; an empty result after
// that is terminal but not fatal. A failed initial fetch degrades to an
// empty headline set.
func (c *Client) FetchDay(ctx context.Context, date dateinfo.Date, wantSummary bool) (HeadlineSet, error) {
	var dayDocs []article
	var headlines []string
	placeholder := false

	runner := retry.New(retry.Policy{
		MaxAttempts: 2,
		Delay:       c.retryDelay,
		Retryable:   func(err error) bool { return errors.Is(err, errNoDayArticles) },
	}, retry.WithSleeper(c.sleeper))

	err := runner.Do(ctx, func(attempt int) error {
		docs, err := c.fetchMonth(ctx, date)
		if err != nil {
			return err
		}
		dayDocs = filterDay(docs, date)
		headlines = selectHeadlines(dayDocs)
		if len(headlines) > 0 {
			return nil
		}
		if c.isRecent(date) {
			// The archive has not caught up with a current date yet.
			// Synthesize placeholder lines instead of retrying.
			headlines = []string{placeholderLead, placeholderSupport}
			placeholder = true
			return nil
		}
		c.logger.Warn("no headlines for date",
			logging.String(logging.FieldDate, date.ISO()),
			logging.Int("attempt", attempt),
			logging.Int("month_articles", len(docs)),
		)
		return errNoDayArticles
	})

	switch {
	case err == nil:
	case errors.Is(err, errNoDayArticles):
		// Terminal emptiness after the retry; composer applies the fallback.
		c.logger.Warn("accepting empty headline set", logging.String(logging.FieldDate, date.ISO()))
	default:
		// Network or decode failure: degrade, do not abort the run.
		c.logger.Warn("archive fetch failed, continuing without headlines",
			logging.String(logging.FieldDate, date.ISO()),
			logging.Error(err),
		)
		return HeadlineSet{}, nil
	}

	set := HeadlineSet{Headlines: headlines, Placeholder: placeholder}
	if wantSummary && len(dayDocs) > 0 {
		set.Summary = buildSummary(dayDocs)
	}
	return set, nil
}

// isRecent reports whether the date is today or yesterday relative to
// the run's wall clock. Recent dates get placeholder lines instead of
// the generic fallback: the archive simply has not caught up.
func (c *Client) isRecent(date dateinfo.Date) bool {
	now := c.now()
	today := dateinfo.Date{Year: now.Year(), Month: int(now.Month()), Day: now.Day()}
	return date == today || date == today.AddDays(-1)
}

func (c *Client) fetchMonth(ctx context.Context, date dateinfo.Date) ([]article, error) {
	endpoint, err := url.Parse(fmt.Sprintf("%s/svc/archive/v1/%s.json", c.baseURL, date.ArchiveMonthPath()))
	if err != nil {
		return nil, fmt.Errorf("parse archive url: %w", err)
	}
	params := url.Values{}
	params.Set("api-key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build archive request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("archive request: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload monthResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode archive response: %w", err)
	}
	c.logger.Debug("month metadata fetched",
		logging.String("month", date.ArchiveMonthPath()),
		logging.Int("articles", len(payload.Response.Docs)),
	)
	return payload.Response.Docs, nil
}

func filterDay(docs []article, date dateinfo.Date) []article {
	prefix := date.ArchivePrefix()
	day := make([]article, 0, 64)
	for _, doc := range docs {
		if strings.HasPrefix(doc.PubDate, prefix) {
			day = append(day, doc)
		}
	}
	return day
}
