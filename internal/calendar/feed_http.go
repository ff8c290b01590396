package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	defaultPageSize = 250
	maxPages        = 10
)

type HTTPFeedConfig struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	PageSize int

	// RatePerSecond limita chamadas ao provedor (0 = sem limite).
	RatePerSecond float64

	// Fuso usado para eventos de dia inteiro ("date" sem hora).
	Location *time.Location
}

// HTTPFeed consome um endpoint de eventos no formato do Google Calendar.
type HTTPFeed struct {
	baseURL  string
	token    string
	pageSize int
	loc      *time.Location
	client   *http.Client
	limiter  *rate.Limiter
}

func NewHTTPFeed(cfg HTTPFeedConfig) *HTTPFeed {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &HTTPFeed{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		pageSize: pageSize,
		loc:      loc,
		limiter:  limiter,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

type apiEvent struct {
	ID           string    `json:"id"`
	Status       string    `json:"status"`
	Summary      string    `json:"summary"`
	Transparency string    `json:"transparency"`
	Start        eventTime `json:"start"`
	End          eventTime `json:"end"`
}

type eventsPage struct {
	Items         []apiEvent `json:"items"`
	NextPageToken string     `json:"nextPageToken"`
}

func (f *HTTPFeed) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error) {
	var (
		out       []Event
		pageToken string
	)

	for page := 0; page < maxPages; page++ {
		p, err := f.fetchPage(ctx, calendarID, timeMin, timeMax, pageToken)
		if err != nil {
			return nil, err
		}

		for _, item := range p.Items {
			// cancelados e marcados como "livre" não ocupam tempo
			if item.Status == "cancelled" || item.Transparency == "transparent" {
				continue
			}
			ev, err := f.toEvent(item)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", item.ID, err)
			}
			out = append(out, ev)
		}

		if p.NextPageToken == "" {
			return out, nil
		}
		pageToken = p.NextPageToken
	}

	return nil, fmt.Errorf("calendar %s: more than %d pages", calendarID, maxPages)
}

func (f *HTTPFeed) fetchPage(ctx context.Context, calendarID string, timeMin, timeMax time.Time, pageToken string) (*eventsPage, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("timeMin", timeMin.UTC().Format(time.RFC3339))
	q.Set("timeMax", timeMax.UTC().Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	q.Set("maxResults", strconv.Itoa(f.pageSize))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", f.baseURL, url.PathEscape(calendarID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar %s: unexpected status %d", calendarID, resp.StatusCode)
	}

	var p eventsPage
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return &p, nil
}

func (f *HTTPFeed) toEvent(item apiEvent) (Event, error) {
	ev := Event{
		ID:      item.ID,
		Summary: item.Summary,
		Source:  "http",
	}

	if item.Start.Date != "" {
		start, err := time.ParseInLocation("2006-01-02", item.Start.Date, f.loc)
		if err != nil {
			return Event{}, err
		}
		end := start.AddDate(0, 0, 1)
		if item.End.Date != "" {
			if end, err = time.ParseInLocation("2006-01-02", item.End.Date, f.loc); err != nil {
				return Event{}, err
			}
		}
		ev.Start, ev.End, ev.AllDay = start, end, true
		return ev, nil
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return Event{}, err
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return Event{}, err
	}
	ev.Start, ev.End = start, end
	return ev, nil
}
