// Package gcal mirrors intervention schedules into a Google-Calendar-shaped
// REST provider. Authentication is service-account style: a short-lived
// RS256 assertion is exchanged for a bearer token at the configured token
// endpoint and cached until shortly before expiry.
package gcal

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/marchal/fieldplanner/internal/schedule"
)

const calendarScope = "https://www.googleapis.com/auth/calendar"

// Config carries the provider endpoints and service-account credentials.
type Config struct {
	BaseURL     string
	TokenURL    string
	CalendarID  string
	ClientEmail string
	// PrivateKeyPEM is the service account's RSA key in PEM form.
	PrivateKeyPEM []byte
	Timeout       time.Duration
}

// Client implements schedule.Syncer against the external provider.
type Client struct {
	http       *resty.Client
	tokenURL   string
	calendarID string
	email      string
	key        *rsa.PrivateKey
	logger     *slog.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

var _ schedule.Syncer = (*Client)(nil)

func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.CalendarID == "" {
		return nil, fmt.Errorf("calendar id is required")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(cfg.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:       httpClient,
		tokenURL:   cfg.TokenURL,
		calendarID: cfg.CalendarID,
		email:      cfg.ClientEmail,
		key:        key,
		logger:     logger,
	}, nil
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventBody struct {
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

type eventResponse struct {
	ID string `json:"id"`
}

// CreateEvent inserts an event spanning the intervention's time window and
// returns the provider's event identifier.
func (c *Client) CreateEvent(ctx context.Context, ev schedule.EventInput) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	duration := ev.DurationMinutes
	if duration <= 0 {
		duration = 60
	}

	body := eventBody{
		Summary:     ev.Title,
		Description: ev.Description,
		Start:       windowTime(ev.Start),
		End:         windowTime(ev.Start.Add(time.Duration(duration) * time.Minute)),
	}

	var out eventResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(body).
		SetResult(&out).
		Post(fmt.Sprintf("/calendars/%s/events", c.calendarID))
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("insert event: provider returned %s", resp.Status())
	}
	if out.ID == "" {
		return "", fmt.Errorf("insert event: provider returned no event id")
	}

	c.logger.Info("calendar event created", "event_id", out.ID, "summary", ev.Title)
	return out.ID, nil
}

// UpdateEvent patches only the time window of an existing event. An empty
// eventID is a no-op: a reschedule never creates an event as a side effect.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, start time.Time, durationMinutes int) error {
	if eventID == "" {
		return nil
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	if durationMinutes <= 0 {
		durationMinutes = 60
	}

	body := map[string]eventTime{
		"start": windowTime(start),
		"end":   windowTime(start.Add(time.Duration(durationMinutes) * time.Minute)),
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(body).
		Patch(fmt.Sprintf("/calendars/%s/events/%s", c.calendarID, eventID))
	if err != nil {
		return fmt.Errorf("patch event %s: %w", eventID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("patch event %s: provider returned %s", eventID, resp.Status())
	}

	c.logger.Info("calendar event window patched", "event_id", eventID, "start", windowTime(start).DateTime)
	return nil
}

// windowTime renders an instant as RFC3339 with the offset of its own
// location, which is the configured display timezone for all stamps.
func windowTime(t time.Time) eventTime {
	return eventTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: t.Location().String(),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached bearer token, exchanging a fresh assertion
// when the cached one is missing or about to expire.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp.Add(-time.Minute)) {
		return c.token, nil
	}

	now := time.Now()
	assertion := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   c.email,
		"scope": calendarScope,
		"aud":   c.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	signed, err := assertion.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token assertion: %w", err)
	}

	var out tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type": "urn:ietf:params:oauth:grant-type:jwt-bearer",
			"assertion":  signed,
		}).
		SetResult(&out).
		Post(c.tokenURL)
	if err != nil {
		return "", fmt.Errorf("exchange token: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("exchange token: provider returned %s", resp.Status())
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("exchange token: empty access token")
	}

	c.token = out.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	return c.token, nil
}
