package qbittorrent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/sendarr/sendarr/telemetry"
)

// Client talks to the qBittorrent Web API v2.
type Client struct {
	settings   SettingsProvider
	httpClient *http.Client
	session    *sessionCache
	reporter   telemetry.Reporter
	logger     zerolog.Logger
	userAgent  string

	loginGroup   singleflight.Group
	authInFlight atomic.Bool
}

// NewClient creates a new qBittorrent client. Construction never dials
// the server; the first authenticated request triggers the login.
func NewClient(settings SettingsProvider, logger zerolog.Logger, opts ...Option) *Client {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.timeout}
	}

	return &Client{
		settings:   settings,
		httpClient: httpClient,
		session:    newSessionCache(options.sessionTTL),
		reporter:   options.reporter,
		logger:     logger,
		userAgent:  options.userAgent,
	}
}

// doRequest is the single gateway for authenticated API calls: it obtains
// a session token, builds the absolute URL, injects the cookie and
// classifies HTTP failures. Raw response bodies for failed calls go only
// to the reporter.
func (c *Client) doRequest(ctx context.Context, method, endpoint, contentType string, body io.Reader) ([]byte, error) {
	token, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := c.settings.ServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load server settings: %w", err)
	}
	base, err := resolveBaseURL(cfg)
	if err != nil {
		return nil, err
	}

	timer := telemetry.StartTimer(c.logger, "api_request")

	req, err := http.NewRequestWithContext(ctx, method, base+"/api/v2/"+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Cookie", token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	timer.End(map[string]any{"endpoint": endpoint, "status": resp.StatusCode})

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return respBody, nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		apiErr.Kind = ErrAuthRequired
	case resp.StatusCode == http.StatusForbidden:
		apiErr.Kind = ErrAccessDenied
	case resp.StatusCode >= 500:
		apiErr.Kind = ErrServerError
	default:
		apiErr.Kind = ErrRequestFailed
	}

	c.reporter.Report(
		fmt.Errorf("request to %s returned status %d: %s", endpoint, resp.StatusCode, respBody),
		"api", map[string]any{"endpoint": endpoint})

	return nil, apiErr
}

// Version returns the server application version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "app/version", "", nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// GetPreferences returns the server preferences the client cares about.
func (c *Client) GetPreferences(ctx context.Context) (*Preferences, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "app/preferences", "", nil)
	if err != nil {
		return nil, err
	}
	var prefs Preferences
	if err := json.Unmarshal(body, &prefs); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}
	return &prefs, nil
}

// AddTorrent submits a magnet URI or a .torrent file to the server. The
// server answers "Ok." on success; any other body is a submission
// failure carrying the raw server text.
func (c *Client) AddTorrent(ctx context.Context, add AddTorrentRequest) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if add.MagnetURI != "" {
		if err := w.WriteField("urls", add.MagnetURI); err != nil {
			return fmt.Errorf("failed to build payload: %w", err)
		}
	} else {
		fw, err := w.CreateFormFile("torrents", "download.torrent")
		if err != nil {
			return fmt.Errorf("failed to build payload: %w", err)
		}
		if _, err := fw.Write(add.FileData); err != nil {
			return fmt.Errorf("failed to build payload: %w", err)
		}
	}

	if add.Category != "" {
		if err := w.WriteField("category", add.Category); err != nil {
			return fmt.Errorf("failed to build payload: %w", err)
		}
	}
	if add.SavePath != "" {
		if err := w.WriteField("savepath", add.SavePath); err != nil {
			return fmt.Errorf("failed to build payload: %w", err)
		}
	}
	if add.Paused {
		if err := w.WriteField("paused", "true"); err != nil {
			return fmt.Errorf("failed to build payload: %w", err)
		}
	}
	if add.SkipHashCheck {
		if err := w.WriteField("skip_checking", "true"); err != nil {
			return fmt.Errorf("failed to build payload: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to build payload: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, "torrents/add", w.FormDataContentType(), &buf)
	if err != nil {
		return err
	}

	if string(body) != "Ok." {
		return &SubmissionError{Response: strings.TrimSpace(string(body))}
	}
	return nil
}
