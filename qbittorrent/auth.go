package qbittorrent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// authenticate returns a valid session token, logging in if the cached
// one has expired. Concurrent callers share a single login exchange via
// singleflight; callers that queued behind a completed login adopt its
// token without a second HTTP call.
func (c *Client) authenticate(ctx context.Context) (string, error) {
	if token, ok := c.session.Get(); ok {
		return token, nil
	}

	v, err, _ := c.loginGroup.Do("login", func() (any, error) {
		// A login may have completed while we queued.
		if token, ok := c.session.Get(); ok {
			return token, nil
		}

		c.authInFlight.Store(true)
		defer c.authInFlight.Store(false)

		return c.login(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// login performs the credential exchange against /api/v2/auth/login and
// caches the resulting session token. All failure paths surface only the
// generic auth message; details go to the reporter.
func (c *Client) login(ctx context.Context) (string, error) {
	cfg, err := c.settings.ServerConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load server settings: %w", err)
	}
	if cfg.URL == "" || cfg.Username == "" {
		return "", ErrMissingConfig
	}

	base, err := resolveBaseURL(cfg)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("username", cfg.Username)
	// Password is sent as an empty string when unset, never omitted.
	form.Set("password", cfg.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		base+"/api/v2/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.reporter.Report(err, "auth", map[string]any{"server": base})
		return "", &AuthError{Reason: ErrAuthFailed}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.reporter.Report(err, "auth", map[string]any{"server": base})
		return "", &AuthError{Reason: ErrAuthFailed}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.reporter.Report(
			fmt.Errorf("login returned status %d: %s", resp.StatusCode, body),
			"auth", map[string]any{"server": base})
		return "", &AuthError{Reason: ErrAuthFailed}
	}

	if string(body) != "Ok." {
		c.reporter.Report(
			fmt.Errorf("login returned unexpected body: %s", body),
			"auth", map[string]any{"server": base})
		return "", &AuthError{Reason: ErrInvalidCredentials}
	}

	token := sessionToken(resp.Header.Get("Set-Cookie"))
	if token == "" {
		// Some server setups complete the login without issuing a cookie.
		// Tolerated: subsequent requests simply carry no Cookie header.
		c.logger.Warn().Msg("Login succeeded but no session cookie was issued")
	}

	c.session.Set(token)
	c.logger.Debug().Msg("Authenticated with qBittorrent")
	return token, nil
}

// sessionToken extracts the session token from a Set-Cookie header value:
// the first ;-delimited segment, e.g. "SID=abc123".
func sessionToken(setCookie string) string {
	seg, _, _ := strings.Cut(setCookie, ";")
	return strings.TrimSpace(seg)
}

// Login forces an authentication exchange if no valid session is cached.
// Exposed for connection tests.
func (c *Client) Login(ctx context.Context) error {
	_, err := c.authenticate(ctx)
	return err
}

// InvalidateSession drops the cached session token. Called when stored
// credentials change.
func (c *Client) InvalidateSession() {
	c.session.Invalidate()
}
