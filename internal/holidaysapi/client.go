package holidaysapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// ErrNotAuthenticated signals that the API rejected the bearer token.
// The client reacts by forcing re-authentication and retrying exactly once.
var ErrNotAuthenticated = errors.New("holidays api: not authenticated")

// Client talks to the Holidays API: email/password auth issuing a bearer
// token, and a holidays listing endpoint.
type Client struct {
	baseURL    string
	email      string
	password   string
	tokens     *TokenStore
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Holidays API client
func NewClient(baseURL, email, password string, tokens *TokenStore, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		email:    email,
		password: password,
		tokens:   tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Auth ensures a usable bearer token: reuse the cached one unless force
// is set or no valid token exists, otherwise authenticate against the API.
func (c *Client) Auth(ctx context.Context, force bool) error {
	if force {
		c.logger.Debug("Force authentication")
		c.tokens.Discard()
	} else if c.tokens.Get() != "" {
		return nil
	}

	body, err := json.Marshal(authRequest{Email: c.email, Password: c.password})
	if err != nil {
		return fmt.Errorf("failed to marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var auth authResponse
	if err := json.Unmarshal(respBody, &auth); err != nil {
		return fmt.Errorf("failed to parse auth response: %w", err)
	}
	if auth.Token == "" {
		return fmt.Errorf("auth response contains no token")
	}

	c.tokens.Set(auth.Token)
	c.logger.Debug("Authenticated", zap.String("email", c.email))

	return nil
}

// FetchHolidays returns every holiday record intersecting the inclusive
// [from, to] range. On an unauthenticated response the client re-auths
// once and repeats the request; any second failure is returned as is.
func (c *Client) FetchHolidays(ctx context.Context, from, to time.Time) ([]HolidayRecord, error) {
	if err := c.Auth(ctx, false); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))

	var records []HolidayRecord
	err := c.getJSON(ctx, "/holidays", params, &records)
	if errors.Is(err, ErrNotAuthenticated) {
		c.logger.Warn("Token rejected, re-authenticating", zap.Error(err))
		if err := c.Auth(ctx, true); err != nil {
			return nil, err
		}
		err = c.getJSON(ctx, "/holidays", params, &records)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Holidays fetched",
		zap.String("from", from.Format("2006-01-02")),
		zap.String("to", to.Format("2006-01-02")),
		zap.Int("count", len(records)))

	return records, nil
}

// getJSON performs a single authenticated GET and decodes the JSON reply
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	token := c.tokens.Get()
	if token == "" {
		return fmt.Errorf("%w: no token available", ErrNotAuthenticated)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s returned 401", ErrNotAuthenticated, path)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s failed with status %d: %s", path, resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response from %s: %w", path, err)
		}
	}

	return nil
}
