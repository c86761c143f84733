package clarisa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Client is a thin authenticated HTTP client for the CLARISA API. It caches
// the bearer token and re-logs-in when the token's exp claim has passed.
type Client struct {
	baseURL    string
	login      string
	password   string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// Reply mirrors the CLARISA envelope: transport status plus raw body.
type Reply struct {
	Status   int
	Response json.RawMessage
}

func NewClient(host, login, password string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(host, "/"),
		login:      login,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && tokenValid(c.token) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"login":    c.login,
		"password": c.password,
	})
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/auth/login"
	slog.DebugContext(ctx, "requesting clarisa token", "url", url, "login", c.login)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("clarisa login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("clarisa login: unexpected status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("clarisa login: decode response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("clarisa login: response has no access_token")
	}

	c.token = tokenResp.AccessToken
	return c.token, nil
}

// tokenValid decodes the JWT claims without verifying the signature; only the
// expiry matters here, the server verifies the rest.
func tokenValid(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(time.Now())
}

// Post sends an authenticated request to the CLARISA API. Secrets are masked
// in debug output.
func (c *Client) Post(ctx context.Context, path string, payload map[string]string) (*Reply, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	safe := make(map[string]string, len(payload))
	for k, v := range payload {
		if k == "secret" {
			v = "********"
		}
		safe[k] = v
	}
	slog.DebugContext(ctx, "clarisa request", "path", path, "payload", safe)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/api/" + strings.TrimPrefix(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clarisa post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("clarisa post %s: read body: %w", path, err)
	}

	return &Reply{Status: resp.StatusCode, Response: raw}, nil
}
