// file: internal/exchange/exchange.go
// version: 1.0.0
// guid: 5b0c3d4e-6f70-8192-a3b4-c5d6e7f80910

package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GrantTypeTokenExchange is the grant_type value for an OAuth token exchange.
const GrantTypeTokenExchange = "urn:ietf:params:oauth:grant-type:token-exchange"

// Exchanger converts an upstream identity token into a downstream
// trust-domain token. Implementations collapse every failure cause
// (transport error, rejection, malformed response) into a single error:
// callers must treat any error as "no token available, do not cache".
type Exchanger interface {
	Exchange(ctx context.Context, subjectToken string) (string, error)
}

// Client performs token exchanges against a single downstream endpoint using
// fixed client credentials. It holds no state between calls and never caches.
type Client struct {
	httpClient   *http.Client
	endpoint     string
	clientID     string
	clientSecret string
}

// NewClient creates an exchange client for the given endpoint and credentials.
func NewClient(endpoint, clientID, clientSecret string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		endpoint:     strings.TrimRight(endpoint, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// tokenResponse is the subset of the exchange response we care about.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Exchange posts a token-exchange request and returns the downstream token.
// The subject token is sent as-is; the endpoint decides whether it is valid.
func (c *Client) Exchange(ctx context.Context, subjectToken string) (string, error) {
	if subjectToken == "" {
		return "", fmt.Errorf("subject token is empty")
	}

	form := url.Values{}
	form.Set("grant_type", GrantTypeTokenExchange)
	form.Set("subject_token", subjectToken)
	form.Set("subject_token_type", "urn:ietf:params:oauth:token-type:access_token")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("exchange endpoint returned status %d", resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode exchange response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("exchange response contained no access token")
	}

	return body.AccessToken, nil
}
