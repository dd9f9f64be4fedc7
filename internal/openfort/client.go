// Package openfort is a small REST client for the Openfort players and
// accounts API. Every call runs inside a circuit breaker and reads are
// retried with backoff on transient failures.
package openfort

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"miniapp-auth/internal/circuitbreaker"
	"miniapp-auth/internal/common/errors"
	"miniapp-auth/internal/common/logging"
	"miniapp-auth/internal/common/utils"
)

const defaultBaseURL = "https://api.openfort.xyz"

// Player is an Openfort player, the owner of one or more accounts
type Player struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt int64             `json:"createdAt,omitempty"`
}

// Account is a smart account of a player on one chain
type Account struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	ChainID   int64  `json:"chainId"`
	PlayerID  string `json:"-"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

type listResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// playerPageSize is the page size used when scanning players
const playerPageSize = 100

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Config configures the client
type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
	Breaker   circuitbreaker.Config
	// Retry applies to GET requests. The zero value makes a single attempt.
	Retry utils.RetryConfig
}

// Client talks to the Openfort REST API
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	breaker    *circuitbreaker.GoBreakerAdapter
	retry      utils.RetryConfig
	logger     logging.Logger
}

// NewClient returns a client. The secret key is required.
func NewClient(cfg Config, logger logging.Logger) (*Client, error) {
	if cfg.SecretKey == "" {
		return nil, errors.ConfigError("openfort secret key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, errors.ConfigError("openfort base url is invalid")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Breaker == (circuitbreaker.Config{}) {
		cfg.Breaker = circuitbreaker.DefaultConfig()
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	logger = logger.WithFields(logging.String("component", "openfort"))

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    circuitbreaker.NewGoBreaker("openfort", cfg.Breaker, logger),
		retry:      cfg.Retry,
		logger:     logger,
	}, nil
}

// CreatePlayer registers a new player with the given name and metadata
func (c *Client) CreatePlayer(ctx context.Context, name string, metadata map[string]string) (*Player, error) {
	body := map[string]interface{}{"name": name}
	if len(metadata) > 0 {
		body["metadata"] = metadata
	}

	var player Player
	if err := c.do(ctx, http.MethodPost, "/v1/players", nil, body, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// FindPlayerByMetadata pages through all players, newest first, for one whose
// metadata key equals value. It returns a not-found error when none matches.
func (c *Client) FindPlayerByMetadata(ctx context.Context, key, value string) (*Player, error) {
	for skip := 0; ; {
		query := url.Values{
			"limit": {strconv.Itoa(playerPageSize)},
			"skip":  {strconv.Itoa(skip)},
		}

		var page listResponse[Player]
		if err := c.do(ctx, http.MethodGet, "/v1/players", query, nil, &page); err != nil {
			return nil, err
		}

		for i := range page.Data {
			if page.Data[i].Metadata[key] == value {
				return &page.Data[i], nil
			}
		}

		skip += len(page.Data)
		if len(page.Data) < playerPageSize || (page.Total > 0 && skip >= page.Total) {
			return nil, errors.NotFoundError("player")
		}
	}
}

// ListAccounts returns the accounts of a player across all chains
func (c *Client) ListAccounts(ctx context.Context, playerID string) ([]Account, error) {
	query := url.Values{"player": {playerID}}

	var accounts listResponse[Account]
	if err := c.do(ctx, http.MethodGet, "/v1/accounts", query, nil, &accounts); err != nil {
		return nil, err
	}
	for i := range accounts.Data {
		accounts.Data[i].PlayerID = playerID
	}
	return accounts.Data, nil
}

// CreateAccount creates an account for the player on chainID
func (c *Client) CreateAccount(ctx context.Context, playerID string, chainID int64) (*Account, error) {
	body := map[string]interface{}{
		"player":  playerID,
		"chainId": chainID,
	}

	var account Account
	if err := c.do(ctx, http.MethodPost, "/v1/accounts", nil, body, &account); err != nil {
		return nil, err
	}
	account.PlayerID = playerID
	return &account, nil
}

// Health reports the breaker state; an open circuit is unhealthy
func (c *Client) Health() error {
	if c.breaker.State() == circuitbreaker.StateOpen {
		return errors.ConnectionError("openfort circuit breaker is open", nil)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	attempt := func() error {
		return c.breaker.Execute(ctx, func() error {
			return c.roundTrip(ctx, method, path, query, body, out)
		})
	}

	// creates are not idempotent
	if method != http.MethodGet {
		return attempt()
	}

	retry := c.retry
	retry.RetryableErrors = c.retryable
	return utils.RetryWithBackoff(ctx, retry, attempt)
}

// retryable reports whether a failed read may succeed on another attempt
func (c *Client) retryable(err error) bool {
	if c.breaker.State() == circuitbreaker.StateOpen {
		return false
	}
	switch errors.GetType(err) {
	case errors.ErrTypeConnection, errors.ErrTypeRateLimit:
		return true
	default:
		return false
	}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.InternalError("failed to encode openfort request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.InternalError("failed to build openfort request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.ConnectionError("openfort request failed", err).
			WithContext("method", method).
			WithContext("path", path)
	}
	defer resp.Body.Close()

	c.logger.Debug("Openfort request completed",
		logging.String("method", method),
		logging.String("path", path),
		logging.Int("status", resp.StatusCode),
		logging.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.ConnectionError("failed to decode openfort response", err).
			WithContext("path", path)
	}
	return nil
}

// statusError maps an Openfort error response onto an AppError. Client side
// statuses keep their meaning so they do not trip the breaker.
func statusError(resp *http.Response, path string) error {
	var apiErr apiError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &apiErr)

	msg := apiErr.Error.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	var appErr *errors.AppError
	switch {
	case resp.StatusCode == http.StatusNotFound:
		appErr = errors.NotFoundError("openfort resource")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		appErr = errors.ConfigError("openfort rejected the secret key")
	case resp.StatusCode == http.StatusTooManyRequests:
		appErr = errors.RateLimitError("openfort")
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		appErr = errors.ValidationError("openfort rejected the request: " + msg)
	default:
		appErr = errors.ConnectionError("openfort returned "+strconv.Itoa(resp.StatusCode), fmt.Errorf("%s", msg))
	}

	return appErr.WithCode(strconv.Itoa(resp.StatusCode)).WithContext("path", path)
}
