// Package rest is a client for Discord's HTTP API.
//
// Every request goes through the ratelimit handler for its route, so callers never see a 429
// unless retries run out. Responses that change cached entities are written back to the store cabinet, if one is set.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"emperror.dev/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/starshine-sys/cordial/common"
	"github.com/starshine-sys/cordial/common/log"
	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/ratelimit"
	"github.com/starshine-sys/cordial/store"
)

const (
	DefaultBaseURL    = "https://discord.com/api/v10"
	DefaultMaxRetries = 3
	DefaultGlobalRate = 50

	DefaultCleanupInterval = time.Minute
	DefaultHandlerIdle     = 5 * time.Minute
)

// TokenType is the kind of token used to authenticate.
type TokenType string

const (
	BotToken    TokenType = "Bot"
	BearerToken TokenType = "Bearer"
)

const ErrNoToken = errors.Sentinel("no token or token source configured")

// Config holds configuration for creating a Client.
type Config struct {
	Token string
	// TokenType defaults to BotToken.
	TokenType TokenType

	// BaseURL defaults to DefaultBaseURL.
	BaseURL   string
	UserAgent string

	// HTTPClient defaults to a client with a 30 second timeout.
	HTTPClient *http.Client

	// MaxRetries is how often a request is retried after a 429 or a 5xx response. A negative value disables retries.
	MaxRetries int
	// ServerErrorBackoff is multiplied by the attempt number to get the wait before retrying a 5xx response.
	ServerErrorBackoff time.Duration

	// GlobalRate is the maximum number of requests per second across all routes.
	GlobalRate int

	// CleanupInterval is how often Run removes ratelimit handlers that have been idle for HandlerIdle.
	CleanupInterval time.Duration
	HandlerIdle     time.Duration
}

// Stats receives metrics about requests. *stats.Client implements it.
type Stats interface {
	Request(route string, status int, took time.Duration)
	RateLimited(route string, global bool)
	Retry(route string)
}

// Client is a Discord REST API client.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	tokens    oauth2.TokenSource

	maxRetries int
	backoff    time.Duration

	cleanupInterval time.Duration
	handlerIdle     time.Duration

	routes   map[string]*Route
	registry *ratelimit.Registry
	global   *rate.Limiter

	cabinet *store.Cabinet
	stats   Stats
	log     *zap.SugaredLogger

	selfMu sync.Mutex
	self   discord.UserID
}

// Option configures optional parts of a Client.
type Option func(*Client)

// WithLogger sets the client's logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = l }
}

// WithCabinet caches entities in the given stores.
func WithCabinet(cab *store.Cabinet) Option {
	return func(c *Client) { c.cabinet = cab }
}

// WithStats reports request metrics to s.
func WithStats(s Stats) Option {
	return func(c *Client) { c.stats = s }
}

// WithTokenSource authenticates with tokens from ts, such as an OAuth2 bearer token that refreshes itself.
// It overrides Config.Token.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithRegistry uses an existing ratelimit registry.
// Clients sharing a token should share a registry, so they share the global lock.
func WithRegistry(r *ratelimit.Registry) Option {
	return func(c *Client) { c.registry = r }
}

// NewClient creates a client from the given configuration.
func NewClient(config Config, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		userAgent:  config.UserAgent,
		http:       config.HTTPClient,
		maxRetries: config.MaxRetries,
		backoff:    config.ServerErrorBackoff,
		routes:     newRouteTable(),

		cleanupInterval: config.CleanupInterval,
		handlerIdle:     config.HandlerIdle,
	}

	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = common.UserAgent()
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.maxRetries == 0 {
		c.maxRetries = DefaultMaxRetries
	} else if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.backoff <= 0 {
		c.backoff = time.Second
	}
	if c.cleanupInterval <= 0 {
		c.cleanupInterval = DefaultCleanupInterval
	}
	if c.handlerIdle <= 0 {
		c.handlerIdle = DefaultHandlerIdle
	}

	globalRate := config.GlobalRate
	if globalRate <= 0 {
		globalRate = DefaultGlobalRate
	}
	c.global = rate.NewLimiter(rate.Limit(globalRate), globalRate)

	if config.Token != "" {
		typ := config.TokenType
		if typ == "" {
			typ = BotToken
		}
		c.tokens = oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: strings.TrimPrefix(config.Token, string(typ)+" "),
			TokenType:   string(typ),
		})
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.tokens == nil {
		return nil, ErrNoToken
	}
	if c.log == nil {
		c.log = log.Named("rest")
	}
	if c.registry == nil {
		c.registry = ratelimit.NewRegistry(c.log.Named("ratelimit"))
	}
	if c.stats == nil {
		c.stats = nopStats{}
	}
	return c, nil
}

// Registry returns the client's ratelimit registry.
func (c *Client) Registry() *ratelimit.Registry {
	return c.registry
}

// Run removes idle ratelimit handlers until ctx is cancelled.
// Long-running clients should start it in a goroutine, or every bucket they ever used stays in memory.
func (c *Client) Run(ctx context.Context) {
	c.registry.Run(ctx, c.cleanupInterval, c.handlerIdle)
}

// Cabinet returns the client's store cabinet, which may be nil.
func (c *Client) Cabinet() *store.Cabinet {
	return c.cabinet
}

// request is a single API call.
type request struct {
	route string
	args  []interface{}
	// major is the ID the route's bucket is scoped to
	major discord.Snowflake

	query  url.Values
	body   interface{}
	files  []discord.File
	reason string
}

func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	route, ok := c.routes[req.route]
	if !ok {
		return errors.Errorf("unknown route %q", req.route)
	}

	u := c.baseURL + route.Format(req.args...)
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	payload, contentType, err := EncodeBody(req.body, req.files)
	if err != nil {
		return errors.Wrap(err, "encoding request body")
	}

	handler := c.registry.Handler(route.Group, req.major)
	for attempt := 0; ; attempt++ {
		if err := c.global.Wait(ctx); err != nil {
			return errors.Wrap(err, "waiting for global rate")
		}
		if err := handler.Acquire(ctx); err != nil {
			return errors.Wrap(err, "waiting for ratelimit")
		}

		start := time.Now()
		resp, body, err := c.send(ctx, route.Method, u, payload, contentType, req.reason)
		if err != nil {
			handler.Release(ratelimit.Info{}, false)
			return err
		}

		info, hasInfo := ratelimit.ParseHeaders(resp.Header)
		handler.Release(info, hasInfo)
		c.stats.Request(route.Name, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := ratelimit.RetryAfter(resp.Header, body)
			global := info.IsGlobal() || isGlobalBody(body)
			if global {
				c.registry.LockGlobal(wait)
			} else {
				handler.Exhaust(time.Now().Add(wait))
			}
			c.stats.RateLimited(route.Name, global)

			if attempt >= c.maxRetries {
				return parseAPIError(resp.StatusCode, body)
			}
			c.log.Debugf("Ratelimited on %v %v (global: %v), retrying in %v, bucket %v", route.Method, route.Name, global, wait, handler.Snapshot())
			c.stats.Retry(route.Name)
			continue

		case resp.StatusCode >= 500 && idempotent(route.Method) && attempt < c.maxRetries:
			wait := c.backoff * time.Duration(attempt+1)
			c.log.Warnf("Got %d on %v %v, retrying in %v", resp.StatusCode, route.Method, route.Name, wait)
			c.stats.Retry(route.Name)

			t := time.NewTimer(wait)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			}
			continue

		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return parseAPIError(resp.StatusCode, body)
		}

		if out == nil || len(body) == 0 || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		return errors.Wrapf(json.Unmarshal(body, out), "decoding %v response", route.Name)
	}
}

func (c *Client) send(ctx context.Context, method, u string, payload []byte, contentType, reason string) (*http.Response, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating request")
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return nil, nil, errors.Wrap(err, "getting token")
	}
	tok.SetAuthHeader(req)

	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if reason != "" {
		req.Header.Set("X-Audit-Log-Reason", url.PathEscape(reason))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%v %v", method, req.URL.Path)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, errors.Wrap(err, "reading response body")
	}
	return resp, b, nil
}

func isGlobalBody(body []byte) bool {
	var v struct {
		Global bool `json:"global"`
	}
	return json.Unmarshal(body, &v) == nil && v.Global
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// selfID returns the current user's ID, fetching it once if needed.
func (c *Client) selfID(ctx context.Context) (discord.UserID, error) {
	c.selfMu.Lock()
	id := c.self
	c.selfMu.Unlock()
	if id.IsValid() {
		return id, nil
	}

	u, err := c.Me(ctx)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

type nopStats struct{}

func (nopStats) Request(string, int, time.Duration) {}
func (nopStats) RateLimited(string, bool)           {}
func (nopStats) Retry(string)                       {}
