// Package config reads the configuration file used by the cordial command.
package config

import (
	"net/http"
	"os"
	"time"

	"emperror.dev/errors"
	"github.com/BurntSushi/toml"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/interactions"
	"github.com/starshine-sys/cordial/rest"
	"github.com/starshine-sys/cordial/stats"
	"github.com/starshine-sys/cordial/store/memory"
	"github.com/starshine-sys/cordial/store/redis"
)

// Environment variables that override secrets in the config file.
const (
	TokenEnv     = "CORDIAL_TOKEN"
	PublicKeyEnv = "CORDIAL_PUBLIC_KEY"
	SentryEnv    = "CORDIAL_SENTRY"
)

// Cache backends
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Auth         AuthConfig         `toml:"auth"`
	REST         RESTConfig         `toml:"rest"`
	Cache        CacheConfig        `toml:"cache"`
	Interactions InteractionsConfig `toml:"interactions"`
}

type AuthConfig struct {
	Discord   string        `toml:"discord"`
	TokenType string        `toml:"token_type"`
	AppID     discord.AppID `toml:"app_id"`
	PublicKey string        `toml:"public_key"`

	Postgres string `toml:"postgres"`
	Redis    string `toml:"redis"`
	Sentry   string `toml:"sentry"`

	Influx AuthInfluxConfig `toml:"influx"`
}

type AuthInfluxConfig struct {
	URL          string `toml:"url"`
	Token        string `toml:"token"`
	Organization string `toml:"organization"`
	Bucket       string `toml:"bucket"`
}

type RESTConfig struct {
	BaseURL    string   `toml:"base_url"`
	MaxRetries int      `toml:"max_retries"`
	GlobalRate int      `toml:"global_rate"`
	Timeout    Duration `toml:"timeout"`
}

type CacheConfig struct {
	// Backend is one of "memory" (the default), "redis", or "none".
	Backend     string   `toml:"backend"`
	Prefix      string   `toml:"prefix"`
	MessageTTL  Duration `toml:"message_ttl"`
	MaxMessages int      `toml:"max_messages"`

	// Archive stores every message the client sees in postgres.
	Archive bool `toml:"archive"`
}

type InteractionsConfig struct {
	Addr       string   `toml:"addr"`
	Path       string   `toml:"path"`
	DeferAfter Duration `toml:"defer_after"`
}

// Duration is a time.Duration read from a string such as "30m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ReadConfig reads the configuration at path.
// A missing file isn't an error, as everything required can be set through the environment.
func ReadConfig(path string) (c Config, err error) {
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return c, errors.Wrap(err, "read config file")
	}

	if err == nil {
		err = toml.Unmarshal(b, &c)
		if err != nil {
			return c, errors.Wrap(err, "unmarshal config")
		}
	}

	c.applyEnv()
	c.applyDefaults()
	return c, c.Validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv(TokenEnv); v != "" {
		c.Auth.Discord = v
	}
	if v := os.Getenv(PublicKeyEnv); v != "" {
		c.Auth.PublicKey = v
	}
	if v := os.Getenv(SentryEnv); v != "" {
		c.Auth.Sentry = v
	}
}

func (c *Config) applyDefaults() {
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
	}
	if c.Interactions.Addr == "" {
		c.Interactions.Addr = ":8080"
	}
}

func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Auth.Redis == "" {
			return errors.New("cache backend is redis, but no redis address is set")
		}
	default:
		return errors.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.Cache.Archive && c.Auth.Postgres == "" {
		return errors.New("message archive is enabled, but no postgres url is set")
	}

	switch rest.TokenType(c.Auth.TokenType) {
	case "", rest.BotToken, rest.BearerToken:
	default:
		return errors.Errorf("unknown token type %q", c.Auth.TokenType)
	}
	return nil
}

// RESTConfig returns the configuration for a REST client.
func (c Config) RESTConfig() rest.Config {
	rc := rest.Config{
		Token:      c.Auth.Discord,
		TokenType:  rest.TokenType(c.Auth.TokenType),
		BaseURL:    c.REST.BaseURL,
		MaxRetries: c.REST.MaxRetries,
		GlobalRate: c.REST.GlobalRate,
	}
	if c.REST.Timeout.Duration > 0 {
		rc.HTTPClient = &http.Client{Timeout: c.REST.Timeout.Duration}
	}
	return rc
}

// MemoryConfig returns the configuration for the in-memory cache.
func (c Config) MemoryConfig() memory.Config {
	return memory.Config{
		MessageTTL:  c.Cache.MessageTTL.Duration,
		MaxMessages: c.Cache.MaxMessages,
	}
}

// RedisConfig returns the configuration for the redis cache.
func (c Config) RedisConfig() redis.Config {
	return redis.Config{
		Addr:       c.Auth.Redis,
		Prefix:     c.Cache.Prefix,
		MessageTTL: c.Cache.MessageTTL.Duration,
	}
}

// InteractionsConfig returns the configuration for the interactions server.
func (c Config) InteractionsConfig() interactions.Config {
	return interactions.Config{
		PublicKey:  c.Auth.PublicKey,
		Path:       c.Interactions.Path,
		DeferAfter: c.Interactions.DeferAfter.Duration,
	}
}

// StatsConfig returns the InfluxDB configuration, and false if metrics aren't set up.
func (c Config) StatsConfig() (stats.Config, bool) {
	i := c.Auth.Influx
	if i.URL == "" {
		return stats.Config{}, false
	}

	return stats.Config{
		URL:          i.URL,
		Token:        i.Token,
		Organization: i.Organization,
		Bucket:       i.Bucket,
	}, true
}
