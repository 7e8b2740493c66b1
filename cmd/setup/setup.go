// Package setup creates the REST client and its stores from the configuration file.
package setup

import (
	"context"

	"emperror.dev/errors"
	"github.com/urfave/cli/v2"

	"github.com/starshine-sys/cordial/common/log"
	"github.com/starshine-sys/cordial/config"
	"github.com/starshine-sys/cordial/rest"
	"github.com/starshine-sys/cordial/stats"
	"github.com/starshine-sys/cordial/store"
	"github.com/starshine-sys/cordial/store/memory"
	"github.com/starshine-sys/cordial/store/postgres"
	"github.com/starshine-sys/cordial/store/redis"
)

// ConfigFlag is the global flag for the configuration file's path.
var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "Path to the configuration file",
	Value:   "config.toml",
	EnvVars: []string{"CORDIAL_CONFIG"},
}

// Env is everything a command needs to talk to Discord.
type Env struct {
	Config config.Config
	Client *rest.Client
	Stats  *stats.Client
	// Archive is nil unless the message archive is enabled.
	Archive *postgres.Store

	cancel  context.CancelFunc
	closers []func()
}

// Config reads the configuration file.
func Config(c *cli.Context) (config.Config, error) {
	conf, err := config.ReadConfig(c.String(ConfigFlag.Name))
	if err != nil {
		return conf, errors.Wrap(err, "reading config")
	}
	return conf, nil
}

// New reads the configuration and creates a client.
func New(c *cli.Context) (*Env, error) {
	conf, err := Config(c)
	if err != nil {
		return nil, err
	}

	if conf.Auth.Discord == "" {
		return nil, cli.Exit("No token set in the config file or $"+config.TokenEnv+".", 1)
	}

	ctx, cancel := context.WithCancel(c.Context)
	env := &Env{Config: conf, cancel: cancel}

	cabinet, err := env.cabinet(ctx)
	if err != nil {
		env.Close()
		return nil, err
	}

	opts := []rest.Option{rest.WithLogger(log.Named("rest"))}
	if cabinet != nil {
		opts = append(opts, rest.WithCabinet(cabinet))
	}

	if sc, ok := conf.StatsConfig(); ok {
		env.Stats = stats.New(sc, log.Named("stats"))
		go env.Stats.Run(ctx)
		opts = append(opts, rest.WithStats(env.Stats))
	}

	env.Client, err = rest.NewClient(conf.RESTConfig(), opts...)
	if err != nil {
		env.Close()
		return nil, errors.Wrap(err, "creating client")
	}
	go env.Client.Run(ctx)
	return env, nil
}

func (env *Env) cabinet(ctx context.Context) (*store.Cabinet, error) {
	var cabinet *store.Cabinet

	switch env.Config.Cache.Backend {
	case config.CacheMemory:
		s := memory.New(env.Config.MemoryConfig())
		env.closers = append(env.closers, func() { s.Close() })
		cabinet = store.NewCabinet(s)
	case config.CacheRedis:
		s, err := redis.New(ctx, env.Config.RedisConfig())
		if err != nil {
			return nil, errors.Wrap(err, "connecting to redis")
		}
		env.closers = append(env.closers, func() { s.Close() })
		cabinet = store.NewCabinet(s)
	}

	if !env.Config.Cache.Archive {
		return cabinet, nil
	}

	pg, err := postgres.New(ctx, env.Config.Auth.Postgres, log.Named("postgres"))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}
	env.Archive = pg
	env.closers = append(env.closers, pg.Close)

	if cabinet == nil {
		return &store.Cabinet{Messages: pg}, nil
	}
	cabinet.Messages = &store.Layered{Cache: cabinet.Messages, Archive: pg}
	return cabinet, nil
}

// Close stops metrics and closes any store connections.
func (env *Env) Close() {
	if env.cancel != nil {
		env.cancel()
	}
	for i := len(env.closers) - 1; i >= 0; i-- {
		env.closers[i]()
	}
}
