package serve

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"emperror.dev/errors"
	"github.com/dustin/go-humanize"
	"github.com/getsentry/sentry-go"
	"github.com/urfave/cli/v2"

	"github.com/starshine-sys/cordial/cmd/setup"
	"github.com/starshine-sys/cordial/common"
	"github.com/starshine-sys/cordial/common/log"
	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/interactions"
)

var Command = &cli.Command{
	Name:   "serve",
	Usage:  "Run the interactions server",
	Action: run,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Usage: "Address to listen on, overrides the config file",
		},
	},
}

// Commands are the application commands handled by the server.
// They can be registered with the commands subcommand.
var Commands = []discord.Command{
	{
		Name:        "ping",
		Description: "Check if the bot is alive",
	},
	{
		Name:        "about",
		Description: "Show information about the bot",
	},
}

func run(c *cli.Context) error {
	env, err := setup.New(c)
	if err != nil {
		return err
	}
	defer env.Close()

	conf := env.Config
	if conf.Auth.PublicKey == "" {
		return cli.Exit("No public key set in the config file or $CORDIAL_PUBLIC_KEY.", 1)
	}

	opts := []interactions.Option{interactions.WithLogger(log.Named("interactions"))}

	// set up sentry
	if conf.Auth.Sentry != "" {
		log.Debug("setting up sentry")
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     conf.Auth.Sentry,
			Release: common.Version(),
		})
		if err != nil {
			return errors.Wrap(err, "setting up sentry")
		}
		defer sentry.Flush(2 * time.Second)

		opts = append(opts, interactions.WithSentry(sentry.CurrentHub()))
	} else {
		log.Debugf("sentry DSN was not provided, not setting it up")
	}

	if env.Stats != nil {
		opts = append(opts, interactions.WithStats(env.Stats))
	}

	s, err := interactions.New(conf.InteractionsConfig(), env.Client, opts...)
	if err != nil {
		return errors.Wrap(err, "creating interactions server")
	}
	register(s)

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	addr := conf.Interactions.Addr
	if c.String("addr") != "" {
		addr = c.String("addr")
	}
	return s.ListenAndServe(ctx, addr)
}

func register(s *interactions.Server) {
	start := time.Now()

	s.Command("ping", func(ev *interactions.Event) error {
		return ev.ReplyEphemeral(fmt.Sprintf("Pong! Received %v after it was created.", time.Since(ev.ID.Time()).Round(time.Millisecond)))
	})

	s.Command("about", func(ev *interactions.Event) error {
		stats := runtime.MemStats{}
		runtime.ReadMemStats(&stats)

		return ev.Reply("", discord.Embed{
			Title: "About",
			Fields: []discord.EmbedField{
				{Name: "Version", Value: common.Version(), Inline: true},
				{Name: "Go version", Value: runtime.Version(), Inline: true},
				{Name: "Uptime", Value: humanize.RelTime(start, time.Now(), "", ""), Inline: true},
				{Name: "Memory", Value: humanize.Bytes(stats.Alloc), Inline: true},
				{Name: "Goroutines", Value: humanize.Comma(int64(runtime.NumGoroutine())), Inline: true},
			},
		})
	})
}
