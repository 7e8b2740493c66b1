package migrate

import (
	"time"

	"emperror.dev/errors"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/starshine-sys/cordial/cmd/setup"
	"github.com/starshine-sys/cordial/common/log"
	"github.com/starshine-sys/cordial/store/postgres"
)

var Command = &cli.Command{
	Name:   "migrate",
	Usage:  "Run message archive migrations manually",
	Action: run,
}

var PruneCommand = &cli.Command{
	Name:   "prune",
	Usage:  "Permanently remove archived messages that were deleted a while ago",
	Action: prune,
	Flags: []cli.Flag{&cli.DurationFlag{
		Name:  "older-than",
		Usage: "Remove messages deleted longer than this ago",
		Value: 30 * 24 * time.Hour,
	}},
}

func run(c *cli.Context) error {
	conf, err := setup.Config(c)
	if err != nil {
		return err
	}

	if conf.Auth.Postgres == "" {
		return cli.Exit("No database url set in the config file.", 1)
	}

	n, err := postgres.Migrate(conf.Auth.Postgres)
	if err != nil {
		return errors.Wrap(err, "running migrations")
	}

	log.Infof("Successfully ran %d migration(s)!", n)
	return nil
}

func prune(c *cli.Context) error {
	conf, err := setup.Config(c)
	if err != nil {
		return err
	}

	if conf.Auth.Postgres == "" {
		return cli.Exit("No database url set in the config file.", 1)
	}

	pg, err := postgres.New(c.Context, conf.Auth.Postgres, log.Named("postgres"))
	if err != nil {
		return errors.Wrap(err, "connecting to postgres")
	}
	defer pg.Close()

	before := time.Now().Add(-c.Duration("older-than"))
	n, err := pg.Purge(c.Context, before)
	if err != nil {
		return err
	}

	log.Infof("Removed %v message(s) deleted before %v", humanize.Comma(n), humanize.Time(before))
	return nil
}
