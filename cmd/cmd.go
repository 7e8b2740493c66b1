package cmd

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/starshine-sys/cordial/cmd/api"
	"github.com/starshine-sys/cordial/cmd/commands"
	"github.com/starshine-sys/cordial/cmd/migrate"
	"github.com/starshine-sys/cordial/cmd/serve"
	"github.com/starshine-sys/cordial/cmd/setup"
	"github.com/starshine-sys/cordial/common"
)

var app = &cli.App{
	Name:    "cordial",
	Usage:   "Discord REST client and interactions server",
	Version: common.Version(),

	Flags: []cli.Flag{setup.ConfigFlag},

	Commands: append([]*cli.Command{
		serve.Command,
		commands.Command,
		migrate.Command,
		migrate.PruneCommand,
	}, api.Commands...),
}

func Run() error {
	return app.Run(os.Args)
}
