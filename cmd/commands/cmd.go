package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"emperror.dev/errors"
	"github.com/urfave/cli/v2"

	"github.com/starshine-sys/cordial/cmd/serve"
	"github.com/starshine-sys/cordial/cmd/setup"
	"github.com/starshine-sys/cordial/discord"
)

var Command = &cli.Command{
	Name:   "commands",
	Usage:  "Synchronize application commands",
	Action: run,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "global",
			Usage: "Synchronize commands globally (mutually exclusive with --guild)",
		},
		&cli.Uint64Flag{
			Name:  "guild",
			Usage: "Synchronize commands to a specific guild",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "JSON file with the commands to write, instead of the server's built-in commands",
		},
	},
}

func run(c *cli.Context) error {
	global := c.Bool("global")
	guildID := discord.GuildID(c.Uint64("guild"))
	if global && guildID.IsValid() {
		return cli.Exit("`global` and `guild` are mutually exclusive", 1)
	}
	if !global && !guildID.IsValid() {
		return cli.Exit("Neither `global` nor `guild` were set", 1)
	}

	cmds := serve.Commands
	if path := c.String("file"); path != "" {
		var err error
		cmds, err = ReadFile(path)
		if err != nil {
			return err
		}
	}

	env, err := setup.New(c)
	if err != nil {
		return err
	}
	defer env.Close()

	appID := env.Config.Auth.AppID
	if !appID.IsValid() {
		return cli.Exit("No application ID set in the config file.", 1)
	}

	if global {
		out, err := env.Client.BulkOverwriteCommands(c.Context, appID, cmds)
		if err != nil {
			return errors.Wrap(err, "overwriting commands")
		}
		fmt.Fprintf(c.App.Writer, "Wrote %d global command(s)!\n", len(out))
		return nil
	}

	out, err := env.Client.BulkOverwriteGuildCommands(c.Context, appID, guildID, cmds)
	if err != nil {
		return errors.Wrap(err, "overwriting commands")
	}
	fmt.Fprintf(c.App.Writer, "Wrote %d guild command(s) in %v!\n", len(out), guildID)
	return nil
}

// ReadFile reads a JSON array of commands.
func ReadFile(path string) ([]discord.Command, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading commands file")
	}

	var cmds []discord.Command
	if err := json.Unmarshal(b, &cmds); err != nil {
		return nil, errors.Wrapf(err, "decoding %v", path)
	}
	return cmds, nil
}
