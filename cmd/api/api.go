// Package api has the commands that call Discord's API directly.
package api

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/starshine-sys/cordial/cmd/setup"
	"github.com/starshine-sys/cordial/common"
	"github.com/starshine-sys/cordial/discord"
)

var Commands = []*cli.Command{
	meCommand,
	channelsCommand,
	sendCommand,
	messagesCommand,
	purgeCommand,
	reactCommand,
	unreactCommand,
	reactionsCommand,
	emojisCommand,
}

// withEnv wraps a command's action, creating the client before it runs and closing it after.
func withEnv(fn func(c *cli.Context, env *setup.Env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		env, err := setup.New(c)
		if err != nil {
			return err
		}
		defer env.Close()

		return fn(c, env)
	}
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() < n {
		return cli.Exit(fmt.Sprintf("Expected %d arguments, got %d. Usage: %v %v", n, c.NArg(), c.Command.Name, c.Command.ArgsUsage), 1)
	}
	return nil
}

func snowflakeArg(c *cli.Context, i int, what string) (discord.Snowflake, error) {
	arg := c.Args().Get(i)

	sf, err := discord.ParseSnowflake(arg)
	if err != nil || !sf.IsValid() {
		return 0, cli.Exit(fmt.Sprintf("%q is not a valid %v ID.", arg, what), 1)
	}
	return sf, nil
}

var meCommand = &cli.Command{
	Name:  "me",
	Usage: "Show the current user",
	Action: withEnv(func(c *cli.Context, env *setup.Env) error {
		u, err := env.Client.Me(c.Context)
		if err != nil {
			return err
		}

		w := c.App.Writer
		fmt.Fprintf(w, "%v (%v)\n", u.Tag(), u.ID)
		fmt.Fprintf(w, "Created %v\n", u.ID.Time().UTC().Format("2006-01-02 15:04:05"))
		if u.Bot {
			fmt.Fprintln(w, "Bot account")
		}
		return nil
	}),
}

var channelsCommand = &cli.Command{
	Name:      "channels",
	Usage:     "List a guild's channels in the order Discord shows them",
	ArgsUsage: "<guild>",
	Action: withEnv(func(c *cli.Context, env *setup.Env) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}
		guildID, err := snowflakeArg(c, 0, "guild")
		if err != nil {
			return err
		}

		chs, err := env.Client.GuildChannels(c.Context, discord.GuildID(guildID))
		if err != nil {
			return err
		}

		for _, ch := range common.SortChannels(chs) {
			indent := ""
			switch {
			case ch.IsThread():
				indent = strings.Repeat(" ", 4)
			case ch.ParentID.IsValid():
				indent = strings.Repeat(" ", 2)
			}

			prefix := "#"
			switch {
			case ch.Type == discord.GuildCategory:
				prefix = ""
			case ch.IsVoice():
				prefix = "🔊 "
			}
			fmt.Fprintf(c.App.Writer, "%v%v%v (%v)\n", indent, prefix, ch.Name, ch.ID)
		}
		return nil
	}),
}
