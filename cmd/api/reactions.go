package api

import (
	"fmt"

	"emperror.dev/errors"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/starshine-sys/cordial/cmd/setup"
	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/store"
)

// reactionTarget parses the channel, message, and emoji arguments shared by the reaction commands.
func reactionTarget(c *cli.Context) (discord.ChannelID, discord.MessageID, discord.Emoji, error) {
	if err := requireArgs(c, 3); err != nil {
		return 0, 0, discord.Emoji{}, err
	}

	channelID, err := snowflakeArg(c, 0, "channel")
	if err != nil {
		return 0, 0, discord.Emoji{}, err
	}
	messageID, err := snowflakeArg(c, 1, "message")
	if err != nil {
		return 0, 0, discord.Emoji{}, err
	}

	e, err := discord.ParseEmoji(c.Args().Get(2))
	if err != nil {
		return 0, 0, discord.Emoji{}, cli.Exit(fmt.Sprintf("%q is not an emoji.", c.Args().Get(2)), 1)
	}
	return discord.ChannelID(channelID), discord.MessageID(messageID), e, nil
}

var reactCommand = &cli.Command{
	Name:      "react",
	Usage:     "React to a message",
	ArgsUsage: "<channel> <message> <emoji>",
	Action: withEnv(func(c *cli.Context, env *setup.Env) error {
		channelID, messageID, e, err := reactionTarget(c)
		if err != nil {
			return err
		}

		if err := env.Client.React(c.Context, channelID, messageID, e); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Reacted with %v\n", e)
		return nil
	}),
}

var unreactCommand = &cli.Command{
	Name:      "unreact",
	Usage:     "Remove your reaction from a message",
	ArgsUsage: "<channel> <message> <emoji>",
	Action: withEnv(func(c *cli.Context, env *setup.Env) error {
		channelID, messageID, e, err := reactionTarget(c)
		if err != nil {
			return err
		}

		if err := env.Client.Unreact(c.Context, channelID, messageID, e); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Removed %v\n", e)
		return nil
	}),
}

var reactionsCommand = &cli.Command{
	Name:      "reactions",
	Usage:     "Show who reacted to a message, and how much of it is known",
	ArgsUsage: "<channel> <message> <emoji>",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Only fetch this many reactors. 0 fetches all of them",
		},
	},
	Action: withEnv(func(c *cli.Context, env *setup.Env) error {
		channelID, messageID, e, err := reactionTarget(c)
		if err != nil {
			return err
		}

		// fetched first, so the cached reactions start out matching Discord's counts
		m, err := env.Client.Message(c.Context, channelID, messageID)
		if err != nil {
			return err
		}
		w := c.App.Writer
		fmt.Fprintf(w, "%v has %v reaction(s) with %v\n", m.ID, humanize.Comma(int64(m.Reactions.Count(e))), e)

		var users []discord.User
		if limit := c.Int("limit"); limit > 0 {
			users, err = env.Client.Reactions(c.Context, channelID, messageID, e, 0, limit)
		} else {
			users, err = env.Client.AllReactions(c.Context, channelID, messageID, e)
		}
		if err != nil {
			return err
		}

		for _, u := range users {
			fmt.Fprintf(w, "- %v (%v)\n", u.Tag(), u.ID)
		}

		cab := env.Client.Cabinet()
		if cab == nil || cab.Messages == nil {
			return nil
		}

		cached, err := cab.Messages.Message(c.Context, channelID, messageID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}

		line, ok := cached.Reactions.Line(e)
		if !ok {
			fmt.Fprintln(w, "No cached reactions with this emoji")
			return nil
		}
		fmt.Fprintf(w, "Cached: %d known, %d unknown, reacted yourself: %v, fully loaded: %v\n",
			len(line.Users), line.Unknown, line.Me, line.FullyLoaded())
		return nil
	}),
}

var emojisCommand = &cli.Command{
	Name:      "emojis",
	Usage:     "List a guild's custom emojis",
	ArgsUsage: "<guild>",
	Action: withEnv(func(c *cli.Context, env *setup.Env) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}
		guildID, err := snowflakeArg(c, 0, "guild")
		if err != nil {
			return err
		}

		es, err := env.Client.Emojis(c.Context, discord.GuildID(guildID))
		if err != nil {
			return err
		}

		for _, e := range es {
			animated := ""
			if e.Animated {
				animated = " (animated)"
			}
			fmt.Fprintf(c.App.Writer, "%v %v%v %v\n", e.ID, e.Name, animated, e.URL())
		}
		fmt.Fprintf(c.App.Writer, "%d emoji(s)\n", len(es))
		return nil
	}),
}
