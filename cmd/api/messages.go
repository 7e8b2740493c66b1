package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"emperror.dev/errors"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/starshine-sys/cordial/cmd/setup"
	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/rest"
)

var sendCommand = &cli.Command{
	Name:      "send",
	Usage:     "Send a message",
	ArgsUsage: "<channel> <content>",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Attach a file (can be repeated)",
		},
		&cli.BoolFlag{
			Name:  "spoiler",
			Usage: "Mark attached files as spoilers",
		},
		&cli.Uint64Flag{
			Name:  "reply",
			Usage: "Reply to this message ID",
		},
	},
	Action: withEnv(func(c *cli.Context, env *setup.Env) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}
		channelID, err := snowflakeArg(c, 0, "channel")
		if err != nil {
			return err
		}

		data := rest.SendMessageData{
			Content: strings.Join(c.Args().Slice()[1:], " "),
			// don't ping anyone from the command line
			AllowedMentions: &discord.AllowedMentions{Parse: []discord.AllowedMentionType{}},
		}
		if id := c.Uint64("reply"); id != 0 {
			data.Reference = &discord.MessageReference{MessageID: discord.MessageID(id)}
		}

		for _, path := range c.StringSlice("file") {
			f, err := os.Open(path)
			if err != nil {
				return errors.Wrapf(err, "opening %v", path)
			}
			defer f.Close()

			data.Files = append(data.Files, discord.File{
				Name:    filepath.Base(path),
				Spoiler: c.Bool("spoiler"),
				Reader:  f,
			})
		}

		if err := data.Validate(); err != nil {
			return cli.Exit(err.Error(), 1)
		}

		m, err := env.Client.SendMessage(c.Context, discord.ChannelID(channelID), data)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.App.Writer, "Sent message %v\n", m.ID)
		return nil
	}),
}

var messagesCommand = &cli.Command{
	Name:      "messages",
	Usage:     "Show a channel's most recent messages",
	ArgsUsage: "<channel>",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   fmt.Sprintf("Number of messages to show (max %d)", rest.MaxMessagesBefore),
			Value:   20,
		},
		&cli.Uint64Flag{
			Name:  "before",
			Usage: "Only show messages older than this message ID",
		},
	},
	Action: withEnv(func(c *cli.Context, env *setup.Env) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}
		channelID, err := snowflakeArg(c, 0, "channel")
		if err != nil {
			return err
		}

		msgs, err := env.Client.MessagesBefore(c.Context, discord.ChannelID(channelID), discord.MessageID(c.Uint64("before")), c.Int("limit"))
		if err != nil {
			return err
		}

		w := c.App.Writer
		// oldest first, like the client shows them
		for i := len(msgs) - 1; i >= 0; i-- {
			m := msgs[i]

			fmt.Fprintf(w, "[%v] %v (%v): %v\n", humanize.Time(m.ID.Time()), m.Author.Tag(), m.ID, m.Content)
			for _, a := range m.Attachments {
				fmt.Fprintf(w, "    attachment: %v (%v)\n", a.Filename, humanize.Bytes(a.Size))
			}
			for _, line := range m.Reactions.Lines() {
				fmt.Fprintf(w, "    %v %d\n", line.Emoji, line.Count())
			}
		}
		return nil
	}),
}

var purgeCommand = &cli.Command{
	Name:      "purge",
	Usage:     "Delete a channel's most recent messages",
	ArgsUsage: "<channel>",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:     "count",
			Aliases:  []string{"n"},
			Usage:    "Number of messages to delete",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "reason",
			Usage: "Audit log reason",
		},
	},
	Action: withEnv(func(c *cli.Context, env *setup.Env) error {
		if err := requireArgs(c, 1); err != nil {
			return err
		}
		channelID, err := snowflakeArg(c, 0, "channel")
		if err != nil {
			return err
		}

		count := c.Int("count")
		if count <= 0 || count > rest.MaxMessagesBefore {
			return cli.Exit(fmt.Sprintf("Count must be between 1 and %d.", rest.MaxMessagesBefore), 1)
		}

		msgs, err := env.Client.MessagesBefore(c.Context, discord.ChannelID(channelID), 0, count)
		if err != nil {
			return err
		}

		ids := make([]discord.MessageID, len(msgs))
		for i, m := range msgs {
			ids[i] = m.ID
		}

		err = env.Client.DeleteMessages(c.Context, discord.ChannelID(channelID), ids, c.String("reason"))
		if err != nil {
			fmt.Fprintf(c.App.Writer, "Some of %v messages couldn't be deleted, %d request(s) failed\n",
				humanize.Comma(int64(len(ids))), len(errors.GetErrors(err)))
			return err
		}

		fmt.Fprintf(c.App.Writer, "Deleted %v messages\n", humanize.Comma(int64(len(ids))))
		return nil
	}),
}
