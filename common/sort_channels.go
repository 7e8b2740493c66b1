package common

import (
	"sort"

	"github.com/starshine-sys/cordial/discord"
)

// SortChannels sorts a guild's channels into the order shown in the Discord client:
// channels without a category first, then each category followed by its channels.
// Threads are placed directly after their parent channel.
// It returns a new slice, and does not modify the given slice in place.
func SortChannels(channels []discord.Channel) []discord.Channel {
	var (
		noCategory = make([]discord.Channel, 0)
		categories = make([]discord.Channel, 0)
		children   = make(map[discord.ChannelID][]discord.Channel)
		threads    = make(map[discord.ChannelID][]discord.Channel)
	)
	for _, ch := range channels {
		switch {
		case ch.Type == discord.GuildCategory:
			categories = append(categories, ch)
		case ch.IsThread():
			threads[ch.ParentID] = append(threads[ch.ParentID], ch)
		case ch.ParentID.IsValid():
			children[ch.ParentID] = append(children[ch.ParentID], ch)
		default:
			noCategory = append(noCategory, ch)
		}
	}

	byPosition := func(chs []discord.Channel) {
		sort.SliceStable(chs, func(i, j int) bool {
			// voice channels always sort below text channels in the same category
			if chs[i].IsVoice() != chs[j].IsVoice() {
				return !chs[i].IsVoice()
			}
			if chs[i].Position != chs[j].Position {
				return chs[i].Position < chs[j].Position
			}
			return chs[i].ID < chs[j].ID
		})
	}

	byPosition(noCategory)
	byPosition(categories)

	sorted := make([]discord.Channel, 0, len(channels))
	add := func(chs []discord.Channel) {
		for _, ch := range chs {
			sorted = append(sorted, ch)
			// threads are sorted newest first
			ts := threads[ch.ID]
			sort.SliceStable(ts, func(i, j int) bool { return ts[i].ID > ts[j].ID })
			sorted = append(sorted, ts...)
		}
	}

	add(noCategory)
	for _, cat := range categories {
		sorted = append(sorted, cat)
		byPosition(children[cat.ID])
		add(children[cat.ID])
	}

	return sorted
}
