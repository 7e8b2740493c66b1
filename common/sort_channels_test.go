package common

import (
	"testing"

	"github.com/starshine-sys/cordial/discord"
)

func TestSortChannels(t *testing.T) {
	channels := []discord.Channel{
		{ID: 1, Name: "voice", Type: discord.GuildVoice, ParentID: 10, Position: 0},
		{ID: 2, Name: "chat", Type: discord.GuildText, ParentID: 10, Position: 1},
		{ID: 10, Name: "Category", Type: discord.GuildCategory, Position: 1},
		{ID: 11, Name: "Other", Type: discord.GuildCategory, Position: 0},
		{ID: 3, Name: "rules", Type: discord.GuildText, Position: 5},
		{ID: 4, Name: "thread", Type: discord.GuildPublicThread, ParentID: 2},
		{ID: 5, Name: "memes", Type: discord.GuildText, ParentID: 11},
	}

	var names []string
	for _, ch := range SortChannels(channels) {
		names = append(names, ch.Name)
	}

	want := []string{"rules", "Other", "memes", "Category", "chat", "thread", "voice"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}

	if channels[0].Name != "voice" {
		t.Error("input slice was modified")
	}
}
