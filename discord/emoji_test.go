package discord

import (
	"encoding/json"
	"strings"
	"testing"

	"emperror.dev/errors"
)

func TestParseEmoji(t *testing.T) {
	tests := []struct {
		input    string
		id       EmojiID
		name     string
		animated bool
	}{
		{"<:blobcat:845315463528497182>", 845315463528497182, "blobcat", false},
		{"<a:blobdance:845315463528497183>", 845315463528497183, "blobdance", true},
		{"blobcat:845315463528497182", 845315463528497182, "blobcat", false},
		{"a:blobdance:845315463528497183", 845315463528497183, "blobdance", true},
		{"👍", 0, "👍", false},
		{" 🏳️‍🌈 ", 0, "🏳️‍🌈", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := ParseEmoji(tt.input)
			if err != nil {
				t.Fatalf("ParseEmoji(%q): %v", tt.input, err)
			}
			if e.ID != tt.id || e.Name != tt.name || e.Animated != tt.animated {
				t.Errorf("ParseEmoji(%q) = %+v, want id=%d name=%q animated=%v", tt.input, e, tt.id, tt.name, tt.animated)
			}
		})
	}
}

func TestParseEmojiInvalid(t *testing.T) {
	for _, input := range []string{"", "<:blobcat:>", "<:blobcat:123>", "name:notanid", "<a:b:c>"} {
		_, err := ParseEmoji(input)
		if !errors.Is(err, ErrInvalidEmoji) {
			t.Errorf("ParseEmoji(%q) error = %v, want ErrInvalidEmoji", input, err)
		}
	}
}

func TestEmojiForms(t *testing.T) {
	custom := Emoji{ID: 845315463528497182, Name: "blobcat"}
	animated := Emoji{ID: 845315463528497183, Name: "blobdance", Animated: true}
	unicode := Emoji{Name: "👍"}

	if got := custom.APIString(); got != "blobcat:845315463528497182" {
		t.Errorf("custom APIString = %q", got)
	}
	if got := unicode.APIString(); got != "%F0%9F%91%8D" {
		t.Errorf("unicode APIString = %q", got)
	}

	if got := custom.String(); got != "<:blobcat:845315463528497182>" {
		t.Errorf("custom String = %q", got)
	}
	if got := animated.String(); got != "<a:blobdance:845315463528497183>" {
		t.Errorf("animated String = %q", got)
	}
	if got := unicode.String(); got != "👍" {
		t.Errorf("unicode String = %q", got)
	}

	if got := animated.URL(); !strings.HasSuffix(got, "/emojis/845315463528497183.gif") {
		t.Errorf("animated URL = %q", got)
	}
	if got := unicode.URL(); got != "" {
		t.Errorf("unicode URL = %q, want empty", got)
	}

	renamed := custom
	renamed.Name = "blobcat2"
	if custom.Key() != renamed.Key() {
		t.Error("custom emoji key should not depend on the name")
	}
	if unicode.Key() != "👍" {
		t.Errorf("unicode Key = %q", unicode.Key())
	}
}

func TestEmojiJSON(t *testing.T) {
	var e Emoji
	if err := json.Unmarshal([]byte(`{"id":null,"name":"🔥"}`), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !e.IsUnicode() || e.Name != "🔥" {
		t.Errorf("unexpected emoji %+v", e)
	}

	b, err := json.Marshal(Emoji{Name: "🔥"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"id":null,"name":"🔥"}` {
		t.Errorf("Marshal = %s", b)
	}
}

func TestEmbedValidate(t *testing.T) {
	ok := Embed{Title: "hi", Description: strings.Repeat("a", MaxEmbedDescription)}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	tests := []struct {
		name  string
		embed Embed
	}{
		{"title", Embed{Title: strings.Repeat("a", MaxEmbedTitle+1)}},
		{"description", Embed{Description: strings.Repeat("a", MaxEmbedDescription+1)}},
		{"footer", Embed{Footer: &EmbedFooter{Text: strings.Repeat("a", MaxEmbedFooter+1)}}},
		{"field value", Embed{Fields: []EmbedField{{Name: "a", Value: strings.Repeat("a", MaxEmbedFieldValue+1)}}}},
		{"field count", Embed{Fields: make([]EmbedField, MaxEmbedFields+1)}},
		{"total", Embed{
			Description: strings.Repeat("a", MaxEmbedDescription),
			Fields: []EmbedField{
				{Name: "a", Value: strings.Repeat("b", 1000)},
				{Name: "a", Value: strings.Repeat("b", 1000)},
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.embed.Validate(); !errors.Is(err, ErrEmbedTooLong) {
				t.Errorf("Validate() = %v, want ErrEmbedTooLong", err)
			}
		})
	}
}

func TestEmbedLengthCountsRunes(t *testing.T) {
	e := Embed{Title: "日本語", Footer: &EmbedFooter{Text: "ö"}}
	if got := e.Length(); got != 4 {
		t.Errorf("Length() = %d, want 4", got)
	}
}
