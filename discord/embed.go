package discord

import (
	"fmt"
	"unicode/utf8"

	"emperror.dev/errors"
)

// Embed limits
const (
	MaxEmbedTitle       = 256
	MaxEmbedDescription = 4096
	MaxEmbedFields      = 25
	MaxEmbedFieldName   = 256
	MaxEmbedFieldValue  = 1024
	MaxEmbedFooter      = 2048
	MaxEmbedAuthor      = 256
	MaxEmbedLength      = 6000
)

// ErrEmbedTooLong is returned when an embed exceeds one of Discord's length limits.
const ErrEmbedTooLong = errors.Sentinel("embed exceeds length limit")

type Color uint32

const DefaultEmbedColor Color = 0x303136

type Embed struct {
	Title       string     `json:"title,omitempty"`
	Type        string     `json:"type,omitempty"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url,omitempty"`
	Timestamp   *Timestamp `json:"timestamp,omitempty"`
	Color       Color      `json:"color,omitempty"`

	Footer    *EmbedFooter    `json:"footer,omitempty"`
	Image     *EmbedImage     `json:"image,omitempty"`
	Thumbnail *EmbedThumbnail `json:"thumbnail,omitempty"`
	Video     *EmbedVideo     `json:"video,omitempty"`
	Provider  *EmbedProvider  `json:"provider,omitempty"`
	Author    *EmbedAuthor    `json:"author,omitempty"`
	Fields    []EmbedField    `json:"fields,omitempty"`
}

type EmbedFooter struct {
	Text         string `json:"text"`
	Icon         string `json:"icon_url,omitempty"`
	ProxyIconURL string `json:"proxy_icon_url,omitempty"`
}

type EmbedImage struct {
	URL      string `json:"url"`
	ProxyURL string `json:"proxy_url,omitempty"`
	Height   uint   `json:"height,omitempty"`
	Width    uint   `json:"width,omitempty"`
}

type EmbedThumbnail struct {
	URL      string `json:"url,omitempty"`
	ProxyURL string `json:"proxy_url,omitempty"`
	Height   uint   `json:"height,omitempty"`
	Width    uint   `json:"width,omitempty"`
}

type EmbedVideo struct {
	URL    string `json:"url,omitempty"`
	Height uint   `json:"height,omitempty"`
	Width  uint   `json:"width,omitempty"`
}

type EmbedProvider struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

type EmbedAuthor struct {
	Name         string `json:"name,omitempty"`
	URL          string `json:"url,omitempty"`
	Icon         string `json:"icon_url,omitempty"`
	ProxyIconURL string `json:"proxy_icon_url,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Length returns the number of characters Discord counts towards the total embed limit.
func (e Embed) Length() int {
	l := utf8.RuneCountInString(e.Title) + utf8.RuneCountInString(e.Description)

	if e.Footer != nil {
		l += utf8.RuneCountInString(e.Footer.Text)
	}
	if e.Author != nil {
		l += utf8.RuneCountInString(e.Author.Name)
	}

	for _, f := range e.Fields {
		l += utf8.RuneCountInString(f.Name) + utf8.RuneCountInString(f.Value)
	}
	return l
}

// Validate checks the embed against Discord's limits.
func (e Embed) Validate() error {
	if n := utf8.RuneCountInString(e.Title); n > MaxEmbedTitle {
		return tooLong("title", n, MaxEmbedTitle)
	}
	if n := utf8.RuneCountInString(e.Description); n > MaxEmbedDescription {
		return tooLong("description", n, MaxEmbedDescription)
	}
	if e.Footer != nil {
		if n := utf8.RuneCountInString(e.Footer.Text); n > MaxEmbedFooter {
			return tooLong("footer", n, MaxEmbedFooter)
		}
	}
	if e.Author != nil {
		if n := utf8.RuneCountInString(e.Author.Name); n > MaxEmbedAuthor {
			return tooLong("author name", n, MaxEmbedAuthor)
		}
	}

	if len(e.Fields) > MaxEmbedFields {
		return errors.WithMessagef(ErrEmbedTooLong, "embed has %d fields, max %d", len(e.Fields), MaxEmbedFields)
	}
	for i, f := range e.Fields {
		if n := utf8.RuneCountInString(f.Name); n > MaxEmbedFieldName {
			return tooLong(fmt.Sprintf("field %d name", i), n, MaxEmbedFieldName)
		}
		if n := utf8.RuneCountInString(f.Value); n > MaxEmbedFieldValue {
			return tooLong(fmt.Sprintf("field %d value", i), n, MaxEmbedFieldValue)
		}
	}

	if n := e.Length(); n > MaxEmbedLength {
		return tooLong("embed", n, MaxEmbedLength)
	}
	return nil
}

func tooLong(what string, n, max int) error {
	return errors.WithMessagef(ErrEmbedTooLong, "%v is %d characters, max %d", what, n, max)
}
