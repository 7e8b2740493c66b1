package discord

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// SpoilerPrefix marks an attachment as a spoiler when prepended to its filename.
const SpoilerPrefix = "SPOILER_"

// Attachment is a file attached to a message.
type Attachment struct {
	ID          AttachmentID `json:"id"`
	Filename    string       `json:"filename"`
	Description string       `json:"description,omitempty"`
	ContentType string       `json:"content_type,omitempty"`
	Size        uint64       `json:"size"`
	URL         string       `json:"url"`
	ProxyURL    string       `json:"proxy_url"`

	// Height and Width are only set for images and videos.
	Height int `json:"height,omitempty"`
	Width  int `json:"width,omitempty"`

	Ephemeral bool `json:"ephemeral,omitempty"`

	// Voice message fields
	DurationSecs float64 `json:"duration_secs,omitempty"`
	Waveform     string  `json:"waveform,omitempty"`

	Flags AttachmentFlags `json:"flags,omitempty"`
}

type AttachmentFlags uint32

const (
	AttachmentIsRemix AttachmentFlags = 1 << 2
)

// IsImage returns true if the attachment's content type is an image type.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// IsSpoiler returns true if the attachment is marked as a spoiler.
func (a Attachment) IsSpoiler() bool {
	return strings.HasPrefix(a.Filename, SpoilerPrefix)
}

// File is a file to be uploaded as an attachment.
type File struct {
	Name        string
	Description string
	Spoiler     bool

	Reader io.Reader
}

// Filename returns the name the file is uploaded under.
func (f File) Filename() string {
	if f.Spoiler && !strings.HasPrefix(f.Name, SpoilerPrefix) {
		return SpoilerPrefix + f.Name
	}
	return f.Name
}

// PartialAttachment is the attachment metadata sent alongside uploaded files.
// ID is the index of the file in the multipart request, or the ID of an existing attachment to keep.
type PartialAttachment struct {
	ID          Snowflake `json:"id"`
	Filename    string    `json:"filename,omitempty"`
	Description string    `json:"description,omitempty"`
}

// MarshalJSON always writes the ID, as upload indices start at zero.
func (a PartialAttachment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string `json:"id"`
		Filename    string `json:"filename,omitempty"`
		Description string `json:"description,omitempty"`
	}{strconv.FormatUint(uint64(a.ID), 10), a.Filename, a.Description})
}
