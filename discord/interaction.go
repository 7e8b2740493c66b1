package discord

import (
	"bytes"
	"encoding/json"
	"strconv"

	"emperror.dev/errors"
)

type InteractionType uint8

const (
	PingInteraction InteractionType = iota + 1
	CommandInteraction
	ComponentInteraction
	AutocompleteInteraction
	ModalInteraction
)

// Interaction is an interaction received from Discord, either over HTTP or the gateway.
type Interaction struct {
	ID      InteractionID   `json:"id"`
	AppID   AppID           `json:"application_id"`
	Type    InteractionType `json:"type"`
	Data    InteractionData `json:"-"`
	GuildID GuildID         `json:"guild_id,omitempty"`

	ChannelID ChannelID `json:"channel_id,omitempty"`
	Channel   *Channel  `json:"channel,omitempty"`

	// Member is set in guilds, User in DMs.
	Member *Member `json:"member,omitempty"`
	User   *User   `json:"user,omitempty"`

	Token   string   `json:"token"`
	Version int      `json:"version"`
	Message *Message `json:"message,omitempty"`

	AppPermissions Permissions `json:"app_permissions,omitempty"`
	Locale         string      `json:"locale,omitempty"`
	GuildLocale    string      `json:"guild_locale,omitempty"`
}

// InteractionData is one of *CommandInteractionData, *ComponentInteractionData, or *ModalInteractionData.
type InteractionData interface {
	InteractionType() InteractionType
}

// Sender returns the user who created the interaction.
func (i Interaction) Sender() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// CommandData returns the interaction's command data, if it's a command or autocomplete interaction.
func (i Interaction) CommandData() (*CommandInteractionData, bool) {
	d, ok := i.Data.(*CommandInteractionData)
	return d, ok
}

// ComponentData returns the interaction's component data, if it's a component interaction.
func (i Interaction) ComponentData() (*ComponentInteractionData, bool) {
	d, ok := i.Data.(*ComponentInteractionData)
	return d, ok
}

// ModalData returns the interaction's modal data, if it's a modal submission.
func (i Interaction) ModalData() (*ModalInteractionData, bool) {
	d, ok := i.Data.(*ModalInteractionData)
	return d, ok
}

func (i Interaction) MarshalJSON() ([]byte, error) {
	type raw Interaction
	return json.Marshal(struct {
		raw
		Data InteractionData `json:"data,omitempty"`
	}{raw(i), i.Data})
}

func (i *Interaction) UnmarshalJSON(b []byte) error {
	type raw Interaction
	v := struct {
		*raw
		Data json.RawMessage `json:"data,omitempty"`
	}{raw: (*raw)(i)}

	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	if len(v.Data) == 0 || bytes.Equal(v.Data, []byte("null")) {
		i.Data = nil
		return nil
	}

	switch i.Type {
	case CommandInteraction, AutocompleteInteraction:
		i.Data = &CommandInteractionData{}
	case ComponentInteraction:
		i.Data = &ComponentInteractionData{}
	case ModalInteraction:
		i.Data = &ModalInteractionData{}
	default:
		i.Data = nil
		return nil
	}

	return errors.Wrapf(json.Unmarshal(v.Data, i.Data), "unmarshaling data for interaction type %d", i.Type)
}

// CommandInteractionData is the data for application command and autocomplete interactions.
type CommandInteractionData struct {
	ID       CommandID           `json:"id"`
	Name     string              `json:"name"`
	Type     CommandType         `json:"type"`
	Resolved *ResolvedData       `json:"resolved,omitempty"`
	Options  []InteractionOption `json:"options,omitempty"`
	GuildID  GuildID             `json:"guild_id,omitempty"`
	TargetID Snowflake           `json:"target_id,omitempty"`
}

func (*CommandInteractionData) InteractionType() InteractionType { return CommandInteraction }

// Leaf returns the options of the invoked subcommand, following subcommand groups and subcommands,
// along with the full invoked name ("group sub").
func (d CommandInteractionData) Leaf() (name string, opts []InteractionOption) {
	name = d.Name
	opts = d.Options
	for len(opts) == 1 && (opts[0].Type == SubcommandOptionType || opts[0].Type == SubcommandGroupOptionType) {
		name += " " + opts[0].Name
		opts = opts[0].Options
	}
	return name, opts
}

// Option returns the option with the given name from the invoked subcommand.
func (d CommandInteractionData) Option(name string) (InteractionOption, bool) {
	_, opts := d.Leaf()
	for _, o := range opts {
		if o.Name == name {
			return o, true
		}
	}
	return InteractionOption{}, false
}

// Focused returns the focused option in an autocomplete interaction.
func (d CommandInteractionData) Focused() (InteractionOption, bool) {
	_, opts := d.Leaf()
	for _, o := range opts {
		if o.Focused {
			return o, true
		}
	}
	return InteractionOption{}, false
}

// ResolvedData holds the full objects for any users, members, roles, channels, messages,
// or attachments referenced in the interaction.
type ResolvedData struct {
	Users       map[UserID]User             `json:"users,omitempty"`
	Members     map[UserID]Member           `json:"members,omitempty"`
	Channels    map[ChannelID]Channel       `json:"channels,omitempty"`
	Messages    map[MessageID]Message       `json:"messages,omitempty"`
	Attachments map[AttachmentID]Attachment `json:"attachments,omitempty"`
}

// InteractionOption is an option passed to a command.
// Value is kept as raw JSON and read with the typed accessors.
type InteractionOption struct {
	Name    string              `json:"name"`
	Type    CommandOptionType   `json:"type"`
	Value   json.RawMessage     `json:"value,omitempty"`
	Options []InteractionOption `json:"options,omitempty"`
	Focused bool                `json:"focused,omitempty"`
}

// String returns the option's value as a string.
func (o InteractionOption) String() (string, error) {
	var s string
	err := json.Unmarshal(o.Value, &s)
	return s, errors.Wrapf(err, "option %q is not a string", o.Name)
}

// Int returns the option's value as an integer.
func (o InteractionOption) Int() (int64, error) {
	// autocomplete interactions can send partial values as strings
	b := bytes.Trim(o.Value, `"`)
	i, err := strconv.ParseInt(string(b), 10, 64)
	return i, errors.Wrapf(err, "option %q is not an integer", o.Name)
}

// Float returns the option's value as a float.
func (o InteractionOption) Float() (float64, error) {
	b := bytes.Trim(o.Value, `"`)
	f, err := strconv.ParseFloat(string(b), 64)
	return f, errors.Wrapf(err, "option %q is not a number", o.Name)
}

// Bool returns the option's value as a boolean.
func (o InteractionOption) Bool() (bool, error) {
	var v bool
	err := json.Unmarshal(o.Value, &v)
	return v, errors.Wrapf(err, "option %q is not a boolean", o.Name)
}

// Snowflake returns the option's value as a snowflake. Discord sends these as strings.
func (o InteractionOption) Snowflake() (Snowflake, error) {
	var s Snowflake
	err := s.UnmarshalJSON(o.Value)
	return s, errors.Wrapf(err, "option %q is not a snowflake", o.Name)
}

// ComponentInteractionData is the data for a button press or select menu choice.
type ComponentInteractionData struct {
	CustomID      string        `json:"custom_id"`
	ComponentType ComponentType `json:"component_type"`
	Values        []string      `json:"values,omitempty"`
	Resolved      *ResolvedData `json:"resolved,omitempty"`
}

func (*ComponentInteractionData) InteractionType() InteractionType { return ComponentInteraction }

// ModalInteractionData is the data for a modal submission.
type ModalInteractionData struct {
	CustomID   string     `json:"custom_id"`
	Components Components `json:"components"`
}

func (*ModalInteractionData) InteractionType() InteractionType { return ModalInteraction }

// Value returns the value of the text input with the given custom ID.
func (d ModalInteractionData) Value(customID string) (string, bool) {
	for _, c := range d.Components {
		row, ok := c.(ActionRow)
		if !ok {
			continue
		}
		for _, c := range row.Components {
			if t, ok := c.(TextInput); ok && t.CustomID == customID {
				return t.Value, true
			}
		}
	}
	return "", false
}

type InteractionResponseType uint8

const (
	PongInteractionResponse              InteractionResponseType = 1
	MessageInteractionWithSource         InteractionResponseType = 4
	DeferredMessageInteractionWithSource InteractionResponseType = 5
	DeferredMessageUpdate                InteractionResponseType = 6
	UpdateMessage                        InteractionResponseType = 7
	AutocompleteResult                   InteractionResponseType = 8
	ModalResponse                        InteractionResponseType = 9
)

// InteractionResponse is the initial response to an interaction.
type InteractionResponse struct {
	Type InteractionResponseType  `json:"type"`
	Data *InteractionResponseData `json:"data,omitempty"`
}

// InteractionResponseData is the data for an interaction response.
// Which fields are valid depends on the response type.
type InteractionResponseData struct {
	TTS             bool                `json:"tts,omitempty"`
	Content         *string             `json:"content,omitempty"`
	Embeds          *[]Embed            `json:"embeds,omitempty"`
	Components      *Components         `json:"components,omitempty"`
	AllowedMentions *AllowedMentions    `json:"allowed_mentions,omitempty"`
	Flags           MessageFlags        `json:"flags,omitempty"`
	Attachments     []PartialAttachment `json:"attachments,omitempty"`

	// Autocomplete
	Choices []CommandOptionChoice `json:"choices,omitempty"`

	// Modal
	CustomID string `json:"custom_id,omitempty"`
	Title    string `json:"title,omitempty"`

	Files []File `json:"-"`
}

type CommandType uint8

const (
	ChatInputCommand CommandType = iota + 1
	UserCommand
	MessageCommand
)

type CommandOptionType uint8

const (
	SubcommandOptionType CommandOptionType = iota + 1
	SubcommandGroupOptionType
	StringOptionType
	IntegerOptionType
	BooleanOptionType
	UserOptionType
	ChannelOptionType
	RoleOptionType
	MentionableOptionType
	NumberOptionType
	AttachmentOptionType
)

// Command is an application command, as registered with Discord.
type Command struct {
	ID          CommandID       `json:"id,omitempty"`
	Type        CommandType     `json:"type,omitempty"`
	AppID       AppID           `json:"application_id,omitempty"`
	GuildID     GuildID         `json:"guild_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Options     []CommandOption `json:"options,omitempty"`

	DefaultMemberPermissions *Permissions `json:"default_member_permissions,omitempty"`
	DMPermission             *bool        `json:"dm_permission,omitempty"`
	NSFW                     bool         `json:"nsfw,omitempty"`
	Version                  Snowflake    `json:"version,omitempty"`
}

// CommandOption is an option or subcommand of an application command.
type CommandOption struct {
	Type         CommandOptionType     `json:"type"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Required     bool                  `json:"required,omitempty"`
	Choices      []CommandOptionChoice `json:"choices,omitempty"`
	Options      []CommandOption       `json:"options,omitempty"`
	ChannelTypes []ChannelType         `json:"channel_types,omitempty"`
	MinValue     *float64              `json:"min_value,omitempty"`
	MaxValue     *float64              `json:"max_value,omitempty"`
	MinLength    *int                  `json:"min_length,omitempty"`
	MaxLength    *int                  `json:"max_length,omitempty"`
	Autocomplete bool                  `json:"autocomplete,omitempty"`
}

// CommandOptionChoice is a choice for a string, integer, or number option.
// Value must be a string, an integer, or a float.
type CommandOptionChoice struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}
