package discord

import (
	"encoding/json"

	"emperror.dev/errors"
)

// ComponentType is the type of a message component.
type ComponentType uint8

const (
	ActionRowComponentType ComponentType = iota + 1
	ButtonComponentType
	StringSelectComponentType
	TextInputComponentType
	UserSelectComponentType
	RoleSelectComponentType
	MentionableSelectComponentType
	ChannelSelectComponentType
)

// MaxActionRows is the maximum number of action rows in a single message.
const MaxActionRows = 5

// Component is a message component.
type Component interface {
	Type() ComponentType
}

// Components is a list of components that is decoded based on each component's type.
type Components []Component

// ActionRow holds up to five buttons, or a single select menu or text input.
type ActionRow struct {
	Components Components `json:"components"`
}

func (ActionRow) Type() ComponentType { return ActionRowComponentType }

func (r ActionRow) MarshalJSON() ([]byte, error) {
	type raw ActionRow
	return json.Marshal(struct {
		Type ComponentType `json:"type"`
		raw
	}{r.Type(), raw(r)})
}

type ButtonStyle uint8

const (
	PrimaryButton ButtonStyle = iota + 1
	SecondaryButton
	SuccessButton
	DangerButton
	LinkButton
)

type Button struct {
	Style    ButtonStyle `json:"style"`
	Label    string      `json:"label,omitempty"`
	Emoji    *Emoji      `json:"emoji,omitempty"`
	CustomID string      `json:"custom_id,omitempty"`
	URL      string      `json:"url,omitempty"`
	Disabled bool        `json:"disabled,omitempty"`
}

func (Button) Type() ComponentType { return ButtonComponentType }

func (b Button) MarshalJSON() ([]byte, error) {
	type raw Button
	return json.Marshal(struct {
		Type ComponentType `json:"type"`
		raw
	}{b.Type(), raw(b)})
}

type SelectOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Emoji       *Emoji `json:"emoji,omitempty"`
	Default     bool   `json:"default,omitempty"`
}

// SelectMenu is any of the select menu types. ComponentType picks which one.
type SelectMenu struct {
	ComponentType ComponentType  `json:"-"`
	CustomID      string         `json:"custom_id"`
	Options       []SelectOption `json:"options,omitempty"`
	ChannelTypes  []ChannelType  `json:"channel_types,omitempty"`
	Placeholder   string         `json:"placeholder,omitempty"`
	MinValues     *int           `json:"min_values,omitempty"`
	MaxValues     int            `json:"max_values,omitempty"`
	Disabled      bool           `json:"disabled,omitempty"`
}

func (s SelectMenu) Type() ComponentType {
	if s.ComponentType == 0 {
		return StringSelectComponentType
	}
	return s.ComponentType
}

func (s SelectMenu) MarshalJSON() ([]byte, error) {
	type raw SelectMenu
	return json.Marshal(struct {
		Type ComponentType `json:"type"`
		raw
	}{s.Type(), raw(s)})
}

type TextInputStyle uint8

const (
	ShortTextInput TextInputStyle = iota + 1
	ParagraphTextInput
)

type TextInput struct {
	CustomID    string         `json:"custom_id"`
	Style       TextInputStyle `json:"style,omitempty"`
	Label       string         `json:"label,omitempty"`
	MinLength   int            `json:"min_length,omitempty"`
	MaxLength   int            `json:"max_length,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Value       string         `json:"value,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
}

func (TextInput) Type() ComponentType { return TextInputComponentType }

func (t TextInput) MarshalJSON() ([]byte, error) {
	type raw TextInput
	return json.Marshal(struct {
		Type ComponentType `json:"type"`
		raw
	}{t.Type(), raw(t)})
}

// UnknownComponent is a component of a type this package doesn't know about.
// The raw JSON is kept so it can be sent back unchanged.
type UnknownComponent struct {
	ComponentType ComponentType
	Raw           json.RawMessage
}

func (u UnknownComponent) Type() ComponentType { return u.ComponentType }

func (u UnknownComponent) MarshalJSON() ([]byte, error) {
	return u.Raw, nil
}

func (c *Components) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}

	*c = make(Components, 0, len(raws))
	for _, raw := range raws {
		comp, err := ParseComponent(raw)
		if err != nil {
			return err
		}
		*c = append(*c, comp)
	}
	return nil
}

// ParseComponent parses a single component from its JSON form.
func ParseComponent(b []byte) (Component, error) {
	var head struct {
		Type ComponentType `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, errors.Wrap(err, "reading component type")
	}

	var (
		comp Component
		err  error
	)

	switch head.Type {
	case ActionRowComponentType:
		var r ActionRow
		err = json.Unmarshal(b, &r)
		comp = r
	case ButtonComponentType:
		var btn Button
		err = json.Unmarshal(b, &btn)
		comp = btn
	case StringSelectComponentType, UserSelectComponentType, RoleSelectComponentType,
		MentionableSelectComponentType, ChannelSelectComponentType:
		var s SelectMenu
		err = json.Unmarshal(b, &s)
		s.ComponentType = head.Type
		comp = s
	case TextInputComponentType:
		var t TextInput
		err = json.Unmarshal(b, &t)
		comp = t
	default:
		comp = UnknownComponent{ComponentType: head.Type, Raw: append(json.RawMessage(nil), b...)}
	}

	if err != nil {
		return nil, errors.Wrapf(err, "unmarshaling component of type %d", head.Type)
	}
	return comp, nil
}
