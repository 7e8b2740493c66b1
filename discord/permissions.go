package discord

import (
	"bytes"
	"strconv"

	"emperror.dev/errors"
)

// Permissions is a permission bitfield.
// Discord sends these as strings, as the high bits no longer fit in a float64.
type Permissions uint64

const (
	PermissionCreateInstantInvite Permissions = 1 << iota
	PermissionKickMembers
	PermissionBanMembers
	PermissionAdministrator
	PermissionManageChannels
	PermissionManageGuild
	PermissionAddReactions
	PermissionViewAuditLog
	PermissionPrioritySpeaker
	PermissionStream
	PermissionViewChannel
	PermissionSendMessages
	PermissionSendTTSMessages
	PermissionManageMessages
	PermissionEmbedLinks
	PermissionAttachFiles
	PermissionReadMessageHistory
	PermissionMentionEveryone
	PermissionUseExternalEmojis
	PermissionViewGuildInsights
	PermissionConnect
	PermissionSpeak
	PermissionMuteMembers
	PermissionDeafenMembers
	PermissionMoveMembers
	PermissionUseVAD
	PermissionChangeNickname
	PermissionManageNicknames
	PermissionManageRoles
	PermissionManageWebhooks
	PermissionManageEmojisAndStickers
	PermissionUseApplicationCommands
	PermissionRequestToSpeak
	PermissionManageEvents
	PermissionManageThreads
	PermissionCreatePublicThreads
	PermissionCreatePrivateThreads
	PermissionUseExternalStickers
	PermissionSendMessagesInThreads
	PermissionUseEmbeddedActivities
	PermissionModerateMembers

	PermissionAll = PermissionModerateMembers<<1 - 1
)

// Has returns true if p contains every bit in other. Administrator implies everything.
func (p Permissions) Has(other Permissions) bool {
	if p&PermissionAdministrator == PermissionAdministrator {
		return true
	}
	return p&other == other
}

// Add returns p with the bits in other set.
func (p Permissions) Add(other Permissions) Permissions {
	return p | other
}

func (p Permissions) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

func (p Permissions) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

func (p *Permissions) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*p = 0
		return nil
	}

	u, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parsing permissions %q", string(b))
	}

	*p = Permissions(u)
	return nil
}
