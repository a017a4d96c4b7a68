package model

import (
	"sync"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Guild is the full guild record delivered by GUILD_CREATE and READY.
type Guild struct {
	Mu sync.RWMutex `json:"-"`

	AFKChannelID                *ChannelID    `json:"afk_channel_id"`
	AFKTimeout                  uint64        `json:"afk_timeout"`
	ApplicationID               *ApplicationID `json:"application_id"`
	Channels                    ChannelMap    `json:"channels"`
	DefaultMessageNotifications uint64        `json:"default_message_notifications"`
	Emojis                      EmojiMap      `json:"emojis"`
	Features                    []string      `json:"features"`
	Icon                        *string       `json:"icon"`
	ID                          GuildID       `json:"id"`
	JoinedAt                    *string       `json:"joined_at,omitempty"`
	Large                       bool          `json:"large"`
	MemberCount                 uint64        `json:"member_count"`
	Members                     MemberMap     `json:"members"`
	MFALevel                    uint64        `json:"mfa_level"`
	Name                        string        `json:"name"`
	OwnerID                     UserID        `json:"owner_id"`
	Presences                   PresenceMap   `json:"presences"`
	Region                      string        `json:"region"`
	Roles                       RoleMap       `json:"roles"`
	Splash                      *string       `json:"splash"`
	VerificationLevel           uint64        `json:"verification_level"`
	VoiceStates                 VoiceStateMap `json:"voice_states"`
}

// PartialGuild is the reduced guild record carried by GUILD_UPDATE and
// GUILD_DELETE payloads.
type PartialGuild struct {
	AFKChannelID                *ChannelID    `json:"afk_channel_id"`
	AFKTimeout                  uint64        `json:"afk_timeout"`
	DefaultMessageNotifications uint64        `json:"default_message_notifications"`
	Emojis                      EmojiMap      `json:"emojis,omitempty"`
	Features                    []string      `json:"features,omitempty"`
	Icon                        *string       `json:"icon"`
	ID                          GuildID       `json:"id"`
	MFALevel                    uint64        `json:"mfa_level"`
	Name                        string        `json:"name"`
	OwnerID                     UserID        `json:"owner_id"`
	Region                      string        `json:"region"`
	Roles                       RoleMap       `json:"roles,omitempty"`
	Splash                      *string       `json:"splash"`
	VerificationLevel           uint64        `json:"verification_level"`
}

// UnavailableGuild marks a guild the gateway cannot currently serve.
type UnavailableGuild struct {
	ID          GuildID `json:"id"`
	Unavailable bool    `json:"unavailable"`
}

// GuildStatus is one entry of READY's guild list: either a full online
// guild or an offline placeholder. The wire disambiguates through the
// `unavailable` flag.
type GuildStatus struct {
	Offline *UnavailableGuild
	Online  *Guild
}

func (g *GuildStatus) UnmarshalJSON(data []byte) error {
	if gjson.GetBytes(data, "unavailable").Bool() {
		off := new(UnavailableGuild)
		if err := json.Unmarshal(data, off); err != nil {
			return err
		}
		*g = GuildStatus{Offline: off}
		return nil
	}
	on := new(Guild)
	if err := json.Unmarshal(data, on); err != nil {
		return err
	}
	*g = GuildStatus{Online: on}
	return nil
}

func (g GuildStatus) MarshalJSON() ([]byte, error) {
	if g.Offline != nil {
		return json.Marshal(g.Offline)
	}
	return json.Marshal(g.Online)
}

// Ready is the initial sync payload sent after identifying.
type Ready struct {
	Guilds          []GuildStatus     `json:"guilds"`
	Presences       PresenceMap       `json:"presences,omitempty"`
	PrivateChannels []*PrivateChannel `json:"private_channels,omitempty"`
	SessionID       string            `json:"session_id"`
	Shard           *[2]uint64        `json:"shard,omitempty"`
	Trace           []string          `json:"_trace,omitempty"`
	User            CurrentUser       `json:"user"`
	Version         uint64            `json:"v"`
}
