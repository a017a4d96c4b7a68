package gateway

import (
	"sort"

	json "github.com/goccy/go-json"

	"github.com/georgemarshall/serenity/internal/decode"
	"github.com/georgemarshall/serenity/internal/model"
)

// EventType is the dispatch frame's type label. The set of known labels
// below is what this package decodes into concrete shapes; any other
// label is preserved verbatim and carried by UnknownEvent, never
// rejected.
type EventType string

const (
	EventTypeChannelCreate           EventType = "CHANNEL_CREATE"
	EventTypeChannelDelete           EventType = "CHANNEL_DELETE"
	EventTypeChannelPinsUpdate       EventType = "CHANNEL_PINS_UPDATE"
	EventTypeChannelRecipientAdd     EventType = "CHANNEL_RECIPIENT_ADD"
	EventTypeChannelRecipientRemove  EventType = "CHANNEL_RECIPIENT_REMOVE"
	EventTypeChannelUpdate           EventType = "CHANNEL_UPDATE"
	EventTypeGuildBanAdd             EventType = "GUILD_BAN_ADD"
	EventTypeGuildBanRemove          EventType = "GUILD_BAN_REMOVE"
	EventTypeGuildCreate             EventType = "GUILD_CREATE"
	EventTypeGuildDelete             EventType = "GUILD_DELETE"
	EventTypeGuildEmojisUpdate       EventType = "GUILD_EMOJIS_UPDATE"
	EventTypeGuildIntegrationsUpdate EventType = "GUILD_INTEGRATIONS_UPDATE"
	EventTypeGuildMemberAdd          EventType = "GUILD_MEMBER_ADD"
	EventTypeGuildMemberRemove       EventType = "GUILD_MEMBER_REMOVE"
	EventTypeGuildMemberUpdate       EventType = "GUILD_MEMBER_UPDATE"
	EventTypeGuildMembersChunk       EventType = "GUILD_MEMBERS_CHUNK"
	EventTypeGuildRoleCreate         EventType = "GUILD_ROLE_CREATE"
	EventTypeGuildRoleDelete         EventType = "GUILD_ROLE_DELETE"
	EventTypeGuildRoleUpdate         EventType = "GUILD_ROLE_UPDATE"
	EventTypeGuildUnavailable        EventType = "GUILD_UNAVAILABLE"
	EventTypeGuildUpdate             EventType = "GUILD_UPDATE"
	EventTypeMessageCreate           EventType = "MESSAGE_CREATE"
	EventTypeMessageDelete           EventType = "MESSAGE_DELETE"
	EventTypeMessageDeleteBulk       EventType = "MESSAGE_DELETE_BULK"
	EventTypeReactionAdd             EventType = "MESSAGE_REACTION_ADD"
	EventTypeReactionRemove          EventType = "MESSAGE_REACTION_REMOVE"
	EventTypeReactionRemoveAll       EventType = "MESSAGE_REACTION_REMOVE_ALL"
	EventTypeMessageUpdate           EventType = "MESSAGE_UPDATE"
	EventTypePresenceUpdate          EventType = "PRESENCE_UPDATE"
	EventTypePresencesReplace        EventType = "PRESENCES_REPLACE"
	EventTypeReady                   EventType = "READY"
	EventTypeResumed                 EventType = "RESUMED"
	EventTypeTypingStart             EventType = "TYPING_START"
	EventTypeUserUpdate              EventType = "USER_UPDATE"
	EventTypeVoiceServerUpdate       EventType = "VOICE_SERVER_UPDATE"
	EventTypeVoiceStateUpdate        EventType = "VOICE_STATE_UPDATE"
	EventTypeWebhookUpdate           EventType = "WEBHOOKS_UPDATE"
)

// Event is a decoded dispatch payload.
type Event interface {
	EventType() EventType
}

// ChannelCreateEvent fires when a channel of any kind is created. The
// wire payload is the channel itself.
type ChannelCreateEvent struct {
	Channel model.Channel
}

func (e *ChannelCreateEvent) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.Channel)
}

func (e *ChannelCreateEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(&e.Channel)
}

// ChannelDeleteEvent fires when a channel is deleted.
type ChannelDeleteEvent struct {
	Channel model.Channel
}

func (e *ChannelDeleteEvent) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.Channel)
}

func (e *ChannelDeleteEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(&e.Channel)
}

// ChannelUpdateEvent fires when a channel's settings change.
type ChannelUpdateEvent struct {
	Channel model.Channel
}

func (e *ChannelUpdateEvent) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.Channel)
}

func (e *ChannelUpdateEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(&e.Channel)
}

// ChannelPinsUpdateEvent fires when a channel's pin set changes.
type ChannelPinsUpdateEvent struct {
	ChannelID        model.ChannelID `json:"channel_id"`
	LastPinTimestamp *string         `json:"last_pin_timestamp"`
}

// ChannelRecipientAddEvent fires when a user is added to a group.
type ChannelRecipientAddEvent struct {
	ChannelID model.ChannelID `json:"channel_id"`
	User      *model.User     `json:"user"`
}

// ChannelRecipientRemoveEvent fires when a user leaves a group.
type ChannelRecipientRemoveEvent struct {
	ChannelID model.ChannelID `json:"channel_id"`
	User      *model.User     `json:"user"`
}

// GuildBanAddEvent fires when a user is banned from a guild.
type GuildBanAddEvent struct {
	GuildID model.GuildID `json:"guild_id"`
	User    *model.User   `json:"user"`
}

// GuildBanRemoveEvent fires when a user's ban is lifted.
type GuildBanRemoveEvent struct {
	GuildID model.GuildID `json:"guild_id"`
	User    *model.User   `json:"user"`
}

// GuildCreateEvent carries a full guild, either newly joined or coming
// back online after an outage.
type GuildCreateEvent struct {
	Guild *model.Guild
}

func (e *GuildCreateEvent) UnmarshalJSON(data []byte) error {
	e.Guild = new(model.Guild)
	return json.Unmarshal(data, e.Guild)
}

func (e *GuildCreateEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Guild)
}

// GuildDeleteEvent fires when the current user leaves a guild.
type GuildDeleteEvent struct {
	Guild model.PartialGuild
}

func (e *GuildDeleteEvent) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.Guild)
}

func (e *GuildDeleteEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(&e.Guild)
}

// GuildUnavailableEvent marks a guild as gone offline. It is produced
// by the unavailable-flag disambiguation, not by its own type label
// alone.
type GuildUnavailableEvent struct {
	GuildID model.GuildID `json:"id"`
}

// GuildUpdateEvent fires when a guild's settings change.
type GuildUpdateEvent struct {
	Guild model.PartialGuild
}

func (e *GuildUpdateEvent) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.Guild)
}

func (e *GuildUpdateEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(&e.Guild)
}

// GuildEmojisUpdateEvent replaces a guild's emoji set wholesale.
type GuildEmojisUpdateEvent struct {
	Emojis  model.EmojiMap `json:"emojis"`
	GuildID model.GuildID  `json:"guild_id"`
}

// GuildIntegrationsUpdateEvent fires when a guild integration changes.
type GuildIntegrationsUpdateEvent struct {
	GuildID model.GuildID `json:"guild_id"`
}

// GuildMemberAddEvent fires when a user joins a guild. The member's
// fields arrive flattened alongside guild_id.
type GuildMemberAddEvent struct {
	GuildID model.GuildID
	Member  model.Member
}

func (e *GuildMemberAddEvent) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &e.Member); err != nil {
		return err
	}
	e.GuildID = e.Member.GuildID
	return nil
}

func (e *GuildMemberAddEvent) MarshalJSON() ([]byte, error) {
	m := e.Member
	m.GuildID = e.GuildID
	return json.Marshal(m)
}

// GuildMemberRemoveEvent fires when a user leaves or is removed.
type GuildMemberRemoveEvent struct {
	GuildID model.GuildID `json:"guild_id"`
	User    *model.User   `json:"user"`
}

// GuildMemberUpdateEvent fires when a member's nickname, roles or user
// record change.
type GuildMemberUpdateEvent struct {
	GuildID model.GuildID  `json:"guild_id"`
	Nick    *string        `json:"nick"`
	Roles   []model.RoleID `json:"roles"`
	User    *model.User    `json:"user"`
}

// GuildMembersChunkEvent is one page of a bulk member request. Members
// are keyed by user id; elements that omitted guild_id inherit the
// chunk's.
type GuildMembersChunkEvent struct {
	GuildID model.GuildID
	Members map[model.UserID]model.Member
}

func (e *GuildMembersChunkEvent) MarshalJSON() ([]byte, error) {
	ids := make([]model.UserID, 0, len(e.Members))
	for id := range e.Members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	members := make([]model.Member, 0, len(ids))
	for _, id := range ids {
		members = append(members, e.Members[id])
	}
	return json.Marshal(struct {
		GuildID model.GuildID  `json:"guild_id"`
		Members []model.Member `json:"members"`
	}{e.GuildID, members})
}

// GuildRoleCreateEvent fires when a role is created.
type GuildRoleCreateEvent struct {
	GuildID model.GuildID `json:"guild_id"`
	Role    model.Role    `json:"role"`
}

// GuildRoleDeleteEvent fires when a role is deleted.
type GuildRoleDeleteEvent struct {
	GuildID model.GuildID `json:"guild_id"`
	RoleID  model.RoleID  `json:"role_id"`
}

// GuildRoleUpdateEvent fires when a role's settings change.
type GuildRoleUpdateEvent struct {
	GuildID model.GuildID `json:"guild_id"`
	Role    model.Role    `json:"role"`
}

// MessageCreateEvent carries a newly sent message.
type MessageCreateEvent struct {
	Message model.Message
}

func (e *MessageCreateEvent) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.Message)
}

func (e *MessageCreateEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(&e.Message)
}

// MessageDeleteEvent fires when a single message is deleted.
type MessageDeleteEvent struct {
	ChannelID model.ChannelID `json:"channel_id"`
	MessageID model.MessageID `json:"id"`
}

// MessageDeleteBulkEvent fires when several messages are deleted at
// once.
type MessageDeleteBulkEvent struct {
	ChannelID model.ChannelID   `json:"channel_id"`
	IDs       []model.MessageID `json:"ids"`
}

// MessageUpdateEvent is a partial message patch: only non-nil fields
// were present on the wire and overwrite the cached message.
type MessageUpdateEvent struct {
	ID              model.MessageID    `json:"id"`
	ChannelID       model.ChannelID    `json:"channel_id"`
	Kind            *model.MessageType `json:"type,omitempty"`
	Content         *string            `json:"content,omitempty"`
	Nonce           *string            `json:"nonce,omitempty"`
	TTS             *bool              `json:"tts,omitempty"`
	Pinned          *bool              `json:"pinned,omitempty"`
	Timestamp       *string            `json:"timestamp,omitempty"`
	EditedTimestamp *string            `json:"edited_timestamp,omitempty"`
	Author          *model.User        `json:"author,omitempty"`
	MentionEveryone *bool              `json:"mention_everyone,omitempty"`
	Mentions        []*model.User      `json:"mentions,omitempty"`
	MentionRoles    []model.RoleID     `json:"mention_roles,omitempty"`
	Attachments     []model.Attachment `json:"attachments,omitempty"`
	Embeds          []json.RawMessage  `json:"embeds,omitempty"`
}

// ReactionAddEvent fires when a reaction is added to a message. The
// payload is the reaction itself.
type ReactionAddEvent struct {
	Reaction model.Reaction
}

func (e *ReactionAddEvent) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.Reaction)
}

func (e *ReactionAddEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(&e.Reaction)
}

// ReactionRemoveEvent fires when a reaction is removed.
type ReactionRemoveEvent struct {
	Reaction model.Reaction
}

func (e *ReactionRemoveEvent) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.Reaction)
}

func (e *ReactionRemoveEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(&e.Reaction)
}

// ReactionRemoveAllEvent fires when every reaction is stripped from a
// message.
type ReactionRemoveAllEvent struct {
	ChannelID model.ChannelID `json:"channel_id"`
	MessageID model.MessageID `json:"message_id"`
}

// PresenceUpdateEvent fires when a user's status or activity changes.
// The presence's fields arrive flattened alongside guild_id and roles.
type PresenceUpdateEvent struct {
	GuildID  *model.GuildID
	Presence model.Presence
	Roles    []model.RoleID
}

func (e *PresenceUpdateEvent) UnmarshalJSON(data []byte) error {
	var aux struct {
		GuildID *model.GuildID `json:"guild_id"`
		Roles   []model.RoleID `json:"roles"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &e.Presence); err != nil {
		return err
	}
	e.GuildID = aux.GuildID
	e.Roles = aux.Roles
	return nil
}

func (e *PresenceUpdateEvent) MarshalJSON() ([]byte, error) {
	extra := map[string]interface{}{}
	if e.GuildID != nil {
		extra["guild_id"] = e.GuildID
	}
	if e.Roles != nil {
		extra["roles"] = e.Roles
	}
	return mergeTopLevel(&e.Presence, extra)
}

// PresencesReplaceEvent replaces the whole presence list. The payload
// is a bare array.
type PresencesReplaceEvent struct {
	Presences []model.Presence
}

func (e *PresencesReplaceEvent) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.Presences)
}

func (e *PresencesReplaceEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Presences)
}

// ReadyEvent is the post-identify full sync. The payload is the ready
// record itself.
type ReadyEvent struct {
	Ready model.Ready
}

func (e *ReadyEvent) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.Ready)
}

func (e *ReadyEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(&e.Ready)
}

// ResumedEvent acknowledges a successful session resume.
type ResumedEvent struct {
	Trace []*string `json:"_trace"`
}

// TypingStartEvent fires when a user starts typing in a channel.
type TypingStartEvent struct {
	ChannelID model.ChannelID `json:"channel_id"`
	Timestamp uint64          `json:"timestamp"`
	UserID    model.UserID    `json:"user_id"`
}

// UserUpdateEvent fires when the current user's record changes. The
// payload is the user itself.
type UserUpdateEvent struct {
	CurrentUser model.CurrentUser
}

func (e *UserUpdateEvent) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.CurrentUser)
}

func (e *UserUpdateEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(&e.CurrentUser)
}

// VoiceServerUpdateEvent points the client at a voice server.
type VoiceServerUpdateEvent struct {
	ChannelID *model.ChannelID `json:"channel_id"`
	Endpoint  *string          `json:"endpoint"`
	GuildID   *model.GuildID   `json:"guild_id"`
	Token     string           `json:"token"`
}

// VoiceStateUpdateEvent fires when a user's voice connection changes.
// The state's fields arrive flattened alongside guild_id.
type VoiceStateUpdateEvent struct {
	GuildID    *model.GuildID
	VoiceState model.VoiceState
}

func (e *VoiceStateUpdateEvent) UnmarshalJSON(data []byte) error {
	var aux struct {
		GuildID *model.GuildID `json:"guild_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &e.VoiceState); err != nil {
		return err
	}
	e.GuildID = aux.GuildID
	return nil
}

func (e *VoiceStateUpdateEvent) MarshalJSON() ([]byte, error) {
	extra := map[string]interface{}{}
	if e.GuildID != nil {
		extra["guild_id"] = e.GuildID
	}
	return mergeTopLevel(&e.VoiceState, extra)
}

// WebhookUpdateEvent fires when a channel's webhooks change.
type WebhookUpdateEvent struct {
	ChannelID model.ChannelID `json:"channel_id"`
	GuildID   model.GuildID   `json:"guild_id"`
}

// UnknownEvent preserves a dispatch frame whose type label is outside
// the known set, keeping both the label and the buffered payload.
type UnknownEvent struct {
	Kind  string
	Value decode.Content
}

func (e *UnknownEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Value)
}

// mergeTopLevel re-encodes a flattened record and splices the event's
// own keys in alongside it. Keys come back out in sorted order, which
// keeps the output stable.
func mergeTopLevel(inner interface{}, extra map[string]interface{}) ([]byte, error) {
	raw, err := json.Marshal(inner)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, v := range extra {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		fields[k] = b
	}
	return json.Marshal(fields)
}

func (*ChannelCreateEvent) EventType() EventType           { return EventTypeChannelCreate }
func (*ChannelDeleteEvent) EventType() EventType           { return EventTypeChannelDelete }
func (*ChannelPinsUpdateEvent) EventType() EventType       { return EventTypeChannelPinsUpdate }
func (*ChannelRecipientAddEvent) EventType() EventType     { return EventTypeChannelRecipientAdd }
func (*ChannelRecipientRemoveEvent) EventType() EventType  { return EventTypeChannelRecipientRemove }
func (*ChannelUpdateEvent) EventType() EventType           { return EventTypeChannelUpdate }
func (*GuildBanAddEvent) EventType() EventType             { return EventTypeGuildBanAdd }
func (*GuildBanRemoveEvent) EventType() EventType          { return EventTypeGuildBanRemove }
func (*GuildCreateEvent) EventType() EventType             { return EventTypeGuildCreate }
func (*GuildDeleteEvent) EventType() EventType             { return EventTypeGuildDelete }
func (*GuildEmojisUpdateEvent) EventType() EventType       { return EventTypeGuildEmojisUpdate }
func (*GuildIntegrationsUpdateEvent) EventType() EventType { return EventTypeGuildIntegrationsUpdate }
func (*GuildMemberAddEvent) EventType() EventType          { return EventTypeGuildMemberAdd }
func (*GuildMemberRemoveEvent) EventType() EventType       { return EventTypeGuildMemberRemove }
func (*GuildMemberUpdateEvent) EventType() EventType       { return EventTypeGuildMemberUpdate }
func (*GuildMembersChunkEvent) EventType() EventType       { return EventTypeGuildMembersChunk }
func (*GuildRoleCreateEvent) EventType() EventType         { return EventTypeGuildRoleCreate }
func (*GuildRoleDeleteEvent) EventType() EventType         { return EventTypeGuildRoleDelete }
func (*GuildRoleUpdateEvent) EventType() EventType         { return EventTypeGuildRoleUpdate }
func (*GuildUnavailableEvent) EventType() EventType        { return EventTypeGuildUnavailable }
func (*GuildUpdateEvent) EventType() EventType             { return EventTypeGuildUpdate }
func (*MessageCreateEvent) EventType() EventType           { return EventTypeMessageCreate }
func (*MessageDeleteEvent) EventType() EventType           { return EventTypeMessageDelete }
func (*MessageDeleteBulkEvent) EventType() EventType       { return EventTypeMessageDeleteBulk }
func (*MessageUpdateEvent) EventType() EventType           { return EventTypeMessageUpdate }
func (*PresenceUpdateEvent) EventType() EventType          { return EventTypePresenceUpdate }
func (*PresencesReplaceEvent) EventType() EventType        { return EventTypePresencesReplace }
func (*ReactionAddEvent) EventType() EventType             { return EventTypeReactionAdd }
func (*ReactionRemoveEvent) EventType() EventType          { return EventTypeReactionRemove }
func (*ReactionRemoveAllEvent) EventType() EventType       { return EventTypeReactionRemoveAll }
func (*ReadyEvent) EventType() EventType                   { return EventTypeReady }
func (*ResumedEvent) EventType() EventType                 { return EventTypeResumed }
func (*TypingStartEvent) EventType() EventType             { return EventTypeTypingStart }
func (*UserUpdateEvent) EventType() EventType              { return EventTypeUserUpdate }
func (*VoiceServerUpdateEvent) EventType() EventType       { return EventTypeVoiceServerUpdate }
func (*VoiceStateUpdateEvent) EventType() EventType        { return EventTypeVoiceStateUpdate }
func (*WebhookUpdateEvent) EventType() EventType           { return EventTypeWebhookUpdate }

func (e *UnknownEvent) EventType() EventType { return EventType(e.Kind) }
