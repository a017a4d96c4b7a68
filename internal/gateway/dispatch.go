package gateway

import (
	"fmt"

	"github.com/georgemarshall/serenity/internal/decode"
	"github.com/georgemarshall/serenity/internal/model"
)

// DecodeEvent resolves a type label to its concrete event shape and
// re-decodes the buffered payload into it. Labels outside the known set
// fall through to UnknownEvent; they are never an error.
func DecodeEvent(t EventType, payload decode.Content) (Event, error) {
	switch t {
	case EventTypeChannelCreate:
		ev := new(ChannelCreateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeChannelDelete:
		ev := new(ChannelDeleteEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeChannelPinsUpdate:
		ev := new(ChannelPinsUpdateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeChannelRecipientAdd:
		ev := new(ChannelRecipientAddEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeChannelRecipientRemove:
		ev := new(ChannelRecipientRemoveEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeChannelUpdate:
		ev := new(ChannelUpdateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeGuildBanAdd:
		ev := new(GuildBanAddEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeGuildBanRemove:
		ev := new(GuildBanRemoveEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeGuildCreate, EventTypeGuildUnavailable:
		return decodeGuildCreate(t, payload)
	case EventTypeGuildDelete:
		return decodeGuildDelete(payload)
	case EventTypeGuildEmojisUpdate:
		ev := new(GuildEmojisUpdateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeGuildIntegrationsUpdate:
		ev := new(GuildIntegrationsUpdateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeGuildMemberAdd:
		ev := new(GuildMemberAddEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeGuildMemberRemove:
		ev := new(GuildMemberRemoveEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeGuildMemberUpdate:
		ev := new(GuildMemberUpdateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeGuildMembersChunk:
		return decodeGuildMembersChunk(payload)
	case EventTypeGuildRoleCreate:
		ev := new(GuildRoleCreateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeGuildRoleDelete:
		ev := new(GuildRoleDeleteEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeGuildRoleUpdate:
		ev := new(GuildRoleUpdateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeGuildUpdate:
		ev := new(GuildUpdateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeMessageCreate:
		ev := new(MessageCreateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeMessageDelete:
		ev := new(MessageDeleteEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeMessageDeleteBulk:
		ev := new(MessageDeleteBulkEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeMessageUpdate:
		ev := new(MessageUpdateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypePresenceUpdate:
		ev := new(PresenceUpdateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypePresencesReplace:
		ev := new(PresencesReplaceEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeReactionAdd:
		ev := new(ReactionAddEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeReactionRemove:
		ev := new(ReactionRemoveEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeReactionRemoveAll:
		ev := new(ReactionRemoveAllEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeReady:
		ev := new(ReadyEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeResumed:
		ev := new(ResumedEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeTypingStart:
		ev := new(TypingStartEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeUserUpdate:
		ev := new(UserUpdateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeVoiceServerUpdate:
		ev := new(VoiceServerUpdateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeVoiceStateUpdate:
		ev := new(VoiceStateUpdateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	case EventTypeWebhookUpdate:
		ev := new(WebhookUpdateEvent)
		return ev, unmarshalEvent(t, payload, ev)
	}
	return &UnknownEvent{Kind: string(t), Value: payload}, nil
}

func unmarshalEvent(t EventType, payload decode.Content, target interface{}) error {
	if err := payload.Unmarshal(target); err != nil {
		return fmt.Errorf("gateway: decoding %s: %w", t, err)
	}
	return nil
}

// decodeGuildCreate handles the GUILD_CREATE / GUILD_UNAVAILABLE pair.
// The type label alone does not pick the shape: a payload carrying
// unavailable=true decodes to the unavailable-guild form regardless of
// label; anything else is a full guild.
func decodeGuildCreate(t EventType, payload decode.Content) (Event, error) {
	scanned, err := decode.ScanOptionallyTagged(payload, "unavailable")
	if err != nil {
		return nil, fmt.Errorf("gateway: decoding %s: %w", t, err)
	}
	if tagIsTrue(scanned.Tag) {
		ev := new(GuildUnavailableEvent)
		return ev, unmarshalEvent(t, scanned.Content, ev)
	}
	ev := new(GuildCreateEvent)
	return ev, unmarshalEvent(t, scanned.Content, ev)
}

// decodeGuildDelete disambiguates the same way: unavailable=true means
// the guild went offline, not that the user left it.
func decodeGuildDelete(payload decode.Content) (Event, error) {
	scanned, err := decode.ScanOptionallyTagged(payload, "unavailable")
	if err != nil {
		return nil, fmt.Errorf("gateway: decoding %s: %w", EventTypeGuildDelete, err)
	}
	if tagIsTrue(scanned.Tag) {
		ev := new(GuildUnavailableEvent)
		return ev, unmarshalEvent(EventTypeGuildDelete, scanned.Content, ev)
	}
	ev := new(GuildDeleteEvent)
	return ev, unmarshalEvent(EventTypeGuildDelete, scanned.Content, ev)
}

func tagIsTrue(tag *decode.Content) bool {
	if tag == nil {
		return false
	}
	b, ok := tag.AsBool()
	return ok && b
}

// decodeGuildMembersChunk decodes the bulk member payload in two
// stages: the outer record first, then each buffered member element
// seeded with the chunk's guild id, since elements may omit their own.
func decodeGuildMembersChunk(payload decode.Content) (Event, error) {
	if payload.Kind() != decode.KindMap {
		return nil, fmt.Errorf("gateway: decoding %s: expected object payload", EventTypeGuildMembersChunk)
	}

	var (
		guildID     model.GuildID
		members     *decode.Content
		seenGuildID bool
	)
	for _, p := range payload.Pairs() {
		key, ok := p.Key.AsString()
		if !ok {
			return nil, fmt.Errorf("gateway: decoding %s: non-textual key", EventTypeGuildMembersChunk)
		}
		switch key {
		case "guild_id":
			if seenGuildID {
				return nil, &decode.DuplicateFieldError{Field: "guild_id"}
			}
			seenGuildID = true
			if err := p.Value.Unmarshal(&guildID); err != nil {
				return nil, fmt.Errorf("gateway: decoding %s: guild_id: %w", EventTypeGuildMembersChunk, err)
			}
		case "members":
			if members != nil {
				return nil, &decode.DuplicateFieldError{Field: "members"}
			}
			v := p.Value
			members = &v
		case "not_found":
			// user ids the request could not resolve; nothing to keep
		default:
			return nil, &UnknownFieldError{Field: key}
		}
	}
	if !seenGuildID {
		return nil, &decode.MissingFieldError{Field: "guild_id"}
	}
	if members == nil {
		return nil, &decode.MissingFieldError{Field: "members"}
	}
	if members.Kind() != decode.KindSeq {
		return nil, fmt.Errorf("gateway: decoding %s: members must be a sequence", EventTypeGuildMembersChunk)
	}

	elems := members.Elems()
	out := make(map[model.UserID]model.Member, decode.Cautious(len(elems)))
	for _, el := range elems {
		var m model.Member
		if err := el.Unmarshal(&m); err != nil {
			return nil, fmt.Errorf("gateway: decoding %s: member: %w", EventTypeGuildMembersChunk, err)
		}
		if m.User == nil {
			return nil, &decode.MissingFieldError{Field: "user"}
		}
		if m.GuildID == 0 {
			m.GuildID = guildID
		}
		if _, dup := out[m.User.ID]; dup {
			return nil, fmt.Errorf("gateway: decoding %s: duplicate member %s", EventTypeGuildMembersChunk, m.User.ID)
		}
		out[m.User.ID] = m
	}
	return &GuildMembersChunkEvent{GuildID: guildID, Members: out}, nil
}
