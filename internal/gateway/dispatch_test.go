package gateway

import (
	"errors"
	"reflect"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/georgemarshall/serenity/internal/decode"
)

func payload(t *testing.T, s string) decode.Content {
	t.Helper()
	c, err := decode.FromRaw([]byte(s))
	if err != nil {
		t.Fatalf("FromRaw(%s): %v", s, err)
	}
	return c
}

func TestGuildCreateAvailable(t *testing.T) {
	c := payload(t, `{"id":"41","name":"testing","owner_id":"7","afk_channel_id":null,"afk_timeout":300,"application_id":null,"default_message_notifications":0,"mfa_level":0,"verification_level":0,"region":"us-west","icon":null,"splash":null,"large":false,"member_count":1,"features":[],"channels":[],"members":[],"roles":[],"emojis":[],"presences":[],"voice_states":[]}`)
	ev, err := DecodeEvent(EventTypeGuildCreate, c)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	gc, ok := ev.(*GuildCreateEvent)
	if !ok {
		t.Fatalf("expected *GuildCreateEvent, got %T", ev)
	}
	if gc.Guild.ID != 41 || gc.Guild.Name != "testing" {
		t.Errorf("guild = %+v", gc.Guild)
	}
}

func TestGuildCreateUnavailableOverride(t *testing.T) {
	c := payload(t, `{"id":"41","unavailable":true}`)
	ev, err := DecodeEvent(EventTypeGuildCreate, c)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	gu, ok := ev.(*GuildUnavailableEvent)
	if !ok {
		t.Fatalf("unavailable=true must override the label, got %T", ev)
	}
	if gu.GuildID != 41 {
		t.Errorf("guild id = %d", gu.GuildID)
	}
}

func TestGuildUnavailableLabelWithFalseFlag(t *testing.T) {
	c := payload(t, `{"id":"41","name":"back","owner_id":"7","afk_channel_id":null,"afk_timeout":300,"application_id":null,"default_message_notifications":0,"mfa_level":0,"verification_level":0,"region":"us-west","icon":null,"splash":null,"large":false,"member_count":0,"features":[],"channels":[],"members":[],"roles":[],"emojis":[],"presences":[],"voice_states":[],"unavailable":false}`)
	ev, err := DecodeEvent(EventTypeGuildUnavailable, c)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := ev.(*GuildCreateEvent); !ok {
		t.Fatalf("false flag decodes as the full guild shape, got %T", ev)
	}
}

func TestGuildDeleteDisambiguation(t *testing.T) {
	off := payload(t, `{"id":"41","unavailable":true}`)
	ev, err := DecodeEvent(EventTypeGuildDelete, off)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := ev.(*GuildUnavailableEvent); !ok {
		t.Fatalf("unavailable guild delete: got %T", ev)
	}

	left := payload(t, `{"id":"41","name":"gone","owner_id":"7","afk_channel_id":null,"afk_timeout":300,"default_message_notifications":0,"mfa_level":0,"verification_level":0,"region":"us-west","icon":null,"splash":null}`)
	ev, err = DecodeEvent(EventTypeGuildDelete, left)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	gd, ok := ev.(*GuildDeleteEvent)
	if !ok {
		t.Fatalf("plain guild delete: got %T", ev)
	}
	if gd.Guild.ID != 41 {
		t.Errorf("guild id = %d", gd.Guild.ID)
	}
}

func TestUnknownLabelIsSoft(t *testing.T) {
	c := payload(t, `{"future_field":1}`)
	ev, err := DecodeEvent("SOME_FUTURE_EVENT", c)
	if err != nil {
		t.Fatalf("unknown labels must not error: %v", err)
	}
	unknown, ok := ev.(*UnknownEvent)
	if !ok {
		t.Fatalf("expected *UnknownEvent, got %T", ev)
	}
	if unknown.Kind != "SOME_FUTURE_EVENT" {
		t.Errorf("kind = %q", unknown.Kind)
	}
	if unknown.EventType() != EventType("SOME_FUTURE_EVENT") {
		t.Errorf("event type = %q", unknown.EventType())
	}
	raw, err := unknown.Value.MarshalJSON()
	if err != nil {
		t.Fatalf("buffered payload lost: %v", err)
	}
	if string(raw) != `{"future_field":1}` {
		t.Errorf("payload = %s", raw)
	}
}

func TestGuildMembersChunkSeedsGuildID(t *testing.T) {
	c := payload(t, `{"guild_id":"41","members":[{"deaf":false,"mute":false,"nick":null,"roles":[],"joined_at":"2015-04-26T06:26:56.936000+00:00","user":{"id":"7","username":"a","discriminator":"0001","avatar":null}}],"not_found":["99"]}`)
	ev, err := DecodeEvent(EventTypeGuildMembersChunk, c)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	chunk, ok := ev.(*GuildMembersChunkEvent)
	if !ok {
		t.Fatalf("got %T", ev)
	}
	if chunk.GuildID != 41 {
		t.Errorf("guild id = %d", chunk.GuildID)
	}
	m, ok := chunk.Members[7]
	if !ok {
		t.Fatalf("member 7 missing: %+v", chunk.Members)
	}
	if m.GuildID != 41 {
		t.Errorf("member guild id not seeded: %d", m.GuildID)
	}
}

func TestGuildMembersChunkErrors(t *testing.T) {
	missing := payload(t, `{"members":[]}`)
	_, err := DecodeEvent(EventTypeGuildMembersChunk, missing)
	var mf *decode.MissingFieldError
	if !errors.As(err, &mf) || mf.Field != "guild_id" {
		t.Errorf("missing guild_id: got %v", err)
	}

	dup := payload(t, `{"guild_id":"41","members":[{"user":{"id":"7","username":"a","discriminator":"0001","avatar":null}},{"user":{"id":"7","username":"a","discriminator":"0001","avatar":null}}]}`)
	if _, err := DecodeEvent(EventTypeGuildMembersChunk, dup); err == nil {
		t.Error("duplicate member ids must fail")
	}

	unknown := payload(t, `{"guild_id":"41","members":[],"extra":1}`)
	var uf *UnknownFieldError
	if _, err := DecodeEvent(EventTypeGuildMembersChunk, unknown); !errors.As(err, &uf) {
		t.Errorf("unknown chunk field: got %v", err)
	}

	noUser := payload(t, `{"guild_id":"41","members":[{"deaf":false}]}`)
	if _, err := DecodeEvent(EventTypeGuildMembersChunk, noUser); err == nil {
		t.Error("member without user must fail")
	}
}

func TestPresenceUpdateFlattened(t *testing.T) {
	c := payload(t, `{"guild_id":"41","status":"online","user":{"id":"7"},"game":null,"nick":null,"roles":[]}`)
	ev, err := DecodeEvent(EventTypePresenceUpdate, c)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	pu, ok := ev.(*PresenceUpdateEvent)
	if !ok {
		t.Fatalf("got %T", ev)
	}
	if pu.GuildID == nil || *pu.GuildID != 41 {
		t.Errorf("guild id = %v", pu.GuildID)
	}
	if pu.Presence.UserID != 7 {
		t.Errorf("user id = %d", pu.Presence.UserID)
	}
	if pu.Presence.User != nil {
		t.Error("bare id reference must not yield a full user")
	}

	full := payload(t, `{"status":"idle","user":{"id":"7","username":"a","discriminator":"0001","avatar":null}}`)
	ev, err = DecodeEvent(EventTypePresenceUpdate, full)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	pu = ev.(*PresenceUpdateEvent)
	if pu.GuildID != nil {
		t.Error("guild id should be absent")
	}
	if pu.Presence.User == nil || pu.Presence.User.Name != "a" {
		t.Errorf("full user not decoded: %+v", pu.Presence.User)
	}
}

func TestPresenceUpdateMissingStatus(t *testing.T) {
	c := payload(t, `{"user":{"id":"7"}}`)
	_, err := DecodeEvent(EventTypePresenceUpdate, c)
	if err == nil {
		t.Fatal("presence without status must fail")
	}
}

func TestMessageUpdateIsPartialPatch(t *testing.T) {
	c := payload(t, `{"id":"9","channel_id":"2","content":"edited"}`)
	ev, err := DecodeEvent(EventTypeMessageUpdate, c)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	mu, ok := ev.(*MessageUpdateEvent)
	if !ok {
		t.Fatalf("got %T", ev)
	}
	if mu.Content == nil || *mu.Content != "edited" {
		t.Errorf("content = %v", mu.Content)
	}
	if mu.Kind != nil || mu.Pinned != nil || mu.Author != nil || mu.Mentions != nil {
		t.Error("absent fields must stay nil")
	}
}

func TestChannelCreateVariants(t *testing.T) {
	guildCh := payload(t, `{"id":"5","type":0,"guild_id":"41","name":"general","position":0,"nsfw":false,"last_message_id":null,"parent_id":null}`)
	ev, err := DecodeEvent(EventTypeChannelCreate, guildCh)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	cc := ev.(*ChannelCreateEvent)
	if cc.Channel.Guild == nil || cc.Channel.Guild.Name != "general" {
		t.Errorf("channel = %+v", cc.Channel)
	}

	private := payload(t, `{"id":"6","type":1,"last_message_id":null,"recipients":[{"id":"7","username":"a","discriminator":"0001","avatar":null}]}`)
	ev, err = DecodeEvent(EventTypeChannelCreate, private)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	cc = ev.(*ChannelCreateEvent)
	if cc.Channel.Private == nil || cc.Channel.Private.Recipient == nil {
		t.Fatalf("private channel = %+v", cc.Channel)
	}
	if cc.Channel.Private.Recipient.ID != 7 {
		t.Errorf("recipient = %+v", cc.Channel.Private.Recipient)
	}
}

// Events serialize back out in their flattened wire forms, so a decode
// of the re-encoded bytes lands on the same value.
func TestEventRoundTrip(t *testing.T) {
	cases := []struct {
		kind EventType
		body string
	}{
		{EventTypeChannelCreate, `{"id":"5","type":0,"guild_id":"41","name":"general","position":0,"nsfw":false,"last_message_id":null,"parent_id":null}`},
		{EventTypeChannelCreate, `{"id":"6","type":1,"last_message_id":null,"recipients":[{"id":"7","username":"a","discriminator":"0001","avatar":null}]}`},
		{EventTypeGuildMemberAdd, `{"guild_id":"41","deaf":false,"mute":false,"nick":null,"roles":[],"joined_at":null,"user":{"id":"7","username":"a","discriminator":"0001","avatar":null}}`},
		{EventTypePresenceUpdate, `{"guild_id":"41","status":"online","user":{"id":"7"},"game":null,"nick":null,"roles":[]}`},
		{EventTypeVoiceStateUpdate, `{"guild_id":"41","channel_id":"5","user_id":"7","session_id":"abc","deaf":false,"mute":false,"self_deaf":false,"self_mute":true,"suppress":false}`},
		{EventTypeUserUpdate, `{"id":"1","username":"me","discriminator":"0007","avatar":null,"mfa_enabled":false}`},
	}
	for _, tc := range cases {
		ev, err := DecodeEvent(tc.kind, payload(t, tc.body))
		if err != nil {
			t.Fatalf("%s: decode: %v", tc.kind, err)
		}
		out, err := json.Marshal(ev)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.kind, err)
		}
		back, err := DecodeEvent(tc.kind, payload(t, string(out)))
		if err != nil {
			t.Fatalf("%s: re-decode of %s: %v", tc.kind, out, err)
		}
		if !reflect.DeepEqual(ev, back) {
			t.Errorf("%s: round trip drifted:\n got %+v\nwant %+v", tc.kind, back, ev)
		}
	}
}

func TestVoiceStateUpdateFlattened(t *testing.T) {
	c := payload(t, `{"guild_id":"41","channel_id":"5","user_id":"7","session_id":"abc","deaf":false,"mute":false,"self_deaf":false,"self_mute":true,"suppress":false}`)
	ev, err := DecodeEvent(EventTypeVoiceStateUpdate, c)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	vs := ev.(*VoiceStateUpdateEvent)
	if vs.GuildID == nil || *vs.GuildID != 41 {
		t.Errorf("guild id = %v", vs.GuildID)
	}
	if vs.VoiceState.UserID != 7 || !vs.VoiceState.SelfMute {
		t.Errorf("state = %+v", vs.VoiceState)
	}
}
