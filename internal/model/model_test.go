package model

import (
	"testing"

	json "github.com/goccy/go-json"
)

func TestSnowflakeWireForms(t *testing.T) {
	var s Snowflake
	if err := json.Unmarshal([]byte(`"41771983423143937"`), &s); err != nil {
		t.Fatalf("quoted: %v", err)
	}
	if s != 41771983423143937 {
		t.Errorf("quoted = %d", s)
	}

	if err := json.Unmarshal([]byte(`41771983423143937`), &s); err != nil {
		t.Fatalf("bare: %v", err)
	}
	if s != 41771983423143937 {
		t.Errorf("bare = %d", s)
	}

	if err := json.Unmarshal([]byte(`null`), &s); err != nil {
		t.Fatalf("null: %v", err)
	}
	if s != 0 {
		t.Errorf("null = %d", s)
	}

	if err := json.Unmarshal([]byte(`"12a"`), &s); err == nil {
		t.Error("non-digit id should fail")
	}

	out, err := Snowflake(41).MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"41"` {
		t.Errorf("marshal = %s", out)
	}
}

func TestParseSnowflake(t *testing.T) {
	id, err := ParseSnowflake("18446744073709551615")
	if err != nil {
		t.Fatal(err)
	}
	if id != 18446744073709551615 {
		t.Errorf("id = %d", id)
	}
	if _, err := ParseSnowflake(""); err == nil {
		t.Error("empty input should fail")
	}
	if _, err := ParseSnowflake("123456789012345678901"); err == nil {
		t.Error("over-long input should fail")
	}
}

func TestDiscriminatorWireForms(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"id":"7","username":"a","discriminator":"0001","avatar":null}`), &u); err != nil {
		t.Fatalf("zero-padded: %v", err)
	}
	if u.Discriminator != 1 {
		t.Errorf("zero-padded = %d, want 1", u.Discriminator)
	}

	var d Discriminator
	if err := json.Unmarshal([]byte(`123`), &d); err != nil {
		t.Fatalf("bare: %v", err)
	}
	if d != 123 {
		t.Errorf("bare = %d", d)
	}

	out, err := Discriminator(1).MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"0001"` {
		t.Errorf("marshal = %s, want \"0001\"", out)
	}

	if err := json.Unmarshal([]byte(`"12a4"`), &d); err == nil {
		t.Error("non-digit discriminator should fail")
	}
	if err := json.Unmarshal([]byte(`"70000"`), &d); err == nil {
		t.Error("out-of-range discriminator should fail")
	}
}

func TestPresencePartialUser(t *testing.T) {
	var p Presence
	err := json.Unmarshal([]byte(`{"status":"online","user":{"id":"7"}}`), &p)
	if err != nil {
		t.Fatalf("bare reference: %v", err)
	}
	if p.UserID != 7 || p.User != nil {
		t.Errorf("presence = %+v", p)
	}

	err = json.Unmarshal([]byte(`{"status":"dnd","user":{"id":"7","username":"a","discriminator":"0001","avatar":null},"game":{"type":0,"name":"x"}}`), &p)
	if err != nil {
		t.Fatalf("full user: %v", err)
	}
	if p.User == nil || p.User.Name != "a" || p.User.Discriminator != 1 {
		t.Errorf("user = %+v", p.User)
	}
	if p.Activity == nil || p.Activity.Name != "x" {
		t.Errorf("activity = %+v", p.Activity)
	}

	if err := json.Unmarshal([]byte(`{"user":{"id":"7"}}`), &p); err == nil {
		t.Error("missing status should fail")
	}
	if err := json.Unmarshal([]byte(`{"status":"online"}`), &p); err == nil {
		t.Error("missing user should fail")
	}
}

func TestPresenceMarshal(t *testing.T) {
	p := Presence{Status: StatusOnline, UserID: 7}
	out, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var back Presence
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-decode of %s: %v", out, err)
	}
	if back.UserID != 7 || back.Status != StatusOnline {
		t.Errorf("round trip = %+v", back)
	}
}

func TestChannelKindSniff(t *testing.T) {
	var ch Channel
	if err := json.Unmarshal([]byte(`{"id":"5","type":2,"guild_id":"41","name":"voice","position":1,"bitrate":64000}`), &ch); err != nil {
		t.Fatalf("voice: %v", err)
	}
	if ch.Guild == nil || ch.Guild.Kind != ChannelTypeVoice {
		t.Errorf("channel = %+v", ch)
	}
	if ch.ID() != 5 {
		t.Errorf("id = %d", ch.ID())
	}

	if err := json.Unmarshal([]byte(`{"id":"6","type":4,"name":"cat","position":0}`), &ch); err != nil {
		t.Fatalf("category: %v", err)
	}
	if ch.Category == nil {
		t.Errorf("channel = %+v", ch)
	}

	if err := json.Unmarshal([]byte(`{"id":"7","type":42}`), &ch); err == nil {
		t.Error("unknown channel type should fail")
	}
}

func TestPrivateChannelRecipientForms(t *testing.T) {
	var p PrivateChannel
	err := json.Unmarshal([]byte(`{"id":"5","type":1,"recipients":[{"id":"7","username":"a","discriminator":"0001","avatar":null}]}`), &p)
	if err != nil {
		t.Fatalf("array form: %v", err)
	}
	if p.Recipient == nil || p.Recipient.ID != 7 {
		t.Errorf("recipient = %+v", p.Recipient)
	}

	var q PrivateChannel
	err = json.Unmarshal([]byte(`{"id":"5","type":1,"recipient":{"id":"9","username":"b","discriminator":"0002","avatar":null}}`), &q)
	if err != nil {
		t.Fatalf("object form: %v", err)
	}
	if q.Recipient == nil || q.Recipient.ID != 9 {
		t.Errorf("recipient = %+v", q.Recipient)
	}
}

func TestCollectionsKeyByID(t *testing.T) {
	var roles RoleMap
	err := json.Unmarshal([]byte(`[{"id":"3","name":"c"},{"id":"1","name":"a"},{"id":"2","name":"b"}]`), &roles)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(roles) != 3 || roles[2].Name != "b" {
		t.Errorf("roles = %+v", roles)
	}

	out, err := json.Marshal(roles)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"id":"1","color":0,"hoist":false,"managed":false,"mentionable":false,"name":"a","permissions":0,"position":0},{"id":"2","color":0,"hoist":false,"managed":false,"mentionable":false,"name":"b","permissions":0,"position":0},{"id":"3","color":0,"hoist":false,"managed":false,"mentionable":false,"name":"c","permissions":0,"position":0}]`
	if string(out) != want {
		t.Errorf("marshal not id-ordered:\n got %s\nwant %s", out, want)
	}
}

func TestMemberMapSkipsUserlessEntries(t *testing.T) {
	var members MemberMap
	err := json.Unmarshal([]byte(`[{"deaf":false,"mute":false,"roles":[],"joined_at":null,"user":{"id":"7","username":"a","discriminator":"0001","avatar":null}},{"deaf":false,"mute":false,"roles":[],"joined_at":null,"user":null}]`), &members)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("members = %d, want 1", len(members))
	}
}

func TestGuildStatusDisambiguation(t *testing.T) {
	var gs GuildStatus
	if err := json.Unmarshal([]byte(`{"id":"41","unavailable":true}`), &gs); err != nil {
		t.Fatalf("offline: %v", err)
	}
	if gs.Offline == nil || gs.Offline.ID != 41 {
		t.Errorf("status = %+v", gs)
	}

	online := `{"id":"41","name":"t","owner_id":"7","afk_channel_id":null,"afk_timeout":300,"application_id":null,"default_message_notifications":0,"mfa_level":0,"verification_level":0,"region":"us-west","icon":null,"splash":null,"large":false,"member_count":0,"features":[],"channels":[],"members":[],"roles":[],"emojis":[],"presences":[],"voice_states":[]}`
	if err := json.Unmarshal([]byte(online), &gs); err != nil {
		t.Fatalf("online: %v", err)
	}
	if gs.Online == nil || gs.Online.Name != "t" {
		t.Errorf("status = %+v", gs)
	}
}

func BenchmarkSnowflakeUnmarshal(b *testing.B) {
	data := []byte(`"41771983423143937"`)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		var s Snowflake
		if err := s.UnmarshalJSON(data); err != nil {
			b.Fatal(err)
		}
	}
}
