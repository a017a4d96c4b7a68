package model

import (
	"sort"

	json "github.com/goccy/go-json"
)

// The gateway transmits entity collections as arrays; the cache wants
// them keyed by id. These map types decode from the wire arrays and
// serialize back out as arrays in id order.

type UserMap map[UserID]*User

func (m *UserMap) UnmarshalJSON(data []byte) error {
	var list []*User
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(UserMap, len(list))
	for _, u := range list {
		out[u.ID] = u
	}
	*m = out
	return nil
}

func (m UserMap) MarshalJSON() ([]byte, error) {
	return marshalByID(len(m), func(ids *[]Snowflake) {
		for id := range m {
			*ids = append(*ids, id)
		}
	}, func(id Snowflake) interface{} { return m[id] })
}

type ChannelMap map[ChannelID]*GuildChannel

func (m *ChannelMap) UnmarshalJSON(data []byte) error {
	var list []*GuildChannel
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(ChannelMap, len(list))
	for _, ch := range list {
		out[ch.ID] = ch
	}
	*m = out
	return nil
}

func (m ChannelMap) MarshalJSON() ([]byte, error) {
	return marshalByID(len(m), func(ids *[]Snowflake) {
		for id := range m {
			*ids = append(*ids, id)
		}
	}, func(id Snowflake) interface{} { return m[id] })
}

type MemberMap map[UserID]*Member

func (m *MemberMap) UnmarshalJSON(data []byte) error {
	var list []*Member
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(MemberMap, len(list))
	for _, mem := range list {
		if mem.User == nil {
			continue
		}
		out[mem.User.ID] = mem
	}
	*m = out
	return nil
}

func (m MemberMap) MarshalJSON() ([]byte, error) {
	return marshalByID(len(m), func(ids *[]Snowflake) {
		for id := range m {
			*ids = append(*ids, id)
		}
	}, func(id Snowflake) interface{} { return m[id] })
}

type RoleMap map[RoleID]*Role

func (m *RoleMap) UnmarshalJSON(data []byte) error {
	var list []*Role
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(RoleMap, len(list))
	for _, r := range list {
		out[r.ID] = r
	}
	*m = out
	return nil
}

func (m RoleMap) MarshalJSON() ([]byte, error) {
	return marshalByID(len(m), func(ids *[]Snowflake) {
		for id := range m {
			*ids = append(*ids, id)
		}
	}, func(id Snowflake) interface{} { return m[id] })
}

type EmojiMap map[EmojiID]Emoji

func (m *EmojiMap) UnmarshalJSON(data []byte) error {
	var list []Emoji
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(EmojiMap, len(list))
	for _, e := range list {
		out[e.ID] = e
	}
	*m = out
	return nil
}

func (m EmojiMap) MarshalJSON() ([]byte, error) {
	return marshalByID(len(m), func(ids *[]Snowflake) {
		for id := range m {
			*ids = append(*ids, id)
		}
	}, func(id Snowflake) interface{} { return m[id] })
}

type PresenceMap map[UserID]*Presence

func (m *PresenceMap) UnmarshalJSON(data []byte) error {
	var list []*Presence
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(PresenceMap, len(list))
	for _, p := range list {
		out[p.UserID] = p
	}
	*m = out
	return nil
}

func (m PresenceMap) MarshalJSON() ([]byte, error) {
	return marshalByID(len(m), func(ids *[]Snowflake) {
		for id := range m {
			*ids = append(*ids, id)
		}
	}, func(id Snowflake) interface{} { return m[id] })
}

type VoiceStateMap map[UserID]*VoiceState

func (m *VoiceStateMap) UnmarshalJSON(data []byte) error {
	var list []*VoiceState
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(VoiceStateMap, len(list))
	for _, v := range list {
		out[v.UserID] = v
	}
	*m = out
	return nil
}

func (m VoiceStateMap) MarshalJSON() ([]byte, error) {
	return marshalByID(len(m), func(ids *[]Snowflake) {
		for id := range m {
			*ids = append(*ids, id)
		}
	}, func(id Snowflake) interface{} { return m[id] })
}

func marshalByID(n int, collect func(*[]Snowflake), lookup func(Snowflake) interface{}) ([]byte, error) {
	ids := make([]Snowflake, 0, n)
	collect(&ids)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]interface{}, 0, n)
	for _, id := range ids {
		out = append(out, lookup(id))
	}
	return json.Marshal(out)
}
