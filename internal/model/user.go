package model

import (
	"fmt"
	"sync"
)

// Discriminator is the four-digit tag after a username. The wire form
// is a zero-padded string ("0001"), which is not a valid JSON number,
// so it cannot go through a numeric decode; bare numbers are accepted
// too. It serializes back out zero-padded.
type Discriminator uint16

func (d Discriminator) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%04d"`, uint16(d))), nil
}

func (d *Discriminator) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = 0
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	v, ok := parseDigits(data)
	if !ok || v > 65535 {
		return fmt.Errorf("model: invalid discriminator %q", data)
	}
	*d = Discriminator(v)
	return nil
}

// User is the authoritative record for a single user identity. The
// cache keeps exactly one cell per id; everything else (group
// recipients, members, presences) holds a pointer to that cell, so
// reads and writes must go through Mu.
type User struct {
	Mu sync.RWMutex `json:"-"`

	ID            UserID        `json:"id"`
	Avatar        *string       `json:"avatar"`
	Bot           bool          `json:"bot,omitempty"`
	Discriminator Discriminator `json:"discriminator"`
	Name          string        `json:"username"`
}

// CurrentUser is the logged-in user. It lives as a single value behind
// the cache's meta lock, so it carries no lock of its own.
type CurrentUser struct {
	ID            UserID        `json:"id"`
	Avatar        *string       `json:"avatar"`
	Bot           bool          `json:"bot,omitempty"`
	Discriminator Discriminator `json:"discriminator"`
	Email         *string       `json:"email,omitempty"`
	MFAEnabled    bool          `json:"mfa_enabled"`
	Name          string        `json:"username"`
	Verified      *bool         `json:"verified,omitempty"`
}

// Member is a user's membership inside one guild. GuildID may be absent
// on the wire for bulk payloads that inherit it from their container.
type Member struct {
	Deaf     bool     `json:"deaf"`
	GuildID  GuildID  `json:"guild_id,omitempty"`
	JoinedAt *string  `json:"joined_at"`
	Mute     bool     `json:"mute"`
	Nick     *string  `json:"nick,omitempty"`
	Roles    []RoleID `json:"roles"`
	User     *User    `json:"user"`
}

// Role is a guild role.
type Role struct {
	ID          RoleID `json:"id"`
	Color       uint32 `json:"color"`
	Hoist       bool   `json:"hoist"`
	Managed     bool   `json:"managed"`
	Mentionable bool   `json:"mentionable"`
	Name        string `json:"name"`
	Permissions uint64 `json:"permissions"`
	Position    int64  `json:"position"`
}

// Emoji is a guild emoji.
type Emoji struct {
	Animated      bool     `json:"animated"`
	ID            EmojiID  `json:"id"`
	Name          string   `json:"name"`
	Managed       bool     `json:"managed"`
	RequireColons bool     `json:"require_colons"`
	Roles         []RoleID `json:"roles"`
}
