// Package model contains the entity records carried by gateway events
// and mirrored into the state cache.
package model

import (
	"fmt"
	"strconv"
)

// Snowflake is a Discord id. The wire form may be either a JSON string
// or a bare number; it always serializes back out as a string.
type Snowflake uint64

// Id aliases keep signatures readable without ceremony.
type (
	ApplicationID = Snowflake
	AttachmentID  = Snowflake
	ChannelID     = Snowflake
	EmojiID       = Snowflake
	GuildID       = Snowflake
	MessageID     = Snowflake
	RoleID        = Snowflake
	UserID        = Snowflake
)

func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

func (s Snowflake) MarshalJSON() ([]byte, error) {
	b := make([]byte, 0, 22)
	b = append(b, '"')
	b = strconv.AppendUint(b, uint64(s), 10)
	b = append(b, '"')
	return b, nil
}

func (s *Snowflake) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = 0
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	v, ok := parseDigits(data)
	if !ok {
		return fmt.Errorf("model: invalid snowflake %q", data)
	}
	*s = Snowflake(v)
	return nil
}

// parseDigits converts an ASCII digit run to uint64. Branch-light loop,
// fast enough that id-heavy payloads never touch strconv.
func parseDigits(b []byte) (uint64, bool) {
	if len(b) == 0 || len(b) > 20 {
		return 0, false
	}
	var n uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
	}
	return n, true
}

// ParseSnowflake converts a decimal id string to a Snowflake.
func ParseSnowflake(s string) (Snowflake, error) {
	v, ok := parseDigits([]byte(s))
	if !ok {
		return 0, fmt.Errorf("model: invalid snowflake %q", s)
	}
	return Snowflake(v), nil
}
