package model

import (
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// ChannelType is the numeric channel kind carried in the wire `type`
// field.
type ChannelType uint8

const (
	ChannelTypeText     ChannelType = 0
	ChannelTypePrivate  ChannelType = 1
	ChannelTypeVoice    ChannelType = 2
	ChannelTypeGroup    ChannelType = 3
	ChannelTypeCategory ChannelType = 4
	ChannelTypeNews     ChannelType = 5
	ChannelTypeStore    ChannelType = 6
)

// GuildChannel is a text, voice, news or store channel belonging to a
// guild. The same cell is referenced from both the cache's top-level
// channel map and the owning guild's channel map.
type GuildChannel struct {
	Mu sync.RWMutex `json:"-"`

	ID               ChannelID   `json:"id"`
	Bitrate          *uint64     `json:"bitrate,omitempty"`
	CategoryID       *ChannelID  `json:"parent_id"`
	GuildID          GuildID     `json:"guild_id"`
	Kind             ChannelType `json:"type"`
	LastMessageID    *MessageID  `json:"last_message_id"`
	LastPinTimestamp *string     `json:"last_pin_timestamp,omitempty"`
	Name             string      `json:"name"`
	NSFW             bool        `json:"nsfw"`
	Position         int64       `json:"position"`
	Topic            *string     `json:"topic,omitempty"`
	UserLimit        *uint64     `json:"user_limit,omitempty"`
}

// PrivateChannel is a direct-message channel with one recipient.
type PrivateChannel struct {
	Mu sync.RWMutex `json:"-"`

	ID               ChannelID   `json:"id"`
	Kind             ChannelType `json:"type"`
	LastMessageID    *MessageID  `json:"last_message_id"`
	LastPinTimestamp *string     `json:"last_pin_timestamp,omitempty"`
	Recipient        *User       `json:"recipient"`
}

// The gateway transmits private-channel recipients as a one-element
// array; accept both that and a plain recipient object.
func (p *PrivateChannel) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID               ChannelID   `json:"id"`
		Kind             ChannelType `json:"type"`
		LastMessageID    *MessageID  `json:"last_message_id"`
		LastPinTimestamp *string     `json:"last_pin_timestamp"`
		Recipient        *User       `json:"recipient"`
		Recipients       []*User     `json:"recipients"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.ID = aux.ID
	p.Kind = aux.Kind
	p.LastMessageID = aux.LastMessageID
	p.LastPinTimestamp = aux.LastPinTimestamp
	p.Recipient = aux.Recipient
	if p.Recipient == nil && len(aux.Recipients) > 0 {
		p.Recipient = aux.Recipients[0]
	}
	return nil
}

// Group is a group direct-message channel.
type Group struct {
	Mu sync.RWMutex `json:"-"`

	ChannelID        ChannelID  `json:"id"`
	Icon             *string    `json:"icon"`
	LastMessageID    *MessageID `json:"last_message_id"`
	LastPinTimestamp *string    `json:"last_pin_timestamp,omitempty"`
	Name             *string    `json:"name"`
	OwnerID          UserID     `json:"owner_id"`
	Recipients       UserMap    `json:"recipients"`
}

// CopyFrom overwrites g's data fields from src, leaving g's lock and
// recipient map untouched. Callers hold g.Mu.
func (g *Group) CopyFrom(src *Group) {
	g.ChannelID = src.ChannelID
	g.Icon = src.Icon
	g.LastMessageID = src.LastMessageID
	g.LastPinTimestamp = src.LastPinTimestamp
	g.Name = src.Name
	g.OwnerID = src.OwnerID
}

// CopyFrom overwrites c's data fields from src. Callers hold c.Mu.
func (c *GuildChannel) CopyFrom(src *GuildChannel) {
	c.ID = src.ID
	c.Bitrate = src.Bitrate
	c.CategoryID = src.CategoryID
	c.GuildID = src.GuildID
	c.Kind = src.Kind
	c.LastMessageID = src.LastMessageID
	c.LastPinTimestamp = src.LastPinTimestamp
	c.Name = src.Name
	c.NSFW = src.NSFW
	c.Position = src.Position
	c.Topic = src.Topic
	c.UserLimit = src.UserLimit
}

// ChannelCategory groups guild channels under a header.
type ChannelCategory struct {
	Mu sync.RWMutex `json:"-"`

	ID         ChannelID   `json:"id"`
	CategoryID *ChannelID  `json:"parent_id"`
	Kind       ChannelType `json:"type"`
	Name       string      `json:"name"`
	NSFW       bool        `json:"nsfw"`
	Position   int64       `json:"position"`
}

// CopyFrom overwrites c's data fields from src. Callers hold c.Mu.
func (c *ChannelCategory) CopyFrom(src *ChannelCategory) {
	c.ID = src.ID
	c.CategoryID = src.CategoryID
	c.Kind = src.Kind
	c.Name = src.Name
	c.NSFW = src.NSFW
	c.Position = src.Position
}

// CopyFrom overwrites p's data fields from src. Callers hold p.Mu.
func (p *PrivateChannel) CopyFrom(src *PrivateChannel) {
	p.ID = src.ID
	p.Kind = src.Kind
	p.LastMessageID = src.LastMessageID
	p.LastPinTimestamp = src.LastPinTimestamp
	p.Recipient = src.Recipient
}

// Channel is the closed variant over the four channel kinds. Exactly
// one field is set after a successful decode.
type Channel struct {
	Guild    *GuildChannel
	Private  *PrivateChannel
	Group    *Group
	Category *ChannelCategory
}

// ID returns the channel's id regardless of kind.
func (c *Channel) ID() ChannelID {
	switch {
	case c.Guild != nil:
		return c.Guild.ID
	case c.Private != nil:
		return c.Private.ID
	case c.Group != nil:
		return c.Group.ChannelID
	case c.Category != nil:
		return c.Category.ID
	}
	return 0
}

func (c *Channel) UnmarshalJSON(data []byte) error {
	kind := ChannelType(gjson.GetBytes(data, "type").Uint())
	switch kind {
	case ChannelTypeText, ChannelTypeVoice, ChannelTypeNews, ChannelTypeStore:
		ch := new(GuildChannel)
		if err := json.Unmarshal(data, ch); err != nil {
			return err
		}
		*c = Channel{Guild: ch}
	case ChannelTypePrivate:
		ch := new(PrivateChannel)
		if err := json.Unmarshal(data, ch); err != nil {
			return err
		}
		*c = Channel{Private: ch}
	case ChannelTypeGroup:
		ch := new(Group)
		if err := json.Unmarshal(data, ch); err != nil {
			return err
		}
		*c = Channel{Group: ch}
	case ChannelTypeCategory:
		ch := new(ChannelCategory)
		if err := json.Unmarshal(data, ch); err != nil {
			return err
		}
		*c = Channel{Category: ch}
	default:
		return fmt.Errorf("model: unknown channel type %d", kind)
	}
	return nil
}

func (c Channel) MarshalJSON() ([]byte, error) {
	switch {
	case c.Guild != nil:
		return json.Marshal(c.Guild)
	case c.Private != nil:
		return json.Marshal(c.Private)
	case c.Group != nil:
		return json.Marshal(c.Group)
	case c.Category != nil:
		return json.Marshal(c.Category)
	}
	return nil, fmt.Errorf("model: empty channel")
}
