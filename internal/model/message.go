package model

import json "github.com/goccy/go-json"

// MessageType is the numeric message kind.
type MessageType uint8

const (
	MessageTypeRegular              MessageType = 0
	MessageTypeGroupRecipientAdd    MessageType = 1
	MessageTypeGroupRecipientRemove MessageType = 2
	MessageTypeGroupCallCreation    MessageType = 3
	MessageTypeGroupNameUpdate      MessageType = 4
	MessageTypeGroupIconUpdate      MessageType = 5
	MessageTypePinsAdd              MessageType = 6
	MessageTypeMemberJoin           MessageType = 7
)

// Attachment is a file attached to a message.
type Attachment struct {
	ID       AttachmentID `json:"id"`
	Filename string       `json:"filename"`
	Height   *uint64      `json:"height"`
	ProxyURL string       `json:"proxy_url"`
	Size     uint64       `json:"size"`
	URL      string       `json:"url"`
	Width    *uint64      `json:"width"`
}

// Message is a channel message. Cached messages are plain records; the
// author is the payload's own user snapshot, not the shared user cell.
type Message struct {
	ID              MessageID         `json:"id"`
	Attachments     []Attachment      `json:"attachments"`
	Author          *User             `json:"author"`
	ChannelID       ChannelID         `json:"channel_id"`
	Content         string            `json:"content"`
	EditedTimestamp *string           `json:"edited_timestamp"`
	Embeds          []json.RawMessage `json:"embeds"`
	GuildID         *GuildID          `json:"guild_id,omitempty"`
	Kind            MessageType       `json:"type"`
	MentionEveryone bool              `json:"mention_everyone"`
	MentionRoles    []RoleID          `json:"mention_roles"`
	Mentions        []*User           `json:"mentions"`
	Nonce           *string           `json:"nonce"`
	Pinned          bool              `json:"pinned"`
	Timestamp       string            `json:"timestamp"`
	TTS             bool              `json:"tts"`
}

// ReactionEmoji is the emoji half of a reaction: either a custom emoji
// (id set) or a unicode one (name only).
type ReactionEmoji struct {
	Animated bool     `json:"animated,omitempty"`
	ID       *EmojiID `json:"id"`
	Name     *string  `json:"name"`
}

// Reaction is a single user's reaction to a message.
type Reaction struct {
	ChannelID ChannelID     `json:"channel_id"`
	Emoji     ReactionEmoji `json:"emoji"`
	GuildID   *GuildID      `json:"guild_id,omitempty"`
	MessageID MessageID     `json:"message_id"`
	UserID    UserID        `json:"user_id"`
}
