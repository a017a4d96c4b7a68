package model

// VoiceState is a user's connection to a guild voice channel. A nil
// ChannelID means the user left voice entirely.
type VoiceState struct {
	ChannelID *ChannelID `json:"channel_id"`
	Deaf      bool       `json:"deaf"`
	Mute      bool       `json:"mute"`
	SelfDeaf  bool       `json:"self_deaf"`
	SelfMute  bool       `json:"self_mute"`
	SessionID string     `json:"session_id"`
	Suppress  bool       `json:"suppress"`
	UserID    UserID     `json:"user_id"`
}
