package voice

import (
	json "github.com/goccy/go-json"

	"github.com/georgemarshall/serenity/internal/model"
)

// CryptoMode is the media encryption mode this client selects.
const CryptoMode = "xsalsa20_poly1305"

// ConnectionInfo identifies one voice session to the control server.
type ConnectionInfo struct {
	GuildID   model.GuildID
	SessionID string
	Token     string
	UserID    model.UserID
}

type frame struct {
	Op OpCode      `json:"op"`
	D  interface{} `json:"d"`
}

func buildFrame(op OpCode, d interface{}) ([]byte, error) {
	return json.Marshal(frame{Op: op, D: d})
}

// BuildIdentify renders the opening handshake frame.
func BuildIdentify(info ConnectionInfo) ([]byte, error) {
	return buildFrame(OpIdentify, struct {
		ServerID  model.GuildID `json:"server_id"`
		SessionID string        `json:"session_id"`
		Token     string        `json:"token"`
		UserID    model.UserID  `json:"user_id"`
	}{
		ServerID:  info.GuildID,
		SessionID: info.SessionID,
		Token:     info.Token,
		UserID:    info.UserID,
	})
}

// BuildHeartbeat renders a keepalive frame carrying the given nonce.
func BuildHeartbeat(nonce uint64) ([]byte, error) {
	return buildFrame(OpHeartbeat, nonce)
}

// BuildResume renders the session resumption frame.
func BuildResume(info ConnectionInfo) ([]byte, error) {
	return buildFrame(OpResume, struct {
		ServerID  model.GuildID `json:"server_id"`
		SessionID string        `json:"session_id"`
		Token     string        `json:"token"`
	}{
		ServerID:  info.GuildID,
		SessionID: info.SessionID,
		Token:     info.Token,
	})
}

// BuildSelectProtocol renders the UDP protocol selection frame for the
// discovered external address.
func BuildSelectProtocol(address string, port uint16) ([]byte, error) {
	type protocolData struct {
		Address string `json:"address"`
		Mode    string `json:"mode"`
		Port    uint16 `json:"port"`
	}
	return buildFrame(OpSelectProtocol, struct {
		Protocol string       `json:"protocol"`
		Data     protocolData `json:"data"`
	}{
		Protocol: "udp",
		Data: protocolData{
			Address: address,
			Mode:    CryptoMode,
			Port:    port,
		},
	})
}

// BuildSpeaking renders the speaking state frame.
func BuildSpeaking(speaking bool, ssrc uint32) ([]byte, error) {
	return buildFrame(OpSpeaking, struct {
		Delay    uint64 `json:"delay"`
		Speaking bool   `json:"speaking"`
		SSRC     uint32 `json:"ssrc"`
	}{
		Speaking: speaking,
		SSRC:     ssrc,
	})
}
