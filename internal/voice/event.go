// Package voice decodes the real-time-transport control protocol: a
// two-field envelope whose opcode set, unlike the session protocol's,
// is open-ended.
package voice

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/georgemarshall/serenity/internal/decode"
	"github.com/georgemarshall/serenity/internal/model"
)

// OpCode is the numeric frame kind of the voice control protocol.
type OpCode uint8

const (
	OpIdentify           OpCode = 0
	OpSelectProtocol     OpCode = 1
	OpReady              OpCode = 2
	OpHeartbeat          OpCode = 3
	OpSessionDescription OpCode = 4
	OpSpeaking           OpCode = 5
	OpHeartbeatAck       OpCode = 6
	OpResume             OpCode = 7
	OpHello              OpCode = 8
	OpResumed            OpCode = 9
	OpClientConnect      OpCode = 12
	OpClientDisconnect   OpCode = 13
)

func (op OpCode) String() string {
	switch op {
	case OpIdentify:
		return "Identify"
	case OpSelectProtocol:
		return "SelectProtocol"
	case OpReady:
		return "Ready"
	case OpHeartbeat:
		return "Heartbeat"
	case OpSessionDescription:
		return "SessionDescription"
	case OpSpeaking:
		return "Speaking"
	case OpHeartbeatAck:
		return "HeartbeatAck"
	case OpResume:
		return "Resume"
	case OpHello:
		return "Hello"
	case OpResumed:
		return "Resumed"
	case OpClientConnect:
		return "ClientConnect"
	case OpClientDisconnect:
		return "ClientDisconnect"
	}
	return "OpCode(" + strconv.FormatUint(uint64(op), 10) + ")"
}

// Event is one decoded voice control frame.
type Event interface {
	voiceEvent()
}

// ReadyEvent describes the UDP endpoint the server allocated.
type ReadyEvent struct {
	HeartbeatInterval uint64   `json:"heartbeat_interval"`
	IP                string   `json:"ip"`
	Modes             []string `json:"modes"`
	Port              uint16   `json:"port"`
	SSRC              uint32   `json:"ssrc"`
}

// SecretKey is the media encryption key. The wire carries it as an
// array of byte-sized numbers, not a base64 string.
type SecretKey []byte

func (k *SecretKey) UnmarshalJSON(data []byte) error {
	var nums []uint16
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}
	out := make([]byte, len(nums))
	for i, n := range nums {
		if n > 0xff {
			return fmt.Errorf("voice: secret key byte %d out of range: %d", i, n)
		}
		out[i] = byte(n)
	}
	*k = out
	return nil
}

func (k SecretKey) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, b := range k {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.FormatUint(uint64(b), 10))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// SessionDescriptionEvent delivers the negotiated mode and key.
type SessionDescriptionEvent struct {
	Mode      string    `json:"mode"`
	SecretKey SecretKey `json:"secret_key"`
}

// SpeakingEvent reports a user's speaking state change.
type SpeakingEvent struct {
	Speaking bool         `json:"speaking"`
	SSRC     uint32       `json:"ssrc"`
	UserID   model.UserID `json:"user_id"`
}

// HeartbeatAckEvent echoes the heartbeat nonce back.
type HeartbeatAckEvent struct {
	Nonce uint64
}

// HelloEvent carries the heartbeat interval for this connection.
type HelloEvent struct {
	HeartbeatInterval uint64 `json:"heartbeat_interval"`
}

// ResumedEvent acknowledges a successful resume; it has no payload.
type ResumedEvent struct{}

// ClientConnectEvent announces another client's media streams.
type ClientConnectEvent struct {
	AudioSSRC uint32       `json:"audio_ssrc"`
	UserID    model.UserID `json:"user_id"`
	VideoSSRC uint32       `json:"video_ssrc"`
}

// ClientDisconnectEvent announces a client leaving the channel.
type ClientDisconnectEvent struct {
	UserID model.UserID `json:"user_id"`
}

// UnknownEvent preserves a frame with an unrecognized opcode together
// with its buffered payload. The voice opcode set is open; new opcodes
// are not an error.
type UnknownEvent struct {
	Op    uint64
	Value decode.Content
}

func (*ReadyEvent) voiceEvent()              {}
func (*SessionDescriptionEvent) voiceEvent() {}
func (*SpeakingEvent) voiceEvent()           {}
func (*HeartbeatAckEvent) voiceEvent()       {}
func (*HelloEvent) voiceEvent()              {}
func (*ResumedEvent) voiceEvent()            {}
func (*ClientConnectEvent) voiceEvent()      {}
func (*ClientDisconnectEvent) voiceEvent()   {}
func (*UnknownEvent) voiceEvent()            {}

// DecodeEvent decodes one voice control frame. The envelope carries
// only op and d; both are required, duplicates and unknown keys are
// errors.
func DecodeEvent(data []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("voice: envelope: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("voice: envelope: expected object, got %v", tok)
	}

	var (
		op            uint64
		payload       decode.Content
		seenOp, seenD bool
	)
	for dec.More() {
		ktok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("voice: envelope: %w", err)
		}
		key, ok := ktok.(string)
		if !ok {
			return nil, fmt.Errorf("voice: envelope: non-string key %v", ktok)
		}
		switch key {
		case "op":
			if seenOp {
				return nil, &decode.DuplicateFieldError{Field: "op"}
			}
			seenOp = true
			c, err := decode.Capture(dec)
			if err != nil {
				return nil, fmt.Errorf("voice: envelope field op: %w", err)
			}
			if op, ok = c.AsUint64(); !ok {
				return nil, fmt.Errorf("voice: envelope field op: expected unsigned integer")
			}
		case "d":
			if seenD {
				return nil, &decode.DuplicateFieldError{Field: "d"}
			}
			seenD = true
			if payload, err = decode.Capture(dec); err != nil {
				return nil, fmt.Errorf("voice: envelope field d: %w", err)
			}
		default:
			return nil, fmt.Errorf("voice: unknown envelope field %q", key)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("voice: envelope: %w", err)
	}
	if !seenOp {
		return nil, &decode.MissingFieldError{Field: "op"}
	}
	if !seenD {
		return nil, &decode.MissingFieldError{Field: "d"}
	}

	switch OpCode(op) {
	case OpReady:
		ev := new(ReadyEvent)
		return ev, unmarshalPayload(OpReady, payload, ev)
	case OpSessionDescription:
		ev := new(SessionDescriptionEvent)
		return ev, unmarshalPayload(OpSessionDescription, payload, ev)
	case OpSpeaking:
		ev := new(SpeakingEvent)
		return ev, unmarshalPayload(OpSpeaking, payload, ev)
	case OpHeartbeatAck:
		nonce, ok := payload.AsUint64()
		if !ok {
			return nil, fmt.Errorf("voice: %s payload: expected unsigned integer nonce", OpHeartbeatAck)
		}
		return &HeartbeatAckEvent{Nonce: nonce}, nil
	case OpHello:
		ev := new(HelloEvent)
		return ev, unmarshalPayload(OpHello, payload, ev)
	case OpResumed:
		return &ResumedEvent{}, nil
	case OpClientConnect:
		ev := new(ClientConnectEvent)
		return ev, unmarshalPayload(OpClientConnect, payload, ev)
	case OpClientDisconnect:
		ev := new(ClientDisconnectEvent)
		return ev, unmarshalPayload(OpClientDisconnect, payload, ev)
	}
	return &UnknownEvent{Op: op, Value: payload}, nil
}

func unmarshalPayload(op OpCode, payload decode.Content, target interface{}) error {
	if err := payload.Unmarshal(target); err != nil {
		return fmt.Errorf("voice: %s payload: %w", op, err)
	}
	return nil
}
