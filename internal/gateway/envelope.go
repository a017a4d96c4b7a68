package gateway

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/georgemarshall/serenity/internal/decode"
)

// GatewayEvent is one decoded frame of the primary session protocol.
type GatewayEvent interface {
	gatewayEvent()
}

// DispatchEvent is an opcode-0 frame: a sequenced, typed event.
type DispatchEvent struct {
	Seq   uint64
	Event Event
}

// HeartbeatEvent is an opcode-1 frame carrying the sender's sequence.
type HeartbeatEvent struct {
	Seq uint64
}

// ReconnectEvent is an opcode-7 frame; it carries no payload.
type ReconnectEvent struct{}

// InvalidSessionEvent is an opcode-9 frame; Resumable reports whether
// the rejected session may be resumed.
type InvalidSessionEvent struct {
	Resumable bool
}

// HelloEvent is an opcode-10 frame carrying the heartbeat interval in
// milliseconds.
type HelloEvent struct {
	HeartbeatInterval uint64
}

// HeartbeatAckEvent is an opcode-11 frame; it carries no payload.
type HeartbeatAckEvent struct{}

func (DispatchEvent) gatewayEvent()       {}
func (HeartbeatEvent) gatewayEvent()      {}
func (ReconnectEvent) gatewayEvent()      {}
func (InvalidSessionEvent) gatewayEvent() {}
func (HelloEvent) gatewayEvent()          {}
func (HeartbeatAckEvent) gatewayEvent()   {}

// envelope is the raw frame after the field walk, before the opcode
// branch. seq and label stay pointers so "key present but null" and
// "key absent" are distinguishable.
type envelope struct {
	op      uint64
	payload decode.Content
	seq     *uint64
	label   *string

	seenOp, seenD, seenS, seenT bool
}

// DecodeGatewayEvent decodes one primary-protocol frame. The envelope
// fields may arrive in any order; duplicates and unknown keys are
// errors, and op, d, s and t must all be present (the payload always
// transmits s and t, as null placeholders on non-dispatch frames).
func DecodeGatewayEvent(data []byte) (GatewayEvent, error) {
	env, err := walkEnvelope(data)
	if err != nil {
		return nil, err
	}
	switch OpCode(env.op) {
	case OpEvent:
		if env.seq == nil {
			return nil, &decode.MissingFieldError{Field: "s"}
		}
		if env.label == nil {
			return nil, &decode.MissingFieldError{Field: "t"}
		}
		ev, err := DecodeEvent(EventType(*env.label), env.payload)
		if err != nil {
			return nil, err
		}
		return DispatchEvent{Seq: *env.seq, Event: ev}, nil
	case OpHeartbeat:
		if env.seq == nil {
			return nil, &decode.MissingFieldError{Field: "s"}
		}
		return HeartbeatEvent{Seq: *env.seq}, nil
	case OpReconnect:
		return ReconnectEvent{}, nil
	case OpInvalidSession:
		resumable, ok := env.payload.AsBool()
		if !ok {
			return nil, &InvalidPayloadError{Op: OpInvalidSession, Want: "boolean"}
		}
		return InvalidSessionEvent{Resumable: resumable}, nil
	case OpHello:
		var hello struct {
			HeartbeatInterval uint64 `json:"heartbeat_interval"`
		}
		if err := env.payload.Unmarshal(&hello); err != nil {
			return nil, fmt.Errorf("gateway: hello payload: %w", err)
		}
		return HelloEvent{HeartbeatInterval: hello.HeartbeatInterval}, nil
	case OpHeartbeatAck:
		return HeartbeatAckEvent{}, nil
	}
	return nil, &UnknownOpCodeError{Op: env.op}
}

// walkEnvelope consumes the outer record token-by-token, buffering the
// payload and recording which canonical fields were seen.
func walkEnvelope(data []byte) (*envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("gateway: envelope: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("gateway: envelope: expected object, got %v", tok)
	}

	env := new(envelope)
	for dec.More() {
		ktok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("gateway: envelope: %w", err)
		}
		key, ok := ktok.(string)
		if !ok {
			return nil, fmt.Errorf("gateway: envelope: non-string key %v", ktok)
		}
		switch key {
		case "op":
			if env.seenOp {
				return nil, &decode.DuplicateFieldError{Field: "op"}
			}
			env.seenOp = true
			if err := readUint(dec, &env.op); err != nil {
				return nil, fmt.Errorf("gateway: envelope field op: %w", err)
			}
		case "d":
			if env.seenD {
				return nil, &decode.DuplicateFieldError{Field: "d"}
			}
			env.seenD = true
			c, err := decode.Capture(dec)
			if err != nil {
				return nil, fmt.Errorf("gateway: envelope field d: %w", err)
			}
			env.payload = c
		case "s":
			if env.seenS {
				return nil, &decode.DuplicateFieldError{Field: "s"}
			}
			env.seenS = true
			if err := readOptUint(dec, &env.seq); err != nil {
				return nil, fmt.Errorf("gateway: envelope field s: %w", err)
			}
		case "t":
			if env.seenT {
				return nil, &decode.DuplicateFieldError{Field: "t"}
			}
			env.seenT = true
			if err := readOptString(dec, &env.label); err != nil {
				return nil, fmt.Errorf("gateway: envelope field t: %w", err)
			}
		default:
			return nil, &UnknownFieldError{Field: key}
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("gateway: envelope: %w", err)
	}

	if !env.seenOp {
		return nil, &decode.MissingFieldError{Field: "op"}
	}
	if !env.seenD {
		return nil, &decode.MissingFieldError{Field: "d"}
	}
	if !env.seenS {
		return nil, &decode.MissingFieldError{Field: "s"}
	}
	if !env.seenT {
		return nil, &decode.MissingFieldError{Field: "t"}
	}
	return env, nil
}

func readUint(dec *json.Decoder, out *uint64) error {
	c, err := decode.Capture(dec)
	if err != nil {
		return err
	}
	u, ok := c.AsUint64()
	if !ok {
		return fmt.Errorf("expected unsigned integer")
	}
	*out = u
	return nil
}

func readOptUint(dec *json.Decoder, out **uint64) error {
	c, err := decode.Capture(dec)
	if err != nil {
		return err
	}
	if c.IsNull() {
		*out = nil
		return nil
	}
	u, ok := c.AsUint64()
	if !ok {
		return fmt.Errorf("expected unsigned integer or null")
	}
	*out = &u
	return nil
}

func readOptString(dec *json.Decoder, out **string) error {
	c, err := decode.Capture(dec)
	if err != nil {
		return err
	}
	if c.IsNull() {
		*out = nil
		return nil
	}
	s, ok := c.AsString()
	if !ok {
		return fmt.Errorf("expected string or null")
	}
	*out = &s
	return nil
}
