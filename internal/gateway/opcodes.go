package gateway

import "strconv"

// OpCode is the numeric frame kind of the primary session protocol. The
// set is closed: an opcode outside it fails the envelope decode.
type OpCode uint8

const (
	// OpEvent carries a dispatched event, sequenced and labelled.
	OpEvent OpCode = 0
	// OpHeartbeat is a keepalive carrying the last seen sequence.
	OpHeartbeat OpCode = 1
	// OpIdentify is the outbound session handshake.
	OpIdentify OpCode = 2
	// OpStatusUpdate is the outbound presence change.
	OpStatusUpdate OpCode = 3
	// OpVoiceStateUpdate is the outbound voice channel join/leave.
	OpVoiceStateUpdate OpCode = 4
	// OpVoiceServerPing is a voice keepalive request.
	OpVoiceServerPing OpCode = 5
	// OpResume is the outbound session resumption request.
	OpResume OpCode = 6
	// OpReconnect tells the client to drop and reconnect.
	OpReconnect OpCode = 7
	// OpGetGuildMembers is the outbound bulk member request.
	OpGetGuildMembers OpCode = 8
	// OpInvalidSession rejects an identify or resume attempt.
	OpInvalidSession OpCode = 9
	// OpHello opens the connection with the heartbeat interval.
	OpHello OpCode = 10
	// OpHeartbeatAck acknowledges a heartbeat.
	OpHeartbeatAck OpCode = 11
)

func (op OpCode) String() string {
	switch op {
	case OpEvent:
		return "Event"
	case OpHeartbeat:
		return "Heartbeat"
	case OpIdentify:
		return "Identify"
	case OpStatusUpdate:
		return "StatusUpdate"
	case OpVoiceStateUpdate:
		return "VoiceStateUpdate"
	case OpVoiceServerPing:
		return "VoiceServerPing"
	case OpResume:
		return "Resume"
	case OpReconnect:
		return "Reconnect"
	case OpGetGuildMembers:
		return "GetGuildMembers"
	case OpInvalidSession:
		return "InvalidSession"
	case OpHello:
		return "Hello"
	case OpHeartbeatAck:
		return "HeartbeatAck"
	}
	return "OpCode(" + strconv.FormatUint(uint64(op), 10) + ")"
}
