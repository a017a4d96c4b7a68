package gateway

import "fmt"

// UnknownOpCodeError reports a frame whose opcode is outside the closed
// primary protocol set. Unknown type labels are soft (see UnknownEvent);
// unknown opcodes are not.
type UnknownOpCodeError struct {
	Op uint64
}

func (e *UnknownOpCodeError) Error() string {
	return fmt.Sprintf("gateway: unknown opcode %d", e.Op)
}

// UnknownFieldError reports an unexpected key in the envelope record.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("gateway: unknown envelope field %q", e.Field)
}

// InvalidPayloadError reports a payload whose shape does not match what
// the resolved opcode requires.
type InvalidPayloadError struct {
	Op   OpCode
	Want string
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("gateway: %s payload: expected %s", e.Op, e.Want)
}
