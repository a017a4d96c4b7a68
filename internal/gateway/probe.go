package gateway

import "github.com/tidwall/gjson"

// FrameInfo is a cheap peek at a frame's routing fields, taken without
// running the full envelope decode. Callers use it for logging and
// metrics labels; it makes no validity guarantees.
type FrameInfo struct {
	Op     uint64
	Label  string
	Seq    uint64
	HasSeq bool
}

// Probe extracts op, t and s from a raw frame by path lookup, skipping
// the payload entirely.
func Probe(data []byte) FrameInfo {
	results := gjson.GetManyBytes(data, "op", "t", "s")
	info := FrameInfo{
		Op:    results[0].Uint(),
		Label: results[1].String(),
	}
	if results[2].Exists() && results[2].Type != gjson.Null {
		info.Seq = results[2].Uint()
		info.HasSeq = true
	}
	return info
}

// IsDispatch reports whether the probed frame claims to be an event
// dispatch.
func (f FrameInfo) IsDispatch() bool {
	return OpCode(f.Op) == OpEvent
}
