// Package decode holds the generic value-buffering layer used by the
// gateway and voice envelope decoders. A payload is captured into a
// Content before its final shape is known, then re-decoded once the
// opcode and event type have been resolved.
package decode

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Kind identifies the variant held by a Content.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBytes
	KindSeq
	KindMap
)

// Pair is a single key/value entry of a buffered map. Insertion order is
// preserved and duplicate keys are kept; whoever re-decodes the map
// decides what to do with them.
type Pair struct {
	Key   Content
	Value Content
}

// Content is a fully-owned buffered value: any primitive, sequence or
// keyed map a self-describing payload can produce. Once captured it is
// independent of the source stream and can be re-decoded into concrete
// types any number of times.
type Content struct {
	kind  Kind
	b     bool
	i     int64
	u     uint64
	f     float64
	s     string
	raw   []byte
	seq   []Content
	pairs []Pair
}

func Null() Content            { return Content{kind: KindNull} }
func Bool(v bool) Content      { return Content{kind: KindBool, b: v} }
func Int(v int64) Content      { return Content{kind: KindInt, i: v} }
func Uint(v uint64) Content    { return Content{kind: KindUint, u: v} }
func Float(v float64) Content  { return Content{kind: KindFloat, f: v} }
func Str(v string) Content     { return Content{kind: KindString, s: v} }
func Bytes(v []byte) Content   { return Content{kind: KindBytes, raw: append([]byte(nil), v...)} }
func Seq(v []Content) Content  { return Content{kind: KindSeq, seq: v} }
func MapOf(v []Pair) Content   { return Content{kind: KindMap, pairs: v} }

// Kind reports which variant the content holds.
func (c Content) Kind() Kind { return c.kind }

// IsNull reports whether the content is the null variant.
func (c Content) IsNull() bool { return c.kind == KindNull }

// AsBool returns the boolean value, if the content holds one.
func (c Content) AsBool() (bool, bool) {
	if c.kind != KindBool {
		return false, false
	}
	return c.b, true
}

// AsString returns the string value, if the content holds one. Byte
// buffers are also accepted since both carry the textual form of a key.
func (c Content) AsString() (string, bool) {
	switch c.kind {
	case KindString:
		return c.s, true
	case KindBytes:
		return string(c.raw), true
	}
	return "", false
}

// AsUint64 returns the content as an unsigned integer when it holds a
// non-negative numeric value.
func (c Content) AsUint64() (uint64, bool) {
	switch c.kind {
	case KindUint:
		return c.u, true
	case KindInt:
		if c.i >= 0 {
			return uint64(c.i), true
		}
	case KindFloat:
		if c.f >= 0 && c.f == math.Trunc(c.f) {
			return uint64(c.f), true
		}
	}
	return 0, false
}

// Pairs returns the entries of a buffered map in insertion order.
func (c Content) Pairs() []Pair {
	return c.pairs
}

// Elems returns the elements of a buffered sequence.
func (c Content) Elems() []Content {
	return c.seq
}

// FromRaw buffers one complete JSON document.
func FromRaw(data []byte) (Content, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	c, err := Capture(dec)
	if err != nil {
		return Content{}, err
	}
	return c, nil
}

// FromValue buffers an arbitrary Go value. Values with no serializable
// shape (channels, funcs, complex numbers) fail with ErrUnsupportedShape.
func FromValue(v interface{}) (Content, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrUnsupportedShape, err)
	}
	return FromRaw(data)
}

// Capture consumes exactly one value from the token stream and buffers
// it. The decoder should have UseNumber set so integer precision is not
// lost through a float64 round trip.
func Capture(dec *json.Decoder) (Content, error) {
	tok, err := dec.Token()
	if err != nil {
		return Content{}, err
	}
	return captureToken(dec, tok)
}

func captureToken(dec *json.Decoder, tok json.Token) (Content, error) {
	switch v := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(v), nil
	case string:
		return Str(v), nil
	case json.Number:
		return numberContent(v)
	case float64:
		return Float(v), nil
	case json.Delim:
		switch v {
		case '[':
			var seq []Content
			for dec.More() {
				el, err := Capture(dec)
				if err != nil {
					return Content{}, err
				}
				seq = append(seq, el)
			}
			if _, err := dec.Token(); err != nil {
				return Content{}, err
			}
			return Seq(seq), nil
		case '{':
			var pairs []Pair
			for dec.More() {
				ktok, err := dec.Token()
				if err != nil {
					return Content{}, err
				}
				key, ok := ktok.(string)
				if !ok {
					return Content{}, fmt.Errorf("decode: non-string object key %v", ktok)
				}
				val, err := Capture(dec)
				if err != nil {
					return Content{}, err
				}
				pairs = append(pairs, Pair{Key: Str(key), Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return Content{}, err
			}
			return MapOf(pairs), nil
		}
	}
	return Content{}, fmt.Errorf("decode: unexpected token %v", tok)
}

func numberContent(n json.Number) (Content, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if strings.HasPrefix(s, "-") {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return Int(i), nil
			}
		} else if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return Uint(u), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return Content{}, fmt.Errorf("decode: bad number %q: %w", s, err)
	}
	return Float(f), nil
}

// Unmarshal re-decodes the buffered value into target. It may be called
// repeatedly with different targets.
func (c Content) Unmarshal(target interface{}) error {
	data, err := c.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// MarshalJSON renders the buffered value back out, preserving map entry
// order and duplicate keys.
func (c Content) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c Content) appendJSON(buf *bytes.Buffer) error {
	switch c.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(c.b))
	case KindInt:
		buf.WriteString(strconv.FormatInt(c.i, 10))
	case KindUint:
		buf.WriteString(strconv.FormatUint(c.u, 10))
	case KindFloat:
		if math.IsNaN(c.f) || math.IsInf(c.f, 0) {
			return fmt.Errorf("%w: non-finite float", ErrUnsupportedShape)
		}
		buf.WriteString(strconv.FormatFloat(c.f, 'g', -1, 64))
	case KindString, KindBytes:
		s := c.s
		if c.kind == KindBytes {
			s = string(c.raw)
		}
		escaped, err := json.Marshal(s)
		if err != nil {
			return err
		}
		buf.Write(escaped)
	case KindSeq:
		buf.WriteByte('[')
		for i, el := range c.seq {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := el.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, p := range c.pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, ok := p.Key.AsString()
			if !ok {
				return fmt.Errorf("%w: non-textual map key", ErrUnsupportedShape)
			}
			escaped, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(escaped)
			buf.WriteByte(':')
			if err := p.Value.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("%w: kind %d", ErrUnsupportedShape, c.kind)
	}
	return nil
}
