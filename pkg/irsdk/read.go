package irsdk

import (
	"encoding/binary"
	"math"
)

// Value lists the Go types a telemetry variable can be read as.
type Value interface {
	uint8 | bool | int32 | uint32 | float32 | float64
}

// compatible reports whether a variable of kind t can be read as T.
func compatible[T Value](t VarType) bool {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return t == TypeChar
	case bool:
		return t == TypeBool
	case int32, uint32:
		return t == TypeInt || t == TypeBitField
	case float32:
		return t == TypeFloat
	case float64:
		return t == TypeFloat || t == TypeDouble
	}
	return false
}

func decodeValue[T Value](t VarType, b []byte) T {
	var v any
	switch t {
	case TypeChar:
		v = b[0]
	case TypeBool:
		v = b[0] != 0
	case TypeInt, TypeBitField:
		u := binary.LittleEndian.Uint32(b)
		var zero T
		if _, ok := any(zero).(uint32); ok {
			v = u
		} else {
			v = int32(u)
		}
	case TypeFloat:
		f := math.Float32frombits(binary.LittleEndian.Uint32(b))
		var zero T
		if _, ok := any(zero).(float64); ok {
			v = float64(f)
		} else {
			v = f
		}
	case TypeDouble:
		v = math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return v.(T)
}

// read copies up to limit elements (all when limit <= 0) of name out of the
// current buffer. The buffer's tick is sampled around the copy; a difference
// means the producer rewrote it mid-read and the values are discarded.
func read[T Value](c *Client, name string, limit int) ([]T, bool) {
	if c.region == nil {
		return nil, false
	}
	vh, ok := c.region.Lookup(name)
	if !ok || !compatible[T](vh.Type) {
		return nil, false
	}
	n := int(vh.Count)
	if limit > 0 && limit < n {
		n = limit
	}
	size := vh.Type.Size()
	raw := make([]byte, n*size)

	before := c.region.TickCount(c.bufIdx)
	c.region.copyVar(c.bufIdx, vh, raw)
	if c.onCopied != nil {
		c.onCopied()
	}
	if after := c.region.TickCount(c.bufIdx); after != before {
		return nil, false
	}

	out := make([]T, n)
	for i := range out {
		out[i] = decodeValue[T](vh.Type, raw[i*size:])
	}
	return out, true
}

// ReadScalar returns the first element of name, or def when the variable is
// missing, of another kind, or was torn by a concurrent write.
func ReadScalar[T Value](c *Client, name string, def T) T {
	vals, ok := read[T](c, name, 1)
	if !ok {
		return def
	}
	return vals[0]
}

// ReadArray returns every element of name with the same fallback rules as
// ReadScalar.
func ReadArray[T Value](c *Client, name string, def []T) []T {
	vals, ok := read[T](c, name, 0)
	if !ok {
		return def
	}
	return vals
}

func (c *Client) Int(name string, def int) int {
	return int(ReadScalar(c, name, int32(def)))
}

func (c *Client) Float(name string, def float64) float64 {
	return ReadScalar(c, name, def)
}

func (c *Client) Bool(name string, def bool) bool {
	return ReadScalar(c, name, def)
}

func (c *Client) Ints(name string, def []int) []int {
	vals, ok := read[int32](c, name, 0)
	if !ok {
		return def
	}
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = int(v)
	}
	return out
}

func (c *Client) Floats(name string, def []float64) []float64 {
	return ReadArray(c, name, def)
}

func (c *Client) Bools(name string, def []bool) []bool {
	return ReadArray(c, name, def)
}
