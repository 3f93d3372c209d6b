package irsdk

import (
	"sync/atomic"
	"unsafe"
)

// Region is a read-only typed view over a mapped telemetry region. It is
// built once per connection from a validated header; the producer keeps
// writing underneath it, so the few live fields are loaded atomically.
type Region struct {
	mem    []byte
	header Header
}

func NewRegion(mem []byte) (*Region, error) {
	h, err := decodeHeader(mem)
	if err != nil {
		return nil, err
	}
	return &Region{mem: mem, header: h}, nil
}

// Header returns the header as decoded at connection time.
func (r *Region) Header() Header {
	return r.header
}

func (r *Region) loadInt32(off int) int32 {
	return atomic.LoadInt32((*int32)(unsafe.Pointer(&r.mem[off])))
}

func (r *Region) Status() int32 {
	return r.loadInt32(offStatus)
}

func (r *Region) SessionInfoUpdate() int32 {
	return r.loadInt32(offSessionInfoUpdate)
}

// TickCount is the live tick stamp of data buffer i.
func (r *Region) TickCount(i int) int32 {
	return r.loadInt32(varBufOffset + i*varBufSize)
}

// Freshest scans every buffer's tick count and returns the index holding the
// newest data together with its tick.
func (r *Region) Freshest() (int, int32) {
	ticks := make([]int32, r.header.NumBuf)
	for i := range ticks {
		ticks[i] = r.TickCount(i)
	}
	idx := freshestIndex(ticks)
	return idx, ticks[idx]
}

// freshestIndex is the arg-max of ticks; ties go to the lowest index.
func freshestIndex(ticks []int32) int {
	best := 0
	for i := 1; i < len(ticks); i++ {
		if ticks[i] > ticks[best] {
			best = i
		}
	}
	return best
}

func (r *Region) varHeaderBytes(i int) []byte {
	off := int(r.header.VarHeaderOffset) + i*varHeaderSize
	return r.mem[off : off+varHeaderSize]
}

// Lookup scans the variable table for name. Entries whose data would not fit
// inside a buffer are reported as missing.
func (r *Region) Lookup(name string) (VarHeader, bool) {
	for i := 0; i < int(r.header.NumVars); i++ {
		b := r.varHeaderBytes(i)
		if !nameMatches(b[offVarName:offVarName+varNameLen], name) {
			continue
		}
		vh := decodeVarHeader(b)
		size := vh.Type.Size()
		if size == 0 || vh.Count < 1 || vh.Offset < 0 ||
			int64(vh.Offset)+int64(vh.Count)*int64(size) > int64(r.header.BufLen) {
			return VarHeader{}, false
		}
		return vh, true
	}
	return VarHeader{}, false
}

func (r *Region) Vars() []VarHeader {
	vars := make([]VarHeader, 0, r.header.NumVars)
	for i := 0; i < int(r.header.NumVars); i++ {
		vars = append(vars, decodeVarHeader(r.varHeaderBytes(i)))
	}
	return vars
}

// copyVar copies the raw bytes of vh out of buffer idx into dst.
func (r *Region) copyVar(idx int, vh VarHeader, dst []byte) {
	start := int(r.header.VarBuf[idx].BufOffset) + int(vh.Offset)
	copy(dst, r.mem[start:start+len(dst)])
}

// SessionInfoBytes returns the descriptor text up to its NUL terminator.
func (r *Region) SessionInfoBytes() []byte {
	start := int(r.header.SessionInfoOffset)
	raw := r.mem[start : start+int(r.header.SessionInfoLen)]
	out := make([]byte, len(raw))
	copy(out, raw)
	for i, c := range out {
		if c == 0 {
			return out[:i]
		}
	}
	return out
}
