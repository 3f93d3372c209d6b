// Package irsdktest builds in-memory telemetry regions laid out the way the
// simulator writes them, for tests of code that reads telemetry.
package irsdktest

import (
	"encoding/binary"
	"math"
	"sync/atomic"
	"time"
	"unsafe"

	"simrelative/pkg/irsdk"
)

const (
	headerSize    = 112
	varHeaderSize = 144
	sessionInfoSz = 64 * 1024
)

// Builder declares variables before the region is laid out.
type Builder struct {
	vars   []irsdk.VarHeader
	bufLen int
	numBuf int
}

func NewBuilder() *Builder {
	return &Builder{numBuf: irsdk.MaxBufs}
}

// Buffers sets how many rotating buffers the region advertises.
func (b *Builder) Buffers(n int) *Builder {
	b.numBuf = n
	return b
}

func (b *Builder) Var(name string, t irsdk.VarType, count int) *Builder {
	b.vars = append(b.vars, irsdk.VarHeader{
		Type:   t,
		Offset: int32(b.bufLen),
		Count:  int32(count),
		Name:   name,
	})
	b.bufLen += t.Size() * count
	// keep every variable 4-byte aligned
	if rem := b.bufLen % 4; rem != 0 {
		b.bufLen += 4 - rem
	}
	return b
}

// Region is a writable in-memory telemetry region.
type Region struct {
	Mem        []byte
	vars       map[string]irsdk.VarHeader
	bufOffsets []int
	infoOffset int
}

func align16(n int) int {
	return (n + 15) &^ 15
}

func (b *Builder) Build() *Region {
	varTable := headerSize
	infoOffset := align16(varTable + len(b.vars)*varHeaderSize)
	bufStart := align16(infoOffset + sessionInfoSz)
	bufLen := align16(b.bufLen)
	if bufLen == 0 {
		bufLen = 16
	}
	mem := make([]byte, bufStart+bufLen*b.numBuf)

	le := binary.LittleEndian
	le.PutUint32(mem[0:], irsdk.Version)
	le.PutUint32(mem[8:], 60)
	le.PutUint32(mem[16:], sessionInfoSz)
	le.PutUint32(mem[20:], uint32(infoOffset))
	le.PutUint32(mem[24:], uint32(len(b.vars)))
	le.PutUint32(mem[28:], uint32(varTable))
	le.PutUint32(mem[32:], uint32(b.numBuf))
	le.PutUint32(mem[36:], uint32(bufLen))

	r := &Region{
		Mem:        mem,
		vars:       map[string]irsdk.VarHeader{},
		infoOffset: infoOffset,
	}
	for i := 0; i < b.numBuf; i++ {
		off := bufStart + i*bufLen
		le.PutUint32(mem[48+i*16+4:], uint32(off))
		r.bufOffsets = append(r.bufOffsets, off)
	}
	for i, v := range b.vars {
		vh := mem[varTable+i*varHeaderSize:]
		le.PutUint32(vh[0:], uint32(v.Type))
		le.PutUint32(vh[4:], uint32(v.Offset))
		le.PutUint32(vh[8:], uint32(v.Count))
		copy(vh[16:48], v.Name)
		r.vars[v.Name] = v
	}
	return r
}

// store writes a live header field the way the producer does, atomically.
func (r *Region) store(off int, v int32) {
	atomic.StoreInt32((*int32)(unsafe.Pointer(&r.Mem[off])), v)
}

func (r *Region) SetVersion(v int32) {
	binary.LittleEndian.PutUint32(r.Mem[0:], uint32(v))
}

// SetActive flips the producer's session-running status bit.
func (r *Region) SetActive(active bool) {
	var s int32
	if active {
		s = irsdk.StatusConnected
	}
	r.store(4, s)
}

func (r *Region) SetTick(buf int, tick int32) {
	r.store(48+buf*16, tick)
}

// SetSessionInfo writes the descriptor text and bumps its version counter.
func (r *Region) SetSessionInfo(text string, update int32) {
	info := r.Mem[r.infoOffset : r.infoOffset+sessionInfoSz]
	for i := range info {
		info[i] = 0
	}
	copy(info[:sessionInfoSz-1], text)
	r.store(12, update)
}

func (r *Region) slot(buf int, name string, idx int) []byte {
	v, ok := r.vars[name]
	if !ok {
		panic("irsdktest: unknown variable " + name)
	}
	off := r.bufOffsets[buf] + int(v.Offset) + idx*v.Type.Size()
	return r.Mem[off : off+v.Type.Size()]
}

func (r *Region) SetInt(buf int, name string, idx int, v int32) {
	binary.LittleEndian.PutUint32(r.slot(buf, name, idx), uint32(v))
}

func (r *Region) SetFloat(buf int, name string, idx int, v float32) {
	binary.LittleEndian.PutUint32(r.slot(buf, name, idx), math.Float32bits(v))
}

func (r *Region) SetDouble(buf int, name string, idx int, v float64) {
	binary.LittleEndian.PutUint64(r.slot(buf, name, idx), math.Float64bits(v))
}

func (r *Region) SetBool(buf int, name string, idx int, v bool) {
	var b byte
	if v {
		b = 1
	}
	r.slot(buf, name, idx)[0] = b
}

// Signal is a manually fired readiness signal.
type Signal struct {
	Fired  chan struct{}
	Closed bool
}

func NewSignal() *Signal {
	return &Signal{Fired: make(chan struct{}, 1)}
}

// Fire makes the next Wait return true.
func (s *Signal) Fire() {
	select {
	case s.Fired <- struct{}{}:
	default:
	}
}

func (s *Signal) Wait(timeout time.Duration) bool {
	select {
	case <-s.Fired:
		return true
	default:
	}
	select {
	case <-s.Fired:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *Signal) Close() error {
	s.Closed = true
	return nil
}

// Opener serves a Region and an optional Signal to irsdk.Client.
type Opener struct {
	Region *Region
	Signal *Signal
	Opens  int
}

func (o *Opener) OpenRegion(name string) (irsdk.Mapping, error) {
	if o.Region == nil {
		return nil, irsdk.ErrConnectionUnavailable
	}
	o.Opens++
	return irsdk.BytesMapping(o.Region.Mem), nil
}

func (o *Opener) OpenSignal(name string) (irsdk.Signal, error) {
	if o.Signal == nil {
		return nil, irsdk.ErrNoSignal
	}
	return o.Signal, nil
}
