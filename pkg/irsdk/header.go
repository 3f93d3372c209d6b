package irsdk

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// Version is the only shared memory protocol version this client reads.
	Version = 2

	// StatusConnected is set by the simulator while a session is running.
	StatusConnected = 1

	MaxBufs = 4

	headerSize    = 112
	varBufOffset  = 48
	varBufSize    = 16
	varHeaderSize = 144
)

// header field offsets
const (
	offVer               = 0
	offStatus            = 4
	offTickRate          = 8
	offSessionInfoUpdate = 12
	offSessionInfoLen    = 16
	offSessionInfoOffset = 20
	offNumVars           = 24
	offVarHeaderOffset   = 28
	offNumBuf            = 32
	offBufLen            = 36
)

type VarBuf struct {
	TickCount int32
	BufOffset int32
}

// Header mirrors the fixed block at the start of the shared region.
type Header struct {
	Ver               int32
	Status            int32
	TickRate          int32
	SessionInfoUpdate int32
	SessionInfoLen    int32
	SessionInfoOffset int32
	NumVars           int32
	VarHeaderOffset   int32
	NumBuf            int32
	BufLen            int32
	VarBuf            [MaxBufs]VarBuf
}

func readInt32(b []byte, off int) int32 {
	return int32(binary.LittleEndian.Uint32(b[off : off+4]))
}

// decodeHeader parses the header and checks that every table it points to
// lies inside the mapping.
func decodeHeader(b []byte) (Header, error) {
	var h Header
	if len(b) < headerSize {
		return h, errors.Wrapf(ErrRegionCorrupt, "region is %d bytes, header needs %d", len(b), headerSize)
	}
	h.Ver = readInt32(b, offVer)
	if h.Ver != Version {
		return h, errors.Wrapf(ErrVersionMismatch, "got version %d, want %d", h.Ver, Version)
	}
	h.Status = readInt32(b, offStatus)
	h.TickRate = readInt32(b, offTickRate)
	h.SessionInfoUpdate = readInt32(b, offSessionInfoUpdate)
	h.SessionInfoLen = readInt32(b, offSessionInfoLen)
	h.SessionInfoOffset = readInt32(b, offSessionInfoOffset)
	h.NumVars = readInt32(b, offNumVars)
	h.VarHeaderOffset = readInt32(b, offVarHeaderOffset)
	h.NumBuf = readInt32(b, offNumBuf)
	h.BufLen = readInt32(b, offBufLen)
	for i := 0; i < MaxBufs; i++ {
		off := varBufOffset + i*varBufSize
		h.VarBuf[i] = VarBuf{
			TickCount: readInt32(b, off),
			BufOffset: readInt32(b, off+4),
		}
	}

	size := int64(len(b))
	if h.NumBuf < 1 || h.NumBuf > MaxBufs {
		return h, errors.Wrapf(ErrRegionCorrupt, "buffer count %d out of range", h.NumBuf)
	}
	if h.NumVars < 0 || h.VarHeaderOffset < headerSize ||
		int64(h.VarHeaderOffset)+int64(h.NumVars)*varHeaderSize > size {
		return h, errors.Wrap(ErrRegionCorrupt, "variable table outside region")
	}
	if h.BufLen < 0 {
		return h, errors.Wrapf(ErrRegionCorrupt, "negative buffer length %d", h.BufLen)
	}
	for i := 0; i < int(h.NumBuf); i++ {
		off := int64(h.VarBuf[i].BufOffset)
		if off < headerSize || off+int64(h.BufLen) > size {
			return h, errors.Wrapf(ErrRegionCorrupt, "data buffer %d outside region", i)
		}
	}
	if h.SessionInfoLen < 0 || h.SessionInfoOffset < 0 ||
		int64(h.SessionInfoOffset)+int64(h.SessionInfoLen) > size {
		return h, errors.Wrap(ErrRegionCorrupt, "session info outside region")
	}
	return h, nil
}
