package irsdk

import (
	"bytes"
	"fmt"
)

// VarType is the scalar kind of a telemetry variable.
type VarType int32

const (
	TypeChar VarType = iota
	TypeBool
	TypeInt
	TypeBitField
	TypeFloat
	TypeDouble
)

var typeSizes = [...]int{
	TypeChar:     1,
	TypeBool:     1,
	TypeInt:      4,
	TypeBitField: 4,
	TypeFloat:    4,
	TypeDouble:   8,
}

// Size is the width in bytes of one element, 0 for unknown kinds.
func (t VarType) Size() int {
	if t < 0 || int(t) >= len(typeSizes) {
		return 0
	}
	return typeSizes[t]
}

func (t VarType) String() string {
	switch t {
	case TypeChar:
		return "char"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeBitField:
		return "bitfield"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	}
	return fmt.Sprintf("VarType(%d)", int32(t))
}

// VarHeader describes one variable inside every data buffer.
type VarHeader struct {
	Type        VarType
	Offset      int32
	Count       int32
	CountAsTime bool
	Name        string
	Desc        string
	Unit        string
}

const (
	varNameLen = 32
	varDescLen = 64
	varUnitLen = 32

	offVarType        = 0
	offVarOffset      = 4
	offVarCount       = 8
	offVarCountAsTime = 12
	offVarName        = 16
	offVarDesc        = offVarName + varNameLen
	offVarUnit        = offVarDesc + varDescLen
)

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func decodeVarHeader(b []byte) VarHeader {
	return VarHeader{
		Type:        VarType(readInt32(b, offVarType)),
		Offset:      readInt32(b, offVarOffset),
		Count:       readInt32(b, offVarCount),
		CountAsTime: b[offVarCountAsTime] != 0,
		Name:        cString(b[offVarName : offVarName+varNameLen]),
		Desc:        cString(b[offVarDesc : offVarDesc+varDescLen]),
		Unit:        cString(b[offVarUnit : offVarUnit+varUnitLen]),
	}
}

// nameMatches compares a fixed-width, NUL padded name field against name
// without allocating.
func nameMatches(field []byte, name string) bool {
	if len(name) > len(field) {
		return false
	}
	for i := 0; i < len(name); i++ {
		if field[i] != name[i] {
			return false
		}
	}
	return len(name) == len(field) || field[len(name)] == 0
}
