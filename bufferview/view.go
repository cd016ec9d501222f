package bufferview

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/dot5enko/metatable/bits"
	"github.com/dot5enko/metatable/schema"
	"golang.org/x/sys/cpu"
)

var (
	ErrBufferTooSmall  = errors.New("buffer too small for view")
	ErrUnsupportedType = errors.New("unsupported buffer view type")
)

type mode64 uint8

const (
	// typed storage over the buffer
	storage64 mode64 = iota
	// exact byte-wise reconstruction
	exact64
	// byte-wise reconstruction into float64
	degraded64
)

// View is a typed accessor over a byte range of a shared buffer. It never
// copies the buffer and does no bounds checking past construction.
type View struct {
	data   []byte
	typ    schema.ValueType
	length int
	mode   mode64

	// zero-copy typed storage, only set on little endian hosts for aligned data
	int64s  []int64
	uint64s []uint64
}

// ByteLength is the number of bytes length elements of typ occupy.
func ByteLength(typ schema.ValueType, length int) int {
	if typ == schema.BooleanValueType {
		return bits.BytesForBits(length)
	}
	return length * typ.Size()
}

func New(buffer []byte, byteOffset int, typ schema.ValueType, length int, host *Host) (*View, error) {

	if typ != schema.BooleanValueType && !schema.IsNumeric(typ) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ.String())
	}

	if length < 0 || byteOffset < 0 {
		return nil, fmt.Errorf("invalid view range: offset %d, length %d", byteOffset, length)
	}

	byteLength := ByteLength(typ, length)
	end := byteOffset + byteLength

	if end > len(buffer) {
		return nil, fmt.Errorf("%w: %d %s elements at offset %d need %d bytes, buffer has %d", ErrBufferTooSmall, length, typ.String(), byteOffset, end, len(buffer))
	}

	view := &View{
		data:   buffer[byteOffset:end:end],
		typ:    typ,
		length: length,
	}

	if typ.Is64Bit() {
		caps := host.Capabilities()

		switch {
		case !caps.NativeInt64:
			view.mode = degraded64
			host.warnDegraded(typ)
		case !caps.NativeInt64Storage:
			view.mode = exact64
		default:
			view.mode = storage64
			view.mapStorage()
		}
	}

	return view, nil
}

func (v *View) mapStorage() {
	if cpu.IsBigEndian || !bits.IsAligned[int64](v.data) {
		return
	}

	if v.typ == schema.Int64ValueType {
		v.int64s = bits.MapBytesToArray[int64](v.data, v.length)
	} else {
		v.uint64s = bits.MapBytesToArray[uint64](v.data, v.length)
	}
}

func (v *View) Len() int {
	return v.length
}

func (v *View) Type() schema.ValueType {
	return v.typ
}

// Degraded reports whether 64-bit reads come back as float64.
func (v *View) Degraded() bool {
	return v.mode == degraded64
}

// Bytes returns a sub-range of the raw bytes, used for UTF-8 payloads.
func (v *View) Bytes(from, to int) []byte {
	return v.data[from:to]
}

// Get returns element i as int64, uint64, float64 or bool.
func (v *View) Get(i int) any {
	le := binary.LittleEndian

	switch v.typ {
	case schema.BooleanValueType:
		return bits.GetBit(v.data, i)
	case schema.Int8ValueType:
		return int64(int8(v.data[i]))
	case schema.Uint8ValueType:
		return uint64(v.data[i])
	case schema.Int16ValueType:
		return int64(int16(le.Uint16(v.data[2*i:])))
	case schema.Uint16ValueType:
		return uint64(le.Uint16(v.data[2*i:]))
	case schema.Int32ValueType:
		return int64(int32(le.Uint32(v.data[4*i:])))
	case schema.Uint32ValueType:
		return uint64(le.Uint32(v.data[4*i:]))
	case schema.Float32ValueType:
		return float64(math.Float32frombits(le.Uint32(v.data[4*i:])))
	case schema.Float64ValueType:
		return math.Float64frombits(le.Uint64(v.data[8*i:]))
	case schema.Int64ValueType:
		return v.getInt64(i)
	case schema.Uint64ValueType:
		return v.getUint64(i)
	}

	panic("unknown view type " + v.typ.String())
}

func (v *View) getInt64(i int) any {
	raw := v.data[8*i : 8*i+8]

	switch v.mode {
	case degraded64:
		return bits.ReadInt64BytesFloat(raw)
	case exact64:
		return bits.ReadInt64Bytes(raw)
	}

	if v.int64s != nil {
		return v.int64s[i]
	}
	return int64(binary.LittleEndian.Uint64(raw))
}

func (v *View) getUint64(i int) any {
	raw := v.data[8*i : 8*i+8]

	switch v.mode {
	case degraded64:
		return bits.ReadUint64BytesFloat(raw)
	case exact64:
		return bits.ReadUint64Bytes(raw)
	}

	if v.uint64s != nil {
		return v.uint64s[i]
	}
	return binary.LittleEndian.Uint64(raw)
}

// Offset reads element i of an offset view as an int.
func (v *View) Offset(i int) int {
	le := binary.LittleEndian

	switch v.typ {
	case schema.Uint8ValueType:
		return int(v.data[i])
	case schema.Uint16ValueType:
		return int(le.Uint16(v.data[2*i:]))
	case schema.Uint32ValueType:
		return int(le.Uint32(v.data[4*i:]))
	case schema.Uint64ValueType:
		return int(bits.ReadUint64Bytes(v.data[8*i : 8*i+8]))
	}

	panic("not an offset view: " + v.typ.String())
}

// Set writes element i. value must already be validated and in canonical form.
func (v *View) Set(i int, value any) {
	le := binary.LittleEndian

	switch v.typ {
	case schema.BooleanValueType:
		bits.SetBitTo(v.data, i, value.(bool))
	case schema.Int8ValueType:
		v.data[i] = byte(int8(asInt64(value)))
	case schema.Uint8ValueType:
		v.data[i] = byte(asUint64(value))
	case schema.Int16ValueType:
		le.PutUint16(v.data[2*i:], uint16(int16(asInt64(value))))
	case schema.Uint16ValueType:
		le.PutUint16(v.data[2*i:], uint16(asUint64(value)))
	case schema.Int32ValueType:
		le.PutUint32(v.data[4*i:], uint32(int32(asInt64(value))))
	case schema.Uint32ValueType:
		le.PutUint32(v.data[4*i:], uint32(asUint64(value)))
	case schema.Float32ValueType:
		le.PutUint32(v.data[4*i:], math.Float32bits(float32(asFloat(value))))
	case schema.Float64ValueType:
		le.PutUint64(v.data[8*i:], math.Float64bits(asFloat(value)))
	case schema.Int64ValueType:
		if v.int64s != nil {
			v.int64s[i] = asInt64(value)
		} else {
			bits.WriteInt64Bytes(v.data[8*i:8*i+8], asInt64(value))
		}
	case schema.Uint64ValueType:
		if v.uint64s != nil {
			v.uint64s[i] = asUint64(value)
		} else {
			bits.WriteUint64Bytes(v.data[8*i:8*i+8], asUint64(value))
		}
	default:
		panic("unknown view type " + v.typ.String())
	}
}

func asInt64(value any) int64 {
	switch t := value.(type) {
	case int64:
		return t
	case uint64:
		return int64(t)
	case float64:
		return schema.ClampInt(math.Round(t), math.MinInt64, math.MaxInt64)
	}
	panic(fmt.Sprintf("not an integer value: %v (%T)", value, value))
}

func asUint64(value any) uint64 {
	switch t := value.(type) {
	case uint64:
		return t
	case int64:
		return uint64(t)
	case float64:
		return schema.ClampUint(math.Round(t), math.MaxUint64)
	}
	panic(fmt.Sprintf("not an integer value: %v (%T)", value, value))
}

func asFloat(value any) float64 {
	f, ok := schema.ToFloat(value)
	if !ok {
		panic(fmt.Sprintf("not a numeric value: %v (%T)", value, value))
	}
	return f
}
