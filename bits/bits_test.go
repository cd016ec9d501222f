package bits

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt64Reconstruction(t *testing.T) {
	values := []int64{0, 1, -1, 255, -256, 1 << 53, -(1 << 53), math.MaxInt64, math.MinInt64, -123456789}

	buf := make([]byte, 8)
	for _, v := range values {
		WriteInt64Bytes(buf, v)
		assert.Equal(t, v, ReadInt64Bytes(buf), "value %d", v)
		assert.Equal(t, uint64(v), ReadUint64Bytes(buf))
	}
}

func TestInt64FloatReconstruction(t *testing.T) {
	buf := make([]byte, 8)

	for _, v := range []int64{0, -1, 1<<53 - 1, -(1<<53 - 1), -4096, math.MinInt64} {
		WriteInt64Bytes(buf, v)
		assert.Equal(t, float64(v), ReadInt64BytesFloat(buf), "value %d", v)
	}

	for _, v := range []uint64{0, 10, 1<<53 - 1, 1 << 63, math.MaxUint64} {
		WriteUint64Bytes(buf, v)
		assert.Equal(t, float64(v), ReadUint64BytesFloat(buf), "value %d", v)
	}
}

func TestBitfield(t *testing.T) {
	values := []bool{true, false, false, true, true, false, true, false, true}
	data := FromBools(values)

	require.Len(t, data, 2)
	assert.Equal(t, byte(0b0101_1001), data[0])
	assert.Equal(t, byte(0b1), data[1])
	assert.Equal(t, 5, Count(data, len(values)))

	SetBitTo(data, 1, true)
	SetBitTo(data, 8, false)

	assert.True(t, GetBit(data, 1))
	assert.False(t, GetBit(data, 8))
	assert.True(t, GetBit(data, 0))
	assert.Equal(t, 5, Count(data, len(values)))
}

func TestMapBytesToArray(t *testing.T) {
	data := make([]byte, 24)
	binary.LittleEndian.PutUint64(data[8:], 42)

	require.True(t, IsAligned[uint64](data))

	mapped := MapBytesToArray[uint64](data, 3)
	if binary.NativeEndian.Uint64(data[8:]) == 42 {
		assert.Equal(t, uint64(42), mapped[1])
	}

	mapped[2] = 7
	assert.Equal(t, uint64(7), binary.NativeEndian.Uint64(data[16:]))

	assert.Panics(t, func() { MapBytesToArray[uint64](data, 4) })
	assert.Nil(t, MapBytesToArray[uint64](data, 0))
}

func TestWriterReader(t *testing.T) {
	id := uuid.New()

	w := NewGrowingBuffer(2, binary.LittleEndian)
	w.PutUint16(0xbeef)
	w.PutUint32(7)
	w.PutInt64(-9)
	w.PutFloat64(1.25)
	w.Write(id[:])
	w.Write([]byte("tail"))

	r := NewBinReader(w.Bytes(), binary.LittleEndian)

	assert.Equal(t, uint16(0xbeef), r.MustReadU16())

	u32, err := r.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), u32)

	i64, err := r.ReadI64()
	require.NoError(t, err)
	assert.Equal(t, int64(-9), i64)

	f64, err := r.ReadF64()
	require.NoError(t, err)
	assert.Equal(t, 1.25, f64)

	readId, err := r.ReadUUID()
	require.NoError(t, err)
	assert.Equal(t, id, readId)

	tail, err := r.ReadBytes(4)
	require.NoError(t, err)
	assert.Equal(t, "tail", string(tail))

	assert.Equal(t, 0, r.Remaining())

	_, err = r.ReadU8()
	assert.ErrorIs(t, err, ErrEOF)
}

func TestFixedWriterPanics(t *testing.T) {
	w := NewEncodeBuffer(make([]byte, 2), binary.LittleEndian)
	w.PutUint16(1)

	assert.Panics(t, func() { w.PutUint16(2) })
}

func BenchmarkReadInt64Bytes(b *testing.B) {
	buf := make([]byte, 8)
	WriteInt64Bytes(buf, -1234567890123)

	for b.Loop() {
		ReadInt64Bytes(buf)
	}
}
