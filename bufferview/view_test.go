package bufferview

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/dot5enko/metatable/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Bytes(values ...int64) []byte {
	out := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[8*i:], uint64(v))
	}
	return out
}

func TestViewBounds(t *testing.T) {
	buf := make([]byte, 10)

	_, err := New(buf, 2, schema.Uint32ValueType, 2, nil)
	assert.NoError(t, err)

	_, err = New(buf, 3, schema.Uint32ValueType, 2, nil)
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	_, err = New(buf, 0, schema.BooleanValueType, 80, nil)
	assert.NoError(t, err)

	_, err = New(buf, 0, schema.BooleanValueType, 81, nil)
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	_, err = New(buf, 0, schema.StringValueType, 1, nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestViewFixedWidth(t *testing.T) {
	buf := make([]byte, 1+4*3)
	view, err := New(buf, 1, schema.Int32ValueType, 3, nil)
	require.NoError(t, err)

	view.Set(0, int64(-1))
	view.Set(1, int64(math.MaxInt32))
	view.Set(2, int64(math.MinInt32))

	assert.Equal(t, byte(0), buf[0])
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, buf[1:5])
	assert.Equal(t, int64(math.MaxInt32), view.Get(1))
	assert.Equal(t, int64(math.MinInt32), view.Get(2))

	floats, err := New(make([]byte, 8), 0, schema.Float32ValueType, 2, nil)
	require.NoError(t, err)
	floats.Set(1, 0.5)
	assert.Equal(t, 0.5, floats.Get(1))
}

func TestViewBooleanSiblings(t *testing.T) {
	buf := []byte{0b1010_1010, 0xff}
	view, err := New(buf, 0, schema.BooleanValueType, 16, nil)
	require.NoError(t, err)

	assert.Equal(t, false, view.Get(0))
	assert.Equal(t, true, view.Get(1))

	view.Set(0, true)
	view.Set(9, false)

	assert.Equal(t, byte(0b1010_1011), buf[0])
	assert.Equal(t, byte(0b1111_1101), buf[1])
}

func TestViewOffsets(t *testing.T) {
	for _, typ := range []schema.ValueType{schema.Uint8ValueType, schema.Uint16ValueType, schema.Uint32ValueType, schema.Uint64ValueType} {
		buf := make([]byte, 3*typ.Size())
		view, err := New(buf, 0, typ, 3, nil)
		require.NoError(t, err)

		view.Set(1, uint64(7))
		view.Set(2, uint64(200))

		assert.Equal(t, 0, view.Offset(0), typ.String())
		assert.Equal(t, 7, view.Offset(1), typ.String())
		assert.Equal(t, 200, view.Offset(2), typ.String())
	}
}

func TestView64Modes(t *testing.T) {
	values := []int64{0, -1, math.MinInt64, math.MaxInt64, 1<<53 + 1}

	cases := []struct {
		name     string
		caps     Capabilities
		degraded bool
	}{
		{"storage", NativeCapabilities, false},
		{"exact", Capabilities{NativeInt64: true}, false},
		{"degraded", Capabilities{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			warned := 0
			host := NewHost(tc.caps, func(string) { warned++ })

			for _, pad := range []int{0, 1, 4} {
				buf := make([]byte, pad+8*len(values))
				copy(buf[pad:], int64Bytes(values...))

				view, err := New(buf, pad, schema.Int64ValueType, len(values), host)
				require.NoError(t, err)
				assert.Equal(t, tc.degraded, view.Degraded())

				for i, v := range values {
					if tc.degraded {
						assert.Equal(t, float64(v), view.Get(i))
					} else {
						assert.Equal(t, v, view.Get(i))
					}
				}

				view.Set(4, int64(-42))
				assert.Equal(t, int64Bytes(-42), buf[pad+32:pad+40])
			}

			if tc.degraded {
				assert.Equal(t, 1, warned)
			} else {
				assert.Equal(t, 0, warned)
			}
		})
	}
}

func TestViewUint64Degraded(t *testing.T) {
	host := NewHost(Capabilities{}, func(string) {})

	buf := make([]byte, 16)
	view, err := New(buf, 0, schema.Uint64ValueType, 2, host)
	require.NoError(t, err)

	view.Set(0, uint64(math.MaxUint64))
	view.Set(1, uint64(1)<<53-1)

	assert.Equal(t, float64(math.MaxUint64), view.Get(0))
	assert.Equal(t, float64(1<<53-1), view.Get(1))
	assert.True(t, host.Degraded(schema.Uint64ValueType))
	assert.False(t, host.Degraded(schema.Uint32ValueType))
	assert.True(t, host.SlowPath(schema.Uint64ValueType))
}

func TestDefaultHost(t *testing.T) {
	assert.Same(t, DefaultHost(), DefaultHost())
	assert.Equal(t, NativeCapabilities, DefaultHost().Capabilities())

	var nilHost *Host
	assert.False(t, nilHost.Degraded(schema.Int64ValueType))
	assert.False(t, nilHost.SlowPath(schema.Int64ValueType))
}

func BenchmarkViewGetInt64(b *testing.B) {
	buf := make([]byte, 8*1024)
	view, err := New(buf, 0, schema.Int64ValueType, 1024, nil)
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		for i := 0; i < 1024; i++ {
			view.Get(i)
		}
	}
}
