package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceIntegers(t *testing.T) {
	cases := []struct {
		typ   ValueType
		value any
		want  any
		err   error
	}{
		{Uint8ValueType, 255, uint64(255), nil},
		{Uint8ValueType, 256, nil, ErrOutOfRange},
		{Uint8ValueType, -1, nil, ErrOutOfRange},
		{Uint8ValueType, 3.0, uint64(3), nil},
		{Uint8ValueType, 3.5, nil, ErrTypeMismatch},
		{Uint8ValueType, "3", nil, ErrTypeMismatch},
		{Int8ValueType, int8(-128), int64(-128), nil},
		{Int8ValueType, -129, nil, ErrOutOfRange},
		{Int64ValueType, uint64(math.MaxInt64) + 1, nil, ErrOutOfRange},
		{Int64ValueType, int64(math.MinInt64), int64(math.MinInt64), nil},
		{Uint64ValueType, uint64(math.MaxUint64), uint64(math.MaxUint64), nil},
		{Uint64ValueType, math.Inf(1), nil, ErrOutOfRange},
		{Uint32ValueType, math.NaN(), nil, ErrOutOfRange},
		{Float32ValueType, math.MaxFloat64, nil, ErrOutOfRange},
		{Float32ValueType, math.Inf(-1), math.Inf(-1), nil},
		{Float64ValueType, float32(0.5), 0.5, nil},
		{BooleanValueType, 1, nil, ErrTypeMismatch},
		{StringValueType, "x", "x", nil},
	}

	for _, tc := range cases {
		prop := &ClassProperty{Id: "p", Type: tc.typ}
		got, err := prop.CoerceValue(tc.value)

		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, "%s %v", tc.typ.String(), tc.value)
			continue
		}

		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s %v", tc.typ.String(), tc.value)
	}
}

func TestCoerceArrays(t *testing.T) {
	fixed := &ClassProperty{Id: "f", Type: ArrayValueType, ComponentType: Int16ValueType, ComponentCount: 2}
	variable := &ClassProperty{Id: "v", Type: ArrayValueType, ComponentType: BooleanValueType}

	got, err := fixed.CoerceValue([]any{1, int8(-2)})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, -2}, got)

	_, err = fixed.CoerceValue([]int{1})
	assert.ErrorIs(t, err, ErrArrayLengthMismatch)

	_, err = fixed.CoerceValue(1)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = fixed.CoerceValue([]int{1, 1 << 16})
	assert.ErrorIs(t, err, ErrOutOfRange)

	got, err = variable.CoerceValue([3]bool{true, false, true})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, got)

	got, err = variable.CoerceValue([]bool{})
	require.NoError(t, err)
	assert.Equal(t, []bool{}, got)

	_, err = variable.CoerceValue("true")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestCoerceNormalized(t *testing.T) {
	prop := &ClassProperty{Id: "n", Type: Int16ValueType, Normalized: true}

	got, err := prop.CoerceValue(-1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt16), got)

	got, err = prop.CoerceValue(0.5)
	require.NoError(t, err)
	assert.Equal(t, int64(16384), got)

	_, err = prop.CoerceValue(1.0001)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), "normalized")

	raw, err := prop.CoerceRaw(300)
	require.NoError(t, err)
	assert.Equal(t, int64(300), raw)

	// normalization only applies to integer storage
	floats := &ClassProperty{Id: "f", Type: Float32ValueType, Normalized: true}
	got, err = floats.CoerceValue(12.5)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got)
}

func TestEnumAndClass(t *testing.T) {
	enum, err := NewEnum("kind", NoValueType, EnumValue{Name: "A", Value: 1}, EnumValue{Name: "B", Value: 2})
	require.NoError(t, err)
	assert.Equal(t, DefaultEnumValueType, enum.ValueType)

	v, ok := enum.ValueByName("B")
	assert.True(t, ok)
	assert.Equal(t, int64(2), v)

	name, ok := enum.NameByValue(1)
	assert.True(t, ok)
	assert.Equal(t, "A", name)

	_, err = NewEnum("bad", NoValueType, EnumValue{Name: "A"}, EnumValue{Name: "A", Value: 1})
	assert.Error(t, err)

	_, err = NewEnum("bad", StringValueType)
	assert.Error(t, err)

	class, err := NewClass("c",
		&ClassProperty{Id: "kind", Type: EnumValueType, EnumType: enum, Semantic: "KIND", Default: "A"},
		&ClassProperty{Id: "list", Type: ArrayValueType, ComponentType: Uint8ValueType, Default: []int{1, 2}},
	)
	require.NoError(t, err)

	prop, ok := class.PropertyBySemantic("KIND")
	require.True(t, ok)
	assert.Equal(t, "kind", prop.Id)
	assert.Equal(t, Uint16ValueType, prop.ValueType())
	assert.Equal(t, []uint64{1, 2}, class.Properties[1].Default)

	_, err = prop.CoerceValue("C")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = NewClass("dup",
		&ClassProperty{Id: "a", Type: Uint8ValueType, Semantic: "S"},
		&ClassProperty{Id: "b", Type: Uint8ValueType, Semantic: "S"},
	)
	assert.Error(t, err)

	_, err = NewClass("default", &ClassProperty{Id: "a", Type: Uint8ValueType, Default: 900})
	assert.ErrorIs(t, err, ErrOutOfRange)

	var none *Class
	_, ok = none.Property("a")
	assert.False(t, ok)
}

func TestZeroValueTypeIsUnset(t *testing.T) {
	var typ ValueType
	assert.Equal(t, NoValueType, typ)

	enum, err := NewEnum("kind", 0, EnumValue{Name: "A", Value: 1})
	require.NoError(t, err)
	assert.Equal(t, DefaultEnumValueType, enum.ValueType)

	_, err = NewClass("c", &ClassProperty{Id: "list", Type: ArrayValueType})
	assert.Error(t, err)

	_, err = NewClass("c", &ClassProperty{Id: "untyped"})
	assert.Error(t, err)

	class, err := NewClass("c", &ClassProperty{Id: "small", Type: Int8ValueType})
	require.NoError(t, err)
	assert.Equal(t, Int8ValueType, class.Properties[0].ElementType())
}

func TestValueHelpers(t *testing.T) {
	src := []int64{1, 2}
	clone := CloneValue(src).([]int64)
	clone[0] = 9
	assert.Equal(t, []int64{1, 2}, src)

	other := []int{1}
	CloneValue(other).([]int)[0] = 5
	assert.Equal(t, []int{1}, other)

	assert.Equal(t, "x", CloneValue("x"))
	assert.Equal(t, []float64{0, 1}, NormalizeValue([]uint64{0, 255}, Uint8ValueType))
	assert.Equal(t, []float64{-1, 4}, DegradeValue([]int64{-1, 4}))
	assert.Equal(t, 3.0, DegradeValue(uint64(3)))

	typ, err := ParseValueType("UINT16")
	require.NoError(t, err)
	assert.Equal(t, Uint16ValueType, typ)

	_, err = ParseValueType("UINT128")
	assert.Error(t, err)
}
