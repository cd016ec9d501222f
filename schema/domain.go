package schema

import (
	"math"

	"golang.org/x/exp/constraints"
)

type Bounds struct {
	Min float64
	Max float64
}

func IsInteger(typ ValueType) bool {
	switch typ {
	case Int8ValueType, Uint8ValueType,
		Int16ValueType, Uint16ValueType,
		Int32ValueType, Uint32ValueType,
		Int64ValueType, Uint64ValueType:
		return true
	default:
		return false
	}
}

func IsUnsignedInteger(typ ValueType) bool {
	switch typ {
	case Uint8ValueType, Uint16ValueType, Uint32ValueType, Uint64ValueType:
		return true
	default:
		return false
	}
}

func IsFloat(typ ValueType) bool {
	return typ == Float32ValueType || typ == Float64ValueType
}

func IsNumeric(typ ValueType) bool {
	return IsInteger(typ) || IsFloat(typ)
}

// MinInteger is the exact lower bound of an integer type.
func MinInteger(typ ValueType) int64 {
	switch typ {
	case Int8ValueType:
		return math.MinInt8
	case Int16ValueType:
		return math.MinInt16
	case Int32ValueType:
		return math.MinInt32
	case Int64ValueType:
		return math.MinInt64
	default:
		return 0
	}
}

// MaxInteger is the exact upper bound of an integer type.
func MaxInteger(typ ValueType) uint64 {
	switch typ {
	case Int8ValueType:
		return math.MaxInt8
	case Uint8ValueType:
		return math.MaxUint8
	case Int16ValueType:
		return math.MaxInt16
	case Uint16ValueType:
		return math.MaxUint16
	case Int32ValueType:
		return math.MaxInt32
	case Uint32ValueType:
		return math.MaxUint32
	case Int64ValueType:
		return math.MaxInt64
	case Uint64ValueType:
		return math.MaxUint64
	default:
		return 0
	}
}

// MinValue returns the lower bound as a float. 64-bit bounds are rounded to
// the nearest float64, use MinInteger for the exact value.
func MinValue(typ ValueType) float64 {
	switch {
	case IsInteger(typ):
		return float64(MinInteger(typ))
	case typ == Float32ValueType:
		return -math.MaxFloat32
	case typ == Float64ValueType:
		return -math.MaxFloat64
	default:
		return 0
	}
}

func MaxValue(typ ValueType) float64 {
	switch {
	case IsInteger(typ):
		return float64(MaxInteger(typ))
	case typ == Float32ValueType:
		return math.MaxFloat32
	case typ == Float64ValueType:
		return math.MaxFloat64
	default:
		return 0
	}
}

func GetBounds(typ ValueType) Bounds {
	return Bounds{Min: MinValue(typ), Max: MaxValue(typ)}
}

// NormalizedBounds is [0,1] for unsigned and [-1,1] for signed types.
func NormalizedBounds(typ ValueType) Bounds {
	if IsUnsignedInteger(typ) {
		return Bounds{Min: 0, Max: 1}
	}
	return Bounds{Min: -1, Max: 1}
}

// Normalize maps a raw storage value into [0,1] or [-1,1]. Negative values are
// divided by -min so the sign is preserved.
func Normalize(value float64, typ ValueType) float64 {
	if value >= 0 {
		return value / MaxValue(typ)
	}
	return -value / MinValue(typ)
}

// Unnormalize is the inverse of Normalize.
func Unnormalize(value float64, typ ValueType) float64 {
	if value >= 0 {
		return value * MaxValue(typ)
	}
	return -value * MinValue(typ)
}

func NormalizeInteger[T constraints.Integer](value T, typ ValueType) float64 {
	return Normalize(float64(value), typ)
}

// UnnormalizeInteger unnormalizes and snaps the result onto the integer grid of typ.
func UnnormalizeInteger[T constraints.Integer](value float64, typ ValueType) T {
	raw := math.Round(Unnormalize(value, typ))
	if IsUnsignedInteger(typ) {
		return T(ClampUint(raw, MaxInteger(typ)))
	}
	return T(ClampInt(raw, MinInteger(typ), int64(MaxInteger(typ))))
}

// ClampInt converts a float to int64 saturating at [min,max]. The comparisons
// are done in float space so 2^63 never reaches the int conversion.
func ClampInt(raw float64, min, max int64) int64 {
	if raw <= float64(min) {
		return min
	}
	if raw >= float64(max) {
		return max
	}
	return int64(raw)
}

func ClampUint(raw float64, max uint64) uint64 {
	if raw <= 0 {
		return 0
	}
	if raw >= float64(max) {
		return max
	}
	return uint64(raw)
}
