package schema

import (
	"fmt"
	"math"
	"reflect"
	"slices"
)

const (
	twoTo63 = 9223372036854775808.0
	twoTo64 = 18446744073709551616.0
)

type numberKind uint8

const (
	signedNumber numberKind = iota
	unsignedNumber
	floatNumber
)

// number keeps integer inputs exact so 64-bit range checks never go through a float.
type number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

func (n number) float() float64 {
	switch n.kind {
	case signedNumber:
		return float64(n.i)
	case unsignedNumber:
		return float64(n.u)
	default:
		return n.f
	}
}

func toNumber(v any) (number, bool) {
	switch t := v.(type) {
	case int:
		return number{kind: signedNumber, i: int64(t)}, true
	case int8:
		return number{kind: signedNumber, i: int64(t)}, true
	case int16:
		return number{kind: signedNumber, i: int64(t)}, true
	case int32:
		return number{kind: signedNumber, i: int64(t)}, true
	case int64:
		return number{kind: signedNumber, i: t}, true
	case uint:
		return number{kind: unsignedNumber, u: uint64(t)}, true
	case uint8:
		return number{kind: unsignedNumber, u: uint64(t)}, true
	case uint16:
		return number{kind: unsignedNumber, u: uint64(t)}, true
	case uint32:
		return number{kind: unsignedNumber, u: uint64(t)}, true
	case uint64:
		return number{kind: unsignedNumber, u: t}, true
	case float32:
		return number{kind: floatNumber, f: float64(t)}, true
	case float64:
		return number{kind: floatNumber, f: t}, true
	}
	return number{}, false
}

// ToFloat converts any Go numeric value to float64.
func ToFloat(v any) (float64, bool) {
	n, ok := toNumber(v)
	if !ok {
		return 0, false
	}
	return n.float(), true
}

func typeError(value any, typ ValueType) error {
	return fmt.Errorf("%w: value %v does not match type %s", ErrTypeMismatch, value, typ.String())
}

func rangeError(value any, typ ValueType, normalized bool) error {
	msg := fmt.Sprintf("value %v is out of range for type %s", value, typ.String())
	if normalized {
		msg += " (normalized)"
	}
	return fmt.Errorf("%w: %s", ErrOutOfRange, msg)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// CoerceValue validates a value given in the caller's domain (normalized when
// the property is normalized) and returns it in the raw canonical storage form.
// Arrays are always returned as a fresh slice.
func (p *ClassProperty) CoerceValue(value any) (any, error) {
	return p.coerce(value, p.IsNormalized())
}

// CoerceRaw is CoerceValue for values already in the raw storage domain.
func (p *ClassProperty) CoerceRaw(value any) (any, error) {
	return p.coerce(value, false)
}

func (p *ClassProperty) coerce(value any, normalized bool) (any, error) {

	if !p.IsArray() {
		if _, isList := listElements(value); isList {
			return nil, typeError(value, p.Type)
		}
		return p.coerceElement(value, normalized)
	}

	elements, isList := listElements(value)
	if !isList {
		return nil, typeError(value, ArrayValueType)
	}

	if p.ComponentCount > 0 && len(elements) != p.ComponentCount {
		return nil, fmt.Errorf("%w: got %d elements, expected %d", ErrArrayLengthMismatch, len(elements), p.ComponentCount)
	}

	coerced := make([]any, len(elements))
	for i, el := range elements {
		c, err := p.coerceElement(el, normalized)
		if err != nil {
			return nil, err
		}
		coerced[i] = c
	}

	return MakeArray(p.ElementType(), coerced), nil
}

func (p *ClassProperty) coerceElement(v any, normalized bool) (any, error) {

	typ := p.ElementType()

	switch {
	case typ == EnumValueType:
		name, ok := v.(string)
		if !ok {
			return nil, typeError(v, typ)
		}
		if _, known := p.EnumType.ValueByName(name); !known {
			return nil, fmt.Errorf("%w: value %v is not a valid enum for %s", ErrTypeMismatch, v, p.EnumType.Id)
		}
		return name, nil
	case typ == StringValueType:
		s, ok := v.(string)
		if !ok {
			return nil, typeError(v, typ)
		}
		return s, nil
	case typ == BooleanValueType:
		b, ok := v.(bool)
		if !ok {
			return nil, typeError(v, typ)
		}
		return b, nil
	case IsInteger(typ):
		return coerceInteger(v, typ, normalized)
	case IsFloat(typ):
		return coerceFloat(v, typ)
	}

	return nil, typeError(v, typ)
}

func coerceInteger(v any, typ ValueType, normalized bool) (any, error) {

	n, ok := toNumber(v)
	if !ok {
		return nil, typeError(v, typ)
	}

	if normalized {
		f := n.float()
		bounds := NormalizedBounds(typ)
		if !isFinite(f) || f < bounds.Min || f > bounds.Max {
			return nil, rangeError(v, typ, true)
		}
		if IsUnsignedInteger(typ) {
			return UnnormalizeInteger[uint64](f, typ), nil
		}
		return UnnormalizeInteger[int64](f, typ), nil
	}

	if n.kind == floatNumber {
		f := n.f
		if !isFinite(f) || f < -twoTo63 || f >= twoTo64 {
			return nil, rangeError(v, typ, false)
		}
		if f != math.Trunc(f) {
			return nil, typeError(v, typ)
		}
		if f >= twoTo63 {
			n = number{kind: unsignedNumber, u: uint64(f)}
		} else {
			n = number{kind: signedNumber, i: int64(f)}
		}
	}

	if IsUnsignedInteger(typ) {
		var u uint64
		if n.kind == signedNumber {
			if n.i < 0 {
				return nil, rangeError(v, typ, false)
			}
			u = uint64(n.i)
		} else {
			u = n.u
		}
		if u > MaxInteger(typ) {
			return nil, rangeError(v, typ, false)
		}
		return u, nil
	}

	var i int64
	if n.kind == unsignedNumber {
		if n.u > math.MaxInt64 {
			return nil, rangeError(v, typ, false)
		}
		i = int64(n.u)
	} else {
		i = n.i
	}

	if i < MinInteger(typ) || (i > 0 && uint64(i) > MaxInteger(typ)) {
		return nil, rangeError(v, typ, false)
	}

	return i, nil
}

func coerceFloat(v any, typ ValueType) (any, error) {

	f, ok := ToFloat(v)
	if !ok {
		return nil, typeError(v, typ)
	}

	// non-finite values are representable and skip the range check
	if typ == Float32ValueType && isFinite(f) && (f < -math.MaxFloat32 || f > math.MaxFloat32) {
		return nil, rangeError(v, typ, false)
	}

	return f, nil
}

// listElements flattens any slice or array into []any. Strings are not lists.
func listElements(value any) ([]any, bool) {
	switch t := value.(type) {
	case nil, string:
		return nil, false
	case []any:
		return t, true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// MakeArray builds the canonical typed slice for elements already in canonical
// scalar form.
func MakeArray(elementType ValueType, elements []any) any {
	switch {
	case elementType == StringValueType, elementType == EnumValueType:
		return collect[string](elements)
	case elementType == BooleanValueType:
		return collect[bool](elements)
	case IsUnsignedInteger(elementType):
		return collect[uint64](elements)
	case IsInteger(elementType):
		return collect[int64](elements)
	default:
		return collect[float64](elements)
	}
}

func collect[T any](elements []any) []T {
	out := make([]T, len(elements))
	for i, el := range elements {
		out[i] = el.(T)
	}
	return out
}

// CloneValue returns a copy of slice values and the value itself for scalars.
func CloneValue(value any) any {
	switch t := value.(type) {
	case []int64:
		return slices.Clone(t)
	case []uint64:
		return slices.Clone(t)
	case []float64:
		return slices.Clone(t)
	case []bool:
		return slices.Clone(t)
	case []string:
		return slices.Clone(t)
	case []any:
		return slices.Clone(t)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice && !rv.IsNil() {
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	}
	return value
}

// NormalizeValue maps a raw canonical value (scalar or array) into the
// normalized domain of typ.
func NormalizeValue(value any, typ ValueType) any {
	switch t := value.(type) {
	case int64:
		return NormalizeInteger(t, typ)
	case uint64:
		return NormalizeInteger(t, typ)
	case float64:
		return Normalize(t, typ)
	case []int64:
		return mapFloats(t, func(v int64) float64 { return NormalizeInteger(v, typ) })
	case []uint64:
		return mapFloats(t, func(v uint64) float64 { return NormalizeInteger(v, typ) })
	case []float64:
		return mapFloats(t, func(v float64) float64 { return Normalize(v, typ) })
	}
	return value
}

// DegradeValue converts 64-bit integers into float64, the only numeric type a
// host without native 64-bit integers can hold.
func DegradeValue(value any) any {
	switch t := value.(type) {
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case []int64:
		return mapFloats(t, func(v int64) float64 { return float64(v) })
	case []uint64:
		return mapFloats(t, func(v uint64) float64 { return float64(v) })
	}
	return value
}

func mapFloats[T any](in []T, fn func(T) float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}
