package schema

import "fmt"

type ValueType uint8

const (
	// the zero value, marks an unset type such as the ComponentType of a scalar
	NoValueType ValueType = iota

	Int8ValueType
	Uint8ValueType
	Int16ValueType
	Uint16ValueType
	Int32ValueType
	Uint32ValueType
	Int64ValueType
	Uint64ValueType

	Float32ValueType
	Float64ValueType

	BooleanValueType
	StringValueType
	EnumValueType
	ArrayValueType
)

var valueTypeNames = map[ValueType]string{
	Int8ValueType:    "INT8",
	Uint8ValueType:   "UINT8",
	Int16ValueType:   "INT16",
	Uint16ValueType:  "UINT16",
	Int32ValueType:   "INT32",
	Uint32ValueType:  "UINT32",
	Int64ValueType:   "INT64",
	Uint64ValueType:  "UINT64",
	Float32ValueType: "FLOAT32",
	Float64ValueType: "FLOAT64",
	BooleanValueType: "BOOLEAN",
	StringValueType:  "STRING",
	EnumValueType:    "ENUM",
	ArrayValueType:   "ARRAY",
}

func (f ValueType) String() string {
	if name, ok := valueTypeNames[f]; ok {
		return name
	}
	return ""
}

// ParseValueType resolves the schema spelling of a type ("UINT16", "ARRAY", ...).
func ParseValueType(name string) (ValueType, error) {
	for typ, typName := range valueTypeNames {
		if typName == name {
			return typ, nil
		}
	}
	return NoValueType, fmt.Errorf("unknown value type '%s'", name)
}

// Size is the byte width of one stored element. Booleans, strings, enums and
// arrays have no fixed element width and return 0.
func (f ValueType) Size() int {
	switch f {
	case Int8ValueType, Uint8ValueType:
		return 1
	case Int16ValueType, Uint16ValueType:
		return 2
	case Int32ValueType, Float32ValueType, Uint32ValueType:
		return 4
	case Int64ValueType, Float64ValueType, Uint64ValueType:
		return 8
	default:
		return 0
	}
}

func (f ValueType) Is64Bit() bool {
	return f == Int64ValueType || f == Uint64ValueType
}

// IsOffsetType reports whether the type may be used for array and string offsets.
func (f ValueType) IsOffsetType() bool {
	switch f {
	case Uint8ValueType, Uint16ValueType, Uint32ValueType, Uint64ValueType:
		return true
	default:
		return false
	}
}
