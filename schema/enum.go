package schema

import "fmt"

const DefaultEnumValueType = Uint16ValueType

type EnumValue struct {
	Name  string
	Value int64
}

type Enum struct {
	Id        string
	ValueType ValueType
	Values    []EnumValue

	valuesByName map[string]int64
	namesByValue map[int64]string
}

func NewEnum(id string, valueType ValueType, values ...EnumValue) (*Enum, error) {

	if valueType == NoValueType {
		valueType = DefaultEnumValueType
	}

	if !IsInteger(valueType) {
		return nil, fmt.Errorf("enum '%s' must be backed by an integer type, got %s", id, valueType.String())
	}

	result := &Enum{
		Id:           id,
		ValueType:    valueType,
		Values:       values,
		valuesByName: make(map[string]int64, len(values)),
		namesByValue: make(map[int64]string, len(values)),
	}

	for _, it := range values {
		if _, dup := result.valuesByName[it.Name]; dup {
			return nil, fmt.Errorf("enum '%s' declares '%s' twice", id, it.Name)
		}
		result.valuesByName[it.Name] = it.Value
		result.namesByValue[it.Value] = it.Name
	}

	return result, nil
}

func (e *Enum) ValueByName(name string) (int64, bool) {
	v, ok := e.valuesByName[name]
	return v, ok
}

func (e *Enum) NameByValue(value int64) (string, bool) {
	name, ok := e.namesByValue[value]
	return name, ok
}
