package schema

import "fmt"

type ClassProperty struct {
	Id          string
	Name        string
	Description string

	Type          ValueType
	ComponentType ValueType
	EnumType      *Enum

	// 0 means a variable-size array
	ComponentCount int

	Normalized bool
	Optional   bool
	Semantic   string

	// raw (unnormalized) default in canonical form, nil when absent
	Default any
}

func (p *ClassProperty) IsArray() bool {
	return p.Type == ArrayValueType
}

func (p *ClassProperty) IsVariableSizeArray() bool {
	return p.IsArray() && p.ComponentCount == 0
}

// ElementType is the declared type of a single element: the component type of
// arrays, the type itself otherwise. ENUM is kept as ENUM here.
func (p *ClassProperty) ElementType() ValueType {
	if p.IsArray() {
		return p.ComponentType
	}
	return p.Type
}

func (p *ClassProperty) IsEnum() bool {
	return p.ElementType() == EnumValueType
}

// ValueType is the storage type of a single element, enums resolve to their
// backing integer type.
func (p *ClassProperty) ValueType() ValueType {
	if p.IsEnum() {
		return p.EnumType.ValueType
	}
	return p.ElementType()
}

// IsNormalized reports whether reads and writes go through the normalized domain.
func (p *ClassProperty) IsNormalized() bool {
	return p.Normalized && IsInteger(p.ValueType())
}

func (p *ClassProperty) validate() error {

	if p.Type == NoValueType {
		return fmt.Errorf("property '%s' has no type", p.Id)
	}

	elementType := p.ElementType()

	if p.IsArray() && (elementType == ArrayValueType || elementType == NoValueType) {
		return fmt.Errorf("property '%s' has invalid component type %s", p.Id, elementType.String())
	}

	if elementType == EnumValueType && p.EnumType == nil {
		return fmt.Errorf("property '%s' is an enum without an enum type", p.Id)
	}

	if p.ComponentCount < 0 || (p.ComponentCount > 0 && !p.IsArray()) {
		return fmt.Errorf("property '%s' has invalid component count %d", p.Id, p.ComponentCount)
	}

	return nil
}

type Class struct {
	Id         string
	Name       string
	Properties []*ClassProperty

	propertiesById       map[string]*ClassProperty
	propertiesBySemantic map[string]*ClassProperty
}

// NewClass indexes properties by id and semantic, and coerces property defaults
// into their canonical form. Property order is kept as given.
func NewClass(id string, properties ...*ClassProperty) (*Class, error) {

	result := &Class{
		Id:                   id,
		Properties:           properties,
		propertiesById:       make(map[string]*ClassProperty, len(properties)),
		propertiesBySemantic: map[string]*ClassProperty{},
	}

	for _, prop := range properties {

		if _, dup := result.propertiesById[prop.Id]; dup {
			return nil, fmt.Errorf("class '%s' declares property '%s' twice", id, prop.Id)
		}

		if err := prop.validate(); err != nil {
			return nil, err
		}

		if prop.Default != nil {
			canonical, err := prop.CoerceRaw(prop.Default)
			if err != nil {
				return nil, fmt.Errorf("default of property '%s': %w", prop.Id, err)
			}
			prop.Default = canonical
		}

		result.propertiesById[prop.Id] = prop

		if prop.Semantic != "" {
			if other, dup := result.propertiesBySemantic[prop.Semantic]; dup {
				return nil, fmt.Errorf("semantic '%s' is bound to both '%s' and '%s'", prop.Semantic, other.Id, prop.Id)
			}
			result.propertiesBySemantic[prop.Semantic] = prop
		}
	}

	return result, nil
}

func (c *Class) Property(id string) (*ClassProperty, bool) {
	if c == nil {
		return nil, false
	}
	prop, ok := c.propertiesById[id]
	return prop, ok
}

func (c *Class) PropertyBySemantic(semantic string) (*ClassProperty, bool) {
	if c == nil {
		return nil, false
	}
	prop, ok := c.propertiesBySemantic[semantic]
	return prop, ok
}
