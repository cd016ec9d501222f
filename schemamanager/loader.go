package schemamanager

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dot5enko/metatable/schema"
	"gopkg.in/yaml.v3"
)

var ErrSchemaNotFound = errors.New("schema not found")

// Schema is a set of classes and the enums they reference.
type Schema struct {
	Id      string
	Enums   map[string]*schema.Enum
	Classes map[string]*schema.Class

	classOrder []string
}

func (s *Schema) Class(id string) (*schema.Class, bool) {
	class, ok := s.Classes[id]
	return class, ok
}

// ClassIds lists classes in document order.
func (s *Schema) ClassIds() []string {
	return s.classOrder
}

type enumDocument struct {
	ValueType string `yaml:"valueType"`
	Values    []struct {
		Name  string `yaml:"name"`
		Value int64  `yaml:"value"`
	} `yaml:"values"`
}

type propertyDocument struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Type          string `yaml:"type"`
	ComponentType string `yaml:"componentType"`
	EnumType      string `yaml:"enumType"`
	Count         int    `yaml:"count"`
	Normalized    bool   `yaml:"normalized"`
	Optional      bool   `yaml:"optional"`
	Semantic      string `yaml:"semantic"`
	Default       any    `yaml:"default"`
}

type classDocument struct {
	Name string `yaml:"name"`
	// mapping node so properties keep document order
	Properties yaml.Node `yaml:"properties"`
}

type schemaDocument struct {
	Id      string                  `yaml:"id"`
	Enums   map[string]enumDocument `yaml:"enums"`
	Classes yaml.Node               `yaml:"classes"`
}

// Load parses a YAML schema document.
func Load(data []byte) (*Schema, error) {

	var raw schemaDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unable to parse schema: %w", err)
	}

	result := &Schema{
		Id:      strings.TrimSpace(raw.Id),
		Enums:   make(map[string]*schema.Enum, len(raw.Enums)),
		Classes: map[string]*schema.Class{},
	}

	for id, doc := range raw.Enums {
		enum, err := loadEnum(id, doc)
		if err != nil {
			return nil, err
		}
		result.Enums[id] = enum
	}

	err := eachPair(&raw.Classes, func(id string, node *yaml.Node) error {
		var doc classDocument
		if err := node.Decode(&doc); err != nil {
			return fmt.Errorf("class '%s': %w", id, err)
		}

		class, err := loadClass(id, doc, result.Enums)
		if err != nil {
			return err
		}

		result.Classes[id] = class
		result.classOrder = append(result.classOrder, id)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

// eachPair walks a mapping node in document order. An empty node has no pairs.
func eachPair(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.Kind == 0 {
		return nil
	}

	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}

	return nil
}

func parseType(name string) (schema.ValueType, error) {
	if name == "" {
		return schema.NoValueType, nil
	}
	return schema.ParseValueType(strings.ToUpper(strings.TrimSpace(name)))
}

func loadEnum(id string, doc enumDocument) (*schema.Enum, error) {

	valueType, err := parseType(doc.ValueType)
	if err != nil {
		return nil, fmt.Errorf("enum '%s': %w", id, err)
	}

	values := make([]schema.EnumValue, len(doc.Values))
	for i, v := range doc.Values {
		values[i] = schema.EnumValue{Name: v.Name, Value: v.Value}
	}

	return schema.NewEnum(id, valueType, values...)
}

func loadClass(id string, doc classDocument, enums map[string]*schema.Enum) (*schema.Class, error) {

	var properties []*schema.ClassProperty

	err := eachPair(&doc.Properties, func(propertyId string, node *yaml.Node) error {
		var raw propertyDocument
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("class '%s', property '%s': %w", id, propertyId, err)
		}

		prop, err := loadProperty(propertyId, raw, enums)
		if err != nil {
			return fmt.Errorf("class '%s': %w", id, err)
		}

		properties = append(properties, prop)
		return nil
	})

	if err != nil {
		return nil, err
	}

	class, err := schema.NewClass(id, properties...)
	if err != nil {
		return nil, err
	}

	class.Name = doc.Name

	return class, nil
}

func loadProperty(id string, raw propertyDocument, enums map[string]*schema.Enum) (*schema.ClassProperty, error) {

	typ, err := parseType(raw.Type)
	if err != nil {
		return nil, fmt.Errorf("property '%s': %w", id, err)
	}
	if typ == schema.NoValueType {
		return nil, fmt.Errorf("property '%s' has no type", id)
	}

	componentType, err := parseType(raw.ComponentType)
	if err != nil {
		return nil, fmt.Errorf("property '%s': %w", id, err)
	}

	prop := &schema.ClassProperty{
		Id:             id,
		Name:           raw.Name,
		Description:    raw.Description,
		Type:           typ,
		ComponentType:  componentType,
		ComponentCount: raw.Count,
		Normalized:     raw.Normalized,
		Optional:       raw.Optional,
		Semantic:       raw.Semantic,
		Default:        raw.Default,
	}

	if prop.IsEnum() {
		enum, ok := enums[raw.EnumType]
		if !ok {
			return nil, fmt.Errorf("property '%s' references unknown enum '%s'", id, raw.EnumType)
		}
		prop.EnumType = enum
	}

	return prop, nil
}
